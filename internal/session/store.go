// Package session holds the persisted credential and the guard that gates
// protected pages on it.
package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store persists one credential per browser under a fixed name.
type Store interface {
	Get(r *http.Request) (string, bool)
	Set(w http.ResponseWriter, r *http.Request, token string) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

type cookieSpec struct {
	name   string
	secure bool
	maxAge time.Duration
}

func (c cookieSpec) read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(cookie.Value)
	return v, v != ""
}

func (c cookieSpec) write(w http.ResponseWriter, value string) {
	cookie := &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.maxAge > 0 {
		cookie.MaxAge = int(c.maxAge.Seconds())
	}
	http.SetCookie(w, cookie)
}

func (c cookieSpec) expire(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// CookieStore keeps the credential itself in an HttpOnly cookie.
type CookieStore struct {
	cookie cookieSpec
}

func NewCookieStore(name string, secure bool) *CookieStore {
	return &CookieStore{cookie: cookieSpec{name: name, secure: secure}}
}

func (s *CookieStore) Get(r *http.Request) (string, bool) {
	return s.cookie.read(r)
}

func (s *CookieStore) Set(w http.ResponseWriter, _ *http.Request, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	s.cookie.write(w, token)
	return nil
}

func (s *CookieStore) Clear(w http.ResponseWriter, _ *http.Request) error {
	s.cookie.expire(w)
	return nil
}

var ErrEmptyToken = errors.New("session: empty token")

// RedisStore keeps the credential server-side. The browser only holds an
// opaque session id.
type RedisStore struct {
	rdb    redis.Cmdable
	cookie cookieSpec
	ttl    time.Duration
	prefix string
}

func NewRedisStore(rdb redis.Cmdable, cookieName string, secure bool, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb:    rdb,
		cookie: cookieSpec{name: cookieName, secure: secure, maxAge: ttl},
		ttl:    ttl,
		prefix: "session:",
	}
}

func (s *RedisStore) Get(r *http.Request) (string, bool) {
	sid, ok := s.cookie.read(r)
	if !ok {
		return "", false
	}
	token, err := s.rdb.Get(r.Context(), s.prefix+sid).Result()
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

func (s *RedisStore) Set(w http.ResponseWriter, r *http.Request, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	// A fresh id on every login; any previous id is dropped.
	if old, ok := s.cookie.read(r); ok {
		s.drop(r.Context(), old)
	}
	sid := uuid.NewString()
	if err := s.rdb.Set(r.Context(), s.prefix+sid, token, s.ttl).Err(); err != nil {
		return err
	}
	s.cookie.write(w, sid)
	return nil
}

func (s *RedisStore) Clear(w http.ResponseWriter, r *http.Request) error {
	var err error
	if sid, ok := s.cookie.read(r); ok {
		err = s.rdb.Del(r.Context(), s.prefix+sid).Err()
	}
	s.cookie.expire(w)
	return err
}

func (s *RedisStore) drop(ctx context.Context, sid string) {
	_ = s.rdb.Del(ctx, s.prefix+sid).Err()
}
