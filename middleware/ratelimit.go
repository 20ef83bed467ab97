package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims entries older than the window, then admits the request
// when fewer than limit remain. Returns 1 when admitted.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)
if count < limit then
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, ttl)
	return 1
end
return 0
`)

// RedisRateLimiter is a sliding-window limiter backed by Redis. It fails open
// when Redis is absent or erroring.
type RedisRateLimiter struct {
	rdb    redis.Scripter
	prefix string
}

func NewRedisRateLimiter(rdb redis.Scripter) *RedisRateLimiter {
	return &RedisRateLimiter{
		rdb:    rdb,
		prefix: "rl:dashboard:",
	}
}

type RateLimitConfig struct {
	Scope  string
	Limit  int
	Window time.Duration
	KeyFn  func(r *http.Request) string
}

func (l *RedisRateLimiter) Middleware(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.KeyFn == nil {
		cfg.KeyFn = KeyByIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil || l.rdb == nil || cfg.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := l.prefix + cfg.Scope + ":" + cfg.KeyFn(r)
			allowed, err := l.isAllowed(r.Context(), key, cfg.Limit, cfg.Window)
			if err != nil || allowed {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		})
	}
}

func (l *RedisRateLimiter) isAllowed(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now().UnixMilli()
	res, err := slidingWindow.Run(ctx, l.rdb, []string{key},
		now, now-window.Milliseconds(), limit, window.Milliseconds(), uuid.NewString(),
	).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// KeyByIP keys on the first X-Forwarded-For hop, else the remote host.
func KeyByIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return "ip:" + strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return "ip:" + host
	}
	return "ip:" + r.RemoteAddr
}

// KeyByCookie keys on the named session cookie, falling back to the client IP.
func KeyByCookie(name string) func(r *http.Request) string {
	return func(r *http.Request) string {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return "session:" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(c.Value)).String()
		}
		return KeyByIP(r)
	}
}
