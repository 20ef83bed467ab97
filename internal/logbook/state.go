package logbook

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/baechuer/paradies-dashboard/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Screen is the state of one logbook screen instance. Records is the last
// list successfully fetched from the API.
type Screen struct {
	Records  []domain.UserRecord     `json:"records"`
	Dialog   domain.Dialog           `json:"dialog"`
	Selected *domain.UserRecord      `json:"selected,omitempty"`
	Draft    domain.Draft            `json:"draft"`
	Errors   domain.ValidationErrors `json:"errors,omitempty"`
}

// find returns the record with id from the current list.
func (s *Screen) find(id int64) (domain.UserRecord, bool) {
	for _, r := range s.Records {
		if r.ID == id {
			return r, true
		}
	}
	return domain.UserRecord{}, false
}

// closeDialog discards the selection, draft and errors.
func (s *Screen) closeDialog() {
	s.Dialog = domain.DialogNone
	s.Selected = nil
	s.Draft = domain.Draft{}
	s.Errors = nil
}

// sanitized drops write-only values before the screen is stored.
func (s Screen) sanitized() Screen {
	s.Draft.Passwords = ""
	if len(s.Records) > 0 {
		recs := make([]domain.UserRecord, len(s.Records))
		for i, r := range s.Records {
			r.Password = ""
			recs[i] = r
		}
		s.Records = recs
	}
	if s.Selected != nil {
		sel := *s.Selected
		sel.Password = ""
		s.Selected = &sel
	}
	return s
}

// StateStore keeps screen state between requests of the same session.
// Load returns an empty screen when nothing is stored under key.
type StateStore interface {
	Load(ctx context.Context, key string) (*Screen, error)
	Save(ctx context.Context, key string, s *Screen) error
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	screen    Screen
	expiresAt time.Time
}

// MemoryStateStore keeps screens in process. Entries expire ttl after their
// last save, matching RedisStateStore.
type MemoryStateStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	screens map[string]memoryEntry
}

func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	return &MemoryStateStore{
		ttl:     ttl,
		now:     time.Now,
		screens: make(map[string]memoryEntry),
	}
}

func (m *MemoryStateStore) Load(_ context.Context, key string) (*Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	e, ok := m.screens[key]
	if !ok {
		return &Screen{}, nil
	}
	s := e.screen
	// Deep enough copy that callers cannot mutate stored slices.
	s.Records = append([]domain.UserRecord(nil), s.Records...)
	return &s, nil
}

func (m *MemoryStateStore) Save(_ context.Context, key string, s *Screen) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)
	m.screens[key] = memoryEntry{screen: s.sanitized(), expiresAt: now.Add(m.ttl)}
	return nil
}

func (m *MemoryStateStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.screens, key)
	return nil
}

// Len reports how many screens are held, expired ones included until the
// next Load or Save.
func (m *MemoryStateStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.screens)
}

// sweep drops expired entries. A non-positive ttl never expires.
func (m *MemoryStateStore) sweep(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	for k, e := range m.screens {
		if !now.Before(e.expiresAt) {
			delete(m.screens, k)
		}
	}
}

// RedisStateStore keeps screens as JSON with a sliding TTL.
type RedisStateStore struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedisStateStore(rdb redis.Cmdable, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{rdb: rdb, ttl: ttl, prefix: "logbook:"}
}

func (r *RedisStateStore) Load(ctx context.Context, key string) (*Screen, error) {
	raw, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Screen{}, nil
	}
	if err != nil {
		return nil, err
	}

	var s Screen
	if err := json.Unmarshal(raw, &s); err != nil {
		// A corrupt entry is treated as no state at all.
		return &Screen{}, nil
	}
	return &s, nil
}

func (r *RedisStateStore) Save(ctx context.Context, key string, s *Screen) error {
	raw, err := json.Marshal(s.sanitized())
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.prefix+key, raw, r.ttl).Err()
}

func (r *RedisStateStore) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.prefix+key).Err()
}
