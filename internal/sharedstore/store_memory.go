package sharedstore

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	psync "inkwell/pkg/platform/sync"
)

type kvEntry struct {
	value     []byte
	expiresAt time.Time
}

type windowEntry struct {
	member string
	at     time.Time
}

type window struct {
	entries   []windowEntry // ascending by at
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Expired keys are invisible immediately
// and reclaimed by Sweep.
type MemoryStore struct {
	kv      *psync.ShardedMap[kvEntry]
	windows *psync.ShardedMap[*window]
	now     func() time.Time
	down    atomic.Bool
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		kv:      psync.NewShardedMap[kvEntry](),
		windows: psync.NewShardedMap[*window](),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetUnavailable makes every call fail with ErrUnavailable, to exercise
// degraded paths in tests and e2e runs.
func (s *MemoryStore) SetUnavailable(down bool) {
	s.down.Store(down)
}

func (s *MemoryStore) check(ctx context.Context) error {
	if s.down.Load() {
		return unavailable(errMemoryDown, "shared store unavailable")
	}
	if err := ctx.Err(); err != nil {
		return unavailable(err, "shared store call cancelled")
	}
	return nil
}

type memoryDownError struct{}

func (memoryDownError) Error() string { return "memory store marked unavailable" }

var errMemoryDown = memoryDownError{}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.check(ctx); err != nil {
		return nil, false, err
	}
	now := s.now()
	var (
		out   []byte
		found bool
	)
	s.kv.With(key, func(m map[string]kvEntry) {
		e, ok := m[key]
		if !ok || expired(e.expiresAt, now) {
			return
		}
		out, found = slices.Clone(e.value), true
	})
	return out, found, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	entry := kvEntry{value: slices.Clone(value), expiresAt: s.deadline(ttl)}
	s.kv.With(key, func(m map[string]kvEntry) { m[key] = entry })
	return nil
}

func (s *MemoryStore) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	now := s.now()
	written := false
	s.kv.With(key, func(m map[string]kvEntry) {
		if e, ok := m[key]; ok && !expired(e.expiresAt, now) {
			return
		}
		m[key] = kvEntry{value: slices.Clone(value), expiresAt: s.deadline(ttl)}
		written = true
	})
	return written, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.kv.With(key, func(m map[string]kvEntry) { delete(m, key) })
	s.windows.With(key, func(m map[string]*window) { delete(m, key) })
	return nil
}

func (s *MemoryStore) SlideWindow(ctx context.Context, key string, span time.Duration, member string, capacity int) (*WindowState, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	now := s.now()
	cutoff := now.Add(-span)
	var state WindowState
	s.windows.With(key, func(m map[string]*window) {
		w, ok := m[key]
		if !ok || expired(w.expiresAt, now) {
			w = &window{}
			m[key] = w
		}
		drop := 0
		for drop < len(w.entries) && !w.entries[drop].at.After(cutoff) {
			drop++
		}
		w.entries = w.entries[drop:]

		pos, _ := slices.BinarySearchFunc(w.entries, now, func(e windowEntry, t time.Time) int {
			if e.at.After(t) {
				return 1
			}
			return -1
		})
		w.entries = slices.Insert(w.entries, pos, windowEntry{member: member, at: now})
		w.expiresAt = now.Add(span)

		pivot := 0
		if capacity > 0 && len(w.entries) > capacity {
			pivot = len(w.entries) - capacity
		}
		state = WindowState{
			Count:     int64(len(w.entries)),
			Oldest:    w.entries[0].at,
			ResetFrom: w.entries[pivot].at,
			Now:       now,
		}
	})
	return &state, nil
}

func (s *MemoryStore) RemoveMember(ctx context.Context, key, member string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.windows.With(key, func(m map[string]*window) {
		w, ok := m[key]
		if !ok {
			return
		}
		w.entries = slices.DeleteFunc(w.entries, func(e windowEntry) bool { return e.member == member })
	})
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return s.check(ctx)
}

// Sweep reclaims expired keys and windows and returns how many were removed.
func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	now := s.now()
	removed := 0
	s.kv.Sweep(func(m map[string]kvEntry) {
		for k, e := range m {
			if expired(e.expiresAt, now) {
				delete(m, k)
				removed++
			}
		}
	})
	s.windows.Sweep(func(m map[string]*window) {
		for k, w := range m {
			if expired(w.expiresAt, now) || len(w.entries) == 0 {
				delete(m, k)
				removed++
			}
		}
	})
	return removed, nil
}

func (s *MemoryStore) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func expired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && !now.Before(expiresAt)
}
