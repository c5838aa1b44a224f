package sharedstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// slideWindowScript runs the whole window step on the server so concurrent
// callers on different instances serialize on the key. The server clock is
// used so instance clock skew cannot widen or shrink the window.
//
// KEYS[1] window key; ARGV[1] window in ms; ARGV[2] member; ARGV[3] capacity.
// Returns {count, oldest_ms, now_ms, reset_from_ms}.
var slideWindowScript = redis.NewScript(`
local t = redis.call('TIME')
local now_ms = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)
local window_ms = tonumber(ARGV[1])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now_ms - window_ms)
redis.call('ZADD', KEYS[1], now_ms, ARGV[2])
local count = redis.call('ZCARD', KEYS[1])
redis.call('PEXPIRE', KEYS[1], window_ms)
local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local capacity = tonumber(ARGV[3])
local pivot = 0
if capacity > 0 and count > capacity then
  pivot = count - capacity
end
local reset = redis.call('ZRANGE', KEYS[1], pivot, pivot, 'WITHSCORES')
return {count, tonumber(oldest[2]), now_ms, tonumber(reset[2])}
`)

// RedisStore is the multi-instance Store.
type RedisStore struct {
	client  redis.UniversalClient
	timeout time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithOpTimeout bounds every store call. Default 250ms.
func WithOpTimeout(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewRedisStore wraps a go-redis client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	s := &RedisStore{client: client, timeout: 250 * time.Millisecond}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RedisStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable(err, "shared store get failed")
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return unavailable(s.client.Set(ctx, key, value, ttl).Err(), "shared store set failed")
}

func (s *RedisStore) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	ok, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, unavailable(err, "shared store setnx failed")
	}
	return ok, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return unavailable(s.client.Del(ctx, key).Err(), "shared store delete failed")
}

func (s *RedisStore) SlideWindow(ctx context.Context, key string, window time.Duration, member string, capacity int) (*WindowState, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := slideWindowScript.Run(ctx, s.client, []string{key}, window.Milliseconds(), member, capacity).Int64Slice()
	if err != nil {
		return nil, unavailable(err, "shared store window step failed")
	}
	if len(res) != 4 {
		return nil, unavailable(fmt.Errorf("window script returned %d values", len(res)), "shared store window step failed")
	}
	return &WindowState{
		Count:     res[0],
		Oldest:    time.UnixMilli(res[1]),
		Now:       time.UnixMilli(res[2]),
		ResetFrom: time.UnixMilli(res[3]),
	}, nil
}

func (s *RedisStore) RemoveMember(ctx context.Context, key, member string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return unavailable(s.client.ZRem(ctx, key, member).Err(), "shared store remove failed")
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return unavailable(s.client.Ping(ctx).Err(), "shared store ping failed")
}
