package sync

import (
	"sync"
)

const shardCount = 32

// ShardedMap is a string-keyed map split across 32 independently locked shards.
// Operations on keys in different shards never contend.
type ShardedMap[V any] struct {
	shards [shardCount]shard[V]
}

type shard[V any] struct {
	mu sync.Mutex
	m  map[string]V
}

// NewShardedMap creates an empty ShardedMap.
func NewShardedMap[V any]() *ShardedMap[V] {
	s := &ShardedMap[V]{}
	for i := range s.shards {
		s.shards[i].m = make(map[string]V)
	}
	return s
}

// With runs fn while holding the lock of key's shard. fn receives the shard's
// map and may read or mutate any entry for key; it must not retain the map.
func (s *ShardedMap[V]) With(key string, fn func(m map[string]V)) {
	sh := &s.shards[shardFor(key)]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fn(sh.m)
}

// Sweep visits every shard in turn under its lock. fn may delete entries.
func (s *ShardedMap[V]) Sweep(fn func(m map[string]V)) {
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		fn(sh.m)
		sh.mu.Unlock()
	}
}

// Len returns the total number of entries across shards.
func (s *ShardedMap[V]) Len() int {
	n := 0
	s.Sweep(func(m map[string]V) { n += len(m) })
	return n
}

// shardFor returns the shard index for the given key. Empty keys use shard 0.
func shardFor(key string) int {
	if key == "" {
		return 0
	}
	return int(hashString(key) % shardCount)
}

// hashString is a djb2-style hash used for shard selection.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}
