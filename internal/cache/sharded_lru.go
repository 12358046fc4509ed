package cache

import "hash/maphash"

const numShards = 64

// ShardedLRU splits its budget over independent LRUs so concurrent
// requests for different keys rarely contend.
type ShardedLRU struct {
	seed   maphash.Seed
	shards [numShards]*LRU
}

// NewShardedLRU returns a cache holding about budget bytes in total.
func NewShardedLRU(budget int64) *ShardedLRU {
	s := &ShardedLRU{seed: maphash.MakeSeed()}
	per := max(budget/numShards, 1)
	for i := range s.shards {
		s.shards[i] = NewLRU(per)
	}
	return s
}

func (s *ShardedLRU) shard(key Key) *LRU {
	return s.shards[maphash.Comparable(s.seed, key)%numShards]
}

// Get returns the expression cached under key.
func (s *ShardedLRU) Get(key Key) (string, bool) { return s.shard(key).Get(key) }

// Set caches expr under key.
func (s *ShardedLRU) Set(key Key, expr string) { s.shard(key).Set(key, expr) }

// Stats sums hit and miss counts over the shards.
func (s *ShardedLRU) Stats() (hits, misses int64) {
	for _, sh := range s.shards {
		h, m := sh.Stats()
		hits, misses = hits+h, misses+m
	}
	return hits, misses
}

// Size returns the cached bytes over all shards.
func (s *ShardedLRU) Size() int64 {
	var n int64
	for _, sh := range s.shards {
		n += sh.Size()
	}
	return n
}
