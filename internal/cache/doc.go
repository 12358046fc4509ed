// Package cache provides LRU caching for generated expressions.
//
// The ShardedLRU spreads entries over 64 shards keyed by a maphash of the
// list and target, so concurrent requests rarely share a lock. Capacity is
// counted in expression bytes.
package cache
