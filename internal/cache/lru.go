package cache

import (
	"sync"
	"sync/atomic"
)

// Key identifies a generated expression.
type Key struct {
	List string
	N    int64
}

// node is an entry in the recency ring. The sentinel's next is the most
// recently used entry and its prev the least.
type node struct {
	key        Key
	expr       string
	prev, next *node
}

func (n *node) unlink() {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}

// LRU caches expressions up to a byte budget, dropping the least recently
// used ones first. Only expression bytes count against the budget.
type LRU struct {
	mu      sync.Mutex
	budget  int64
	used    int64
	entries map[Key]*node
	ring    node

	hits   atomic.Int64
	misses atomic.Int64
}

// NewLRU returns an empty cache holding at most budget bytes.
func NewLRU(budget int64) *LRU {
	c := &LRU{budget: budget, entries: make(map[Key]*node)}
	c.ring.prev, c.ring.next = &c.ring, &c.ring
	return c
}

func (c *LRU) pushFront(n *node) {
	n.prev, n.next = &c.ring, c.ring.next
	c.ring.next.prev = n
	c.ring.next = n
}

func (c *LRU) touch(n *node) {
	if c.ring.next == n {
		return
	}
	n.unlink()
	c.pushFront(n)
}

func (c *LRU) drop(n *node) {
	n.unlink()
	delete(c.entries, n.key)
	c.used -= int64(len(n.expr))
}

// shrink drops entries from the cold end until used fits the budget.
func (c *LRU) shrink() {
	for c.used > c.budget && c.ring.prev != &c.ring {
		c.drop(c.ring.prev)
	}
}

// Get returns the expression cached under key.
func (c *LRU) Get(key Key) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	c.touch(n)
	return n.expr, true
}

// Set caches expr under key. An expression longer than the whole budget is
// ignored.
func (c *LRU) Set(key Key, expr string) {
	size := int64(len(expr))
	if size > c.budget {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		c.used += size - int64(len(n.expr))
		n.expr = expr
		c.touch(n)
	} else {
		n := &node{key: key, expr: expr}
		c.entries[key] = n
		c.pushFront(n)
		c.used += size
	}
	c.shrink()
}

// Stats returns the hit and miss counts.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the cached bytes.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// Len returns the number of entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
