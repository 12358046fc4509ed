package testutil

import (
	"math/rand"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komori-n/nananiji-calculator/internal/evaluate"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Int63n returns a non-negative pseudo-random number in [0, n).
func (r *RNG) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63n(n)
}

// Targets returns num signed integers whose digit counts are spread
// evenly over 1..maxDigits. maxDigits is capped at 18.
func (r *RNG) Targets(num, maxDigits int) []int64 {
	maxDigits = min(max(maxDigits, 1), 18)

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, num)
	for i := range out {
		digits := 1 + r.rand.Intn(maxDigits)
		lo := pow10(digits - 1)
		n := lo + r.rand.Int63n(pow10(digits)-lo)
		if digits == 1 {
			n = r.rand.Int63n(10)
		}
		if r.rand.Intn(2) == 0 {
			n = -n
		}
		out[i] = n
	}
	return out
}

func pow10(e int) int64 {
	p := int64(1)
	for range e {
		p *= 10
	}
	return p
}

// AssertExpr checks that expr evaluates exactly to n and, when seeds are
// given, that every literal in expr is one of them.
func AssertExpr(t testing.TB, expr string, n int64, seeds ...string) {
	t.Helper()

	ok, err := evaluate.Equals(expr, n)
	require.NoError(t, err, expr)
	assert.True(t, ok, "%s does not evaluate to %d", expr, n)

	if len(seeds) == 0 {
		return
	}
	lits, err := evaluate.Literals(expr)
	require.NoError(t, err, expr)
	for _, l := range lits {
		assert.True(t, slices.Contains(seeds, l), "literal %s of %s is not a seed", l, expr)
	}
}
