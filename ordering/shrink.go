package ordering

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Shrink truncates rules once every residue class modulo div is resolved
// by some rule with multiplier div.
//
// The returned prefix ends at the last rule needed for full coverage. Any
// target then matches a retained rule, and the recursion strictly shrinks
// the target. When coverage is never reached, or div is not positive, the
// rules are returned unchanged and ok is false.
func Shrink(rules []Rule, div int64) (shrunk []Rule, ok bool) {
	last, ok := coverage(rules, div)
	if !ok {
		return rules, false
	}
	return rules[:last+1], true
}

// Covers reports whether rules resolve every residue class modulo div
// using multiplier div.
func Covers(rules []Rule, div int64) bool {
	_, ok := coverage(rules, div)
	return ok
}

func coverage(rules []Rule, div int64) (last int, ok bool) {
	if div <= 0 {
		return -1, false
	}

	covered := roaring64.New()
	last = -1
	for idx, r := range rules {
		if r.Mul != div {
			continue
		}
		if covered.CheckedAdd(uint64(r.Residue(div))) {
			last = idx
			if covered.GetCardinality() == uint64(div) {
				return last, true
			}
		}
	}
	return last, false
}
