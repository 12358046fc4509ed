package ordering

import (
	"cmp"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

const (
	// MinScore is the exclusive lower bound on the score of an emitted rule.
	MinScore = 2.0

	// maxOffsetProduct aborts an offset scan when the two levels are too
	// large to combine.
	maxOffsetProduct = 2_000_000
)

// Scored is a rule with its heuristic score.
type Scored struct {
	Score float64
	Rule  Rule
}

// Score rates a multiplier found after spent pairwise operations:
// |m|^(1/(spent+1)). Higher is tried first.
//
// The formula only decides the order in which rules are tried. Changing it
// changes the emitted expressions, never their value.
func Score(m int64, spent int) float64 {
	return math.Pow(math.Abs(float64(m)), 1/float64(spent+1))
}

// Build scores every multiplier and multiplier/offset pair drawn from the
// integer levels of a search.
//
// Mul(m) and Mul(-m) are equivalent, so a multiplier whose negation was
// already seen is skipped. For a multiplier m at level i, offsets are taken
// level by level and a rule is only emitted when it resolves a residue
// class modulo |m| not covered yet. The scan for m ends once all classes
// are covered.
func Build(levels [][]int64) []Scored {
	var (
		out  []Scored
		seen = make(map[int64]struct{})
	)

	for i, muls := range levels {
		for _, m := range muls {
			if _, ok := seen[-m]; ok {
				continue
			}
			seen[m] = struct{}{}
			if m == 0 || m == math.MinInt64 {
				continue
			}

			if s := Score(m, i); s > MinScore {
				out = append(out, Scored{Score: s, Rule: Mul(m)})
			}

			mod := m
			if mod < 0 {
				mod = -mod
			}

			covered := roaring64.New()
			covered.Add(0)

		offsets:
			for j, offs := range levels {
				if len(muls)*len(offs) > maxOffsetProduct {
					break
				}
				s := Score(m, i+j+1)
				if s <= MinScore {
					// Scores only decrease with j.
					break
				}

				for _, a := range offs {
					if covered.CheckedAdd(uint64(negResidue(a, mod))) {
						out = append(out, Scored{Score: s, Rule: MulSub(m, a)})
					}
					if covered.CheckedAdd(uint64(residue(a, mod))) {
						out = append(out, Scored{Score: s, Rule: MulAdd(m, a)})
					}
					if covered.GetCardinality() == uint64(mod) {
						break offsets
					}
				}
			}
		}
	}
	return out
}

// Sort orders rules by descending score. Equal scores keep their build order.
func Sort(scored []Scored) []Rule {
	sorted := slices.Clone(scored)
	slices.SortStableFunc(sorted, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})

	rules := make([]Rule, len(sorted))
	for i, s := range sorted {
		rules[i] = s.Rule
	}
	return rules
}
