package search

import (
	"math"

	"github.com/komori-n/nananiji-calculator/rational"
)

// RationalSearch owns the growing reachability table.
type RationalSearch struct {
	denomCut int64
	levels   [][]rational.Rat
	known    map[rational.Rat]string
	opts     options
}

// FromLists builds level 0 from the seed groupings.
//
// Each grouping must have one, two or three elements. Groupings are
// processed in order and the first expression recorded for a value wins.
func FromLists(groupings [][]int64, denomCut int64, optFns ...Option) (*RationalSearch, error) {
	if len(groupings) == 0 {
		return nil, ErrNoGroupings
	}
	if denomCut < 1 {
		return nil, ErrInvalidDenomCut
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &RationalSearch{
		denomCut: denomCut,
		known:    make(map[rational.Rat]string),
		opts:     opts,
	}

	var first []rational.Rat
	for idx, grouping := range groupings {
		nums := make([]rational.Rat, len(grouping))
		for i, n := range grouping {
			if n == math.MinInt64 {
				return nil, &GroupingError{Index: idx, Size: len(grouping), cause: ErrInvalidSeed}
			}
			nums[i] = rational.FromInt(n)
		}

		var entries []Entry
		switch len(nums) {
		case 1:
			entries = []Entry{{Value: nums[0], Expr: nums[0].String()}}
		case 2:
			entries = PairExprs(nums[0], nums[1])
		case 3:
			entries = TripleExprs(nums[0], nums[1], nums[2])
		default:
			return nil, &GroupingError{Index: idx, Size: len(grouping), cause: ErrUnsupportedArity}
		}

		for _, e := range entries {
			if _, ok := s.known[e.Value]; ok {
				continue
			}
			s.known[e.Value] = e.Expr
			first = append(first, e.Value)
		}
	}

	s.levels = [][]rational.Rat{first}
	return s, nil
}

// DenomCut returns the exclusive bound on reduced denominators.
func (s *RationalSearch) DenomCut() int64 { return s.denomCut }

// Depth returns the number of computed levels, including level 0.
func (s *RationalSearch) Depth() int { return len(s.levels) }

// Level returns the values first discovered at level i.
// The returned slice must not be modified.
func (s *RationalSearch) Level(i int) []rational.Rat {
	if i < 0 || i >= len(s.levels) {
		return nil
	}
	return s.levels[i]
}

// Len returns the number of known values.
func (s *RationalSearch) Len() int { return len(s.known) }

// Expr returns the recorded expression for v.
func (s *RationalSearch) Expr(v rational.Rat) (string, bool) {
	e, ok := s.known[v]
	return e, ok
}

// IntegerLevels projects every level onto its integer values, keeping order.
func (s *RationalSearch) IntegerLevels() [][]int64 {
	out := make([][]int64, len(s.levels))
	for i, level := range s.levels {
		ints := make([]int64, 0, len(level))
		for _, v := range level {
			if v.IsInt() {
				ints = append(ints, v.Int())
			}
		}
		out[i] = ints
	}
	return out
}

// IntegerTable returns the integer-keyed part of the reachability table.
func (s *RationalSearch) IntegerTable() map[int64]string {
	out := make(map[int64]string)
	for v, e := range s.known {
		if v.IsInt() {
			out[v.Int()] = e
		}
	}
	return out
}
