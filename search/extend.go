package search

import (
	"cmp"
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/komori-n/nananiji-calculator/operator"
	"github.com/komori-n/nananiji-calculator/rational"
)

// pairsPerTask is the approximate number of (lval, rval) pairs one task covers.
const pairsPerTask = 1 << 16

// task covers rows [lo, hi) of level i combined with all of level j.
type task struct {
	i, j   int
	lo, hi int
}

type candidate struct {
	value    rational.Rat
	lhs, rhs rational.Rat
	op       operator.Operator
}

// Extend computes levels until Depth() >= n. It is a no-op when the search
// already has n levels.
//
// If ctx is canceled the partially computed level is discarded and the
// search is left as it was before that level.
func (s *RationalSearch) Extend(ctx context.Context, n int) error {
	for k := len(s.levels); k < n; k++ {
		start := time.Now()

		level, err := s.expand(ctx, k)
		if err != nil {
			return err
		}
		s.levels = append(s.levels, level)

		if s.opts.logger != nil {
			s.opts.logger.Debug("search level computed",
				"depth", k,
				"discovered", len(level),
				"known", len(s.known),
				"elapsed", time.Since(start))
		}
	}
	return nil
}

// expand computes level k. Tasks only read the table; the merge below is
// the single writer and visits tasks in enumeration order, so the first
// discovery in sequential order wins.
func (s *RationalSearch) expand(ctx context.Context, k int) ([]rational.Rat, error) {
	tasks := s.plan(k)
	results := make([][]candidate, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.parallelism)
	for idx, t := range tasks {
		g.Go(func() error {
			out, err := s.combine(gctx, t)
			if err != nil {
				return err
			}
			results[idx] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var level []rational.Rat
	for _, out := range results {
		for _, c := range out {
			if _, ok := s.known[c.value]; ok {
				continue
			}
			s.known[c.value] = render(s.known[c.lhs], c.op, s.known[c.rhs])
			level = append(level, c.value)
		}
	}

	slices.SortStableFunc(level, func(a, b rational.Rat) int {
		return cmp.Compare(a.Den(), b.Den())
	})
	return level, nil
}

// plan enumerates (i, k-1-i) for ascending i and splits each pair into row
// chunks of level i.
func (s *RationalSearch) plan(k int) []task {
	var tasks []task
	for i := 0; i < k; i++ {
		j := k - 1 - i
		rows, cols := len(s.levels[i]), len(s.levels[j])
		if rows == 0 || cols == 0 {
			continue
		}

		chunk := max(1, pairsPerTask/cols)
		for lo := 0; lo < rows; lo += chunk {
			tasks = append(tasks, task{i: i, j: j, lo: lo, hi: min(lo+chunk, rows)})
		}
	}
	return tasks
}

func (s *RationalSearch) combine(ctx context.Context, t task) ([]candidate, error) {
	var (
		out  []candidate
		seen = make(map[rational.Rat]struct{})
	)

	right := s.levels[t.j]
	for _, lval := range s.levels[t.i][t.lo:t.hi] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, rval := range right {
			greater := lval.Cmp(rval) > 0
			for _, op := range operator.All {
				if greater && op.Commutative() {
					continue
				}

				v, ok := op.Invoke(lval, rval)
				if !ok || v.Den() >= s.denomCut {
					continue
				}
				if _, ok := s.known[v]; ok {
					continue
				}
				if _, ok := seen[v]; ok {
					continue
				}
				seen[v] = struct{}{}
				out = append(out, candidate{value: v, lhs: lval, rhs: rval, op: op})
			}
		}
	}
	return out, nil
}
