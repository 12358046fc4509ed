// Package search implements the exact rational reachability search.
//
// A RationalSearch starts from seed groupings (digit splits of a base
// numeral such as [227], [22,7], [2,2,7]) and discovers, level by level,
// every rational value reachable by combining earlier values pairwise with
// + - * /. Each discovered value is recorded with the first expression
// string found for it; later discoveries never replace it.
//
// # Levels
//
// Level 0 holds the values directly expressible from each grouping.
// Level k combines level i with level k-1-i for every i, so a value at
// level k costs k pairwise operator applications beyond the seeds.
//
//	s, _ := search.FromLists([][]int64{{227}, {22, 7}, {2, 2, 7}}, 10)
//	_ = s.Extend(ctx, 3) // levels 0, 1 and 2
//
// Results with a reduced denominator of at least the denominator cut are
// discarded. The cut bounds the table size at the cost of completeness.
//
// # Concurrency
//
// Extend evaluates a level in parallel tasks and merges them in task
// enumeration order with a single writer, so the table is identical to a
// sequential run. A RationalSearch itself is not safe for concurrent use.
package search
