package nananiji

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/komori-n/nananiji-calculator/ordering"
	"github.com/komori-n/nananiji-calculator/preset"
	"github.com/komori-n/nananiji-calculator/search"
)

// Stats describes how a Generator was built.
type Stats struct {
	SearchDepth       int
	DenomCut          int64
	Known             int
	Rules             int
	RulesBeforeShrink int
	// Divisor is the largest positive seed-level integer used to shrink
	// the ordering. Zero when no such integer exists.
	Divisor   int64
	Shrunk    bool
	BuildTime time.Duration
}

// Generator writes integers as expressions over a fixed seed set.
//
// A Generator is read-only once built and safe for concurrent use.
type Generator struct {
	known map[int64]string
	rules []ordering.Rule
	stats Stats
	opts  options
}

// New builds the generator of a named preset.
func New(ctx context.Context, name preset.Name, allowSplit bool, optFns ...Option) (*Generator, error) {
	groupings, err := preset.Groupings(name, allowSplit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGrouping, err)
	}

	o := applyOptions(optFns)
	o.logger = o.logger.WithPreset(preset.BlobName(name, allowSplit))

	return build(ctx, groupings, o)
}

// FromLists builds a generator from explicit seed groupings. Each grouping
// holds one to three integers.
func FromLists(ctx context.Context, groupings [][]int64, optFns ...Option) (*Generator, error) {
	return build(ctx, groupings, applyOptions(optFns))
}

func build(ctx context.Context, groupings [][]int64, o options) (*Generator, error) {
	start := time.Now()
	stats := Stats{SearchDepth: o.searchDepth, DenomCut: o.denomCut}

	g, err := buildGenerator(ctx, groupings, o, &stats)
	stats.BuildTime = time.Since(start)

	o.metricsCollector.RecordBuild(stats.Known, stats.Rules, stats.BuildTime, err)
	o.logger.LogBuild(ctx, stats, err)

	if err != nil {
		return nil, err
	}
	g.stats = stats
	return g, nil
}

func buildGenerator(ctx context.Context, groupings [][]int64, o options, stats *Stats) (*Generator, error) {
	if o.searchDepth < 1 {
		return nil, fmt.Errorf("%w: search depth %d must be at least 1", ErrInvalidOption, o.searchDepth)
	}

	rs, err := search.FromLists(groupings, o.denomCut,
		search.WithParallelism(o.parallelism),
		search.WithLogger(o.logger.Logger),
	)
	if err != nil {
		return nil, translateError(err)
	}
	if err := rs.Extend(ctx, o.searchDepth); err != nil {
		return nil, err
	}

	levels := rs.IntegerLevels()
	rules := ordering.Sort(ordering.Build(levels))
	stats.RulesBeforeShrink = len(rules)

	if div := largestPositive(levels[0]); div > 0 {
		stats.Divisor = div
		rules, stats.Shrunk = ordering.Shrink(rules, div)
		if !stats.Shrunk {
			o.logger.WarnContext(ctx, "ordering does not cover every residue class",
				"divisor", div,
				"rules", len(rules),
			)
		}
	}

	known := rs.IntegerTable()
	stats.Known = len(known)
	stats.Rules = len(rules)

	return &Generator{
		known: known,
		rules: slices.Clip(rules),
		opts:  o,
	}, nil
}

func largestPositive(values []int64) int64 {
	var best int64
	for _, v := range values {
		if v > best {
			best = v
		}
	}
	return best
}

// Generate returns an expression that evaluates to exactly n.
//
// Known values are answered from the table. Other targets are reduced by
// the first matching rule, recursively. A target no rule matches yields a
// *NoRuleError; exceeding the step budget yields a *StepLimitError.
func (g *Generator) Generate(n int64) (string, error) {
	start := time.Now()
	steps := 0

	expr, err := g.generate(n, &steps)

	g.opts.metricsCollector.RecordGenerate(steps, time.Since(start), err)
	if err != nil {
		g.opts.logger.LogGenerate(context.Background(), n, steps, err)
		return "", err
	}
	return expr, nil
}

// MustGenerate is like Generate but panics on error.
func (g *Generator) MustGenerate(n int64) string {
	expr, err := g.Generate(n)
	if err != nil {
		panic(err)
	}
	return expr
}

func (g *Generator) generate(n int64, steps *int) (string, error) {
	if e, ok := g.known[n]; ok {
		return e, nil
	}

	*steps++
	if *steps > g.opts.maxSteps {
		return "", &StepLimitError{Target: n, Steps: g.opts.maxSteps}
	}

	for _, r := range g.rules {
		q, ok := r.Match(n)
		if !ok {
			continue
		}

		switch r.Kind {
		case ordering.KindMul:
			sub, err := g.generate(q, steps)
			if err != nil {
				return "", err
			}
			return sub + "*" + g.known[r.Mul], nil

		case ordering.KindMulAdd:
			if q == 1 || q == -1 {
				sub, err := g.generate(n-r.Offset, steps)
				if err != nil {
					return "", err
				}
				return "(" + sub + "+" + g.known[r.Offset] + ")", nil
			}
			sub, err := g.generate(q, steps)
			if err != nil {
				return "", err
			}
			return "(" + sub + "*" + g.known[r.Mul] + "+" + g.known[r.Offset] + ")", nil

		case ordering.KindMulSub:
			if q == 1 || q == -1 {
				sub, err := g.generate(n+r.Offset, steps)
				if err != nil {
					return "", err
				}
				return "(" + sub + "-" + g.known[r.Offset] + ")", nil
			}
			sub, err := g.generate(q, steps)
			if err != nil {
				return "", err
			}
			return "(" + sub + "*" + g.known[r.Mul] + "-" + g.known[r.Offset] + ")", nil
		}
	}

	return "", &NoRuleError{Target: n}
}

// Known returns the table expression of n, if any.
func (g *Generator) Known(n int64) (string, bool) {
	e, ok := g.known[n]
	return e, ok
}

// KnownValues returns the table keys in ascending order.
func (g *Generator) KnownValues() []int64 {
	return slices.Sorted(maps.Keys(g.known))
}

// Rules returns a copy of the decomposition rules in trial order.
func (g *Generator) Rules() []ordering.Rule {
	return slices.Clone(g.rules)
}

// Len returns the number of table entries.
func (g *Generator) Len() int {
	return len(g.known)
}

// Stats returns build statistics. Loaded generators only carry the table
// and rule counts.
func (g *Generator) Stats() Stats {
	return g.stats
}
