package nananiji

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komori-n/nananiji-calculator/internal/evaluate"
	"github.com/komori-n/nananiji-calculator/ordering"
	"github.com/komori-n/nananiji-calculator/preset"
	"github.com/komori-n/nananiji-calculator/search"
	"github.com/komori-n/nananiji-calculator/testutil"
)

// sevenThree has the rules Mul(7), Mul(3), MulSub(7, 3), MulAdd(7, 3) and
// no residue coverage, which keeps every expression easy to predict.
func sevenThree(t *testing.T, opts ...Option) *Generator {
	t.Helper()
	opts = append([]Option{WithSearchDepth(1)}, opts...)
	g, err := FromLists(context.Background(), [][]int64{{7}, {3}}, opts...)
	require.NoError(t, err)
	return g
}

func TestGenerate_Rules(t *testing.T) {
	g := sevenThree(t)

	require.Equal(t, []ordering.Rule{
		ordering.Mul(7),
		ordering.Mul(3),
		ordering.MulSub(7, 3),
		ordering.MulAdd(7, 3),
	}, g.Rules())

	tests := []struct {
		n    int64
		want string
	}{
		{7, "7"},
		{3, "3"},
		{21, "3*7"},
		{9, "3*3"},
		{63, "3*3*7"},
		{10, "(7+3)"},
		{4, "(7-3)"},
	}
	for _, tt := range tests {
		got, err := g.Generate(tt.n)
		require.NoError(t, err, tt.n)
		assert.Equal(t, tt.want, got, tt.n)

		ok, err := evaluate.Equals(got, tt.n)
		require.NoError(t, err)
		assert.True(t, ok, "%s != %d", got, tt.n)
	}
}

func TestGenerate_NoRule(t *testing.T) {
	g := sevenThree(t)

	// 11 = 2*7 - 3, and nothing resolves 2.
	_, err := g.Generate(11)
	require.ErrorIs(t, err, ErrNoMatchingRule)

	var nre *NoRuleError
	require.True(t, errors.As(err, &nre))
	assert.Equal(t, int64(2), nre.Target)

	assert.Panics(t, func() { g.MustGenerate(11) })
}

func TestGenerate_NoRulesAtAll(t *testing.T) {
	g, err := FromLists(context.Background(), [][]int64{{2}}, WithSearchDepth(1))
	require.NoError(t, err)
	assert.Empty(t, g.Rules())

	expr, err := g.Generate(2)
	require.NoError(t, err)
	assert.Equal(t, "2", expr)

	_, err = g.Generate(5)
	assert.ErrorIs(t, err, ErrNoMatchingRule)
}

func TestFromLists_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := FromLists(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidGrouping)

	_, err = FromLists(ctx, [][]int64{{1, 2, 3, 4}})
	assert.ErrorIs(t, err, ErrInvalidGrouping)

	_, err = FromLists(ctx, [][]int64{{7}}, WithDenomCut(0))
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = FromLists(ctx, [][]int64{{7}}, WithSearchDepth(0))
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = New(ctx, preset.Name("tigers"), false)
	assert.ErrorIs(t, err, ErrInvalidGrouping)
}

func TestFromLists_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FromLists(ctx, [][]int64{{2, 2, 7}}, WithSearchDepth(3))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStats(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	g := sevenThree(t, WithMetricsCollector(metrics))

	s := g.Stats()
	assert.Equal(t, 1, s.SearchDepth)
	assert.Equal(t, int64(DefaultDenomCut), s.DenomCut)
	assert.Equal(t, 2, s.Known)
	assert.Equal(t, 4, s.Rules)
	assert.Equal(t, 4, s.RulesBeforeShrink)
	assert.Equal(t, int64(7), s.Divisor)
	assert.False(t, s.Shrunk)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []int64{3, 7}, g.KnownValues())

	_, _ = g.Generate(63)
	_, _ = g.Generate(11)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(2), stats.GenerateCount)
	assert.Equal(t, int64(1), stats.GenerateErrors)
}

func TestRulesIsCopy(t *testing.T) {
	g := sevenThree(t)
	r := g.Rules()
	r[0] = ordering.Mul(99)
	assert.Equal(t, ordering.Mul(7), g.Rules()[0])
}

func nananiji(t *testing.T, opts ...Option) *Generator {
	t.Helper()
	if testing.Short() {
		t.Skip("builds a depth-3 search")
	}
	g, err := New(context.Background(), preset.Nananiji, false, opts...)
	require.NoError(t, err)
	return g
}

func TestGenerate_Nananiji(t *testing.T) {
	g := nananiji(t)

	targets := []int64{1, 227, 123456, 0, 2, 1000, 2024, 65536, 1_000_000_007, -1000}
	targets = append(targets, testutil.NewRNG(227).Targets(300, 15)...)
	for _, n := range targets {
		expr, err := g.Generate(n)
		require.NoError(t, err, n)
		testutil.AssertExpr(t, expr, n, "227", "22", "7", "2")
	}

	assert.True(t, g.Stats().Shrunk)
	assert.Equal(t, int64(227), g.Stats().Divisor)
	assert.True(t, ordering.Covers(g.Rules(), 227))
}

func TestGenerate_ShrinkKeepsOutput(t *testing.T) {
	if testing.Short() {
		t.Skip("builds a depth-3 search")
	}
	ctx := context.Background()
	groupings, err := preset.Groupings(preset.Nananiji, false)
	require.NoError(t, err)

	g, err := FromLists(ctx, groupings)
	require.NoError(t, err)

	// Rebuild the unshrunk ordering and compare outputs: rules past the
	// retained prefix are never reached.
	full := *g
	full.rules = fullOrdering(t, groupings)
	require.Greater(t, len(full.rules), len(g.rules))
	if diff := cmp.Diff(g.rules, full.rules[:len(g.rules)]); diff != "" {
		t.Fatalf("shrunk rules are not a prefix (-shrunk +full):\n%s", diff)
	}

	for n := int64(-3000); n <= 3000; n += 7 {
		a, err := g.Generate(n)
		require.NoError(t, err, n)
		b, err := full.Generate(n)
		require.NoError(t, err, n)
		assert.Equal(t, a, b, n)
	}
}

func TestGenerate_StepLimit(t *testing.T) {
	g := nananiji(t, WithMaxSteps(1))

	_, err := g.Generate(1 << 60)
	require.ErrorIs(t, err, ErrStepLimit)

	var sle *StepLimitError
	require.True(t, errors.As(err, &sle))
	assert.Equal(t, 1, sle.Steps)
}

func TestGenerate_Concurrent(t *testing.T) {
	g := nananiji(t)

	want := make(map[int64]string)
	for n := int64(0); n < 500; n++ {
		want[n] = g.MustGenerate(n * 1009)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := int64(0); n < 500; n++ {
				expr, err := g.Generate(n * 1009)
				assert.NoError(t, err)
				assert.Equal(t, want[n], expr)
			}
		}()
	}
	wg.Wait()
}

func TestNew_Presets(t *testing.T) {
	if testing.Short() {
		t.Skip("builds depth-3 searches")
	}
	for _, name := range preset.Names {
		for _, split := range []bool{false, true} {
			t.Run(preset.BlobName(name, split), func(t *testing.T) {
				g, err := New(context.Background(), name, split)
				require.NoError(t, err)

				for _, n := range []int64{1, 77, 4096, 987654321} {
					expr, err := g.Generate(n)
					require.NoError(t, err, n)
					testutil.AssertExpr(t, expr, n)
				}
			})
		}
	}
}

func fullOrdering(t *testing.T, groupings [][]int64) []ordering.Rule {
	t.Helper()
	rs, err := search.FromLists(groupings, DefaultDenomCut)
	require.NoError(t, err)
	require.NoError(t, rs.Extend(context.Background(), DefaultSearchDepth))
	return ordering.Sort(ordering.Build(rs.IntegerLevels()))
}
