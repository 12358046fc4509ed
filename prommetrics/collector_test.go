package prommetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nananiji "github.com/komori-n/nananiji-calculator"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordGenerate(3, time.Millisecond, nil)
	c.RecordGenerate(1, time.Millisecond, errors.New("boom"))
	c.RecordLoad(4096, time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.generates.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.generates.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.loads.WithLabelValues("success")))

	n, err := testutil.GatherAndCount(reg, "nananiji_generate_steps")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCollector_WithGenerator(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	g, err := nananiji.FromLists(context.Background(), [][]int64{{7}, {3}},
		nananiji.WithSearchDepth(1),
		nananiji.WithMetricsCollector(c),
	)
	require.NoError(t, err)
	_, _ = g.Generate(63)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.builds.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.knownValues))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.rules))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.generates.WithLabelValues("success")))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
