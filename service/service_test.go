package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	nananiji "github.com/komori-n/nananiji-calculator"
	"github.com/komori-n/nananiji-calculator/blobstore"
	"github.com/komori-n/nananiji-calculator/preset"
	"github.com/komori-n/nananiji-calculator/resource"
)

// smallRegistry maps every list to a generator over the seeds 7 and 3,
// except nananiji, which uses 2 and 5.
func smallRegistry(t *testing.T) *Registry {
	t.Helper()
	ctx := context.Background()

	sevenThree, err := nananiji.FromLists(ctx, [][]int64{{7}, {3}}, nananiji.WithSearchDepth(1))
	require.NoError(t, err)
	twoFive, err := nananiji.FromLists(ctx, [][]int64{{2}, {5}}, nananiji.WithSearchDepth(1))
	require.NoError(t, err)

	gens := make(map[ListName]*nananiji.Generator)
	for _, l := range Lists {
		gens[l] = sevenThree
	}
	gens[ListName{Name: preset.Nananiji}] = twoFive
	return NewRegistry(gens)
}

func TestRequestJSON(t *testing.T) {
	var req Request
	require.NoError(t, json.Unmarshal([]byte(`{"value":"123","list_name":{"name":"Hanshin","split":true}}`), &req))
	assert.Equal(t, Request{Value: "123", List: ListName{Name: preset.Hanshin, Split: true}}, req)
	assert.Equal(t, "hanshin_a", req.List.String())

	require.NoError(t, json.Unmarshal([]byte(`{"value":"1","list_name":{"name":"nananiji","split":true}}`), &req))
	assert.False(t, req.List.Split, "nananiji has no split variant")

	assert.ErrorIs(t, json.Unmarshal([]byte(`{"value":"1","list_name":{"name":"tigers"}}`), &req), preset.ErrUnknown)

	b, err := json.Marshal(Result{Req: Request{Value: "10", List: ListName{Name: preset.Kyojin}}, Expr: "(7+3)"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"req":{"value":"10","list_name":{"name":"kyojin"}},"expr":"(7+3)"}`, string(b))
}

func TestHandle(t *testing.T) {
	h := NewHandler(smallRegistry(t), WithVerify(true))
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"Hanshin", Request{Value: "21", List: ListName{Name: preset.Hanshin}}, "3*7"},
		{"KyojinSplit", Request{Value: " 10 ", List: ListName{Name: preset.Kyojin, Split: true}}, "(7+3)"},
		{"Nananiji", Request{Value: "10", List: ListName{Name: preset.Nananiji}}, "2*5"},
		{"NananijiSplitIgnored", Request{Value: "5", List: ListName{Name: preset.Nananiji, Split: true}}, "5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.Handle(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Expr)
			assert.Equal(t, tt.req, res.Req)
		})
	}
}

func TestHandle_Errors(t *testing.T) {
	h := NewHandler(smallRegistry(t))
	ctx := context.Background()

	_, err := h.Handle(ctx, Request{Value: "twelve", List: ListName{Name: preset.Hanshin}})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = h.Handle(ctx, Request{Value: "99999999999999999999", List: ListName{Name: preset.Hanshin}})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = h.Handle(ctx, Request{Value: "1", List: ListName{Name: "tigers"}})
	assert.ErrorIs(t, err, ErrUnknownList)

	_, err = h.Handle(ctx, Request{Value: "11", List: ListName{Name: preset.Hanshin}})
	assert.ErrorIs(t, err, nananiji.ErrNoMatchingRule)
}

func TestHandle_Admission(t *testing.T) {
	ctrl := resource.NewController(resource.Config{MaxConcurrent: 1})
	h := NewHandler(smallRegistry(t), WithAdmission(ctrl))

	require.True(t, ctrl.TryAcquire())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Handle(ctx, Request{Value: "21", List: ListName{Name: preset.Hanshin}})
	assert.ErrorIs(t, err, context.Canceled)

	ctrl.Release()
	res, err := h.Handle(context.Background(), Request{Value: "21", List: ListName{Name: preset.Hanshin}})
	require.NoError(t, err)
	assert.Equal(t, "3*7", res.Expr)
	assert.Equal(t, int64(0), ctrl.InFlight())
}

func TestRegistry_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	require.NoError(t, smallRegistry(t).Save(ctx, store))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"hanshin.bin", "hanshin_a.bin", "kyojin.bin", "kyojin_a.bin", "nananiji.bin"}, names)

	r, err := LoadRegistry(ctx, store, 2)
	require.NoError(t, err)

	g, err := r.Choose(ListName{Name: preset.Nananiji})
	require.NoError(t, err)
	assert.Equal(t, "2*5", g.MustGenerate(10))

	require.NoError(t, store.Delete(ctx, "kyojin_a.bin"))
	_, err = LoadRegistry(ctx, store, 2)
	assert.ErrorIs(t, err, nananiji.ErrNotFound)
}

func TestBuildRegistry(t *testing.T) {
	if testing.Short() {
		t.Skip("builds five depth-3 searches")
	}
	r, err := BuildRegistry(context.Background(), 2)
	require.NoError(t, err)

	h := NewHandler(r, WithVerify(true))
	for _, l := range Lists {
		res, err := h.Handle(context.Background(), Request{Value: "2024", List: l})
		require.NoError(t, err, l.String())
		assert.NotEmpty(t, res.Expr)
	}
}

func TestHandle_Cache(t *testing.T) {
	ctrl := resource.NewController(resource.Config{MaxConcurrent: 1})
	h := NewHandler(smallRegistry(t), WithCache(1<<10), WithAdmission(ctrl))
	req := Request{Value: "63", List: ListName{Name: preset.Kyojin}}

	res, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "3*3*7", res.Expr)

	// With every slot taken only a cached answer can be served.
	require.True(t, ctrl.TryAcquire())
	defer ctrl.Release()

	res, err = h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "3*3*7", res.Expr)

	hits, misses := h.cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestHandle_Tracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	h := NewHandler(smallRegistry(t), WithTracerProvider(tp))
	ctx := context.Background()

	_, err := h.Handle(ctx, Request{Value: "21", List: ListName{Name: preset.Hanshin}})
	require.NoError(t, err)
	_, err = h.Handle(ctx, Request{Value: "x", List: ListName{Name: preset.Hanshin}})
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "nananiji.Handle", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("nananiji.list", "hanshin"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("nananiji.expr_len", 3))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Len(t, spans[1].Events(), 1, "the error is recorded")
}
