package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/komori-n/nananiji-calculator/internal/cache"
	"github.com/komori-n/nananiji-calculator/internal/evaluate"
	"github.com/komori-n/nananiji-calculator/resource"
)

// Handler serves requests from a Registry. It is safe for concurrent use.
type Handler struct {
	registry  *Registry
	admission *resource.Controller
	cache     *cache.ShardedLRU
	verify    bool
	logger    *slog.Logger
	tracer    trace.Tracer
}

const tracerName = "github.com/komori-n/nananiji-calculator/service"

// Option configures a Handler.
type Option func(*Handler)

// WithAdmission bounds request rate and concurrency. Without it every
// request is admitted.
func WithAdmission(c *resource.Controller) Option {
	return func(h *Handler) {
		h.admission = c
	}
}

// WithCache memoizes expressions in an LRU holding up to capacity bytes of
// expression text. Cached answers skip admission.
func WithCache(capacity int64) Option {
	return func(h *Handler) {
		h.cache = cache.NewShardedLRU(capacity)
	}
}

// WithVerify re-evaluates every expression before returning it.
func WithVerify(verify bool) Option {
	return func(h *Handler) {
		h.verify = verify
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithTracerProvider sets where request spans go. The global provider is
// used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(h *Handler) {
		if tp != nil {
			h.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewHandler creates a Handler over r.
func NewHandler(r *Registry, opts ...Option) *Handler {
	h := &Handler{
		registry: r,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle answers one request.
func (h *Handler) Handle(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	ctx, span := h.tracer.Start(ctx, "nananiji.Handle", trace.WithAttributes(
		attribute.String("nananiji.list", req.List.String()),
		attribute.String("nananiji.value", req.Value),
	))
	defer span.End()

	h.logger.InfoContext(ctx, "request received",
		"value", req.Value,
		"list", req.List.String(),
	)

	expr, err := h.handle(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "request failed",
			"value", req.Value,
			"list", req.List.String(),
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetAttributes(attribute.Int("nananiji.expr_len", len(expr)))

	h.logger.DebugContext(ctx, "request served",
		"value", req.Value,
		"expr_len", len(expr),
		"elapsed", time.Since(start),
	)
	return Result{Req: req, Expr: expr}, nil
}

func (h *Handler) handle(ctx context.Context, req Request) (string, error) {
	n, err := parseValue(req.Value)
	if err != nil {
		return "", err
	}

	gen, err := h.registry.Choose(req.List)
	if err != nil {
		return "", err
	}

	key := cache.Key{List: req.List.String(), N: n}
	if h.cache != nil {
		if expr, ok := h.cache.Get(key); ok {
			trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("nananiji.cached", true))
			return expr, nil
		}
	}

	if err := h.admission.Acquire(ctx); err != nil {
		return "", err
	}
	defer h.admission.Release()

	expr, err := gen.Generate(n)
	if err != nil {
		return "", err
	}

	if h.verify {
		ok, err := evaluate.Equals(expr, n)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrVerification, err)
		}
		if !ok {
			return "", fmt.Errorf("%w: %s != %d", ErrVerification, expr, n)
		}
	}

	if h.cache != nil {
		h.cache.Set(key, expr)
	}
	return expr, nil
}
