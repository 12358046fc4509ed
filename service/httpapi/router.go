// Package httpapi exposes a service.Handler over HTTP.
//
//	POST /v1/expressions          {"value":"2024","list_name":{"name":"hanshin","split":true}}
//	GET  /v1/expressions/:list/:value?split=true
//	GET  /healthz
//	GET  /metrics                 (when a Prometheus gatherer is configured)
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	nananiji "github.com/komori-n/nananiji-calculator"
	"github.com/komori-n/nananiji-calculator/preset"
	"github.com/komori-n/nananiji-calculator/service"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

type config struct {
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	service  string
}

// Option configures the router.
type Option func(*config)

// WithMetrics serves g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(c *config) {
		c.gatherer = g
	}
}

// WithTracing opens a server span named after service for every request,
// using the global tracer provider.
func WithTracing(service string) Option {
	return func(c *config) {
		c.service = service
	}
}

// WithLogger logs failed requests to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewRouter returns a gin engine serving h.
func NewRouter(h *service.Handler, opts ...Option) *gin.Engine {
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.service != "" {
		r.Use(otelgin.Middleware(cfg.service))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	v1.POST("/expressions", postExpression(h, cfg.logger))
	v1.GET("/expressions/:list/:value", getExpression(h, cfg.logger))
	return r
}

func postExpression(h *service.Handler, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		answer(c, h, logger, req)
	}
}

func getExpression(h *service.Handler, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, err := preset.Parse(c.Param("list"))
		if err != nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		req := service.Request{
			Value: c.Param("value"),
			List: service.ListName{
				Name:  name,
				Split: c.Query("split") == "true" && name != preset.Nananiji,
			},
		}
		answer(c, h, logger, req)
	}
}

func answer(c *gin.Context, h *service.Handler, logger *slog.Logger, req service.Request) {
	res, err := h.Handle(c.Request.Context(), req)
	if err != nil {
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request.Context(), "request failed",
				"list", req.List.String(),
				"value", req.Value,
				"status", status,
				"error", err,
			)
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnknownList):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, nananiji.ErrNoMatchingRule), errors.Is(err, nananiji.ErrStepLimit):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
