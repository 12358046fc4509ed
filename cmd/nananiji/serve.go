package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	gojson "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	nananiji "github.com/komori-n/nananiji-calculator"
	"github.com/komori-n/nananiji-calculator/prommetrics"
	"github.com/komori-n/nananiji-calculator/resource"
	"github.com/komori-n/nananiji-calculator/service"
	"github.com/komori-n/nananiji-calculator/service/httpapi"
)

const shutdownTimeout = 5 * time.Second

type serveFlags struct {
	rate       float64
	parallel   int64
	cacheBytes int64
	httpAddr   string
}

type errorLine struct {
	Error string `json:"error"`
}

func newServeCmd(root *rootFlags) *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer JSON requests from stdin or over HTTP",
		Long: `serve preloads all five generators and answers one request per input
line, for example

  {"value":"2024","list_name":{"name":"hanshin","split":true}}

Each answer is written as one JSON line: {"req":...,"expr":"..."} or
{"error":"..."}. With -r the generators are loaded from the store,
otherwise they are built.

With --http the same requests are accepted on POST /v1/expressions and
Prometheus metrics are exported on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, root, &f)
		},
	}

	cmd.Flags().Float64Var(&f.rate, "rate", 0, "maximum requests per second (0 for unlimited)")
	cmd.Flags().Int64Var(&f.parallel, "parallel", 1, "maximum requests served at once")
	cmd.Flags().Int64Var(&f.cacheBytes, "cache-bytes", 4<<20, "expression cache size (0 disables it)")
	cmd.Flags().StringVar(&f.httpAddr, "http", "", "listen address, e.g. :8080 (default: read stdin)")
	return cmd
}

func runServe(cmd *cobra.Command, root *rootFlags, f *serveFlags) error {
	ctx := cmd.Context()

	e, err := root.env(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	addr := f.httpAddr
	if addr == "" {
		addr = e.cfg.HTTP.Addr
	}

	opts := root.options(e)
	var metrics *prometheus.Registry
	if addr != "" {
		metrics = prometheus.NewRegistry()
		metrics.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, nananiji.WithMetricsCollector(prommetrics.New(metrics)))
	}

	var reg *service.Registry
	if root.readFile {
		reg, err = service.LoadRegistry(ctx, e.store, runtime.GOMAXPROCS(0), opts...)
	} else {
		reg, err = service.BuildRegistry(ctx, 1, opts...)
	}
	if err != nil {
		return err
	}

	hopts := []service.Option{
		service.WithVerify(root.verify),
		service.WithLogger(e.logger.Logger),
		service.WithAdmission(resource.NewController(resource.Config{
			MaxConcurrent:  f.parallel,
			RequestsPerSec: f.rate,
		})),
	}
	if f.cacheBytes > 0 {
		hopts = append(hopts, service.WithCache(f.cacheBytes))
	}
	h := service.NewHandler(reg, hopts...)

	if addr != "" {
		router := httpapi.NewRouter(h,
			httpapi.WithMetrics(metrics),
			httpapi.WithTracing("nananiji"),
			httpapi.WithLogger(e.logger.Logger),
		)
		return serveHTTP(ctx, addr, router, e.logger.Logger)
	}
	return serveLines(cmd, h)
}

func serveLines(cmd *cobra.Command, h *service.Handler) error {
	ctx := cmd.Context()
	in := bufio.NewScanner(cmd.InOrStdin())
	out := gojson.NewEncoder(cmd.OutOrStdout())

	for in.Scan() {
		line := in.Bytes()
		if len(line) == 0 {
			continue
		}

		var req service.Request
		if err := gojson.Unmarshal(line, &req); err != nil {
			if err := out.Encode(errorLine{Error: fmt.Sprintf("decode request: %v", err)}); err != nil {
				return err
			}
			continue
		}

		res, err := h.Handle(ctx, req)
		if err != nil {
			if err := out.Encode(errorLine{Error: err.Error()}); err != nil {
				return err
			}
			continue
		}
		if err := out.Encode(res); err != nil {
			return err
		}
	}
	return in.Err()
}

// serveHTTP runs until ctx is done, then drains in-flight requests.
func serveHTTP(ctx context.Context, addr string, router *gin.Engine, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
