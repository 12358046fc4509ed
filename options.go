package nananiji

import (
	"log/slog"
	"runtime"

	"github.com/komori-n/nananiji-calculator/codec"
	"github.com/komori-n/nananiji-calculator/persistence"
)

const (
	// DefaultSearchDepth is the number of search levels built by default.
	DefaultSearchDepth = 3
	// DefaultDenomCut bounds the reduced denominators kept during the search.
	DefaultDenomCut = 10
	// DefaultMaxSteps bounds the decomposition steps of one Generate call.
	DefaultMaxSteps = 1024
)

type options struct {
	searchDepth      int
	denomCut         int64
	parallelism      int
	maxSteps         int
	codec            codec.Codec
	compression      persistence.CompressionType
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures generator construction and loading.
type Option func(*options)

// WithSearchDepth sets the number of search levels, counting the seed
// level. Depth 3 combines seeds twice.
func WithSearchDepth(depth int) Option {
	return func(o *options) {
		o.searchDepth = depth
	}
}

// WithDenomCut sets the exclusive bound on reduced denominators of
// intermediate values. Larger values find more identities and cost more.
func WithDenomCut(cut int64) Option {
	return func(o *options) {
		o.denomCut = cut
	}
}

// WithParallelism bounds the goroutines used to expand a search level.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithMaxSteps bounds the decomposition steps of one Generate call.
// Values below one select DefaultMaxSteps.
func WithMaxSteps(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = DefaultMaxSteps
		}
		o.maxSteps = n
	}
}

// WithCodec sets the codec used by MarshalBinary and Save.
//
// If nil is passed, codec.Default is used. Loading always uses the codec
// recorded in the snapshot.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression sets the snapshot compression used by MarshalBinary and Save.
func WithCompression(c persistence.CompressionType) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example:
//
//	metrics := &nananiji.BasicMetricsCollector{}
//	gen, _ := nananiji.New(ctx, preset.Hanshin, true, nananiji.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
//
// Example:
//
//	logger := nananiji.NewJSONLogger(slog.LevelInfo)
//	gen, _ := nananiji.New(ctx, preset.Kyojin, false, nananiji.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func defaultOptions() options {
	return options{
		searchDepth:      DefaultSearchDepth,
		denomCut:         DefaultDenomCut,
		parallelism:      runtime.GOMAXPROCS(0),
		maxSteps:         DefaultMaxSteps,
		codec:            codec.Default,
		compression:      persistence.CompressionZSTD,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
}

func applyOptions(optFns []Option) options {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}
