package search

import (
	"log/slog"
	"runtime"
)

type options struct {
	parallelism int
	logger      *slog.Logger
}

// Option configures a RationalSearch.
type Option func(*options)

// WithParallelism bounds the number of concurrent tasks used by Extend.
// Values below one run sequentially.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.parallelism = n
	}
}

// WithLogger sets the logger used for per-level progress records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func defaultOptions() options {
	return options{
		parallelism: runtime.GOMAXPROCS(0),
	}
}
