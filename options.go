package rowmap

import (
	"log/slog"

	"github.com/hupe1980/rowmap/rowstore"
)

type options struct {
	storeOptions     []func(*rowstore.Options)
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures RowMap constructor behavior.
type Option func(*options)

// WithStoreOptions forwards options to the underlying durable store, such
// as the codec, log compression and per-write fsync behavior. It has no
// effect on a purely in-memory database.
//
// Example:
//
//	db, _ := rowmap.Open("./data",
//	    rowmap.WithStoreOptions(
//	        rowstore.WithCompression(rowstore.CompressionLZ4),
//	        rowstore.WithSyncWrites(true),
//	    ),
//	)
func WithStoreOptions(optFns ...func(*rowstore.Options)) Option {
	return func(o *options) {
		o.storeOptions = append(o.storeOptions, optFns...)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &rowmap.BasicMetricsCollector{}
//	db, _ := rowmap.New(rowmap.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
//	fmt.Printf("Puts: %d, Avg latency: %dns\n", stats.PutCount, stats.PutAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := rowmap.NewJSONLogger(slog.LevelInfo)
//	db, _ := rowmap.New(rowmap.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
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

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
