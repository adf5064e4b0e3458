package export

import (
	"log/slog"

	"github.com/hupe1980/rowmap/internal/fs"
)

// DefaultWorkerCount is the fallback worker count used when the runtime
// cannot report available parallelism.
const DefaultWorkerCount = 4

// Options configures an export run.
type Options struct {
	// Workers is the number of parallel export workers. If <= 0, the
	// available hardware parallelism is used (DefaultWorkerCount if the
	// runtime cannot report it).
	Workers int

	// PriorityColumns are forced to the front of every exported row, in
	// the given order, whether or not any record carries them.
	PriorityColumns []string

	// Filters drop rows by substring containment at 0-based positions in
	// the resolved header order.
	Filters []Predicate

	// Logger receives progress and warning logs. Nil disables logging;
	// the export result itself is returned as Stats.
	Logger *slog.Logger

	// SyncOnMerge fsyncs the output file before it is renamed into place.
	SyncOnMerge bool

	// MaxBytesPerSec throttles writing of the final file. 0 means
	// unlimited.
	MaxBytesPerSec int64

	// fs abstracts the output filesystem so merge failures can be
	// injected in tests.
	fs fs.FileSystem
}

// DefaultOptions are the defaults used by New.
var DefaultOptions = Options{
	SyncOnMerge: true,
}

// WithWorkers configures the number of parallel export workers.
func WithWorkers(n int) func(*Options) {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithPriorityColumns configures the leading columns of every exported
// row, in the given order.
func WithPriorityColumns(columns ...string) func(*Options) {
	return func(o *Options) {
		o.PriorityColumns = columns
	}
}

// WithFilters configures the row filters.
func WithFilters(filters ...Predicate) func(*Options) {
	return func(o *Options) {
		o.Filters = filters
	}
}

// WithLogger configures structured logging for the export run.
func WithLogger(logger *slog.Logger) func(*Options) {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithSyncOnMerge configures whether the output file is fsynced before
// the final rename.
func WithSyncOnMerge(sync bool) func(*Options) {
	return func(o *Options) {
		o.SyncOnMerge = sync
	}
}

// WithMaxBytesPerSec throttles writing of the final file.
func WithMaxBytesPerSec(n int64) func(*Options) {
	return func(o *Options) {
		o.MaxBytesPerSec = n
	}
}
