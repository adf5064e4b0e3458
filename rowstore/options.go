package rowstore

import "github.com/hupe1980/rowmap/codec"

// Compression selects how FileStore log payloads are compressed.
type Compression uint8

const (
	// CompressionNone stores payloads uncompressed.
	CompressionNone Compression = iota
	// CompressionZstd compresses payloads with zstd (default).
	CompressionZstd
	// CompressionLZ4 compresses payloads with lz4 block compression.
	CompressionLZ4
)

// String returns the string representation of the Compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// Options configures a FileStore.
type Options struct {
	// Codec encodes rows in the log. Existing logs are self-describing:
	// on reopen, the codec recorded in the log header wins.
	Codec codec.Codec

	// Compression selects the log payload compression for new logs.
	Compression Compression

	// SyncWrites fsyncs the log after every append. Durable but slow;
	// without it a crash may lose the most recent appends (never corrupt
	// the log: a torn tail is truncated on open).
	SyncWrites bool

	// FileName is the log file name inside the store directory.
	FileName string
}

// DefaultOptions are the defaults used by Open.
var DefaultOptions = Options{
	Codec:       codec.Default,
	Compression: CompressionZstd,
	SyncWrites:  false,
	FileName:    "rows.log",
}

// WithCodec configures the codec used for encoding rows in new logs.
func WithCodec(c codec.Codec) func(*Options) {
	return func(o *Options) {
		if c == nil {
			c = codec.Default
		}
		o.Codec = c
	}
}

// WithCompression configures the log payload compression for new logs.
func WithCompression(c Compression) func(*Options) {
	return func(o *Options) {
		o.Compression = c
	}
}

// WithSyncWrites configures fsync-per-append durability.
func WithSyncWrites(sync bool) func(*Options) {
	return func(o *Options) {
		o.SyncWrites = sync
	}
}
