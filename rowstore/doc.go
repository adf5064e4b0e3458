// Package rowstore provides the key-value substrate that rowmap records
// live in.
//
// The package defines the [Store] contract (get/put/scan/count over ordered
// keys) and two implementations:
//
//   - [MemoryStore]: in-memory map with a sorted key index
//   - [FileStore]: MemoryStore semantics plus a durable append-only row log
//     with replay on open
//
// # Concurrency contract
//
// Both implementations are safe for concurrent readers. The export engine
// relies on this: one store handle is shared across all export workers, and
// the store is treated as read-only for the duration of an export.
//
// # Row log format
//
// The FileStore log is self-describing. Its header records the codec name
// and compression so an existing log can be reopened regardless of the
// options the process was started with. Entries are framed individually;
// a torn final entry (crash mid-append) is truncated on open.
package rowstore
