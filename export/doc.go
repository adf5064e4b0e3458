// Package export turns the full contents of a row store into one CSV file.
//
// The pipeline: a single-threaded pre-scan builds the schema (the ordered
// union of all column names) and resolves the final header — priority
// columns first, remaining columns in first-seen order. The sorted key
// snapshot is then partitioned into contiguous chunks, one worker per
// chunk. Each worker scans its key range, projects every record onto the
// shared header, applies the substring filters, and CSV-encodes surviving
// rows into an in-memory fragment. Fragments are concatenated strictly in
// chunk-index order behind a single header, so the output is byte-identical
// regardless of worker count or scheduling.
//
// The exporter is fail-fast: the first worker error cancels the remaining
// workers and fails the job. The output file is written to a temporary
// path and renamed into place only on full success; a failed export leaves
// no partial file behind.
//
// # Column-order strategy
//
// The schema is built by a full pre-scan before partitioning. This costs
// one extra pass over the dataset but guarantees that every column ever
// observed appears in the output, without requiring callers to declare the
// column universe up front.
package export
