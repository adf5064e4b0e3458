// Package rowmap is an embedded row store for records with dynamic columns,
// plus a parallel CSV export engine.
//
// Records are ordered column/value maps addressed by a string key. No two
// records have to share a schema; the export resolves the union of all
// column names into a single header, places caller-chosen priority columns
// first and projects every record onto that header, leaving absent columns
// empty.
//
// Data lives either purely in memory or durably in an append-only log that
// is replayed on open. Exports partition the sorted keyspace into chunks,
// encode them on parallel workers and merge the fragments into one
// atomically renamed CSV file.
//
//	db, err := rowmap.Open("./data")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	_ = db.Put(ctx, "user-1", model.RowOf("name", "hase", "city", "berlin"))
//
//	stats, err := db.ExportCSV(ctx, "users.csv",
//		export.WithPriorityColumns("id", "name"),
//		export.WithFilters(export.Contains(2, "hamburg")),
//	)
package rowmap
