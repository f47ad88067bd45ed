// Package store provides SQLite-backed durable storage for finalized datasets.
//
// Each dataset is one row of the datasets table: its ID, kind, row count,
// a content digest and the records as canonical JSON. Insertion order is
// preserved through the seq column so a catalog rebuilt from the store lists
// datasets in the order they were added.
//
// # Integrity
//
// The digest is a domain-separated SHA-256 over the canonical encoding of
// {id, kind, records} (see ir.Digest). It is written with the dataset and
// verified on every load, so a row edited outside the store is reported as
// corrupt instead of silently served.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s on lock contention
//   - Single open connection: SQLite allows one writer at a time
//
// Schema changes are applied through PRAGMA user_version migrations.
package store
