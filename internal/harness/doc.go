// Package harness runs end-to-end query scenarios.
//
// A scenario registers one or more datasets, evaluates a single query through
// the full stack (catalog, SQLite store, engine) and checks the outcome
// against an expectation. Scenarios are plain YAML so new cases need no Go.
//
// # Scenario Format
//
//	name: rooms_max_seats
//	description: "Largest room per building"
//	datasets:
//	  - id: rooms
//	    kind: rooms
//	    records:
//	      - { shortName: DMP, capacity: 120 }
//	query:
//	  WHERE: {}
//	  OPTIONS: { COLUMNS: [rooms_shortname, maxSeats] }
//	  TRANSFORMATIONS:
//	    GROUP: [rooms_shortname]
//	    APPLY: [{ maxSeats: { MAX: rooms_seats } }]
//	expect:
//	  ordered: false
//	  rows:
//	    - { rooms_shortname: DMP, maxSeats: 120 }
//
// Records use physical attribute names; queries use qualified logical keys.
// An expectation holds rows (compared as a multiset unless ordered is set),
// a row count, or an error code (INVALID_QUERY, RESULT_TOO_LARGE).
//
// # Deterministic Testing
//
// Each run uses a fresh in-memory SQLite database and a constant query ID
// (query_id, default "test-query-default"), so RunWithGolden snapshots are
// byte-stable. Datasets are written through the store and read back before
// the query runs, so every scenario also exercises persistence.
//
// Regenerate golden files with:
//
//	go test ./internal/harness -update
package harness
