// Package ir provides the value and record types shared by every other
// package of the query engine.
//
// This package contains data types only. It imports the schema vocabulary
// and nothing else internal, so it stays the foundational layer with no
// circular dependencies.
//
// Key design constraints:
//   - Values are scalars: Number or String. Absence is nil, never a sentinel.
//   - Records are read-only once handed to the engine.
//   - Result rows keep the column order requested by the query.
//   - Canonical JSON (sorted keys, NFC strings, no HTML escaping) is the only
//     encoding used for digests and golden snapshots.
package ir
