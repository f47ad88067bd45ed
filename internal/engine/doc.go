// Package engine evaluates validated queries over in-memory datasets.
//
// ARCHITECTURE:
//
// Evaluation is a straight pipeline over one read-only dataset:
//
//	validate -> filter -> [cap rows] -> group -> [cap groups] -> apply -> project -> order
//
// Matches evaluates the WHERE tree against a record. GroupRecords and
// ApplyRules implement TRANSFORMATIONS. Projection and ordering produce the
// final ir.Row slice.
//
// The pipeline is synchronous and CPU-bound. All working state (filtered
// slice, group index, aggregates) is allocated per call, so evaluations can
// run concurrently over a shared dataset.
//
// ERRORS:
//
// Every failure is a *QueryError with code INVALID_QUERY or
// RESULT_TOO_LARGE. Use IsInvalidQuery and IsResultTooLarge to classify.
//
// VALUE SEMANTICS:
//
// Record values are normalized to the class of the field reading them:
// a numeric field stored as "2015" reads as 2015, a textual field stored as
// 31379 reads as "31379". A missing or uncoercible attribute makes
// comparisons false, is omitted from projected rows, sorts first, forms its
// own group key component and is skipped by aggregates.
//
// SUM and AVG accumulate in decimal (apd) and round half away from zero to
// two fractional digits. COUNT counts distinct values.
package engine
