// Package queryir defines the typed intermediate representation of a query
// and the validator that produces it from a raw JSON-shaped document.
//
// ARCHITECTURE:
//
// Queries arrive as untyped trees (decoded JSON, YAML or CUE). Validate walks
// the tree once and either rejects it or returns a *Query in which every
// node has a concrete type:
//
//	[raw document] -> Validate -> [*Query] -> engine.Evaluate -> [rows]
//
// The engine never inspects raw maps. Everything it needs (field classes,
// physical attributes, column kinds) was resolved during validation.
//
// SEALED INTERFACES:
//
// Filter, Column and Order are sealed interfaces using the marker method
// pattern. Only types in this package implement them, which keeps type
// switches in the evaluator exhaustive:
//
//	switch f := filter.(type) {
//	case Empty:
//	case And:
//	case Or:
//	case Not:
//	case Compare:
//	case Match:
//	}
//
// GRAMMAR:
//
//	QUERY           {WHERE, OPTIONS [, TRANSFORMATIONS]}
//	WHERE           {} | FILTER
//	FILTER          {AND: [FILTER, ...]} | {OR: [FILTER, ...]} | {NOT: FILTER}
//	                | {LT|GT|EQ: {<id>_<numeric field>: number}}
//	                | {IS: {<id>_<textual field>: pattern}}
//	OPTIONS         {COLUMNS: [key, ...] [, ORDER: key | {dir, keys}]}
//	TRANSFORMATIONS {GROUP: [<id>_<field>, ...], APPLY: [{applyKey: {TOKEN: <id>_<field>}}, ...]}
//
// A valid query references exactly one dataset and fields of exactly one
// schema.
package queryir
