package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
)

// Evaluate validates raw against the grammar and runs it over ds with the
// default limits.
//
// The sequence is: validate, filter in dataset order, cap filtered rows
// (ungrouped queries only), short-circuit on an empty filter result, group,
// cap groups, apply aggregates, project, order.
//
// Errors are always *QueryError: INVALID_QUERY or RESULT_TOO_LARGE. There is
// no partial result on failure.
//
// Evaluate holds no state between calls. ds is only read and may be shared
// by concurrent evaluations as long as nobody mutates it.
func Evaluate(raw any, ds *ir.Dataset) ([]ir.Row, error) {
	rows, _, err := evaluate(raw, ds, DefaultLimits())
	return rows, err
}

// Catalog resolves dataset IDs for Engine.Query.
// Implemented by catalog.Catalog.
type Catalog interface {
	Dataset(id string) (*ir.Dataset, bool)
	IDs() []string
}

// Engine evaluates queries against the datasets of a Catalog.
//
// Thread-safety: an Engine is immutable after New; Query may be called from
// any goroutine provided the Catalog is safe for concurrent reads.
type Engine struct {
	catalog Catalog
	limits  Limits
	ids     QueryIDGenerator
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithLimits overrides the result size caps. Non-positive caps fall back to
// the defaults.
func WithLimits(l Limits) Option {
	return func(e *Engine) {
		e.limits = l.withDefaults()
	}
}

// WithIDGenerator sets the query ID generator.
// Default: UUIDv7Generator.
func WithIDGenerator(g QueryIDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// New creates an Engine over the given catalog.
func New(c Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: c,
		limits:  DefaultLimits(),
		ids:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Limits returns the engine's size caps.
func (e *Engine) Limits() Limits {
	return e.limits
}

// Result is the outcome of a successful query.
type Result struct {
	QueryID   string   `json:"query_id"`
	DatasetID string   `json:"dataset"`
	Rows      []ir.Row `json:"rows"`
}

// Query validates raw against every registered dataset ID, resolves the
// dataset the query names and evaluates it.
func (e *Engine) Query(raw any) (*Result, error) {
	queryID := e.ids.Generate()

	q, err := queryir.Validate(raw, e.catalog.IDs())
	if err != nil {
		return nil, reject(queryID, NewInvalidQueryError(err))
	}

	ds, ok := e.catalog.Dataset(q.DatasetID)
	if !ok {
		// Removed between validation and lookup.
		return nil, reject(queryID, invalidQueryf("dataset %q is not loaded", q.DatasetID))
	}

	rows, groups, err := execute(q, ds, e.limits)
	if err != nil {
		return nil, reject(queryID, err)
	}

	slog.Debug("query evaluated",
		"query_id", queryID,
		"dataset", ds.ID,
		"rows", len(rows),
		"groups", groups)

	return &Result{QueryID: queryID, DatasetID: ds.ID, Rows: rows}, nil
}

// Evaluate runs raw over ds with the engine's limits, bypassing the catalog.
func (e *Engine) Evaluate(raw any, ds *ir.Dataset) ([]ir.Row, error) {
	rows, _, err := evaluate(raw, ds, e.limits)
	return rows, err
}

func evaluate(raw any, ds *ir.Dataset, limits Limits) ([]ir.Row, int, error) {
	q, err := queryir.Validate(raw, []string{ds.ID})
	if err != nil {
		return nil, 0, reject("", NewInvalidQueryError(err))
	}
	rows, groups, err := execute(q, ds, limits)
	if err != nil {
		return nil, 0, reject("", err)
	}
	slog.Debug("query evaluated", "dataset", ds.ID, "rows", len(rows), "groups", groups)
	return rows, groups, nil
}

// execute runs a validated query. It returns the rows and the number of
// groups formed (0 for ungrouped queries).
func execute(q *queryir.Query, ds *ir.Dataset, limits Limits) ([]ir.Row, int, error) {
	slog.Debug("query validated",
		"dataset", q.DatasetID,
		"kind", q.Kind,
		"transformations", q.HasTransformations())

	if q.Kind != ds.Kind {
		return nil, 0, invalidQueryf("query uses %s fields but dataset %q holds %s", q.Kind, ds.ID, ds.Kind)
	}

	var filtered []ir.Record
	for _, rec := range ds.Records {
		if Matches(q.Where, rec, ds.Kind) {
			filtered = append(filtered, rec)
		}
	}

	if !q.HasTransformations() {
		if err := limits.checkRows(len(filtered)); err != nil {
			return nil, 0, err
		}
	}
	if len(filtered) == 0 {
		return []ir.Row{}, 0, nil
	}

	if !q.HasTransformations() {
		rows := projectRecords(filtered, q.Options.Columns, ds.Kind)
		orderRows(rows, q.Options.Order)
		return rows, 0, nil
	}

	t := q.Transformations
	groups := GroupRecords(filtered, t.Group, ds.Kind)
	if err := limits.checkGroups(len(groups)); err != nil {
		return nil, 0, err
	}
	if err := ApplyRules(groups, t.Apply, ds.Kind); err != nil {
		return nil, 0, fmt.Errorf("transform: %w", err)
	}

	rows := projectGroups(groups, t, q.Options.Columns)
	orderRows(rows, q.Options.Order)
	return rows, len(groups), nil
}

// reject logs a failed query and returns err unchanged.
func reject(queryID string, err error) error {
	var qe *QueryError
	if !errors.As(err, &qe) {
		slog.Error("query failed", "query_id", queryID, "error", err)
		return err
	}
	attrs := []any{"code", qe.Code, "reason", qe.Message}
	if queryID != "" {
		attrs = append(attrs, "query_id", queryID)
	}
	slog.Warn("query rejected", attrs...)
	return err
}
