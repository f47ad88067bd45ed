package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/insight/internal/catalog"
	"github.com/roach88/insight/internal/engine"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/schema"
	"github.com/roach88/insight/internal/store"
	"github.com/roach88/insight/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and a catalog writing through to it
// 2. Register the scenario datasets, then reload the catalog from the store
// 3. Evaluate the query with a constant query ID
// 4. Compare the outcome against the expectation
//
// A non-nil error means the scenario could not be executed at all; an
// expectation mismatch is reported through Result.Pass and Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	cat := catalog.New(catalog.WithPersister(st))
	for i, spec := range scenario.Datasets {
		ds, err := buildDataset(spec)
		if err != nil {
			return nil, fmt.Errorf("datasets[%d]: %w", i, err)
		}
		if _, err := cat.Add(ctx, ds); err != nil {
			return nil, fmt.Errorf("datasets[%d]: %w", i, err)
		}
	}
	if err := cat.Load(ctx); err != nil {
		return nil, err
	}

	eng := engine.New(cat,
		engine.WithLimits(engine.Limits{
			MaxRows:   scenario.Limits.MaxRows,
			MaxGroups: scenario.Limits.MaxGroups,
		}),
		engine.WithIDGenerator(testutil.NewConstantGenerator(scenario.QueryID)),
	)

	result := NewResult()
	out, err := eng.Query(any(scenario.Query))
	if err != nil {
		var qe *engine.QueryError
		if !errors.As(err, &qe) {
			return nil, err
		}
		result.ErrorCode = string(qe.Code)
		result.ErrorMessage = qe.Message
	} else {
		result.QueryID = out.QueryID
		result.Rows = out.Rows
	}

	checkExpectation(scenario.Expect, result)
	return result, nil
}

// buildDataset converts an inline dataset into an ir.Dataset.
func buildDataset(spec DatasetSpec) (*ir.Dataset, error) {
	kind, ok := schema.ParseKind(spec.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", spec.Kind)
	}

	records := make([]ir.Record, 0, len(spec.Records)+spec.Generate)
	for i, m := range spec.Records {
		rec, err := ir.RecordFromMap(m)
		if err != nil {
			return nil, fmt.Errorf("records[%d]: %w", i, err)
		}
		records = append(records, rec)
	}
	for _, s := range testutil.GenerateSections(spec.Generate) {
		records = append(records, s.Record())
	}

	return &ir.Dataset{ID: spec.ID, Kind: kind, Records: records}, nil
}

// checkExpectation records every mismatch between want and the result.
func checkExpectation(want Expectation, result *Result) {
	if want.Error != "" {
		if err := assertError(want.Error, result); err != nil {
			result.AddError(err.Error())
		}
		return
	}

	if result.ErrorCode != "" {
		result.AddError(fmt.Sprintf("unexpected error %s: %s", result.ErrorCode, result.ErrorMessage))
		return
	}

	if want.Count != nil {
		if err := assertCount(*want.Count, result.Rows); err != nil {
			result.AddError(err.Error())
		}
		return
	}

	if err := assertRows(want.Rows, result.Rows, want.Ordered); err != nil {
		result.AddError(err.Error())
	}
}
