package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/insight/internal/ir"
)

// Snapshot captures the observable outcome of a scenario.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	QueryID      string
	Rows         []ir.Row
	ErrorCode    string
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization. Rejected queries record only the error code.
func (s *Snapshot) toCanonicalMap() map[string]any {
	result := map[string]any{
		"scenario": s.ScenarioName,
	}
	if s.ErrorCode != "" {
		result["error"] = s.ErrorCode
		return result
	}

	rows := make([]any, len(s.Rows))
	for i, row := range s.Rows {
		rows[i] = row
	}
	result["query_id"] = s.QueryID
	result["rows"] = rows
	return result
}

// RunWithGolden executes a scenario and compares its outcome against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the outcome doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{
		ScenarioName: scenarioName,
		QueryID:      result.QueryID,
		Rows:         result.Rows,
		ErrorCode:    result.ErrorCode,
	}
	data, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
