package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/insight/internal/schema"
)

// Scenario defines an end-to-end query test.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Datasets are registered in order before the query runs.
	Datasets []DatasetSpec `yaml:"datasets"`

	// Query is the raw query document.
	Query map[string]any `yaml:"query"`

	// Limits overrides the engine caps. Zero values keep the defaults.
	Limits LimitsSpec `yaml:"limits,omitempty"`

	// QueryID is the fixed query ID reported in results.
	// If empty, defaults to "test-query-default".
	QueryID string `yaml:"query_id,omitempty"`

	// Expect is the expected outcome.
	Expect Expectation `yaml:"expect"`
}

// DatasetSpec is an inline dataset.
type DatasetSpec struct {
	ID      string           `yaml:"id"`
	Kind    string           `yaml:"kind"`
	Records []map[string]any `yaml:"records"`

	// Generate appends this many synthetic course sections (courses only).
	Generate int `yaml:"generate,omitempty"`
}

// LimitsSpec mirrors engine.Limits.
type LimitsSpec struct {
	MaxRows   int `yaml:"max_rows,omitempty"`
	MaxGroups int `yaml:"max_groups,omitempty"`
}

// Expectation describes the expected query outcome. Exactly one of Rows,
// Count or Error is used.
type Expectation struct {
	// Rows are the expected result rows. An empty list expects no rows.
	Rows []map[string]any `yaml:"rows"`

	// Ordered requires Rows to match in sequence.
	Ordered bool `yaml:"ordered,omitempty"`

	// Count expects exactly this many rows without checking their content.
	Count *int `yaml:"count,omitempty"`

	// Error is the expected error code.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Datasets) == 0 {
		return fmt.Errorf("datasets list is required and must be non-empty")
	}

	for i, ds := range s.Datasets {
		if ds.ID == "" {
			return fmt.Errorf("datasets[%d]: id is required", i)
		}
		kind, ok := schema.ParseKind(ds.Kind)
		if !ok {
			return fmt.Errorf("datasets[%d]: unknown kind %q", i, ds.Kind)
		}
		if ds.Generate < 0 {
			return fmt.Errorf("datasets[%d]: generate must be non-negative", i)
		}
		if ds.Generate > 0 && kind != schema.KindCourses {
			return fmt.Errorf("datasets[%d]: generate is only supported for courses", i)
		}
	}

	if s.Query == nil {
		return fmt.Errorf("query is required")
	}

	return validateExpectation(&s.Expect)
}

func validateExpectation(e *Expectation) error {
	set := 0
	if e.Rows != nil {
		set++
	}
	if e.Count != nil {
		set++
	}
	if e.Error != "" {
		set++
	}

	switch {
	case set == 0:
		return fmt.Errorf("expect: one of rows, count or error is required")
	case set > 1:
		return fmt.Errorf("expect: rows, count and error are mutually exclusive")
	case e.Count != nil && *e.Count < 0:
		return fmt.Errorf("expect: count must be non-negative")
	case e.Ordered && e.Rows == nil:
		return fmt.Errorf("expect: ordered requires rows")
	}
	return nil
}
