package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/insight/internal/ir"
)

// AssertionError is returned when an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Expectation kind: rows, count or error
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Rows     []string // Canonical result rows for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Rows) > 0 {
		fmt.Fprintf(&buf, "\nResult rows:\n")
		for i, row := range e.Rows {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, row)
		}
	}

	return buf.String()
}

// assertError checks that the query was rejected with the given code.
func assertError(code string, result *Result) error {
	if result.ErrorCode == code {
		return nil
	}
	actual := fmt.Sprintf("%d rows", len(result.Rows))
	if result.ErrorCode != "" {
		actual = fmt.Sprintf("error %s: %s", result.ErrorCode, result.ErrorMessage)
	}
	return &AssertionError{
		Type:     "error",
		Expected: "error " + code,
		Actual:   actual,
	}
}

// assertCount checks the number of result rows.
func assertCount(want int, rows []ir.Row) error {
	if len(rows) == want {
		return nil
	}
	return &AssertionError{
		Type:     "count",
		Expected: fmt.Sprintf("%d rows", want),
		Actual:   fmt.Sprintf("%d rows", len(rows)),
	}
}

// assertRows compares expected and actual rows through their canonical JSON
// form, so 90 and 90.0 compare equal and absent columns must be absent on
// both sides. Unordered comparison treats both sides as multisets.
func assertRows(want []map[string]any, got []ir.Row, ordered bool) error {
	wantJSON := make([]string, len(want))
	for i, row := range want {
		data, err := ir.MarshalCanonical(row)
		if err != nil {
			return fmt.Errorf("expected row %d: %w", i, err)
		}
		wantJSON[i] = string(data)
	}

	gotJSON := make([]string, len(got))
	for i, row := range got {
		data, err := ir.MarshalCanonical(row)
		if err != nil {
			return fmt.Errorf("result row %d: %w", i, err)
		}
		gotJSON[i] = string(data)
	}

	mismatch := &AssertionError{Type: "rows", Rows: gotJSON}

	if len(wantJSON) != len(gotJSON) {
		mismatch.Expected = fmt.Sprintf("%d rows", len(wantJSON))
		mismatch.Actual = fmt.Sprintf("%d rows", len(gotJSON))
		return mismatch
	}

	if !ordered {
		wantJSON = slices.Sorted(slices.Values(wantJSON))
		gotJSON = slices.Sorted(slices.Values(gotJSON))
	}

	for i := range wantJSON {
		if wantJSON[i] != gotJSON[i] {
			mismatch.Expected = fmt.Sprintf("row %d = %s", i+1, wantJSON[i])
			mismatch.Actual = gotJSON[i]
			return mismatch
		}
	}
	return nil
}
