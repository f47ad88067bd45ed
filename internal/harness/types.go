package harness

import "github.com/roach88/insight/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the outcome matches the scenario's expectation.
	Pass bool `json:"pass"`

	// QueryID is the ID the engine assigned to the query.
	QueryID string `json:"query_id"`

	// Rows are the result rows of a successful query.
	Rows []ir.Row `json:"rows"`

	// ErrorCode is set when the engine rejected the query.
	ErrorCode string `json:"error_code,omitempty"`

	// ErrorMessage accompanies ErrorCode.
	ErrorMessage string `json:"error_message,omitempty"`

	// Errors contains expectation mismatches.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Rows:   []ir.Row{},
		Errors: []string{},
	}
}

// AddError adds a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
