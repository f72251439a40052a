package harness

import "github.com/roach88/sparqlc/internal/compiler"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation held.
	Pass bool `json:"pass"`

	Query     string                   `json:"query,omitempty"`
	Variables []string                 `json:"variables,omitempty"`
	Ignored   []compiler.IgnoredFilter `json:"ignored,omitempty"`

	// ErrorCode and Err are set when compilation failed.
	ErrorCode string `json:"error_code,omitempty"`
	Err       string `json:"err,omitempty"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Compiled reports whether compilation succeeded.
func (r *Result) Compiled() bool {
	return r.ErrorCode == "" && r.Err == ""
}

// IgnoredReasons returns the reasons of the dropped filters, in order.
func (r *Result) IgnoredReasons() []string {
	reasons := make([]string, len(r.Ignored))
	for i, ig := range r.Ignored {
		reasons[i] = ig.Reason
	}
	return reasons
}
