package harness

import (
	"fmt"
	"slices"
	"strings"
)

// Expectation kinds, used in AssertionError.Type.
const (
	ExpectContains    = "contains"
	ExpectNotContains = "not_contains"
	ExpectVariables   = "variables"
	ExpectErrorCode   = "error_code"
	ExpectIgnored     = "ignored"
	ExpectCompiled    = "compiled"
)

// AssertionError is returned when an expectation fails.
// It carries the query so failures can be debugged from the message alone.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Query    string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Query != "" {
		buf.WriteString("\nQuery:\n")
		for _, line := range strings.Split(e.Query, "\n") {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}
	return buf.String()
}

// EvaluateExpect checks result against expect and returns one message per
// failed expectation.
func EvaluateExpect(result *Result, expect Expect) []string {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if expect.ErrorCode != "" {
		add(assertErrorCode(result, expect.ErrorCode))
		return errs
	}
	if !result.Compiled() {
		add(&AssertionError{
			Type:     ExpectCompiled,
			Expected: "successful compilation",
			Actual:   result.Err,
		})
		return errs
	}

	for _, s := range expect.Contains {
		add(assertContains(result.Query, s))
	}
	for _, s := range expect.NotContains {
		add(assertNotContains(result.Query, s))
	}
	if expect.Variables != nil {
		add(assertVariables(result, expect.Variables))
	}
	if expect.Ignored != nil {
		add(assertIgnored(result, expect.Ignored))
	}
	return errs
}

func assertErrorCode(result *Result, code string) error {
	if result.ErrorCode == code {
		return nil
	}
	actual := "compiled successfully"
	if !result.Compiled() {
		actual = fmt.Sprintf("%s (%s)", result.ErrorCode, result.Err)
	}
	return &AssertionError{
		Type:     ExpectErrorCode,
		Expected: code,
		Actual:   actual,
		Query:    result.Query,
	}
}

func assertContains(query, s string) error {
	if strings.Contains(query, s) {
		return nil
	}
	return &AssertionError{
		Type:     ExpectContains,
		Expected: fmt.Sprintf("query contains %q", s),
		Actual:   "not found",
		Query:    query,
	}
}

func assertNotContains(query, s string) error {
	if !strings.Contains(query, s) {
		return nil
	}
	return &AssertionError{
		Type:     ExpectNotContains,
		Expected: fmt.Sprintf("query does not contain %q", s),
		Actual:   "found",
		Query:    query,
	}
}

func assertVariables(result *Result, want []string) error {
	if slices.Equal(result.Variables, want) {
		return nil
	}
	return &AssertionError{
		Type:     ExpectVariables,
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", result.Variables),
		Query:    result.Query,
	}
}

func assertIgnored(result *Result, want []string) error {
	got := result.IgnoredReasons()
	if slices.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     ExpectIgnored,
		Expected: fmt.Sprintf("%q", want),
		Actual:   fmt.Sprintf("%q", got),
		Query:    result.Query,
	}
}
