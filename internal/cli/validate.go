package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sparqlc/internal/compiler"
	"github.com/roach88/sparqlc/internal/expr"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Kinds []string
}

// ExpressionResult is the validation outcome of one expression.
type ExpressionResult struct {
	Expression string   `json:"expression"`
	Valid      bool     `json:"valid"`
	Matches    []string `json:"matches,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool               `json:"valid"`
	Allowed []string           `json:"allowed"`
	Results []ExpressionResult `json:"results"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <expression>...",
		Short: "Validate SPARQL fragments against expression grammars",
		Long: `Check SPARQL fragments against the grammars the compiler enforces.

Each expression is accepted when it matches at least one --kind. Without
--kind every grammar is allowed, and the output lists the grammars each
expression matches.

Kinds: ` + strings.Join(expr.All.Names(), ", ") + `

Exit codes:
  0 - All expressions valid
  1 - One or more expressions invalid
  2 - Unknown kind

Examples:
  sparqlc validate '?name' 'foaf:knows'
  sparqlc validate --kind variable --kind "prefixed IRI" 'foaf:knows'
  sparqlc validate --kind "function with assignment" '(AVG(?t) AS ?AvgT)'`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Kinds, "kind", "k", nil, "allowed grammar (repeatable)")

	return cmd
}

func runValidate(opts *ValidateOptions, expressions []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	allowed, err := parseKinds(opts.Kinds)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidKind, err.Error(), nil)
	}
	formatter.VerboseLog("Allowed kinds: %s", allowed)

	result := ValidationResult{Valid: true, Allowed: allowed.Names()}
	for _, e := range expressions {
		r := ExpressionResult{Expression: e, Valid: true}
		if err := expr.Validate(e, allowed); err != nil {
			r.Valid = false
			r.Error = err.Error()
			result.Valid = false
		} else {
			r.Matches = (expr.Classify(e) & allowed).Names()
		}
		result.Results = append(result.Results, r)
	}

	if formatter.Format == "json" {
		return outputValidateJSON(formatter, result)
	}
	return outputValidateText(formatter, result)
}

// parseKinds ORs the named kinds; no names means every kind.
func parseKinds(names []string) (expr.Kind, error) {
	if len(names) == 0 {
		return expr.All, nil
	}
	var k expr.Kind
	for _, name := range names {
		parsed, ok := expr.ParseKind(name)
		if !ok {
			return expr.None, fmt.Errorf("unknown kind %q (want one of: %s)", name, strings.Join(expr.All.Names(), ", "))
		}
		k |= parsed
	}
	return k, nil
}

func outputValidateJSON(formatter *OutputFormatter, result ValidationResult) error {
	if result.Valid {
		return formatter.Success(result)
	}

	invalid := countInvalid(result)
	if err := formatter.Respond(CLIResponse{
		Status: "error",
		Data:   result,
		Error: &CLIError{
			Code:    compiler.ErrInvalidExpression,
			Message: fmt.Sprintf("%d invalid expression(s)", invalid),
		},
	}); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", invalid))
}

func outputValidateText(formatter *OutputFormatter, result ValidationResult) error {
	w := formatter.Writer
	for _, r := range result.Results {
		if r.Valid {
			fmt.Fprintf(w, "✓ %s (%s)\n", r.Expression, strings.Join(r.Matches, ", "))
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", r.Expression)
		fmt.Fprintf(w, "  %s\n", r.Error)
	}

	if result.Valid {
		return nil
	}
	invalid := countInvalid(result)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Validation failed: %d invalid expression(s)\n", invalid)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", invalid))
}

func countInvalid(result ValidationResult) int {
	n := 0
	for _, r := range result.Results {
		if !r.Valid {
			n++
		}
	}
	return n
}
