package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/sparqlc/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
	Config string // compiler config for scenarios without their own
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run YAML conformance scenarios against the compiler.

Each scenario compiles one request and checks the query, the projected
variables, the ignored filters or the expected error code. Scenarios
marked golden are also compared against golden/<file>.golden next to
the scenario file.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, bad config)

Examples:
  sparqlc test ./scenarios
  sparqlc test ./scenarios --filter "geo_*"
  sparqlc test ./scenarios --update
  sparqlc test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Config, "config", "", "CUE compiler config")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", scenariosDir), nil)
	}

	c, err := loadCompiler(opts.Config)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	files, err := harness.FindScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to find scenarios: %v", err), nil)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	if len(files) == 0 {
		if formatter.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	h := harness.New(c)
	for _, file := range files {
		sr := runScenario(h, file, opts)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		if formatter.Format != "json" {
			printScenario(formatter, sr, opts.Update)
		}
	}

	if formatter.Format == "json" {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(formatter, result)
}

// runScenario loads, runs and golden-checks one scenario file.
func runScenario(h *harness.Harness, file string, opts *TestOptions) ScenarioResult {
	sr := ScenarioResult{Name: filepath.Base(file), File: file}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return sr
	}
	sr.Name = scenario.Name

	result, err := h.Run(scenario)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return sr
	}
	sr.Errors = result.Errors

	if scenario.Golden && result.Compiled() {
		if err := checkGolden(file, result.Query, opts.Update); err != nil {
			sr.Errors = append(sr.Errors, err.Error())
		}
	}

	sr.Pass = len(sr.Errors) == 0
	return sr
}

func checkGolden(file, query string, update bool) error {
	path := harness.GoldenPath(file)
	if update {
		return harness.UpdateGolden(path, query)
	}
	match, err := harness.CompareGolden(path, query)
	if err != nil {
		return fmt.Errorf("golden comparison failed: %w (run with --update to create it)", err)
	}
	if !match {
		return fmt.Errorf("query does not match golden file %s (run with --update to regenerate)", path)
	}
	return nil
}

func printScenario(formatter *OutputFormatter, sr ScenarioResult, update bool) {
	w := formatter.Writer
	if sr.Pass {
		if update {
			fmt.Fprintf(w, "✓ %s (golden updated)\n", sr.Name)
		} else {
			fmt.Fprintf(w, "✓ %s\n", sr.Name)
		}
		return
	}
	fmt.Fprintf(w, "✗ %s\n", sr.Name)
	for _, e := range sr.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
	formatter.VerboseLog("  file: %s", sr.File)
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	if result.Failed == 0 {
		return formatter.Success(result)
	}

	msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if err := formatter.Respond(CLIResponse{
		Status: "error",
		Data:   result,
		Error:  &CLIError{Code: ErrCodeTestFailed, Message: msg},
	}); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}

// outputTestText outputs the test summary as text.
func outputTestText(formatter *OutputFormatter, result TestResult) error {
	w := formatter.Writer

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
