package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sparqlc/internal/compiler"
	"github.com/roach88/sparqlc/internal/config"
)

func TestRun_Scenarios(t *testing.T) {
	scenarios, _, err := LoadDir("testdata/scenarios", "")
	require.NoError(t, err)

	h := New(compiler.MustNew(config.Default()))
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := h.Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ErrorOutcome(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/missing_subject.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.False(t, result.Compiled())
	assert.Equal(t, compiler.ErrMissingField, result.ErrorCode)
	assert.Empty(t, result.Query)
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: failing
description: every check fails
request:
  observables:
    - {subject: "?s", predicate: "?p", object: "?o"}
expect:
  contains: ["UNION"]
  not_contains: ["?s ?p ?o ."]
  variables: ["?x"]
  ignored: ["unsupported filter kind"]
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "Assertion failed: contains")
	assert.Contains(t, result.Errors[0], "?s ?p ?o .", "failures carry the query")
	assert.Contains(t, result.Errors[1], "Assertion failed: not_contains")
	assert.Contains(t, result.Errors[2], "Assertion failed: variables")
	assert.Contains(t, result.Errors[3], "Assertion failed: ignored")
}

func TestRun_UnexpectedCompileError(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: broken
description: compiles with an error but expects success
request:
  observables:
    - {predicate: "?p", object: "?o"}
expect:
  contains: ["?p"]
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: compiled")
}

func TestRun_WrongErrorCode(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong_code
description: expects a failure that does not happen
request:
  observables:
    - {subject: "?s", predicate: "?p", object: "?o"}
expect:
  error_code: E204
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "compiled successfully")
}

func TestRun_MissingRequestFile(t *testing.T) {
	s, err := ParseScenario([]byte("name: n\ndescription: d\nrequest_file: /nonexistent/r.json\n"))
	require.NoError(t, err)

	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read request file")
}

func TestRun_ScenarioConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ex.cue"), []byte(`prefixes: ex: "http://example.org/ns#"`), 0644))
	path := writeScenario(t, dir, "s.yaml", `
name: custom_prefix
description: a scenario config adds a prefix
config: ex.cue
request:
  observables:
    - {subject: "?s", predicate: "ex:p", object: "?o"}
expect:
  contains: ["PREFIX ex: <http://example.org/ns#>"]
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	h := New(compiler.MustNew(config.Default()))
	result, err := h.Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	// The compiler for a config path is built once.
	_, err = h.Run(s)
	require.NoError(t, err)
	assert.Len(t, h.byConfig, 1)
}

func TestRun_BadScenarioConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.cue"), []byte(`prefixes: 1`), 0644))
	path := writeScenario(t, dir, "s.yaml", "name: n\ndescription: d\nconfig: bad.cue\nrequest: {}\n")
	s, err := LoadScenario(path)
	require.NoError(t, err)

	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load scenario config")
}
