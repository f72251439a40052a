package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sparqlc/internal/expr"
)

func TestValidateAllKinds(t *testing.T) {
	out, _, err := execute(t, "", "validate", "?name", "foaf:knows")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ ?name (variable)")
	assert.Contains(t, out, "✓ foaf:knows (")
	assert.Contains(t, out, "prefixed IRI")
}

func TestValidateWithKinds(t *testing.T) {
	out, _, err := execute(t, "", "validate", "--kind", "variable", "?name", "foaf:knows")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ ?name (variable)")
	assert.Contains(t, out, "✗ foaf:knows")
	assert.Contains(t, out, "Validation failed: 1 invalid expression(s)")
}

func TestValidateRepeatedKinds(t *testing.T) {
	_, _, err := execute(t, "", "validate", "-k", "variable", "-k", "pname", "?name", "foaf:knows")
	require.NoError(t, err)
}

func TestValidateUnknownKind(t *testing.T) {
	out, _, err := execute(t, "", "validate", "--kind", "sparql", "?x")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeInvalidKind+"]")
}

func TestValidateJSON(t *testing.T) {
	out, _, err := execute(t, "", "validate", "--format", "json",
		"--kind", "function with assignment", "(AVG(?t) AS ?AvgT)", "AVG(?t)")
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Results, 2)
	assert.True(t, resp.Data.Results[0].Valid)
	assert.Equal(t, []string{"function with assignment"}, resp.Data.Results[0].Matches)
	assert.False(t, resp.Data.Results[1].Valid)
	assert.NotEmpty(t, resp.Data.Results[1].Error)
}

func TestParseKinds(t *testing.T) {
	k, err := parseKinds(nil)
	require.NoError(t, err)
	assert.Equal(t, expr.All, k)

	k, err = parseKinds([]string{"variable", "IRI"})
	require.NoError(t, err)
	assert.Equal(t, expr.Variable|expr.IRI, k)

	_, err = parseKinds([]string{"nope"})
	assert.ErrorContains(t, err, `unknown kind "nope"`)
}
