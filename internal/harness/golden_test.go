package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// To regenerate golden files:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden(t *testing.T) {
	scenarios, _, err := LoadDir("testdata/scenarios", "")
	require.NoError(t, err)

	for _, s := range scenarios {
		if !s.Golden {
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, s))
		})
	}
}

func TestGoldenPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "knows.golden"),
		GoldenPath(filepath.Join("scenarios", "knows.yaml")))
}

func TestCompareAndUpdateGolden(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden", "q.golden")

	_, err := CompareGolden(path, "SELECT")
	require.Error(t, err)

	require.NoError(t, UpdateGolden(path, "SELECT ?s"))
	ok, err := CompareGolden(path, "SELECT ?s")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CompareGolden(path, "SELECT ?s\n")
	require.NoError(t, err)
	assert.False(t, ok, "a trailing newline is a difference")
}

func TestScenarioGoldenFilesMatchFixtures(t *testing.T) {
	_, paths, err := LoadDir("testdata/scenarios", "")
	require.NoError(t, err)

	for _, p := range paths {
		s, err := LoadScenario(p)
		require.NoError(t, err)
		if !s.Golden {
			continue
		}
		result, err := Run(s)
		require.NoError(t, err)
		ok, err := CompareGolden(GoldenPath(p), result.Query)
		require.NoError(t, err)
		assert.True(t, ok, "%s: query differs from %s", s.Name, GoldenPath(p))
	}
}
