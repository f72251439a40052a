package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Request is the request document, written inline as YAML.
	Request map[string]any `yaml:"request,omitempty"`

	// RequestFile is a path to a JSON request, relative to the scenario
	// file. Exactly one of Request and RequestFile is set.
	RequestFile string `yaml:"request_file,omitempty"`

	// Config is an optional CUE compiler config, relative to the scenario
	// file. The embedded defaults apply when empty.
	Config string `yaml:"config,omitempty"`

	// Expect holds the checks applied to the compiled output.
	Expect Expect `yaml:"expect"`

	// Golden compares the query text against a golden file.
	Golden bool `yaml:"golden,omitempty"`

	// dir is the directory the scenario was loaded from.
	dir string
}

// Expect lists the checks for one scenario. Empty fields are not checked.
type Expect struct {
	// Contains are substrings the query must contain.
	Contains []string `yaml:"contains,omitempty"`

	// NotContains are substrings the query must not contain.
	NotContains []string `yaml:"not_contains,omitempty"`

	// Variables is the exact projected variable list.
	Variables []string `yaml:"variables,omitempty"`

	// ErrorCode is the code compilation must fail with, e.g. E202.
	ErrorCode string `yaml:"error_code,omitempty"`

	// Ignored lists the reasons of the filters expected to be dropped, in
	// order. An explicit empty list asserts that nothing was dropped.
	Ignored []string `yaml:"ignored"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// ParseScenario parses scenario YAML. Relative request_file and config
// paths resolve against the working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// LoadDir loads every .yaml and .yml file under dir, sorted by path.
// match, when non-empty, is a glob applied to the file name without its
// extension.
func LoadDir(dir, match string) ([]*Scenario, []string, error) {
	paths, err := FindScenarioFiles(dir, match)
	if err != nil {
		return nil, nil, err
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, paths, nil
}

// FindScenarioFiles returns the scenario files under dir, sorted by path.
func FindScenarioFiles(dir, match string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if match != "" {
			name := filepath.Base(path)
			name = name[:len(name)-len(ext)]
			ok, err := filepath.Match(match, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}

// RequestBody returns the request as JSON.
func (s *Scenario) RequestBody() ([]byte, error) {
	if s.RequestFile != "" {
		data, err := os.ReadFile(s.resolve(s.RequestFile))
		if err != nil {
			return nil, fmt.Errorf("failed to read request file: %w", err)
		}
		return data, nil
	}
	data, err := json.Marshal(s.Request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inline request: %w", err)
	}
	return data, nil
}

func (s *Scenario) resolve(p string) string {
	if filepath.IsAbs(p) || s.dir == "" {
		return p
	}
	return filepath.Join(s.dir, p)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Request == nil && s.RequestFile == "":
		return fmt.Errorf("one of request or request_file is required")
	case s.Request != nil && s.RequestFile != "":
		return fmt.Errorf("request and request_file are mutually exclusive")
	}

	if s.Expect.ErrorCode != "" {
		if len(s.Expect.Contains) > 0 || len(s.Expect.NotContains) > 0 || len(s.Expect.Variables) > 0 || s.Expect.Ignored != nil {
			return fmt.Errorf("expect.error_code cannot be combined with output checks")
		}
		if s.Golden {
			return fmt.Errorf("golden requires a successful compilation")
		}
	}
	return nil
}
