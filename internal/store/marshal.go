package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/sparqlc/internal/compiler"
	"github.com/roach88/sparqlc/internal/ir"
)

// canonicalRequest converts a request body to RFC 8785 canonical JSON
// text for storage.
func canonicalRequest(body []byte) (string, error) {
	v, err := ir.ParseValue(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	return string(data), nil
}

// marshalJSON encodes v without HTML escaping and without the trailing
// newline json.Encoder adds.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

func marshalVariables(vars []string) (string, error) {
	if vars == nil {
		vars = []string{}
	}
	s, err := marshalJSON(vars)
	if err != nil {
		return "", fmt.Errorf("marshal variables: %w", err)
	}
	return s, nil
}

func marshalIgnored(ignored []compiler.IgnoredFilter) (string, error) {
	if ignored == nil {
		ignored = []compiler.IgnoredFilter{}
	}
	s, err := marshalJSON(ignored)
	if err != nil {
		return "", fmt.Errorf("marshal ignored: %w", err)
	}
	return s, nil
}

func unmarshalVariables(s string) ([]string, error) {
	var vars []string
	if err := json.Unmarshal([]byte(s), &vars); err != nil {
		return nil, fmt.Errorf("unmarshal variables: %w", err)
	}
	return vars, nil
}

// unmarshalIgnored returns nil for an empty list so cached results match
// fresh ones.
func unmarshalIgnored(s string) ([]compiler.IgnoredFilter, error) {
	var ignored []compiler.IgnoredFilter
	if err := json.Unmarshal([]byte(s), &ignored); err != nil {
		return nil, fmt.Errorf("unmarshal ignored: %w", err)
	}
	if len(ignored) == 0 {
		return nil, nil
	}
	return ignored, nil
}
