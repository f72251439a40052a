package ir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned when a request body is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("request body is not valid UTF-8")

// DecodeRequest decodes a request body. Unknown fields are ignored so that
// front-ends may send extra UI state alongside the query description.
func DecodeRequest(body []byte) (*Request, error) {
	if !utf8.Valid(body) {
		return nil, ErrInvalidUTF8
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("request body is empty")
	}
	if trimmed[0] != '{' {
		return nil, errors.New("request body must be a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var req Request
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("malformed request: %w", err)
	}
	if dec.More() {
		return nil, errors.New("malformed request: unexpected data after object")
	}
	return &req, nil
}

// ObservableKey returns the filter-map key an observable's filters are
// attached under: its subject when observablesKeys lists that value, else
// its object when listed, else its predicate. keyed reports whether
// observablesKeys selected the key.
func (r *Request) ObservableKey(obs Observable) (key string, keyed bool) {
	switch {
	case slices.Contains(r.ObservablesKeys, obs.Subject):
		return obs.Subject, true
	case slices.Contains(r.ObservablesKeys, obs.Object):
		return obs.Object, true
	}
	return obs.Predicate, false
}
