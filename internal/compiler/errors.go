package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/sparqlc/internal/expr"
)

// Compilation error codes (E200-E299)
const (
	ErrDecode            = "E201" // body is not valid UTF-8 JSON of the expected shape
	ErrMissingField      = "E202" // required field absent or unknown role name
	ErrInvalidExpression = "E203" // fragment matches none of the grammars of its usage site
	ErrInvalidRequest    = "E204" // request shape cannot be compiled
	ErrSerialize         = "E205" // internal: tree could not be rendered
)

// DecodeError wraps a failure to decode the request body.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("[%s] decode: %v", ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Code returns the error code.
func (e *DecodeError) Code() string { return ErrDecode }

// MissingFieldError names a required field that is absent.
type MissingFieldError struct {
	Path    string
	Message string
}

func (e *MissingFieldError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "required field is missing"
	}
	return fmt.Sprintf("[%s] %s: %s", ErrMissingField, e.Path, msg)
}

// Code returns the error code.
func (e *MissingFieldError) Code() string { return ErrMissingField }

// CompileError reports an emitted fragment that failed validation.
// Err is usually an *expr.InvalidExpressionError.
type CompileError struct {
	Field   string
	Message string
	Err     error
}

func (e *CompileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", ErrInvalidExpression, e.Field, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", ErrInvalidExpression, e.Field, e.Message)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Code returns the error code.
func (e *CompileError) Code() string { return ErrInvalidExpression }

// InvalidRequestError reports a request that is well formed JSON but
// structurally impossible to compile.
type InvalidRequestError struct {
	Path    string
	Message string
}

func (e *InvalidRequestError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", ErrInvalidRequest, e.Path, e.Message)
	}
	return fmt.Sprintf("[%s] %s", ErrInvalidRequest, e.Message)
}

// Code returns the error code.
func (e *InvalidRequestError) Code() string { return ErrInvalidRequest }

// SerializeError reports a query tree the serializer could not render.
// It indicates a compiler defect, never bad input.
type SerializeError struct {
	Err error
}

func (e *SerializeError) Error() string {
	return fmt.Sprintf("[%s] serialize: %v", ErrSerialize, e.Err)
}

func (e *SerializeError) Unwrap() error { return e.Err }

// Code returns the error code.
func (e *SerializeError) Code() string { return ErrSerialize }

// ErrorCode extracts the code of a compilation error, or "" for errors
// that do not carry one.
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

// IsClientError reports whether err was caused by the request rather than
// by the compiler.
func IsClientError(err error) bool {
	switch ErrorCode(err) {
	case ErrDecode, ErrMissingField, ErrInvalidExpression, ErrInvalidRequest:
		return true
	}
	return false
}

// validate checks s against the allowed grammars and wraps failures with
// the request path that produced s.
func validate(path, s string, allowed expr.Kind) error {
	if err := expr.Validate(s, allowed); err != nil {
		return &CompileError{Field: path, Err: err}
	}
	return nil
}

// Reasons recorded on IgnoredFilter.
const (
	ReasonUnsupportedKind     = "unsupported filter kind"
	ReasonUnreachableRange    = "unreachable range variant"
	ReasonUnsupportedOperator = "unsupported range operator"
	ReasonUnknownFunction     = "unknown function type"
	ReasonNotGeoPredicate     = "geospatial filter on a non-geospatial predicate"
	ReasonGeoInputMissing     = "geospatial filter without coordinates"
	ReasonNoVariable          = "no variable to filter"
	ReasonFunctionUnbound     = "function needs predicateName and uri"
	ReasonNoOriginGroup       = "no graph pattern for origin key"
	ReasonDiscoveryFunction   = "functions are not applied to location discovery"
)

// IgnoredFilter records a filter clause that produced no output. Ignoring
// is an outcome, not an error: the rest of the request still compiles.
type IgnoredFilter struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}
