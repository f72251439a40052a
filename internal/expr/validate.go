package expr

import (
	"fmt"
	"strings"
)

var matchers = []struct {
	kind  Kind
	match func(string) bool
}{
	{Variable, isVariable},
	{IRI, isIRI},
	{Prefix, isPrefix},
	{PrefixedIRI, isPName},
	{NativeLiteral, isLiteral},
	{PropertyPath, isPath},
	{Function, isFunction},
	{FunctionWithAssignment, isAssignment},
	{ComplexTuple, isTuple},
	{WKTPolygon, isWKT},
	{Comparison, isComparison},
	{NestedComparison, isNestedComparison},
}

// InvalidExpressionError reports an expression that matched none of the
// allowed grammars.
type InvalidExpressionError struct {
	Expression string
	Allowed    Kind
}

func (e *InvalidExpressionError) Error() string {
	return fmt.Sprintf("invalid expression %q: expected one of: %s",
		e.Expression, strings.Join(e.Allowed.Names(), ", "))
}

// Validate accepts expression when it matches at least one of the allowed
// kinds. Leading and trailing whitespace is ignored.
func Validate(expression string, allowed Kind) error {
	s := strings.TrimSpace(expression)
	if s != "" {
		for _, m := range matchers {
			if allowed&m.kind != 0 && m.match(s) {
				return nil
			}
		}
	}
	return &InvalidExpressionError{Expression: expression, Allowed: allowed}
}

// Classify returns every kind the expression matches.
func Classify(expression string) Kind {
	s := strings.TrimSpace(expression)
	if s == "" {
		return None
	}
	var k Kind
	for _, m := range matchers {
		if m.match(s) {
			k |= m.kind
		}
	}
	return k
}

// IsVariable reports whether s is a SPARQL variable.
func IsVariable(s string) bool {
	return isVariable(strings.TrimSpace(s))
}

// IsIRI reports whether s is an IRI reference in angle brackets.
func IsIRI(s string) bool {
	return isIRI(strings.TrimSpace(s))
}

// IsPrefixedName reports whether s is a prefixed name such as xsd:float.
func IsPrefixedName(s string) bool {
	return isPName(strings.TrimSpace(s))
}
