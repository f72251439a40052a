// Package expr classifies and validates atomic SPARQL fragments.
//
// Each Kind is an independent grammar. Validation is a disjunction: an
// expression is accepted when it matches any of the allowed kinds. The
// package is pure and stateless; all grammars are compiled once at init
// and only read afterwards, so every function is safe for concurrent use.
package expr

import "strings"

// Kind is a bitset over fragment grammars.
type Kind uint16

const (
	Variable Kind = 1 << iota
	IRI
	Prefix
	PrefixedIRI
	NativeLiteral
	PropertyPath
	Function
	FunctionWithAssignment
	ComplexTuple
	WKTPolygon
	Comparison
	NestedComparison

	// None matches nothing.
	None Kind = 0

	// Term is anything usable in a triple pattern slot.
	Term = Variable | IRI | PrefixedIRI | NativeLiteral

	// FilterExpr is anything usable inside FILTER(...).
	FilterExpr = Function | Comparison | NestedComparison

	// All sets every kind bit.
	All = Variable | IRI | Prefix | PrefixedIRI | NativeLiteral | PropertyPath |
		Function | FunctionWithAssignment | ComplexTuple | WKTPolygon |
		Comparison | NestedComparison
)

var kindNames = []struct {
	kind Kind
	name string
}{
	{Variable, "variable"},
	{IRI, "IRI"},
	{Prefix, "prefix"},
	{PrefixedIRI, "prefixed IRI"},
	{NativeLiteral, "native literal"},
	{PropertyPath, "property path"},
	{Function, "function"},
	{FunctionWithAssignment, "function with assignment"},
	{ComplexTuple, "complex tuple"},
	{WKTPolygon, "WKT polygon literal"},
	{Comparison, "comparison"},
	{NestedComparison, "nested comparison"},
}

// Has reports whether every bit of other is set in k.
func (k Kind) Has(other Kind) bool {
	return other != 0 && k&other == other
}

// Names returns the human-readable names of the set bits, in declaration order.
func (k Kind) Names() []string {
	var names []string
	for _, kn := range kindNames {
		if k&kn.kind != 0 {
			names = append(names, kn.name)
		}
	}
	return names
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == None {
		return "none"
	}
	return strings.Join(k.Names(), "|")
}

// ParseKind resolves a kind name (as returned by Names, case-insensitive,
// spaces or dashes or underscores interchangeable).
func ParseKind(name string) (Kind, bool) {
	norm := normalizeKindName(name)
	for _, kn := range kindNames {
		if normalizeKindName(kn.name) == norm {
			return kn.kind, true
		}
	}
	switch norm {
	case "all":
		return All, true
	case "pname", "prefixediri", "qname":
		return PrefixedIRI, true
	case "literal":
		return NativeLiteral, true
	case "wkt":
		return WKTPolygon, true
	}
	return None, false
}

func normalizeKindName(name string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(name)))
}
