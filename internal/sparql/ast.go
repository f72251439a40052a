// Package sparql provides a small SPARQL SELECT syntax tree and its
// serializer.
//
// The tree is the single representation the compiler builds and edits:
// graph patterns are inserted structurally (a BIND goes into a named group
// right after the pattern that binds its input) and text is produced once,
// at the end, by Serializer.
//
// SEALED INTERFACE:
//
// Pattern is sealed with a marker method. Only the pointer types in this
// package implement it, so the serializer's type switch is exhaustive:
//
//	*Triple     s p o .
//	*Optional   OPTIONAL { ... }
//	*Filter     FILTER(expr)
//	*Bind       BIND(expr AS ?v)
//	*Union      { ... } UNION { ... }
//	*SubSelect  { SELECT ... }
//	*Group      { ... }
//
// Expressions are kept as text. They are validated by package expr before
// they enter the tree.
package sparql

// Pattern is a graph pattern inside a group.
type Pattern interface {
	patternNode()
}

// Triple is a triple pattern. Each slot is a variable, IRI, prefixed name
// or literal, already in SPARQL syntax.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
}

func (*Triple) patternNode() {}

// Optional is OPTIONAL { Group }.
type Optional struct {
	Group *Group
}

func (*Optional) patternNode() {}

// Filter is FILTER(Expr).
type Filter struct {
	Expr string
}

func (*Filter) patternNode() {}

// Bind is BIND(Expr AS Var).
type Bind struct {
	Expr string
	Var  string
}

func (*Bind) patternNode() {}

// Union is a disjunction of groups. A Union with one branch renders as a
// plain group.
type Union struct {
	Branches []*Group
}

func (*Union) patternNode() {}

// SubSelect is a nested SELECT query used as a pattern.
type SubSelect struct {
	Query *Query
}

func (*SubSelect) patternNode() {}

// Group is a group graph pattern. Label is not rendered; it names the
// request entity the group was built from so later passes can find it.
type Group struct {
	Label    string
	Patterns []Pattern
}

func (*Group) patternNode() {}

// Projection is one SELECT list entry: a plain variable when Expr is
// empty, else (Expr AS Var).
type Projection struct {
	Var  string
	Expr string
}

// OrderCondition is one ORDER BY key.
type OrderCondition struct {
	Expr       string
	Descending bool
}

// Query is a SELECT query. An empty Projection renders as SELECT *.
// Limit <= 0 means no LIMIT.
type Query struct {
	Distinct   bool
	Projection []Projection
	Where      *Group
	GroupBy    []string
	OrderBy    []OrderCondition
	Limit      int
}

// NewQuery returns a query with an empty, labelled WHERE group.
func NewQuery(label string) *Query {
	return &Query{Where: &Group{Label: label}}
}

// T is shorthand for a triple pattern.
func T(s, p, o string) *Triple {
	return &Triple{Subject: s, Predicate: p, Object: o}
}
