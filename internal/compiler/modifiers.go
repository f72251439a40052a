package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/sparqlc/internal/expr"
	"github.com/roach88/sparqlc/internal/ir"
	"github.com/roach88/sparqlc/internal/sparql"
)

// ModifierKind enumerates solution modifiers.
type ModifierKind int

const (
	ModifierLimit ModifierKind = iota
	ModifierOrderBy
	ModifierGroupBy
)

func (k ModifierKind) String() string {
	switch k {
	case ModifierLimit:
		return "limit"
	case ModifierOrderBy:
		return "orderBy"
	case ModifierGroupBy:
		return "groupBy"
	}
	return fmt.Sprintf("ModifierKind(%d)", int(k))
}

// Modifier is one solution modifier. Limit uses N; OrderBy uses Expr and
// Direction; GroupBy uses Expr (whitespace-separated variables).
type Modifier struct {
	Kind      ModifierKind
	N         int
	Expr      string
	Direction string
	Path      string
}

// noOrdering is the sortBy expression that disables ordering.
const noOrdering = "!none"

// modifierTable dispatches each kind to the function applying it.
var modifierTable = [...]func(q *sparql.Query, m Modifier) error{
	ModifierLimit:   applyLimit,
	ModifierOrderBy: applyOrderBy,
	ModifierGroupBy: applyGroupBy,
}

// applyModifiers applies mods to q in order.
func applyModifiers(q *sparql.Query, mods []Modifier) error {
	for _, m := range mods {
		if int(m.Kind) < 0 || int(m.Kind) >= len(modifierTable) {
			return &InvalidRequestError{Path: m.Path, Message: fmt.Sprintf("unknown modifier %s", m.Kind)}
		}
		if err := modifierTable[m.Kind](q, m); err != nil {
			return err
		}
	}
	return nil
}

func applyLimit(q *sparql.Query, m Modifier) error {
	if m.N < 0 {
		return &InvalidRequestError{Path: m.Path, Message: fmt.Sprintf("limit must not be negative, got %d", m.N)}
	}
	if m.N > 0 {
		q.Limit = m.N
	}
	return nil
}

func applyOrderBy(q *sparql.Query, m Modifier) error {
	e := strings.TrimSpace(m.Expr)
	if e == "" || e == noOrdering {
		return nil
	}
	e = withVariablePrefix(e)
	if err := validate(m.Path, e, expr.Variable|expr.Function); err != nil {
		return err
	}
	q.OrderBy = append(q.OrderBy, sparql.OrderCondition{
		Expr:       e,
		Descending: strings.ToUpper(strings.TrimSpace(m.Direction)) == "DESC",
	})
	return nil
}

func applyGroupBy(q *sparql.Query, m Modifier) error {
	for _, field := range strings.Fields(m.Expr) {
		v := withVariablePrefix(field)
		if err := validate(m.Path, v, expr.Variable); err != nil {
			return err
		}
		q.GroupBy = append(q.GroupBy, v)
	}
	return nil
}

// withVariablePrefix adds '?' to a bare name. Variables and function
// calls are returned unchanged.
func withVariablePrefix(e string) string {
	if sparql.IsVariable(e) || strings.Contains(e, "(") {
		return e
	}
	return "?" + e
}

// observableModifiers collects the enabled per-observable modifiers in
// table order. orderBy values may carry a direction: "?time DESC".
func observableModifiers(path string, m *ir.Modifiers) []Modifier {
	if m == nil {
		return nil
	}
	var mods []Modifier
	if m.Limit != nil && m.Limit.Enabled {
		mods = append(mods, Modifier{Kind: ModifierLimit, N: int(m.Limit.Value), Path: path + ".modifiers.limit"})
	}
	if m.OrderBy != nil && m.OrderBy.Enabled {
		e, dir := splitDirection(m.OrderBy.Value)
		mods = append(mods, Modifier{Kind: ModifierOrderBy, Expr: e, Direction: dir, Path: path + ".modifiers.orderBy"})
	}
	if m.GroupBy != nil && m.GroupBy.Enabled {
		mods = append(mods, Modifier{Kind: ModifierGroupBy, Expr: m.GroupBy.Value, Path: path + ".modifiers.groupBy"})
	}
	return mods
}

// globalModifiers turns the request's sortBy and limit into modifiers.
func globalModifiers(req *ir.Request) []Modifier {
	var mods []Modifier
	if req.SortBy != nil {
		mods = append(mods, Modifier{
			Kind:      ModifierOrderBy,
			Expr:      req.SortBy.Expression,
			Direction: req.SortBy.Direction,
			Path:      "sortBy",
		})
	}
	if req.Limit != 0 {
		mods = append(mods, Modifier{Kind: ModifierLimit, N: int(req.Limit), Path: "limit"})
	}
	return mods
}

// splitDirection separates a trailing ASC or DESC from an order value.
func splitDirection(value string) (string, string) {
	value = strings.TrimSpace(value)
	i := strings.LastIndexAny(value, " \t")
	if i < 0 {
		return value, ""
	}
	last := strings.ToUpper(value[i+1:])
	if last == "ASC" || last == "DESC" {
		return strings.TrimSpace(value[:i]), last
	}
	return value, ""
}
