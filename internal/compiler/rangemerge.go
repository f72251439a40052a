package compiler

import (
	"strconv"
	"strings"
	"time"

	"github.com/roach88/sparqlc/internal/ir"
)

// rangeClause is one comparison of a range filter.
type rangeClause struct {
	op    string // normalized: > >= < <= = !=
	value string
	expr  string
}

var rangeOperators = map[string]string{
	">": ">", "gt": ">",
	">=": ">=", "gte": ">=", "ge": ">=",
	"<": "<", "lt": "<",
	"<=": "<=", "lte": "<=", "le": "<=",
	"=": "=", "==": "=", "eq": "=",
	"!=": "!=", "<>": "!=", "ne": "!=", "neq": "!=",
}

func newRangeClause(v, datatype string, in ir.FilterInput) (rangeClause, bool) {
	op, ok := rangeOperators[strings.ToLower(strings.TrimSpace(in.Expression))]
	if !ok {
		return rangeClause{}, false
	}
	value := string(in.Value)
	return rangeClause{
		op:    op,
		value: value,
		expr:  v + " " + op + " " + typedLiteral(value, datatype),
	}, true
}

func (r rangeClause) greater() bool { return strings.HasPrefix(r.op, ">") }
func (r rangeClause) less() bool    { return strings.HasPrefix(r.op, "<") }

// mergeRanges combines the range clauses of one predicate into a single
// expression.
//
// Lower bounds (> >=) and upper bounds (< <=) are paired in encounter
// order. A pair whose upper value exceeds its lower value is an ordinary
// interval and joins with &&; otherwise the interval wraps around (a
// bearing between 315 and 45) and joins with ||. Unpaired bounds and other
// comparisons stand alone. Every part is joined with ||.
func mergeRanges(clauses []rangeClause) string {
	var greater, less, others []rangeClause
	for _, c := range clauses {
		switch {
		case c.greater():
			greater = append(greater, c)
		case c.less():
			less = append(less, c)
		default:
			others = append(others, c)
		}
	}

	var parts []string
	for _, g := range greater {
		if len(less) == 0 {
			parts = append(parts, g.expr)
			continue
		}
		l := less[0]
		less = less[1:]
		joiner := " || "
		if compareBounds(l.value, g.value) > 0 {
			joiner = " && "
		}
		parts = append(parts, "("+g.expr+joiner+l.expr+")")
	}
	for _, l := range less {
		parts = append(parts, l.expr)
	}
	for _, o := range others {
		parts = append(parts, o.expr)
	}
	return strings.Join(parts, " || ")
}

var boundLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"15:04:05",
	"15:04",
}

// compareBounds compares two bound values numerically when both parse as
// numbers, as instants when both parse as dates or times, else as text.
func compareBounds(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	if ta, ok := parseBound(a); ok {
		if tb, ok := parseBound(b); ok {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(a, b)
}

func parseBound(s string) (time.Time, bool) {
	for _, layout := range boundLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
