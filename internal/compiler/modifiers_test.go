package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sparqlc/internal/ir"
	"github.com/roach88/sparqlc/internal/sparql"
)

func TestModifierKindString(t *testing.T) {
	assert.Equal(t, "limit", ModifierLimit.String())
	assert.Equal(t, "orderBy", ModifierOrderBy.String())
	assert.Equal(t, "groupBy", ModifierGroupBy.String())
	assert.Equal(t, "ModifierKind(9)", ModifierKind(9).String())
}

func TestApplyModifiers(t *testing.T) {
	q := &sparql.Query{}
	err := applyModifiers(q, []Modifier{
		{Kind: ModifierLimit, N: 7},
		{Kind: ModifierOrderBy, Expr: "time", Direction: "desc"},
		{Kind: ModifierOrderBy, Expr: "STR(?label)"},
		{Kind: ModifierGroupBy, Expr: "?sensor feature"},
	})
	require.NoError(t, err)

	assert.Equal(t, 7, q.Limit)
	assert.Equal(t, []sparql.OrderCondition{
		{Expr: "?time", Descending: true},
		{Expr: "STR(?label)"},
	}, q.OrderBy)
	assert.Equal(t, []string{"?sensor", "?feature"}, q.GroupBy)
}

func TestApplyModifiersErrors(t *testing.T) {
	tests := []struct {
		name string
		mod  Modifier
		code string
	}{
		{"unknown kind", Modifier{Kind: ModifierKind(5), Path: "x"}, ErrInvalidRequest},
		{"negative limit", Modifier{Kind: ModifierLimit, N: -2, Path: "limit"}, ErrInvalidRequest},
		{"bad group", Modifier{Kind: ModifierGroupBy, Expr: "<http://x>", Path: "g"}, ErrInvalidExpression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := applyModifiers(&sparql.Query{}, []Modifier{tt.mod})
			assert.Equal(t, tt.code, ErrorCode(err))
		})
	}
}

func TestObservableModifiers(t *testing.T) {
	assert.Nil(t, observableModifiers("observables[0]", nil))

	mods := observableModifiers("observables[1]", &ir.Modifiers{
		Limit:   &ir.LimitModifier{Enabled: true, Value: 3},
		OrderBy: &ir.TextModifier{Enabled: true, Value: "?time DESC"},
		GroupBy: &ir.TextModifier{Enabled: false, Value: "?x"},
	})
	assert.Equal(t, []Modifier{
		{Kind: ModifierLimit, N: 3, Path: "observables[1].modifiers.limit"},
		{Kind: ModifierOrderBy, Expr: "?time", Direction: "DESC", Path: "observables[1].modifiers.orderBy"},
	}, mods)
}

func TestGlobalModifiers(t *testing.T) {
	assert.Empty(t, globalModifiers(&ir.Request{}))

	mods := globalModifiers(&ir.Request{SortBy: &ir.SortBy{Expression: "?t"}, Limit: 4})
	require.Len(t, mods, 2)
	assert.Equal(t, ModifierOrderBy, mods[0].Kind)
	assert.Equal(t, ModifierLimit, mods[1].Kind)
	assert.Equal(t, 4, mods[1].N)
}

func TestSplitDirection(t *testing.T) {
	tests := []struct {
		in, expr, dir string
	}{
		{"?time", "?time", ""},
		{"?time desc", "?time", "DESC"},
		{" ?time  ASC ", "?time", "ASC"},
		{"STR(?a) ?b", "STR(?a) ?b", ""},
	}
	for _, tt := range tests {
		e, d := splitDirection(tt.in)
		assert.Equal(t, tt.expr, e, tt.in)
		assert.Equal(t, tt.dir, d, tt.in)
	}
}
