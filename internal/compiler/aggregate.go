package compiler

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/sparqlc/internal/expr"
	"github.com/roach88/sparqlc/internal/sparql"
)

const aggregateLabelPrefix = "aggregate:"

// functionAlias forms ?FuncVar: AVG of ?temperature is ?AvgTemperature.
func functionAlias(fn, v string) string {
	title := cases.Title(language.Und).String(strings.ToLower(fn))
	title = strings.ReplaceAll(title, "_", "")
	return "?" + title + upperFirst(sparql.VariableName(v))
}

// applyAggregates appends the aggregate sub-select to q and projects its
// aliases.
//
// Each origin key contributes one group: its anchor triple plus a triple
// binding every aggregated variable. Groups are alternatives (UNION) when
// they aggregate the same variable names; otherwise they are inlined one
// after another, since branches of different shapes would not line up.
func (b *build) applyAggregates(q *sparql.Query) error {
	if len(b.aggregateKeys) == 0 {
		return nil
	}

	sub := &sparql.Query{}
	var groups []*sparql.Group
	var varSets [][]string

	for _, key := range b.aggregateKeys {
		specs := b.aggregates[key]
		first := specs[0]
		g := &sparql.Group{Label: aggregateLabelPrefix + key}
		g.Add(sparql.T(first.Subject, first.Predicate, first.Object))

		var vars []string
		bound := map[string]bool{}
		for _, fn := range specs {
			if !bound[fn.VariableName] {
				bound[fn.VariableName] = true
				g.Add(sparql.T(fn.Subject, fn.VariableURI, fn.VariableName))
				vars = append(vars, fn.VariableName)
			}
			e := fn.Expr()
			if err := validate(fn.Path, "("+e+" AS "+fn.Alias()+")", expr.FunctionWithAssignment); err != nil {
				return err
			}
			sub.AddProjection(sparql.Projection{Var: fn.Alias(), Expr: e})
		}
		slices.Sort(vars)
		groups = append(groups, g)
		varSets = append(varSets, vars)
	}

	sub.Where = &sparql.Group{Label: aggregateLabelPrefix}
	switch {
	case len(groups) == 1:
		sub.Where.Patterns = groups[0].Patterns
		sub.Where.Label = groups[0].Label
	case sameVarSets(varSets):
		sub.Where.Add(&sparql.Union{Branches: groups})
	default:
		for _, g := range groups {
			sub.Where.Add(g)
		}
	}

	q.Where.Add(&sparql.SubSelect{Query: sub})
	for _, p := range sub.Projection {
		q.AddProjection(sparql.Projection{Var: p.Var})
	}
	return nil
}

func sameVarSets(sets [][]string) bool {
	for _, s := range sets[1:] {
		if !slices.Equal(s, sets[0]) {
			return false
		}
	}
	return true
}
