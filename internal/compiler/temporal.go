package compiler

import (
	"github.com/roach88/sparqlc/internal/expr"
	"github.com/roach88/sparqlc/internal/sparql"
)

// applyTemporals projects each temporal alias and inserts its BIND into
// the first group built from the function's origin key: right after the
// OPTIONAL binding the variable, else right after the triple binding it
// through the function's predicate, else at the end of the group.
func (b *build) applyTemporals(q *sparql.Query) error {
	for _, fn := range b.temporals {
		alias := fn.Alias()
		bind := &sparql.Bind{Expr: fn.Expr(), Var: alias}
		if err := validate(fn.Path, "("+bind.Expr+" AS "+alias+")", expr.FunctionWithAssignment); err != nil {
			return err
		}

		g := q.FindGroup(fn.OriginKey)
		if g == nil {
			b.ignore(fn.Path, fn.FunctionType, ReasonNoOriginGroup)
			continue
		}
		q.AddProjection(sparql.Projection{Var: alias})
		if hasBind(g, alias) {
			continue
		}

		at := g.Index(func(p sparql.Pattern) bool {
			opt, ok := p.(*sparql.Optional)
			return ok && sparql.Binds(opt, fn.VariableName)
		})
		if at < 0 {
			at = g.Index(func(p sparql.Pattern) bool {
				t, ok := p.(*sparql.Triple)
				return ok && t.Predicate == fn.VariableURI && t.Object == fn.VariableName
			})
		}
		g.InsertAfter(at, bind)
	}
	return nil
}

func hasBind(g *sparql.Group, v string) bool {
	return g.Index(func(p sparql.Pattern) bool {
		bind, ok := p.(*sparql.Bind)
		return ok && bind.Var == v
	}) >= 0
}
