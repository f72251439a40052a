package compiler

import (
	"github.com/roach88/sparqlc/internal/sparql"
)

// assemble joins the subgraphs into the top-level query:
//
//	SELECT <selectable> WHERE { sg1 UNION sg2 ... } ORDER BY ... LIMIT ...
//
// A single subgraph is the WHERE group itself. A subgraph with its own
// modifiers becomes a bounded sub-select so its LIMIT only applies to
// that branch.
func (b *build) assemble(subgraphs []*Subgraph) (*sparql.Query, error) {
	branches := make([]*sparql.Group, 0, len(subgraphs))
	for _, sg := range subgraphs {
		branch, err := branchGroup(sg)
		if err != nil {
			return nil, err
		}
		branches = append(branches, branch)
	}

	q := &sparql.Query{}
	switch len(branches) {
	case 0:
		q.Where = &sparql.Group{}
	case 1:
		q.Where = branches[0]
	default:
		q.Where = &sparql.Group{Patterns: []sparql.Pattern{&sparql.Union{Branches: branches}}}
	}

	for _, v := range b.selectable {
		q.AddProjection(sparql.Projection{Var: v})
	}
	if err := applyModifiers(q, globalModifiers(b.req)); err != nil {
		return nil, err
	}
	return q, nil
}

// branchGroup renders one subgraph, wrapping it in a sub-select when it
// carries modifiers.
func branchGroup(sg *Subgraph) (*sparql.Group, error) {
	g := sg.Group()
	if len(sg.Modifiers) == 0 {
		return g, nil
	}
	inner := &sparql.Query{Where: g}
	if err := applyModifiers(inner, sg.Modifiers); err != nil {
		return nil, err
	}
	return &sparql.Group{Patterns: []sparql.Pattern{&sparql.SubSelect{Query: inner}}}, nil
}
