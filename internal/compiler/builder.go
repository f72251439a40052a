package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/sparqlc/internal/expr"
	"github.com/roach88/sparqlc/internal/ir"
	"github.com/roach88/sparqlc/internal/sparql"
)

// Subgraph is the graph-pattern unit built from one observable.
type Subgraph struct {
	Key       string // observable key the filters were attached under
	Anchor    *sparql.Triple
	Also      []*sparql.Triple // additional required triples
	Optionals []*sparql.Triple
	Filters   []string
	Unions    []*Subgraph
	Modifiers []Modifier
}

// Group renders the subgraph as a labelled group: anchor, required
// triples, optionals, unioned sub-patterns, then filters.
func (sg *Subgraph) Group() *sparql.Group {
	g := &sparql.Group{Label: sg.Key}
	if sg.Anchor != nil {
		g.Add(sg.Anchor)
	}
	for _, t := range sg.Also {
		g.Add(t)
	}
	for _, t := range sg.Optionals {
		g.Add(&sparql.Optional{Group: &sparql.Group{Patterns: []sparql.Pattern{t}}})
	}
	if len(sg.Unions) > 0 {
		u := &sparql.Union{}
		for _, branch := range sg.Unions {
			u.Branches = append(u.Branches, branch.Group())
		}
		g.Add(u)
	}
	for _, f := range sg.Filters {
		g.Add(&sparql.Filter{Expr: f})
	}
	return g
}

// observable builds the subgraph of observables[i].
func (b *build) observable(i int, obs ir.Observable) (*Subgraph, error) {
	path := fmt.Sprintf("observables[%d]", i)
	anchor, err := anchorTriple(path, obs.Subject, obs.Predicate, obs.Object)
	if err != nil {
		return nil, err
	}

	b.addSelectable(anchor.Subject)
	b.addSelectable(anchor.Predicate)
	b.addSelectable(anchor.Object)

	key, keyed := b.req.ObservableKey(obs)
	if _, ok := b.req.Filters[key]; keyed && !ok {
		return nil, &MissingFieldError{
			Path:    fmt.Sprintf("filters[%q]", key),
			Message: "observablesKeys selects a key with no filter entry",
		}
	}
	sg := &Subgraph{Key: key, Anchor: anchor}
	if err := b.attachFilters(sg, anchor.Subject, false); err != nil {
		return nil, err
	}

	sg.Modifiers = observableModifiers(path, obs.Modifiers)
	return sg, nil
}

// anchorTriple validates and renders the (s, p, o) of an observable or
// sensor pattern.
func anchorTriple(path, s, p, o string) (*sparql.Triple, error) {
	slots := []struct {
		name, value string
		allowed     expr.Kind
	}{
		{"subject", s, expr.Variable | expr.IRI | expr.PrefixedIRI},
		{"predicate", p, expr.Variable | expr.IRI | expr.PrefixedIRI | expr.PropertyPath},
		{"object", o, expr.Term},
	}
	terms := make([]string, len(slots))
	for k, slot := range slots {
		term := entity(slot.value)
		if term == "" {
			return nil, &MissingFieldError{Path: path + "." + slot.name}
		}
		if slot.name == "predicate" && term == "a" {
			terms[k] = term
			continue
		}
		if err := validate(path+"."+slot.name, term, slot.allowed); err != nil {
			return nil, err
		}
		terms[k] = term
	}
	return sparql.T(terms[0], terms[1], terms[2]), nil
}

// attachFilters adds the filter specs stored under sg.Key. subject is the
// term the spec triples hang off. An unselected predicate key may be
// absent from the filter map.
func (b *build) attachFilters(sg *Subgraph, subject string, discovery bool) error {
	specs := b.req.Filters[sg.Key]
	for j, spec := range specs {
		path := specPath(sg.Key, j)
		geo := b.isGeoFunction(spec.URI)
		v := variable(spec.PredicateName)

		if !geo && v != "" {
			if err := validate(path+".predicateName", v, expr.Variable); err != nil {
				return err
			}
			uri := entity(spec.URI)
			if uri == "" {
				return &MissingFieldError{Path: path + ".uri"}
			}
			if err := validate(path+".uri", uri, expr.IRI|expr.PrefixedIRI|expr.PropertyPath); err != nil {
				return err
			}
			t := sparql.T(subject, uri, v)
			if spec.IsOptional {
				sg.Optionals = append(sg.Optionals, t)
			} else {
				sg.Also = append(sg.Also, t)
			}
		}
		if spec.IsSelectable {
			b.addSelectable(v)
		}

		if err := b.translateSpec(sg, subject, j, spec, geo, discovery); err != nil {
			return err
		}
	}
	return nil
}

// isGeoFunction reports whether uri names one of the configured
// geospatial property functions.
func (b *build) isGeoFunction(uri string) bool {
	if strings.TrimSpace(uri) == "" {
		return false
	}
	full := expandIRI(uri, b.c.cfg.Prefixes)
	return full == b.c.geoNearby || full == b.c.geoWithin
}
