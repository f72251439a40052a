package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/sparqlc/internal/expr"
	"github.com/roach88/sparqlc/internal/sparql"
)

// sensorAlias is the projected name of the sampled sensor.
const sensorAlias = "?sensorURI"

// discovery compiles a request without observables: one filtered entity
// and a sensor pattern. The query samples one sensor per feature:
//
//	SELECT (SAMPLE(?sensor) AS ?sensorURI) ?feature
//	WHERE { <sensor pattern> <filters on the entity> }
//	GROUP BY ?sensor ?feature
//
// sortBy and limit do not apply.
func (b *build) discovery() (*sparql.Query, error) {
	keys := b.req.Filters.Keys()
	switch len(keys) {
	case 0:
		return nil, &InvalidRequestError{Path: "observables", Message: "request has neither observables nor filters"}
	case 1:
	default:
		return nil, &InvalidRequestError{
			Path:    "filters",
			Message: fmt.Sprintf("location discovery needs exactly one filtered entity, got %d", len(keys)),
		}
	}
	key := keys[0]

	sp := b.req.SensorPattern
	if sp == nil {
		return nil, &MissingFieldError{Path: "sensorPattern"}
	}
	anchor, err := anchorTriple("sensorPattern", sp.S, sp.P, sp.O)
	if err != nil {
		return nil, err
	}

	sensor, feature := anchor.Subject, anchor.Object
	switch strings.ToLower(strings.TrimSpace(sp.SensorKey)) {
	case "", "s", "subject":
	case "o", "object":
		sensor, feature = feature, sensor
	default:
		return nil, &InvalidRequestError{
			Path:    "sensorPattern.sensorKey",
			Message: fmt.Sprintf("unknown sensor key %q (want s or o)", sp.SensorKey),
		}
	}
	for _, v := range []struct{ path, term string }{
		{"sensorPattern.sensorKey", sensor},
		{"sensorPattern", feature},
	} {
		if err := validate(v.path, v.term, expr.Variable); err != nil {
			return nil, err
		}
	}

	subject := entity(key)
	if err := validate(fmt.Sprintf("filters[%q]", key), subject, expr.Variable|expr.IRI|expr.PrefixedIRI); err != nil {
		return nil, err
	}

	sg := &Subgraph{Key: key, Anchor: anchor}
	if err := b.attachFilters(sg, subject, true); err != nil {
		return nil, err
	}

	q := &sparql.Query{
		Projection: []sparql.Projection{
			{Var: sensorAlias, Expr: "SAMPLE(" + sensor + ")"},
			{Var: feature},
		},
		Where:   sg.Group(),
		GroupBy: []string{sensor, feature},
	}
	return q, nil
}
