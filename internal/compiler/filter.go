package compiler

import (
	"strings"

	"github.com/roach88/sparqlc/internal/expr"
	"github.com/roach88/sparqlc/internal/ir"
	"github.com/roach88/sparqlc/internal/sparql"
)

type filterKind int

const (
	kindUnknown filterKind = iota
	kindNearby
	kindWithin
	kindContain
	kindBound
	kindMatch
	kindRegex
	kindRange
	kindUnreachableRange
	kindAggregate
	kindTemporal
)

// classifyFilter maps selectedFilter.text to a filter kind. Matching is
// case-insensitive and ignores spaces, dashes and underscores.
func classifyFilter(text string) filterKind {
	norm := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(text)))
	if strings.Contains(norm, "function") {
		if strings.Contains(norm, "temporal") || strings.Contains(norm, "date") {
			return kindTemporal
		}
		return kindAggregate
	}
	switch norm {
	case "nearby":
		return kindNearby
	case "within":
		return kindWithin
	case "contain", "contains":
		return kindContain
	case "bound":
		return kindBound
	case "match":
		return kindMatch
	case "regex":
		return kindRegex
	case "range":
		return kindRange
	case "daterange", "timerange", "datetimerange":
		return kindUnreachableRange
	}
	return kindUnknown
}

var (
	aggregateFunctions = map[string]bool{
		"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
		"SAMPLE": true, "GROUP_CONCAT": true,
	}
	temporalFunctions = map[string]bool{
		"YEAR": true, "MONTH": true, "DAY": true, "HOURS": true,
		"MINUTES": true, "SECONDS": true, "TIMEZONE": true, "TZ": true,
	}
)

// translateSpec turns the clauses of one filter spec into inline FILTERs,
// one merged range FILTER, geospatial triples, and function specs.
func (b *build) translateSpec(sg *Subgraph, subject string, j int, spec ir.FilterSpec, geo, discovery bool) error {
	v := variable(spec.PredicateName)
	if v == "" && sparql.IsVariable(sg.Key) {
		v = sg.Key
	}
	datatype := b.datatype(spec.Datatype)

	var (
		inline []string
		ranges []rangeClause
	)
	for k, clause := range spec.Filters {
		path := clausePath(sg.Key, j, k)
		text := clause.SelectedFilter.Text
		kind := classifyFilter(text)
		operator := strings.ToUpper(strings.TrimSpace(clause.Operator))

		switch kind {
		case kindUnknown:
			b.ignore(path, text, ReasonUnsupportedKind)

		case kindUnreachableRange:
			b.ignore(path, text, ReasonUnreachableRange)

		case kindNearby, kindWithin:
			if !geo {
				b.ignore(path, text, ReasonNotGeoPredicate)
				continue
			}
			obj, ok, err := b.geoFragment(path, kind, clause.Input)
			if err != nil {
				return err
			}
			if !ok {
				b.ignore(path, text, ReasonGeoInputMissing)
				continue
			}
			t := sparql.T(subject, entity(spec.URI), obj)
			if operator == ir.OperatorUnion {
				sg.Unions = append(sg.Unions, &Subgraph{Key: sg.Key, Anchor: t})
			} else {
				sg.Also = append(sg.Also, t)
			}

		case kindAggregate, kindTemporal:
			if discovery {
				b.ignore(path, text, ReasonDiscoveryFunction)
				continue
			}
			b.function(sg, path, text, spec, clause.Input, kind == kindTemporal)

		case kindRange:
			if v == "" {
				b.ignore(path, text, ReasonNoVariable)
				continue
			}
			rc, ok := newRangeClause(v, datatype, clause.Input)
			if !ok {
				b.ignore(path, text, ReasonUnsupportedOperator)
				continue
			}
			if err := validate(path, rc.expr, expr.Comparison); err != nil {
				return err
			}
			ranges = append(ranges, rc)

		default:
			if v == "" {
				b.ignore(path, text, ReasonNoVariable)
				continue
			}
			frag, allowed := b.inlineFragment(kind, v, datatype, string(clause.Input.Value))
			if err := validate(path, frag, allowed); err != nil {
				return err
			}
			if operator == ir.OperatorOr && len(inline) > 0 {
				joined := inline[len(inline)-1] + " || " + frag
				if err := validate(path, joined, expr.FilterExpr); err != nil {
					return err
				}
				inline[len(inline)-1] = joined
				continue
			}
			inline = append(inline, frag)
		}
	}

	sg.Filters = append(sg.Filters, inline...)
	if len(ranges) > 0 {
		merged := mergeRanges(ranges)
		if err := validate(specPath(sg.Key, j)+".filters", merged, expr.Comparison|expr.NestedComparison); err != nil {
			return err
		}
		sg.Filters = append(sg.Filters, merged)
	}
	return nil
}

// inlineFragment renders the string, bound, match and regex filters and
// returns the grammar the fragment must satisfy.
func (b *build) inlineFragment(kind filterKind, v, datatype, value string) (string, expr.Kind) {
	switch kind {
	case kindContain:
		return "regex(str(" + v + "), " + quote(value) + `, "i")`, expr.Function
	case kindBound:
		if strings.Contains(strings.ToLower(value), "not") {
			return "!BOUND(" + v + ")", expr.Function
		}
		return "BOUND(" + v + ")", expr.Function
	case kindMatch:
		if b.c.stringTypes[localName(datatype)] {
			return "regex(" + v + ", " + quote("^"+value) + ")", expr.Function
		}
		return v + " = " + typedLiteral(value, datatype), expr.Comparison
	default: // kindRegex
		return "regex(" + v + ", " + quote(value) + ")", expr.Function
	}
}

// datatype resolves a spec datatype, falling back to the configured default.
func (b *build) datatype(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return b.c.cfg.DefaultDatatype
	}
	return ResolveDatatype(raw, b.c.cfg.DatatypePrefix)
}

// function records an aggregate or temporal function clause.
func (b *build) function(sg *Subgraph, path, text string, spec ir.FilterSpec, in ir.FilterInput, temporal bool) {
	fnType := strings.ToUpper(strings.TrimSpace(string(in.Value)))
	if fnType == "" {
		fnType = strings.ToUpper(strings.TrimSpace(in.Expression))
	}
	known := aggregateFunctions
	if temporal {
		known = temporalFunctions
	}
	if !known[fnType] {
		b.ignore(path, text, ReasonUnknownFunction)
		return
	}

	v := variable(spec.PredicateName)
	uri := entity(spec.URI)
	if v == "" || uri == "" || sg.Anchor == nil {
		b.ignore(path, text, ReasonFunctionUnbound)
		return
	}
	b.addFunction(FunctionSpec{
		FunctionType: fnType,
		VariableName: v,
		VariableURI:  uri,
		Subject:      sg.Anchor.Subject,
		Predicate:    sg.Anchor.Predicate,
		Object:       sg.Anchor.Object,
		FieldsetURI:  sg.Anchor.Predicate,
		OriginKey:    sg.Key,
		Path:         path,
	}, temporal)
}
