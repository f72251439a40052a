package compiler

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sparqlc/internal/config"
	"github.com/roach88/sparqlc/internal/sparql"
)

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	c, err := New(config.Default())
	require.NoError(t, err)
	return c
}

func compile(t *testing.T, body string) *Result {
	t.Helper()
	res, err := newTestCompiler(t).CompileJSON([]byte(body))
	require.NoError(t, err)
	return res
}

func prefixLine(name string) string {
	return "PREFIX " + name + ": <" + config.Default().Prefixes[name] + ">"
}

func TestCompileSingleTriple(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?person", "predicate": "foaf:knows", "object": "?friend"}],
		"observablesKeys": ["predicate"],
		"filters": {}
	}`)

	want := prefixLine("foaf") + `

SELECT ?person ?friend
WHERE {
  ?person foaf:knows ?friend .
}`
	assert.Equal(t, want, res.Query)
	assert.ElementsMatch(t, []string{"?person", "?friend"}, res.Variables)
	assert.Empty(t, res.Ignored)
}

func TestCompileValueKeyedFilters(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?person", "predicate": "foaf:knows", "object": "?friend"}],
		"observablesKeys": ["?person"],
		"filters": {"?person": [{
			"predicateName": "?name",
			"uri": "foaf:name",
			"filters": [{"selectedFilter": {"text": "Contain"}, "input": {"value": "John"}}]
		}]}
	}`)
	assert.Contains(t, res.Query, "?person foaf:name ?name .")
	assert.Contains(t, res.Query, `FILTER(regex(str(?name), "John", "i"))`)

	t.Run("object key", func(t *testing.T) {
		res := compile(t, `{
			"observables": [{"subject": "?person", "predicate": "foaf:knows", "object": "?friend"}],
			"observablesKeys": ["?friend"],
			"filters": {"?friend": [{"predicateName": "?mbox", "uri": "foaf:mbox", "isOptional": true}]}
		}`)
		assert.Contains(t, res.Query, "?person foaf:mbox ?mbox .")
	})

	t.Run("role names fall back to predicate", func(t *testing.T) {
		res := compile(t, `{
			"observables": [{"subject": "?person", "predicate": "foaf:knows", "object": "?friend"}],
			"observablesKeys": ["subject"],
			"filters": {"foaf:knows": [{"predicateName": "?name", "uri": "foaf:name"}]}
		}`)
		assert.Contains(t, res.Query, "?person foaf:name ?name .")
	})
}

func TestCompileWrapsBareURLs(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "http://example.org/station/1", "predicate": "sosa:hosts", "object": "?sensor"}]
	}`)

	assert.Contains(t, res.Query, "<http://example.org/station/1> sosa:hosts ?sensor .")
	assert.Equal(t, []string{"?sensor"}, res.Variables)
}

func TestCompileRangeWrapAround(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi string
		want   string
	}{
		{
			name: "wraps",
			lo:   "315", hi: "45",
			want: `FILTER((?Direction > "315"^^xsd:float || ?Direction < "45"^^xsd:float))`,
		},
		{
			name: "ordinary interval",
			lo:   "10", hi: "15",
			want: `FILTER((?Direction > "10"^^xsd:float && ?Direction < "15"^^xsd:float))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, `{
				"observables": [{"subject": "?obs", "predicate": "sosa:observedProperty", "object": "?prop"}],
				"observablesKeys": ["?obs"],
				"filters": {"?obs": [{
					"predicateName": "?Direction",
					"uri": "sosa:hasSimpleResult",
					"datatype": "http://www.w3.org/2001/XMLSchema#float",
					"filters": [
						{"selectedFilter": {"text": "Range"}, "input": {"expression": ">", "value": "`+tt.lo+`"}},
						{"selectedFilter": {"text": "Range"}, "input": {"expression": "<", "value": `+tt.hi+`}}
					]
				}]}
			}`)

			assert.Contains(t, res.Query, tt.want)
			assert.Contains(t, res.Query, "?obs sosa:hasSimpleResult ?Direction .")
			assert.Equal(t, 1, strings.Count(res.Query, "FILTER("))
		})
	}
}

func TestCompileContainFilter(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?person", "predicate": "foaf:knows", "object": "?friend"}],
		"observablesKeys": ["?person"],
		"filters": {"?person": [{
			"predicateName": "name",
			"uri": "foaf:name",
			"isSelectable": true,
			"filters": [{"selectedFilter": {"text": "Contain"}, "input": {"value": "John"}}]
		}]}
	}`)

	want := prefixLine("foaf") + `

SELECT ?person ?friend ?name
WHERE {
  ?person foaf:knows ?friend .
  ?person foaf:name ?name .
  FILTER(regex(str(?name), "John", "i"))
}`
	assert.Equal(t, want, res.Query)
}

func TestCompileOptionalSpec(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?person", "predicate": "foaf:knows", "object": "?friend"}],
		"observablesKeys": ["?person"],
		"filters": {"?person": [{"predicateName": "?mbox", "uri": "foaf:mbox", "isOptional": true, "isSelectable": true}]}
	}`)

	assert.Contains(t, res.Query, "  OPTIONAL {\n    ?person foaf:mbox ?mbox .\n  }")
	assert.Equal(t, []string{"?person", "?friend", "?mbox"}, res.Variables)
}

func TestCompileOrJoinsInlineFilters(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?person", "predicate": "foaf:knows", "object": "?friend"}],
		"observablesKeys": ["?person"],
		"filters": {"?person": [{
			"predicateName": "?name",
			"uri": "foaf:name",
			"filters": [
				{"selectedFilter": {"text": "regex"}, "input": {"value": "^J"}},
				{"selectedFilter": {"text": "contain"}, "input": {"value": "ohn"}, "operator": "OR"},
				{"selectedFilter": {"text": "bound"}, "input": {"value": "is not bound"}, "operator": "AND"}
			]
		}]}
	}`)

	assert.Contains(t, res.Query, `FILTER(regex(?name, "^J") || regex(str(?name), "ohn", "i"))`)
	assert.Contains(t, res.Query, `FILTER(!BOUND(?name))`)
}

func TestCompileMatchFilter(t *testing.T) {
	tests := []struct {
		name     string
		datatype string
		want     string
	}{
		{"string type", "http://www.w3.org/2001/XMLSchema#string", `FILTER(regex(?label, "^Lake"))`},
		{"default type", "", `FILTER(regex(?label, "^Lake"))`},
		{"typed equality", "http://www.w3.org/2001/XMLSchema#integer", `FILTER(?label = "Lake"^^xsd:integer)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, `{
				"observables": [{"subject": "?f", "predicate": "rdf:type", "object": "sosa:FeatureOfInterest"}],
				"observablesKeys": ["?f"],
				"filters": {"?f": [{
					"predicateName": "?label",
					"uri": "rdfs:label",
					"datatype": "`+tt.datatype+`",
					"filters": [{"selectedFilter": {"text": "Match"}, "input": {"value": "Lake"}}]
				}]}
			}`)
			assert.Contains(t, res.Query, tt.want)
		})
	}
}

func TestCompileIgnoresUnsupportedKinds(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?person", "predicate": "foaf:knows", "object": "?friend"}],
		"observablesKeys": ["?person"],
		"filters": {"?person": [{
			"predicateName": "?name",
			"uri": "foaf:name",
			"filters": [
				{"selectedFilter": {"text": "fuzzy"}, "input": {"value": "Jon"}},
				{"selectedFilter": {"text": "Date Range"}, "input": {"value": "2020"}}
			]
		}]}
	}`)

	assert.NotContains(t, res.Query, "FILTER")
	require.Len(t, res.Ignored, 2)
	assert.Equal(t, IgnoredFilter{
		Path:   `filters["?person"][0].filters[0]`,
		Kind:   "fuzzy",
		Reason: ReasonUnsupportedKind,
	}, res.Ignored[0])
	assert.Equal(t, ReasonUnreachableRange, res.Ignored[1].Reason)
}

func TestCompileNearby(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?feature", "predicate": "geo:hasGeometry", "object": "?geom"}],
		"observablesKeys": ["?feature"],
		"filters": {"?feature": [{
			"uri": "http://jena.apache.org/spatial#nearby",
			"filters": [{"selectedFilter": {"text": "Nearby"}, "input": {"center": {"lat": 51.5, "lng": -0.12}, "radius": "1500"}}]
		}]}
	}`)

	assert.Contains(t, res.Query,
		"?feature <http://jena.apache.org/spatial#nearby> (51.5 -0.12 1.5 <http://qudt.org/vocab/unit#Kilometer>) .")
	assert.NotContains(t, res.Query, "FILTER")
}

func TestCompileWithin(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?feature", "predicate": "geo:hasGeometry", "object": "?geom"}],
		"observablesKeys": ["?feature"],
		"filters": {"?feature": [{
			"uri": "spatial:within",
			"filters": [{"selectedFilter": {"text": "within"}, "input": {"latLngs": [[0, 0], [0, 1], [1, 1]]}}]
		}]}
	}`)

	assert.Contains(t, res.Query, `?feature spatial:within "POLYGON((0 0, 1 0, 1 1, 0 0))"^^geo:wktLiteral .`)
	assert.Contains(t, res.Query, prefixLine("spatial"))
	assert.Contains(t, res.Query, prefixLine("geo"))
}

func TestCompileGeoUnion(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?feature", "predicate": "geo:hasGeometry", "object": "?geom"}],
		"observablesKeys": ["?feature"],
		"filters": {"?feature": [{
			"uri": "spatial:nearby",
			"filters": [
				{"selectedFilter": {"text": "nearby"}, "input": {"center": [10, 20], "radius": 2000}, "operator": "UNION"},
				{"selectedFilter": {"text": "nearby"}, "input": {"center": [30, 40], "radius": 2000}, "operator": "UNION"}
			]
		}]}
	}`)

	want := `  {
    ?feature spatial:nearby (10 20 2 <http://qudt.org/vocab/unit#Kilometer>) .
  }
  UNION
  {
    ?feature spatial:nearby (30 40 2 <http://qudt.org/vocab/unit#Kilometer>) .
  }`
	assert.Contains(t, res.Query, want)
}

func TestCompileGeoOnPlainPredicateIsIgnored(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?feature", "predicate": "geo:hasGeometry", "object": "?geom"}],
		"observablesKeys": ["?feature"],
		"filters": {"?feature": [{
			"predicateName": "?label",
			"uri": "rdfs:label",
			"filters": [{"selectedFilter": {"text": "nearby"}, "input": {"center": [1, 2], "radius": 10}}]
		}]}
	}`)

	require.Len(t, res.Ignored, 1)
	assert.Equal(t, ReasonNotGeoPredicate, res.Ignored[0].Reason)
}

func TestCompileModifiers(t *testing.T) {
	res := compile(t, `{
		"observables": [
			{"subject": "?s", "predicate": "rdfs:label", "object": "?label",
			 "modifiers": {"limit": {"enabled": true, "value": 5}, "orderBy": {"enabled": false, "value": "?label"}}},
			{"subject": "?s", "predicate": "foaf:name", "object": "?name"}
		],
		"sortBy": {"expression": "name", "direction": "desc"},
		"limit": "10"
	}`)

	want := prefixLine("foaf") + "\n" + prefixLine("rdfs") + `

SELECT ?s ?label ?name
WHERE {
  {
    {
      SELECT *
      WHERE {
        ?s rdfs:label ?label .
      }
      LIMIT 5
    }
  }
  UNION
  {
    ?s foaf:name ?name .
  }
}
ORDER BY DESC(?name)
LIMIT 10`
	assert.Equal(t, want, res.Query)
}

func TestCompileSortByNone(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?s", "predicate": "rdfs:label", "object": "?label"}],
		"sortBy": {"expression": "!none", "direction": "ASC"}
	}`)
	assert.NotContains(t, res.Query, "ORDER BY")
}

func TestCompileAggregate(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?obs", "predicate": "sosa:observedProperty", "object": "?prop"}],
		"observablesKeys": ["?obs"],
		"filters": {"?obs": [{
			"predicateName": "?temperature",
			"uri": "sosa:hasSimpleResult",
			"filters": [
				{"selectedFilter": {"text": "Aggregate Function"}, "input": {"value": "avg"}},
				{"selectedFilter": {"text": "Aggregate Function"}, "input": {"value": "AVG"}},
				{"selectedFilter": {"text": "Aggregate Function"}, "input": {"value": "max"}}
			]
		}]}
	}`)

	assert.Equal(t, 1, strings.Count(res.Query, "(AVG(?temperature) AS ?AvgTemperature)"))
	assert.Contains(t, res.Query, "SELECT (AVG(?temperature) AS ?AvgTemperature) (MAX(?temperature) AS ?MaxTemperature)")
	assert.Equal(t, []string{"?obs", "?prop", "?AvgTemperature", "?MaxTemperature"}, res.Variables)

	sub := aggregateSubSelect(t, res.AST)
	g := sub.Query.Where
	assert.Equal(t, aggregateLabelPrefix+"?obs", g.Label)
	require.Len(t, g.Patterns, 2)
	assert.Equal(t, sparql.T("?obs", "sosa:observedProperty", "?prop"), g.Patterns[0])
	assert.Equal(t, sparql.T("?obs", "sosa:hasSimpleResult", "?temperature"), g.Patterns[1])
}

func TestCompileAggregateUnion(t *testing.T) {
	body := func(second string) string {
		return `{
			"observables": [
				{"subject": "?a", "predicate": "sosa:madeBySensor", "object": "?s1"},
				{"subject": "?b", "predicate": "sosa:madeBySensor", "object": "?s2"}
			],
			"observablesKeys": ["?a", "?b"],
			"filters": {
				"?a": [{"predicateName": "?temperature", "uri": "sosa:hasSimpleResult",
					"filters": [{"selectedFilter": {"text": "aggregate function"}, "input": {"value": "AVG"}}]}],
				"?b": [{"predicateName": "` + second + `", "uri": "sosa:hasSimpleResult",
					"filters": [{"selectedFilter": {"text": "aggregate function"}, "input": {"value": "AVG"}}]}]
			}
		}`
	}

	t.Run("same variables union", func(t *testing.T) {
		res := compile(t, body("?temperature"))
		sub := aggregateSubSelect(t, res.AST)
		require.Len(t, sub.Query.Where.Patterns, 1)
		u, ok := sub.Query.Where.Patterns[0].(*sparql.Union)
		require.True(t, ok)
		assert.Len(t, u.Branches, 2)
	})

	t.Run("different variables inline", func(t *testing.T) {
		res := compile(t, body("?humidity"))
		sub := aggregateSubSelect(t, res.AST)
		require.Len(t, sub.Query.Where.Patterns, 2)
		for _, p := range sub.Query.Where.Patterns {
			_, ok := p.(*sparql.Group)
			assert.True(t, ok)
		}
		assert.Contains(t, res.Variables, "?AvgHumidity")
	})
}

func aggregateSubSelect(t *testing.T, q *sparql.Query) *sparql.SubSelect {
	t.Helper()
	require.NotNil(t, q)
	for _, p := range q.Where.Patterns {
		if sub, ok := p.(*sparql.SubSelect); ok {
			return sub
		}
	}
	t.Fatal("no aggregate sub-select")
	return nil
}

func TestCompileTemporalAfterOptional(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?obs", "predicate": "sosa:observedProperty", "object": "?prop"}],
		"observablesKeys": ["?obs"],
		"filters": {"?obs": [{
			"predicateName": "?time",
			"uri": "sosa:resultTime",
			"isOptional": true,
			"filters": [
				{"selectedFilter": {"text": "Temporal Function"}, "input": {"value": "year"}},
				{"selectedFilter": {"text": "Temporal Function"}, "input": {"value": "year"}}
			]
		}]}
	}`)

	want := prefixLine("sosa") + `

SELECT ?obs ?prop ?YearTime
WHERE {
  ?obs sosa:observedProperty ?prop .
  OPTIONAL {
    ?obs sosa:resultTime ?time .
  }
  BIND(YEAR(?time) AS ?YearTime)
}`
	assert.Equal(t, want, res.Query)
}

func TestCompileTemporalAfterTriple(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?obs", "predicate": "sosa:observedProperty", "object": "?prop"}],
		"observablesKeys": ["?obs"],
		"filters": {"?obs": [{
			"predicateName": "?time",
			"uri": "sosa:resultTime",
			"filters": [
				{"selectedFilter": {"text": "date function"}, "input": {"expression": "month"}},
				{"selectedFilter": {"text": "regex"}, "input": {"value": "2024"}}
			]
		}]}
	}`)

	want := `WHERE {
  ?obs sosa:observedProperty ?prop .
  ?obs sosa:resultTime ?time .
  BIND(MONTH(?time) AS ?MonthTime)
  FILTER(regex(?time, "2024"))
}`
	assert.Contains(t, res.Query, want)
	assert.Contains(t, res.Variables, "?MonthTime")
}

func TestCompileTemporalInsideLimitedBranch(t *testing.T) {
	res := compile(t, `{
		"observables": [
			{"subject": "?obs", "predicate": "sosa:observedProperty", "object": "?prop",
			 "modifiers": {"limit": {"enabled": true, "value": 3}}},
			{"subject": "?other", "predicate": "sosa:observedProperty", "object": "?prop"}
		],
		"observablesKeys": ["?obs"],
		"filters": {"?obs": [{
			"predicateName": "?time", "uri": "sosa:resultTime",
			"filters": [{"selectedFilter": {"text": "temporal function"}, "input": {"value": "DAY"}}]
		}]}
	}`)

	g := res.AST.FindGroup("?obs")
	require.NotNil(t, g)
	require.Len(t, g.Patterns, 3)
	assert.Equal(t, &sparql.Bind{Expr: "DAY(?time)", Var: "?DayTime"}, g.Patterns[2])
	assert.True(t, res.AST.HasProjection("?DayTime"))
}

func TestCompileUnknownFunctionIsIgnored(t *testing.T) {
	res := compile(t, `{
		"observables": [{"subject": "?obs", "predicate": "sosa:observedProperty", "object": "?prop"}],
		"observablesKeys": ["?obs"],
		"filters": {"?obs": [{
			"predicateName": "?v", "uri": "sosa:hasSimpleResult",
			"filters": [
				{"selectedFilter": {"text": "aggregate function"}, "input": {"value": "MEDIAN"}},
				{"selectedFilter": {"text": "temporal function"}, "input": {"value": "AVG"}}
			]
		}]}
	}`)

	require.Len(t, res.Ignored, 2)
	for _, ig := range res.Ignored {
		assert.Equal(t, ReasonUnknownFunction, ig.Reason)
	}
	assert.NotContains(t, res.Query, "BIND")
}

func TestCompileDiscovery(t *testing.T) {
	res := compile(t, `{
		"filters": {"?feature": [{
			"predicateName": "?name",
			"uri": "rdfs:label",
			"filters": [
				{"selectedFilter": {"text": "contain"}, "input": {"value": "Lake"}},
				{"selectedFilter": {"text": "aggregate function"}, "input": {"value": "COUNT"}}
			]
		}]},
		"sensorPattern": {"s": "?sensor", "p": "sosa:hasFeatureOfInterest", "o": "?feature", "sensorKey": "s"},
		"sortBy": {"expression": "?feature"},
		"limit": 5
	}`)

	want := prefixLine("rdfs") + "\n" + prefixLine("sosa") + `

SELECT (SAMPLE(?sensor) AS ?sensorURI) ?feature
WHERE {
  ?sensor sosa:hasFeatureOfInterest ?feature .
  ?feature rdfs:label ?name .
  FILTER(regex(str(?name), "Lake", "i"))
}
GROUP BY ?sensor ?feature`
	assert.Equal(t, want, res.Query)
	assert.Equal(t, []string{"?sensorURI", "?feature"}, res.Variables)
	require.Len(t, res.Ignored, 1)
	assert.Equal(t, ReasonDiscoveryFunction, res.Ignored[0].Reason)
}

func TestCompileDiscoveryObjectSensor(t *testing.T) {
	res := compile(t, `{
		"filters": {"?feature": []},
		"sensorPattern": {"s": "?feature", "p": "sosa:isFeatureOfInterestOf", "o": "?sensor", "sensorKey": "object"}
	}`)
	assert.Contains(t, res.Query, "SELECT (SAMPLE(?sensor) AS ?sensorURI) ?feature")
	assert.Contains(t, res.Query, "GROUP BY ?sensor ?feature")
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantPath string
	}{
		{"not json", `nope`, ErrDecode, ""},
		{"invalid utf8", "{\"observables\": [\xff]}", ErrDecode, ""},
		{"missing subject", `{"observables": [{"predicate": "foaf:knows", "object": "?o"}]}`, ErrMissingField, "observables[0].subject"},
		{"selected subject without filters", `{
			"observables": [{"subject": "?person", "predicate": "foaf:knows", "object": "?friend"}],
			"observablesKeys": ["?person"],
			"filters": {}
		}`, ErrMissingField, `filters["?person"]`},
		{"selected object without filters", `{
			"observables": [{"subject": "?person", "predicate": "foaf:knows", "object": "?friend"}],
			"observablesKeys": ["?friend"],
			"filters": {"?person": []}
		}`, ErrMissingField, `filters["?friend"]`},
		{"bad subject term", `{"observables": [{"subject": "two words", "predicate": "?p", "object": "?o"}]}`, ErrInvalidExpression, "observables[0].subject"},
		{"literal subject", `{"observables": [{"subject": "\"x\"", "predicate": "?p", "object": "?o"}]}`, ErrInvalidExpression, "observables[0].subject"},
		{"spec without uri", `{
			"observables": [{"subject": "?s", "predicate": "?p", "object": "?o"}],
			"observablesKeys": ["?s"],
			"filters": {"?s": [{"predicateName": "?x"}]}
		}`, ErrMissingField, `filters["?s"][0].uri`},
		{"polygon too small", `{
			"observables": [{"subject": "?f", "predicate": "geo:hasGeometry", "object": "?g"}],
			"observablesKeys": ["?f"],
			"filters": {"?f": [{"uri": "spatial:within",
				"filters": [{"selectedFilter": {"text": "within"}, "input": {"latLngs": [[0, 0], [1, 1]]}}]}]}
		}`, ErrInvalidRequest, `filters["?f"][0].filters[0].input.latLngs`},
		{"bad order expression", `{
			"observables": [{"subject": "?s", "predicate": "?p", "object": "?o"}],
			"sortBy": {"expression": "not a var"}
		}`, ErrInvalidExpression, "sortBy"},
		{"negative limit", `{"observables": [{"subject": "?s", "predicate": "?p", "object": "?o"}], "limit": -1}`, ErrInvalidRequest, "limit"},
		{"nothing to compile", `{}`, ErrInvalidRequest, "observables"},
		{"two discovery entities", `{"filters": {"?a": [], "?b": []}}`, ErrInvalidRequest, "filters"},
		{"no sensor pattern", `{"filters": {"?a": []}}`, ErrMissingField, "sensorPattern"},
		{"bad sensor key", `{"filters": {"?a": []}, "sensorPattern": {"s": "?s", "p": "?p", "o": "?o", "sensorKey": "p"}}`, ErrInvalidRequest, "sensorPattern.sensorKey"},
	}

	c := newTestCompiler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.CompileJSON([]byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.wantCode, ErrorCode(err))
			assert.True(t, IsClientError(err))
			assert.Contains(t, err.Error(), "["+tt.wantCode+"]")
			if tt.wantPath != "" {
				assert.Contains(t, err.Error(), tt.wantPath)
			}
		})
	}
}

func TestCompileNilRequest(t *testing.T) {
	_, err := newTestCompiler(t).Compile(nil)
	assert.Equal(t, ErrInvalidRequest, ErrorCode(err))
}

func TestErrorCodeOfPlainError(t *testing.T) {
	assert.Equal(t, "", ErrorCode(assert.AnError))
	assert.False(t, IsClientError(assert.AnError))
	assert.False(t, IsClientError(&SerializeError{Err: assert.AnError}))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DatatypePrefix = "missing"
	_, err := New(cfg)
	require.Error(t, err)
	assert.Panics(t, func() { MustNew(cfg) })
}

func TestCompilerConfigIsCopied(t *testing.T) {
	cfg := config.Default()
	c := MustNew(cfg)
	cfg.Prefixes["foaf"] = "http://example.org/changed/"

	res, err := c.CompileJSON([]byte(`{"observables": [{"subject": "?a", "predicate": "foaf:knows", "object": "?b"}]}`))
	require.NoError(t, err)
	assert.Contains(t, res.Query, "<http://xmlns.com/foaf/0.1/>")

	got := c.Config()
	got.Prefixes["foaf"] = "http://example.org/other/"
	assert.Equal(t, "http://xmlns.com/foaf/0.1/", c.Config().Prefixes["foaf"])
}

func TestCompileConcurrent(t *testing.T) {
	c := newTestCompiler(t)
	body := []byte(`{
		"observables": [{"subject": "?obs", "predicate": "sosa:observedProperty", "object": "?prop"}],
		"observablesKeys": ["?obs"],
		"filters": {"?obs": [{
			"predicateName": "?time", "uri": "sosa:resultTime", "isOptional": true,
			"filters": [{"selectedFilter": {"text": "temporal function"}, "input": {"value": "YEAR"}}]
		}, {
			"predicateName": "?v", "uri": "sosa:hasSimpleResult",
			"filters": [{"selectedFilter": {"text": "aggregate function"}, "input": {"value": "SUM"}}]
		}]}
	}`)
	first, err := c.CompileJSON(body)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := c.CompileJSON(body)
			if err == nil {
				results[i] = res.Query
			}
		}(i)
	}
	wg.Wait()

	for _, q := range results {
		assert.Equal(t, first.Query, q)
	}
}
