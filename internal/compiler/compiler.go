// Package compiler turns a decoded request into a SPARQL SELECT query.
//
// Pipeline, per request:
//
//	observables ──► builder ──► subgraphs ──► assembler ──► sparql.Query
//	                   │                          ▲
//	                   └─► filter translator ─────┘
//	                         (inline filters, range merge, geo triples,
//	                          aggregate/temporal function specs)
//
// then the aggregate generator appends a sub-select, the temporal injector
// inserts BIND nodes into the labelled groups, and the tree is serialized
// once.
//
// A Compiler is immutable after New. Each Compile call owns its working
// state, so one Compiler may serve any number of goroutines.
package compiler

import (
	"fmt"

	"github.com/roach88/sparqlc/internal/config"
	"github.com/roach88/sparqlc/internal/ir"
	"github.com/roach88/sparqlc/internal/sparql"
)

// Compiler compiles requests under a fixed configuration.
type Compiler struct {
	cfg         config.Compiler
	serializer  *sparql.Serializer
	stringTypes map[string]bool
	geoNearby   string
	geoWithin   string
}

// New creates a Compiler. The configuration is copied; later changes to
// cfg do not affect the Compiler.
func New(cfg config.Compiler) (*Compiler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("compiler config: %w", err)
	}
	cfg = cfg.Clone()
	if cfg.DefaultDatatype == "" {
		cfg.DefaultDatatype = "xsd:string"
	}

	c := &Compiler{
		cfg:         cfg,
		serializer:  sparql.NewSerializer(cfg.Prefixes),
		stringTypes: make(map[string]bool, len(cfg.StringDatatypes)),
	}
	for _, t := range cfg.StringDatatypes {
		c.stringTypes[t] = true
	}
	c.geoNearby = expandIRI(cfg.Geo.NearbyFunction, cfg.Prefixes)
	c.geoWithin = expandIRI(cfg.Geo.WithinFunction, cfg.Prefixes)
	return c, nil
}

// MustNew is like New but panics on error.
// Use only in tests or with configurations known to be valid.
func MustNew(cfg config.Compiler) *Compiler {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// Config returns a copy of the configuration.
func (c *Compiler) Config() config.Compiler {
	return c.cfg.Clone()
}

// Result is the outcome of a successful compilation.
type Result struct {
	Query     string          `json:"query"`
	Variables []string        `json:"variables"`
	Ignored   []IgnoredFilter `json:"ignored,omitempty"`
	AST       *sparql.Query   `json:"-"`
}

// FunctionSpec is an aggregate or temporal function collected from a
// filter clause, grouped by the observable key it came from.
type FunctionSpec struct {
	FunctionType string // upper case, e.g. AVG or YEAR
	VariableName string // e.g. ?temperature
	VariableURI  string // predicate binding the variable
	Subject      string
	Predicate    string
	Object       string
	FieldsetURI  string // predicate of the originating observable
	OriginKey    string
	Path         string
}

// Alias is the generated result variable: AVG of ?temperature is
// ?AvgTemperature.
func (f FunctionSpec) Alias() string {
	return functionAlias(f.FunctionType, f.VariableName)
}

// Expr is FUNC(?var).
func (f FunctionSpec) Expr() string {
	return f.FunctionType + "(" + f.VariableName + ")"
}

// CompileJSON decodes body and compiles it.
func (c *Compiler) CompileJSON(body []byte) (*Result, error) {
	req, err := ir.DecodeRequest(body)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return c.Compile(req)
}

// Compile compiles a decoded request.
func (c *Compiler) Compile(req *ir.Request) (*Result, error) {
	if req == nil {
		return nil, &InvalidRequestError{Message: "request is nil"}
	}
	b := newBuild(c, req)

	var (
		q   *sparql.Query
		err error
	)
	if len(req.Observables) == 0 {
		q, err = b.discovery()
	} else {
		q, err = b.standard()
	}
	if err != nil {
		return nil, err
	}

	text, err := c.serializer.Serialize(q)
	if err != nil {
		return nil, &SerializeError{Err: err}
	}
	return &Result{
		Query:     text,
		Variables: q.ProjectedVars(),
		Ignored:   b.ignored,
		AST:       q,
	}, nil
}

// build is the working state of one compilation.
type build struct {
	c   *Compiler
	req *ir.Request

	selectable []string
	seen       map[string]bool

	aggregateKeys []string
	aggregates    map[string][]FunctionSpec
	temporals     []FunctionSpec

	ignored []IgnoredFilter
}

func newBuild(c *Compiler, req *ir.Request) *build {
	return &build{
		c:          c,
		req:        req,
		seen:       map[string]bool{},
		aggregates: map[string][]FunctionSpec{},
	}
}

func (b *build) addSelectable(term string) {
	if sparql.IsVariable(term) && !b.seen[term] {
		b.seen[term] = true
		b.selectable = append(b.selectable, term)
	}
}

func (b *build) ignore(path, kind, reason string) {
	b.ignored = append(b.ignored, IgnoredFilter{Path: path, Kind: kind, Reason: reason})
}

func (b *build) addFunction(fn FunctionSpec, temporal bool) {
	if temporal {
		b.temporals = append(b.temporals, fn)
		return
	}
	if _, ok := b.aggregates[fn.OriginKey]; !ok {
		b.aggregateKeys = append(b.aggregateKeys, fn.OriginKey)
	}
	b.aggregates[fn.OriginKey] = append(b.aggregates[fn.OriginKey], fn)
}

// standard compiles the observable-driven path.
func (b *build) standard() (*sparql.Query, error) {
	subgraphs := make([]*Subgraph, 0, len(b.req.Observables))
	for i, obs := range b.req.Observables {
		sg, err := b.observable(i, obs)
		if err != nil {
			return nil, err
		}
		subgraphs = append(subgraphs, sg)
	}

	q, err := b.assemble(subgraphs)
	if err != nil {
		return nil, err
	}
	if err := b.applyAggregates(q); err != nil {
		return nil, err
	}
	if err := b.applyTemporals(q); err != nil {
		return nil, err
	}
	return q, nil
}
