package ir

// Request is a decoded compile request.
//
// Observables drive the standard path. When Observables is empty and
// Filters holds exactly one entity, the compiler runs location discovery
// using SensorPattern instead.
type Request struct {
	Observables     []Observable   `json:"observables"`
	ObservablesKeys []string       `json:"observablesKeys,omitempty"`
	Filters         FilterMap      `json:"filters,omitempty"`
	SortBy          *SortBy        `json:"sortBy,omitempty"`
	Limit           FlexInt        `json:"limit,omitempty"`
	SensorPattern   *SensorPattern `json:"sensorPattern,omitempty"`
}

// Observable is one subject/predicate/object pattern of a request.
// Each slot is a SPARQL variable, an IRI, or a prefixed name.
type Observable struct {
	Subject   string     `json:"subject"`
	Predicate string     `json:"predicate"`
	Object    string     `json:"object"`
	Modifiers *Modifiers `json:"modifiers,omitempty"`
}

// Modifiers are per-observable solution modifiers. Only enabled modifiers
// take effect.
type Modifiers struct {
	Limit   *LimitModifier `json:"limit,omitempty"`
	OrderBy *TextModifier  `json:"orderBy,omitempty"`
	GroupBy *TextModifier  `json:"groupBy,omitempty"`
}

// LimitModifier bounds the solutions of one observable branch.
type LimitModifier struct {
	Enabled bool    `json:"enabled"`
	Value   FlexInt `json:"value"`
}

// TextModifier carries an expression-valued modifier such as
// "?time DESC" for orderBy or "?sensor ?feature" for groupBy.
type TextModifier struct {
	Enabled bool   `json:"enabled"`
	Value   string `json:"value"`
}

// FilterSpec attaches a bound predicate and its filter clauses to an
// observable key.
type FilterSpec struct {
	PredicateName string         `json:"predicateName,omitempty"` // bound variable, e.g. "?temperature"
	URI           string         `json:"uri,omitempty"`           // predicate IRI or geospatial function IRI
	IsOptional    bool           `json:"isOptional,omitempty"`
	IsSelectable  bool           `json:"isSelectable,omitempty"`
	Datatype      string         `json:"datatype,omitempty"` // datatype IRI, resolved to xsd:localName
	Filters       []FilterClause `json:"filters,omitempty"`
}

// FilterClause is a single filter applied to a FilterSpec's variable.
type FilterClause struct {
	SelectedFilter SelectedFilter `json:"selectedFilter"`
	Input          FilterInput    `json:"input"`
	Operator       string         `json:"operator,omitempty"` // AND | OR | UNION
}

// SelectedFilter names the filter kind. Matching is case-insensitive.
type SelectedFilter struct {
	Text string `json:"text"`
}

// FilterInput holds the user-provided operands of a filter clause.
type FilterInput struct {
	Value      FlexString `json:"value,omitempty"`
	Expression string     `json:"expression,omitempty"`
	Center     *LatLng    `json:"center,omitempty"`
	Radius     *FlexFloat `json:"radius,omitempty"` // metres
	LatLngs    LatLngList `json:"latLngs,omitempty"`
}

// SortBy is the global ordering of a request.
type SortBy struct {
	Expression string `json:"expression"`
	Direction  string `json:"direction,omitempty"`
}

// SensorPattern describes the triple used by location discovery and which
// of its ends is the sensor.
type SensorPattern struct {
	S         string `json:"s"`
	P         string `json:"p"`
	O         string `json:"o"`
	SensorKey string `json:"sensorKey,omitempty"`
}

// Operator constants for FilterClause.Operator.
const (
	OperatorAnd   = "AND"
	OperatorOr    = "OR"
	OperatorUnion = "UNION"
)

