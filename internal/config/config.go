// Package config loads the compiler configuration.
//
// Configuration is a CUE document: the embedded defaults.cue declares the
// #Config schema with a default for every field, and an optional user file
// is unified into it. The result is decoded into Compiler, an immutable
// value handed to compiler.New.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/sparqlc/internal/ir"
)

//go:embed defaults.cue
var defaultsCUE string

// Compiler is the compiler configuration.
type Compiler struct {
	Prefixes        map[string]string `json:"prefixes"`
	Geo             Geo               `json:"geo"`
	DatatypePrefix  string            `json:"datatypePrefix"`
	DefaultDatatype string            `json:"defaultDatatype"`
	StringDatatypes []string          `json:"stringDatatypes"`
}

// Geo holds the IRIs used by the nearby and within filters.
type Geo struct {
	NearbyFunction string `json:"nearbyFunction"`
	WithinFunction string `json:"withinFunction"`
	KilometreUnit  string `json:"kilometreUnit"`
	WKTDatatype    string `json:"wktDatatype"`
}

// Error reports an invalid configuration document.
type Error struct {
	File    string
	Message string
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("config %s: %s", e.File, e.Message)
	}
	return "config: " + e.Message
}

// Default returns the built-in configuration.
func Default() Compiler {
	c, err := load(nil, "")
	if err != nil {
		panic(fmt.Sprintf("embedded defaults.cue is invalid: %v", err))
	}
	return c
}

// LoadFile unifies the CUE file at path with the defaults. An empty path
// returns the defaults.
func LoadFile(path string) (Compiler, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Compiler{}, &Error{File: path, Message: err.Error()}
	}
	return Load(data, path)
}

// Load unifies a CUE document with the defaults. The document's top-level
// fields are the fields of #Config; filename is used in messages only.
func Load(src []byte, filename string) (Compiler, error) {
	return load(src, filename)
}

func load(src []byte, filename string) (Compiler, error) {
	ctx := cuecontext.New()

	base := ctx.CompileString(defaultsCUE, cue.Filename("defaults.cue"))
	if err := base.Err(); err != nil {
		return Compiler{}, &Error{File: "defaults.cue", Message: errors.Details(err, nil)}
	}

	cfgPath := cue.ParsePath("config")
	value := base
	if src != nil {
		user := ctx.CompileBytes(src, cue.Filename(filename))
		if err := user.Err(); err != nil {
			return Compiler{}, &Error{File: filename, Message: errors.Details(err, nil)}
		}
		value = base.FillPath(cfgPath, user)
	}

	cfgVal := value.LookupPath(cfgPath)
	if err := cfgVal.Validate(cue.Concrete(true)); err != nil {
		return Compiler{}, &Error{File: filename, Message: errors.Details(err, nil)}
	}

	raw, err := cfgVal.MarshalJSON()
	if err != nil {
		return Compiler{}, &Error{File: filename, Message: fmt.Sprintf("exporting: %v", err)}
	}
	var c Compiler
	if err := json.Unmarshal(raw, &c); err != nil {
		return Compiler{}, &Error{File: filename, Message: fmt.Sprintf("decoding: %v", err)}
	}
	if err := c.Validate(); err != nil {
		return Compiler{}, &Error{File: filename, Message: err.Error()}
	}
	return c, nil
}

var rePrefixName = regexp.MustCompile(`^(?:[A-Za-z][A-Za-z0-9_\-]*)?$`)

// Validate checks invariants CUE cannot express across fields.
func (c Compiler) Validate() error {
	for name, ns := range c.Prefixes {
		if !rePrefixName.MatchString(name) {
			return fmt.Errorf("invalid prefix name %q", name)
		}
		if ns == "" {
			return fmt.Errorf("prefix %q has an empty namespace", name)
		}
	}
	if c.DatatypePrefix != "" {
		if _, ok := c.Prefixes[c.DatatypePrefix]; !ok {
			return fmt.Errorf("datatypePrefix %q is not in the prefix table", c.DatatypePrefix)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (c Compiler) Clone() Compiler {
	out := c
	out.Prefixes = make(map[string]string, len(c.Prefixes))
	for k, v := range c.Prefixes {
		out.Prefixes[k] = v
	}
	out.StringDatatypes = append([]string(nil), c.StringDatatypes...)
	return out
}

// PrefixNames returns the prefix names in sorted order.
func (c Compiler) PrefixNames() []string {
	names := make([]string, 0, len(c.Prefixes))
	for name := range c.Prefixes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fingerprint is a content hash of the configuration. Compiled queries are
// cached per fingerprint.
func (c Compiler) Fingerprint() string {
	prefixes := make(ir.Object, len(c.Prefixes))
	for k, v := range c.Prefixes {
		prefixes[k] = ir.String(v)
	}
	strs := make(ir.Array, len(c.StringDatatypes))
	for i, s := range c.StringDatatypes {
		strs[i] = ir.String(s)
	}
	obj := ir.Object{
		"prefixes": prefixes,
		"geo": ir.Object{
			"nearbyFunction": ir.String(c.Geo.NearbyFunction),
			"withinFunction": ir.String(c.Geo.WithinFunction),
			"kilometreUnit":  ir.String(c.Geo.KilometreUnit),
			"wktDatatype":    ir.String(c.Geo.WKTDatatype),
		},
		"datatypePrefix":  ir.String(c.DatatypePrefix),
		"defaultDatatype": ir.String(c.DefaultDatatype),
		"stringDatatypes": strs,
	}
	fp, err := ir.Fingerprint(obj)
	if err != nil {
		// Only strings are involved; canonical marshaling cannot fail.
		panic(err)
	}
	return fp
}
