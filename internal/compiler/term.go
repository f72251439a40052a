package compiler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/sparqlc/internal/sparql"
)

var reBareURL = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*://[^\s<>"{}|\\^` + "`" + `]+$`)

// entity renders a request token as a SPARQL term: bare URLs are wrapped
// in angle brackets, everything else is left untouched.
func entity(token string) string {
	token = strings.TrimSpace(token)
	if reBareURL.MatchString(token) {
		return "<" + token + ">"
	}
	return token
}

// variable normalizes a predicateName to a variable, adding the leading
// '?' when the request omitted it.
func variable(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || sparql.IsVariable(name) {
		return name
	}
	return "?" + name
}

// iriRef renders a configured IRI: full IRIs in angle brackets, prefixed
// names as is.
func iriRef(iri string) string {
	iri = strings.TrimSpace(iri)
	if strings.HasPrefix(iri, "<") || !strings.Contains(iri, "://") {
		return iri
	}
	return "<" + iri + ">"
}

// expandIRI turns a token into a full IRI for comparisons: angle brackets
// are stripped and prefixed names are expanded with the prefix table.
func expandIRI(token string, prefixes map[string]string) string {
	token = strings.TrimSpace(token)
	if sparql.IsURI(token) {
		return token[1 : len(token)-1]
	}
	if strings.Contains(token, "://") {
		return token
	}
	if i := strings.Index(token, ":"); i >= 0 {
		if ns, ok := prefixes[token[:i]]; ok {
			return ns + token[i+1:]
		}
	}
	return token
}

// quote renders s as a SPARQL double-quoted string.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// typedLiteral renders "value"^^datatype.
func typedLiteral(value, datatype string) string {
	return quote(value) + "^^" + iriRef(datatype)
}

// formatFloat renders f with the fewest digits that round-trip.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// upperFirst upper-cases the first rune of s.
func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func specPath(key string, j int) string {
	return fmt.Sprintf("filters[%q][%d]", key, j)
}

func clausePath(key string, j, k int) string {
	return fmt.Sprintf("filters[%q][%d].filters[%d]", key, j, k)
}
