package expr

import (
	"regexp"
	"strings"
)

// Shared lexical pieces. All grammars are anchored by the matchers below.
const (
	varPat    = `[?$][A-Za-z_][A-Za-z0-9_]*`
	iriPat    = `<[^<>"{}|^` + "`" + `\\\s]*>`
	pnamePat  = `(?:[A-Za-z][\w\-]*)?:[A-Za-z0-9_](?:[\w\-.]*[\w\-])?`
	numberPat = `[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`
	stringPat = `(?:"(?:[^"\\\n\r]|\\.)*"|'(?:[^'\\\n\r]|\\.)*')`
	langPat   = `@[A-Za-z]+(?:-[A-Za-z0-9]+)*`
	typedPat  = `\^\^(?:` + iriPat + `|` + pnamePat + `)`
	literal   = `(?:` + stringPat + `(?:` + langPat + `|` + typedPat + `)?|` + numberPat + `|true|false)`
	pathElt   = `\^?(?:` + iriPat + `|` + pnamePat + `|a)[*+?]?`
	compOp    = `(?:<=|>=|!=|=|<|>)`

	wktIRI = `(?:geo:wktLiteral|<http://www\.opengis\.net/ont/geosparql#wktLiteral>)`
)

var (
	reVariable = regexp.MustCompile(`^` + varPat + `$`)
	reIRI      = regexp.MustCompile(`^` + iriPat + `$`)
	rePrefix   = regexp.MustCompile(`^(?:[A-Za-z][\w\-]*)?:$`)
	rePName    = regexp.MustCompile(`^` + pnamePat + `$`)
	reLiteral  = regexp.MustCompile(`^` + literal + `$`)
	rePath     = regexp.MustCompile(`^` + pathElt + `(?:\s*[/|]\s*` + pathElt + `)*$`)

	reFunctionHead = regexp.MustCompile(`^!?[A-Za-z_][\w:]*\s*\(`)
	reAssignment   = regexp.MustCompile(`(?is)^\(\s*(.+?)\s+AS\s+(` + varPat + `)\s*\)$`)

	reTuple = regexp.MustCompile(`^\(\s*` + numberPat + `\s+` + numberPat + `\s+` + numberPat +
		`\s+(?:` + iriPat + `|` + pnamePat + `)\s*\)$`)

	reWKT = regexp.MustCompile(`^"POLYGON\s*\(\(\s*` + numberPat + `\s+` + numberPat +
		`(?:\s*,\s*` + numberPat + `\s+` + numberPat + `)*\s*\)\)"\^\^` + wktIRI + `$`)

	reComparison = regexp.MustCompile(`^(` + varPat + `)\s*(` + compOp + `)\s*(.+)$`)

	reStringLiteral = regexp.MustCompile(stringPat)
)

func isVariable(s string) bool { return reVariable.MatchString(s) }
func isIRI(s string) bool      { return reIRI.MatchString(s) }
func isPrefix(s string) bool   { return rePrefix.MatchString(s) }
func isPName(s string) bool    { return rePName.MatchString(s) }
func isLiteral(s string) bool  { return reLiteral.MatchString(s) }
func isTuple(s string) bool    { return reTuple.MatchString(s) }
func isWKT(s string) bool      { return reWKT.MatchString(s) }

// isPath accepts a property path made of IRIs or prefixed names joined by
// "/" or "|", each optionally inverted with "^" or suffixed with *, + or ?.
// A lone IRI or prefixed name is not a path.
func isPath(s string) bool {
	if isIRI(s) || isPName(s) {
		return false
	}
	return rePath.MatchString(s)
}

// isFunction accepts name(args) and !name(args). After string literals are
// blanked out, parentheses must balance and the first "(" must close at
// the final character.
func isFunction(s string) bool {
	if !reFunctionHead.MatchString(s) || !strings.HasSuffix(s, ")") {
		return false
	}
	stripped := reStringLiteral.ReplaceAllString(s, "_")
	if strings.ContainsAny(stripped, `"'`) {
		return false
	}
	open := strings.IndexByte(stripped, '(')
	depth := 0
	for i := open; i < len(stripped); i++ {
		switch stripped[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(stripped)-1 {
				return false
			}
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// isAssignment accepts (FUNC(...) AS ?var).
func isAssignment(s string) bool {
	m := reAssignment.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	return isFunction(strings.TrimSpace(m[1]))
}

// isComparison accepts ?var op operand where operand is a native literal,
// a variable, an IRI or a prefixed name.
func isComparison(s string) bool {
	m := reComparison.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	rhs := strings.TrimSpace(m[3])
	return isLiteral(rhs) || isVariable(rhs) || isIRI(rhs) || isPName(rhs)
}

// isNestedComparison accepts comparisons (or function calls) combined with
// top-level && and ||, optionally wrapped in parentheses at any depth. A
// bare comparison without an operator or parentheses is not nested.
func isNestedComparison(s string) bool {
	inner, wrapped := unwrap(s)
	parts, ok := splitBoolean(inner)
	if !ok {
		return false
	}
	if len(parts) == 1 && !wrapped {
		return false
	}
	for _, p := range parts {
		if !isBooleanAtom(p) {
			return false
		}
	}
	return true
}

func isBooleanAtom(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if isComparison(s) || isFunction(s) {
		return true
	}
	return isNestedComparison(s)
}

// unwrap strips parentheses that enclose the whole expression.
func unwrap(s string) (string, bool) {
	s = strings.TrimSpace(s)
	wrapped := false
	for strings.HasPrefix(s, "(") && closingParen(s, 0) == len(s)-1 {
		s = strings.TrimSpace(s[1 : len(s)-1])
		wrapped = true
	}
	return s, wrapped
}

// closingParen returns the index of the parenthesis closing the one at
// open, skipping quoted text, or -1.
func closingParen(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitBoolean splits on && and || at parenthesis depth zero, outside
// quotes. It fails on unbalanced input.
func splitBoolean(s string) ([]string, bool) {
	var parts []string
	depth := 0
	start := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, false
			}
		case '&', '|':
			if depth == 0 && i+1 < len(s) && s[i+1] == c {
				parts = append(parts, s[start:i])
				start = i + 2
				i++
			}
		}
	}
	if depth != 0 || quote != 0 {
		return nil, false
	}
	return append(parts, s[start:]), true
}
