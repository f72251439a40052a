package sparql

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const indentUnit = "  "

// Serializer renders a Query as SPARQL text.
//
// Output is deterministic: PREFIX lines for every table prefix the body
// uses, sorted by name, then a blank line, then the query. Nested patterns
// are indented by two spaces per level. There is no trailing newline.
type Serializer struct {
	// Prefixes maps prefix name to namespace IRI. Prefixes the body never
	// uses are not declared.
	Prefixes map[string]string
}

// NewSerializer creates a Serializer over a prefix table.
func NewSerializer(prefixes map[string]string) *Serializer {
	return &Serializer{Prefixes: prefixes}
}

// Serialize renders q.
func (s *Serializer) Serialize(q *Query) (string, error) {
	if q == nil {
		return "", fmt.Errorf("cannot serialize nil query")
	}

	var body strings.Builder
	if err := writeQuery(&body, q, 0); err != nil {
		return "", err
	}

	used := UsedPrefixes(body.String())
	var out strings.Builder
	declared := 0
	for _, name := range used {
		ns, ok := s.Prefixes[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&out, "PREFIX %s: <%s>\n", name, ns)
		declared++
	}
	if declared > 0 {
		out.WriteString("\n")
	}
	out.WriteString(body.String())
	return out.String(), nil
}

func writeLine(b *strings.Builder, depth int, text string) {
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteString(text)
}

func writeQuery(b *strings.Builder, q *Query, depth int) error {
	writeLine(b, depth, selectClause(q))
	writeLine(b, depth, "WHERE {")
	if q.Where != nil {
		if err := writePatterns(b, q.Where.Patterns, depth+1); err != nil {
			return err
		}
	}
	writeLine(b, depth, "}")

	if len(q.GroupBy) > 0 {
		writeLine(b, depth, "GROUP BY "+strings.Join(q.GroupBy, " "))
	}
	if len(q.OrderBy) > 0 {
		keys := make([]string, 0, len(q.OrderBy))
		for _, oc := range q.OrderBy {
			dir := "ASC"
			if oc.Descending {
				dir = "DESC"
			}
			keys = append(keys, dir+"("+oc.Expr+")")
		}
		writeLine(b, depth, "ORDER BY "+strings.Join(keys, " "))
	}
	if q.Limit > 0 {
		writeLine(b, depth, "LIMIT "+strconv.Itoa(q.Limit))
	}
	return nil
}

func selectClause(q *Query) string {
	var sb strings.Builder
	sb.WriteString("SELECT")
	if q.Distinct {
		sb.WriteString(" DISTINCT")
	}
	if len(q.Projection) == 0 {
		sb.WriteString(" *")
		return sb.String()
	}
	for _, p := range q.Projection {
		sb.WriteString(" ")
		if p.Expr == "" {
			sb.WriteString(p.Var)
		} else {
			sb.WriteString("(" + p.Expr + " AS " + p.Var + ")")
		}
	}
	return sb.String()
}

func writePatterns(b *strings.Builder, patterns []Pattern, depth int) error {
	for _, p := range patterns {
		if err := writePattern(b, p, depth); err != nil {
			return err
		}
	}
	return nil
}

func writePattern(b *strings.Builder, p Pattern, depth int) error {
	switch node := p.(type) {
	case *Triple:
		writeLine(b, depth, node.Subject+" "+node.Predicate+" "+node.Object+" .")
	case *Filter:
		writeLine(b, depth, "FILTER("+node.Expr+")")
	case *Bind:
		writeLine(b, depth, "BIND("+node.Expr+" AS "+node.Var+")")
	case *Optional:
		writeLine(b, depth, "OPTIONAL {")
		if node.Group != nil {
			if err := writePatterns(b, node.Group.Patterns, depth+1); err != nil {
				return err
			}
		}
		writeLine(b, depth, "}")
	case *Group:
		return writeBlock(b, node, depth)
	case *Union:
		for i, branch := range node.Branches {
			if i > 0 {
				writeLine(b, depth, "UNION")
			}
			if err := writeBlock(b, branch, depth); err != nil {
				return err
			}
		}
	case *SubSelect:
		if node.Query == nil {
			return fmt.Errorf("sub-select without query")
		}
		writeLine(b, depth, "{")
		if err := writeQuery(b, node.Query, depth+1); err != nil {
			return err
		}
		writeLine(b, depth, "}")
	case nil:
		return fmt.Errorf("nil pattern")
	default:
		return fmt.Errorf("unsupported pattern type: %T", p)
	}
	return nil
}

func writeBlock(b *strings.Builder, g *Group, depth int) error {
	writeLine(b, depth, "{")
	if g != nil {
		if err := writePatterns(b, g.Patterns, depth+1); err != nil {
			return err
		}
	}
	writeLine(b, depth, "}")
	return nil
}

var (
	reIRIRef    = regexp.MustCompile(`<[^<>\s]*>`)
	reQuoted    = regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`)
	rePNameHead = regexp.MustCompile(`(?:^|[^\w\-?$.:])((?:[A-Za-z][\w\-]*)?):[A-Za-z0-9_]`)
)

// UsedPrefixes returns the sorted, distinct prefix names referenced by
// prefixed names in text. IRIs and string literals are ignored.
func UsedPrefixes(text string) []string {
	stripped := reQuoted.ReplaceAllString(text, " ")
	stripped = reIRIRef.ReplaceAllString(stripped, " ")

	seen := map[string]bool{}
	for _, m := range rePNameHead.FindAllStringSubmatch(stripped, -1) {
		seen[m[1]] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
