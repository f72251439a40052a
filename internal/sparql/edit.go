package sparql

// Add appends patterns to the group.
func (g *Group) Add(patterns ...Pattern) {
	g.Patterns = append(g.Patterns, patterns...)
}

// InsertAfter inserts p right after index i. An index outside the group
// appends p at the end.
func (g *Group) InsertAfter(i int, p Pattern) {
	if i < 0 || i >= len(g.Patterns) {
		g.Patterns = append(g.Patterns, p)
		return
	}
	g.Patterns = append(g.Patterns, nil)
	copy(g.Patterns[i+2:], g.Patterns[i+1:])
	g.Patterns[i+1] = p
}

// Index returns the index of the first direct child matching fn, or -1.
func (g *Group) Index(fn func(Pattern) bool) int {
	for i, p := range g.Patterns {
		if fn(p) {
			return i
		}
	}
	return -1
}

// Empty reports whether the group has no patterns.
func (g *Group) Empty() bool {
	return g == nil || len(g.Patterns) == 0
}

// Binds reports whether p binds variable v as the object of a triple,
// directly or inside an OPTIONAL.
func Binds(p Pattern, v string) bool {
	switch node := p.(type) {
	case *Triple:
		return node.Object == v
	case *Optional:
		if node.Group == nil {
			return false
		}
		for _, child := range node.Group.Patterns {
			if Binds(child, v) {
				return true
			}
		}
	}
	return false
}

// FindGroup returns the first group labelled label in depth-first order,
// searching nested groups, optionals, union branches and sub-selects.
func (q *Query) FindGroup(label string) *Group {
	if q == nil {
		return nil
	}
	return findGroup(q.Where, label)
}

func findGroup(g *Group, label string) *Group {
	if g == nil {
		return nil
	}
	if g.Label == label {
		return g
	}
	for _, p := range g.Patterns {
		var found *Group
		switch node := p.(type) {
		case *Group:
			found = findGroup(node, label)
		case *Optional:
			found = findGroup(node.Group, label)
		case *Union:
			for _, b := range node.Branches {
				if found = findGroup(b, label); found != nil {
					break
				}
			}
		case *SubSelect:
			found = node.Query.FindGroup(label)
		}
		if found != nil {
			return found
		}
	}
	return nil
}

// AddProjection appends p unless a projection with the same variable
// already exists. It reports whether p was added.
func (q *Query) AddProjection(p Projection) bool {
	if q.HasProjection(p.Var) {
		return false
	}
	q.Projection = append(q.Projection, p)
	return true
}

// HasProjection reports whether v is projected.
func (q *Query) HasProjection(v string) bool {
	for _, existing := range q.Projection {
		if existing.Var == v {
			return true
		}
	}
	return false
}

// ProjectedVars returns the projected variable names in order.
func (q *Query) ProjectedVars() []string {
	vars := make([]string, 0, len(q.Projection))
	for _, p := range q.Projection {
		vars = append(vars, p.Var)
	}
	return vars
}

// Vars returns every variable bound by triple patterns of the group,
// recursively, in first-seen order.
func (g *Group) Vars() []string {
	seen := map[string]bool{}
	var out []string
	var walk func(*Group)
	add := func(s string) {
		if IsVariable(s) && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	walk = func(g *Group) {
		if g == nil {
			return
		}
		for _, p := range g.Patterns {
			switch node := p.(type) {
			case *Triple:
				add(node.Subject)
				add(node.Predicate)
				add(node.Object)
			case *Bind:
				add(node.Var)
			case *Group:
				walk(node)
			case *Optional:
				walk(node.Group)
			case *Union:
				for _, b := range node.Branches {
					walk(b)
				}
			case *SubSelect:
				if node.Query == nil {
					continue
				}
				for _, v := range node.Query.ProjectedVars() {
					add(v)
				}
			}
		}
	}
	walk(g)
	return out
}

// IsVariable reports whether s looks like a SPARQL variable.
func IsVariable(s string) bool {
	return len(s) > 1 && (s[0] == '?' || s[0] == '$')
}

// IsURI reports whether s is an IRI in angle brackets.
func IsURI(s string) bool {
	return len(s) > 2 && s[0] == '<' && s[len(s)-1] == '>'
}

// VariableName strips the leading ? or $, or returns "" for non-variables.
func VariableName(s string) string {
	if IsVariable(s) {
		return s[1:]
	}
	return ""
}
