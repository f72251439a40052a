package compiler

import "strings"

// ResolveDatatype maps a datatype IRI to prefix:localName. The local name
// follows the last '#' when it comes after the last '/', else the last '/'.
// The mapping is lexical; no vocabulary is consulted. An empty prefix
// means "xsd". Values that are already prefixed names are returned as is.
func ResolveDatatype(uri, prefix string) string {
	uri = strings.TrimSpace(uri)
	uri = strings.TrimSuffix(strings.TrimPrefix(uri, "<"), ">")
	if uri == "" {
		return ""
	}
	if prefix == "" {
		prefix = "xsd"
	}
	if !strings.Contains(uri, "/") && !strings.Contains(uri, "#") && strings.Contains(uri, ":") {
		return uri
	}

	slash := strings.LastIndex(uri, "/")
	hash := strings.LastIndex(uri, "#")
	local := uri[slash+1:]
	if hash > slash {
		local = uri[hash+1:]
	}
	return prefix + ":" + local
}

// localName returns the part of a prefixed name after the colon.
func localName(pname string) string {
	if i := strings.LastIndex(pname, ":"); i >= 0 {
		return pname[i+1:]
	}
	return pname
}
