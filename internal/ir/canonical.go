package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 style canonical JSON for a Value tree.
// It is the only serialization used for request identity.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings and keys are NFC normalized
//  4. Numbers are normalized decimal text (1.50 and 1.5 are equal, 1e3 is 1000)
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case String:
		return writeCanonicalString(buf, string(val))
	case Number:
		n, err := canonicalNumber(string(val))
		if err != nil {
			return err
		}
		buf.WriteString(n)
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// writeCanonicalString escapes only control characters, backslash and quote.
// U+2028 and U+2029 are written literally.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	out := strings.TrimSuffix(tmp.String(), "\n")
	out = unescapeLineSeparators(out)
	buf.WriteString(out)
	return nil
}

// unescapeLineSeparators turns \u2028 and \u2029 escapes back into literal runes,
// leaving an escaped backslash followed by "u2028" untouched.
func unescapeLineSeparators(s string) string {
	if !strings.Contains(s, `\u202`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	backslashes := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && backslashes%2 == 0 && strings.HasPrefix(s[i:], `\u2028`) {
			b.WriteString("\u2028")
			i += 5
			backslashes = 0
			continue
		}
		if s[i] == '\\' && backslashes%2 == 0 && strings.HasPrefix(s[i:], `\u2029`) {
			b.WriteString("\u2029")
			i += 5
			backslashes = 0
			continue
		}
		if s[i] == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// canonicalNumber normalizes a JSON number's text using exact rational
// arithmetic so the result never depends on float rounding.
func canonicalNumber(text string) (string, error) {
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return "", fmt.Errorf("invalid number %q", text)
	}
	if r.IsInt() {
		return r.Num().String(), nil
	}
	// Terminating decimals only; JSON numbers always terminate.
	s := r.FloatString(64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, "."), nil
}
