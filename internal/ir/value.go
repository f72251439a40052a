package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"
)

// Value is a sealed interface over the JSON values of a request document.
// Only Null, String, Number, Bool, Array and Object implement it.
type Value interface {
	irValue()
}

// Null is a JSON null.
type Null struct{}

func (Null) irValue() {}

// String is a JSON string.
type String string

func (String) irValue() {}

// Number is a JSON number kept as its source text.
// Canonicalization normalizes the text; the compiler never does arithmetic on it.
type Number string

func (Number) irValue() {}

// Bool is a JSON boolean.
type Bool bool

func (Bool) irValue() {}

// Array is a JSON array.
type Array []Value

func (Array) irValue() {}

// Object is a JSON object. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) irValue() {}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 orders by UTF-16 code units. Go's string comparison
// orders by UTF-8 bytes, which differs for characters above U+FFFF.
func compareKeysRFC8785(a, b string) int {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	return slices.Compare(ua, ub)
}

// ParseValue decodes a JSON document into a Value tree.
// Numbers are preserved as text; duplicate keys keep the last value.
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return fromAny(raw)
}

func fromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case string:
		return String(val), nil
	case json.Number:
		return Number(val.String()), nil
	case bool:
		return Bool(val), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			e, err := fromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = e
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			e, err := fromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = e
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported JSON type: %T", v)
	}
}

// Text returns a scalar value as plain text: strings unquoted, numbers as
// their source text, booleans as true/false and null as "".
// Arrays and objects return false.
func Text(v Value) (string, bool) {
	switch val := v.(type) {
	case String:
		return string(val), true
	case Number:
		return string(val), true
	case Bool:
		if val {
			return "true", true
		}
		return "false", true
	case Null:
		return "", true
	default:
		return "", false
	}
}

// Describe names the JSON kind of v for error messages.
func Describe(v Value) string {
	switch v.(type) {
	case Null:
		return "null"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "boolean"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return strings.ToLower(fmt.Sprintf("%T", v))
	}
}
