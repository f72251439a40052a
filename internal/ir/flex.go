package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FlexInt decodes from a JSON number, a numeric string, or null.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	text, err := scalarText(data)
	if err != nil {
		return fmt.Errorf("integer: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		*f = 0
		return nil
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		*f = FlexInt(n)
		return nil
	}
	// "10.0" is accepted when it is integral.
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || v != float64(int64(v)) {
		return fmt.Errorf("integer: invalid value %q", text)
	}
	*f = FlexInt(int64(v))
	return nil
}

// FlexFloat decodes from a JSON number, a numeric string, or null.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	text, err := scalarText(data)
	if err != nil {
		return fmt.Errorf("number: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("number: invalid value %q", text)
	}
	*f = FlexFloat(v)
	return nil
}

// FlexString decodes from any JSON scalar. Numbers keep their source text.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	text, err := scalarText(data)
	if err != nil {
		return fmt.Errorf("string: %w", err)
	}
	*f = FlexString(text)
	return nil
}

func scalarText(data []byte) (string, error) {
	v, err := ParseValue(data)
	if err != nil {
		return "", err
	}
	text, ok := Text(v)
	if !ok {
		return "", fmt.Errorf("expected scalar, got %s", Describe(v))
	}
	return text, nil
}

// LatLng is a WGS84 coordinate. It decodes from {"lat":..,"lng":..}
// ("lon" is accepted for "lng") or from a [lat, lng] pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *LatLng) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var pair []FlexFloat
		if err := json.Unmarshal(trimmed, &pair); err != nil {
			return fmt.Errorf("coordinate: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("coordinate: expected [lat, lng], got %d values", len(pair))
		}
		p.Lat, p.Lng = float64(pair[0]), float64(pair[1])
		return nil
	}

	var obj struct {
		Lat *FlexFloat `json:"lat"`
		Lng *FlexFloat `json:"lng"`
		Lon *FlexFloat `json:"lon"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	if obj.Lng == nil {
		obj.Lng = obj.Lon
	}
	if obj.Lat == nil || obj.Lng == nil {
		return fmt.Errorf("coordinate: lat and lng are required")
	}
	p.Lat, p.Lng = float64(*obj.Lat), float64(*obj.Lng)
	return nil
}

// LatLngList is a polygon ring. Map widgets often nest the ring one level
// deep ([[p1, p2, ...]]); only the outer ring is kept.
type LatLngList []LatLng

// UnmarshalJSON implements json.Unmarshaler.
func (l *LatLngList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("latLngs: %w", err)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}

	// Nested ring: the first element is itself a list of coordinates.
	first := bytes.TrimSpace(raw[0])
	if first[0] == '[' {
		inner := bytes.TrimSpace(first[1:])
		if len(inner) > 0 && (inner[0] == '{' || inner[0] == '[') {
			var ring []LatLng
			if err := json.Unmarshal(first, &ring); err != nil {
				return fmt.Errorf("latLngs[0]: %w", err)
			}
			*l = ring
			return nil
		}
	}

	out := make(LatLngList, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &out[i]); err != nil {
			return fmt.Errorf("latLngs[%d]: %w", i, err)
		}
	}
	*l = out
	return nil
}

// FilterSpecs is the list of filter specs attached to one observable key.
// It decodes from a JSON array or from an object whose values are specs;
// object entries are taken in sorted key order.
type FilterSpecs []FilterSpec

// UnmarshalJSON implements json.Unmarshaler.
func (s *FilterSpecs) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*s = nil
		return nil
	case trimmed[0] == '[':
		var list []FilterSpec
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*s = list
		return nil
	case trimmed[0] == '{':
		var byName map[string]FilterSpec
		if err := json.Unmarshal(trimmed, &byName); err != nil {
			return err
		}
		names := make([]string, 0, len(byName))
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)
		list := make([]FilterSpec, 0, len(names))
		for _, name := range names {
			list = append(list, byName[name])
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("filter specs: expected array or object")
	}
}

// FilterMap maps an observable key (the subject, predicate or object value
// named by observablesKeys) to its filter specs.
type FilterMap map[string]FilterSpecs

// Keys returns the map keys in sorted order.
func (m FilterMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
