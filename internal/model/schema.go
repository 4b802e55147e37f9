package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidProperty is returned when a value fails its schema.
var ErrInvalidProperty = errors.New("invalid property")

// Property describes one schema key.
type Property struct {
	// Values restricts the property to an enumeration. Empty means free text.
	Values []string `json:"values,omitempty"`

	// Required values may not be empty.
	Required bool `json:"required,omitempty"`
}

// Schema maps property keys of one component type.
type Schema map[string]Property

var schemas = map[string]Schema{
	"window":    {"title": {}},
	"panel":     {"title": {}},
	"button":    {"label": {Required: true}},
	"checkbox":  {"label": {}, "state": {Values: []string{"checked", "unchecked", "mixed"}, Required: true}},
	"radio":     {"label": {}, "state": {Values: []string{"selected", "unselected"}, Required: true}},
	"textfield": {"label": {}, "value": {}},
	"dropdown":  {"label": {}, "value": {}},
	"separator": {},
	"text":      {"text": {Required: true}},
}

// SchemaFor returns the schema of a component type.
func SchemaFor(typ string) (Schema, bool) {
	s, ok := schemas[typ]
	return s, ok
}

// KnownTypes lists the types with a schema, sorted.
func KnownTypes() []string {
	out := make([]string, 0, len(schemas))
	for t := range schemas {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// validate reports whether key belongs to the schema and, if so, whether the
// value is acceptable.
func (s Schema) validate(key, value string) (bool, error) {
	p, ok := s[key]
	if !ok {
		return false, nil
	}
	if p.Required && value == "" {
		return true, fmt.Errorf("%w: %s must not be empty", ErrInvalidProperty, key)
	}
	if len(p.Values) == 0 {
		return true, nil
	}
	for _, v := range p.Values {
		if v == value {
			return true, nil
		}
	}
	return true, fmt.Errorf("%w: %s=%q not in %v", ErrInvalidProperty, key, value, p.Values)
}
