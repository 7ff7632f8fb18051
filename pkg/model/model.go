package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidModel is returned when a model violates a schema invariant.
var ErrInvalidModel = errors.New("invalid model")

// Constraints holds per-field generation options such as "min" and "max".
// Their meaning depends on the field's semantic type.
type Constraints map[string]any

// FieldSpec declares one named, typed column.
type FieldSpec struct {
	Name           string         `yaml:"name" json:"name"`
	Description    string         `yaml:"description,omitempty" json:"description,omitempty"`
	Type           SemanticType   `yaml:"type" json:"type"`
	AvailableTypes []SemanticType `yaml:"available_types,omitempty" json:"available_types,omitempty"`
	Constraints    Constraints    `yaml:"options,omitempty" json:"options,omitempty"`
}

// ModelSpec is an ordered collection of fields describing one dataset shape.
type ModelSpec struct {
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description" json:"description"`
	Category    string      `yaml:"category,omitempty" json:"category,omitempty"`
	Fields      []FieldSpec `yaml:"fields" json:"fields"`
}

// FieldNames returns the field names in model order.
func (m ModelSpec) FieldNames() []string {
	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up a field by name.
func (m ModelSpec) Field(name string) (FieldSpec, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Allows reports whether t is one of the field's available types.
func (f FieldSpec) Allows(t SemanticType) bool {
	for _, at := range f.AvailableTypes {
		if at == t {
			return true
		}
	}
	return false
}

// Validate checks the field-level invariants: a non-empty name and a
// semantic type contained in the available types.
func (f FieldSpec) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: field name is required", ErrInvalidModel)
	}
	if len(f.AvailableTypes) == 0 {
		return fmt.Errorf("%w: field '%s' has no available types", ErrInvalidModel, f.Name)
	}
	if !f.Allows(f.Type) {
		return fmt.Errorf("%w: field '%s' type '%s' is not one of its available types", ErrInvalidModel, f.Name, f.Type)
	}
	return nil
}

// Validate checks the model-level invariants.
func (m ModelSpec) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: model name is required", ErrInvalidModel)
	}
	seen := make(map[string]struct{}, len(m.Fields))
	for _, f := range m.Fields {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("model '%s': %w", m.Name, err)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: model '%s' has duplicate field '%s'", ErrInvalidModel, m.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// WithFieldTypes returns a copy of the model where the named fields are
// rendered as a different semantic type. Each override must be one of the
// field's available types.
func (m ModelSpec) WithFieldTypes(overrides map[string]SemanticType) (ModelSpec, error) {
	out := m.clone()
	for name, t := range overrides {
		idx := out.indexOf(name)
		if idx < 0 {
			return ModelSpec{}, fmt.Errorf("%w: model '%s' has no field '%s'", ErrInvalidModel, m.Name, name)
		}
		if !out.Fields[idx].Allows(t) {
			return ModelSpec{}, fmt.Errorf("%w: field '%s' cannot be rendered as '%s'", ErrInvalidModel, name, t)
		}
		out.Fields[idx].Type = t
	}
	return out, nil
}

// Select returns a copy of the model restricted to the named fields, in model order.
func (m ModelSpec) Select(names []string) (ModelSpec, error) {
	if len(names) == 0 {
		return m.clone(), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if m.indexOf(n) < 0 {
			return ModelSpec{}, fmt.Errorf("%w: model '%s' has no field '%s'", ErrInvalidModel, m.Name, n)
		}
		want[n] = true
	}
	src := m.clone()
	out := src
	out.Fields = make([]FieldSpec, 0, len(want))
	for _, f := range src.Fields {
		if want[f.Name] {
			out.Fields = append(out.Fields, f)
		}
	}
	return out, nil
}

func (m ModelSpec) indexOf(name string) int {
	for i, f := range m.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (m ModelSpec) clone() ModelSpec {
	out := m
	out.Fields = make([]FieldSpec, len(m.Fields))
	for i, f := range m.Fields {
		f.AvailableTypes = append([]SemanticType(nil), f.AvailableTypes...)
		if f.Constraints != nil {
			c := make(Constraints, len(f.Constraints))
			for k, v := range f.Constraints {
				c[k] = v
			}
			f.Constraints = c
		}
		out.Fields[i] = f
	}
	return out
}

// Has reports whether the option is set.
func (c Constraints) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Float returns a numeric option, or def when it is absent.
func (c Constraints) Float(key string, def float64) (float64, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case interface{ Float64() (float64, error) }:
		return n.Float64()
	default:
		return 0, fmt.Errorf("option '%s' must be numeric, got %T", key, v)
	}
}

// Int returns an integer option, or def when it is absent. Fractional
// values are truncated toward zero.
func (c Constraints) Int(key string, def int64) (int64, error) {
	f, err := c.Float(key, float64(def))
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// Strings returns a list option.
func (c Constraints) Strings(key string) ([]string, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			out[i] = fmt.Sprint(item)
		}
		return out, nil
	case string:
		parts := strings.Split(list, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	default:
		return nil, fmt.Errorf("option '%s' must be a list, got %T", key, v)
	}
}

// String returns a string option, or def when it is absent.
func (c Constraints) String(key, def string) (string, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("option '%s' must be a string, got %T", key, v)
	}
	return s, nil
}

// Time returns a time option given as time.Time, an RFC 3339 timestamp or
// a YYYY-MM-DD date. The result is in UTC.
func (c Constraints) Time(key string, def time.Time) (time.Time, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		for _, layout := range []string{time.RFC3339, time.DateTime, time.DateOnly} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("option '%s' has unrecognized time %q", key, t)
	default:
		return time.Time{}, fmt.Errorf("option '%s' must be a date, got %T", key, v)
	}
}
