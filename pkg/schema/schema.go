// Package schema composes and validates per-type property schemas for
// metascore components. A type's schema is the ordered merge of the abstract
// component base, zero or more reusable capability fragments, and the type's
// own declarations, which may override fragment defaults.
package schema

import (
	"fmt"
	"sort"

	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

// Kind enumerates property value kinds.
type Kind string

// Property value kinds understood by the validator.
const (
	KindString  Kind = "string"
	KindBoolean Kind = "boolean"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindColor   Kind = "color"
	KindVector  Kind = "vector"
	KindEnum    Kind = "enum"
	KindTime    Kind = "time"
	KindRefList Kind = "reflist"
	KindList    Kind = "list"
)

// Property describes a single schema property: kind, default, nullability,
// numeric bounds, enumerations, and whether the value may be time-keyed.
type Property struct {
	Kind     Kind
	Default  any
	Nullable bool
	// Animated properties additionally accept {"animated": bool,
	// "value"|"keyframes": ...} envelopes.
	Animated bool
	Min, Max *float64
	Values   []string
}

func (p Property) clone() Property {
	cp := p
	cp.Default = domain.CloneValue(p.Default)
	if p.Min != nil {
		v := *p.Min
		cp.Min = &v
	}
	if p.Max != nil {
		v := *p.Max
		cp.Max = &v
	}
	cp.Values = append([]string(nil), p.Values...)
	return cp
}

// Conditional contributes extra properties when a discriminating property
// holds a given value, such as a Cursor's linear vs circular form.
type Conditional struct {
	Property   string
	Equals     any
	Properties map[string]Property
}

// Schema is the merged, deterministic description of every property of a
// component type.
type Schema struct {
	Type             domain.EntityType
	Properties       map[string]Property
	ChildrenProperty string
	Conditionals     []Conditional
	// AssetDefaultsProp names the property holding an asset URL whose
	// content seeds externally-derived defaults ("" = none).
	AssetDefaultsProp string
}

// Clone deep-copies the schema so callers cannot drift shared state.
func (s Schema) Clone() Schema {
	cp := s
	cp.Properties = cloneProperties(s.Properties)
	cp.Conditionals = make([]Conditional, len(s.Conditionals))
	for i, c := range s.Conditionals {
		cp.Conditionals[i] = Conditional{
			Property:   c.Property,
			Equals:     c.Equals,
			Properties: cloneProperties(c.Properties),
		}
	}
	return cp
}

func cloneProperties(in map[string]Property) map[string]Property {
	out := make(map[string]Property, len(in))
	for k, v := range in {
		out[k] = v.clone()
	}
	return out
}

// EffectiveProperties resolves conditionals against the given values and
// returns the full property set in effect.
func (s Schema) EffectiveProperties(props map[string]any) map[string]Property {
	out := cloneProperties(s.Properties)
	for _, c := range s.Conditionals {
		if props[c.Property] == c.Equals {
			for k, v := range c.Properties {
				out[k] = v.clone()
			}
		}
	}
	return out
}

// PropertyNames returns the effective property names in sorted order.
func (s Schema) PropertyNames(props map[string]any) []string {
	eff := s.EffectiveProperties(props)
	names := make([]string, 0, len(eff))
	for k := range eff {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ApplyDefaults fills omitted properties with schema defaults and returns the
// completed, canonicalized property set. The input is not mutated.
func (s Schema) ApplyDefaults(props map[string]any) map[string]any {
	out := domain.CloneProps(props)
	if out == nil {
		out = map[string]any{}
	}
	// Two passes: the discriminating values must land before conditionals
	// can contribute their defaults.
	for name, p := range s.Properties {
		if _, ok := out[name]; !ok {
			out[name] = domain.CloneValue(p.Default)
		}
	}
	for name, p := range s.EffectiveProperties(out) {
		if _, ok := out[name]; !ok {
			out[name] = domain.CloneValue(p.Default)
		}
	}
	for name, p := range s.EffectiveProperties(out) {
		out[name] = canonicalize(p, out[name])
	}
	return out
}

// Validate checks a full candidate property set against the schema. It never
// panics on ordinary constraint violations; it returns a structured list so
// callers can decide to reject or log.
func (s Schema) Validate(props map[string]any) []domain.FieldError {
	var errs []domain.FieldError
	eff := s.EffectiveProperties(props)

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p, ok := eff[name]
		if !ok {
			errs = append(errs, domain.FieldError{
				Path:       name,
				Constraint: "unknown",
				Message:    fmt.Sprintf("property %q is not declared for %s", name, s.Type),
			})
			continue
		}
		if fe, ok := checkValue(name, p, props[name]); !ok {
			errs = append(errs, fe)
		}
	}
	for name, p := range eff {
		if _, ok := props[name]; ok {
			continue
		}
		if !p.Nullable && p.Default == nil && p.Kind != KindTime {
			errs = append(errs, domain.FieldError{
				Path:       name,
				Constraint: "required",
				Message:    fmt.Sprintf("property %q is required", name),
			})
		}
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Path < errs[j].Path })
	return errs
}

func checkValue(name string, p Property, v any) (domain.FieldError, bool) {
	if v == nil {
		if p.Nullable || p.Kind == KindTime {
			return domain.FieldError{}, true
		}
		return domain.FieldError{
			Path:       name,
			Constraint: "nullable",
			Message:    fmt.Sprintf("property %q may not be null", name),
		}, false
	}
	if p.Animated {
		if env, ok := v.(map[string]any); ok {
			if _, has := env["animated"]; has {
				return domain.FieldError{}, true
			}
		}
	}
	switch p.Kind {
	case KindString, KindColor:
		if _, ok := v.(string); !ok {
			return typeError(name, "string", v), false
		}
	case KindBoolean:
		if _, ok := v.(bool); !ok {
			return typeError(name, "boolean", v), false
		}
	case KindNumber, KindTime:
		f, ok := numeric(v)
		if !ok {
			return typeError(name, "number", v), false
		}
		if fe, ok := checkBounds(name, p, f); !ok {
			return fe, false
		}
	case KindInteger:
		f, ok := numeric(v)
		if !ok || f != float64(int64(f)) {
			return typeError(name, "integer", v), false
		}
		if fe, ok := checkBounds(name, p, f); !ok {
			return fe, false
		}
	case KindVector:
		if _, ok := vector2(v); !ok {
			return typeError(name, "vector of two numbers", v), false
		}
	case KindEnum:
		sv, ok := v.(string)
		if !ok {
			return typeError(name, "string", v), false
		}
		for _, allowed := range p.Values {
			if sv == allowed {
				return domain.FieldError{}, true
			}
		}
		return domain.FieldError{
			Path:       name,
			Constraint: "enum",
			Message:    fmt.Sprintf("property %q must be one of %v", name, p.Values),
		}, false
	case KindRefList:
		if domain.RefList(v) == nil {
			return typeError(name, "list of {type,id} references", v), false
		}
	case KindList:
		switch v.(type) {
		case []any, []float64, []string:
		default:
			return typeError(name, "list", v), false
		}
	}
	return domain.FieldError{}, true
}

func checkBounds(name string, p Property, f float64) (domain.FieldError, bool) {
	if p.Min != nil && f < *p.Min {
		return domain.FieldError{
			Path:       name,
			Constraint: "min",
			Message:    fmt.Sprintf("property %q must be >= %v", name, *p.Min),
		}, false
	}
	if p.Max != nil && f > *p.Max {
		return domain.FieldError{
			Path:       name,
			Constraint: "max",
			Message:    fmt.Sprintf("property %q must be <= %v", name, *p.Max),
		}, false
	}
	return domain.FieldError{}, true
}

func typeError(name, want string, got any) domain.FieldError {
	return domain.FieldError{
		Path:       name,
		Constraint: "type",
		Message:    fmt.Sprintf("property %q must be a %s, got %T", name, want, got),
	}
}

func numeric(v any) (float64, bool) {
	switch tv := v.(type) {
	case float64:
		return tv, true
	case float32:
		return float64(tv), true
	case int:
		return float64(tv), true
	case int64:
		return float64(tv), true
	default:
		return 0, false
	}
}

func vector2(v any) ([]float64, bool) {
	switch tv := v.(type) {
	case []float64:
		if len(tv) == 2 {
			return append([]float64(nil), tv...), true
		}
	case []any:
		if len(tv) == 2 {
			out := make([]float64, 2)
			for i, item := range tv {
				f, ok := numeric(item)
				if !ok {
					return nil, false
				}
				out[i] = f
			}
			return out, true
		}
	}
	return nil, false
}

// canonicalize normalizes committed values: numbers to float64, vectors to
// []float64, reference lists to []TypeRef. Invalid values pass through
// untouched; Validate reports them.
func canonicalize(p Property, v any) any {
	if v == nil {
		return nil
	}
	if p.Animated {
		if env, ok := v.(map[string]any); ok {
			if _, has := env["animated"]; has {
				return domain.CloneValue(v)
			}
		}
	}
	switch p.Kind {
	case KindNumber, KindTime, KindInteger:
		if f, ok := numeric(v); ok {
			return f
		}
	case KindVector:
		if vec, ok := vector2(v); ok {
			return vec
		}
	case KindRefList:
		if refs := domain.RefList(v); refs != nil {
			return refs
		}
		return []domain.TypeRef{}
	}
	return v
}

// Float is a convenience constructor for bound pointers.
func Float(v float64) *float64 { return &v }
