package schema

import (
	"reflect"
	"testing"

	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

func TestRegistryServesEveryType(t *testing.T) {
	r := NewRegistry()
	types := r.Types()
	if len(types) != 12 {
		t.Fatalf("expected 12 registered types, got %d", len(types))
	}
	for _, typ := range types {
		sch, err := r.For(typ)
		if err != nil {
			t.Fatalf("For(%s): %v", typ, err)
		}
		if sch.Type != typ {
			t.Fatalf("schema type mismatch: want %s got %s", typ, sch.Type)
		}
		for _, base := range []string{domain.PropName, domain.PropHidden, domain.PropLocked} {
			if _, ok := sch.Properties[base]; !ok {
				t.Fatalf("%s schema missing base property %q", typ, base)
			}
		}
	}
	if _, err := r.For("Bogus"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestForIsIdempotent(t *testing.T) {
	r := NewRegistry()
	first, err := r.For(domain.TypeBlock)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	// Mutating a returned schema must not drift later results.
	first.Properties["pager-visibility"] = Property{Kind: KindString, Default: "tampered"}
	delete(first.Properties, domain.PropSynched)

	second, err := r.For(domain.TypeBlock)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	if got := second.Properties["pager-visibility"].Default; got != "auto" {
		t.Fatalf("schema drifted: pager-visibility default %v", got)
	}
	if _, ok := second.Properties[domain.PropSynched]; !ok {
		t.Fatalf("schema drifted: synched property missing")
	}
}

func TestBlockOverridesFragmentDefaults(t *testing.T) {
	r := NewRegistry()
	sch, err := r.For(domain.TypeBlock)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	props := sch.ApplyDefaults(nil)
	if got := props["background-color"]; got != "#eeeeee" {
		t.Fatalf("block background-color default = %v", got)
	}
	if got, ok := props[domain.PropDimension].([]float64); !ok || got[0] != 200 || got[1] != 200 {
		t.Fatalf("block dimension default = %v", props[domain.PropDimension])
	}
	// Content keeps the generic fragment defaults.
	csch, err := r.For(domain.TypeContent)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	cprops := csch.ApplyDefaults(nil)
	if got := cprops["background-color"]; got != nil {
		t.Fatalf("content background-color default = %v", got)
	}
	if got := cprops["text"]; got != "" {
		t.Fatalf("content text default = %v", got)
	}
}

func TestCursorConditionalForms(t *testing.T) {
	r := NewRegistry()
	sch, err := r.For(domain.TypeCursor)
	if err != nil {
		t.Fatalf("For: %v", err)
	}

	linear := sch.ApplyDefaults(nil)
	if linear["form"] != "linear" {
		t.Fatalf("cursor form default = %v", linear["form"])
	}
	if linear["direction"] != "right" {
		t.Fatalf("linear cursor missing direction default, got %v", linear["direction"])
	}
	if _, ok := linear["start-angle"]; ok {
		t.Fatalf("linear cursor should not carry circular properties")
	}
	if errs := sch.Validate(linear); len(errs) != 0 {
		t.Fatalf("linear defaults should validate, got %v", errs)
	}

	circular := sch.ApplyDefaults(map[string]any{"form": "circular"})
	if circular["start-angle"] != float64(0) {
		t.Fatalf("circular cursor missing start-angle default, got %v", circular["start-angle"])
	}
	if _, ok := circular["direction"]; ok {
		t.Fatalf("circular cursor should not carry linear properties")
	}
	if errs := sch.Validate(circular); len(errs) != 0 {
		t.Fatalf("circular defaults should validate, got %v", errs)
	}

	// A circular cursor carrying linear-only properties is rejected.
	bad := sch.ApplyDefaults(map[string]any{"form": "circular", "direction": "left"})
	errs := sch.Validate(bad)
	if len(errs) != 1 || errs[0].Path != "direction" || errs[0].Constraint != "unknown" {
		t.Fatalf("expected unknown direction error, got %v", errs)
	}
}

func TestValidateConstraints(t *testing.T) {
	r := NewRegistry()
	sch, err := r.For(domain.TypeContent)
	if err != nil {
		t.Fatalf("For: %v", err)
	}

	cases := []struct {
		name       string
		mutate     map[string]any
		path       string
		constraint string
	}{
		{"unknown property", map[string]any{"bogus": 1}, "bogus", "unknown"},
		{"type mismatch", map[string]any{"text": 42}, "text", "type"},
		{"null not allowed", map[string]any{"text": nil}, "text", "nullable"},
		{"below min", map[string]any{"opacity": -0.5}, "opacity", "min"},
		{"above max", map[string]any{"opacity": 1.5}, "opacity", "max"},
		{"bad vector", map[string]any{"position": []any{1, 2, 3}}, "position", "type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			props := sch.ApplyDefaults(tc.mutate)
			errs := sch.Validate(props)
			if len(errs) != 1 {
				t.Fatalf("expected one error, got %v", errs)
			}
			if errs[0].Path != tc.path || errs[0].Constraint != tc.constraint {
				t.Fatalf("got %+v, want path %q constraint %q", errs[0], tc.path, tc.constraint)
			}
		})
	}
}

func TestValidateAcceptsAnimatedEnvelope(t *testing.T) {
	r := NewRegistry()
	sch, err := r.For(domain.TypeContent)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	props := sch.ApplyDefaults(map[string]any{
		"opacity": map[string]any{
			"animated":  true,
			"keyframes": []any{[]any{0.0, 1.0}, []any{5.0, 0.0}},
		},
	})
	if errs := sch.Validate(props); len(errs) != 0 {
		t.Fatalf("animated opacity should validate, got %v", errs)
	}
	// Non-animated properties do not accept envelopes.
	bad := sch.ApplyDefaults(map[string]any{
		"text": map[string]any{"animated": true},
	})
	if errs := sch.Validate(bad); len(errs) != 1 || errs[0].Path != "text" {
		t.Fatalf("expected text type error, got %v", errs)
	}
}

func TestApplyDefaultsCanonicalizes(t *testing.T) {
	r := NewRegistry()
	sch, err := r.For(domain.TypeBlock)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	props := sch.ApplyDefaults(map[string]any{
		"position": []any{10, 20},
		"opacity":  1,
		"pages":    []any{map[string]any{"type": "Page", "id": "p1"}},
	})
	if got, ok := props["position"].([]float64); !ok || !reflect.DeepEqual(got, []float64{10, 20}) {
		t.Fatalf("position not canonicalized: %v", props["position"])
	}
	if got, ok := props["opacity"].(float64); !ok || got != 1 {
		t.Fatalf("opacity not canonicalized: %v", props["opacity"])
	}
	refs, ok := props["pages"].([]domain.TypeRef)
	if !ok || len(refs) != 1 || refs[0] != (domain.TypeRef{Type: domain.TypePage, ID: "p1"}) {
		t.Fatalf("pages not canonicalized: %v", props["pages"])
	}
	if errs := sch.Validate(props); len(errs) != 0 {
		t.Fatalf("canonicalized props should validate, got %v", errs)
	}
}
