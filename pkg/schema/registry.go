package schema

import (
	"fmt"
	"sort"

	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

// Registry composes and serves per-type schemas. For returns structurally
// equivalent results on every call; builders run fresh each time so no hidden
// mutable caching can drift.
type Registry struct {
	builders map[domain.EntityType]func() Schema
}

// NewRegistry constructs a registry holding every built-in component type.
func NewRegistry() *Registry {
	r := &Registry{builders: make(map[domain.EntityType]func() Schema)}
	r.register(domain.TypeScenario, buildScenario)
	r.register(domain.TypeBlock, buildBlock)
	r.register(domain.TypeBlockToggler, buildBlockToggler)
	r.register(domain.TypePage, buildPage)
	r.register(domain.TypeContent, buildContent)
	r.register(domain.TypeController, buildController)
	r.register(domain.TypeCursor, buildCursor)
	r.register(domain.TypeMedia, buildMedia)
	r.register(domain.TypeVideoRenderer, buildVideoRenderer)
	r.register(domain.TypeSVG, buildSVG)
	r.register(domain.TypeAnimation, buildAnimation)
	r.register(domain.TypeImage, buildImage)
	return r
}

func (r *Registry) register(t domain.EntityType, build func() Schema) {
	r.builders[t] = build
}

// For returns the merged schema for the given type.
func (r *Registry) For(t domain.EntityType) (Schema, error) {
	build, ok := r.builders[t]
	if !ok {
		return Schema{}, fmt.Errorf("unknown component type %q", t)
	}
	return build(), nil
}

// Types returns every registered type in deterministic order.
func (r *Registry) Types() []domain.EntityType {
	out := make([]domain.EntityType, 0, len(r.builders))
	for t := range r.builders {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func buildScenario() Schema {
	return Schema{
		Type: domain.TypeScenario,
		Properties: compose(nil, map[string]Property{
			"children": {Kind: KindRefList, Default: []domain.TypeRef{}},
		}),
		ChildrenProperty: "children",
	}
}

func buildBlock() Schema {
	return Schema{
		Type: domain.TypeBlock,
		Properties: compose(embeddable, map[string]Property{
			"pages":            {Kind: KindRefList, Default: []domain.TypeRef{}},
			domain.PropSynched: {Kind: KindBoolean, Default: false},
			"pager-visibility": {Kind: KindEnum, Default: "auto", Values: []string{"auto", "visible", "hidden"}},
			// Blocks default to an opaque pane, unlike the generic
			// transparent background.
			"background-color": {Kind: KindColor, Default: "#eeeeee", Nullable: true},
			domain.PropDimension: {Kind: KindVector, Default: []float64{200, 200}},
		}),
		ChildrenProperty: "pages",
	}
}

func buildBlockToggler() Schema {
	return Schema{
		Type: domain.TypeBlockToggler,
		Properties: compose([]Fragment{hasPosition, hasDimension, hasOpacity, hasBackground, hasBorder}, map[string]Property{
			"blocks": {Kind: KindRefList, Default: []domain.TypeRef{}},
		}),
	}
}

func buildPage() Schema {
	return Schema{
		Type: domain.TypePage,
		Properties: compose([]Fragment{hasBackground, hasTimeRange}, map[string]Property{
			"children": {Kind: KindRefList, Default: []domain.TypeRef{}},
		}),
		ChildrenProperty: "children",
	}
}

func buildContent() Schema {
	return Schema{
		Type: domain.TypeContent,
		Properties: compose(embeddable, map[string]Property{
			"text": {Kind: KindString, Default: ""},
		}),
	}
}

func buildController() Schema {
	return Schema{
		Type:       domain.TypeController,
		Properties: compose([]Fragment{hasPosition, hasDimension, hasOpacity, hasBorder}, nil),
	}
}

func buildCursor() Schema {
	return Schema{
		Type: domain.TypeCursor,
		Properties: compose(embeddable, map[string]Property{
			"form":         {Kind: KindEnum, Default: "linear", Values: []string{"linear", "circular"}},
			"cursor-width": {Kind: KindNumber, Default: float64(1), Min: Float(0)},
			"cursor-color": {Kind: KindColor, Default: "#000000", Nullable: true},
		}),
		Conditionals: []Conditional{
			{
				Property: "form",
				Equals:   "linear",
				Properties: map[string]Property{
					"direction":    {Kind: KindEnum, Default: "right", Values: []string{"right", "left", "up", "down"}},
					"acceleration": {Kind: KindNumber, Default: float64(1), Min: Float(0)},
					"keyframes":    {Kind: KindList, Default: nil, Nullable: true},
				},
			},
			{
				Property: "form",
				Equals:   "circular",
				Properties: map[string]Property{
					"start-angle":   {Kind: KindNumber, Default: float64(0)},
					"loop-duration": {Kind: KindTime, Default: nil, Nullable: true, Min: Float(0)},
				},
			},
		},
	}
}

func buildMedia() Schema {
	return Schema{
		Type: domain.TypeMedia,
		Properties: compose(embeddable, map[string]Property{
			"tag":            {Kind: KindEnum, Default: "audio", Values: []string{"audio", "video"}},
			domain.PropSource: {Kind: KindString, Default: nil, Nullable: true},
		}),
	}
}

func buildVideoRenderer() Schema {
	return Schema{
		Type:       domain.TypeVideoRenderer,
		Properties: compose([]Fragment{hasPosition, hasDimension, hasBorder}, nil),
	}
}

func buildSVG() Schema {
	return Schema{
		Type: domain.TypeSVG,
		Properties: compose(embeddable, map[string]Property{
			domain.PropSource: {Kind: KindString, Default: nil, Nullable: true},
			"stroke":          {Kind: KindColor, Default: nil, Nullable: true},
			"stroke-width":    {Kind: KindNumber, Default: nil, Nullable: true, Min: Float(0)},
			"fill":            {Kind: KindColor, Default: nil, Nullable: true},
		}),
		AssetDefaultsProp: domain.PropSource,
	}
}

func buildAnimation() Schema {
	return Schema{
		Type: domain.TypeAnimation,
		Properties: compose(embeddable, map[string]Property{
			domain.PropSource: {Kind: KindString, Default: nil, Nullable: true},
			"start-frame":     {Kind: KindInteger, Default: float64(1), Min: Float(1)},
			"loop-duration":   {Kind: KindTime, Default: nil, Nullable: true, Min: Float(0)},
			"reversed":        {Kind: KindBoolean, Default: false},
		}),
		AssetDefaultsProp: domain.PropSource,
	}
}

func buildImage() Schema {
	return Schema{
		Type: domain.TypeImage,
		Properties: compose(embeddable, map[string]Property{
			domain.PropSource: {Kind: KindString, Default: nil, Nullable: true},
		}),
	}
}
