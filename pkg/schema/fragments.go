package schema

import "github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"

// A Fragment contributes a reusable, named bundle of properties to a type's
// schema. Fragments return fresh maps so composition can never share state.
type Fragment func() map[string]Property

// abstractComponent is the root schema every type derives from.
func abstractComponent() map[string]Property {
	return map[string]Property{
		domain.PropName:   {Kind: KindString, Default: ""},
		domain.PropHidden: {Kind: KindBoolean, Default: false},
		domain.PropLocked: {Kind: KindBoolean, Default: false},
	}
}

func hasPosition() map[string]Property {
	return map[string]Property{
		"position": {Kind: KindVector, Default: []float64{0, 0}},
	}
}

func hasDimension() map[string]Property {
	return map[string]Property{
		domain.PropDimension: {Kind: KindVector, Default: []float64{50, 50}},
	}
}

func hasOpacity() map[string]Property {
	return map[string]Property{
		"opacity": {Kind: KindNumber, Default: float64(1), Min: Float(0), Max: Float(1), Animated: true},
	}
}

func hasBackground() map[string]Property {
	return map[string]Property{
		"background-color": {Kind: KindColor, Default: nil, Nullable: true},
		"background-image": {Kind: KindString, Default: nil, Nullable: true},
	}
}

func hasBorder() map[string]Property {
	return map[string]Property{
		"border-width":  {Kind: KindNumber, Default: float64(0), Min: Float(0)},
		"border-color":  {Kind: KindColor, Default: nil, Nullable: true},
		"border-radius": {Kind: KindString, Default: nil, Nullable: true},
	}
}

func hasTransform() map[string]Property {
	return map[string]Property{
		"translate": {Kind: KindVector, Default: []float64{0, 0}, Animated: true},
		"scale":     {Kind: KindVector, Default: []float64{1, 1}, Animated: true},
		"rotate":    {Kind: KindNumber, Default: float64(0), Animated: true},
	}
}

func hasTimeRange() map[string]Property {
	return map[string]Property{
		domain.PropStartTime: {Kind: KindTime, Default: nil, Nullable: true, Min: Float(0)},
		domain.PropEndTime:   {Kind: KindTime, Default: nil, Nullable: true, Min: Float(0)},
	}
}

// embeddable is the fragment set shared by components placeable on a page.
var embeddable = []Fragment{
	hasPosition,
	hasDimension,
	hasOpacity,
	hasBackground,
	hasBorder,
	hasTransform,
	hasTimeRange,
}

// compose merges base + fragments + own declarations in order; later
// contributions override earlier ones.
func compose(fragments []Fragment, own map[string]Property) map[string]Property {
	out := abstractComponent()
	for _, frag := range fragments {
		for k, v := range frag() {
			out[k] = v
		}
	}
	for k, v := range own {
		out[k] = v
	}
	return out
}
