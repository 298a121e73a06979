// Package domain defines the component entity model, mutation records, and
// error taxonomy shared by the metascore document core.
package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// EntityType identifies the concrete component variant and selects its schema.
type EntityType string

// Supported component types. Every type ultimately derives from the abstract
// component schema; containers additionally declare a children property.
const (
	// TypeScenario is a top-level, orderable container.
	TypeScenario EntityType = "Scenario"
	// TypeBlock is a container of ordered pages, optionally synched to the
	// media timeline.
	TypeBlock EntityType = "Block"
	// TypeBlockToggler toggles the visibility of a set of blocks.
	TypeBlockToggler EntityType = "BlockToggler"
	// TypePage belongs to a Block and holds embeddable components.
	TypePage EntityType = "Page"
	// TypeContent holds rich text.
	TypeContent EntityType = "Content"
	// TypeController is the playback control component.
	TypeController EntityType = "Controller"
	// TypeCursor is a linear or circular progress indicator.
	TypeCursor EntityType = "Cursor"
	// TypeMedia is an audio/video overlay.
	TypeMedia EntityType = "Media"
	// TypeVideoRenderer renders the main media stream.
	TypeVideoRenderer EntityType = "VideoRenderer"
	// TypeSVG embeds an external vector asset.
	TypeSVG EntityType = "SVG"
	// TypeAnimation embeds an animated vector asset.
	TypeAnimation EntityType = "Animation"
	// TypeImage embeds a bitmap asset.
	TypeImage EntityType = "Image"
)

// Property names used across schemas and cascades.
const (
	PropName      = "name"
	PropLocked    = "locked"
	PropHidden    = "hidden"
	PropStartTime = "start-time"
	PropEndTime   = "end-time"
	PropSynched   = "synched"
	PropSource    = "src"
	PropDimension = "dimension"
)

// childrenProperties maps container types to their declared children
// property name. Types absent from the map cannot hold children.
var childrenProperties = map[EntityType]string{
	TypeScenario: "children",
	TypePage:     "children",
	TypeBlock:    "pages",
}

// ChildrenProperty returns the children property name declared by the type,
// or "" when the type is not a container.
func ChildrenProperty(t EntityType) string {
	return childrenProperties[t]
}

// TypeRef identifies an entity by (type, id). Children lists and weak parent
// back-references are stored as TypeRefs, never as inline entities.
type TypeRef struct {
	Type EntityType `json:"type"`
	ID   string     `json:"id"`
}

func (r TypeRef) String() string {
	return fmt.Sprintf("%s/%s", r.Type, r.ID)
}

// Entity is the atomic document node: an id unique within its type plus the
// dynamic property set contributed by the type's composed schema. Parent is a
// lookup aid maintained by the store when the entity is attached; ownership
// lives in the parent's ordered children reference list.
type Entity struct {
	Type   EntityType
	ID     string
	Props  map[string]any
	Parent *TypeRef
}

// Ref returns the entity's (type, id) identity.
func (e Entity) Ref() TypeRef {
	return TypeRef{Type: e.Type, ID: e.ID}
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	cp := e
	cp.Props = CloneProps(e.Props)
	if e.Parent != nil {
		p := *e.Parent
		cp.Parent = &p
	}
	return cp
}

// Name returns the display label, or "" when unset.
func (e Entity) Name() string {
	s, _ := e.Props[PropName].(string)
	return s
}

// Children returns the ordered children reference list, or nil for
// non-container types.
func (e Entity) Children() []TypeRef {
	prop := ChildrenProperty(e.Type)
	if prop == "" {
		return nil
	}
	return RefList(e.Props[prop])
}

// TimeBound reads a nullable time property as seconds.
func (e Entity) TimeBound(name string) *float64 {
	return TimeValue(e.Props[name])
}

// IsSynched reports whether a Block keeps its pages time-contiguous.
func (e Entity) IsSynched() bool {
	b, _ := e.Props[PropSynched].(bool)
	return e.Type == TypeBlock && b
}

type entityPayload struct {
	Type EntityType `json:"type"`
	ID   string     `json:"id"`
}

// MarshalJSON flattens the property set beside type and id. The weak parent
// reference is never serialized.
func (e Entity) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Props)+2)
	for k, v := range e.Props {
		out[k] = v
	}
	out["type"] = e.Type
	out["id"] = e.ID
	return json.Marshal(out)
}

// UnmarshalJSON splits type and id from the flattened property set.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var head entityPayload
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var props map[string]any
	if err := json.Unmarshal(data, &props); err != nil {
		return err
	}
	delete(props, "type")
	delete(props, "id")
	prop := ChildrenProperty(head.Type)
	if prop != "" {
		if refs := RefList(props[prop]); refs != nil {
			props[prop] = refs
		}
	}
	e.Type = head.Type
	e.ID = head.ID
	e.Props = props
	e.Parent = nil
	return nil
}

// CloneProps deep-copies a property set.
func CloneProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies a property value (maps, slices, ref lists).
func CloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return CloneProps(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = CloneValue(e)
		}
		return out
	case []float64:
		return append([]float64(nil), tv...)
	case []string:
		return append([]string(nil), tv...)
	case []TypeRef:
		return append(make([]TypeRef, 0, len(tv)), tv...)
	case *float64:
		if tv == nil {
			return (*float64)(nil)
		}
		f := *tv
		return &f
	default:
		return v
	}
}

// RefList coerces a stored or freshly-decoded children value into []TypeRef.
// Returns nil when the value is not a reference list.
func RefList(v any) []TypeRef {
	switch tv := v.(type) {
	case []TypeRef:
		return append(make([]TypeRef, 0, len(tv)), tv...)
	case []any:
		out := make([]TypeRef, 0, len(tv))
		for _, item := range tv {
			m, ok := item.(map[string]any)
			if !ok {
				return nil
			}
			t, _ := m["type"].(string)
			id, _ := m["id"].(string)
			if t == "" || id == "" {
				return nil
			}
			out = append(out, TypeRef{Type: EntityType(t), ID: id})
		}
		return out
	default:
		return nil
	}
}

// TimeValue coerces a nullable time property value into *float64 seconds.
func TimeValue(v any) *float64 {
	switch tv := v.(type) {
	case nil:
		return nil
	case *float64:
		if tv == nil {
			return nil
		}
		f := *tv
		return &f
	case float64:
		f := tv
		return &f
	case int:
		f := float64(tv)
		return &f
	case int64:
		f := float64(tv)
		return &f
	case json.Number:
		f, err := tv.Float64()
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// Seconds is a convenience constructor for nullable time values.
func Seconds(v float64) *float64 { return &v }

// SortedTypes returns entity types in deterministic order.
func SortedTypes(types map[EntityType]struct{}) []EntityType {
	out := make([]EntityType, 0, len(types))
	for t := range types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
