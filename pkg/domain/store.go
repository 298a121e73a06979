package domain

import "context"

// ArrangeAction names a stacking reposition within a parent's children list.
type ArrangeAction string

const (
	ArrangeFront    ArrangeAction = "front"
	ArrangeBack     ArrangeAction = "back"
	ArrangeForward  ArrangeAction = "forward"
	ArrangeBackward ArrangeAction = "backward"
)

// DocumentStore is the authoritative holder of a score document's entities,
// the ordered top-level scenario list, and the soft-deleted set. All reads
// return deep copies; mutations either settle fully or leave no trace.
type DocumentStore interface {
	Get(ref TypeRef) (Entity, error)
	GetByType(t EntityType) []Entity
	All() []Entity

	Add(ctx context.Context, entity Entity, parent *TypeRef, index int) (Entity, error)
	Update(ctx context.Context, ref TypeRef, partial map[string]any) (Entity, error)
	Delete(ctx context.Context, ref TypeRef) error
	Restore(ctx context.Context, ref TypeRef) (Entity, error)
	Clone(ctx context.Context, ref TypeRef, overrides map[string]any, parent *TypeRef) (Entity, error)
	Arrange(ctx context.Context, ref TypeRef, action ArrangeAction) error
	SetScenarioIndex(ctx context.Context, ref TypeRef, index int) error

	Init(ctx context.Context, components []map[string]any) error
	Export() []map[string]any
}

// DeletedRecord is a soft-deleted entity plus the placement it needs for a
// lossless restore.
type DeletedRecord struct {
	Entity Entity `json:"entity"`
	// Parent carries the former weak back-reference, which entity
	// serialization intentionally omits.
	Parent *TypeRef `json:"parent,omitempty"`
	// ChildIndex is the entity's former position in its parent's children
	// list, -1 when it had no parent.
	ChildIndex int `json:"child_index"`
	// OrderIndex is the former scenario order position, -1 for non-scenarios.
	OrderIndex int `json:"order_index"`
}

// Snapshot is the full serializable state of a document store.
type Snapshot struct {
	Entities map[EntityType]map[string]Entity `json:"entities"`
	Deleted  []DeletedRecord                  `json:"deleted"`
	Order    []string                         `json:"order"`
}

// Snapshotter persists a snapshot after each settled mutation. Backends
// overwrite the prior snapshot wholesale.
type Snapshotter interface {
	SaveState(ctx context.Context, snap Snapshot) error
}
