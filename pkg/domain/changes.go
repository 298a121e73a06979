package domain

// Action indicates the type of modification performed.
type Action string

// Change actions recorded for observers and the undo history.
const (
	// ActionAdd indicates an entity was registered in the store.
	ActionAdd Action = "add"
	// ActionUpdate indicates property values changed.
	ActionUpdate Action = "update"
	// ActionDelete indicates an entity was soft-deleted.
	ActionDelete Action = "delete"
	// ActionRestore indicates a soft-deleted entity was restored.
	ActionRestore Action = "restore"
	// ActionArrange indicates an entity moved within its parent's children.
	ActionArrange Action = "arrange"
	// ActionOrder indicates the top-level scenario order changed.
	ActionOrder Action = "order"
)

// Change describes a settled mutation. Before and After hold deep copies of
// only the touched property values for updates, and full entity copies for
// structural actions. Cascaded sibling adjustments notify observers as
// ordinary updates but are never recorded in the undo history.
type Change struct {
	Ref    TypeRef
	Action Action
	Before map[string]any
	After  map[string]any
}

// Observer receives change notifications after a mutation settles. Observers
// must not mutate the store reentrantly.
type Observer func(Change)
