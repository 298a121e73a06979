package core

import (
	"context"
	"sort"
	"sync"

	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/schema"
)

// Store is the authoritative in-memory holder of a score document: live
// entities keyed per type by id, the soft-deleted set, and the ordered
// top-level scenario list. A single RWMutex serializes mutations while
// allowing concurrent reads. All returned entities are deep copies.
type Store struct {
	mu        sync.RWMutex
	registry  *schema.Registry
	factory   *Factory
	clock     MediaClock
	logger    Logger
	snapshots domain.Snapshotter

	defaultsProvider domain.DefaultsProvider

	entities  map[EntityType]map[string]Entity
	deleted   map[TypeRef]domain.DeletedRecord
	order     []string
	overrides *overrideSet
	observers []Observer
	history   *History
}

// StoreOption customizes store construction.
type StoreOption func(*Store)

// WithLogger installs a logger; the default is silent.
func WithLogger(l Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMediaClock installs the media clock consulted by the containment
// clamp when a parent's end bound is unset.
func WithMediaClock(c MediaClock) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDefaultsProvider installs the asset defaults provider handed to the
// entity factory.
func WithDefaultsProvider(p domain.DefaultsProvider) StoreOption {
	return func(s *Store) { s.defaultsProvider = p }
}

// WithSnapshotter installs a persistence hook invoked after every settled
// mutation.
func WithSnapshotter(sn domain.Snapshotter) StoreOption {
	return func(s *Store) { s.snapshots = sn }
}

// WithRegistry substitutes the schema registry backing the factory.
func WithRegistry(r *schema.Registry) StoreOption {
	return func(s *Store) { s.registry = r }
}

// NewStore constructs an empty document store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		clock:     &domain.StaticMediaClock{},
		logger:    noopLogger{},
		entities:  make(map[EntityType]map[string]Entity),
		deleted:   make(map[TypeRef]domain.DeletedRecord),
		overrides: newOverrideSet(),
		history:   NewHistory(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = schema.NewRegistry()
	}
	s.factory = NewFactory(s.registry, s.defaultsProvider, s.logger)
	return s
}

// Factory exposes the entity factory bound to the store's registry.
func (s *Store) Factory() *Factory { return s.factory }

// History exposes the undo/redo stack.
func (s *Store) History() *History { return s.history }

// Subscribe registers an observer notified after each settled mutation.
// Observers must not call back into mutating operations.
func (s *Store) Subscribe(fn Observer) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Get returns the live entity for ref. Soft-deleted entities are not found.
func (s *Store) Get(ref TypeRef) (Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.lookupLocked(ref)
	if !ok {
		return Entity{}, ErrNotFound{Ref: ref}
	}
	return e.Clone(), nil
}

// GetByType returns all live entities of the given type. Scenarios follow
// the top-level order; other types are sorted by id.
func (s *Store) GetByType(t EntityType) []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t == TypeScenario {
		out := make([]Entity, 0, len(s.order))
		for _, id := range s.order {
			if e, ok := s.lookupLocked(TypeRef{Type: t, ID: id}); ok {
				out = append(out, e.Clone())
			}
		}
		return out
	}
	byID := s.entities[t]
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id].Clone())
	}
	return out
}

// All returns every live entity, sorted by type then id (scenarios in
// top-level order).
func (s *Store) All() []Entity {
	s.mu.RLock()
	types := make(map[EntityType]struct{}, len(s.entities))
	for t := range s.entities {
		types[t] = struct{}{}
	}
	s.mu.RUnlock()
	var out []Entity
	for _, t := range domain.SortedTypes(types) {
		out = append(out, s.GetByType(t)...)
	}
	return out
}

// Add registers the entity, optionally linking it under parent at index
// (-1 appends). Scenarios are appended to the top-level order. The parent's
// children list update is re-validated before anything commits.
func (s *Store) Add(ctx context.Context, entity Entity, parent *TypeRef, index int) (Entity, error) {
	s.mu.Lock()
	committed, changes, err := s.addLocked(entity, parent, index)
	s.mu.Unlock()
	if err != nil {
		return Entity{}, err
	}
	if err := s.persist(ctx); err != nil {
		return Entity{}, err
	}
	s.notify(changes)
	ref := committed.Ref()
	s.history.Push(Command{
		Undo: func(ctx context.Context) error { return s.Delete(ctx, ref) },
		Redo: func(ctx context.Context) error { _, err := s.Restore(ctx, ref); return err },
	})
	return committed, nil
}

func (s *Store) addLocked(entity Entity, parent *TypeRef, index int) (Entity, []Change, error) {
	ref := entity.Ref()
	if ref.Type == "" || ref.ID == "" {
		return Entity{}, nil, StructuralError{Ref: ref, Op: "add", Msg: "entity missing type or id"}
	}
	if _, live := s.lookupLocked(ref); live {
		return Entity{}, nil, StructuralError{Ref: ref, Op: "add", Msg: "id already in use"}
	}
	if _, gone := s.deleted[ref]; gone {
		return Entity{}, nil, StructuralError{Ref: ref, Op: "add", Msg: "id already in use by a deleted entity"}
	}

	e := entity.Clone()
	var changes []Change

	if parent != nil {
		p, ok := s.lookupLocked(*parent)
		if !ok {
			return Entity{}, nil, ErrNotFound{Ref: *parent}
		}
		childProp := domain.ChildrenProperty(p.Type)
		if childProp == "" {
			return Entity{}, nil, StructuralError{Ref: *parent, Op: "add", Msg: "parent type cannot contain children"}
		}
		refs := domain.RefList(p.Props[childProp])
		before := append(make([]TypeRef, 0, len(refs)), refs...)
		if index < 0 || index > len(refs) {
			index = len(refs)
		}
		refs = append(refs, TypeRef{})
		copy(refs[index+1:], refs[index:])
		refs[index] = ref
		p.Props[childProp] = refs
		if errs, verr := s.factory.Validate(p); verr != nil {
			return Entity{}, nil, verr
		} else if len(errs) > 0 {
			return Entity{}, nil, ValidationError{Ref: p.Ref(), Fields: errs}
		}
		pr := *parent
		e.Parent = &pr
		s.clampLocked(&e)
		s.entities[p.Type][p.ID] = p
		changes = append(changes, Change{
			Ref:    p.Ref(),
			Action: ActionUpdate,
			Before: map[string]any{childProp: before},
			After:  map[string]any{childProp: domain.CloneValue(refs)},
		})
	}

	if s.entities[e.Type] == nil {
		s.entities[e.Type] = make(map[string]Entity)
	}
	s.entities[e.Type][e.ID] = e
	if e.Type == TypeScenario {
		s.order = append(s.order, e.ID)
	}
	changes = append(changes, Change{Ref: ref, Action: ActionAdd, After: domain.CloneProps(e.Props)})
	return e.Clone(), changes, nil
}

// Update merges partial data into the entity, re-validates, commits, and
// runs time cascades when a time bound was touched. On any failure the
// store is left untouched.
func (s *Store) Update(ctx context.Context, ref TypeRef, partial map[string]any) (Entity, error) {
	committed, before, after, changes, err := s.updateStage(ctx, ref, partial)
	if err != nil {
		return Entity{}, err
	}
	if err := s.persist(ctx); err != nil {
		return Entity{}, err
	}
	s.notify(changes)
	s.history.Push(Command{
		Undo: func(ctx context.Context) error { _, err := s.Update(ctx, ref, before); return err },
		Redo: func(ctx context.Context) error { _, err := s.Update(ctx, ref, after); return err },
	})
	return committed, nil
}

// updateStage performs the locked portion of Update. Replayed undo/redo
// commands reuse it, so cascades re-run rather than being replayed from
// recorded state.
func (s *Store) updateStage(ctx context.Context, ref TypeRef, partial map[string]any) (Entity, map[string]any, map[string]any, []Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.lookupLocked(ref)
	if !ok {
		return Entity{}, nil, nil, nil, ErrNotFound{Ref: ref}
	}
	next, before, err := s.factory.Update(ctx, current, partial)
	if err != nil {
		return Entity{}, nil, nil, nil, err
	}

	_, touchedStart := partial[domain.PropStartTime]
	_, touchedEnd := partial[domain.PropEndTime]
	if touchedStart || touchedEnd {
		s.clampLocked(&next)
	}

	after := make(map[string]any, len(partial))
	for k := range partial {
		after[k] = domain.CloneValue(next.Props[k])
	}

	s.entities[next.Type][next.ID] = next
	changes := []Change{{Ref: ref, Action: ActionUpdate, Before: before, After: domain.CloneProps(after)}}
	if touchedStart || touchedEnd {
		changes = append(changes, s.contiguityLocked(next, touchedStart, touchedEnd)...)
	}
	return next.Clone(), before, after, changes, nil
}

// Delete soft-deletes the entity: time cascades run first, then the entity
// moves to the deleted set and leaves its parent's children list. The
// placement needed for a lossless restore is retained.
func (s *Store) Delete(ctx context.Context, ref TypeRef) error {
	s.mu.Lock()
	changes, err := s.deleteLocked(ref)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.notify(changes)
	s.history.Push(Command{
		Undo: func(ctx context.Context) error { _, err := s.Restore(ctx, ref); return err },
		Redo: func(ctx context.Context) error { return s.Delete(ctx, ref) },
	})
	return nil
}

func (s *Store) deleteLocked(ref TypeRef) ([]Change, error) {
	e, ok := s.lookupLocked(ref)
	if !ok {
		return nil, ErrNotFound{Ref: ref}
	}

	changes := s.deleteCascadeLocked(e)

	childIndex := -1
	if e.Parent != nil {
		if p, ok := s.lookupLocked(*e.Parent); ok {
			childProp := domain.ChildrenProperty(p.Type)
			refs := domain.RefList(p.Props[childProp])
			before := append(make([]TypeRef, 0, len(refs)), refs...)
			for i, r := range refs {
				if r == ref {
					childIndex = i
					refs = append(refs[:i], refs[i+1:]...)
					break
				}
			}
			if childIndex >= 0 {
				p.Props[childProp] = refs
				s.entities[p.Type][p.ID] = p
				changes = append(changes, Change{
					Ref:    p.Ref(),
					Action: ActionUpdate,
					Before: map[string]any{childProp: before},
					After:  map[string]any{childProp: domain.CloneValue(refs)},
				})
			}
		}
	}

	orderIndex := -1
	if e.Type == TypeScenario {
		for i, id := range s.order {
			if id == ref.ID {
				orderIndex = i
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}

	delete(s.entities[e.Type], e.ID)
	s.deleted[ref] = domain.DeletedRecord{Entity: e, ChildIndex: childIndex, OrderIndex: orderIndex}
	changes = append(changes, Change{Ref: ref, Action: ActionDelete, Before: domain.CloneProps(e.Props)})
	return changes, nil
}

// Restore reverses a soft delete: the entity re-registers at its former
// position and neighboring sibling bounds are pushed back out to its own.
func (s *Store) Restore(ctx context.Context, ref TypeRef) (Entity, error) {
	s.mu.Lock()
	restored, changes, err := s.restoreLocked(ref)
	s.mu.Unlock()
	if err != nil {
		return Entity{}, err
	}
	if err := s.persist(ctx); err != nil {
		return Entity{}, err
	}
	s.notify(changes)
	s.history.Push(Command{
		Undo: func(ctx context.Context) error { return s.Delete(ctx, ref) },
		Redo: func(ctx context.Context) error { _, err := s.Restore(ctx, ref); return err },
	})
	return restored, nil
}

func (s *Store) restoreLocked(ref TypeRef) (Entity, []Change, error) {
	rec, ok := s.deleted[ref]
	if !ok {
		return Entity{}, nil, ErrNotFound{Ref: ref}
	}
	e := rec.Entity.Clone()
	var changes []Change

	if e.Parent != nil {
		if p, ok := s.lookupLocked(*e.Parent); ok {
			childProp := domain.ChildrenProperty(p.Type)
			refs := domain.RefList(p.Props[childProp])
			before := append(make([]TypeRef, 0, len(refs)), refs...)
			index := rec.ChildIndex
			if index < 0 || index > len(refs) {
				index = len(refs)
			}
			refs = append(refs, TypeRef{})
			copy(refs[index+1:], refs[index:])
			refs[index] = ref
			p.Props[childProp] = refs
			s.entities[p.Type][p.ID] = p
			changes = append(changes, Change{
				Ref:    p.Ref(),
				Action: ActionUpdate,
				Before: map[string]any{childProp: before},
				After:  map[string]any{childProp: domain.CloneValue(refs)},
			})
		}
	}

	if s.entities[e.Type] == nil {
		s.entities[e.Type] = make(map[string]Entity)
	}
	s.entities[e.Type][e.ID] = e
	if e.Type == TypeScenario {
		index := rec.OrderIndex
		if index < 0 || index > len(s.order) {
			index = len(s.order)
		}
		s.order = append(s.order, "")
		copy(s.order[index+1:], s.order[index:])
		s.order[index] = e.ID
	}
	delete(s.deleted, ref)

	changes = append(changes, s.restoreCascadeLocked(e)...)
	changes = append(changes, Change{Ref: ref, Action: ActionRestore, After: domain.CloneProps(e.Props)})
	return e.Clone(), changes, nil
}

// Clone deep-copies the entity and its whole subtree under fresh ids, then
// registers the duplicate under parent. overrides merge into the root
// clone's data before creation.
func (s *Store) Clone(ctx context.Context, ref TypeRef, overrides map[string]any, parent *TypeRef) (Entity, error) {
	s.mu.Lock()
	root, changes, err := s.cloneLocked(ctx, ref, overrides, parent)
	s.mu.Unlock()
	if err != nil {
		return Entity{}, err
	}
	if err := s.persist(ctx); err != nil {
		return Entity{}, err
	}
	s.notify(changes)
	rootRef := root.Ref()
	s.history.Push(Command{
		Undo: func(ctx context.Context) error { return s.Delete(ctx, rootRef) },
		Redo: func(ctx context.Context) error { _, err := s.Restore(ctx, rootRef); return err },
	})
	return root, nil
}

func (s *Store) cloneLocked(ctx context.Context, ref TypeRef, overrides map[string]any, parent *TypeRef) (Entity, []Change, error) {
	source, ok := s.lookupLocked(ref)
	if !ok {
		return Entity{}, nil, ErrNotFound{Ref: ref}
	}
	var changes []Change
	root, err := s.cloneSubtreeLocked(ctx, source, overrides, &changes)
	if err != nil {
		return Entity{}, nil, err
	}
	// Subtree entities are already registered; the root is linked last so
	// parent validation sees the complete children list.
	committed, addChanges, err := s.addLocked(root, parent, -1)
	if err != nil {
		s.removeSubtreeLocked(root)
		return Entity{}, nil, err
	}
	return committed, append(changes, addChanges...), nil
}

func (s *Store) cloneSubtreeLocked(ctx context.Context, source Entity, overrides map[string]any, changes *[]Change) (Entity, error) {
	data := domain.CloneProps(source.Props)
	for k, v := range overrides {
		data[k] = domain.CloneValue(v)
	}
	clone, err := s.factory.Create(ctx, source.Type, data, false)
	if err != nil {
		return Entity{}, err
	}

	childProp := domain.ChildrenProperty(source.Type)
	if childProp != "" {
		self := clone.Ref()
		refs := domain.RefList(source.Props[childProp])
		cloned := make([]TypeRef, 0, len(refs))
		for _, childRef := range refs {
			child, ok := s.lookupLocked(childRef)
			if !ok {
				continue
			}
			dup, err := s.cloneSubtreeLocked(ctx, child, nil, changes)
			if err != nil {
				return Entity{}, err
			}
			dup.Parent = &TypeRef{Type: self.Type, ID: self.ID}
			if s.entities[dup.Type] == nil {
				s.entities[dup.Type] = make(map[string]Entity)
			}
			s.entities[dup.Type][dup.ID] = dup
			*changes = append(*changes, Change{Ref: dup.Ref(), Action: ActionAdd, After: domain.CloneProps(dup.Props)})
			cloned = append(cloned, dup.Ref())
		}
		clone.Props[childProp] = cloned
	}
	return clone, nil
}

// removeSubtreeLocked discards a partially-registered clone subtree after a
// failed root link.
func (s *Store) removeSubtreeLocked(root Entity) {
	childProp := domain.ChildrenProperty(root.Type)
	for _, ref := range domain.RefList(root.Props[childProp]) {
		if child, ok := s.lookupLocked(ref); ok {
			s.removeSubtreeLocked(child)
			delete(s.entities[ref.Type], ref.ID)
		}
	}
}

// Arrange repositions the entity within its parent's children list.
func (s *Store) Arrange(ctx context.Context, ref TypeRef, action domain.ArrangeAction) error {
	s.mu.Lock()
	oldIndex, newIndex, changes, err := s.arrangeLocked(ref, action)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if oldIndex == newIndex {
		return nil
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.notify(changes)
	s.history.Push(Command{
		Undo: func(ctx context.Context) error { return s.moveChild(ctx, ref, oldIndex) },
		Redo: func(ctx context.Context) error { return s.moveChild(ctx, ref, newIndex) },
	})
	return nil
}

func (s *Store) arrangeLocked(ref TypeRef, action domain.ArrangeAction) (int, int, []Change, error) {
	e, ok := s.lookupLocked(ref)
	if !ok {
		return 0, 0, nil, ErrNotFound{Ref: ref}
	}
	if e.Parent == nil {
		return 0, 0, nil, StructuralError{Ref: ref, Op: "arrange", Msg: "entity has no parent"}
	}
	p, ok := s.lookupLocked(*e.Parent)
	if !ok {
		return 0, 0, nil, StructuralError{Ref: ref, Op: "arrange", Msg: "parent not found"}
	}
	childProp := domain.ChildrenProperty(p.Type)
	refs := domain.RefList(p.Props[childProp])
	oldIndex := -1
	for i, r := range refs {
		if r == ref {
			oldIndex = i
			break
		}
	}
	if oldIndex < 0 {
		return 0, 0, nil, StructuralError{Ref: ref, Op: "arrange", Msg: "entity missing from parent children list"}
	}

	newIndex := oldIndex
	switch action {
	case domain.ArrangeFront:
		newIndex = len(refs) - 1
	case domain.ArrangeBack:
		newIndex = 0
	case domain.ArrangeForward:
		if oldIndex < len(refs)-1 {
			newIndex = oldIndex + 1
		}
	case domain.ArrangeBackward:
		if oldIndex > 0 {
			newIndex = oldIndex - 1
		}
	default:
		return 0, 0, nil, StructuralError{Ref: ref, Op: "arrange", Msg: "unknown arrange action"}
	}
	if newIndex == oldIndex {
		return oldIndex, newIndex, nil, nil
	}
	s.moveChildLocked(p, childProp, refs, oldIndex, newIndex)
	changes := []Change{{
		Ref:    ref,
		Action: ActionArrange,
		Before: map[string]any{"index": oldIndex},
		After:  map[string]any{"index": newIndex},
	}}
	return oldIndex, newIndex, changes, nil
}

// moveChild places the entity at index within its parent's children list.
// Used to replay arrange actions.
func (s *Store) moveChild(ctx context.Context, ref TypeRef, index int) error {
	s.mu.Lock()
	err := func() error {
		e, ok := s.lookupLocked(ref)
		if !ok {
			return ErrNotFound{Ref: ref}
		}
		if e.Parent == nil {
			return StructuralError{Ref: ref, Op: "arrange", Msg: "entity has no parent"}
		}
		p, ok := s.lookupLocked(*e.Parent)
		if !ok {
			return StructuralError{Ref: ref, Op: "arrange", Msg: "parent not found"}
		}
		childProp := domain.ChildrenProperty(p.Type)
		refs := domain.RefList(p.Props[childProp])
		from := -1
		for i, r := range refs {
			if r == ref {
				from = i
				break
			}
		}
		if from < 0 {
			return StructuralError{Ref: ref, Op: "arrange", Msg: "entity missing from parent children list"}
		}
		if index < 0 {
			index = 0
		}
		if index > len(refs)-1 {
			index = len(refs) - 1
		}
		s.moveChildLocked(p, childProp, refs, from, index)
		return nil
	}()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.persist(ctx)
}

func (s *Store) moveChildLocked(p Entity, childProp string, refs []TypeRef, from, to int) {
	moved := refs[from]
	refs = append(refs[:from], refs[from+1:]...)
	refs = append(refs, TypeRef{})
	copy(refs[to+1:], refs[to:])
	refs[to] = moved
	p.Props[childProp] = refs
	s.entities[p.Type][p.ID] = p
}

// SetScenarioIndex repositions a scenario within the top-level order.
func (s *Store) SetScenarioIndex(ctx context.Context, ref TypeRef, index int) error {
	s.mu.Lock()
	oldIndex, newIndex, err := s.setScenarioIndexLocked(ref, index)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if oldIndex == newIndex {
		return nil
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.notify([]Change{{
		Ref:    ref,
		Action: ActionOrder,
		Before: map[string]any{"index": oldIndex},
		After:  map[string]any{"index": newIndex},
	}})
	s.history.Push(Command{
		Undo: func(ctx context.Context) error { return s.SetScenarioIndex(ctx, ref, oldIndex) },
		Redo: func(ctx context.Context) error { return s.SetScenarioIndex(ctx, ref, newIndex) },
	})
	return nil
}

func (s *Store) setScenarioIndexLocked(ref TypeRef, index int) (int, int, error) {
	if ref.Type != TypeScenario {
		return 0, 0, StructuralError{Ref: ref, Op: "setScenarioIndex", Msg: "not a scenario"}
	}
	oldIndex := -1
	for i, id := range s.order {
		if id == ref.ID {
			oldIndex = i
			break
		}
	}
	if oldIndex < 0 {
		return 0, 0, StructuralError{Ref: ref, Op: "setScenarioIndex", Msg: "scenario not in order"}
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.order)-1 {
		index = len(s.order) - 1
	}
	if index == oldIndex {
		return oldIndex, index, nil
	}
	id := s.order[oldIndex]
	s.order = append(s.order[:oldIndex], s.order[oldIndex+1:]...)
	s.order = append(s.order, "")
	copy(s.order[index+1:], s.order[index:])
	s.order[index] = id
	return oldIndex, index, nil
}

// Init normalizes a document's nested component trees into the store,
// replacing all current state. Schema defaults fill omitted properties so
// loaded entities match factory-created ones. History and overrides reset.
func (s *Store) Init(ctx context.Context, components []map[string]any) error {
	state, err := Normalize(components)
	if err != nil {
		return err
	}
	s.mu.Lock()
	for t, byID := range state.Entities {
		sch, err := s.registry.For(t)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		for id, e := range byID {
			e.Props = sch.ApplyDefaults(e.Props)
			byID[id] = e
		}
	}
	s.entities = state.Entities
	s.deleted = make(map[TypeRef]domain.DeletedRecord)
	s.order = state.Order
	s.overrides.reset()
	s.mu.Unlock()
	s.history.Clear()
	return s.persist(ctx)
}

// Export denormalizes the live entities over the current scenario order.
// Soft-deleted entities and overrides never appear in the output.
func (s *Store) Export() []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Denormalize(s.order, s.entities)
}

// ScenarioOrder returns the top-level scenario id sequence.
func (s *Store) ScenarioOrder() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

func (s *Store) lookupLocked(ref TypeRef) (Entity, bool) {
	byID, ok := s.entities[ref.Type]
	if !ok {
		return Entity{}, false
	}
	e, ok := byID[ref.ID]
	if !ok {
		return Entity{}, false
	}
	return e.Clone(), true
}

func (s *Store) notify(changes []Change) {
	if len(changes) == 0 {
		return
	}
	s.mu.RLock()
	observers := append([]Observer(nil), s.observers...)
	s.mu.RUnlock()
	for _, fn := range observers {
		for _, ch := range changes {
			fn(ch)
		}
	}
}

func (s *Store) persist(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	snap := s.ExportState()
	if err := s.snapshots.SaveState(ctx, snap); err != nil {
		s.logger.Error("snapshot persist failed", "error", err)
		return err
	}
	return nil
}
