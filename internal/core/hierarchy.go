package core

import (
	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

// Parent returns the entity's parent. ok is false for top-level scenarios
// and dangling back-references.
func (s *Store) Parent(ref TypeRef) (Entity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, found := s.lookupLocked(ref)
	if !found {
		return Entity{}, false, ErrNotFound{Ref: ref}
	}
	if e.Parent == nil {
		return Entity{}, false, nil
	}
	p, found := s.lookupLocked(*e.Parent)
	if !found {
		return Entity{}, false, nil
	}
	return p.Clone(), true, nil
}

// Children resolves the entity's ordered children. Dangling references are
// skipped; non-container types yield an empty list.
func (s *Store) Children(ref TypeRef) ([]Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, found := s.lookupLocked(ref)
	if !found {
		return nil, ErrNotFound{Ref: ref}
	}
	return s.childrenLocked(e), nil
}

func (s *Store) childrenLocked(e Entity) []Entity {
	refs := e.Children()
	out := make([]Entity, 0, len(refs))
	for _, r := range refs {
		if c, ok := s.lookupLocked(r); ok {
			out = append(out, c.Clone())
		}
	}
	return out
}

// Siblings returns the children of the entity's parent, excluding the
// entity itself.
func (s *Store) Siblings(ref TypeRef) ([]Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, found := s.lookupLocked(ref)
	if !found {
		return nil, ErrNotFound{Ref: ref}
	}
	if e.Parent == nil {
		return []Entity{}, nil
	}
	p, found := s.lookupLocked(*e.Parent)
	if !found {
		return []Entity{}, nil
	}
	siblings := make([]Entity, 0)
	for _, c := range s.childrenLocked(p) {
		if c.Ref() != ref {
			siblings = append(siblings, c)
		}
	}
	return siblings, nil
}

// Index returns the entity's position in its parent's children list, or -1
// for entities without a parent.
func (s *Store) Index(ref TypeRef) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, found := s.lookupLocked(ref)
	if !found {
		return -1, ErrNotFound{Ref: ref}
	}
	if e.Parent == nil {
		return -1, nil
	}
	p, found := s.lookupLocked(*e.Parent)
	if !found {
		return -1, nil
	}
	for i, r := range p.Children() {
		if r == ref {
			return i, nil
		}
	}
	return -1, nil
}

// HasChildren reports whether the entity's children list is non-empty.
func (s *Store) HasChildren(ref TypeRef) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, found := s.lookupLocked(ref)
	if !found {
		return false, ErrNotFound{Ref: ref}
	}
	return len(e.Children()) > 0, nil
}

// Find depth-first searches every live scenario tree in top-level order and
// returns the first entity matching pred.
func (s *Store) Find(pred func(Entity) bool) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		root, ok := s.lookupLocked(TypeRef{Type: TypeScenario, ID: id})
		if !ok {
			continue
		}
		if found, ok := s.findLocked(root, pred); ok {
			return found, true
		}
	}
	return Entity{}, false
}

func (s *Store) findLocked(e Entity, pred func(Entity) bool) (Entity, bool) {
	if pred(e.Clone()) {
		return e.Clone(), true
	}
	for _, r := range e.Children() {
		c, ok := s.lookupLocked(r)
		if !ok {
			continue
		}
		if found, ok := s.findLocked(c, pred); ok {
			return found, true
		}
	}
	return Entity{}, false
}

// SetOverrides installs or replaces the override set stored under key for
// the entity, re-sorting by descending priority.
func (s *Store) SetOverrides(ref TypeRef, key string, values map[string]any, priority int) {
	s.mu.Lock()
	s.overrides.set(ref, key, values, priority)
	s.mu.Unlock()
}

// GetOverrides returns every override set on the entity, highest priority
// first.
func (s *Store) GetOverrides(ref TypeRef) []Override {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overrides.get(ref)
}

// GetOverride returns the override set stored under key.
func (s *Store) GetOverride(ref TypeRef, key string) (Override, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overrides.getKey(ref, key)
}

// ClearOverrides removes the named override keys, or all of them when none
// are given.
func (s *Store) ClearOverrides(ref TypeRef, keys ...string) {
	s.mu.Lock()
	s.overrides.clear(ref, keys...)
	s.mu.Unlock()
}

// HasOverrides reports whether any of the named keys (or any at all) are
// set on the entity.
func (s *Store) HasOverrides(ref TypeRef, keys ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overrides.has(ref, keys...)
}

// SetOverridesEnabled toggles override resolution in PropertyValue.
func (s *Store) SetOverridesEnabled(enabled bool) {
	s.mu.Lock()
	s.overrides.enabled = enabled
	s.mu.Unlock()
}

// PropertyValue reads a property through the override layer: the highest
// priority override set defining name wins, otherwise the stored value is
// returned.
func (s *Store) PropertyValue(ref TypeRef, name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, found := s.lookupLocked(ref)
	if !found {
		return nil, ErrNotFound{Ref: ref}
	}
	if v, ok := s.overrides.resolve(ref, name); ok {
		return v, nil
	}
	return domain.CloneValue(e.Props[name]), nil
}
