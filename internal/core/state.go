package core

import (
	"sort"

	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

// ExportState captures the full store state as a serializable snapshot.
// Deleted records are sorted by (type, id) for deterministic encoding.
func (s *Store) ExportState() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entities := make(map[EntityType]map[string]Entity, len(s.entities))
	for t, byID := range s.entities {
		if len(byID) == 0 {
			continue
		}
		cp := make(map[string]Entity, len(byID))
		for id, e := range byID {
			cp[id] = e.Clone()
		}
		entities[t] = cp
	}

	deleted := make([]domain.DeletedRecord, 0, len(s.deleted))
	for _, rec := range s.deleted {
		e := rec.Entity.Clone()
		var parent *TypeRef
		if e.Parent != nil {
			p := *e.Parent
			parent = &p
		}
		deleted = append(deleted, domain.DeletedRecord{
			Entity:     e,
			Parent:     parent,
			ChildIndex: rec.ChildIndex,
			OrderIndex: rec.OrderIndex,
		})
	}
	sort.Slice(deleted, func(i, j int) bool {
		a, b := deleted[i].Entity.Ref(), deleted[j].Entity.Ref()
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.ID < b.ID
	})

	return domain.Snapshot{
		Entities: entities,
		Deleted:  deleted,
		Order:    append([]string(nil), s.order...),
	}
}

// ImportState replaces the store's state with the snapshot. Parent
// back-references are rebuilt from the children lists since snapshots do
// not serialize them. History and overrides reset.
func (s *Store) ImportState(snap domain.Snapshot) {
	s.mu.Lock()
	entities := make(map[EntityType]map[string]Entity, len(snap.Entities))
	for t, byID := range snap.Entities {
		cp := make(map[string]Entity, len(byID))
		for id, e := range byID {
			e = e.Clone()
			e.Type = t
			e.ID = id
			cp[id] = e
		}
		entities[t] = cp
	}
	relink(entities)

	deleted := make(map[TypeRef]domain.DeletedRecord, len(snap.Deleted))
	for _, rec := range snap.Deleted {
		e := rec.Entity.Clone()
		if rec.Parent != nil {
			p := *rec.Parent
			e.Parent = &p
		}
		deleted[e.Ref()] = domain.DeletedRecord{
			Entity:     e,
			ChildIndex: rec.ChildIndex,
			OrderIndex: rec.OrderIndex,
		}
	}

	s.entities = entities
	s.deleted = deleted
	s.order = append([]string(nil), snap.Order...)
	s.overrides.reset()
	s.mu.Unlock()
	s.history.Clear()
}

// relink rebuilds weak parent references from children lists.
func relink(entities map[EntityType]map[string]Entity) {
	for t, byID := range entities {
		for id, e := range byID {
			parent := TypeRef{Type: t, ID: id}
			for _, ref := range e.Children() {
				childByID, ok := entities[ref.Type]
				if !ok {
					continue
				}
				child, ok := childByID[ref.ID]
				if !ok {
					continue
				}
				p := parent
				child.Parent = &p
				childByID[ref.ID] = child
			}
		}
	}
}
