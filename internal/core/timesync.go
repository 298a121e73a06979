package core

import (
	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

// timeCapable reports whether the type's schema declares time bounds.
func (s *Store) timeCapable(t EntityType) bool {
	sch, err := s.registry.For(t)
	if err != nil {
		return false
	}
	_, ok := sch.Properties[domain.PropStartTime]
	return ok
}

// clampLocked enforces the containment invariant on e's time bounds: start
// at or after the parent's start (0 when unset), end at or before the
// parent's end (the media duration when unset). Entities without a
// time-capable parent are left alone.
func (s *Store) clampLocked(e *Entity) {
	if e.Parent == nil || !s.timeCapable(e.Type) || !s.timeCapable(e.Parent.Type) {
		return
	}
	p, ok := s.lookupLocked(*e.Parent)
	if !ok {
		return
	}

	lower := 0.0
	if v := p.TimeBound(domain.PropStartTime); v != nil {
		lower = *v
	}
	var upper *float64
	if v := p.TimeBound(domain.PropEndTime); v != nil {
		upper = v
	} else if s.clock != nil {
		if d := s.clock.Duration(); d > 0 {
			upper = &d
		}
	}

	if start := e.TimeBound(domain.PropStartTime); start != nil && *start < lower {
		e.Props[domain.PropStartTime] = lower
	}
	if end := e.TimeBound(domain.PropEndTime); end != nil && upper != nil && *end > *upper {
		e.Props[domain.PropEndTime] = *upper
	}
}

// synchedSiblings resolves e's position among the pages of its synched
// Block parent. ok is false when e is not a page of a synched block or is
// missing from the pages list.
func (s *Store) synchedSiblings(e Entity) (pages []TypeRef, index int, ok bool) {
	if e.Type != TypePage || e.Parent == nil || e.Parent.Type != TypeBlock {
		return nil, 0, false
	}
	block, found := s.lookupLocked(*e.Parent)
	if !found || !block.IsSynched() {
		return nil, 0, false
	}
	pages = domain.RefList(block.Props[domain.ChildrenProperty(TypeBlock)])
	for i, r := range pages {
		if r == e.Ref() {
			return pages, i, true
		}
	}
	return nil, 0, false
}

// contiguityLocked keeps a synched block's pages pairwise contiguous after
// e's bounds changed: the previous page's end follows e's start, the next
// page's start follows e's end.
func (s *Store) contiguityLocked(e Entity, touchedStart, touchedEnd bool) []Change {
	pages, i, ok := s.synchedSiblings(e)
	if !ok {
		return nil
	}
	var changes []Change
	if touchedStart && i > 0 {
		if v := e.TimeBound(domain.PropStartTime); v != nil {
			changes = append(changes, s.assignBoundLocked(pages[i-1], domain.PropEndTime, *v)...)
		}
	}
	if touchedEnd && i < len(pages)-1 {
		if v := e.TimeBound(domain.PropEndTime); v != nil {
			changes = append(changes, s.assignBoundLocked(pages[i+1], domain.PropStartTime, *v)...)
		}
	}
	return changes
}

// deleteCascadeLocked closes the timeline gap a deleted page would leave.
// With both neighbors present the deleted page's midpoint joins them; with
// a single neighbor the deleted page's adjacent bound is assigned, which
// leaves an already-contiguous neighbor unchanged.
func (s *Store) deleteCascadeLocked(e Entity) []Change {
	pages, i, ok := s.synchedSiblings(e)
	if !ok {
		return nil
	}
	start := e.TimeBound(domain.PropStartTime)
	end := e.TimeBound(domain.PropEndTime)
	hasPrev := i > 0
	hasNext := i < len(pages)-1

	var changes []Change
	switch {
	case hasPrev && hasNext:
		var joint *float64
		switch {
		case start != nil && end != nil:
			m := (*start + *end) / 2
			joint = &m
		case start != nil:
			joint = start
		case end != nil:
			joint = end
		}
		if joint != nil {
			changes = append(changes, s.assignBoundLocked(pages[i-1], domain.PropEndTime, *joint)...)
			changes = append(changes, s.assignBoundLocked(pages[i+1], domain.PropStartTime, *joint)...)
		}
	case hasNext:
		if end != nil {
			changes = append(changes, s.assignBoundLocked(pages[i+1], domain.PropStartTime, *end)...)
		}
	case hasPrev:
		if start != nil {
			changes = append(changes, s.assignBoundLocked(pages[i-1], domain.PropEndTime, *start)...)
		}
	}
	return changes
}

// restoreCascadeLocked pushes neighboring page bounds back out to the
// restored page's own bounds. Runs after the page has rejoined the list.
func (s *Store) restoreCascadeLocked(e Entity) []Change {
	pages, i, ok := s.synchedSiblings(e)
	if !ok {
		return nil
	}
	var changes []Change
	if i > 0 {
		if v := e.TimeBound(domain.PropStartTime); v != nil {
			changes = append(changes, s.assignBoundLocked(pages[i-1], domain.PropEndTime, *v)...)
		}
	}
	if i < len(pages)-1 {
		if v := e.TimeBound(domain.PropEndTime); v != nil {
			changes = append(changes, s.assignBoundLocked(pages[i+1], domain.PropStartTime, *v)...)
		}
	}
	return changes
}

// assignBoundLocked sets a single time bound on a sibling without
// re-entering validation or further cascades.
func (s *Store) assignBoundLocked(ref TypeRef, prop string, value float64) []Change {
	e, ok := s.lookupLocked(ref)
	if !ok {
		return nil
	}
	prior := e.TimeBound(prop)
	if prior != nil && *prior == value {
		return nil
	}
	var before any
	if prior != nil {
		before = *prior
	}
	e.Props[prop] = value
	s.entities[e.Type][e.ID] = e
	return []Change{{
		Ref:    ref,
		Action: ActionUpdate,
		Before: map[string]any{prop: before},
		After:  map[string]any{prop: value},
	}}
}
