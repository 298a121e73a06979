package core

import (
	"sort"

	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

// Override is one keyed, prioritized value set layered over an entity at
// read time. Overrides never touch stored data and never serialize.
type Override struct {
	Key      string
	Priority int
	Values   map[string]any
}

// overrideSet holds per-entity override lists, kept sorted by descending
// priority with insertion order breaking ties.
type overrideSet struct {
	enabled bool
	byRef   map[TypeRef][]Override
}

func newOverrideSet() *overrideSet {
	return &overrideSet{enabled: true, byRef: make(map[TypeRef][]Override)}
}

func (o *overrideSet) set(ref TypeRef, key string, values map[string]any, priority int) {
	entry := Override{Key: key, Priority: priority, Values: domain.CloneProps(values)}
	list := o.byRef[ref]
	replaced := false
	for i := range list {
		if list[i].Key == key {
			list[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, entry)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Priority > list[j].Priority })
	o.byRef[ref] = list
}

func (o *overrideSet) get(ref TypeRef) []Override {
	list := o.byRef[ref]
	out := make([]Override, 0, len(list))
	for _, e := range list {
		out = append(out, Override{Key: e.Key, Priority: e.Priority, Values: domain.CloneProps(e.Values)})
	}
	return out
}

func (o *overrideSet) getKey(ref TypeRef, key string) (Override, bool) {
	for _, e := range o.byRef[ref] {
		if e.Key == key {
			return Override{Key: e.Key, Priority: e.Priority, Values: domain.CloneProps(e.Values)}, true
		}
	}
	return Override{}, false
}

// clear removes the named keys, or every set when no key is given.
func (o *overrideSet) clear(ref TypeRef, keys ...string) {
	if len(keys) == 0 {
		delete(o.byRef, ref)
		return
	}
	list := o.byRef[ref]
	kept := list[:0]
	for _, e := range list {
		drop := false
		for _, k := range keys {
			if e.Key == k {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(o.byRef, ref)
	} else {
		o.byRef[ref] = kept
	}
}

func (o *overrideSet) has(ref TypeRef, keys ...string) bool {
	list := o.byRef[ref]
	if len(keys) == 0 {
		return len(list) > 0
	}
	for _, e := range list {
		for _, k := range keys {
			if e.Key == k {
				return true
			}
		}
	}
	return false
}

// resolve returns the highest-priority override value defining name, if any.
func (o *overrideSet) resolve(ref TypeRef, name string) (any, bool) {
	if !o.enabled {
		return nil, false
	}
	for _, e := range o.byRef[ref] {
		if v, ok := e.Values[name]; ok {
			return domain.CloneValue(v), true
		}
	}
	return nil, false
}

func (o *overrideSet) reset() {
	o.byRef = make(map[TypeRef][]Override)
}
