package core

import (
	"fmt"

	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

// NormalizedState is the flat form of a nested component tree: entities
// keyed per type by id, plus the top-level scenario ids in authored order.
type NormalizedState struct {
	Entities map[EntityType]map[string]Entity
	Order    []string
}

// Normalize flattens nested scenario trees into per-type entity maps. Every
// node's inline children are replaced by {type,id} reference lists and each
// visited child is stamped with a weak parent back-reference. Nodes missing
// a type or id are rejected.
func Normalize(trees []map[string]any) (NormalizedState, error) {
	state := NormalizedState{Entities: make(map[EntityType]map[string]Entity)}
	for i, node := range trees {
		entity, err := flatten(node, nil, &state)
		if err != nil {
			return NormalizedState{}, fmt.Errorf("scenario %d: %w", i, err)
		}
		if entity.Type != TypeScenario {
			return NormalizedState{}, fmt.Errorf("scenario %d: unexpected top-level type %q", i, entity.Type)
		}
		state.Order = append(state.Order, entity.ID)
	}
	return state, nil
}

func flatten(node map[string]any, parent *TypeRef, state *NormalizedState) (Entity, error) {
	t, _ := node["type"].(string)
	id, _ := node["id"].(string)
	if t == "" || id == "" {
		return Entity{}, fmt.Errorf("node missing type or id")
	}
	entity := Entity{Type: EntityType(t), ID: id, Props: make(map[string]any, len(node))}
	if parent != nil {
		p := *parent
		entity.Parent = &p
	}
	for k, v := range node {
		if k == "type" || k == "id" {
			continue
		}
		entity.Props[k] = domain.CloneValue(v)
	}

	if childProp := domain.ChildrenProperty(entity.Type); childProp != "" {
		raw, ok := node[childProp].([]any)
		if ok {
			self := entity.Ref()
			refs := make([]TypeRef, 0, len(raw))
			for _, c := range raw {
				childNode, ok := c.(map[string]any)
				if !ok {
					return Entity{}, fmt.Errorf("%s: child of %s is not an object", childProp, self)
				}
				child, err := flatten(childNode, &self, state)
				if err != nil {
					return Entity{}, err
				}
				refs = append(refs, child.Ref())
			}
			entity.Props[childProp] = refs
		}
	}

	if state.Entities[entity.Type] == nil {
		state.Entities[entity.Type] = make(map[string]Entity)
	}
	if _, dup := state.Entities[entity.Type][entity.ID]; dup {
		return Entity{}, fmt.Errorf("duplicate id %s", entity.Ref())
	}
	state.Entities[entity.Type][entity.ID] = entity
	return entity, nil
}

// Denormalize reconstructs nested scenario trees from the flat state.
// References that cannot be resolved are dropped so partial documents stay
// loadable.
func Denormalize(order []string, entities map[EntityType]map[string]Entity) []map[string]any {
	trees := make([]map[string]any, 0, len(order))
	for _, id := range order {
		scenario, ok := lookup(entities, TypeRef{Type: TypeScenario, ID: id})
		if !ok {
			continue
		}
		trees = append(trees, nest(scenario, entities))
	}
	return trees
}

func nest(entity Entity, entities map[EntityType]map[string]Entity) map[string]any {
	node := make(map[string]any, len(entity.Props)+2)
	node["type"] = string(entity.Type)
	node["id"] = entity.ID
	childProp := domain.ChildrenProperty(entity.Type)
	for k, v := range entity.Props {
		if k == childProp {
			continue
		}
		node[k] = domain.CloneValue(v)
	}
	if raw, ok := entity.Props[childProp]; childProp != "" && ok {
		children := make([]any, 0)
		for _, ref := range domain.RefList(raw) {
			child, ok := lookup(entities, ref)
			if !ok {
				continue
			}
			children = append(children, nest(child, entities))
		}
		node[childProp] = children
	}
	return node
}

func lookup(entities map[EntityType]map[string]Entity, ref TypeRef) (Entity, bool) {
	byID, ok := entities[ref.Type]
	if !ok {
		return Entity{}, false
	}
	e, ok := byID[ref.ID]
	return e, ok
}
