package core

import (
	"reflect"
	"testing"
)

func nestedFixture() []map[string]any {
	return []map[string]any{
		{
			"type": "Scenario",
			"id":   "scenario-1",
			"name": "Main",
			"children": []any{
				map[string]any{
					"type":    "Block",
					"id":      "block-1",
					"synched": true,
					"pages": []any{
						map[string]any{
							"type":       "Page",
							"id":         "page-1",
							"start-time": float64(0),
							"end-time":   float64(10),
							"children": []any{
								map[string]any{"type": "Content", "id": "content-1", "text": "hello"},
							},
						},
						map[string]any{
							"type":       "Page",
							"id":         "page-2",
							"start-time": float64(10),
							"end-time":   float64(20),
							"children":   []any{},
						},
					},
				},
				map[string]any{"type": "Controller", "id": "controller-1"},
			},
		},
		{
			"type":     "Scenario",
			"id":       "scenario-2",
			"name":     "Alt",
			"children": []any{},
		},
	}
}

func TestNormalizeFlattensAllDepths(t *testing.T) {
	state, err := Normalize(nestedFixture())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !reflect.DeepEqual(state.Order, []string{"scenario-1", "scenario-2"}) {
		t.Fatalf("order = %v", state.Order)
	}
	counts := map[EntityType]int{
		TypeScenario: 2, TypeBlock: 1, TypePage: 2, TypeContent: 1, TypeController: 1,
	}
	for typ, want := range counts {
		if got := len(state.Entities[typ]); got != want {
			t.Fatalf("%s count = %d, want %d", typ, got, want)
		}
	}

	block := state.Entities[TypeBlock]["block-1"]
	if block.Parent == nil || *block.Parent != (TypeRef{Type: TypeScenario, ID: "scenario-1"}) {
		t.Fatalf("block parent = %v", block.Parent)
	}
	pages := block.Children()
	if len(pages) != 2 || pages[0].ID != "page-1" || pages[1].ID != "page-2" {
		t.Fatalf("block pages = %v", pages)
	}
	content := state.Entities[TypeContent]["content-1"]
	if content.Parent == nil || content.Parent.ID != "page-1" {
		t.Fatalf("content parent = %v", content.Parent)
	}
}

func TestNormalizeRejectsMalformedNodes(t *testing.T) {
	if _, err := Normalize([]map[string]any{{"type": "Scenario"}}); err == nil {
		t.Fatalf("expected error for missing id")
	}
	if _, err := Normalize([]map[string]any{{"type": "Block", "id": "b"}}); err == nil {
		t.Fatalf("expected error for non-scenario root")
	}
	dup := []map[string]any{
		{"type": "Scenario", "id": "s", "children": []any{}},
		{"type": "Scenario", "id": "s", "children": []any{}},
	}
	if _, err := Normalize(dup); err == nil {
		t.Fatalf("expected error for duplicate id")
	}
}

func TestDenormalizeRoundTrip(t *testing.T) {
	fixture := nestedFixture()
	state, err := Normalize(fixture)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	rebuilt := Denormalize(state.Order, state.Entities)
	if !reflect.DeepEqual(rebuilt, fixture) {
		t.Fatalf("round trip drifted:\nwant %v\ngot  %v", fixture, rebuilt)
	}
}

func TestDenormalizeDropsDanglingRefs(t *testing.T) {
	state, err := Normalize(nestedFixture())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	delete(state.Entities[TypePage], "page-2")
	delete(state.Entities[TypeScenario], "scenario-2")

	rebuilt := Denormalize(state.Order, state.Entities)
	if len(rebuilt) != 1 {
		t.Fatalf("missing scenario should be dropped, got %d trees", len(rebuilt))
	}
	children := rebuilt[0]["children"].([]any)
	block := children[0].(map[string]any)
	pages := block["pages"].([]any)
	if len(pages) != 1 || pages[0].(map[string]any)["id"] != "page-1" {
		t.Fatalf("dangling page should be dropped, got %v", pages)
	}
}
