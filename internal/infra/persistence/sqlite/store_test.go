package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/philharmoniedeparis/metascore-library-sub004/internal/core"
	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(path, core.WithMediaClock(&domain.StaticMediaClock{Length: 100}))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.db")
	ctx := context.Background()

	s := openTestStore(t, path)
	scenario, err := s.Factory().Create(ctx, domain.TypeScenario, map[string]any{"id": "scenario-1"}, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Add(ctx, scenario, nil, -1); err != nil {
		t.Fatalf("add: %v", err)
	}
	scRef := scenario.Ref()
	block, err := s.Factory().Create(ctx, domain.TypeBlock, map[string]any{"id": "block-1", "synched": true}, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Add(ctx, block, &scRef, -1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.Update(ctx, block.Ref(), map[string]any{"name": "intro"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openTestStore(t, path)
	e, err := reopened.Get(block.Ref())
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if e.Name() != "intro" {
		t.Fatalf("name after reopen = %q", e.Name())
	}
	if e.Parent == nil || *e.Parent != scRef {
		t.Fatalf("parent after reopen = %v", e.Parent)
	}
	if got := reopened.ScenarioOrder(); len(got) != 1 || got[0] != "scenario-1" {
		t.Fatalf("order after reopen = %v", got)
	}
}

func TestDeletedEntitiesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.db")
	ctx := context.Background()

	s := openTestStore(t, path)
	scenario, err := s.Factory().Create(ctx, domain.TypeScenario, map[string]any{"id": "scenario-1"}, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Add(ctx, scenario, nil, -1); err != nil {
		t.Fatalf("add: %v", err)
	}
	scRef := scenario.Ref()
	block, err := s.Factory().Create(ctx, domain.TypeBlock, map[string]any{"id": "block-1"}, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Add(ctx, block, &scRef, -1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Delete(ctx, block.Ref()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openTestStore(t, path)
	if _, err := reopened.Get(block.Ref()); err == nil {
		t.Fatalf("deleted entity came back live")
	}
	restored, err := reopened.Restore(ctx, block.Ref())
	if err != nil {
		t.Fatalf("restore after reopen: %v", err)
	}
	if restored.Parent == nil || *restored.Parent != scRef {
		t.Fatalf("restored parent = %v", restored.Parent)
	}
}

func TestFreshDatabaseStartsEmpty(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "nested", "doc.db"))
	if got := s.All(); len(got) != 0 {
		t.Fatalf("fresh store holds %d entities", len(got))
	}
	if got := s.ScenarioOrder(); len(got) != 0 {
		t.Fatalf("fresh order = %v", got)
	}
}
