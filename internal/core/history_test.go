package core

import (
	"context"
	"errors"
	"testing"

	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

func TestUndoRedoUpdate(t *testing.T) {
	s := newTestStore()
	_, _, p1, _ := seedSynchedBlock(t, s)
	ctx := context.Background()

	if _, err := s.Update(ctx, p1.Ref(), map[string]any{"name": "first"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.Update(ctx, p1.Ref(), map[string]any{"name": "second"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := s.History().Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	e, _ := s.Get(p1.Ref())
	if e.Name() != "first" {
		t.Fatalf("after undo name = %q", e.Name())
	}

	if err := s.History().Redo(ctx); err != nil {
		t.Fatalf("redo: %v", err)
	}
	e, _ = s.Get(p1.Ref())
	if e.Name() != "second" {
		t.Fatalf("after redo name = %q", e.Name())
	}
}

func TestUndoAddSoftDeletes(t *testing.T) {
	s := newTestStore()
	_, block, _, _ := seedSynchedBlock(t, s)
	blockRef := block.Ref()
	ctx := context.Background()
	p3 := mustCreate(t, s, TypePage, map[string]any{
		"id": "page-3", "start-time": float64(20), "end-time": float64(30),
	}, &blockRef, -1)

	if err := s.History().Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	var nf ErrNotFound
	if _, err := s.Get(p3.Ref()); !errors.As(err, &nf) {
		t.Fatalf("undone add must hide the entity, got %v", err)
	}

	if err := s.History().Redo(ctx); err != nil {
		t.Fatalf("redo: %v", err)
	}
	restored, err := s.Get(p3.Ref())
	if err != nil {
		t.Fatalf("redone add: %v", err)
	}
	if restored.Parent == nil || *restored.Parent != blockRef {
		t.Fatalf("redone add lost parent: %v", restored.Parent)
	}
}

func TestUndoDeleteRestoresPlacement(t *testing.T) {
	s := newTestStore()
	_, block, p1, p2 := seedSynchedBlock(t, s)
	ctx := context.Background()

	if err := s.Delete(ctx, p1.Ref()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.History().Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	parent, _ := s.Get(block.Ref())
	refs := parent.Children()
	if len(refs) != 2 || refs[0] != p1.Ref() || refs[1] != p2.Ref() {
		t.Fatalf("children after undo = %v", refs)
	}
}

func TestUndoScenarioReorder(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s, TypeScenario, map[string]any{"id": "sc-a"}, nil, -1)
	b := mustCreate(t, s, TypeScenario, map[string]any{"id": "sc-b"}, nil, -1)
	mustCreate(t, s, TypeScenario, map[string]any{"id": "sc-c"}, nil, -1)
	ctx := context.Background()

	if err := s.SetScenarioIndex(ctx, b.Ref(), 0); err != nil {
		t.Fatalf("set index: %v", err)
	}
	if err := s.History().Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if got := s.ScenarioOrder(); got[0] != "sc-a" || got[1] != "sc-b" || got[2] != "sc-c" {
		t.Fatalf("order after undo = %v", got)
	}
	if err := s.History().Redo(ctx); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if got := s.ScenarioOrder(); got[0] != "sc-b" {
		t.Fatalf("order after redo = %v", got)
	}
}

func TestUndoClone(t *testing.T) {
	s := newTestStore()
	scenario, block, _, _ := seedSynchedBlock(t, s)
	scRef := scenario.Ref()
	ctx := context.Background()

	clone, err := s.Clone(ctx, block.Ref(), nil, &scRef)
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if err := s.History().Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	var nf ErrNotFound
	if _, err := s.Get(clone.Ref()); !errors.As(err, &nf) {
		t.Fatalf("undone clone still live: %v", err)
	}
	children, _ := s.Children(scRef)
	if len(children) != 1 {
		t.Fatalf("scenario children after undo = %d", len(children))
	}
}

func TestPushClearsRedo(t *testing.T) {
	s := newTestStore()
	_, _, p1, _ := seedSynchedBlock(t, s)
	ctx := context.Background()

	if _, err := s.Update(ctx, p1.Ref(), map[string]any{"name": "kept"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.History().Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !s.History().CanRedo() {
		t.Fatalf("expected redoable entry")
	}
	if _, err := s.Update(ctx, p1.Ref(), map[string]any{"name": "diverged"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if s.History().CanRedo() {
		t.Fatalf("new mutation must clear redo")
	}
}

func TestEmptyStacksAreNoOps(t *testing.T) {
	h := NewHistory()
	ctx := context.Background()
	if err := h.Undo(ctx); err != nil {
		t.Fatalf("undo empty: %v", err)
	}
	if err := h.Redo(ctx); err != nil {
		t.Fatalf("redo empty: %v", err)
	}
	if h.CanUndo() || h.CanRedo() {
		t.Fatalf("empty history reports pending entries")
	}
}

func TestFailedUndoStaysOnStack(t *testing.T) {
	h := NewHistory()
	boom := errors.New("boom")
	attempts := 0
	h.Push(Command{
		Undo: func(context.Context) error {
			attempts++
			if attempts == 1 {
				return boom
			}
			return nil
		},
		Redo: func(context.Context) error { return nil },
	})

	ctx := context.Background()
	if err := h.Undo(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected failure, got %v", err)
	}
	if !h.CanUndo() {
		t.Fatalf("failed undo must keep the command")
	}
	if err := h.Undo(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if h.CanUndo() || !h.CanRedo() {
		t.Fatalf("retried undo must move the command")
	}
}

func TestReplaySuppressesRecording(t *testing.T) {
	s := NewStore(WithMediaClock(&domain.StaticMediaClock{Length: 100}))
	scenario := mustCreate(t, s, TypeScenario, nil, nil, -1)
	ctx := context.Background()

	s.History().Clear()
	if _, err := s.Update(ctx, scenario.Ref(), map[string]any{"name": "solo"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.History().Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if s.History().CanUndo() {
		t.Fatalf("replay re-entered the undo stack")
	}
	if err := s.History().Redo(ctx); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if !s.History().CanUndo() || s.History().CanRedo() {
		t.Fatalf("redo must restore the single undoable entry")
	}
}
