package core

import (
	"context"
	"sync"
)

// Command is one reversible store action. Undo and Redo are symmetric
// closures over the store's own mutation API.
type Command struct {
	Undo func(ctx context.Context) error
	Redo func(ctx context.Context) error
}

// History is an undo/redo stack of commands. Replaying a command suppresses
// recording so the inverse operation does not re-enter the stack.
type History struct {
	mu        sync.Mutex
	undo      []Command
	redo      []Command
	replaying bool
}

func NewHistory() *History { return &History{} }

// Push records a command as the newest undoable action and clears the redo
// stack. Calls made while a replay is in flight are dropped.
func (h *History) Push(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.replaying {
		return
	}
	h.undo = append(h.undo, cmd)
	h.redo = nil
}

// CanUndo reports whether an undoable action exists.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether an undone action can be replayed.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Undo reverses the newest recorded action. It is a no-op when the stack is
// empty. A failed undo leaves the command on the stack.
func (h *History) Undo(ctx context.Context) error {
	h.mu.Lock()
	if h.replaying || len(h.undo) == 0 {
		h.mu.Unlock()
		return nil
	}
	cmd := h.undo[len(h.undo)-1]
	h.replaying = true
	h.mu.Unlock()

	err := cmd.Undo(ctx)

	h.mu.Lock()
	h.replaying = false
	if err == nil {
		h.undo = h.undo[:len(h.undo)-1]
		h.redo = append(h.redo, cmd)
	}
	h.mu.Unlock()
	return err
}

// Redo replays the newest undone action.
func (h *History) Redo(ctx context.Context) error {
	h.mu.Lock()
	if h.replaying || len(h.redo) == 0 {
		h.mu.Unlock()
		return nil
	}
	cmd := h.redo[len(h.redo)-1]
	h.replaying = true
	h.mu.Unlock()

	err := cmd.Redo(ctx)

	h.mu.Lock()
	h.replaying = false
	if err == nil {
		h.redo = h.redo[:len(h.redo)-1]
		h.undo = append(h.undo, cmd)
	}
	h.mu.Unlock()
	return err
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.mu.Lock()
	h.undo = nil
	h.redo = nil
	h.mu.Unlock()
}

// recording reports whether pushes would currently be honored.
func (h *History) recording() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.replaying
}
