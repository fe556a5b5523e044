// Package undo provides an undo/redo repository for text edits.
// Entries store go-diff patches in both directions rather than full
// snapshots.
package undo

import (
	"errors"
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrPatchFailed   = errors.New("patch did not apply cleanly")
)

// Entry is one undoable edit.
type Entry struct {
	Name    string
	forward []diffmatchpatch.Patch
	reverse []diffmatchpatch.Patch
}

// Repository holds the undo and redo stacks for one module.
type Repository struct {
	dmp  *diffmatchpatch.DiffMatchPatch
	undo []Entry
	redo []Entry
}

// New creates an empty repository.
func New() *Repository {
	return &Repository{dmp: diffmatchpatch.New()}
}

// Record pushes the edit that turned before into after and clears the redo
// stack. No-op edits are not recorded.
func (r *Repository) Record(name, before, after string) {
	if before == after {
		return
	}
	r.undo = append(r.undo, Entry{
		Name:    name,
		forward: r.dmp.PatchMake(before, after),
		reverse: r.dmp.PatchMake(after, before),
	})
	r.redo = nil
}

// Undo reverts the most recent entry against current and returns the
// resulting text.
func (r *Repository) Undo(current string) (string, error) {
	if len(r.undo) == 0 {
		return current, ErrNothingToUndo
	}
	entry := r.undo[len(r.undo)-1]
	text, err := r.apply(entry.reverse, current)
	if err != nil {
		return current, fmt.Errorf("undo %q: %w", entry.Name, err)
	}
	r.undo = r.undo[:len(r.undo)-1]
	r.redo = append(r.redo, entry)
	return text, nil
}

// Redo reapplies the most recently undone entry.
func (r *Repository) Redo(current string) (string, error) {
	if len(r.redo) == 0 {
		return current, ErrNothingToRedo
	}
	entry := r.redo[len(r.redo)-1]
	text, err := r.apply(entry.forward, current)
	if err != nil {
		return current, fmt.Errorf("redo %q: %w", entry.Name, err)
	}
	r.redo = r.redo[:len(r.redo)-1]
	r.undo = append(r.undo, entry)
	return text, nil
}

func (r *Repository) apply(patches []diffmatchpatch.Patch, text string) (string, error) {
	out, applied := r.dmp.PatchApply(patches, text)
	for _, ok := range applied {
		if !ok {
			return text, ErrPatchFailed
		}
	}
	return out, nil
}

// ClearAll empties both stacks.
func (r *Repository) ClearAll() {
	r.undo = nil
	r.redo = nil
}

// UndoLen returns the number of undoable entries.
func (r *Repository) UndoLen() int { return len(r.undo) }

// RedoLen returns the number of redoable entries.
func (r *Repository) RedoLen() int { return len(r.redo) }

// Len returns the total number of entries on both stacks.
func (r *Repository) Len() int { return len(r.undo) + len(r.redo) }

// Names lists undoable entry names, oldest first.
func (r *Repository) Names() []string {
	names := make([]string, len(r.undo))
	for i, e := range r.undo {
		names[i] = e.Name
	}
	return names
}
