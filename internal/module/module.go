// Package module holds the text model of a project's main module.
// Every edit goes through Apply and is recorded in the module's undo
// history.
package module

import (
	"errors"
	"fmt"

	"github.com/zjrosen/atelier/internal/undo"
)

// ErrInvalidRange is returned when an edit range falls outside the text.
var ErrInvalidRange = errors.New("edit range out of bounds")

// Edit replaces the byte range [Start, End) with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Model is the main module of an open project.
type Model struct {
	path    string
	text    string
	version int
	history *undo.Repository
}

// New creates a model for the module stored at path. A nil history gets a
// fresh repository.
func New(path, text string, history *undo.Repository) *Model {
	if history == nil {
		history = undo.New()
	}
	return &Model{path: path, text: text, history: history}
}

// Path returns the file the module was loaded from.
func (m *Model) Path() string { return m.path }

// Text returns the current module source.
func (m *Model) Text() string { return m.text }

// Version increments on every change, including undo and redo.
func (m *Model) Version() int { return m.version }

// History returns the undo/redo repository shared with the graph.
func (m *Model) History() *undo.Repository { return m.history }

// Apply performs e and records it under name.
func (m *Model) Apply(name string, e Edit) error {
	if e.Start < 0 || e.End < e.Start || e.End > len(m.text) {
		return fmt.Errorf("%w: [%d,%d) in %d bytes", ErrInvalidRange, e.Start, e.End, len(m.text))
	}
	before := m.text
	after := before[:e.Start] + e.Text + before[e.End:]
	if after == before {
		return nil
	}
	m.history.Record(name, before, after)
	m.set(after)
	return nil
}

// Replace swaps the whole text as one undoable edit.
func (m *Model) Replace(name, text string) error {
	return m.Apply(name, Edit{Start: 0, End: len(m.text), Text: text})
}

// Undo reverts the most recent edit.
func (m *Model) Undo() error {
	text, err := m.history.Undo(m.text)
	if err != nil {
		return err
	}
	m.set(text)
	return nil
}

// Redo reapplies the most recently undone edit.
func (m *Model) Redo() error {
	text, err := m.history.Redo(m.text)
	if err != nil {
		return err
	}
	m.set(text)
	return nil
}

func (m *Model) set(text string) {
	m.text = text
	m.version++
}
