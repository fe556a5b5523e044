// Package graph provides the graph-editing handle over a main module.
//
// The graph is the body of the module's `main =` block: every indented
// `name = expression` line is a node. The graph keeps no state of its own;
// it re-reads the module on every call and edits it through module.Apply,
// so graph edits land in the module's undo history.
package graph

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/zjrosen/atelier/internal/module"
	"github.com/zjrosen/atelier/internal/undo"
)

const (
	indent     = "    "
	mainHeader = "main ="
	nodePrefix = "operator"
)

var (
	ErrNoMainBlock     = errors.New("module has no main block")
	ErrNodeNotFound    = errors.New("node not found")
	ErrEmptyExpression = errors.New("expression must not be empty")
)

var nodePattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.*\S)\s*$`)

// Node is one binding in the main block.
type Node struct {
	ID         string
	Expression string
	Line       int // zero-based line in the module
}

// Controller edits the graph of one module.
type Controller struct {
	module *module.Model
}

// New creates a controller over m.
func New(m *module.Model) *Controller {
	return &Controller{module: m}
}

// Module returns the underlying module model.
func (c *Controller) Module() *module.Model { return c.module }

// UndoRedo returns the undo/redo repository graph edits are recorded in.
func (c *Controller) UndoRedo() *undo.Repository { return c.module.History() }

// Nodes lists the nodes of the main block in source order.
func (c *Controller) Nodes() ([]Node, error) {
	b, ok := parse(c.module.Text())
	if !ok {
		return nil, ErrNoMainBlock
	}
	return b.nodes(), nil
}

// HasMain reports whether the module declares a main block.
func (c *Controller) HasMain() bool {
	_, ok := parse(c.module.Text())
	return ok
}

// EnsureMain appends an empty main block when the module has none.
// Reports whether an edit was made.
func (c *Controller) EnsureMain() (bool, error) {
	text := c.module.Text()
	if _, ok := parse(text); ok {
		return false, nil
	}
	insert := mainHeader + "\n"
	if text != "" && !strings.HasSuffix(text, "\n") {
		insert = "\n" + insert
	}
	err := c.module.Apply("Insert main block", module.Edit{Start: len(text), End: len(text), Text: insert})
	return err == nil, err
}

// AddNode appends a node with a generated id and returns it.
func (c *Controller) AddNode(expr string) (Node, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Node{}, ErrEmptyExpression
	}
	b, ok := parse(c.module.Text())
	if !ok {
		return Node{}, ErrNoMainBlock
	}

	id := b.freeID()
	anchor := b.header
	if last, ok := b.lastNonEmpty(); ok {
		anchor = last
	}

	var edit module.Edit
	if anchor.newline {
		edit = module.Edit{Start: anchor.end + 1, End: anchor.end + 1, Text: indent + id + " = " + expr + "\n"}
	} else {
		edit = module.Edit{Start: anchor.end, End: anchor.end, Text: "\n" + indent + id + " = " + expr}
	}
	if err := c.module.Apply("Add node "+id, edit); err != nil {
		return Node{}, err
	}
	return Node{ID: id, Expression: expr, Line: anchor.idx + 1}, nil
}

// SetExpression rewrites the expression of node id.
func (c *Controller) SetExpression(id, expr string) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return ErrEmptyExpression
	}
	l, err := c.find(id)
	if err != nil {
		return err
	}
	lead := len(l.text) - len(strings.TrimLeft(l.text, " \t"))
	return c.module.Apply("Set expression of "+id, module.Edit{
		Start: l.start + lead,
		End:   l.end,
		Text:  id + " = " + expr,
	})
}

// RemoveNode deletes node id and its line.
func (c *Controller) RemoveNode(id string) error {
	l, err := c.find(id)
	if err != nil {
		return err
	}
	return c.module.Apply("Remove node "+id, module.Edit{Start: l.start, End: l.next()})
}

func (c *Controller) find(id string) (line, error) {
	b, ok := parse(c.module.Text())
	if !ok {
		return line{}, ErrNoMainBlock
	}
	for _, l := range b.body {
		if name, _, ok := l.binding(); ok && name == id {
			return l, nil
		}
	}
	return line{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
}

type line struct {
	idx     int
	start   int
	end     int // excludes the newline
	newline bool
	text    string
}

func (l line) next() int {
	if l.newline {
		return l.end + 1
	}
	return l.end
}

func (l line) blank() bool { return strings.TrimSpace(l.text) == "" }

func (l line) binding() (string, string, bool) {
	trimmed := strings.TrimSpace(l.text)
	if strings.HasPrefix(trimmed, "#") {
		return "", "", false
	}
	m := nodePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

type block struct {
	header line
	body   []line
}

func (b block) nodes() []Node {
	var nodes []Node
	for _, l := range b.body {
		if name, expr, ok := l.binding(); ok {
			nodes = append(nodes, Node{ID: name, Expression: expr, Line: l.idx})
		}
	}
	return nodes
}

func (b block) lastNonEmpty() (line, bool) {
	for i := len(b.body) - 1; i >= 0; i-- {
		if !b.body[i].blank() {
			return b.body[i], true
		}
	}
	return line{}, false
}

func (b block) freeID() string {
	taken := make(map[string]bool)
	for _, n := range b.nodes() {
		taken[n.ID] = true
	}
	for i := 1; ; i++ {
		id := fmt.Sprintf("%s%d", nodePrefix, i)
		if !taken[id] {
			return id
		}
	}
}

func splitLines(text string) []line {
	var lines []line
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, line{idx: len(lines), start: start, end: i, newline: true, text: text[start:i]})
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, line{idx: len(lines), start: start, end: len(text), text: text[start:]})
	}
	return lines
}

func parse(text string) (block, bool) {
	lines := splitLines(text)
	for i, l := range lines {
		if strings.TrimRight(l.text, " \t") != mainHeader {
			continue
		}
		b := block{header: l}
		for _, body := range lines[i+1:] {
			if !body.blank() && !strings.HasPrefix(body.text, " ") && !strings.HasPrefix(body.text, "\t") {
				break
			}
			b.body = append(b.body, body)
		}
		return b, true
	}
	return block{}, false
}
