// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// WelcomeKeyMap defines the keybindings of the welcome screen.
type WelcomeKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Create key.Binding
}

// ProjectKeyMap defines the keybindings of the project screen.
type ProjectKeyMap struct {
	ScrollUp   key.Binding
	ScrollDown key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Top        key.Binding
	Bottom     key.Binding
}

// AppKeyMap defines the keybindings handled by the root model on every
// screen.
type AppKeyMap struct {
	Help key.Binding
	Logs key.Binding
	Quit key.Binding
}

// Welcome holds the welcome screen bindings.
var Welcome = WelcomeKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "move down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open project"),
	),
	Create: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new project"),
	),
}

// Project holds the project screen bindings.
var Project = ProjectKeyMap{
	ScrollUp: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "scroll down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("ctrl+u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("ctrl+d", "page down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
}

// App holds the global bindings.
var App = AppKeyMap{
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "keybindings"),
	),
	Logs: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "toggle logs"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp returns the welcome screen hints.
func (k WelcomeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Create, App.Quit}
}

// FullHelp returns the welcome screen hints grouped.
func (k WelcomeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Open, k.Create}, {App.Help, App.Quit}}
}

// ShortHelp returns the project screen hints.
func (k ProjectKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ScrollUp, k.ScrollDown, k.PageDown, App.Quit}
}

// FullHelp returns the project screen hints grouped.
func (k ProjectKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown}, {k.Top, k.Bottom}, {App.Help, App.Quit}}
}
