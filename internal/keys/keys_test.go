package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/require"
)

func TestKeyAssignments(t *testing.T) {
	tests := []struct {
		name     string
		binding  key.Binding
		expected []string
	}{
		{name: "open", binding: Welcome.Open, expected: []string{"enter"}},
		{name: "create", binding: Welcome.Create, expected: []string{"n"}},
		{name: "welcome up", binding: Welcome.Up, expected: []string{"k", "up"}},
		{name: "project page down", binding: Project.PageDown, expected: []string{"pgdown", "ctrl+d"}},
		{name: "help", binding: App.Help, expected: []string{"?"}},
		{name: "logs", binding: App.Logs, expected: []string{"ctrl+x"}},
		{name: "quit", binding: App.Quit, expected: []string{"q", "ctrl+c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.binding.Keys())
			require.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

// Keys within one screen must not shadow each other, and screen keys must not
// shadow the global ones.
func TestNoConflicts(t *testing.T) {
	screens := map[string][]key.Binding{
		"welcome": {Welcome.Up, Welcome.Down, Welcome.Open, Welcome.Create},
		"project": {Project.ScrollUp, Project.ScrollDown, Project.PageUp, Project.PageDown, Project.Top, Project.Bottom},
	}
	for name, bindings := range screens {
		seen := make(map[string]bool)
		for _, b := range append(bindings, App.Help, App.Logs, App.Quit) {
			for _, k := range b.Keys() {
				require.False(t, seen[k], "%s: key %q bound twice", name, k)
				seen[k] = true
			}
		}
	}
}

func TestHelp(t *testing.T) {
	require.Contains(t, Welcome.ShortHelp(), App.Quit)
	require.Len(t, Welcome.FullHelp(), 3)
	require.Contains(t, Project.ShortHelp(), App.Quit)
	require.Len(t, Project.FullHelp(), 3)
}
