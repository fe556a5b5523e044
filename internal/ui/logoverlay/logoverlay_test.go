package logoverlay

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/atelier/internal/log"
)

func entry(level log.Level, msg string) string {
	return log.Format(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), level, log.CatStatus, msg) + "\n"
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEntries_FilterByLevel(t *testing.T) {
	m := New()
	m.Append(entry(log.LevelDebug, "debug"))
	m.Append(entry(log.LevelInfo, "info"))
	m.Append(entry(log.LevelWarn, "unknown handle"))
	m.Append(entry(log.LevelError, "failed"))
	m.Append("untagged\n")
	require.Len(t, m.Entries(), 5)

	m.Toggle()
	require.True(t, m.Update(runes("w")))
	entries := m.Entries()
	require.Len(t, entries, 3)
	require.Contains(t, entries[0], "unknown handle")
	require.Equal(t, "untagged", entries[2])
}

func TestAppend_Bounded(t *testing.T) {
	m := New()
	for i := 0; i < maxEntries+10; i++ {
		m.Append(entry(log.LevelInfo, fmt.Sprintf("entry %d", i)))
	}
	entries := m.Entries()
	require.Len(t, entries, maxEntries)
	require.Contains(t, entries[0], "entry 10")
}

func TestUpdate_IgnoredWhileHidden(t *testing.T) {
	m := New()
	m.Append(entry(log.LevelInfo, "info"))
	require.False(t, m.Update(runes("c")))
	require.Len(t, m.Entries(), 1)
}

func TestUpdate_ClearAndClose(t *testing.T) {
	m := New()
	m.SetSize(100, 40)
	m.Append(entry(log.LevelInfo, "info"))
	m.Toggle()

	require.True(t, m.Update(runes("c")))
	require.Empty(t, m.Entries())

	require.True(t, m.Update(tea.KeyMsg{Type: tea.KeyEsc}))
	require.False(t, m.Visible())
}

func TestOverlay(t *testing.T) {
	m := New()
	m.SetSize(100, 40)
	m.Append(entry(log.LevelWarn, "Finish for unknown task"))

	require.Equal(t, "background", m.Overlay("background"))

	m.Toggle()
	out := m.Overlay("background")
	require.Contains(t, out, "Logs")
	require.Contains(t, out, "Finish for unknown task")
}
