package module

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModel_ApplyRecordsHistory(t *testing.T) {
	m := New("src/Main.atl", "main =\n", nil)

	err := m.Apply("add node", Edit{Start: 7, End: 7, Text: "    a = 1\n"})
	require.NoError(t, err)
	require.Equal(t, "main =\n    a = 1\n", m.Text())
	require.Equal(t, 1, m.History().UndoLen())
	require.Equal(t, 1, m.Version())

	require.NoError(t, m.Undo())
	require.Equal(t, "main =\n", m.Text())
	require.NoError(t, m.Redo())
	require.Equal(t, "main =\n    a = 1\n", m.Text())
	require.Equal(t, 3, m.Version())
}

func TestModel_ApplyRejectsBadRange(t *testing.T) {
	m := New("", "abc", nil)

	for _, e := range []Edit{
		{Start: -1, End: 0},
		{Start: 2, End: 1},
		{Start: 0, End: 4},
	} {
		require.ErrorIs(t, m.Apply("bad", e), ErrInvalidRange)
	}
	require.Equal(t, "abc", m.Text())
	require.Equal(t, 0, m.History().Len())
}

func TestModel_ReplaceIsOneEntry(t *testing.T) {
	m := New("", "old", nil)
	require.NoError(t, m.Replace("rewrite", "new"))
	require.Equal(t, "new", m.Text())
	require.Equal(t, []string{"rewrite"}, m.History().Names())
}

func TestModel_NoOpEditDoesNotBumpVersion(t *testing.T) {
	m := New("", "same", nil)
	require.NoError(t, m.Apply("noop", Edit{Start: 0, End: 4, Text: "same"}))
	require.Equal(t, 0, m.Version())
}
