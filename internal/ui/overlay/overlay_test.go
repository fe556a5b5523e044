package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"
)

func TestCenter(t *testing.T) {
	bg := "AAAAA\nAAAAA\nAAAAA"

	result := Center("XX", bg, 5, 3)

	require.Equal(t, []string{"AAAAA", "AXXAA", "AAAAA"}, strings.Split(result, "\n"))
}

func TestCenter_LargeForeground(t *testing.T) {
	bg := "AAA\nAAA\nAAA"

	result := Center("XXXXX\nXXXXX", bg, 3, 3)

	lines := strings.Split(result, "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "XXXXX", lines[0])
	require.Equal(t, "XXXXX", lines[1])
	require.Equal(t, "AAA", lines[2])
}

func TestCenter_PadsShortBackground(t *testing.T) {
	result := Center("X", "", 3, 3)

	lines := strings.Split(result, "\n")
	require.Len(t, lines, 3)
	require.Equal(t, " X", lines[1])
}

func TestPlace_PreservesStyledBackground(t *testing.T) {
	style := lipgloss.NewStyle().Bold(true)
	bg := style.Render("ABCDEF")

	result := Place("x", bg, 2, 0, 1)

	require.Equal(t, 6, lipgloss.Width(result))
	require.Contains(t, result, "x")
}

func TestPlace_OutOfRangeRowsAreDropped(t *testing.T) {
	result := Place("X\nY\nZ", "AAA\nAAA", 0, 1, 2)

	require.Equal(t, "AAA\nXAA", result)
}
