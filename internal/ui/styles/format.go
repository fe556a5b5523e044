package styles

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// TruncateString truncates s to fit within maxWidth cells, ending in an
// ellipsis when anything was cut. ANSI sequences are kept intact.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if ansi.StringWidth(s) <= maxWidth {
		return s
	}
	return truncate.StringWithTail(s, uint(maxWidth), Ellipsis) //nolint:gosec // maxWidth is positive
}

// PadRight pads s with spaces to width cells.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}
