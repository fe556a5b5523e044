// Package overlay draws a foreground block over a rendered view without
// clearing what is around it.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Center places fg in the middle of bg, which is padded to width x height.
// Styling in both layers is preserved.
func Center(fg, bg string, width, height int) string {
	fgWidth, fgHeight := lipgloss.Size(fg)
	x := max((width-fgWidth)/2, 0)
	y := max((height-fgHeight)/2, 0)
	return Place(fg, bg, x, y, height)
}

// Place draws fg over bg with its top-left corner at (x, y).
func Place(fg, bg string, x, y, height int) string {
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}

	for i, fgLine := range strings.Split(fg, "\n") {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLine := bgLines[row]

		left := ansi.Truncate(bgLine, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		var right string
		if end := x + ansi.StringWidth(fgLine); end < ansi.StringWidth(bgLine) {
			right = ansi.TruncateLeft(bgLine, end, "")
		}
		bgLines[row] = left + fgLine + right
	}
	return strings.Join(bgLines, "\n")
}
