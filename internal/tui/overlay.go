package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// sgrReset closes any style left open by a truncated base segment.
const sgrReset = "\x1b[0m"

var modalCardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorFocus).
	Padding(1, 2)

// renderModal draws dialog centred over base, keeping the base visible on
// both sides of the card. A zero size falls back to stacking.
func renderModal(base, dialog string, width, height int) string {
	card := modalCardStyle.Render(dialog)
	if width <= 0 || height <= 0 {
		return base + "\n\n" + card
	}
	cardLines := splitLines(card)
	x := max((width-maxLineWidth(cardLines))/2, 0)
	y := max((height-len(cardLines))/2, 0)
	canvas := strings.Join(canvasLines(base, width, height), "\n")
	return overlayAt(canvas, card, x, y, width, height)
}

// overlayAt composites overlay on top of base at column x, row y. Rows of
// the overlay outside the base are dropped and every touched row is clipped
// to width.
func overlayAt(base, overlay string, x, y, width, height int) string {
	baseLines := splitLines(base)
	overlayLines := splitLines(overlay)
	overlayWidth := maxLineWidth(overlayLines)
	for i, line := range overlayLines {
		row := y + i
		if row < 0 || row >= len(baseLines) || row >= height {
			continue
		}
		target := padANSI(baseLines[row], width)
		left := ansi.Truncate(target, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}

		overlayLine := line
		if w := ansi.StringWidth(line); w < overlayWidth {
			overlayLine += strings.Repeat(" ", overlayWidth-w)
		}
		pos := x + overlayWidth
		right := ""
		if pos < width {
			right = sgrReset + ansi.TruncateLeft(target, pos, "")
		}
		baseLines[row] = padANSI(left+sgrReset+overlayLine+right, width)
	}
	return strings.Join(baseLines, "\n")
}

// splitLines splits s on newlines, returning at least one element.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

// maxLineWidth returns the visual width of the widest line.
func maxLineWidth(lines []string) int {
	m := 0
	for _, line := range lines {
		m = max(m, ansi.StringWidth(line))
	}
	return m
}

func canvasLines(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = padANSI(lines[i], width)
	}
	return lines
}

func padANSI(s string, width int) string {
	s = ansi.Truncate(s, width, "")
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
