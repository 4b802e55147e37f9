package render

import (
	"strings"

	"github.com/ironsheep/mockup-tools-mcp/internal/model"
)

// Canvas paints every component onto a rune canvas covering the model's
// extent. Bordered components contribute their frame; the rest contribute
// their content. Blank cells never overwrite.
func Canvas(m *model.ComponentModel) [][]rune {
	ext := m.Extent()
	if ext.Empty() {
		return nil
	}
	rows := make([][]rune, ext.Height())
	for y := range rows {
		rows[y] = []rune(strings.Repeat(" ", ext.Width()))
	}
	for _, c := range m.Components() {
		src := c.Content
		if c.Bordered {
			src = c.Frame
		}
		for dy, line := range src {
			x := c.Box.MinX
			for _, r := range line {
				if r != ' ' {
					rows[c.Box.MinY+dy][x] = r
				}
				x++
			}
		}
	}
	return rows
}

// Text renders the model as newline-separated lines of equal width. An
// empty model renders as "".
func Text(m *model.ComponentModel) string {
	rows := Canvas(m)
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = string(r)
	}
	return strings.Join(lines, "\n")
}
