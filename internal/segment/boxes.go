package segment

import (
	"strings"

	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
)

const (
	armsLR = grid.ArmLeft | grid.ArmRight
	armsUD = grid.ArmUp | grid.ArmDown
)

type box struct {
	rect  grid.Rect
	title string
}

func (s *scan) arms(x, y int) grid.Arm { return s.glyphs.Arms(s.at(x, y)) }

// findBoxes returns every closed rectangle in detection order: top-left
// corner row-major, then right edge left to right, nearest closing row first.
func (s *scan) findBoxes() []box {
	var out []box
	seen := make(map[grid.Rect]bool)
	for y := 0; y < s.h-1; y++ {
		for x := 0; x < s.w-1; x++ {
			if !s.arms(x, y).Has(grid.ArmRight | grid.ArmDown) {
				continue
			}
			for _, b := range s.boxesFrom(x, y) {
				if seen[b.rect] {
					continue
				}
				seen[b.rect] = true
				out = append(out, b)
			}
		}
	}
	return out
}

// boxesFrom walks the top edge right of the corner at (x, y).
func (s *scan) boxesFrom(x, y int) []box {
	var out []box
	titled := false
	for x2 := x + 1; x2 < s.w; x2++ {
		a := s.arms(x2, y)
		if a == 0 {
			titled = true
			continue
		}
		if a.Has(grid.ArmLeft | grid.ArmDown) {
			if !titled || s.titleFramed(x, x2, y) {
				out = append(out, s.closeBox(x, y, x2, titled)...)
			}
		}
		if !a.Has(armsLR) {
			break
		}
	}
	return out
}

// titleFramed requires a title to sit between horizontal strokes.
func (s *scan) titleFramed(x, x2, y int) bool {
	return x2-x >= 3 && s.arms(x+1, y).Has(armsLR) && s.arms(x2-1, y).Has(armsLR)
}

// closeBox descends both vertical edges from the top corners and returns the
// nearest closed rectangle plus, for plain-cornered frames, the farthest.
func (s *scan) closeBox(x, y, x2 int, titled bool) []box {
	var closing []int
	for y2 := y + 1; y2 < s.h; y2++ {
		l, r := s.arms(x, y2), s.arms(x2, y2)
		if l.Has(grid.ArmUp|grid.ArmRight) && r.Has(grid.ArmUp|grid.ArmLeft) && s.bottomEdge(x, x2, y2) {
			closing = append(closing, y2)
		}
		if !l.Has(armsUD) || !r.Has(armsUD) {
			break
		}
	}
	if len(closing) == 0 {
		return nil
	}

	title := ""
	if titled {
		title = s.title(x, x2, y)
	}
	out := []box{{rect: grid.Rect{MinX: x, MinY: y, MaxX: x2, MaxY: closing[0]}, title: title}}
	last := closing[len(closing)-1]
	if last != closing[0] && s.plainCorners(x, y, x2, last) {
		out = append(out, box{rect: grid.Rect{MinX: x, MinY: y, MaxX: x2, MaxY: last}, title: title})
	}
	return out
}

func (s *scan) bottomEdge(x, x2, y int) bool {
	for i := x + 1; i < x2; i++ {
		if !s.arms(i, y).Has(armsLR) {
			return false
		}
	}
	return true
}

// plainCorners reports whether all four corners are corner glyphs rather than
// junctions. ASCII '+' serves as both and always qualifies.
func (s *scan) plainCorners(x, y, x2, y2 int) bool {
	corner := func(cx, cy int, want grid.Arm) bool {
		return s.at(cx, cy) == '+' || s.arms(cx, cy) == want
	}
	return corner(x, y, grid.ArmRight|grid.ArmDown) &&
		corner(x2, y, grid.ArmLeft|grid.ArmDown) &&
		corner(x, y2, grid.ArmRight|grid.ArmUp) &&
		corner(x2, y2, grid.ArmLeft|grid.ArmUp)
}

// title extracts the text embedded in a top edge.
func (s *scan) title(x, x2, y int) string {
	var sb strings.Builder
	for i := x + 1; i < x2; i++ {
		if s.arms(i, y).Has(armsLR) {
			sb.WriteRune(' ')
			continue
		}
		sb.WriteRune(s.at(i, y))
	}
	return strings.TrimSpace(sb.String())
}
