package segment

import "github.com/ironsheep/mockup-tools-mcp/internal/grid"

// neighbours is the fixed visiting order: up, down, left, right.
var neighbours = [4]Point{{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0}}

func (s *scan) inside(x, y int) bool { return x >= 0 && y >= 0 && x < s.w && y < s.h }

// fill flood-fills the unclaimed foreground region seeded at (sx, sy).
func (s *scan) fill(sx, sy, id, gap int) ([]Point, grid.Rect) {
	queue := []Point{{X: sx, Y: sy}}
	s.claim(sx, sy, id)
	bounds := grid.Rect{MinX: sx, MinY: sy, MaxX: sx, MaxY: sy}

	push := func(x, y int) {
		s.claim(x, y, id)
		queue = append(queue, Point{X: x, Y: y})
	}

	for head := 0; head < len(queue); head++ {
		p := queue[head]
		bounds = bounds.Union(grid.Rect{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y})
		cur := s.at(p.X, p.Y)

		for _, d := range neighbours {
			nx, ny := p.X+d.X, p.Y+d.Y
			if !s.inside(nx, ny) {
				continue
			}
			n := s.at(nx, ny)
			if isBlank(n) {
				if d.Y == 0 {
					if fx, ok := s.bridge(p.X, p.Y, d.X, gap); ok {
						push(fx, p.Y)
					}
				}
				continue
			}
			if s.ownerAt(nx, ny) >= 0 || s.glyphs.IsLineArt(cur) != s.glyphs.IsLineArt(n) {
				continue
			}
			// Only plain text stacks; a row carrying a control stays on its own.
			if d.Y != 0 && !s.glyphs.IsLineArt(cur) && !(s.plain(p.X, p.Y, gap) && s.plain(nx, ny, gap)) {
				continue
			}
			push(nx, ny)
		}

		// A bracket pulls in everything up to its partner on the same row.
		if lo, hi, ok := s.span(p.X, p.Y); ok {
			for x := lo; x <= hi; x++ {
				if !isBlank(s.at(x, p.Y)) && s.ownerAt(x, p.Y) < 0 {
					push(x, p.Y)
				}
			}
		}
	}

	return queue, bounds
}

// bridge looks across a run of at most gap blanks in direction dir and
// returns the column of the cell to join.
func (s *scan) bridge(x, y, dir, gap int) (int, bool) {
	for k := 1; k <= gap; k++ {
		bx := x + dir*k
		if !s.inside(bx, y) || !isBlank(s.at(bx, y)) {
			return 0, false
		}
		fx := x + dir*(k+1)
		if !s.inside(fx, y) {
			return 0, false
		}
		if isBlank(s.at(fx, y)) {
			continue
		}
		if s.ownerAt(fx, y) >= 0 {
			return 0, false
		}
		lx, rx := x, fx
		if dir < 0 {
			lx, rx = fx, x
		}
		return fx, s.joinsAcross(lx, rx, y)
	}
	return 0, false
}

// joinsAcross decides whether the cells at lx and rx, separated by blanks,
// belong to the same run of text.
func (s *scan) joinsAcross(lx, rx, y int) bool {
	l, r := s.at(lx, y), s.at(rx, y)
	g := s.glyphs
	if g.IsLineArt(l) || g.IsLineArt(r) {
		return false
	}
	if g.IsOpener(r) {
		return false
	}
	if g.IsCloser(l) {
		lo, _, ok := s.span(lx, y)
		if !ok {
			return true
		}
		return lo == lx-2 && g.TokenMarker(s.at(lo, y), s.at(lo+1, y), l) != grid.MarkerNone
	}
	return true
}

// span returns the bracketed range containing the bracket at (x, y), if the
// cell is a bracket with a partner on the same row. The range may not cross
// claimed cells or line art.
func (s *scan) span(x, y int) (lo, hi int, ok bool) {
	g := s.glyphs
	c := s.at(x, y)
	switch {
	case g.IsOpener(c):
		want, _ := g.Closer(c)
		for i := x + 1; i < s.w; i++ {
			n := s.at(i, y)
			if n == want {
				return x, i, true
			}
			if n == c || g.IsLineArt(n) || s.blocked(i, y) {
				return 0, 0, false
			}
		}
	case g.IsCloser(c):
		for i := x - 1; i >= 0; i-- {
			n := s.at(i, y)
			if want, isOpen := g.Closer(n); isOpen && want == c {
				return i, x, true
			}
			if n == c || g.IsLineArt(n) || s.blocked(i, y) {
				return 0, 0, false
			}
		}
	}
	return 0, 0, false
}

// plain reports whether the text run through (x, y) holds no brackets and
// no marker glyphs.
func (s *scan) plain(x, y, gap int) bool {
	lo, hi := s.run(x, y, gap)
	g := s.glyphs
	for i := lo; i <= hi; i++ {
		c := s.at(i, y)
		if g.IsOpener(c) || g.IsCloser(c) || g.MarkerKind(c) != grid.MarkerNone {
			return false
		}
	}
	return true
}

// run returns the columns of the text run through (x, y): non-blank cells
// joined by blank runs of at most gap, stopping at line art and box borders.
func (s *scan) run(x, y, gap int) (lo, hi int) {
	ends := [2]int{x, x}
	for k, dir := range [2]int{-1, 1} {
		last := x
		for i := x + dir; s.inside(i, y); i += dir {
			c := s.at(i, y)
			if s.glyphs.IsLineArt(c) || s.blocked(i, y) {
				break
			}
			if !isBlank(c) {
				last = i
				continue
			}
			if (i-last)*dir > gap {
				break
			}
		}
		ends[k] = last
	}
	return ends[0], ends[1]
}

// blocked reports a cell claimed by a box border. Cells claimed by the fill
// in progress are fine to cross.
func (s *scan) blocked(x, y int) bool {
	id := s.ownerAt(x, y)
	return id >= 0 && id < s.boxCount
}
