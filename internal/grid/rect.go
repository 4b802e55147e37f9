package grid

// Rect is an inclusive cell rectangle: both (MinX, MinY) and (MaxX, MaxY)
// belong to it.
type Rect struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Width is the number of columns covered.
func (r Rect) Width() int { return r.MaxX - r.MinX + 1 }

// Height is the number of rows covered.
func (r Rect) Height() int { return r.MaxY - r.MinY + 1 }

// Area is Width × Height.
func (r Rect) Area() int { return r.Width() * r.Height() }

// Empty reports whether the rectangle is inverted.
func (r Rect) Empty() bool { return r.MaxX < r.MinX || r.MaxY < r.MinY }

// Center2 returns the center doubled, so that odd extents stay integral.
func (r Rect) Center2() (x2, y2 int) {
	return r.MinX + r.MaxX, r.MinY + r.MaxY
}

// Expand grows the rectangle by n cells on every side.
func (r Rect) Expand(n int) Rect {
	return Rect{MinX: r.MinX - n, MinY: r.MinY - n, MaxX: r.MaxX + n, MaxY: r.MaxY + n}
}

// Contains reports whether o lies fully inside r.
func (r Rect) Contains(o Rect) bool {
	return o.MinX >= r.MinX && o.MaxX <= r.MaxX && o.MinY >= r.MinY && o.MaxY <= r.MaxY
}

// ContainsCell reports whether the cell (x, y) lies inside r.
func (r Rect) ContainsCell(x, y int) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// OnEdge reports whether (x, y) lies on the outline of r.
func (r Rect) OnEdge(x, y int) bool {
	if !r.ContainsCell(x, y) {
		return false
	}
	return x == r.MinX || x == r.MaxX || y == r.MinY || y == r.MaxY
}

// Interior returns r shrunk by one cell on every side. The result is Empty
// for rectangles thinner than three cells.
func (r Rect) Interior() Rect { return r.Expand(-1) }

// GapX is the number of blank columns between r and o. Zero means they touch;
// negative means their columns overlap.
func (r Rect) GapX(o Rect) int {
	return max(r.MinX, o.MinX) - min(r.MaxX, o.MaxX) - 1
}

// GapY is the number of blank rows between r and o.
func (r Rect) GapY(o Rect) int {
	return max(r.MinY, o.MinY) - min(r.MaxY, o.MaxY) - 1
}

// Union returns the smallest rectangle covering both.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: min(r.MinX, o.MinX), MinY: min(r.MinY, o.MinY),
		MaxX: max(r.MaxX, o.MaxX), MaxY: max(r.MaxY, o.MaxY),
	}
}
