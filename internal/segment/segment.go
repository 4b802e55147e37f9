package segment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
)

// Kind distinguishes candidates produced by border detection from those
// produced by flood fill.
type Kind string

const (
	KindBox  Kind = "box"
	KindText Kind = "text"
)

// Point is a cell coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Candidate is a raw, untyped region of the grid.
type Candidate struct {
	// ID is the candidate's index in the segmentation output.
	ID int `json:"id"`

	Kind Kind `json:"kind"`

	// Box is the bounding box in grid coordinates. For KindBox it is the
	// outline rectangle.
	Box grid.Rect `json:"box"`

	// Content holds the interior lines, copied verbatim. For boxes the border
	// is excluded; for text it is the whole bounding box.
	Content []string `json:"content"`

	// Title is the text embedded in a box's top edge, trimmed.
	Title string `json:"title,omitempty"`

	// Frame is the outline of a box with its interior blanked. Nil for text.
	Frame []string `json:"-"`

	// Cells lists the foreground cells this candidate owns.
	Cells []Point `json:"-"`
}

// Options tune segmentation.
type Options struct {
	// WordGap is the widest run of blanks joined inside a line of text.
	// Zero disables joining.
	WordGap int
}

// DefaultOptions returns the standard segmentation options.
func DefaultOptions() Options {
	return Options{WordGap: 1}
}

// Segmenter splits grids into candidates.
type Segmenter struct {
	opts Options
}

// New creates a segmenter.
func New(opts Options) *Segmenter {
	if opts.WordGap < 0 {
		opts.WordGap = 0
	}
	return &Segmenter{opts: opts}
}

// scan holds per-run state.
type scan struct {
	rows   [][]rune
	w, h   int
	glyphs *grid.Glyphs
	owner  []int

	// boxCount is the number of border candidates; IDs below it are boxes.
	boxCount int
}

func (s *scan) at(x, y int) rune { return s.rows[y][x] }

func (s *scan) ownerAt(x, y int) int { return s.owner[y*s.w+x] }

func (s *scan) claim(x, y, id int) { s.owner[y*s.w+x] = id }

func isBlank(r rune) bool { return r == ' ' }

// Segment partitions g into candidates.
func (sg *Segmenter) Segment(g grid.Grid) ([]Candidate, error) {
	rows, err := grid.Snapshot(g)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	s := &scan{
		rows:   rows,
		w:      g.Width(),
		h:      g.Height(),
		glyphs: g.Glyphs(),
		owner:  make([]int, g.Width()*g.Height()),
	}
	for i := range s.owner {
		s.owner[i] = -1
	}

	boxes := s.findBoxes()
	s.boxCount = len(boxes)
	candidates := make([]Candidate, 0, len(boxes))
	for i, b := range boxes {
		candidates = append(candidates, Candidate{
			ID:      i,
			Kind:    KindBox,
			Box:     b.rect,
			Content: s.interior(b.rect),
			Title:   b.title,
			Frame:   s.outline(b.rect),
		})
	}

	// Smallest rectangles claim shared border cells first.
	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return boxes[order[a]].rect.Area() < boxes[order[b]].rect.Area()
	})
	for _, i := range order {
		r := boxes[i].rect
		for y := r.MinY; y <= r.MaxY; y++ {
			for x := r.MinX; x <= r.MaxX; x++ {
				if !r.OnEdge(x, y) || isBlank(s.at(x, y)) || s.ownerAt(x, y) >= 0 {
					continue
				}
				s.claim(x, y, i)
				candidates[i].Cells = append(candidates[i].Cells, Point{X: x, Y: y})
			}
		}
	}

	for y := 0; y < s.h; y++ {
		for x := 0; x < s.w; x++ {
			if isBlank(s.at(x, y)) || s.ownerAt(x, y) >= 0 {
				continue
			}
			id := len(candidates)
			cells, box := s.fill(x, y, id, sg.opts.WordGap)
			candidates = append(candidates, Candidate{
				ID:      id,
				Kind:    KindText,
				Box:     box,
				Content: s.copyRect(box),
				Cells:   cells,
			})
		}
	}

	return candidates, nil
}

// interior copies the cells strictly inside r.
func (s *scan) interior(r grid.Rect) []string {
	in := r.Interior()
	if in.Empty() {
		return nil
	}
	return s.copyRect(in)
}

// outline copies r with every interior cell blanked.
func (s *scan) outline(r grid.Rect) []string {
	lines := make([]string, 0, r.Height())
	for y := r.MinY; y <= r.MaxY; y++ {
		row := make([]rune, 0, r.Width())
		for x := r.MinX; x <= r.MaxX; x++ {
			if r.OnEdge(x, y) {
				row = append(row, s.at(x, y))
			} else {
				row = append(row, ' ')
			}
		}
		lines = append(lines, string(row))
	}
	return lines
}

func (s *scan) copyRect(r grid.Rect) []string {
	lines := make([]string, 0, r.Height())
	for y := r.MinY; y <= r.MaxY; y++ {
		lines = append(lines, string(s.rows[y][r.MinX:r.MaxX+1]))
	}
	return lines
}

// Text joins content lines with newlines.
func (c Candidate) Text() string {
	return strings.Join(c.Content, "\n")
}
