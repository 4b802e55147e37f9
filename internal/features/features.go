// Package features computes the structural descriptors used by pattern
// matching.
//
// Each candidate gets one Vector. Vectors are computed in parallel and are
// never modified after Extract returns.
package features

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
	"github.com/ironsheep/mockup-tools-mcp/internal/segment"
)

// Align is the coarse horizontal alignment of a candidate's text.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Vector is the feature vector of one candidate.
type Vector struct {
	CandidateID int          `json:"candidate_id"`
	Kind        segment.Kind `json:"kind"`

	Width  int `json:"width"`
	Height int `json:"height"`
	Lines  int `json:"lines"`

	// Aspect is Width / Height.
	Aspect float64 `json:"aspect"`

	// BorderDensity is the fraction of outline cells holding a box glyph.
	// Zero for candidates without a border.
	BorderDensity float64 `json:"border_density"`

	// ContentDensity is non-blank interior cells over interior area.
	ContentDensity float64 `json:"content_density"`

	BorderStyle grid.Style `json:"border_style"`

	// Brackets is set when the text opens and closes with a matching pair.
	Brackets bool `json:"brackets"`
	Open     rune `json:"open,omitempty"`
	Close    rune `json:"close,omitempty"`

	Markers    int             `json:"markers"`
	MarkerKind grid.MarkerKind `json:"marker_kind"`

	Align Align `json:"align"`

	// Glyph roles of a drawn border; zero when there is none.
	TopLeft     rune `json:"top_left,omitempty"`
	TopRight    rune `json:"top_right,omitempty"`
	BottomLeft  rune `json:"bottom_left,omitempty"`
	BottomRight rune `json:"bottom_right,omitempty"`
	Horizontal  rune `json:"horizontal,omitempty"`
	Vertical    rune `json:"vertical,omitempty"`

	// Text is the content with each line trimmed and blank lines dropped.
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`

	// Content is the verbatim content, shared with the candidate.
	Content []string `json:"-"`
}

// Extract computes a vector per candidate. Result i belongs to cands[i].
func Extract(g grid.Grid, cands []segment.Candidate) ([]Vector, error) {
	vecs := make([]Vector, len(cands))
	errs := make([]error, len(cands))

	parallel.Line(len(cands), func(start, end int) {
		for i := start; i < end; i++ {
			vecs[i], errs[i] = extract(g, &cands[i])
		}
	})

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("features: candidate %d: %w", cands[i].ID, err)
		}
	}
	return vecs, nil
}

func extract(g grid.Grid, c *segment.Candidate) (Vector, error) {
	glyphs := g.Glyphs()
	v := Vector{
		CandidateID: c.ID,
		Kind:        c.Kind,
		Width:       c.Box.Width(),
		Height:      c.Box.Height(),
		Lines:       len(c.Content),
		BorderStyle: grid.StyleNone,
		MarkerKind:  grid.MarkerNone,
		Title:       c.Title,
		Content:     c.Content,
	}
	v.Aspect = float64(v.Width) / float64(v.Height)
	v.Text = normalize(c.Content)
	v.ContentDensity = contentDensity(c.Content)
	v.Align = alignment(c.Content)
	v.Markers, v.MarkerKind = markers(glyphs, c.Content)

	if c.Kind == segment.KindBox {
		if err := borderFeatures(g, c.Box, &v); err != nil {
			return Vector{}, err
		}
	} else {
		v.Brackets, v.Open, v.Close = brackets(glyphs, v.Text)
	}
	return v, nil
}

// borderFeatures fills density, style and glyph roles from the outline.
func borderFeatures(g grid.Grid, r grid.Rect, v *Vector) error {
	glyphs := g.Glyphs()
	votes := make(map[grid.Style]int)
	outline, hits := 0, 0
	for y := r.MinY; y <= r.MaxY; y++ {
		for x := r.MinX; x <= r.MaxX; x++ {
			if !r.OnEdge(x, y) {
				continue
			}
			c, err := g.At(x, y)
			if err != nil {
				return err
			}
			outline++
			if !glyphs.IsBoxGlyph(c) {
				continue
			}
			hits++
			for _, s := range glyphs.Styles(c) {
				votes[s]++
			}
		}
	}
	if outline > 0 {
		v.BorderDensity = float64(hits) / float64(outline)
	}
	v.BorderStyle = winner(votes)

	corners := []struct {
		x, y int
		dst  *rune
	}{
		{r.MinX, r.MinY, &v.TopLeft},
		{r.MaxX, r.MinY, &v.TopRight},
		{r.MinX, r.MaxY, &v.BottomLeft},
		{r.MaxX, r.MaxY, &v.BottomRight},
	}
	for _, c := range corners {
		got, err := g.At(c.x, c.y)
		if err != nil {
			return err
		}
		*c.dst = got
	}

	var top, left []rune
	for x := r.MinX + 1; x < r.MaxX; x++ {
		c, err := g.At(x, r.MinY)
		if err != nil {
			return err
		}
		if glyphs.Arms(c).Has(grid.ArmLeft | grid.ArmRight) {
			top = append(top, c)
		}
	}
	for y := r.MinY + 1; y < r.MaxY; y++ {
		c, err := g.At(r.MinX, y)
		if err != nil {
			return err
		}
		if glyphs.Arms(c).Has(grid.ArmUp | grid.ArmDown) {
			left = append(left, c)
		}
	}
	v.Horizontal = mostCommon(top)
	v.Vertical = mostCommon(left)
	return nil
}

// winner picks the style with most votes, ties broken by StylePrecedence.
func winner(votes map[grid.Style]int) grid.Style {
	best, bestN := grid.StyleNone, 0
	for _, s := range grid.StylePrecedence {
		if votes[s] > bestN {
			best, bestN = s, votes[s]
		}
	}
	return best
}

func mostCommon(rs []rune) rune {
	if len(rs) == 0 {
		return 0
	}
	counts := make(map[rune]int)
	for _, r := range rs {
		counts[r]++
	}
	keys := make([]rune, 0, len(counts))
	for r := range counts {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys[0]
}

func normalize(lines []string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}

func contentDensity(lines []string) float64 {
	area, filled := 0, 0
	for _, l := range lines {
		for _, r := range l {
			area++
			if r != ' ' {
				filled++
			}
		}
	}
	if area == 0 {
		return 0
	}
	return float64(filled) / float64(area)
}

// alignment compares the average leading and trailing blank runs of the
// non-blank lines.
func alignment(lines []string) Align {
	var left, right, n float64
	for _, l := range lines {
		r := []rune(l)
		trimmed := strings.TrimLeft(l, " ")
		if trimmed == "" {
			continue
		}
		lead := len(r) - len([]rune(trimmed))
		trail := len([]rune(trimmed)) - len([]rune(strings.TrimRight(trimmed, " ")))
		left += float64(lead)
		right += float64(trail)
		n++
	}
	if n == 0 {
		return AlignLeft
	}
	left, right = left/n, right/n
	switch {
	case left < 0.5:
		return AlignLeft
	case right < 0.5:
		return AlignRight
	case left-right <= 1 && right-left <= 1:
		return AlignCenter
	case left < right:
		return AlignLeft
	default:
		return AlignRight
	}
}

// markers counts marker glyphs and three-cell marker tokens.
func markers(g *grid.Glyphs, lines []string) (int, grid.MarkerKind) {
	count, first := 0, grid.MarkerNone
	note := func(k grid.MarkerKind) {
		count++
		if first == grid.MarkerNone {
			first = k
		}
	}
	for _, l := range lines {
		r := []rune(l)
		for i := 0; i < len(r); i++ {
			if i+2 < len(r) {
				if k := g.TokenMarker(r[i], r[i+1], r[i+2]); k != grid.MarkerNone {
					note(k)
					i += 2
					continue
				}
			}
			if k := g.MarkerKind(r[i]); k != grid.MarkerNone {
				note(k)
			}
		}
	}
	return count, first
}

func brackets(g *grid.Glyphs, text string) (bool, rune, rune) {
	r := []rune(text)
	if len(r) < 2 {
		return false, 0, 0
	}
	open, last := r[0], r[len(r)-1]
	want, ok := g.Closer(open)
	if !ok || want != last {
		return false, 0, 0
	}
	return true, open, last
}
