package segment

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
)

// segmentLines builds a grid and segments it with default options.
func segmentLines(t *testing.T, lines ...string) []Candidate {
	t.Helper()
	g, err := grid.New(lines)
	require.NoError(t, err)
	cands, err := New(DefaultOptions()).Segment(g)
	require.NoError(t, err)
	return cands
}

// assertPartition checks every foreground cell is owned exactly once.
func assertPartition(t *testing.T, lines []string, cands []Candidate) {
	t.Helper()
	owned := make(map[Point]int)
	for _, c := range cands {
		for _, p := range c.Cells {
			owned[p]++
		}
	}
	for y, line := range lines {
		for x, r := range []rune(line) {
			p := Point{X: x, Y: y}
			if r == ' ' {
				assert.Zero(t, owned[p], "blank cell %v owned", p)
				continue
			}
			assert.Equal(t, 1, owned[p], "cell %v (%q) ownership", p, r)
		}
	}
}

func TestSegment_BoxWithText(t *testing.T) {
	lines := []string{
		"┌───┐",
		"│OK │",
		"└───┘",
	}
	cands := segmentLines(t, lines...)
	require.Len(t, cands, 2)

	assert.Equal(t, KindBox, cands[0].Kind)
	assert.Equal(t, grid.Rect{MinX: 0, MinY: 0, MaxX: 4, MaxY: 2}, cands[0].Box)
	assert.Equal(t, []string{"OK "}, cands[0].Content)
	assert.Len(t, cands[0].Cells, 12)

	assert.Equal(t, KindText, cands[1].Kind)
	assert.Equal(t, grid.Rect{MinX: 1, MinY: 1, MaxX: 2, MaxY: 1}, cands[1].Box)
	assert.Equal(t, []string{"OK"}, cands[1].Content)

	assertPartition(t, lines, cands)
}

func TestSegment_BracketTokensStaySeparate(t *testing.T) {
	cands := segmentLines(t, "[Yes] [No]")
	require.Len(t, cands, 2)
	assert.Equal(t, "[Yes]", cands[0].Text())
	assert.Equal(t, "[No]", cands[1].Text())
	assert.Equal(t, 6, cands[1].Box.MinX)
}

func TestSegment_CheckboxJoinsLabel(t *testing.T) {
	cands := segmentLines(t, "[X] Enable logging")
	require.Len(t, cands, 1)
	assert.Equal(t, "[X] Enable logging", cands[0].Text())
}

func TestSegment_LabelAndField(t *testing.T) {
	cands := segmentLines(t, "Name: [      ]")
	require.Len(t, cands, 2)
	assert.Equal(t, "Name:", cands[0].Text())
	assert.Equal(t, "[      ]", cands[1].Text())
}

func TestSegment_WordGap(t *testing.T) {
	cands := segmentLines(t, "Save  changes now")
	require.Len(t, cands, 2)
	assert.Equal(t, "Save", cands[0].Text())
	assert.Equal(t, "changes now", cands[1].Text())

	g, err := grid.New([]string{"Save  changes now"})
	require.NoError(t, err)
	wide, err := New(Options{WordGap: 2}).Segment(g)
	require.NoError(t, err)
	assert.Len(t, wide, 1)
}

func TestSegment_TitledBox(t *testing.T) {
	lines := []string{
		"┌─ Settings ─┐",
		"│ [X] Dark   │",
		"└────────────┘",
	}
	cands := segmentLines(t, lines...)
	require.Len(t, cands, 2)
	assert.Equal(t, "Settings", cands[0].Title)
	assert.Equal(t, "[X] Dark", cands[1].Text())
	assertPartition(t, lines, cands)
}

func TestSegment_NestedOverlappingBorders(t *testing.T) {
	lines := []string{
		"┌─────┬────┐",
		"│ ┌───┤    │",
		"│ │OK │    │",
		"│ └───┤    │",
		"└─────┴────┘",
	}
	cands := segmentLines(t, lines...)

	var boxes []grid.Rect
	for _, c := range cands {
		if c.Kind == KindBox {
			boxes = append(boxes, c.Box)
		}
	}
	assert.Equal(t, []grid.Rect{
		{MinX: 0, MinY: 0, MaxX: 6, MaxY: 4},
		{MinX: 0, MinY: 0, MaxX: 11, MaxY: 4},
		{MinX: 6, MinY: 0, MaxX: 11, MaxY: 4},
		{MinX: 2, MinY: 1, MaxX: 6, MaxY: 3},
	}, boxes)

	require.Len(t, cands, 5)
	assert.Equal(t, []string{"OK"}, cands[4].Content)
	assertPartition(t, lines, cands)
}

func TestSegment_DividedFrame(t *testing.T) {
	lines := []string{
		"┌──────┐",
		"│ A    │",
		"├──────┤",
		"│ B    │",
		"└──────┘",
	}
	cands := segmentLines(t, lines...)
	require.Len(t, cands, 5)

	assert.Equal(t, grid.Rect{MinX: 0, MinY: 0, MaxX: 7, MaxY: 2}, cands[0].Box)
	assert.Equal(t, grid.Rect{MinX: 0, MinY: 0, MaxX: 7, MaxY: 4}, cands[1].Box)
	assert.Equal(t, grid.Rect{MinX: 0, MinY: 2, MaxX: 7, MaxY: 4}, cands[2].Box)
	// the frame's outline is entirely claimed by the two halves
	assert.Empty(t, cands[1].Cells)
	assertPartition(t, lines, cands)
}

func TestSegment_SeparatorDoesNotMergeWithText(t *testing.T) {
	lines := []string{
		"Title",
		"─────",
	}
	cands := segmentLines(t, lines...)
	require.Len(t, cands, 2)
	assert.Equal(t, "Title", cands[0].Text())
	assert.Equal(t, "─────", cands[1].Text())
}

func TestSegment_ASCIIBox(t *testing.T) {
	lines := []string{
		"+------+",
		"| Save |",
		"+------+",
	}
	cands := segmentLines(t, lines...)
	require.Len(t, cands, 2)
	assert.Equal(t, KindBox, cands[0].Kind)
	assert.Equal(t, "Save", cands[1].Text())
}

func TestSegment_OpenBoxIsText(t *testing.T) {
	lines := []string{
		"┌───",
		"│ hi",
	}
	cands := segmentLines(t, lines...)
	for _, c := range cands {
		assert.Equal(t, KindText, c.Kind)
	}
	assertPartition(t, lines, cands)
}

func TestSegment_Deterministic(t *testing.T) {
	lines := []string{
		"┌────────────────┐",
		"│ Name: [      ] │",
		"│ [X] Remember   │",
		"│ [OK] [Cancel]  │",
		"└────────────────┘",
	}
	first := segmentLines(t, lines...)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, segmentLines(t, lines...))
	}
	assertPartition(t, lines, first)
}

func TestSegment_PartitionOnMixedContent(t *testing.T) {
	grids := [][]string{
		{"a b  c", " d  ef", "g    h"},
		{"╔══╗ x", "║ab║ y", "╚══╝ z"},
		{"(o) one  ( ) two", "<Back  Next>    "},
		{"┌┐┌┐", "└┘└┘"},
	}
	for _, lines := range grids {
		cands := segmentLines(t, lines...)
		assertPartition(t, lines, cands)
		for _, c := range cands {
			assert.True(t, grid.Rect{MaxX: len([]rune(lines[0])) - 1, MaxY: len(lines) - 1}.Contains(c.Box))
		}
	}
}

func TestSegment_TextStacksOverText(t *testing.T) {
	cands := segmentLines(t, "Hello", "world")
	require.Len(t, cands, 1)
	assert.Equal(t, grid.Rect{MinX: 0, MinY: 0, MaxX: 4, MaxY: 1}, cands[0].Box)
}

func TestSegment_ControlRowsStaySeparate(t *testing.T) {
	cands := segmentLines(t, "Hello", "[Yes]")
	require.Len(t, cands, 2)
	assert.Equal(t, "Hello", cands[0].Text())
	assert.Equal(t, "[Yes]", cands[1].Text())

	lines := []string{
		"[X] Enable logging",
		"[ ] Verbose       ",
	}
	cands = segmentLines(t, lines...)
	require.Len(t, cands, 2)
	assert.Equal(t, "[X] Enable logging", cands[0].Text())
	assert.Equal(t, "[ ] Verbose", cands[1].Text())
	assertPartition(t, lines, cands)
}

func TestSegment_FormRows(t *testing.T) {
	lines := []string{
		"Name: [__________]",
		"Theme: [Dark ▼]   ",
		"( ) Light  (o) Dark",
	}
	for i := range lines {
		lines[i] += strings.Repeat(" ", 19-len([]rune(lines[i])))
	}
	cands := segmentLines(t, lines...)
	var texts []string
	for _, c := range cands {
		texts = append(texts, c.Text())
	}
	assert.Equal(t, []string{"Name:", "[__________]", "Theme:", "[Dark ▼]", "( ) Light", "(o) Dark"}, texts)
	assertPartition(t, lines, cands)
}

func TestSegment_RandomGridsPartition(t *testing.T) {
	alphabet := []rune("ab X o   [](){}<>─│┌┐└┘┬┴├┤+-|▼☐")
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		w, h := 1+rng.Intn(12), 1+rng.Intn(8)
		lines := make([]string, h)
		for y := range lines {
			row := make([]rune, w)
			for x := range row {
				row[x] = alphabet[rng.Intn(len(alphabet))]
			}
			lines[y] = string(row)
		}
		cands := segmentLines(t, lines...)
		assertPartition(t, lines, cands)
		extent := grid.Rect{MaxX: w - 1, MaxY: h - 1}
		for _, c := range cands {
			assert.True(t, extent.Contains(c.Box), "candidate %d box %+v outside %dx%d grid %q", c.ID, c.Box, w, h, lines)
		}
	}
}
