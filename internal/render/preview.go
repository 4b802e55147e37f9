package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sort"
	"strconv"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
	"github.com/ironsheep/mockup-tools-mcp/internal/model"
)

// Cell size of the preview font in pixels.
const (
	CellWidth  = 7
	CellHeight = 13
)

// ErrEmptyModel is returned when there is nothing to draw.
var ErrEmptyModel = errors.New("render: model has no components")

// PreviewOptions control PNG previews.
type PreviewOptions struct {
	// Scale resizes the finished image. Values <= 0 mean 1.
	Scale float64

	// ShowGrid draws the character cell grid.
	ShowGrid bool

	// ShowIDs labels every component with its ID.
	ShowIDs bool

	// GridColor is a hex color such as "#DDDDDD" or "#FF000080".
	GridColor string
}

// DefaultPreviewOptions returns unscaled previews with ID labels.
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{Scale: 1, ShowIDs: true, GridColor: "#E0E0E0"}
}

// PreviewResult is an encoded preview image.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Columns     int    `json:"columns"`
	Rows        int    `json:"rows"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// Colors maps each component type to the outline color used for it.
	Colors map[string]string `json:"colors"`
}

var (
	background = color.RGBA{255, 255, 255, 255}
	ink        = color.RGBA{32, 32, 32, 255}
	labelFG    = color.RGBA{255, 255, 255, 255}
	labelBG    = color.RGBA{0, 0, 0, 200}
)

// Preview draws the model as a PNG. Box-drawing glyphs are stroked from
// their arms since the bitmap font only covers ASCII.
func Preview(m *model.ComponentModel, glyphs *grid.Glyphs, opts PreviewOptions) (*PreviewResult, error) {
	rows := Canvas(m)
	if len(rows) == 0 {
		return nil, ErrEmptyModel
	}
	if glyphs == nil {
		glyphs = grid.DefaultGlyphs()
	}
	cols := len(rows[0])
	img := image.NewRGBA(image.Rect(0, 0, cols*CellWidth, len(rows)*CellHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	if opts.ShowGrid {
		gridColor, err := parseHexColor(opts.GridColor)
		if err != nil {
			gridColor = color.RGBA{224, 224, 224, 255}
		}
		drawCellGrid(img, cols, len(rows), gridColor)
	}

	d := &font.Drawer{Dst: img, Src: image.NewUniform(ink), Face: basicfont.Face7x13}
	for y, row := range rows {
		for x, r := range row {
			switch {
			case r == ' ':
			case r >= 0x80 && glyphs.IsBoxGlyph(r):
				drawArms(img, x, y, glyphs.Arms(r), strokeOf(glyphs.Styles(r)))
			default:
				d.Dot = fixed.P(x*CellWidth, y*CellHeight+basicfont.Face7x13.Ascent)
				d.DrawString(string(r))
			}
		}
	}

	colors := palette(m)
	comps := m.Components()
	// larger outlines first so nested ones stay visible
	sort.SliceStable(comps, func(i, j int) bool { return comps[i].Box.Area() > comps[j].Box.Area() })
	for _, c := range comps {
		outline(img, c.Box, colors[c.Type])
	}
	if opts.ShowIDs {
		for _, c := range comps {
			drawLabel(img, c.Box.MinX*CellWidth+1, c.Box.MinY*CellHeight+1, strconv.Itoa(c.ID), labelFG, labelBG)
		}
	}

	var out image.Image = img
	if opts.Scale > 0 && opts.Scale != 1 {
		w := int(float64(img.Bounds().Dx()) * opts.Scale)
		h := int(float64(img.Bounds().Dy()) * opts.Scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("render: scale %g leaves an empty image", opts.Scale)
		}
		out = imaging.Resize(img, w, h, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("render: failed to encode preview: %w", err)
	}

	hex := make(map[string]string, len(colors))
	for t, c := range colors {
		hex[t] = c.Hex()
	}
	return &PreviewResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		Columns:     cols,
		Rows:        len(rows),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Colors:      hex,
	}, nil
}

// palette spreads the model's types evenly around the hue circle in sorted
// order. Unclassified components are gray.
func palette(m *model.ComponentModel) map[string]colorful.Color {
	types := make([]string, 0)
	for t := range m.Types() {
		if t != model.Unclassified {
			types = append(types, t)
		}
	}
	sort.Strings(types)
	out := make(map[string]colorful.Color, len(types)+1)
	for i, t := range types {
		out[t] = colorful.Hsv(float64(i)*360/float64(len(types)), 0.75, 0.8)
	}
	out[model.Unclassified] = colorful.Color{R: 0.6, G: 0.6, B: 0.6}
	return out
}

type stroke int

const (
	strokeLight stroke = iota
	strokeHeavy
	strokeDouble
)

func strokeOf(styles []grid.Style) stroke {
	for _, s := range styles {
		switch s {
		case grid.StyleHeavy:
			return strokeHeavy
		case grid.StyleDouble:
			return strokeDouble
		}
	}
	return strokeLight
}

// drawArms strokes each arm from the cell center to the cell edge.
func drawArms(img *image.RGBA, x, y int, arms grid.Arm, s stroke) {
	x0, y0 := x*CellWidth, y*CellHeight
	cx, cy := x0+CellWidth/2, y0+CellHeight/2
	offsets := []int{0}
	switch s {
	case strokeHeavy:
		offsets = []int{-1, 0, 1}
	case strokeDouble:
		offsets = []int{-1, 1}
	}
	for _, o := range offsets {
		if arms.Has(grid.ArmUp) {
			vline(img, cx+o, y0, cy, ink)
		}
		if arms.Has(grid.ArmDown) {
			vline(img, cx+o, cy, y0+CellHeight-1, ink)
		}
		if arms.Has(grid.ArmLeft) {
			hline(img, x0, cx, cy+o, ink)
		}
		if arms.Has(grid.ArmRight) {
			hline(img, cx, x0+CellWidth-1, cy+o, ink)
		}
	}
}

func hline(img *image.RGBA, x1, x2, y int, c color.Color) {
	for x := x1; x <= x2; x++ {
		img.Set(x, y, c)
	}
}

func vline(img *image.RGBA, x, y1, y2 int, c color.Color) {
	for y := y1; y <= y2; y++ {
		img.Set(x, y, c)
	}
}

// outline draws the pixel border of a cell rectangle.
func outline(img *image.RGBA, r grid.Rect, c color.Color) {
	x1, y1 := r.MinX*CellWidth, r.MinY*CellHeight
	x2, y2 := (r.MaxX+1)*CellWidth-1, (r.MaxY+1)*CellHeight-1
	hline(img, x1, x2, y1, c)
	hline(img, x1, x2, y2, c)
	vline(img, x1, y1, y2, c)
	vline(img, x2, y1, y2, c)
}

func drawCellGrid(img *image.RGBA, cols, rows int, c color.Color) {
	b := img.Bounds()
	for x := CellWidth; x < cols*CellWidth; x += CellWidth {
		vline(img, x, 0, b.Max.Y-1, c)
	}
	for y := CellHeight; y < rows*CellHeight; y += CellHeight {
		hline(img, 0, b.Max.X-1, y, c)
	}
}

// parseHexColor parses "#RGB", "#RRGGBB" or "#RRGGBBAA".
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}

	var r, g, b, a uint8 = 0, 0, 0, 255
	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r, g, b = uint8(val>>16), uint8(val>>8), uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r, g, b, a = uint8(val>>24), uint8(val>>16), uint8(val>>8), uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}
	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// digits is a 3x5 pixel font for ID labels.
var digits = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
}

// drawLabel draws a digit string on a filled background at x, y.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	const charWidth, labelHeight = 4, 6
	b := img.Bounds()
	set := func(px, py int, c color.RGBA) {
		if image.Pt(px, py).In(b) {
			img.Set(px, py, c)
		}
	}
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < len(text)*charWidth; dx++ {
			set(x+dx, y+dy, bg)
		}
	}
	cx := x
	for _, ch := range text {
		for row, line := range digits[ch] {
			for col, pixel := range line {
				if pixel == '1' {
					set(cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
