package ocr

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func word(text string, x1, y1, x2, y2 int) Word {
	return Word{Text: text, Confidence: 0.9, Bounds: Bounds{X1: x1, Y1: y1, X2: x2, Y2: y2}}
}

func TestLayout(t *testing.T) {
	words := []Word{
		word("Dark", 40, 90, 80, 110),
		word("[OK]", 0, 0, 40, 20),
		word("Name:", 0, 30, 50, 50),
		word("[Cancel]", 60, 0, 140, 20),
		word("[X]", 0, 90, 30, 110),
	}
	lines, cw, ch := Layout(words, nil)
	assert.Equal(t, 10.0, cw)
	assert.Equal(t, 20.0, ch)
	assert.Equal(t, []string{
		"[OK]  [Cancel]",
		"Name:         ",
		"              ",
		"[X] Dark      ",
	}, lines)
}

func TestLayout_KeepsWordsApart(t *testing.T) {
	lines, _, _ := Layout([]Word{word("ab", 0, 0, 20, 20), word("cd", 15, 2, 35, 22)}, nil)
	assert.Equal(t, []string{"ab cd"}, lines)
}

func TestLayout_Offset(t *testing.T) {
	lines, _, _ := Layout([]Word{word("hi", 100, 100, 120, 120), word("yo", 140, 100, 160, 120)}, nil)
	assert.Equal(t, []string{"hi  yo"}, lines)
}

func TestLayout_Empty(t *testing.T) {
	lines, cw, ch := Layout(nil, []Frame{{Bounds: Bounds{X2: 50, Y2: 50}}})
	assert.Nil(t, lines)
	assert.Zero(t, cw)
	assert.Zero(t, ch)
}

func TestLayout_Frames(t *testing.T) {
	frame := Frame{Bounds: Bounds{X1: 10, Y1: 30, X2: 71, Y2: 71}, Confidence: 1}
	lines, _, _ := Layout([]Word{word("OK", 25, 40, 45, 60)}, []Frame{frame})
	assert.Equal(t, []string{
		"┌─────┐",
		"│ OK  │",
		"└─────┘",
	}, lines)
}

func TestLayout_FrameTitle(t *testing.T) {
	frame := Frame{Bounds: Bounds{X1: 10, Y1: 30, X2: 91, Y2: 71}, Confidence: 1}
	words := []Word{
		word("Hi", 35, 20, 55, 40),
		word("OK", 25, 40, 45, 60),
		word("|", 86, 40, 89, 60),
	}
	lines, _, _ := Layout(words, []Frame{frame})
	assert.Equal(t, []string{
		"┌─ Hi ──┐",
		"│ OK    │",
		"└───────┘",
	}, lines)
}

func TestResult_Text(t *testing.T) {
	r := &Result{Lines: []string{"[OK]", "    "}}
	assert.Equal(t, "[OK]\n    ", r.Text())
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestPreprocess(t *testing.T) {
	img := solid(40, 20, color.RGBA{200, 10, 10, 255})

	out, origin, err := Preprocess(img, Options{Upscale: 2})
	require.NoError(t, err)
	assert.Equal(t, image.Point{}, origin)
	assert.Equal(t, 80, out.Bounds().Dx())
	assert.Equal(t, 40, out.Bounds().Dy())
	px := out.NRGBAAt(10, 10)
	assert.Equal(t, px.R, px.G)
	assert.Equal(t, px.G, px.B)

	out, origin, err = Preprocess(img, Options{Region: image.Rect(10, 5, 30, 15)})
	require.NoError(t, err)
	assert.Equal(t, image.Pt(10, 5), origin)
	assert.Equal(t, 20, out.Bounds().Dx())

	_, _, err = Preprocess(img, Options{Region: image.Rect(10, 5, 50, 15)})
	assert.Error(t, err)
}

func outline(img *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

func TestDetectFrames(t *testing.T) {
	img := solid(120, 80, color.White)
	outline(img, image.Rect(5, 5, 110, 70), color.Black)
	outline(img, image.Rect(20, 20, 60, 40), color.Black)
	// glyph-sized ink and a filled block are not frames
	draw.Draw(img, image.Rect(30, 28, 33, 32), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(70, 20, 100, 50), image.NewUniform(color.Black), image.Point{}, draw.Src)

	frames := DetectFrames(img, 6, 0.8)
	require.Len(t, frames, 2)
	assert.Equal(t, Bounds{X1: 5, Y1: 5, X2: 110, Y2: 70}, frames[0].Bounds)
	assert.Equal(t, 1.0, frames[0].Confidence)
	assert.Equal(t, Bounds{X1: 20, Y1: 20, X2: 60, Y2: 40}, frames[1].Bounds)
}

func TestDetectFrames_ThickStroke(t *testing.T) {
	img := solid(60, 40, color.White)
	outline(img, image.Rect(4, 4, 56, 36), color.Black)
	outline(img, image.Rect(5, 5, 55, 35), color.Black)

	frames := DetectFrames(img, 6, 0.8)
	require.Len(t, frames, 1)
	assert.Equal(t, Bounds{X1: 4, Y1: 4, X2: 56, Y2: 36}, frames[0].Bounds)
	assert.InDelta(t, 1.0, frames[0].Confidence, 1e-9)
}

func TestDetectFrames_Offset(t *testing.T) {
	img := solid(60, 40, color.White)
	outline(img, image.Rect(10, 10, 40, 30), color.Black)
	sub := img.SubImage(image.Rect(5, 5, 60, 40))

	frames := DetectFrames(sub, 6, 0.8)
	require.Len(t, frames, 1)
	assert.Equal(t, Bounds{X1: 10, Y1: 10, X2: 40, Y2: 30}, frames[0].Bounds)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open("/nonexistent/mockup.png")
	assert.Error(t, err)
}

// TestImport runs Tesseract on rendered text when it is installed.
func TestImport(t *testing.T) {
	img := solid(200, 40, color.White)
	d := &font.Drawer{Dst: img, Src: image.NewUniform(color.Black), Face: basicfont.Face7x13, Dot: fixed.P(10, 25)}
	d.DrawString("Save   Cancel")
	big := imaging.Resize(img, 600, 120, imaging.NearestNeighbor)

	res, err := Import(context.Background(), big, DefaultOptions())
	if err != nil {
		t.Skipf("tesseract unavailable or unreadable input: %v", err)
	}
	require.NotEmpty(t, res.Lines)
	assert.NotEmpty(t, res.Words)
	for _, l := range res.Lines {
		assert.Equal(t, len([]rune(res.Lines[0])), len([]rune(l)))
	}
}

func TestImport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Import(ctx, solid(10, 10, color.White), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}
