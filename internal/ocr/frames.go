package ocr

import (
	"image"
	"math"
	"sort"
)

// Frame is a rectangular outline found in an image, in source pixels.
type Frame struct {
	Bounds Bounds `json:"bounds"`

	// Confidence is how closely the ink matches a hollow rectangle, 0..1.
	Confidence float64 `json:"confidence"`
}

// inkThreshold separates dark strokes from the background in grayscale.
const inkThreshold = 128

// DetectFrames finds hollow rectangles drawn in dark ink.
//
// Dark pixels are grouped into 8-connected components. Each component large
// enough in both directions is scored against its bounding box: the share of
// the box outline that is inked, times how close the pixel count comes to an
// outline of the measured stroke thickness. Text glyphs never touch a border
// they sit inside, so they form components of their own and are rejected by
// size or score.
//
// Frames are returned largest first.
func DetectFrames(img image.Image, minSide int, tolerance float64) []Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	ink := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ink[y*w+x] = grayValue(img, b.Min.X+x, b.Min.Y+y) < inkThreshold
		}
	}

	visited := make([]bool, w*h)
	var frames []Frame
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !ink[y*w+x] || visited[y*w+x] {
				continue
			}
			r, n := component(ink, visited, w, h, x, y)
			if r.Dx() < minSide || r.Dy() < minSide {
				continue
			}
			conf := outlineScore(ink, w, r, n)
			if conf < tolerance {
				continue
			}
			frames = append(frames, Frame{
				Bounds: Bounds{
					X1: r.Min.X + b.Min.X,
					Y1: r.Min.Y + b.Min.Y,
					X2: r.Max.X + b.Min.X,
					Y2: r.Max.Y + b.Min.Y,
				},
				Confidence: math.Round(conf*1e3) / 1e3,
			})
		}
	}

	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].Bounds.width()*frames[i].Bounds.height() > frames[j].Bounds.width()*frames[j].Bounds.height()
	})
	return frames
}

// component flood-fills the ink pixels connected to (x, y) and returns their
// bounding box and count.
func component(ink, visited []bool, w, h, x, y int) (image.Rectangle, int) {
	r := image.Rect(x, y, x+1, y+1)
	n := 0
	stack := []image.Point{{X: x, Y: y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		i := p.Y*w + p.X
		if visited[i] || !ink[i] {
			continue
		}
		visited[i] = true
		n++
		r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx != 0 || dy != 0 {
					stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
				}
			}
		}
	}
	return r, n
}

// outlineScore rates a component of n pixels with bounding box r.
func outlineScore(ink []bool, w int, r image.Rectangle, n int) float64 {
	at := func(x, y int) bool { return ink[y*w+x] }

	ring, hit := 0, 0
	for x := r.Min.X; x < r.Max.X; x++ {
		for _, y := range [2]int{r.Min.Y, r.Max.Y - 1} {
			ring++
			if at(x, y) {
				hit++
			}
		}
	}
	for y := r.Min.Y + 1; y < r.Max.Y-1; y++ {
		for _, x := range [2]int{r.Min.X, r.Max.X - 1} {
			ring++
			if at(x, y) {
				hit++
			}
		}
	}
	coverage := float64(hit) / float64(ring)

	// Stroke thickness, measured down the middle column.
	t, mid := 0, (r.Min.X+r.Max.X)/2
	for y := r.Min.Y; y < r.Max.Y && at(mid, y); y++ {
		t++
	}
	if t == 0 || 2*t >= r.Dy() || 2*t >= r.Dx() {
		return 0
	}
	expected := 2*t*(r.Dx()+r.Dy()) - 4*t*t
	shape := 1 - math.Abs(float64(n-expected))/float64(expected)
	return math.Max(0, coverage*shape)
}

// grayValue converts a pixel to grayscale using ITU-R BT.601 weights.
func grayValue(img image.Image, x, y int) uint8 {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(float64(r>>8)*0.299 + float64(g>>8)*0.587 + float64(b>>8)*0.114)
}
