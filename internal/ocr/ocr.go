package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
)

// Bounds is a pixel rectangle, max exclusive.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (b Bounds) width() int  { return b.X2 - b.X1 }
func (b Bounds) height() int { return b.Y2 - b.Y1 }

// Word is one recognized word in source image coordinates.
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Bounds     Bounds  `json:"bounds"`
}

// Options control an import.
type Options struct {
	Language string

	// Upscale enlarges the image before recognition. Values below 1 mean 1.
	Upscale float64

	// Region restricts recognition to part of the image. Empty means all.
	Region image.Rectangle

	// MinConfidence drops words Tesseract is less sure of, 0..1.
	MinConfidence float64

	// Frames redraws rectangles found in the image as box outlines.
	Frames bool
}

// Frame detection limits, in source pixels before upscaling.
const (
	minFrameSide   = 6
	frameTolerance = 0.8
)

// DefaultOptions returns English recognition at double size.
func DefaultOptions() Options {
	return Options{Language: "eng", Upscale: 2, Frames: true}
}

// Result is an imported mockup.
type Result struct {
	// Lines are the words laid out on a character grid, padded to one width.
	Lines []string `json:"lines"`

	Words []Word `json:"words"`

	Frames []Frame `json:"frames,omitempty"`

	// CellWidth and CellHeight estimate the character cell in source pixels.
	CellWidth  float64 `json:"cell_width"`
	CellHeight float64 `json:"cell_height"`
}

// Text joins Lines with newlines.
func (r *Result) Text() string {
	var buf bytes.Buffer
	for i, l := range r.Lines {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(l)
	}
	return buf.String()
}

// Open loads an image file, applying EXIF orientation.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return img, nil
}

// Preprocess crops, converts to grayscale and upscales img. It returns the
// processed image and the offset of its origin in img.
func Preprocess(img image.Image, opts Options) (*image.NRGBA, image.Point, error) {
	b := img.Bounds()
	region := b
	if !opts.Region.Empty() {
		if !opts.Region.In(b) {
			return nil, image.Point{}, fmt.Errorf("crop region %v outside image bounds %v", opts.Region, b)
		}
		region = opts.Region
	}
	out := imaging.Grayscale(imaging.Crop(img, region))
	if opts.Upscale > 1 {
		w := int(float64(out.Bounds().Dx()) * opts.Upscale)
		h := int(float64(out.Bounds().Dy()) * opts.Upscale)
		out = imaging.Resize(out, w, h, imaging.Lanczos)
	}
	return out, region.Min, nil
}

// Import recognizes the words and frames of img and lays them out as text.
func Import(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if opts.Language == "" {
		opts.Language = DefaultOptions().Language
	}
	scale := opts.Upscale
	if scale < 1 {
		scale = 1
	}
	prepared, origin, err := Preprocess(img, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(opts.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		conf := float64(box.Confidence) / 100.0
		if box.Word == "" || conf < opts.MinConfidence {
			continue
		}
		words = append(words, Word{
			Text:       box.Word,
			Confidence: conf,
			Bounds: Bounds{
				X1: origin.X + int(float64(box.Box.Min.X)/scale),
				Y1: origin.Y + int(float64(box.Box.Min.Y)/scale),
				X2: origin.X + int(float64(box.Box.Max.X)/scale),
				Y2: origin.Y + int(float64(box.Box.Max.Y)/scale),
			},
		})
	}
	if len(words) == 0 {
		return nil, &grid.FormatError{Reason: "no text recognized in image"}
	}

	var frames []Frame
	if opts.Frames {
		for _, f := range DetectFrames(prepared, int(minFrameSide*scale), frameTolerance) {
			f.Bounds = Bounds{
				X1: origin.X + int(float64(f.Bounds.X1)/scale),
				Y1: origin.Y + int(float64(f.Bounds.Y1)/scale),
				X2: origin.X + int(float64(f.Bounds.X2)/scale),
				Y2: origin.Y + int(float64(f.Bounds.Y2)/scale),
			}
			frames = append(frames, f)
		}
	}

	lines, cw, ch := Layout(words, frames)
	return &Result{Lines: lines, Words: words, Frames: frames, CellWidth: cw, CellHeight: ch}, nil
}

// Version reports the linked Tesseract version.
func Version() string {
	return gosseract.Version()
}
