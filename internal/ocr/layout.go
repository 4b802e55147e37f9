package ocr

import (
	"image"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// Layout snaps words and frames onto a character grid and returns the
// padded lines with the estimated cell width and height. Words on one row
// keep at least one blank between them; rows further apart than one line
// pitch keep the blank rows between them. Frames are drawn with single-line
// box glyphs through the centers of their edge cells.
func Layout(words []Word, frames []Frame) ([]string, float64, float64) {
	if len(words) == 0 {
		return nil, 0, 0
	}
	cw, ch := cellSize(words)

	order := append([]Word(nil), words...)
	sort.SliceStable(order, func(i, j int) bool {
		ci, cj := centerY(order[i]), centerY(order[j])
		if ci != cj {
			return ci < cj
		}
		return order[i].Bounds.X1 < order[j].Bounds.X1
	})

	var rows [][]Word
	var rowY []float64
	for _, w := range order {
		cy := centerY(w)
		if n := len(rows); n > 0 && math.Abs(cy-rowY[n-1]) <= ch/2 {
			rows[n-1] = append(rows[n-1], w)
			rowY[n-1] += (cy - rowY[n-1]) / float64(len(rows[n-1]))
			continue
		}
		rows = append(rows, []Word{w})
		rowY = append(rowY, cy)
	}

	pitch := ch
	for i := 1; i < len(rowY); i++ {
		if d := rowY[i] - rowY[i-1]; i == 1 || d < pitch {
			pitch = d
		}
	}
	pitch = math.Max(pitch, ch)

	// x0 is the left edge of column 0, y0 the center of row 0.
	x0, y0 := float64(words[0].Bounds.X1), rowY[0]
	for _, w := range words {
		x0 = math.Min(x0, float64(w.Bounds.X1))
	}
	for _, f := range frames {
		x0 = math.Min(x0, float64(f.Bounds.X1)-cw/2)
		y0 = math.Min(y0, float64(f.Bounds.Y1))
	}

	var cells [][]rune
	grow := func(rows, cols int) {
		for len(cells) < rows {
			cells = append(cells, nil)
		}
		for y := 0; y < rows; y++ {
			for len(cells[y]) < cols {
				cells[y] = append(cells[y], ' ')
			}
		}
	}

	prev := -1
	for i, row := range rows {
		idx := max(prev+1, int(math.Round((rowY[i]-y0)/pitch)))
		grow(idx+1, 0)
		prev = idx

		sort.SliceStable(row, func(a, b int) bool { return row[a].Bounds.X1 < row[b].Bounds.X1 })
		var line []rune
		for j, w := range row {
			col := int(math.Round((float64(w.Bounds.X1) - x0) / cw))
			if j > 0 {
				col = max(col, len(line)+1)
			}
			for len(line) < col {
				line = append(line, ' ')
			}
			line = append(line, []rune(w.Text)...)
		}
		cells[idx] = line
	}

	for _, f := range frames {
		r := frameCells(f, x0, y0, cw, pitch)
		if r.Dx() < 1 || r.Dy() < 1 {
			continue
		}
		grow(r.Max.Y+1, r.Max.X+1)
		drawFrame(cells, r)
	}

	widest := 0
	for _, l := range cells {
		widest = max(widest, len(l))
	}
	lines := make([]string, len(cells))
	for i, l := range cells {
		lines[i] = string(l) + strings.Repeat(" ", widest-len(l))
	}
	return lines, cw, ch
}

// frameCells maps a frame to the cells its edges run through. Max is
// inclusive.
func frameCells(f Frame, x0, y0, cw, pitch float64) image.Rectangle {
	col := func(px int) int { return int(math.Round((float64(px) - cw/2 - x0) / cw)) }
	row := func(px int) int { return int(math.Round((float64(px) - y0) / pitch)) }
	return image.Rect(
		max(col(f.Bounds.X1), 0), max(row(f.Bounds.Y1), 0),
		col(f.Bounds.X2-1), row(f.Bounds.Y2-1),
	)
}

// drawFrame paints a single-line outline. Recognized text on an edge is kept,
// with a blank on either side so it reads as a title; stray strokes the
// recognizer mistook for characters are replaced.
func drawFrame(cells [][]rune, r image.Rectangle) {
	isText := func(x, y int) bool {
		c := cells[y][x]
		return c != ' ' && !isFrameGlyph(c) && !isStroke(c)
	}
	put := func(x, y int, c rune) {
		if isText(x, y) {
			return
		}
		if r.Min.X < x && x < r.Max.X && (isText(x-1, y) || isText(x+1, y)) {
			cells[y][x] = ' '
			return
		}
		cells[y][x] = c
	}

	for x := r.Min.X + 1; x < r.Max.X; x++ {
		put(x, r.Min.Y, '─')
		put(x, r.Max.Y, '─')
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		put(r.Min.X, y, '│')
		put(r.Max.X, y, '│')
	}
	put(r.Min.X, r.Min.Y, '┌')
	put(r.Max.X, r.Min.Y, '┐')
	put(r.Min.X, r.Max.Y, '└')
	put(r.Max.X, r.Max.Y, '┘')
}

func isFrameGlyph(c rune) bool { return strings.ContainsRune("┌┐└┘─│", c) }

// isStroke reports characters Tesseract commonly reads from a bare line.
func isStroke(c rune) bool { return strings.ContainsRune("|!lI-_—–=", c) }

// cellSize takes the median per-character width and the median word height.
func cellSize(words []Word) (float64, float64) {
	ws := make([]float64, 0, len(words))
	hs := make([]float64, 0, len(words))
	for _, w := range words {
		if n := utf8.RuneCountInString(w.Text); n > 0 && w.Bounds.width() > 0 {
			ws = append(ws, float64(w.Bounds.width())/float64(n))
		}
		if w.Bounds.height() > 0 {
			hs = append(hs, float64(w.Bounds.height()))
		}
	}
	return math.Max(median(ws), 1), math.Max(median(hs), 1)
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sort.Float64s(xs)
	mid := len(xs) / 2
	if len(xs)%2 == 0 {
		return (xs[mid-1] + xs[mid]) / 2
	}
	return xs[mid]
}

func centerY(w Word) float64 {
	return float64(w.Bounds.Y1+w.Bounds.Y2) / 2
}
