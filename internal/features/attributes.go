package features

import (
	"sort"
	"strconv"
)

// Value is an attribute value as seen by pattern rules.
type Value struct {
	Text    string
	Number  float64
	Numeric bool
}

func text(s string) Value { return Value{Text: s} }

func number(n float64) Value {
	return Value{Text: strconv.FormatFloat(n, 'f', -1, 64), Number: n, Numeric: true}
}

func glyph(r rune) Value {
	if r == 0 {
		return Value{}
	}
	return Value{Text: string(r)}
}

func yesNo(b bool) Value {
	if b {
		return text("yes")
	}
	return text("no")
}

// attrs maps attribute names to accessors. The key set is the vocabulary of
// tag and trap rules.
var attrs = map[string]func(*Vector) Value{
	"kind":           func(v *Vector) Value { return text(string(v.Kind)) },
	"border":         func(v *Vector) Value { return text(string(v.BorderStyle)) },
	"align":          func(v *Vector) Value { return text(string(v.Align)) },
	"brackets":       func(v *Vector) Value { return yesNo(v.Brackets) },
	"marker":         func(v *Vector) Value { return text(string(v.MarkerKind)) },
	"open":           func(v *Vector) Value { return glyph(v.Open) },
	"close":          func(v *Vector) Value { return glyph(v.Close) },
	"top_left":       func(v *Vector) Value { return glyph(v.TopLeft) },
	"top_right":      func(v *Vector) Value { return glyph(v.TopRight) },
	"bottom_left":    func(v *Vector) Value { return glyph(v.BottomLeft) },
	"bottom_right":   func(v *Vector) Value { return glyph(v.BottomRight) },
	"horizontal":     func(v *Vector) Value { return glyph(v.Horizontal) },
	"vertical":       func(v *Vector) Value { return glyph(v.Vertical) },
	"lines":          func(v *Vector) Value { return number(float64(v.Lines)) },
	"width":          func(v *Vector) Value { return number(float64(v.Width)) },
	"height":         func(v *Vector) Value { return number(float64(v.Height)) },
	"aspect":         func(v *Vector) Value { return number(v.Aspect) },
	"density":        func(v *Vector) Value { return number(v.ContentDensity) },
	"border_density": func(v *Vector) Value { return number(v.BorderDensity) },
	"markers":        func(v *Vector) Value { return number(float64(v.Markers)) },
	"text":           func(v *Vector) Value { return text(v.Text) },
	"title":          func(v *Vector) Value { return text(v.Title) },
}

var glyphAttrs = map[string]bool{
	"open": true, "close": true,
	"top_left": true, "top_right": true, "bottom_left": true, "bottom_right": true,
	"horizontal": true, "vertical": true,
}

// Attr looks up a named attribute.
func (v *Vector) Attr(name string) (Value, bool) {
	f, ok := attrs[name]
	if !ok {
		return Value{}, false
	}
	return f(v), true
}

// IsAttr reports whether name is a known attribute.
func IsAttr(name string) bool {
	_, ok := attrs[name]
	return ok
}

// IsGlyphAttr reports whether the attribute holds a single border glyph.
// Such attributes also match style names ("top_left = rounded").
func IsGlyphAttr(name string) bool { return glyphAttrs[name] }

// IsNumericAttr reports whether the attribute holds a number. Ranges and
// ordering comparisons apply only to these.
func IsNumericAttr(name string) bool {
	f, ok := attrs[name]
	if !ok {
		return false
	}
	return f(&Vector{}).Numeric
}

// AttrNames lists the attribute vocabulary in sorted order.
func AttrNames() []string {
	names := make([]string, 0, len(attrs))
	for n := range attrs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
