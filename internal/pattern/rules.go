package pattern

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/ironsheep/mockup-tools-mcp/internal/features"
	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
)

// regexTimeout bounds a single pluck or trap regex evaluation.
const regexTimeout = 250 * time.Millisecond

// Subject is what a pattern is evaluated against.
type Subject struct {
	Vector *features.Vector
	Glyphs *grid.Glyphs
}

// Match is a pattern's verdict on one candidate. It is consumed by the
// hierarchy builder and never stored on its own.
type Match struct {
	PatternID   string            `json:"pattern_id"`
	CandidateID int               `json:"candidate_id"`
	Type        string            `json:"type"`
	Confidence  float64           `json:"confidence"`
	Properties  map[string]string `json:"properties,omitempty"`
}

// Pattern is a matching strategy. Implementations must be immutable and safe
// for concurrent use.
type Pattern interface {
	ID() string
	Type() string
	Evaluate(s Subject) (Match, bool)
}

// Rules is a pattern compiled from the grammar.
type Rules struct {
	id     string
	typ    string
	tags   []tagRule
	plucks []pluckRule
	traps  []trapRule
	text   string
}

// ID returns "<track>.<name>".
func (p *Rules) ID() string { return p.id }

// Type returns the component type a match assigns.
func (p *Rules) Type() string { return p.typ }

// String returns the pattern block as written.
func (p *Rules) String() string { return p.text }

type literal struct {
	text    string
	num     float64
	numeric bool

	// style is set when a bare word names a border style on a glyph-role
	// attribute.
	style grid.Style
}

type tagRule struct {
	attr   string
	values []literal

	ranged bool
	lo, hi float64
}

type pluckFrom int

const (
	fromText pluckFrom = iota
	fromContent
	fromTitle
	fromLine
)

type pluckRule struct {
	prop  string
	from  pluckFrom
	line  int
	re    *regexp2.Regexp
	fixed *string
}

type trapRule struct {
	op       string
	name     string
	property bool
	lit      literal
	re       *regexp2.Regexp
}

// Evaluate scores the subject. It reports false when no exact tag matched or
// a trap failed.
func (p *Rules) Evaluate(s Subject) (Match, bool) {
	v := s.Vector
	var exact, exactHit, ranged, rangedHit int
	for i := range p.tags {
		t := &p.tags[i]
		val, _ := v.Attr(t.attr)
		if t.ranged {
			ranged++
			if val.Numeric && val.Number >= t.lo && val.Number <= t.hi {
				rangedHit++
			}
			continue
		}
		exact++
		if t.matches(val, s.Glyphs) {
			exactHit++
		}
	}
	specificity := ratio(exactHit, exact)
	if specificity == 0 {
		return Match{}, false
	}

	props := make(map[string]string)
	targets := make(map[string]bool)
	for i := range p.plucks {
		pr := &p.plucks[i]
		targets[pr.prop] = true
		if _, done := props[pr.prop]; done {
			continue
		}
		if val, ok := pr.apply(v); ok {
			props[pr.prop] = val
		}
	}

	for i := range p.traps {
		if !p.traps[i].holds(v, s.Glyphs, props) {
			return Match{}, false
		}
	}

	conf := specificity * (0.6 + 0.25*ratio(rangedHit, ranged) + 0.15*ratio(len(props), len(targets)))
	m := Match{
		PatternID:   p.id,
		CandidateID: v.CandidateID,
		Type:        p.typ,
		Confidence:  math.Round(conf*1e4) / 1e4,
	}
	if len(props) > 0 {
		m.Properties = props
	}
	return m, true
}

// ratio is hit/total, or 1 when nothing was asked.
func ratio(hit, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(hit) / float64(total)
}

func (t *tagRule) matches(val features.Value, g *grid.Glyphs) bool {
	for _, want := range t.values {
		if want.equal(val, g) {
			return true
		}
	}
	return false
}

func (l literal) equal(val features.Value, g *grid.Glyphs) bool {
	switch {
	case l.style != "":
		r := []rune(val.Text)
		return len(r) == 1 && g.InStyle(r[0], l.style)
	case l.numeric && val.Numeric:
		return math.Abs(l.num-val.Number) < 1e-9
	default:
		return l.text == val.Text
	}
}

func (pr *pluckRule) apply(v *features.Vector) (string, bool) {
	var in string
	switch pr.from {
	case fromText:
		in = v.Text
	case fromContent:
		in = strings.Join(v.Content, "\n")
	case fromTitle:
		in = v.Title
	case fromLine:
		if pr.line > len(v.Content) {
			return "", false
		}
		in = v.Content[pr.line-1]
	}

	m, err := pr.re.FindStringMatch(in)
	if err != nil || m == nil {
		return "", false
	}
	if pr.fixed != nil {
		return *pr.fixed, true
	}
	out := m.String()
	if m.GroupCount() > 1 {
		g := m.GroupByNumber(1)
		if g == nil || len(g.Captures) == 0 {
			return "", false
		}
		out = g.String()
	}
	if out == "" {
		return "", false
	}
	return out, true
}

func (t *trapRule) holds(v *features.Vector, g *grid.Glyphs, props map[string]string) bool {
	switch t.op {
	case "has":
		_, ok := props[t.name]
		return ok
	case "lacks":
		_, ok := props[t.name]
		return !ok
	}

	var left features.Value
	if t.property {
		s, ok := props[t.name]
		if !ok {
			return false
		}
		left = features.Value{Text: s}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			left.Number, left.Numeric = n, true
		}
	} else {
		left, _ = v.Attr(t.name)
	}

	switch t.op {
	case "==":
		return t.lit.equal(left, g)
	case "!=":
		return !t.lit.equal(left, g)
	case "~", "!~":
		ok, err := t.re.MatchString(left.Text)
		if err != nil {
			return false
		}
		return ok == (t.op == "~")
	}

	if !left.Numeric {
		return false
	}
	switch t.op {
	case "<":
		return left.Number < t.lit.num
	case "<=":
		return left.Number <= t.lit.num
	case ">":
		return left.Number > t.lit.num
	case ">=":
		return left.Number >= t.lit.num
	}
	return false
}
