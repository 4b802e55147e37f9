package pattern

import (
	"math"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/ironsheep/mockup-tools-mcp/internal/features"
	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
)

// Parse compiles a pattern source. name labels error positions. The result
// keeps source order.
func Parse(name, text string) ([]*Rules, error) {
	p := &parser{src: &source{name: name}, seen: make(map[string]bool)}
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		toks, err := lexLine(p.src, i+1, line)
		if err != nil {
			return nil, err
		}
		if len(toks) == 0 {
			continue
		}
		if p.cur != nil {
			p.block = append(p.block, strings.TrimSpace(line))
		}
		if err := p.statement(i+1, toks); err != nil {
			return nil, err
		}
	}
	return p.finish()
}

type parser struct {
	src *source

	track     string
	trackLine int
	inTrack   bool
	tracks    int

	cur     *Rules
	curLine int
	block   []string

	// leftRefs are trap operands resolved once the block is complete.
	leftRefs []lineToken

	seen map[string]bool
	out  []*Rules
}

func (p *parser) errorf(line, col int, format string, args ...any) error {
	return p.src.errorf(line, col, format, args...)
}

func (p *parser) statement(line int, toks []token) error {
	kw := toks[0]
	if kw.kind != tokIdent {
		return p.errorf(line, kw.col, "expected keyword, found %s %q", kw.kind, kw.text)
	}

	switch kw.text {
	case "track":
		if p.inTrack {
			return p.errorf(line, kw.col, "track %q is still open (missing execute)", p.track)
		}
		name, err := p.words(line, toks, 2)
		if err != nil {
			return err
		}
		p.track, p.trackLine, p.inTrack = name[0].text, line, true
		p.tracks++
		return nil
	case "execute":
		if p.cur != nil {
			return p.errorf(line, kw.col, "execute inside pattern %q (missing end)", p.cur.id)
		}
		if !p.inTrack {
			return p.errorf(line, kw.col, "execute outside a track")
		}
		if len(toks) != 1 {
			return p.errorf(line, toks[1].col, "unexpected %q after execute", toks[1].text)
		}
		p.inTrack = false
		return nil
	case "pattern":
		return p.pattern(line, toks)
	case "end":
		if p.cur == nil {
			return p.errorf(line, kw.col, "end without pattern")
		}
		if len(toks) != 1 {
			return p.errorf(line, toks[1].col, "unexpected %q after end", toks[1].text)
		}
		return p.end(line, kw.col)
	case "tag", "pluck", "trap":
		if p.cur == nil {
			return p.errorf(line, kw.col, "%s outside a pattern", kw.text)
		}
		switch kw.text {
		case "tag":
			return p.tag(line, toks)
		case "pluck":
			return p.pluck(line, toks)
		default:
			return p.trap(line, toks)
		}
	}
	return p.errorf(line, kw.col, "unknown keyword %q", kw.text)
}

// words checks the statement is exactly n identifiers and returns those after
// the keyword.
func (p *parser) words(line int, toks []token, n int) ([]token, error) {
	for i := 1; i < len(toks) && i < n; i++ {
		if toks[i].kind != tokIdent {
			return nil, p.errorf(line, toks[i].col, "expected name, found %s %q", toks[i].kind, toks[i].text)
		}
	}
	if len(toks) < n {
		last := toks[len(toks)-1]
		return nil, p.errorf(line, last.col+len([]rune(last.text)), "%s needs a name", toks[0].text)
	}
	if len(toks) > n {
		return nil, p.errorf(line, toks[n].col, "unexpected %q", toks[n].text)
	}
	return toks[1:], nil
}

func (p *parser) pattern(line int, toks []token) error {
	kw := toks[0]
	if !p.inTrack {
		return p.errorf(line, kw.col, "pattern outside a track")
	}
	if p.cur != nil {
		return p.errorf(line, kw.col, "pattern %q is still open (missing end)", p.cur.id)
	}
	var name, typ token
	switch {
	case len(toks) == 2 && toks[1].kind == tokIdent:
		name, typ = toks[1], toks[1]
	case len(toks) == 4 && toks[1].kind == tokIdent && toks[2].kind == tokIdent &&
		toks[2].text == "as" && toks[3].kind == tokIdent:
		name, typ = toks[1], toks[3]
	default:
		return p.errorf(line, kw.col, "expected: pattern <name> [as <type>]")
	}
	id := p.track + "." + name.text
	if p.seen[id] {
		return p.errorf(line, name.col, "duplicate pattern %q", id)
	}
	p.seen[id] = true
	p.cur = &Rules{id: id, typ: typ.text}
	p.curLine = line
	p.block = []string{strings.Join(tokenTexts(toks), " ")}
	p.leftRefs = nil
	return nil
}

func tokenTexts(toks []token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.text
	}
	return out
}

func (p *parser) end(line, col int) error {
	r := p.cur
	if len(r.tags) == 0 {
		return p.errorf(p.curLine, 1, "pattern %q has no tag clauses", r.id)
	}
	plucked := make(map[string]bool)
	for _, pr := range r.plucks {
		plucked[pr.prop] = true
	}
	for i := range r.traps {
		t := &r.traps[i]
		ref := p.leftRefs[i]
		if t.op == "has" || t.op == "lacks" {
			if !plucked[t.name] {
				return p.errorf(ref.line, ref.col, "property %q is never plucked", t.name)
			}
			continue
		}
		switch {
		case plucked[t.name]:
			t.property = true
		case features.IsAttr(t.name):
			if err := p.checkTrapAttr(t, ref); err != nil {
				return err
			}
		default:
			return p.errorf(ref.line, ref.col, "unknown attribute or property %q", t.name)
		}
	}

	lines := make([]string, len(p.block))
	for i, l := range p.block {
		if i == 0 || i == len(p.block)-1 {
			lines[i] = l
		} else {
			lines[i] = "  " + l
		}
	}
	r.text = strings.Join(lines, "\n")
	p.out = append(p.out, r)
	p.cur = nil
	return nil
}

// checkTrapAttr validates a trap literal against its attribute's type.
func (p *parser) checkTrapAttr(t *trapRule, ref lineToken) error {
	numeric := features.IsNumericAttr(t.name)
	switch t.op {
	case "<", "<=", ">", ">=":
		if !numeric {
			return p.errorf(ref.line, ref.col, "attribute %q is not numeric", t.name)
		}
	case "==", "!=":
		if numeric && !t.lit.numeric {
			return p.errorf(ref.line, ref.col, "attribute %q compares with numbers", t.name)
		}
		if features.IsGlyphAttr(t.name) && !t.lit.numeric && t.lit.text != "" && len([]rune(t.lit.text)) > 1 {
			s := grid.Style(t.lit.text)
			if !isStyle(s) {
				return p.errorf(ref.line, ref.col, "%q is neither a glyph nor a border style", t.lit.text)
			}
			t.lit.style = s
		}
	}
	return nil
}

func isStyle(s grid.Style) bool {
	for _, known := range grid.StylePrecedence {
		if s == known {
			return true
		}
	}
	return false
}

// tag <attr> = v [| v]...   or   tag <attr> = a..b
func (p *parser) tag(line int, toks []token) error {
	if len(toks) < 4 || toks[1].kind != tokIdent || !isOp(toks[2], "=") {
		return p.errorf(line, toks[0].col, "expected: tag <attribute> = <values>")
	}
	attr := toks[1]
	if !features.IsAttr(attr.text) {
		return p.errorf(line, attr.col, "unknown attribute %q", attr.text)
	}
	rule := tagRule{attr: attr.text}
	vals := toks[3:]

	for _, t := range vals {
		if isOp(t, "..") {
			lo, hi, err := p.rangeBounds(line, vals)
			if err != nil {
				return err
			}
			if !features.IsNumericAttr(attr.text) {
				return p.errorf(line, attr.col, "ranges need a numeric attribute, %q is not", attr.text)
			}
			rule.ranged, rule.lo, rule.hi = true, lo, hi
			p.cur.tags = append(p.cur.tags, rule)
			return nil
		}
	}

	for i, t := range vals {
		if i%2 == 1 {
			if !isOp(t, "|") {
				return p.errorf(line, t.col, "expected | between values, found %q", t.text)
			}
			continue
		}
		lit, err := p.value(line, attr.text, t)
		if err != nil {
			return err
		}
		rule.values = append(rule.values, lit)
	}
	if len(vals)%2 == 0 {
		last := vals[len(vals)-1]
		return p.errorf(line, last.col+1, "missing value after |")
	}
	p.cur.tags = append(p.cur.tags, rule)
	return nil
}

func isOp(t token, op string) bool { return t.kind == tokOp && t.text == op }

func (p *parser) rangeBounds(line int, toks []token) (float64, float64, error) {
	lo, hi := math.Inf(-1), math.Inf(1)
	i := 0
	if i < len(toks) && toks[i].kind == tokNumber {
		lo = toks[i].num
		i++
	}
	if i >= len(toks) || !isOp(toks[i], "..") {
		return 0, 0, p.errorf(line, toks[0].col, "malformed range")
	}
	i++
	if i < len(toks) && toks[i].kind == tokNumber {
		hi = toks[i].num
		i++
	}
	if i != len(toks) {
		return 0, 0, p.errorf(line, toks[i].col, "unexpected %q in range", toks[i].text)
	}
	if math.IsInf(lo, -1) && math.IsInf(hi, 1) {
		return 0, 0, p.errorf(line, toks[0].col, "range needs at least one bound")
	}
	if lo > hi {
		return 0, 0, p.errorf(line, toks[0].col, "empty range %v..%v", lo, hi)
	}
	return lo, hi, nil
}

// value converts a tag value token for attr.
func (p *parser) value(line int, attr string, t token) (literal, error) {
	numeric := features.IsNumericAttr(attr)
	switch t.kind {
	case tokNumber:
		if !numeric {
			return literal{}, p.errorf(line, t.col, "attribute %q takes words, not numbers", attr)
		}
		return literal{text: t.text, num: t.num, numeric: true}, nil
	case tokString:
		if numeric {
			return literal{}, p.errorf(line, t.col, "attribute %q takes numbers", attr)
		}
		if features.IsGlyphAttr(attr) && len([]rune(t.text)) != 1 {
			return literal{}, p.errorf(line, t.col, "glyph literal must be one character, got %q", t.text)
		}
		return literal{text: t.text}, nil
	case tokIdent:
		if numeric {
			return literal{}, p.errorf(line, t.col, "attribute %q takes numbers", attr)
		}
		lit := literal{text: t.text}
		if features.IsGlyphAttr(attr) {
			s := grid.Style(t.text)
			if !isStyle(s) {
				return literal{}, p.errorf(line, t.col, "unknown border style %q", t.text)
			}
			lit.style = s
		}
		return lit, nil
	}
	return literal{}, p.errorf(line, t.col, "expected value, found %s %q", t.kind, t.text)
}

// pluck <prop> = [text|content|title|line N] /re/flags [=> "literal"]
func (p *parser) pluck(line int, toks []token) error {
	if len(toks) < 4 || toks[1].kind != tokIdent || !isOp(toks[2], "=") {
		return p.errorf(line, toks[0].col, "expected: pluck <property> = /regex/")
	}
	rule := pluckRule{prop: toks[1].text, from: fromText}
	rest := toks[3:]

	if rest[0].kind == tokIdent {
		switch rest[0].text {
		case "text":
		case "content":
			rule.from = fromContent
		case "title":
			rule.from = fromTitle
		case "line":
			if len(rest) < 2 || rest[1].kind != tokNumber || rest[1].num < 1 || rest[1].num != math.Trunc(rest[1].num) {
				return p.errorf(line, rest[0].col, "line needs a positive line number")
			}
			rule.from, rule.line = fromLine, int(rest[1].num)
			rest = rest[1:]
		default:
			return p.errorf(line, rest[0].col, "unknown pluck source %q", rest[0].text)
		}
		rest = rest[1:]
	}

	if len(rest) == 0 || rest[0].kind != tokRegex {
		col := toks[len(toks)-1].col
		if len(rest) > 0 {
			col = rest[0].col
		}
		return p.errorf(line, col, "pluck needs a /regex/")
	}
	re, err := p.compile(line, rest[0])
	if err != nil {
		return err
	}
	rule.re = re
	rest = rest[1:]

	if len(rest) > 0 {
		if !isOp(rest[0], "=>") || len(rest) != 2 || rest[1].kind != tokString {
			return p.errorf(line, rest[0].col, `expected => "literal"`)
		}
		fixed := rest[1].text
		rule.fixed = &fixed
	}
	p.cur.plucks = append(p.cur.plucks, rule)
	return nil
}

func (p *parser) compile(line int, t token) (*regexp2.Regexp, error) {
	if t.text == "" {
		return nil, p.errorf(line, t.col, "empty regex")
	}
	opts := regexp2.None
	for _, f := range t.flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		}
	}
	re, err := regexp2.Compile(t.text, opts)
	if err != nil {
		return nil, p.errorf(line, t.col, "invalid regex: %v", err)
	}
	re.MatchTimeout = regexTimeout
	return re, nil
}

type lineToken struct {
	line, col int
}

// trap has <prop> | trap lacks <prop> | trap <name> <op> <literal>
func (p *parser) trap(line int, toks []token) error {
	if len(toks) == 3 && toks[1].kind == tokIdent && (toks[1].text == "has" || toks[1].text == "lacks") {
		if toks[2].kind != tokIdent {
			return p.errorf(line, toks[2].col, "expected property name")
		}
		p.addTrap(trapRule{op: toks[1].text, name: toks[2].text}, line, toks[2].col)
		return nil
	}
	if len(toks) != 4 || toks[1].kind != tokIdent || toks[2].kind != tokOp {
		return p.errorf(line, toks[0].col, "expected: trap <name> <op> <value>")
	}
	op, rhs := toks[2], toks[3]
	rule := trapRule{op: op.text, name: toks[1].text}

	switch op.text {
	case "~", "!~":
		if rhs.kind != tokRegex {
			return p.errorf(line, rhs.col, "%s needs a /regex/", op.text)
		}
		re, err := p.compile(line, rhs)
		if err != nil {
			return err
		}
		rule.re = re
	case "<", "<=", ">", ">=":
		if rhs.kind != tokNumber {
			return p.errorf(line, rhs.col, "%s needs a number", op.text)
		}
		rule.lit = literal{text: rhs.text, num: rhs.num, numeric: true}
	case "==", "!=":
		switch rhs.kind {
		case tokNumber:
			rule.lit = literal{text: rhs.text, num: rhs.num, numeric: true}
		case tokString, tokIdent:
			rule.lit = literal{text: rhs.text}
		default:
			return p.errorf(line, rhs.col, "expected value, found %s", rhs.kind)
		}
	default:
		return p.errorf(line, op.col, "unknown operator %q", op.text)
	}
	p.addTrap(rule, line, toks[1].col)
	return nil
}

func (p *parser) addTrap(rule trapRule, line, col int) {
	p.cur.traps = append(p.cur.traps, rule)
	p.leftRefs = append(p.leftRefs, lineToken{line: line, col: col})
}

func (p *parser) finish() ([]*Rules, error) {
	if p.cur != nil {
		return nil, p.errorf(p.curLine, 1, "pattern %q is missing end", p.cur.id)
	}
	if p.inTrack {
		return nil, p.errorf(p.trackLine, 1, "track %q is missing execute", p.track)
	}
	if p.tracks == 0 {
		return nil, p.errorf(1, 1, "source defines no tracks")
	}
	return p.out, nil
}
