package pattern

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokRegex
	tokOp
)

func (k tokenKind) String() string {
	switch k {
	case tokIdent:
		return "word"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokRegex:
		return "regex"
	default:
		return "operator"
	}
}

type token struct {
	kind tokenKind
	text string
	num  float64

	// flags holds the letters after a regex literal.
	flags string
	col   int
}

// operators, longest first.
var operators = []string{"=>", "==", "!=", "<=", ">=", "!~", "..", "=", "|", "<", ">", "~"}

// lexer splits one source line into tokens.
type lexer struct {
	src  *source
	line int
	r    []rune
	pos  int
}

type source struct {
	name string
}

func (s *source) errorf(line, col int, format string, args ...any) *DefinitionError {
	return &DefinitionError{Source: s.name, Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

func lexLine(src *source, line int, text string) ([]token, error) {
	lx := &lexer{src: src, line: line, r: []rune(text)}
	var toks []token
	for {
		lx.skipSpace()
		if lx.pos >= len(lx.r) || lx.r[lx.pos] == '#' {
			return toks, nil
		}
		t, err := lx.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
	}
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.r) && unicode.IsSpace(lx.r[lx.pos]) {
		lx.pos++
	}
}

func (lx *lexer) next() (token, error) {
	start := lx.pos
	col := start + 1
	c := lx.r[start]

	switch {
	case c == '"':
		return lx.quoted(col)
	case c == '/':
		return lx.regex(col)
	case unicode.IsDigit(c):
		return lx.number(col), nil
	case c == '_' || unicode.IsLetter(c):
		for lx.pos < len(lx.r) && isWordRune(lx.r[lx.pos]) {
			lx.pos++
		}
		return token{kind: tokIdent, text: string(lx.r[start:lx.pos]), col: col}, nil
	}

	rest := string(lx.r[start:])
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			lx.pos += len([]rune(op))
			return token{kind: tokOp, text: op, col: col}, nil
		}
	}
	return token{}, lx.src.errorf(lx.line, col, "unexpected character %q", c)
}

func isWordRune(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// number reads digits with an optional fraction. A '.' followed by another
// '.' belongs to a range operator.
func (lx *lexer) number(col int) token {
	start := lx.pos
	for lx.pos < len(lx.r) && unicode.IsDigit(lx.r[lx.pos]) {
		lx.pos++
	}
	if lx.pos+1 < len(lx.r) && lx.r[lx.pos] == '.' && unicode.IsDigit(lx.r[lx.pos+1]) {
		lx.pos++
		for lx.pos < len(lx.r) && unicode.IsDigit(lx.r[lx.pos]) {
			lx.pos++
		}
	}
	text := string(lx.r[start:lx.pos])
	n, _ := strconv.ParseFloat(text, 64)
	return token{kind: tokNumber, text: text, num: n, col: col}
}

func (lx *lexer) quoted(col int) (token, error) {
	var b strings.Builder
	lx.pos++
	for lx.pos < len(lx.r) {
		c := lx.r[lx.pos]
		switch c {
		case '"':
			lx.pos++
			return token{kind: tokString, text: b.String(), col: col}, nil
		case '\\':
			if lx.pos+1 >= len(lx.r) {
				return token{}, lx.src.errorf(lx.line, lx.pos+1, "unterminated escape")
			}
			lx.pos++
			switch e := lx.r[lx.pos]; e {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case '"', '\\':
				b.WriteRune(e)
			default:
				return token{}, lx.src.errorf(lx.line, lx.pos, "unknown escape \\%c", e)
			}
		default:
			b.WriteRune(c)
		}
		lx.pos++
	}
	return token{}, lx.src.errorf(lx.line, col, "unterminated string")
}

// regex reads /expr/flags. "\/" is an escaped slash; every other escape is
// passed to the regex engine untouched.
func (lx *lexer) regex(col int) (token, error) {
	var b strings.Builder
	lx.pos++
	for lx.pos < len(lx.r) {
		c := lx.r[lx.pos]
		if c == '\\' && lx.pos+1 < len(lx.r) {
			if lx.r[lx.pos+1] == '/' {
				b.WriteRune('/')
			} else {
				b.WriteRune(c)
				b.WriteRune(lx.r[lx.pos+1])
			}
			lx.pos += 2
			continue
		}
		if c == '/' {
			lx.pos++
			start := lx.pos
			for lx.pos < len(lx.r) && unicode.IsLetter(lx.r[lx.pos]) {
				lx.pos++
			}
			flags := string(lx.r[start:lx.pos])
			for i, f := range flags {
				if !strings.ContainsRune("ims", f) {
					return token{}, lx.src.errorf(lx.line, start+i+1, "unknown regex flag %q", f)
				}
			}
			return token{kind: tokRegex, text: b.String(), flags: flags, col: col}, nil
		}
		b.WriteRune(c)
		lx.pos++
	}
	return token{}, lx.src.errorf(lx.line, col, "unterminated regex")
}
