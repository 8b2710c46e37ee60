package dot

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/dotdraw/pkg/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokID
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokSemi
	tokComma
	tokEqual
	tokColon
	tokArrow // ->
	tokLine  // --
)

var punctText = map[tokenKind]string{
	tokLBrace:   "{",
	tokRBrace:   "}",
	tokLBracket: "[",
	tokRBracket: "]",
	tokSemi:     ";",
	tokComma:    ",",
	tokEqual:    "=",
	tokColon:    ":",
	tokArrow:    "->",
	tokLine:     "--",
}

// token is a lexeme with its 1-based source position.
type token struct {
	kind   tokenKind
	text   string
	line   int
	col    int
	quoted bool // double-quoted string; never a keyword
	html   bool // <...> string
}

// keyword reports the lower-cased keyword if t is an unquoted keyword.
func (t token) keyword() string {
	if t.kind != tokID || t.quoted || t.html {
		return ""
	}
	switch k := strings.ToLower(t.text); k {
	case "strict", "graph", "digraph", "node", "edge", "subgraph":
		return k
	}
	return ""
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokID:
		if t.html {
			return "HTML string"
		}
		return fmt.Sprintf("%q", t.text)
	}
	return "'" + punctText[t.kind] + "'"
}

// lexer turns description text into tokens, tracking line and column in
// runes. Whitespace, comments and preprocessor lines are skipped.
type lexer struct {
	src  string
	pos  int // byte offset
	line int
	col  int
	bol  bool // nothing but whitespace seen on the current line
}

func tokenize(src string) ([]token, error) {
	src = strings.TrimPrefix(src, "\ufeff")
	lx := &lexer{src: src, line: 1, col: 1, bol: true}
	var toks []token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

func (lx *lexer) errorf(line, col int, format string, args ...any) error {
	return &errors.SyntaxError{Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

func (lx *lexer) peek() rune {
	if lx.pos >= len(lx.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	return r
}

func (lx *lexer) peekAt(n int) rune {
	p := lx.pos
	for ; n > 0 && p < len(lx.src); n-- {
		_, w := utf8.DecodeRuneInString(lx.src[p:])
		p += w
	}
	if p >= len(lx.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(lx.src[p:])
	return r
}

func (lx *lexer) advance() rune {
	r, w := utf8.DecodeRuneInString(lx.src[lx.pos:])
	lx.pos += w
	if r == '\n' {
		lx.line++
		lx.col = 1
		lx.bol = true
	} else {
		lx.col++
		if !unicode.IsSpace(r) {
			lx.bol = false
		}
	}
	return r
}

// skipTrivia consumes whitespace, comments and '#' lines.
func (lx *lexer) skipTrivia() error {
	for lx.pos < len(lx.src) {
		r := lx.peek()
		switch {
		case unicode.IsSpace(r):
			lx.advance()
		case r == '#' && lx.bol:
			lx.skipLine()
		case r == '/' && lx.peekAt(1) == '/':
			lx.skipLine()
		case r == '/' && lx.peekAt(1) == '*':
			line, col := lx.line, lx.col
			lx.advance()
			lx.advance()
			for {
				if lx.pos >= len(lx.src) {
					return lx.errorf(line, col, "unterminated comment")
				}
				if lx.peek() == '*' && lx.peekAt(1) == '/' {
					lx.advance()
					lx.advance()
					break
				}
				lx.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (lx *lexer) skipLine() {
	for lx.pos < len(lx.src) && lx.peek() != '\n' {
		lx.advance()
	}
}

func (lx *lexer) next() (token, error) {
	if err := lx.skipTrivia(); err != nil {
		return token{}, err
	}
	line, col := lx.line, lx.col
	tok := token{line: line, col: col}
	if lx.pos >= len(lx.src) {
		tok.kind = tokEOF
		return tok, nil
	}

	r := lx.peek()
	switch r {
	case '{':
		tok.kind = tokLBrace
	case '}':
		tok.kind = tokRBrace
	case '[':
		tok.kind = tokLBracket
	case ']':
		tok.kind = tokRBracket
	case ';':
		tok.kind = tokSemi
	case ',':
		tok.kind = tokComma
	case '=':
		tok.kind = tokEqual
	case ':':
		tok.kind = tokColon
	case '"':
		return lx.quoted(tok)
	case '<':
		return lx.html(tok)
	case '-':
		switch next := lx.peekAt(1); {
		case next == '>':
			lx.advance()
			lx.advance()
			tok.kind = tokArrow
			return tok, nil
		case next == '-':
			lx.advance()
			lx.advance()
			tok.kind = tokLine
			return tok, nil
		case isDigit(next) || next == '.':
			return lx.numeral(tok)
		}
		return tok, lx.errorf(line, col, "unexpected character '-'")
	default:
		switch {
		case isDigit(r) || (r == '.' && isDigit(lx.peekAt(1))):
			return lx.numeral(tok)
		case isIDStart(r):
			start := lx.pos
			for lx.pos < len(lx.src) && isIDPart(lx.peek()) {
				lx.advance()
			}
			tok.kind = tokID
			tok.text = lx.src[start:lx.pos]
			return tok, nil
		}
		return tok, lx.errorf(line, col, "unexpected character %q", r)
	}
	lx.advance()
	return tok, nil
}

func (lx *lexer) numeral(tok token) (token, error) {
	start := lx.pos
	if lx.peek() == '-' {
		lx.advance()
	}
	for isDigit(lx.peek()) {
		lx.advance()
	}
	if lx.peek() == '.' {
		lx.advance()
		for isDigit(lx.peek()) {
			lx.advance()
		}
	}
	tok.kind = tokID
	tok.text = lx.src[start:lx.pos]
	return tok, nil
}

// quoted scans a double-quoted string and any '+' concatenations.
// Only \" and backslash-newline are interpreted here; other escapes are
// kept for label expansion.
func (lx *lexer) quoted(tok token) (token, error) {
	var sb strings.Builder
	for {
		if err := lx.quotedPart(&sb); err != nil {
			return tok, err
		}
		// Look past trivia for a '+' followed by another string.
		save := *lx
		if err := lx.skipTrivia(); err != nil {
			return tok, err
		}
		if lx.peek() != '+' {
			*lx = save
			break
		}
		plusLine, plusCol := lx.line, lx.col
		lx.advance()
		if err := lx.skipTrivia(); err != nil {
			return tok, err
		}
		if lx.peek() != '"' {
			return tok, lx.errorf(plusLine, plusCol, "'+' must be followed by a quoted string")
		}
	}
	tok.kind = tokID
	tok.text = sb.String()
	tok.quoted = true
	return tok, nil
}

func (lx *lexer) quotedPart(sb *strings.Builder) error {
	line, col := lx.line, lx.col
	lx.advance() // opening quote
	for {
		if lx.pos >= len(lx.src) {
			return lx.errorf(line, col, "unterminated string")
		}
		r := lx.advance()
		switch r {
		case '"':
			return nil
		case '\\':
			switch lx.peek() {
			case '"':
				lx.advance()
				sb.WriteRune('"')
			case '\\':
				lx.advance()
				sb.WriteString(`\\`)
			case '\n':
				lx.advance()
			case '\r':
				lx.advance()
				if lx.peek() == '\n' {
					lx.advance()
				}
			default:
				sb.WriteRune('\\')
			}
		default:
			sb.WriteRune(r)
		}
	}
}

func (lx *lexer) html(tok token) (token, error) {
	line, col := lx.line, lx.col
	lx.advance()
	start := lx.pos
	depth := 1
	for {
		if lx.pos >= len(lx.src) {
			return tok, lx.errorf(line, col, "unterminated HTML string")
		}
		switch lx.peek() {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				tok.text = lx.src[start:lx.pos]
				lx.advance()
				tok.kind = tokID
				tok.html = true
				return tok, nil
			}
		}
		lx.advance()
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIDStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= 0x80
}

func isIDPart(r rune) bool { return isIDStart(r) || isDigit(r) }
