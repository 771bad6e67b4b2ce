package swiftparse

import (
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

// token is one lexeme. Operators are emitted one character per token; the
// parser reassembles `->`, `==` and `...` by checking spaceBefore.
type token struct {
	kind          tokenKind
	start, end    int
	line          int
	triviaStart   int
	spaceBefore   bool
	newlineBefore bool
}

// compilerDirectives are skipped as trivia when they start a line. Both
// branches of a conditional block are therefore parsed.
var compilerDirectives = map[string]bool{
	"if":             true,
	"elseif":         true,
	"else":           true,
	"endif":          true,
	"sourceLocation": true,
}

type lexer struct {
	src   string
	pos   int
	line  int
	bol   bool
	toks  []token
	diags []Diagnostic
}

func lex(src string) ([]token, []Diagnostic) {
	l := &lexer{src: src, line: 1, bol: true}
	for {
		triviaStart := l.pos
		space, newline := l.skipTrivia()
		if l.pos >= len(l.src) {
			l.toks = append(l.toks, token{
				kind:          tokEOF,
				start:         len(l.src),
				end:           len(l.src),
				line:          l.line,
				triviaStart:   triviaStart,
				spaceBefore:   space,
				newlineBefore: newline,
			})
			return l.toks, l.diags
		}

		start, line := l.pos, l.line
		kind := l.scanToken()
		l.toks = append(l.toks, token{
			kind:          kind,
			start:         start,
			end:           l.pos,
			line:          line,
			triviaStart:   triviaStart,
			spaceBefore:   space,
			newlineBefore: newline,
		})
		l.bol = false
	}
}

func (l *lexer) skipTrivia() (space, newline bool) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.pos++
			l.line++
			l.bol = true
			space, newline = true, true
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
			space = true
		case strings.HasPrefix(l.src[l.pos:], "//"):
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
			space = true
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			if l.skipBlockComment() {
				newline = true
			}
			space = true
		case c == '#' && l.bol && l.atDirective():
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
			space = true
		default:
			return space, newline
		}
	}
	return space, newline
}

// skipBlockComment consumes a possibly nested /* */ comment and reports
// whether it spanned a line break.
func (l *lexer) skipBlockComment() bool {
	startLine := l.line
	depth := 0
	for l.pos < len(l.src) {
		rest := l.src[l.pos:]
		switch {
		case strings.HasPrefix(rest, "/*"):
			depth++
			l.pos += 2
		case strings.HasPrefix(rest, "*/"):
			depth--
			l.pos += 2
			if depth == 0 {
				return l.line != startLine
			}
		default:
			if rest[0] == '\n' {
				l.line++
			}
			l.pos++
		}
	}
	l.diags = append(l.diags, Diagnostic{Line: startLine, Message: "unterminated block comment"})
	return l.line != startLine
}

func (l *lexer) atDirective() bool {
	i := l.pos + 1
	j := i
	for j < len(l.src) && isIdentContinue(l.src[j]) {
		j++
	}
	return compilerDirectives[l.src[i:j]]
}

func (l *lexer) scanToken() tokenKind {
	c := l.src[l.pos]
	switch {
	case isIdentStart(c) || c == '$':
		l.pos++
		for l.pos < len(l.src) && isIdentContinue(l.src[l.pos]) {
			l.pos++
		}
		return tokIdent
	case c == '`':
		end := strings.IndexAny(l.src[l.pos+1:], "`\n")
		if end >= 0 && l.src[l.pos+1+end] == '`' {
			l.pos += end + 2
			return tokIdent
		}
		l.pos++
		return tokPunct
	case isDigit(c):
		l.scanNumber()
		return tokNumber
	case c == '"':
		l.scanString(0)
		return tokString
	case c == '#':
		hashes := 0
		for l.pos+hashes < len(l.src) && l.src[l.pos+hashes] == '#' {
			hashes++
		}
		if l.pos+hashes < len(l.src) && l.src[l.pos+hashes] == '"' {
			l.pos += hashes
			l.scanString(hashes)
			return tokString
		}
		l.pos++
		return tokPunct
	default:
		l.pos++
		return tokPunct
	}
}

func (l *lexer) scanNumber() {
	hex := strings.HasPrefix(l.src[l.pos:], "0x")
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isIdentContinue(c):
			l.pos++
		case c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
			l.pos++
		case (c == '-' || c == '+') && l.pos > 0:
			prev := l.src[l.pos-1]
			if (!hex && (prev == 'e' || prev == 'E')) || prev == 'p' || prev == 'P' {
				l.pos++
				continue
			}
			return
		default:
			return
		}
	}
}

// scanString consumes a string literal starting at the opening quote.
// hashes is the raw-string delimiter count (#"..."#).
func (l *lexer) scanString(hashes int) {
	startLine := l.line
	delim := strings.Repeat("#", hashes)
	multi := strings.HasPrefix(l.src[l.pos:], `"""`)
	closer := `"` + delim
	if multi {
		l.pos += 3
		closer = `"""` + delim
	} else {
		l.pos++
	}
	escape := `\` + delim

	for l.pos < len(l.src) {
		rest := l.src[l.pos:]
		switch {
		case strings.HasPrefix(rest, escape):
			l.pos += len(escape)
			if l.pos >= len(l.src) {
				continue
			}
			if l.src[l.pos] == '(' {
				l.scanInterpolation()
				continue
			}
			if l.src[l.pos] == '\n' {
				l.line++
			}
			l.pos++
		case strings.HasPrefix(rest, closer):
			l.pos += len(closer)
			return
		case rest[0] == '\n':
			if !multi {
				l.diags = append(l.diags, Diagnostic{Line: startLine, Message: "unterminated string literal"})
				return
			}
			l.line++
			l.pos++
		default:
			l.pos++
		}
	}
	l.diags = append(l.diags, Diagnostic{Line: startLine, Message: "unterminated string literal"})
}

// scanInterpolation consumes a \( ... ) segment, which may itself contain
// string literals.
func (l *lexer) scanInterpolation() {
	depth := 0
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '(':
			depth++
			l.pos++
		case ')':
			depth--
			l.pos++
			if depth == 0 {
				return
			}
		case '"':
			l.scanString(0)
		case '#':
			hashes := 0
			for l.pos+hashes < len(l.src) && l.src[l.pos+hashes] == '#' {
				hashes++
			}
			if l.pos+hashes < len(l.src) && l.src[l.pos+hashes] == '"' {
				l.pos += hashes
				l.scanString(hashes)
			} else {
				l.pos++
			}
		case '\n':
			l.line++
			l.pos++
		default:
			l.pos++
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentContinue(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
