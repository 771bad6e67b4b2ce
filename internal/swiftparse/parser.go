// Package swiftparse is a lenient, declaration-oriented parser for Swift
// source. It produces a concrete syntax tree of syntax.Raw nodes: declarations,
// their headers, member blocks and type expressions are structured, while
// function bodies and expressions are kept as opaque source slices.
//
// The parser never fails. Malformed input produces diagnostics and a best-effort
// tree.
package swiftparse

import (
	"fmt"

	"github.com/dejo1307/swiftdecl/internal/syntax"
)

// Diagnostic is a non-fatal parse problem.
type Diagnostic struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// File is the result of parsing one source file.
type File struct {
	Root        *syntax.Raw
	Diagnostics []Diagnostic
}

// Parse parses a complete source file.
func Parse(src []byte) *File {
	p := newParser(string(src))
	var items []syntax.Node
	for !p.atEOF() {
		switch {
		case p.at(";"):
			p.next()
		case p.at("}") || p.at(")") || p.at("]"):
			p.errorf("unexpected %q", p.text(p.peek()))
			p.next()
		default:
			items = append(items, p.parseItem())
		}
	}
	root := syntax.NewRaw(syntax.KindSourceFile, p.src, 0, len(p.src), 1, "", items...)
	return &File{Root: root, Diagnostics: p.diags}
}

// ParseType parses a standalone type expression. Trailing tokens that are not
// part of the type are kept: the result then spans the whole input as an
// expression node wrapping the partial type.
func ParseType(text string) *syntax.Raw {
	p := newParser(text)
	t := p.parseType()
	if p.atEOF() {
		return t
	}
	for !p.atEOF() {
		p.next()
	}
	return p.node(syntax.KindExpression, 0, t)
}

type parser struct {
	src   string
	toks  []token
	pos   int
	diags []Diagnostic
}

func newParser(src string) *parser {
	toks, diags := lex(src)
	return &parser{src: src, toks: toks, diags: diags}
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekN(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) text(t token) string {
	return p.src[t.start:t.end]
}

func (p *parser) atEOF() bool {
	return p.peek().kind == tokEOF
}

// at reports whether the current token's text is s.
func (p *parser) at(s string) bool {
	t := p.peek()
	return t.kind != tokEOF && p.text(t) == s
}

func (p *parser) atIdent(s string) bool {
	t := p.peek()
	return t.kind == tokIdent && p.text(t) == s
}

// atSeq reports whether the upcoming tokens spell parts with no whitespace
// between them, e.g. atSeq("-", ">") for an arrow.
func (p *parser) atSeq(parts ...string) bool {
	for i, part := range parts {
		t := p.peekN(i)
		if t.kind == tokEOF || p.text(t) != part {
			return false
		}
		if i > 0 && t.spaceBefore {
			return false
		}
	}
	return true
}

func (p *parser) errorf(format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{Line: p.peek().line, Message: fmt.Sprintf(format, args...)})
}

// span builds a node covering tokens [from, to).
func (p *parser) span(kind syntax.Kind, from, to int, children ...syntax.Node) *syntax.Raw {
	first := p.toks[from]
	trivia := p.src[first.triviaStart:first.start]
	if to <= from {
		return syntax.NewRaw(kind, p.src, first.start, first.start, first.line, trivia, children...)
	}
	return syntax.NewRaw(kind, p.src, first.start, p.toks[to-1].end, first.line, trivia, children...)
}

// node builds a node covering tokens from `from` up to the current position.
func (p *parser) node(kind syntax.Kind, from int, children ...syntax.Node) *syntax.Raw {
	return p.span(kind, from, p.pos, children...)
}

// leaf consumes the current token as a single-token node.
func (p *parser) leaf(kind syntax.Kind) *syntax.Raw {
	from := p.pos
	p.next()
	return p.node(kind, from)
}

// expect consumes s or records a diagnostic.
func (p *parser) expect(s string) bool {
	if p.at(s) {
		p.next()
		return true
	}
	got := "end of file"
	if !p.atEOF() {
		got = fmt.Sprintf("%q", p.text(p.peek()))
	}
	p.errorf("expected %q, found %s", s, got)
	return false
}
