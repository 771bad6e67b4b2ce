package swiftparse

import (
	"strings"

	"github.com/dejo1307/swiftdecl/internal/syntax"
)

const binaryOperatorChars = "+-*/%=<>!&|^?:~"

var closers = map[string]string{"(": ")", "[": "]", "{": "}"}

// skipBalanced consumes a bracketed group starting at the current opener.
func (p *parser) skipBalanced() {
	line := p.peek().line
	depth := 0
	for !p.atEOF() {
		s := p.text(p.next())
		switch s {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		}
		if depth <= 0 {
			return
		}
	}
	p.diags = append(p.diags, Diagnostic{Line: line, Message: "unbalanced brackets"})
}

// recoverTo skips tokens until closer at bracket depth zero, or EOF.
func (p *parser) recoverTo(closer string) {
	if p.at(closer) || p.atEOF() {
		return
	}
	p.errorf("unexpected %q", p.text(p.peek()))
	for !p.at(closer) && !p.atEOF() {
		if _, ok := closers[p.text(p.peek())]; ok {
			p.skipBalanced()
			continue
		}
		if p.at(")") || p.at("]") || p.at("}") {
			return
		}
		p.next()
	}
}

// parseExpression consumes an initializer, default value or raw value. The
// expression ends at a separator or closer at depth zero, at a line break not
// followed by a continuation, or before an accessor block.
func (p *parser) parseExpression() *syntax.Raw {
	from := p.pos
	for !p.atEOF() {
		t := p.peek()
		if p.pos > from && t.newlineBefore && !p.continuesExpression() {
			break
		}
		switch p.text(t) {
		case ",", ";", ")", "]", "}":
			return p.node(syntax.KindExpression, from)
		case "{":
			if p.isAccessorBlock() {
				return p.node(syntax.KindExpression, from)
			}
			p.skipBalanced()
		case "(", "[":
			p.skipBalanced()
		case "<":
			end, ok := p.genericArgsEnd()
			if ok && p.pos > from && !t.spaceBefore && p.toks[p.pos-1].kind == tokIdent {
				p.pos = end
			} else {
				p.next()
			}
		default:
			p.next()
		}
	}
	return p.node(syntax.KindExpression, from)
}

func (p *parser) continuesExpression() bool {
	t := p.peek()
	if t.kind != tokPunct {
		return false
	}
	s := p.text(t)
	return s == "." || strings.Contains(binaryOperatorChars, s)
}

// genericArgsEnd scans an explicit generic argument list in expression
// position, e.g. Dictionary<String, Int>(), and returns the index just past
// the closing angle bracket.
func (p *parser) genericArgsEnd() (int, bool) {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.kind == tokEOF {
			return 0, false
		}
		if t.kind == tokIdent {
			continue
		}
		switch s := p.text(t); s {
		case "<":
			depth++
		case ">":
			depth--
			if depth == 0 {
				return i + 1, true
			}
		case "-":
			if i+1 < len(p.toks) && p.text(p.toks[i+1]) == ">" {
				i++
				continue
			}
			return 0, false
		case ".", ",", "?", "!", "[", "]", ":", "&", "(", ")":
		default:
			return 0, false
		}
	}
	return 0, false
}

// parseStatement consumes a non-declaration statement as an opaque node.
func (p *parser) parseStatement(from int) *syntax.Raw {
	start := p.pos
	for !p.atEOF() {
		t := p.peek()
		if p.pos > start && t.newlineBefore && !p.continuesStatement() {
			break
		}
		s := p.text(t)
		if s == ";" {
			p.next()
			break
		}
		if s == ")" || s == "]" || s == "}" {
			if p.pos == from {
				p.errorf("unexpected %q", s)
				p.next()
			}
			break
		}
		if _, ok := closers[s]; ok {
			p.skipBalanced()
			continue
		}
		p.next()
	}
	return p.node(syntax.KindStatement, from)
}

func (p *parser) continuesStatement() bool {
	t := p.peek()
	s := p.text(t)
	if t.kind == tokIdent {
		return s == "else" || s == "catch"
	}
	return s == "{" || s == "." || strings.Contains(binaryOperatorChars, s)
}
