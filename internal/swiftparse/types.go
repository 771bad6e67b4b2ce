package swiftparse

import (
	"github.com/dejo1307/swiftdecl/internal/syntax"
)

var typeSpecifiers = map[string]bool{
	"inout":     true,
	"borrowing": true,
	"consuming": true,
	"__owned":   true,
	"__shared":  true,
	"sending":   true,
	"isolated":  true,
}

// parseType parses a full type expression, including function types.
func (p *parser) parseType() *syntax.Raw {
	from := p.pos
	t := p.parseNonFunctionType()
	if !p.atEffect() && !p.atSeq("-", ">") {
		return t
	}
	save := p.pos
	for p.atEffect() {
		p.next()
		if p.at("(") && !p.peek().spaceBefore {
			p.skipBalanced()
		}
	}
	if !p.atSeq("-", ">") {
		p.pos = save
		return t
	}
	p.next()
	p.next()
	ret := p.parseType()
	return p.node(syntax.KindFunctionType, from, t, ret)
}

func (p *parser) atEffect() bool {
	return p.atIdent("async") || p.atIdent("throws") || p.atIdent("rethrows")
}

// startsType reports whether the token n positions ahead can begin a type.
func (p *parser) startsType(n int) bool {
	t := p.peekN(n)
	if t.kind == tokIdent {
		return true
	}
	switch p.textAt(n) {
	case "(", "[", "@":
		return true
	}
	return false
}

func (p *parser) parseNonFunctionType() *syntax.Raw {
	from := p.pos
	switch {
	case p.atAttribute():
		var children []syntax.Node
		for p.atAttribute() {
			children = append(children, p.parseAttribute())
		}
		children = append(children, p.parseType())
		return p.node(syntax.KindAttributedType, from, children...)
	case p.peek().kind == tokIdent && typeSpecifiers[p.text(p.peek())] && p.startsType(1):
		p.next()
		return p.node(syntax.KindAttributedType, from, p.parseType())
	case (p.atIdent("some") || p.atIdent("any")) && p.startsType(1):
		p.next()
		return p.node(syntax.KindSomeOrAnyType, from, p.parseComposition())
	}
	return p.parseComposition()
}

func (p *parser) parseComposition() *syntax.Raw {
	from := p.pos
	first := p.parsePostfixType()
	if !p.at("&") || p.atSeq("&", "&") {
		return first
	}
	children := []syntax.Node{first}
	for p.at("&") && !p.atSeq("&", "&") {
		p.next()
		children = append(children, p.parsePostfixType())
	}
	return p.node(syntax.KindCompositionType, from, children...)
}

func (p *parser) parsePostfixType() *syntax.Raw {
	from := p.pos
	t := p.parsePrimaryType()
	for {
		switch {
		case p.at("?") && !p.peek().spaceBefore:
			p.next()
			t = p.node(syntax.KindOptionalType, from, t)
		case p.at("!") && !p.peek().spaceBefore:
			p.next()
			t = p.node(syntax.KindImplicitlyUnwrappedOptionalType, from, t)
		case p.at(".") && p.peekN(1).kind == tokIdent:
			if name := p.textAt(1); name == "Type" || name == "Protocol" {
				p.next()
				p.next()
				t = p.node(syntax.KindMetatypeType, from, t)
				continue
			}
			p.next()
			children := []syntax.Node{t, p.leaf(syntax.KindIdentifier)}
			if p.at("<") {
				children = append(children, p.parseGenericArgumentClause())
			}
			t = p.node(syntax.KindMemberType, from, children...)
		default:
			return t
		}
	}
}

func (p *parser) parsePrimaryType() *syntax.Raw {
	from := p.pos
	switch {
	case p.peek().kind == tokIdent:
		children := []syntax.Node{p.leaf(syntax.KindIdentifier)}
		if p.at("<") {
			children = append(children, p.parseGenericArgumentClause())
		}
		return p.node(syntax.KindSimpleType, from, children...)
	case p.at("["):
		p.next()
		elem := p.parseType()
		if p.at(":") {
			p.next()
			value := p.parseType()
			p.recoverTo("]")
			p.expect("]")
			return p.node(syntax.KindDictionaryType, from, elem, value)
		}
		p.recoverTo("]")
		p.expect("]")
		return p.node(syntax.KindArrayType, from, elem)
	case p.at("("):
		return p.parseTupleType()
	}
	p.errorf("expected type")
	return p.node(syntax.KindMissingType, from)
}

func (p *parser) parseGenericArgumentClause() *syntax.Raw {
	from := p.pos
	p.next()
	var args []syntax.Node
	for !p.at(">") && !p.atEOF() {
		args = append(args, p.parseType())
		if !p.at(",") {
			break
		}
		p.next()
	}
	p.recoverTo(">")
	p.expect(">")
	return p.node(syntax.KindGenericArgumentClause, from, args...)
}

// parseTupleType parses a parenthesized type list. Elements may carry one or
// two labels, a variadic marker, and (for enum associated values) a default.
func (p *parser) parseTupleType() *syntax.Raw {
	from := p.pos
	p.next()
	var elems []syntax.Node
	for !p.at(")") && !p.atEOF() {
		efrom := p.pos
		var parts []syntax.Node
		switch {
		case p.peek().kind == tokIdent && p.peekN(1).kind == tokIdent && p.textAt(2) == ":":
			parts = append(parts, p.leaf(syntax.KindIdentifier), p.leaf(syntax.KindIdentifier))
			p.next()
		case p.peek().kind == tokIdent && p.textAt(1) == ":":
			parts = append(parts, p.leaf(syntax.KindIdentifier))
			p.next()
		}
		parts = append(parts, p.parseType())
		parts = p.parseElementTail(parts)
		elems = append(elems, p.node(syntax.KindTupleTypeElement, efrom, parts...))
		if !p.at(",") {
			break
		}
		p.next()
	}
	p.recoverTo(")")
	p.expect(")")
	return p.node(syntax.KindTupleType, from, elems...)
}
