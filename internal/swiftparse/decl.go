package swiftparse

import (
	"github.com/dejo1307/swiftdecl/internal/syntax"
)

var declKeywords = map[string]bool{
	"import":          true,
	"class":           true,
	"struct":          true,
	"enum":            true,
	"protocol":        true,
	"extension":       true,
	"actor":           true,
	"typealias":       true,
	"associatedtype":  true,
	"var":             true,
	"let":             true,
	"func":            true,
	"init":            true,
	"deinit":          true,
	"subscript":       true,
	"case":            true,
	"operator":        true,
	"precedencegroup": true,
	"macro":           true,
}

var modifierWords = map[string]bool{
	"open":         true,
	"public":       true,
	"package":      true,
	"internal":     true,
	"fileprivate":  true,
	"private":      true,
	"static":       true,
	"class":        true,
	"final":        true,
	"override":     true,
	"required":     true,
	"convenience":  true,
	"mutating":     true,
	"nonmutating":  true,
	"lazy":         true,
	"weak":         true,
	"unowned":      true,
	"dynamic":      true,
	"optional":     true,
	"indirect":     true,
	"prefix":       true,
	"postfix":      true,
	"infix":        true,
	"nonisolated":  true,
	"distributed":  true,
	"__consuming":  true,
	"consuming":    true,
	"borrowing":    true,
	"isolated":     true,
}

// modifierDetails are the words accepted inside a compound modifier such as
// private(set) or unowned(unsafe).
var modifierDetails = map[string]bool{
	"set":    true,
	"safe":   true,
	"unsafe": true,
}

var nominalKinds = map[string]syntax.Kind{
	"class":     syntax.KindClassDecl,
	"struct":    syntax.KindStructDecl,
	"enum":      syntax.KindEnumDecl,
	"protocol":  syntax.KindProtocolDecl,
	"extension": syntax.KindExtensionDecl,
	"actor":     syntax.KindActorDecl,
}

var importKinds = map[string]bool{
	"typealias": true,
	"struct":    true,
	"class":     true,
	"enum":      true,
	"protocol":  true,
	"let":       true,
	"var":       true,
	"func":      true,
}

var accessorWords = map[string]bool{
	"get":                  true,
	"set":                  true,
	"willSet":              true,
	"didSet":               true,
	"_read":                true,
	"_modify":              true,
	"unsafeAddress":        true,
	"unsafeMutableAddress": true,
	"mutating":             true,
	"nonmutating":          true,
}

// parseItem parses one declaration, or an opaque statement when the tokens do
// not start a declaration.
func (p *parser) parseItem() *syntax.Raw {
	from := p.pos
	var pre []syntax.Node
	var mods []syntax.Node
	modFrom, modTo := -1, -1
	for {
		if p.atAttribute() {
			pre = append(pre, p.parseAttribute())
			continue
		}
		if n, ok := p.modifierLen(); ok {
			if modFrom < 0 {
				modFrom = p.pos
			}
			start := p.pos
			p.pos += n
			mods = append(mods, p.node(syntax.KindModifier, start))
			modTo = p.pos
			continue
		}
		break
	}
	if len(mods) > 0 {
		pre = append(pre, p.span(syntax.KindModifierList, modFrom, modTo, mods...))
	}

	if t := p.peek(); t.kind == tokIdent {
		word := p.text(t)
		if kind, ok := nominalKinds[word]; ok {
			return p.parseNominal(kind, from, pre)
		}
		switch word {
		case "import":
			return p.parseImport(from, pre)
		case "typealias":
			return p.parseTypealias(from, pre)
		case "associatedtype":
			return p.parseAssociatedType(from, pre)
		case "var", "let":
			return p.parseVariable(from, pre)
		case "func":
			return p.parseFunction(from, pre)
		case "init":
			return p.parseInitializer(from, pre)
		case "deinit":
			return p.parseDeinitializer(from, pre)
		case "subscript":
			return p.parseSubscript(from, pre)
		case "case":
			return p.parseEnumCase(from, pre)
		}
	}
	if len(pre) > 0 && !p.atIdent("operator") && !p.atIdent("precedencegroup") && !p.atIdent("macro") {
		p.errorf("expected declaration after attributes or modifiers")
	}
	return p.parseStatement(from)
}

// modifierLen reports how many tokens the modifier at the current position
// spans, including a parenthesized detail such as private(set).
func (p *parser) modifierLen() (int, bool) {
	t := p.peek()
	if t.kind != tokIdent || !modifierWords[p.text(t)] {
		return 0, false
	}
	n := 1
	if p.textAt(1) == "(" && modifierDetails[p.textAt(2)] && p.textAt(3) == ")" {
		n = 4
	}
	next := p.peekN(n)
	if next.kind != tokIdent {
		return 0, false
	}
	word := p.text(next)
	if !declKeywords[word] && !modifierWords[word] {
		return 0, false
	}
	return n, true
}

func (p *parser) textAt(n int) string {
	t := p.peekN(n)
	if t.kind == tokEOF {
		return ""
	}
	return p.text(t)
}

func (p *parser) atAttribute() bool {
	next := p.peekN(1)
	return p.at("@") && next.kind == tokIdent && !next.spaceBefore
}

func (p *parser) parseAttribute() *syntax.Raw {
	from := p.pos
	p.next()
	p.next()
	for p.at(".") && p.peekN(1).kind == tokIdent && !p.peek().spaceBefore {
		p.next()
		p.next()
	}
	if p.at("(") && !p.peek().spaceBefore {
		p.skipBalanced()
	}
	return p.node(syntax.KindAttribute, from)
}

func (p *parser) parseName() *syntax.Raw {
	if p.peek().kind == tokIdent {
		return p.leaf(syntax.KindIdentifier)
	}
	p.errorf("expected identifier")
	return p.node(syntax.KindIdentifier, p.pos)
}

func withPrefix(pre []syntax.Node, extra ...syntax.Node) []syntax.Node {
	children := make([]syntax.Node, 0, len(pre)+len(extra)+6)
	children = append(children, pre...)
	return append(children, extra...)
}

func (p *parser) parseNominal(kind syntax.Kind, from int, pre []syntax.Node) *syntax.Raw {
	children := withPrefix(pre, p.leaf(syntax.KindKeyword))
	if kind == syntax.KindExtensionDecl {
		children = append(children, p.parseType())
	} else {
		children = append(children, p.parseName())
		if p.at("<") {
			children = append(children, p.parseGenericParameterClause())
		}
	}
	if p.at(":") {
		children = append(children, p.parseInheritanceClause())
	}
	if p.atIdent("where") {
		children = append(children, p.parseWhereClause())
	}
	if p.at("{") {
		children = append(children, p.parseMemberBlock())
	} else {
		p.errorf("expected '{' to open declaration body")
	}
	return p.node(kind, from, children...)
}

func (p *parser) parseMemberBlock() *syntax.Raw {
	from := p.pos
	p.next()
	var members []syntax.Node
	for !p.at("}") {
		if p.atEOF() {
			p.errorf("unterminated declaration body")
			break
		}
		if p.at(";") {
			p.next()
			continue
		}
		members = append(members, p.parseItem())
	}
	p.expect("}")
	return p.node(syntax.KindMemberBlock, from, members...)
}

func (p *parser) parseInheritanceClause() *syntax.Raw {
	from := p.pos
	p.next()
	var types []syntax.Node
	for {
		types = append(types, p.parseType())
		if !p.at(",") {
			break
		}
		p.next()
	}
	return p.node(syntax.KindInheritanceClause, from, types...)
}

func (p *parser) parseGenericParameterClause() *syntax.Raw {
	from := p.pos
	p.next()
	var children []syntax.Node
	for !p.at(">") && !p.atEOF() {
		pfrom := p.pos
		var parts []syntax.Node
		for p.atAttribute() {
			parts = append(parts, p.parseAttribute())
		}
		if p.atIdent("each") && p.peekN(1).kind == tokIdent {
			p.next()
		}
		if p.peek().kind != tokIdent {
			p.errorf("expected generic parameter name")
			break
		}
		parts = append(parts, p.leaf(syntax.KindIdentifier))
		if p.at(":") {
			p.next()
			parts = append(parts, p.parseType())
		}
		children = append(children, p.node(syntax.KindGenericParameter, pfrom, parts...))
		if p.atIdent("where") {
			children = append(children, p.parseWhereClause())
		}
		if !p.at(",") {
			break
		}
		p.next()
	}
	p.recoverTo(">")
	p.expect(">")
	return p.node(syntax.KindGenericParameterClause, from, children...)
}

func (p *parser) parseWhereClause() *syntax.Raw {
	from := p.pos
	p.next()
	var reqs []syntax.Node
	for {
		rfrom := p.pos
		left := p.parseType()
		switch {
		case p.atSeq("=", "="):
			p.next()
			p.next()
			right := p.parseType()
			reqs = append(reqs, p.node(syntax.KindSameTypeRequirement, rfrom, left, right))
		case p.at(":"):
			p.next()
			right := p.parseType()
			reqs = append(reqs, p.node(syntax.KindConformanceRequirement, rfrom, left, right))
		default:
			p.errorf("expected ':' or '==' in generic requirement")
			return p.node(syntax.KindGenericWhereClause, from, reqs...)
		}
		if !p.at(",") {
			break
		}
		p.next()
	}
	return p.node(syntax.KindGenericWhereClause, from, reqs...)
}

func (p *parser) parseImport(from int, pre []syntax.Node) *syntax.Raw {
	children := withPrefix(pre, p.leaf(syntax.KindKeyword))
	if t := p.peek(); t.kind == tokIdent && importKinds[p.text(t)] && p.peekN(1).kind == tokIdent {
		children = append(children, p.leaf(syntax.KindKeyword))
	}
	pfrom := p.pos
	if p.peek().kind == tokIdent {
		p.next()
		for p.at(".") && p.peekN(1).kind != tokEOF && !p.peekN(1).newlineBefore {
			p.next()
			p.next()
		}
	} else {
		p.errorf("expected module name")
	}
	children = append(children, p.node(syntax.KindImportPath, pfrom))
	return p.node(syntax.KindImportDecl, from, children...)
}

func (p *parser) parseTypealias(from int, pre []syntax.Node) *syntax.Raw {
	children := withPrefix(pre, p.leaf(syntax.KindKeyword), p.parseName())
	if p.at("<") {
		children = append(children, p.parseGenericParameterClause())
	}
	if p.at("=") {
		children = append(children, p.parseTypeInitializer())
	} else {
		p.errorf("expected '=' in typealias")
	}
	if p.atIdent("where") {
		children = append(children, p.parseWhereClause())
	}
	return p.node(syntax.KindTypealiasDecl, from, children...)
}

func (p *parser) parseAssociatedType(from int, pre []syntax.Node) *syntax.Raw {
	children := withPrefix(pre, p.leaf(syntax.KindKeyword), p.parseName())
	if p.at(":") {
		children = append(children, p.parseInheritanceClause())
	}
	if p.at("=") {
		children = append(children, p.parseTypeInitializer())
	}
	if p.atIdent("where") {
		children = append(children, p.parseWhereClause())
	}
	return p.node(syntax.KindAssociatedTypeDecl, from, children...)
}

func (p *parser) parseTypeInitializer() *syntax.Raw {
	from := p.pos
	p.next()
	return p.node(syntax.KindTypeInitializer, from, p.parseType())
}

func (p *parser) parseVariable(from int, pre []syntax.Node) *syntax.Raw {
	children := withPrefix(pre, p.leaf(syntax.KindKeyword))
	for {
		children = append(children, p.parsePatternBinding())
		if !p.at(",") {
			break
		}
		p.next()
	}
	return p.node(syntax.KindVariableDecl, from, children...)
}

func (p *parser) parsePatternBinding() *syntax.Raw {
	from := p.pos
	children := []syntax.Node{p.parsePattern()}
	if p.at(":") {
		afrom := p.pos
		p.next()
		children = append(children, p.node(syntax.KindTypeAnnotation, afrom, p.parseType()))
	}
	hasInit := false
	if p.at("=") && !p.atSeq("=", "=") {
		ifrom := p.pos
		p.next()
		children = append(children, p.node(syntax.KindInitializerClause, ifrom, p.parseExpression()))
		hasInit = true
	}
	if p.at("{") {
		switch {
		case p.isAccessorBlock():
			children = append(children, p.parseAccessorBlock())
		case !hasInit:
			children = append(children, p.parseCodeBlock())
		}
	}
	return p.node(syntax.KindPatternBinding, from, children...)
}

func (p *parser) parsePattern() *syntax.Raw {
	from := p.pos
	switch {
	case p.peek().kind == tokIdent:
		return p.node(syntax.KindPattern, from, p.leaf(syntax.KindIdentifier))
	case p.at("("):
		var names []syntax.Node
		depth := 0
		for !p.atEOF() {
			t := p.peek()
			switch s := p.text(t); {
			case s == "(":
				depth++
			case s == ")":
				depth--
			case t.kind == tokIdent && s != "_" && s != "let" && s != "var":
				names = append(names, p.span(syntax.KindIdentifier, p.pos, p.pos+1))
			}
			p.next()
			if depth == 0 {
				break
			}
		}
		return p.node(syntax.KindPattern, from, names...)
	}
	p.errorf("expected pattern")
	return p.node(syntax.KindPattern, from)
}

// isAccessorBlock reports whether the brace at the current position opens an
// accessor or observer block rather than a closure or computed body.
func (p *parser) isAccessorBlock() bool {
	if !p.at("{") {
		return false
	}
	i := 1
	for p.textAt(i) == "@" && p.peekN(i+1).kind == tokIdent {
		i += 2
	}
	t := p.peekN(i)
	return t.kind == tokIdent && accessorWords[p.text(t)]
}

func (p *parser) parseAccessorBlock() *syntax.Raw {
	from := p.pos
	p.next()
	var accessors []syntax.Node
	for !p.at("}") && !p.atEOF() {
		afrom := p.pos
		var parts []syntax.Node
		for p.atAttribute() {
			parts = append(parts, p.parseAttribute())
		}
		for p.atIdent("mutating") || p.atIdent("nonmutating") || p.atIdent("__consuming") {
			parts = append(parts, p.leaf(syntax.KindModifier))
		}
		if t := p.peek(); t.kind != tokIdent || !accessorWords[p.text(t)] {
			p.errorf("expected accessor")
			if p.at("{") || p.at("(") || p.at("[") {
				p.skipBalanced()
			} else {
				p.next()
			}
			continue
		}
		parts = append(parts, p.leaf(syntax.KindKeyword))
		if p.at("(") {
			p.skipBalanced()
		}
		parts = append(parts, p.parseEffects()...)
		if p.at("{") {
			parts = append(parts, p.parseCodeBlock())
		}
		accessors = append(accessors, p.node(syntax.KindAccessor, afrom, parts...))
		if p.at(";") {
			p.next()
		}
	}
	p.expect("}")
	return p.node(syntax.KindAccessorBlock, from, accessors...)
}

func (p *parser) parseCodeBlock() *syntax.Raw {
	from := p.pos
	p.skipBalanced()
	return p.node(syntax.KindCodeBlock, from)
}

// parseEffects parses async/throws specifiers, including typed throws(E).
func (p *parser) parseEffects() []syntax.Node {
	var effects []syntax.Node
	for p.atIdent("async") || p.atIdent("reasync") || p.atIdent("throws") || p.atIdent("rethrows") {
		from := p.pos
		p.next()
		if p.at("(") && !p.peek().spaceBefore {
			p.skipBalanced()
		}
		effects = append(effects, p.node(syntax.KindKeyword, from))
	}
	return effects
}

func (p *parser) parseReturnClause() *syntax.Raw {
	from := p.pos
	p.next()
	p.next()
	return p.node(syntax.KindReturnClause, from, p.parseType())
}

func (p *parser) parseFunction(from int, pre []syntax.Node) *syntax.Raw {
	children := withPrefix(pre, p.leaf(syntax.KindKeyword), p.parseFunctionName())
	if p.at("<") {
		children = append(children, p.parseGenericParameterClause())
	}
	children = p.parseSignature(children)
	if p.at("{") {
		children = append(children, p.parseCodeBlock())
	}
	return p.node(syntax.KindFunctionDecl, from, children...)
}

// parseSignature parses the parameter clause, effects, return clause and
// where clause shared by functions, initializers and subscripts.
func (p *parser) parseSignature(children []syntax.Node) []syntax.Node {
	if p.at("(") {
		children = append(children, p.parseParameterClause())
	} else {
		p.errorf("expected parameter clause")
	}
	children = append(children, p.parseEffects()...)
	if p.atSeq("-", ">") {
		children = append(children, p.parseReturnClause())
	}
	if p.atIdent("where") {
		children = append(children, p.parseWhereClause())
	}
	return children
}

func (p *parser) parseFunctionName() *syntax.Raw {
	t := p.peek()
	if t.kind == tokIdent {
		return p.leaf(syntax.KindIdentifier)
	}
	if t.kind != tokPunct || p.at("(") {
		p.errorf("expected function name")
		return p.node(syntax.KindIdentifier, p.pos)
	}
	from := p.pos
	p.next()
	for {
		next := p.peek()
		if next.kind != tokPunct || next.spaceBefore || p.at("(") {
			break
		}
		if p.at("<") && p.peekN(1).kind == tokIdent {
			break
		}
		p.next()
	}
	return p.node(syntax.KindIdentifier, from)
}

func (p *parser) parseInitializer(from int, pre []syntax.Node) *syntax.Raw {
	children := withPrefix(pre, p.leaf(syntax.KindKeyword))
	if (p.at("?") || p.at("!")) && !p.peek().spaceBefore {
		children = append(children, p.leaf(syntax.KindKeyword))
	}
	if p.at("<") {
		children = append(children, p.parseGenericParameterClause())
	}
	children = p.parseSignature(children)
	if p.at("{") {
		children = append(children, p.parseCodeBlock())
	}
	return p.node(syntax.KindInitializerDecl, from, children...)
}

func (p *parser) parseDeinitializer(from int, pre []syntax.Node) *syntax.Raw {
	children := withPrefix(pre, p.leaf(syntax.KindKeyword))
	if p.at("{") {
		children = append(children, p.parseCodeBlock())
	}
	return p.node(syntax.KindDeinitializerDecl, from, children...)
}

func (p *parser) parseSubscript(from int, pre []syntax.Node) *syntax.Raw {
	children := withPrefix(pre, p.leaf(syntax.KindKeyword))
	if p.at("<") {
		children = append(children, p.parseGenericParameterClause())
	}
	children = p.parseSignature(children)
	if p.at("{") {
		if p.isAccessorBlock() {
			children = append(children, p.parseAccessorBlock())
		} else {
			children = append(children, p.parseCodeBlock())
		}
	}
	return p.node(syntax.KindSubscriptDecl, from, children...)
}

func (p *parser) parseParameterClause() *syntax.Raw {
	from := p.pos
	p.next()
	var params []syntax.Node
	for !p.at(")") && !p.atEOF() {
		pfrom := p.pos
		var parts []syntax.Node
		for p.atAttribute() {
			parts = append(parts, p.parseAttribute())
		}
		for i := 0; i < 2 && p.peek().kind == tokIdent; i++ {
			parts = append(parts, p.leaf(syntax.KindIdentifier))
		}
		if !p.at(":") {
			p.errorf("expected ':' in parameter")
			break
		}
		p.next()
		parts = append(parts, p.parseType())
		parts = p.parseElementTail(parts)
		params = append(params, p.node(syntax.KindParameter, pfrom, parts...))
		if !p.at(",") {
			break
		}
		p.next()
	}
	p.recoverTo(")")
	p.expect(")")
	return p.node(syntax.KindParameterClause, from, params...)
}

// parseElementTail parses the optional variadic marker and default value that
// may follow a parameter or associated-value type.
func (p *parser) parseElementTail(parts []syntax.Node) []syntax.Node {
	if p.atSeq(".", ".", ".") {
		efrom := p.pos
		p.pos += 3
		parts = append(parts, p.span(syntax.KindEllipsis, efrom, p.pos))
	}
	if p.at("=") {
		dfrom := p.pos
		p.next()
		parts = append(parts, p.node(syntax.KindDefaultArgument, dfrom, p.parseExpression()))
	}
	return parts
}

func (p *parser) parseEnumCase(from int, pre []syntax.Node) *syntax.Raw {
	children := withPrefix(pre, p.leaf(syntax.KindKeyword))
	for {
		if p.peek().kind != tokIdent {
			p.errorf("expected enum case name")
			break
		}
		efrom := p.pos
		parts := []syntax.Node{p.leaf(syntax.KindIdentifier)}
		if p.at("(") {
			parts = append(parts, p.parseTupleType())
		}
		if p.at("=") {
			rfrom := p.pos
			p.next()
			parts = append(parts, p.node(syntax.KindRawValue, rfrom, p.parseExpression()))
		}
		children = append(children, p.node(syntax.KindEnumCaseElement, efrom, parts...))
		if !p.at(",") {
			break
		}
		p.next()
	}
	return p.node(syntax.KindEnumCaseDecl, from, children...)
}
