package syntax

import "strings"

// Walk visits n and its descendants depth-first. Returning false from visit
// skips the node's children.
func Walk(n Node, visit func(Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, visit)
	}
}

// FirstChild returns the first direct child with one of the given kinds, or nil.
func FirstChild(n Node, kinds ...Kind) Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children() {
		if Is(c, kinds...) {
			return c
		}
	}
	return nil
}

// ChildrenOf returns all direct children with one of the given kinds.
func ChildrenOf(n Node, kinds ...Kind) []Node {
	var result []Node
	if n == nil {
		return result
	}
	for _, c := range n.Children() {
		if Is(c, kinds...) {
			result = append(result, c)
		}
	}
	return result
}

// Is reports whether n has one of the given kinds.
func Is(n Node, kinds ...Kind) bool {
	if n == nil {
		return false
	}
	k := n.Kind()
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// IsType reports whether k is one of the type-expression kinds.
func IsType(k Kind) bool {
	switch k {
	case KindSimpleType, KindMemberType, KindCompositionType, KindOptionalType,
		KindImplicitlyUnwrappedOptionalType, KindArrayType, KindDictionaryType,
		KindTupleType, KindFunctionType, KindSomeOrAnyType, KindAttributedType,
		KindMetatypeType, KindMissingType:
		return true
	}
	return false
}

// FirstType returns the first direct child that is a type expression, or nil.
func FirstType(n Node) Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children() {
		if IsType(c.Kind()) {
			return c
		}
	}
	return nil
}

// Types returns all direct children that are type expressions.
func Types(n Node) []Node {
	var result []Node
	if n == nil {
		return result
	}
	for _, c := range n.Children() {
		if IsType(c.Kind()) {
			result = append(result, c)
		}
	}
	return result
}

// Line returns the 1-based source line of n, or 0 when the front end does not
// track positions.
func Line(n Node) int {
	if p, ok := n.(Positioned); ok {
		return p.Line()
	}
	return 0
}

// Name returns the text of the first identifier child with backticks removed.
func Name(n Node) string {
	id := FirstChild(n, KindIdentifier)
	if id == nil {
		return ""
	}
	return Unescape(id.Text())
}

// Unescape strips the backticks from an escaped identifier such as `default`.
func Unescape(ident string) string {
	ident = strings.TrimSpace(ident)
	if len(ident) >= 2 && strings.HasPrefix(ident, "`") && strings.HasSuffix(ident, "`") {
		return ident[1 : len(ident)-1]
	}
	return ident
}

// DocComment extracts documentation comment text (/// lines and /** */ blocks)
// from leading trivia. Ordinary // comments are ignored.
func DocComment(trivia string) string {
	var lines []string
	rest := trivia
	for rest != "" {
		trimmed := strings.TrimLeft(rest, " \t\r\n")
		switch {
		case strings.HasPrefix(trimmed, "/**"):
			end := strings.Index(trimmed, "*/")
			if end < 0 {
				end = len(trimmed) - 2
			}
			body := trimmed[3:end]
			for _, l := range strings.Split(body, "\n") {
				l = strings.TrimSpace(l)
				l = strings.TrimPrefix(l, "*")
				if l = strings.TrimSpace(l); l != "" {
					lines = append(lines, l)
				}
			}
			rest = trimmed[min(end+2, len(trimmed)):]
		case strings.HasPrefix(trimmed, "//"):
			nl := strings.IndexByte(trimmed, '\n')
			line := trimmed
			if nl >= 0 {
				line = trimmed[:nl]
				rest = trimmed[nl+1:]
			} else {
				rest = ""
			}
			if strings.HasPrefix(line, "///") {
				lines = append(lines, strings.TrimSpace(strings.TrimPrefix(line, "///")))
			} else {
				// A plain comment separates doc blocks; only the closest block counts.
				lines = nil
			}
		case strings.HasPrefix(trimmed, "/*"):
			end := strings.Index(trimmed, "*/")
			if end < 0 {
				rest = ""
			} else {
				rest = trimmed[end+2:]
			}
			lines = nil
		default:
			rest = ""
		}
	}
	return strings.Join(lines, "\n")
}
