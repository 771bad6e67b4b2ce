package typedesc

import (
	"strings"

	"github.com/dejo1307/swiftdecl/internal/swiftparse"
	"github.com/dejo1307/swiftdecl/internal/syntax"
)

// FromNode maps a type syntax node to its description. Nodes without a
// structured variant yield Unknown with the node's source text. A nil node
// yields nil.
func FromNode(n syntax.Node) TypeDescription {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case syntax.KindSimpleType:
		return &Simple{
			Name:     syntax.Name(n),
			Generics: genericArguments(n),
		}
	case syntax.KindMemberType:
		return &Member{
			Name:     syntax.Name(n),
			Base:     FromNode(syntax.FirstType(n)),
			Generics: genericArguments(n),
		}
	case syntax.KindCompositionType:
		return &Composition{Types: fromNodes(syntax.Types(n))}
	case syntax.KindOptionalType:
		return &Optional{Wrapped: FromNode(syntax.FirstType(n))}
	case syntax.KindImplicitlyUnwrappedOptionalType:
		return &ImplicitlyUnwrappedOptional{Wrapped: FromNode(syntax.FirstType(n))}
	case syntax.KindArrayType:
		return &Array{Element: FromNode(syntax.FirstType(n))}
	case syntax.KindDictionaryType:
		types := syntax.Types(n)
		if len(types) == 2 {
			return &Dictionary{Key: FromNode(types[0]), Value: FromNode(types[1])}
		}
	case syntax.KindTupleType:
		if t, ok := fromTuple(n); ok {
			return t
		}
	}
	return &Unknown{Text: strings.TrimSpace(n.Text())}
}

// fromTuple handles unlabeled tuples. A parenthesized single element is the
// element itself.
func fromTuple(n syntax.Node) (TypeDescription, bool) {
	elements := n.Children()
	types := make([]TypeDescription, 0, len(elements))
	for _, el := range elements {
		if len(el.Children()) != 1 {
			// labels, variadic markers or defaults
			return nil, false
		}
		inner := syntax.FirstType(el)
		if inner == nil {
			return nil, false
		}
		types = append(types, FromNode(inner))
	}
	if len(types) == 1 {
		return types[0], true
	}
	return &Tuple{Elements: types}, true
}

func genericArguments(n syntax.Node) []TypeDescription {
	clause := syntax.FirstChild(n, syntax.KindGenericArgumentClause)
	if clause == nil {
		return nil
	}
	return fromNodes(syntax.Types(clause))
}

func fromNodes(nodes []syntax.Node) []TypeDescription {
	out := make([]TypeDescription, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, FromNode(n))
	}
	return out
}

// Parse parses type syntax text into a description.
func Parse(text string) TypeDescription {
	return FromNode(swiftparse.ParseType(text))
}
