package extract

import (
	"strings"

	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/modifier"
	"github.com/dejo1307/swiftdecl/internal/syntax"
	"github.com/dejo1307/swiftdecl/internal/typedesc"
)

// nestable maps syntax kinds to the declaration kinds that may own members
// and nested declarations. Actors are not modeled.
var nestable = map[syntax.Kind]model.Kind{
	syntax.KindClassDecl:     model.KindClass,
	syntax.KindStructDecl:    model.KindStruct,
	syntax.KindEnumDecl:      model.KindEnum,
	syntax.KindProtocolDecl:  model.KindProtocol,
	syntax.KindExtensionDecl: model.KindExtension,
}

// DeclarationKind returns the record kind for a nestable syntax kind.
func DeclarationKind(k syntax.Kind) (model.Kind, bool) {
	kind, ok := nestable[k]
	return kind, ok
}

func modifierTokens(n syntax.Node) []string {
	list := syntax.FirstChild(n, syntax.KindModifierList)
	if list == nil {
		return nil
	}
	var tokens []string
	for _, m := range syntax.ChildrenOf(list, syntax.KindModifier) {
		tokens = append(tokens, m.Text())
	}
	return tokens
}

func hasModifier(n syntax.Node, word string) bool {
	for _, tok := range modifierTokens(n) {
		if strings.TrimSpace(tok) == word {
			return true
		}
	}
	return false
}

func modifiersOf(n syntax.Node) modifier.Set {
	return modifier.Parse(modifierTokens(n)...)
}

func attributesOf(n syntax.Node) []string {
	var attrs []string
	for _, a := range syntax.ChildrenOf(n, syntax.KindAttribute) {
		attrs = append(attrs, strings.Join(strings.Fields(a.Text()), " "))
	}
	return attrs
}

func docsOf(n syntax.Node) string {
	return syntax.DocComment(n.LeadingTrivia())
}

func inheritedTypes(n syntax.Node) []typedesc.TypeDescription {
	clause := syntax.FirstChild(n, syntax.KindInheritanceClause)
	if clause == nil {
		return nil
	}
	var types []typedesc.TypeDescription
	for _, t := range syntax.Types(clause) {
		types = append(types, typedesc.FromNode(t))
	}
	return types
}

// effects reports the async and throws specifiers among n's keyword children.
func effects(n syntax.Node) (async, throws bool) {
	for _, k := range syntax.ChildrenOf(n, syntax.KindKeyword) {
		word := k.Text()
		switch {
		case word == "async" || word == "reasync":
			async = true
		case strings.HasPrefix(word, "throws") || strings.HasPrefix(word, "rethrows"):
			throws = true
		}
	}
	return async, throws
}

// innerText returns the text of a braced block without its braces.
func innerText(n syntax.Node) string {
	text := strings.TrimSpace(n.Text())
	text = strings.TrimPrefix(text, "{")
	text = strings.TrimSuffix(text, "}")
	return strings.TrimSpace(text)
}

// valueText strips the leading `=` of an initializer or raw-value clause.
func valueText(n syntax.Node) string {
	text := strings.TrimSpace(n.Text())
	return strings.TrimSpace(strings.TrimPrefix(text, "="))
}
