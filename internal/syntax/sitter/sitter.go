// Package sitter exposes tree-sitter parse trees as syntax.Node values so the
// declaration extractors can run over any grammar whose node kinds can be
// mapped onto the syntax kinds.
package sitter

import (
	treesitter "github.com/tree-sitter/go-tree-sitter"
	"gitlab.com/tozd/go/errors"

	"github.com/dejo1307/swiftdecl/internal/syntax"
)

// KindMap translates grammar node kinds to syntax kinds. Named nodes without
// an entry keep their grammar kind; anonymous nodes without an entry are
// dropped.
type KindMap map[string]syntax.Kind

// Inline marks wrapper kinds, such as export statements, whose children take
// the wrapper's place in its parent. The wrapper's leading trivia moves to
// its first child.
const Inline syntax.Kind = "-inline"

// Wrap converts the tree rooted at root into syntax nodes. The conversion is
// eager, so the tree-sitter tree may be closed afterwards. Comments and other
// extras are not children: they become the leading trivia of the following
// sibling.
func Wrap(root *treesitter.Node, src []byte, kinds KindMap) *syntax.Raw {
	text := string(src)
	return wrap(root, text, kinds, "")
}

func wrap(n *treesitter.Node, src string, kinds KindMap, trivia string) *syntax.Raw {
	var children []syntax.Node
	prevEnd := int(n.StartByte())
	for i := range n.ChildCount() {
		c := n.Child(i)
		if c == nil || c.IsExtra() {
			continue
		}
		if _, mapped := kinds[c.Kind()]; !c.IsNamed() && !mapped {
			prevEnd = int(c.EndByte())
			continue
		}
		child := wrap(c, src, kinds, src[prevEnd:c.StartByte()])
		prevEnd = int(c.EndByte())
		if child.Kind() != Inline {
			children = append(children, child)
			continue
		}
		inner := child.Children()
		if len(inner) > 0 {
			if first, ok := inner[0].(*syntax.Raw); ok {
				first.WithTrivia(child.LeadingTrivia() + first.LeadingTrivia())
			}
		}
		children = append(children, inner...)
	}
	kind, ok := kinds[n.Kind()]
	if !ok {
		kind = syntax.Kind(n.Kind())
	}
	line := int(n.StartPosition().Row) + 1
	return syntax.NewRaw(kind, src, int(n.StartByte()), int(n.EndByte()), line, trivia, children...)
}

// Parse parses src with lang and wraps the resulting tree.
func Parse(lang *treesitter.Language, src []byte, kinds KindMap) (*syntax.Raw, error) {
	parser := treesitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, errors.Errorf("setting language: %w", err)
	}
	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, errors.New("tree-sitter returned no tree")
	}
	defer tree.Close()
	return Wrap(tree.RootNode(), src, kinds), nil
}
