package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() Node {
	name := Synthetic(KindIdentifier, "`default`")
	inherit := Synthetic(KindInheritanceClause, ": Codable",
		Synthetic(KindSimpleType, "Codable", Synthetic(KindIdentifier, "Codable")),
	)
	return Synthetic(KindStructDecl, "struct `default`: Codable {}", name, inherit, Synthetic(KindMemberBlock, "{}"))
}

func TestFirstChildAndChildrenOf(t *testing.T) {
	root := sampleTree()

	require.NotNil(t, FirstChild(root, KindInheritanceClause))
	assert.Nil(t, FirstChild(root, KindGenericParameterClause))
	assert.Len(t, ChildrenOf(root, KindIdentifier, KindMemberBlock), 2)
	assert.Empty(t, ChildrenOf(nil, KindIdentifier))
}

func TestName_StripsBackticks(t *testing.T) {
	assert.Equal(t, "default", Name(sampleTree()))
	assert.Equal(t, "plain", Unescape(" plain "))
}

func TestWalk_SkipsChildrenWhenVisitReturnsFalse(t *testing.T) {
	var seen []Kind
	Walk(sampleTree(), func(n Node) bool {
		seen = append(seen, n.Kind())
		return n.Kind() != KindInheritanceClause
	})
	assert.Equal(t, []Kind{KindStructDecl, KindIdentifier, KindInheritanceClause, KindMemberBlock}, seen)
}

func TestTypes(t *testing.T) {
	inherit := FirstChild(sampleTree(), KindInheritanceClause)
	types := Types(inherit)
	require.Len(t, types, 1)
	assert.Equal(t, "Codable", types[0].Text())
	assert.Equal(t, types[0], FirstType(inherit))
}

func TestLine(t *testing.T) {
	assert.Equal(t, 0, Line(Synthetic(KindIdentifier, "x")))
	assert.Equal(t, 7, Line(NewRaw(KindIdentifier, "let x", 4, 5, 7, "")))
}

func TestRawText_SlicesSource(t *testing.T) {
	src := "class A {}"
	n := NewRaw(KindIdentifier, src, 6, 7, 1, " ")
	assert.Equal(t, "A", n.Text())
	assert.Equal(t, " ", n.LeadingTrivia())

	bad := NewRaw(KindIdentifier, src, 8, 100, 1, "")
	assert.Equal(t, "", bad.Text())
}

func TestDocComment(t *testing.T) {
	tests := []struct {
		name   string
		trivia string
		want   string
	}{
		{"triple slash", "\n/// Renders a view.\n/// Second line.\n", "Renders a view.\nSecond line."},
		{"block doc", "/**\n * Block doc.\n */\n", "Block doc."},
		{"plain comment ignored", "// not docs\n", ""},
		{"plain comment resets", "/// stale\n// separator\n/// fresh\n", "fresh"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DocComment(tt.trivia))
		})
	}
}
