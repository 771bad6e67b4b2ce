package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/modifier"
	"github.com/dejo1307/swiftdecl/internal/syntax"
	"github.com/dejo1307/swiftdecl/internal/typedesc"
)

func TestProperties_Paradigm(t *testing.T) {
	tests := []struct {
		src        string
		want       model.Paradigm
		violations int
	}{
		{`let a = 1`, model.Paradigm{Kind: model.DefinedConstant, Source: "1"}, 0},
		{`var a: Int = b == c ? 1 : 2`, model.Paradigm{Kind: model.DefinedVariable, Source: "b == c ? 1 : 2"}, 0},
		{`var s = "a=b"`, model.Paradigm{Kind: model.DefinedVariable, Source: `"a=b"`}, 0},
		{`let a: Int`, model.Paradigm{Kind: model.UndefinedConstant}, 0},
		{`var a: Int`, model.Paradigm{Kind: model.UndefinedVariable}, 0},
		{`var a: Int { return 1 }`, model.Paradigm{Kind: model.ComputedVariable, Source: "return 1"}, 0},
		{`var a: Int { get { 1 } set {} }`, model.Paradigm{Kind: model.ComputedVariable, Source: "get { 1 } set {}"}, 0},
		{`var a: Int { get }`, model.Paradigm{Kind: model.ProtocolGetter}, 0},
		{`var a: Int { get set }`, model.Paradigm{Kind: model.ProtocolGetterAndSetter}, 0},
		{`var a: Int = 0 { didSet { print(a) } }`, model.Paradigm{Kind: model.DefinedVariable, Source: "0"}, 0},
		{`var a: Int { willSet {} }`, model.Paradigm{Kind: model.UndefinedVariable}, 0},
		{`var a: Int { set }`, model.Paradigm{Kind: model.ProtocolGetterAndSetter}, 1},
		{`var a: Int = 0 { get }`, model.Paradigm{Kind: model.DefinedVariable, Source: "0"}, 1},
		{`let a: Int { 1 }`, model.Paradigm{Kind: model.UndefinedConstant}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			var c Collector
			props := Properties(firstItem(t, tt.src), nil, c.Report)
			require.Len(t, props, 1)
			assert.Equal(t, tt.want, props[0].Paradigm)
			assert.Len(t, c.Violations, tt.violations)
		})
	}
}

func TestProperties_ExclusiveSignalsAreReported(t *testing.T) {
	var c Collector
	props := Properties(firstItem(t, `var total: Int = 0 { get set }`), model.QualifiedPath{"Cart"}, c.Report)

	require.Len(t, props, 1)
	assert.Equal(t, model.DefinedVariable, props[0].Paradigm.Kind)
	require.Len(t, c.Violations, 1)
	v := c.Violations[0]
	assert.Equal(t, "total", v.Subject)
	assert.Equal(t, 1, v.Line)
	assert.Contains(t, v.Reason, "initializer, accessor requirement")
}

func TestProperties_DeclaredTypePropagation(t *testing.T) {
	props := Properties(firstItem(t, `var a, b: Int, c, d: String`), nil, nil)

	require.Len(t, props, 4)
	want := []typedesc.TypeDescription{
		typedesc.NewSimple("Int"),
		typedesc.NewSimple("Int"),
		typedesc.NewSimple("String"),
		typedesc.NewSimple("String"),
	}
	for i, p := range props {
		assert.True(t, typedesc.Equal(want[i], p.DeclaredType), p.Name)
	}

	props = Properties(firstItem(t, `var x = 1, y: Double`), nil, nil)
	require.Len(t, props, 2)
	assert.True(t, typedesc.Equal(typedesc.NewSimple("Double"), props[0].DeclaredType))
	assert.Equal(t, model.DefinedVariable, props[0].Paradigm.Kind)
	assert.Equal(t, model.UndefinedVariable, props[1].Paradigm.Kind)

	props = Properties(firstItem(t, `var x: Int, y = 2`), nil, nil)
	require.Len(t, props, 2)
	assert.Nil(t, props[1].DeclaredType)
}

func TestProperties_TuplePattern(t *testing.T) {
	props := Properties(firstItem(t, `let (x, y): (Int, String) = pair`), nil, nil)

	require.Len(t, props, 2)
	assert.Equal(t, "x", props[0].Name)
	assert.True(t, typedesc.Equal(typedesc.NewSimple("Int"), props[0].DeclaredType))
	assert.Equal(t, "y", props[1].Name)
	assert.True(t, typedesc.Equal(typedesc.NewSimple("String"), props[1].DeclaredType))
	for _, p := range props {
		assert.Equal(t, model.Paradigm{Kind: model.DefinedConstant, Source: "pair"}, p.Paradigm)
	}
}

func TestProperties_Metadata(t *testing.T) {
	src := "/// The count.\n@Published public private(set) static var count = 0\n"
	props := Properties(firstItem(t, src), model.QualifiedPath{"Store"}, nil)

	require.Len(t, props, 1)
	p := props[0]
	assert.Equal(t, "The count.", p.Documentation)
	assert.Equal(t, []string{"@Published"}, p.Attributes)
	assert.Equal(t, modifier.Public|modifier.PrivateSet|modifier.Static, p.Modifiers)
	assert.Equal(t, model.QualifiedPath{"Store"}, p.ParentPath)
	assert.Equal(t, 2, p.Line)
}

func TestProperties_UnexpectedKeyword(t *testing.T) {
	decl := syntax.Synthetic(syntax.KindVariableDecl, "inout x",
		syntax.Synthetic(syntax.KindKeyword, "inout"),
		syntax.Synthetic(syntax.KindPatternBinding, "x",
			syntax.Synthetic(syntax.KindPattern, "x",
				syntax.Synthetic(syntax.KindIdentifier, "x"))))

	var c Collector
	props := Properties(decl, nil, c.Report)

	require.Len(t, props, 1)
	assert.Equal(t, model.UndefinedVariable, props[0].Paradigm.Kind)
	require.Len(t, c.Violations, 1)
	assert.Contains(t, c.Violations[0].Reason, `"inout"`)
}
