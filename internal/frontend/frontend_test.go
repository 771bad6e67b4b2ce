package frontend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/swiftparse"
	"github.com/dejo1307/swiftdecl/internal/treecache"
)

func TestDetect(t *testing.T) {
	assert.Equal(t, Swift, Detect("Sources/App.swift"))
	assert.Equal(t, TypeScript, Detect("web/app.ts"))
	assert.Equal(t, TypeScript, Detect("web/View.tsx"))
	assert.Equal(t, Swift, Detect("README"))
}

func TestExtract_Swift(t *testing.T) {
	fm, err := Extract(context.Background(), "A.swift", []byte("struct A {\n    associatedtype T\n}\nclass B {\n"), "")
	require.NoError(t, err)

	assert.Equal(t, "A.swift", fm.Path)
	assert.Len(t, fm.Forest.Structs, 1)
	assert.Len(t, fm.Forest.Classes, 1)

	var messages []string
	for _, d := range fm.Diagnostics {
		messages = append(messages, d.Message)
	}
	require.GreaterOrEqual(t, len(messages), 2)
	assert.Contains(t, messages, "unterminated declaration body")
	assert.Equal(t, "T: associatedtype outside a protocol", messages[len(messages)-1])
}

func TestExtract_TypeScript(t *testing.T) {
	src := "interface Shape {\n  area(): number;\n}\nclass Square implements Shape {\n  area() { return 1; }\n}\n"
	fm, err := Extract(context.Background(), "shapes.ts", []byte(src), "")
	require.NoError(t, err)
	require.Len(t, fm.Forest.Protocols, 1)
	assert.Equal(t, "Shape", fm.Forest.Protocols[0].Name)
	require.Len(t, fm.Forest.Classes, 1)
	assert.Equal(t, "Square", fm.Forest.Classes[0].Name)
	assert.Empty(t, fm.Diagnostics)
}

func TestExtract_TypeScriptExports(t *testing.T) {
	src := "export class Widget {\n  draw() {}\n}\nexport interface Drawable {}\nclass Local {}\n"
	fm, err := Extract(context.Background(), "a.ts", []byte(src), "")
	require.NoError(t, err)

	var names []string
	for _, d := range fm.Forest.Declarations() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Widget", "Local", "Drawable"}, names)
}

func TestExtractCached_ReusesSwiftTree(t *testing.T) {
	var slot treecache.Slot
	src := []byte("struct A {}\n")
	ctx := context.Background()

	first, err := ExtractCached(ctx, &slot, "A.swift", src, "")
	require.NoError(t, err)
	second, err := ExtractCached(ctx, &slot, "A.swift", src, "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, slot.Hits)
	assert.Equal(t, 1, slot.Misses)

	changed, err := ExtractCached(ctx, &slot, "A.swift", []byte("class A {}\n"), "")
	require.NoError(t, err)
	assert.Len(t, changed.Forest.Classes, 1)
	assert.Equal(t, 2, slot.Misses)

	_, err = ExtractCached(ctx, &slot, "a.ts", []byte("class T {}\n"), "")
	require.NoError(t, err)
	assert.Equal(t, 1, slot.Hits)
	assert.Equal(t, 2, slot.Misses, "TypeScript sources bypass the tree cache")
}

func TestExtract_UnknownFrontEnd(t *testing.T) {
	_, err := Extract(context.Background(), "a.kt", nil, "kotlin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknown))
}

func TestDiagnostics(t *testing.T) {
	assert.Nil(t, Diagnostics(nil))
	assert.Equal(t, []model.Diagnostic{{Line: 3, Message: "expected type"}},
		Diagnostics([]swiftparse.Diagnostic{{Line: 3, Message: "expected type"}}))
}
