package server

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/swiftdecl/internal/config"
	"github.com/dejo1307/swiftdecl/internal/engine"
	"github.com/dejo1307/swiftdecl/internal/explainers/cycles"
	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/renderers/outline"
)

const shapesSource = `protocol Shape {}
class Base: Shape {}
public final class Circle: Base {
    var radius: Double = 1
    struct Style {}
}
`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	repo := t.TempDir()
	path := filepath.Join(repo, "Sources", "Shapes.swift")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(shapesSource), 0o644))

	cfg := config.Default()
	cfg.Repo = repo
	cfg.Workers = 1
	eng, err := engine.New(cfg)
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	eng.RegisterExplainer(cycles.New())
	eng.RegisterRenderer(outline.New(cfg.Output.MaxOutlineTokens))

	s, err := New(eng, cfg)
	require.NoError(t, err)
	return s, repo
}

func generate(t *testing.T, s *Server) {
	t.Helper()
	res, _, err := s.handleGenerateSnapshot(context.Background(), nil, generateSnapshotArgs{})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestReadSourceWindow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.swift")
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, "line "+string(rune('0'+i)))
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))

	tests := []struct {
		name         string
		centerLine   int
		contextLines int
		wantStart    int
		wantEnd      int
	}{
		{"center middle", 5, 6, 2, 8},
		{"center at start", 1, 10, 1, 6},
		{"center at end", 10, 10, 5, 10},
		{"context larger than file", 5, 20, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readSourceWindow(path, tt.centerLine, tt.contextLines)
			require.NoError(t, err)

			outputLines := strings.Split(strings.TrimRight(got, "\n"), "\n")
			require.Len(t, outputLines, tt.wantEnd-tt.wantStart+1)
			assert.True(t, strings.HasPrefix(outputLines[0], fmt.Sprintf("%4d│", tt.wantStart)), outputLines[0])
		})
	}
}

func TestReadSourceWindow_SingleLineFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "single.swift")
	require.NoError(t, os.WriteFile(path, []byte("only line"), 0o644))

	got, err := readSourceWindow(path, 1, 30)
	require.NoError(t, err)
	assert.Equal(t, "   1│ only line\n", got)
}

func TestReadSourceWindow_MissingFile(t *testing.T) {
	_, err := readSourceWindow(filepath.Join(t.TempDir(), "nope.swift"), 1, 10)
	assert.Error(t, err)
}

func TestGenerateSnapshot(t *testing.T) {
	s, repo := newTestServer(t)

	res, _, err := s.handleGenerateSnapshot(context.Background(), nil, generateSnapshotArgs{RepoPath: repo})
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "Files: 1 (0 unchanged)")
	assert.Contains(t, text, "Declarations: 4")
	assert.FileExists(t, filepath.Join(repo, ".swiftdecl", outline.ArtifactName))
	assert.FileExists(t, filepath.Join(repo, ".swiftdecl", engine.DeclarationsFile))
}

func TestGenerateSnapshot_BadRepo(t *testing.T) {
	s, _ := newTestServer(t)

	res, _, err := s.handleGenerateSnapshot(context.Background(), nil, generateSnapshotArgs{
		RepoPath: filepath.Join(t.TempDir(), "missing"),
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestQueryDeclarations(t *testing.T) {
	s, repo := newTestServer(t)

	res, _, err := s.handleQueryDeclarations(context.Background(), nil, queryDeclarationsArgs{Kind: "class"})
	require.NoError(t, err)
	assert.True(t, res.IsError, "query before a snapshot")

	generate(t, s)

	tests := []struct {
		name  string
		args  queryDeclarationsArgs
		want  []string
		total int
	}{
		{"by kind", queryDeclarationsArgs{Kind: "class"}, []string{"Base", "Circle"}, 2},
		{"by parent", queryDeclarationsArgs{Parent: "Circle"}, []string{"Circle.Style"}, 1},
		{"by inherited type", queryDeclarationsArgs{Inherits: "Shape"}, []string{"Base"}, 1},
		{"absolute file prefix", queryDeclarationsArgs{FilePrefix: filepath.Join(repo, "Sources"), Kind: "protocol"}, []string{"Shape"}, 1},
		{"paged", queryDeclarationsArgs{Offset: 3, Limit: 1}, []string{"Shape"}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, err := s.handleQueryDeclarations(context.Background(), nil, tt.args)
			require.NoError(t, err)
			require.False(t, res.IsError)

			text := resultText(t, res)
			var out queryResult
			require.NoError(t, json.NewDecoder(strings.NewReader(text)).Decode(&out))
			assert.Equal(t, tt.total, out.Total)

			var names []string
			for _, r := range out.Results {
				names = append(names, r.QualifiedName)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestQueryDeclarations_Summary(t *testing.T) {
	s, _ := newTestServer(t)
	generate(t, s)

	res, _, err := s.handleQueryDeclarations(context.Background(), nil, queryDeclarationsArgs{QualifiedName: "Circle"})
	require.NoError(t, err)

	var out queryResult
	require.NoError(t, json.NewDecoder(strings.NewReader(resultText(t, res))).Decode(&out))
	require.Len(t, out.Results, 1)
	got := out.Results[0]
	assert.Equal(t, model.KindClass, got.Kind)
	assert.Equal(t, "public class Circle: Base", got.Signature)
	assert.Equal(t, "Sources/Shapes.swift", got.File)
	assert.Equal(t, 3, got.Line)
	assert.Equal(t, 1, got.Members)
}

func TestShowDeclaration(t *testing.T) {
	s, _ := newTestServer(t)

	res, _, err := s.handleShowDeclaration(context.Background(), nil, showDeclarationArgs{Name: "Circle"})
	require.NoError(t, err)
	assert.True(t, res.IsError, "show before a snapshot")

	generate(t, s)

	res, _, err = s.handleShowDeclaration(context.Background(), nil, showDeclarationArgs{Name: "Circle.Style", ContextLines: 2})
	require.NoError(t, err)
	require.False(t, res.IsError)
	text := resultText(t, res)
	assert.Contains(t, text, "### Circle.Style")
	assert.Contains(t, text, "File: Sources/Shapes.swift  Line: 5")
	assert.Contains(t, text, "struct Style")
	assert.Contains(t, text, `"parent_path": [`)
	assert.Contains(t, text, "   5│     struct Style {}")

	// Simple-name fallback
	res, _, err = s.handleShowDeclaration(context.Background(), nil, showDeclarationArgs{Name: "Style"})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "### Circle.Style")

	res, _, err = s.handleShowDeclaration(context.Background(), nil, showDeclarationArgs{Name: "Triangle"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestTypeHierarchy(t *testing.T) {
	s, _ := newTestServer(t)
	generate(t, s)

	res, _, err := s.handleTypeHierarchy(context.Background(), nil, typeHierarchyArgs{Name: "Circle", Direction: "up"})
	require.NoError(t, err)
	require.False(t, res.IsError)
	text := resultText(t, res)
	assert.Contains(t, text, "## Supertypes (2)")
	assert.Contains(t, text, "- Base (class, Sources/Shapes.swift:2)")
	assert.Contains(t, text, "  - Shape (protocol, Sources/Shapes.swift:1)")
	assert.NotContains(t, text, "Subtypes")

	res, _, err = s.handleTypeHierarchy(context.Background(), nil, typeHierarchyArgs{Name: "Shape"})
	require.NoError(t, err)
	text = resultText(t, res)
	assert.Contains(t, text, "## Supertypes (0)")
	assert.Contains(t, text, "## Subtypes (2)")
	assert.Contains(t, text, "  - Circle (class, Sources/Shapes.swift:3)")
}

func TestTypeHierarchy_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	generate(t, s)

	tests := []struct {
		name string
		args typeHierarchyArgs
	}{
		{"missing name", typeHierarchyArgs{}},
		{"bad direction", typeHierarchyArgs{Name: "Circle", Direction: "sideways"}},
		{"unknown type", typeHierarchyArgs{Name: "Triangle"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, err := s.handleTypeHierarchy(context.Background(), nil, tt.args)
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
}

func TestExtractSource(t *testing.T) {
	s, _ := newTestServer(t)

	res, _, err := s.handleExtractSource(context.Background(), nil, extractSourceArgs{
		Source: "enum Mode {\n    case on, off\n}\n",
		Path:   "Mode.swift",
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var fm model.FileModel
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &fm))
	assert.Equal(t, "Mode.swift", fm.Path)
	require.Len(t, fm.Forest.Enums, 1)
	assert.Len(t, fm.Forest.Enums[0].EnumCases, 2)

	res, _, err = s.handleExtractSource(context.Background(), nil, extractSourceArgs{Source: "x", Frontend: "cobol"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestNormalizeToRelative(t *testing.T) {
	s, repo := newTestServer(t)
	assert.Equal(t, filepath.Join(repo, "Sources"), s.normalizeToRelative(filepath.Join(repo, "Sources")), "no snapshot yet")

	generate(t, s)
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Sources", "Sources"},
		{filepath.Join(repo, "Sources", "Shapes.swift"), "Sources/Shapes.swift"},
		{filepath.Dir(repo), filepath.Dir(repo)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.normalizeToRelative(tt.in))
	}
}
