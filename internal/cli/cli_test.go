package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/renderers/declyaml"
)

const pointSource = `/// A point.
public struct Point<T: Numeric>: Equatable {
    public var x: T
    var y: T
}
`

func writeTemp(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the command tree and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.Execute()
	return out.String(), err
}

func TestExtract_JSON(t *testing.T) {
	path := writeTemp(t, t.TempDir(), "Point.swift", pointSource)

	out, err := run(t, "extract", path)
	require.NoError(t, err)

	var fm model.FileModel
	require.NoError(t, json.Unmarshal([]byte(out), &fm))
	assert.Equal(t, path, fm.Path)
	require.Len(t, fm.Forest.Structs, 1)
	point := fm.Forest.Structs[0]
	assert.Equal(t, "Point", point.Name)
	assert.Equal(t, "A point.", point.Documentation)
	assert.Len(t, point.Properties, 2)
	require.Len(t, point.GenericParameters, 1)
	assert.Equal(t, "T", point.GenericParameters[0].Name)
}

func TestExtract_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "A.swift", "class A {}\n")
	b := writeTemp(t, dir, "B.swift", "enum B { case x }\n")

	out, err := run(t, "extract", a, b)
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var names []string
	for dec.More() {
		var fm model.FileModel
		require.NoError(t, dec.Decode(&fm))
		for _, d := range fm.Forest.Declarations() {
			names = append(names, d.Name)
		}
	}
	assert.Equal(t, []string{"A", "B"}, names)
}

func TestExtract_SameFileTwice(t *testing.T) {
	path := writeTemp(t, t.TempDir(), "Point.swift", pointSource)

	out, err := run(t, "extract", path, path)
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var models []model.FileModel
	for dec.More() {
		var fm model.FileModel
		require.NoError(t, dec.Decode(&fm))
		models = append(models, fm)
	}
	require.Len(t, models, 2)
	assert.Equal(t, models[0], models[1])
	assert.Equal(t, "Point", models[1].Forest.Structs[0].Name)
}

func TestExtract_YAML(t *testing.T) {
	path := writeTemp(t, t.TempDir(), "Point.swift", pointSource)

	out, err := run(t, "extract", "--format", "yaml", path)
	require.NoError(t, err)

	var doc declyaml.Document
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Files, 1)
	require.Len(t, doc.Files[0].Declarations, 1)
	assert.Equal(t, "Point", doc.Files[0].Declarations[0].Name)
}

func TestExtract_Pretty(t *testing.T) {
	path := writeTemp(t, t.TempDir(), "Point.swift", pointSource)

	out, err := run(t, "extract", "-f", "pretty", path)
	require.NoError(t, err)
	assert.Contains(t, out, "model.FileModel{")
	assert.Contains(t, out, `"Point"`)
}

func TestExtract_TypeScript(t *testing.T) {
	path := writeTemp(t, t.TempDir(), "shape.ts", "interface Shape {}\nclass Square implements Shape {}\n")

	out, err := run(t, "extract", path)
	require.NoError(t, err)

	var fm model.FileModel
	require.NoError(t, json.Unmarshal([]byte(out), &fm))
	assert.Len(t, fm.Forest.Protocols, 1)
	assert.Len(t, fm.Forest.Classes, 1)
}

func TestExtract_Errors(t *testing.T) {
	path := writeTemp(t, t.TempDir(), "Point.swift", pointSource)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no files", []string{"extract"}, "requires at least 1 arg"},
		{"unknown format", []string{"extract", "--format", "xml", path}, `unknown format "xml"`},
		{"unknown front end", []string{"extract", "--frontend", "cobol", path}, "unknown front end"},
		{"missing file", []string{"extract", path + ".missing"}, "reading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSnapshot(t *testing.T) {
	repo := t.TempDir()
	writeTemp(t, repo, "Sources/Point.swift", pointSource)
	writeTemp(t, repo, "Sources/Cycle.swift", "class A: B {}\nclass B: A {}\n")

	out, err := run(t, "snapshot", "--quiet", repo)
	require.NoError(t, err)
	assert.Contains(t, out, "Snapshot complete:")
	assert.Contains(t, out, "Files:         2 (0 unchanged)")
	assert.Contains(t, out, "Declarations:  3")
	assert.Contains(t, out, "Insights:      1")

	outDir := filepath.Join(repo, ".swiftdecl")
	for _, name := range []string{"outline.md", "declarations.yaml", "declarations.jsonl", "insights.json", "snapshot.meta.json"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}

	// A second run reuses both files.
	out, err = run(t, "snapshot", "--quiet", repo)
	require.NoError(t, err)
	assert.Contains(t, out, "Files:         2 (2 unchanged)")
}

func TestSnapshot_RepoFromEnvironment(t *testing.T) {
	repo := t.TempDir()
	writeTemp(t, repo, "Point.swift", pointSource)
	t.Setenv("SWIFTDECL_REPO", repo)

	out, err := run(t, "snapshot", "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "Repository:    "+repo)
}

func TestSnapshot_ConfigFile(t *testing.T) {
	repo := t.TempDir()
	writeTemp(t, repo, "Sources/Point.swift", pointSource)
	writeTemp(t, repo, "Generated/Model.swift", "struct Model {}\n")
	cfgPath := writeTemp(t, t.TempDir(), "swiftdecl.yaml", `
repo: `+repo+`
ignore:
  - "Generated/**"
explainers: [rules]
renderers: [outline]
output:
  dir: out
rules:
  - name: public-structs
    kinds: [struct]
    expr: '"public" in modifiers'
    message: is public
`)

	out, err := run(t, "--config", cfgPath, "snapshot", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "Declarations:  1")
	assert.Contains(t, out, "Insights:      1")
	assert.FileExists(t, filepath.Join(repo, "out", "outline.md"))
	assert.NoFileExists(t, filepath.Join(repo, "out", "declarations.yaml"))
}

func TestSnapshot_InvalidConfig(t *testing.T) {
	cfgPath := writeTemp(t, t.TempDir(), "swiftdecl.yaml", "renderers: [html]\n")

	_, err := run(t, "--config", cfgPath, "snapshot", "--quiet", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
