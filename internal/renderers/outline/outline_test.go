package outline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/swiftdecl/internal/extract"
	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/swiftparse"
)

func fileModel(t *testing.T, path, src string) model.FileModel {
	t.Helper()
	f := swiftparse.Parse([]byte(src))
	require.Empty(t, f.Diagnostics)
	return *extract.File(f.Root, extract.WithFile(path))
}

func makeSnapshot(files []model.FileModel, insights []model.Insight) *model.Snapshot {
	return &model.Snapshot{
		Meta: model.SnapshotMeta{
			GeneratedAt:  "2024-01-01T00:00:00Z",
			Duration:     "1s",
			InsightCount: len(insights),
		},
		Files:    files,
		Insights: insights,
	}
}

func render(t *testing.T, r *OutlineRenderer, snapshot *model.Snapshot) string {
	t.Helper()
	artifacts, err := r.Render(context.Background(), snapshot)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, ArtifactName, artifacts[0].Name)
	assert.Equal(t, "text/markdown", artifacts[0].Type)
	return string(artifacts[0].Content)
}

func TestRender_NestedOutline(t *testing.T) {
	snapshot := makeSnapshot([]model.FileModel{
		fileModel(t, "Sources/Shapes.swift", `public class Canvas<T: Shape>: View {
    var items: [T] = []
    func draw() {}
    enum Layer {
        case back, front
    }
}
`),
		fileModel(t, "Sources/A.swift", "protocol Shape {}\n"),
	}, []model.Insight{{
		Title:      "Inheritance cycle detected (2 types)",
		Confidence: 1,
		Evidence:   []model.Evidence{{File: "Sources/A.swift", Line: 1}},
	}})

	content := render(t, New(4000), snapshot)

	assert.Contains(t, content, "# Declaration Outline")
	assert.Contains(t, content, "| class | 1 |")
	assert.Contains(t, content, "| enum | 1 |")
	assert.Contains(t, content, "2 files, 0 parse diagnostics.")
	assert.Contains(t, content, "- **Inheritance cycle detected (2 types)** (confidence: 100%) at `Sources/A.swift:1`")
	assert.Contains(t, content, "- `public class Canvas<T: Shape>: View` (line 1): 1 property, 1 function\n")
	assert.Contains(t, content, "  - `enum Layer` (line 4): 2 cases\n")

	// Files are listed in path order.
	assert.Less(t, strings.Index(content, "### Sources/A.swift"), strings.Index(content, "### Sources/Shapes.swift"))
}

func TestRender_Empty(t *testing.T) {
	content := render(t, New(0), makeSnapshot(nil, nil))
	assert.Contains(t, content, "_No Swift files found._")
	assert.NotContains(t, content, "## Insights")
}

func TestTokenBudgetEnforcement(t *testing.T) {
	var files []model.FileModel
	for i := range 40 {
		var src strings.Builder
		for j := range 10 {
			fmt.Fprintf(&src, "struct Type%d_%d: Codable, Hashable {}\n", i, j)
		}
		files = append(files, fileModel(t, fmt.Sprintf("Sources/File%02d.swift", i), src.String()))
	}

	content := render(t, New(500), makeSnapshot(files, nil))

	assert.Contains(t, content, "[Omitted: ")
	assert.Contains(t, content, "more]*")
	assert.LessOrEqual(t, len(content), 500*4+200)
}

func TestSignature(t *testing.T) {
	f := fileModel(t, "E.swift", "extension Array: Sendable where Element: Sendable {}\nfileprivate struct S {}\n")
	require.Len(t, f.Forest.Extensions, 1)
	require.Len(t, f.Forest.Structs, 1)

	assert.Equal(t, "extension Array: Sendable", Signature(f.Forest.Extensions[0]))
	assert.Equal(t, "fileprivate struct S", Signature(f.Forest.Structs[0]))
}
