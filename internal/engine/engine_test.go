package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/dejo1307/swiftdecl/internal/config"
	"github.com/dejo1307/swiftdecl/internal/explainers/cycles"
	"github.com/dejo1307/swiftdecl/internal/index"
	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/renderers/outline"
)

// --- helpers ---

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		writeFile(t, root, rel, content)
	}
	return root
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Workers = 2
	eng, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	eng.RegisterExplainer(cycles.New())
	eng.RegisterRenderer(outline.New(cfg.Output.MaxOutlineTokens))
	return eng
}

var sampleRepo = map[string]string{
	"Sources/App/Model.swift":   "struct User: Codable {\n    let id: Int\n    struct Address {}\n}\n",
	"Sources/App/Service.swift": "class A: B {}\nclass B: A {}\n",
	"Sources/App/Broken.swift":  "struct Broken {\n    var x = 1\n",
	"Sources/App/README.md":     "# not swift\n",
	".build/debug/Gen.swift":    "struct Generated {}\n",
	"Pods/Lib/Lib.swift":        "struct Pod {}\n",
}

type countingProgress struct {
	total atomic.Int64
	done  atomic.Int64
}

func (p *countingProgress) Start(total int)   { p.total.Store(int64(total)) }
func (p *countingProgress) FileDone(_ string) { p.done.Add(1) }

// --- tests ---

func TestMatcher(t *testing.T) {
	tests := []struct {
		name     string
		relPath  string
		isDir    bool
		patterns []string
		want     bool
	}{
		{"pods directory", "Pods/Alamofire/Source.swift", false, []string{"Pods/**"}, true},
		{"pods dir itself", "Pods", true, []string{"Pods/**"}, true},
		{"git directory", ".git/HEAD", false, []string{".git/**"}, true},
		{"nested build dir", "Packages/Core/.build", true, []string{"**/.build/**"}, true},
		{"root build dir", ".build", true, []string{"**/.build/**"}, true},
		{"generated files with ** prefix", "Sources/App/API.generated.swift", false, []string{"**/*.generated.swift"}, true},
		{"root generated file", "API.generated.swift", false, []string{"**/*.generated.swift"}, true},
		{"normal source not ignored", "Sources/App/API.swift", false, []string{"**/*.generated.swift"}, false},
		{"single star stays in segment", "Sources/App/Main.swift", false, []string{"Sources/*.swift"}, false},
		{"output dir", ".swiftdecl/outline.md", false, []string{".swiftdecl/**"}, true},
		{"similar prefix not ignored", "Podspec/Lib.swift", false, []string{"Pods/**"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.patterns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.relPath, tt.isDir))
		})
	}
}

func TestNewMatcher_InvalidPattern(t *testing.T) {
	_, err := NewMatcher([]string{"Sources/[a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling ignore pattern")
}

func TestGenerateSnapshot(t *testing.T) {
	repo := writeRepo(t, sampleRepo)
	progress := &countingProgress{}
	eng := newEngine(t, WithProgress(progress))

	snap, err := eng.GenerateSnapshot(context.Background(), repo)
	require.NoError(t, err)

	var paths []string
	for _, f := range snap.Files {
		paths = append(paths, f.Path)
		assert.Len(t, f.Hash, 64)
	}
	assert.Equal(t, []string{"Sources/App/Broken.swift", "Sources/App/Model.swift", "Sources/App/Service.swift"}, paths)
	assert.EqualValues(t, 3, progress.total.Load())
	assert.EqualValues(t, 3, progress.done.Load())

	meta := snap.Meta
	assert.NotEmpty(t, meta.ID)
	assert.Equal(t, 3, meta.FileCount)
	assert.Zero(t, meta.ReusedFiles)
	assert.Equal(t, 5, meta.DeclarationCount) // Broken, User, User.Address, A, B
	assert.Positive(t, meta.DiagnosticCount)
	assert.Equal(t, []string{"cycles"}, meta.Explainers)
	assert.Equal(t, []string{"outline"}, meta.Renderers)
	assert.Len(t, meta.FileHashes, 3)

	require.Len(t, snap.Insights, 1)
	assert.Equal(t, "Inheritance cycle detected (2 types)", snap.Insights[0].Title)

	require.Len(t, eng.Index().Lookup("User.Address"), 1)
	assert.Same(t, snap, eng.Snapshot())
	assert.Equal(t, filepath.Join(repo, "Sources", "App", "Model.swift"), eng.ResolveFile("Sources/App/Model.swift"))
}

func TestGenerateSnapshot_DisabledStages(t *testing.T) {
	repo := writeRepo(t, sampleRepo)
	eng := newEngine(t)
	eng.cfg.Explainers = nil
	eng.cfg.Renderers = nil

	snap, err := eng.GenerateSnapshot(context.Background(), repo)
	require.NoError(t, err)
	assert.Empty(t, snap.Insights)
	assert.Empty(t, snap.Artifacts)
	assert.Empty(t, snap.Meta.Explainers)
}

func TestGenerateSnapshot_Incremental(t *testing.T) {
	repo := writeRepo(t, sampleRepo)
	ctx := context.Background()

	first := newEngine(t)
	_, err := first.GenerateSnapshot(ctx, repo)
	require.NoError(t, err)
	require.NoError(t, first.WriteArtifacts(ctx, ""))

	// A fresh engine picks up the previous run from the output directory.
	second := newEngine(t)
	snap, err := second.GenerateSnapshot(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Meta.ReusedFiles)
	assert.Equal(t, 5, snap.Meta.DeclarationCount)
	require.NoError(t, second.WriteArtifacts(ctx, ""))

	writeFile(t, repo, "Sources/App/Model.swift", "struct User {}\nenum Role {}\n")
	third := newEngine(t)
	snap, err = third.GenerateSnapshot(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Meta.ReusedFiles)
	assert.Len(t, third.Index().Lookup("Role"), 1)
	assert.Empty(t, third.Index().Lookup("User.Address"))
}

func TestWriteArtifacts(t *testing.T) {
	repo := writeRepo(t, sampleRepo)
	ctx := context.Background()
	eng := newEngine(t)

	require.ErrorIs(t, eng.WriteArtifacts(ctx, repo), ErrNoSnapshot)

	_, err := eng.GenerateSnapshot(ctx, repo)
	require.NoError(t, err)
	require.NoError(t, eng.WriteArtifacts(ctx, repo))

	outDir := filepath.Join(repo, ".swiftdecl")
	for _, name := range []string{"outline.md", DeclarationsFile, InsightsFile, MetaFile} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}

	// The output directory is never scanned.
	writeFile(t, repo, ".swiftdecl/Stray.swift", "struct Stray {}\n")
	snap, err := eng.GenerateSnapshot(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Meta.FileCount)

	reloaded := index.New()
	require.NoError(t, reloaded.ReadJSONLFile(filepath.Join(outDir, DeclarationsFile)))
	assert.Equal(t, 5, reloaded.Count())
}

func TestLoadArtifacts(t *testing.T) {
	repo := writeRepo(t, sampleRepo)
	ctx := context.Background()

	eng := newEngine(t)
	_, err := eng.LoadArtifacts(ctx, repo)
	require.Error(t, err, "nothing written yet")

	first, err := eng.GenerateSnapshot(ctx, repo)
	require.NoError(t, err)
	require.NoError(t, eng.WriteArtifacts(ctx, repo))

	loaded := newEngine(t)
	snap, err := loaded.LoadArtifacts(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, first.Meta.ID, snap.Meta.ID)
	assert.Equal(t, repo, snap.Meta.RepoPath)
	assert.Len(t, snap.Files, 3)
	require.Len(t, snap.Insights, 1)
	assert.Equal(t, 5, loaded.Index().Count())
	assert.Len(t, loaded.Index().Lookup("User.Address"), 1)

	data, err := loaded.GetArtifact("outline.md")
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Declaration Outline")
}

func TestGetArtifact(t *testing.T) {
	eng := newEngine(t)
	_, err := eng.GetArtifact(MetaFile)
	require.True(t, errors.Is(err, ErrNoSnapshot))

	_, err = eng.GenerateSnapshot(context.Background(), writeRepo(t, sampleRepo))
	require.NoError(t, err)

	data, err := eng.GetArtifact(MetaFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"declaration_count": 5`)

	data, err = eng.GetArtifact("outline.md")
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Declaration Outline")

	_, err = eng.GetArtifact("missing.txt")
	require.Error(t, err)
	assert.Contains(t, eng.ArtifactNames(), "outline.md")
}

func TestGenerateSnapshot_Cancelled(t *testing.T) {
	eng := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.GenerateSnapshot(ctx, writeRepo(t, sampleRepo))
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, eng.Snapshot())
}

// TestGenerateSnapshot_ConcurrentCallsSerialized verifies that concurrent
// runs do not corrupt the shared index.
func TestGenerateSnapshot_ConcurrentCallsSerialized(t *testing.T) {
	repo := writeRepo(t, sampleRepo)
	eng := newEngine(t)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.GenerateSnapshot(context.Background(), repo)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, eng.Index().Count())
}

func TestWatch(t *testing.T) {
	repo := writeRepo(t, sampleRepo)
	eng := newEngine(t, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan *model.Snapshot, 4)
	done := make(chan error, 1)
	go func() {
		done <- eng.Watch(ctx, repo, func(s *model.Snapshot, err error) {
			if assert.NoError(t, err) {
				results <- s
			}
		})
	}()

	// Give the watcher time to register its directories.
	time.Sleep(200 * time.Millisecond)
	writeFile(t, repo, "Sources/App/New.swift", "protocol Fresh {}\n")

	select {
	case s := <-results:
		assert.Equal(t, 4, s.Meta.FileCount)
		assert.Len(t, eng.Index().Lookup("Fresh"), 1)
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot after change")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
