package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/dejo1307/swiftdecl/internal/config"
	"github.com/dejo1307/swiftdecl/internal/explainers"
	"github.com/dejo1307/swiftdecl/internal/frontend"
	"github.com/dejo1307/swiftdecl/internal/index"
	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/renderers"
	"github.com/dejo1307/swiftdecl/internal/swiftparse"
	"github.com/dejo1307/swiftdecl/internal/treecache"
)

// Artifact names written next to the renderer outputs.
const (
	DeclarationsFile = "declarations.jsonl"
	InsightsFile     = "insights.json"
	MetaFile         = "snapshot.meta.json"
)

// ErrNoSnapshot is returned by accessors called before the first run.
var ErrNoSnapshot = errors.Base("no snapshot generated")

// Progress receives extraction progress. FileDone may be called from
// several goroutines at once.
type Progress interface {
	Start(total int)
	FileDone(path string)
}

// Option configures an Engine.
type Option func(*Engine)

// WithProgress reports extraction progress to p.
func WithProgress(p Progress) Option {
	return func(e *Engine) {
		e.progress = p
	}
}

// WithDebounce sets the quiet period Watch waits for before regenerating.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) {
		e.debounce = d
	}
}

// Engine orchestrates the snapshot generation pipeline.
type Engine struct {
	cfg        *config.Config
	explainers *explainers.Registry
	renderers  *renderers.Registry
	index      *index.Index
	cache      *treecache.Shared
	ignore     *Matcher
	progress   Progress
	debounce   time.Duration

	runMu sync.Mutex // serializes GenerateSnapshot

	mu       sync.RWMutex
	snapshot *model.Snapshot
}

// New creates a new Engine with the given config.
// Explainers and renderers must be registered after creation.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	ignore, err := NewMatcher(cfg.Ignore)
	if err != nil {
		return nil, err
	}
	capacity := cfg.Cache.Capacity
	if capacity <= 0 {
		capacity = config.Default().Cache.Capacity
	}
	cache, err := treecache.NewShared(capacity)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:        cfg,
		explainers: explainers.NewRegistry(),
		renderers:  renderers.NewRegistry(),
		index:      index.New(),
		cache:      cache,
		ignore:     ignore,
		debounce:   300 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Close releases the parse cache.
func (e *Engine) Close() {
	e.cache.Close()
}

// RegisterExplainer adds an explainer to the engine.
func (e *Engine) RegisterExplainer(exp explainers.Explainer) {
	e.explainers.Register(exp)
}

// RegisterRenderer adds a renderer to the engine.
func (e *Engine) RegisterRenderer(rnd renderers.Renderer) {
	e.renderers.Register(rnd)
}

// Index returns the declaration index of the last run.
func (e *Engine) Index() *index.Index {
	return e.index
}

// Snapshot returns the last generated snapshot, or nil.
func (e *Engine) Snapshot() *model.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// SetSnapshot replaces the current snapshot.
func (e *Engine) SetSnapshot(s *model.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshot = s
}

// Config returns the engine config.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// ResolveFile returns the absolute path of a file recorded in the snapshot.
func (e *Engine) ResolveFile(relPath string) string {
	if filepath.IsAbs(relPath) {
		return relPath
	}
	s := e.Snapshot()
	if s == nil {
		return relPath
	}
	return filepath.Join(s.Meta.RepoPath, filepath.FromSlash(relPath))
}

// GenerateSnapshot runs the full pipeline: walk -> hash -> extract ->
// index -> explain -> render. Files whose content hash matches the previous
// run reuse the previous file model.
func (e *Engine) GenerateSnapshot(ctx context.Context, repoPath string) (*model.Snapshot, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	start := time.Now()

	if repoPath == "" {
		repoPath = e.cfg.Repo
	}

	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, errors.Errorf("resolving repo path: %w", err)
	}
	ctx = slogctx.With(ctx, "repo", absRepo)
	logger := slogctx.FromCtx(ctx).With("component", "engine")

	// 1. Walk repository and collect Swift files
	files, err := e.walkRepo(absRepo)
	if err != nil {
		return nil, errors.Errorf("walking repo: %w", err)
	}
	logger.Info("found swift files", "count", len(files))

	// 2. Load the previous run for incremental support
	previous := e.loadPrevious(absRepo, logger)

	// 3. Hash and extract in parallel
	models, hashes, reused, err := e.extractAll(ctx, absRepo, files, previous)
	if err != nil {
		return nil, errors.Errorf("extraction: %w", err)
	}
	logger.Info("extracted files", "files", len(models), "reused", reused)

	e.index.Clear()
	e.index.Add(models...)
	logger.Info("indexed declarations", "count", e.index.Count())

	// 4. Run explainers
	insights, usedExplainers := e.runExplainers(ctx, logger)
	logger.Info("produced insights", "count", len(insights), "explainers", len(usedExplainers))

	duration := time.Since(start)
	snapshot := &model.Snapshot{
		Meta: model.SnapshotMeta{
			ID:               uuid.NewString(),
			RepoPath:         absRepo,
			GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
			Duration:         duration.String(),
			Explainers:       usedExplainers,
			Renderers:        []string{},
			FileHashes:       hashes,
			FileCount:        len(models),
			ReusedFiles:      reused,
			DeclarationCount: e.index.Count(),
			DiagnosticCount:  e.index.DiagnosticCount(),
			InsightCount:     len(insights),
		},
		Files:    models,
		Insights: insights,
	}

	// 5. Run renderers
	snapshot.Meta.Renderers = e.runRenderers(ctx, snapshot, logger)
	logger.Info("produced artifacts", "count", len(snapshot.Artifacts), "renderers", len(snapshot.Meta.Renderers))

	e.SetSnapshot(snapshot)
	logger.Info("snapshot generated", "id", snapshot.Meta.ID, "duration", duration)
	return snapshot, nil
}

// walkRepo collects the Swift files of the repo, applying ignore patterns.
// Paths are slash-separated and relative to repoPath.
func (e *Engine) walkRepo(repoPath string) ([]string, error) {
	outDir := filepath.ToSlash(filepath.Clean(e.cfg.Output.Dir))
	var files []string
	err := filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(repoPath, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath == outDir || e.ignore.Match(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(relPath) != ".swift" || e.ignore.Match(relPath, false) {
			return nil
		}
		files = append(files, relPath)
		return nil
	})
	return files, err
}

// extractAll reads, hashes and extracts files with a bounded worker pool.
// Unreadable files are logged and left out; only cancellation aborts.
func (e *Engine) extractAll(ctx context.Context, repoPath string, files []string, previous map[string]model.FileModel) ([]model.FileModel, []model.FileHash, int, error) {
	logger := slogctx.FromCtx(ctx).With("component", "engine")

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if e.progress != nil {
		e.progress.Start(len(files))
	}

	results := make([]model.FileModel, len(files))
	hashes := make([]model.FileHash, len(files))
	var reused atomic.Int64

	var (
		errsMu sync.Mutex
		errs   *multierror.Error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			abs := filepath.Join(repoPath, filepath.FromSlash(rel))
			data, err := os.ReadFile(abs)
			if err != nil {
				errsMu.Lock()
				errs = multierror.Append(errs, errors.Errorf("reading %s: %w", rel, err))
				errsMu.Unlock()
				return nil
			}

			hash := treecache.Sum(data)
			hashes[i] = model.FileHash{Path: rel, Hash: hash, ModTime: fileModTime(abs)}

			if prev, ok := previous[rel]; ok && prev.Hash == hash {
				results[i] = prev
				reused.Add(1)
			} else {
				results[i] = e.extractFile(gctx, rel, hash, data)
			}
			if e.progress != nil {
				e.progress.FileDone(rel)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, 0, err
	}
	if err := errs.ErrorOrNil(); err != nil {
		logger.Warn("some files could not be read", "count", errs.Len(), slog.Any("error", err))
	}

	// Drop the slots of unreadable files
	models := slices.DeleteFunc(results, func(f model.FileModel) bool { return f.Path == "" })
	hashes = slices.DeleteFunc(hashes, func(h model.FileHash) bool { return h.Path == "" })
	return models, hashes, int(reused.Load()), nil
}

// extractFile parses src through the shared cache and extracts its
// declarations.
func (e *Engine) extractFile(ctx context.Context, rel, hash string, src []byte) model.FileModel {
	parsed := e.cache.Get(treecache.Key{Path: rel, Hash: hash}, func() *swiftparse.File {
		return swiftparse.Parse(src)
	})
	fm := frontend.FileModel(ctx, rel, parsed.Root, frontend.Diagnostics(parsed.Diagnostics))
	fm.Hash = hash
	return *fm
}

// runExplainers runs all enabled explainers. A failing explainer is logged
// and skipped.
func (e *Engine) runExplainers(ctx context.Context, logger *slog.Logger) ([]model.Insight, []string) {
	allInsights := []model.Insight{}
	usedNames := []string{}

	for _, exp := range e.explainers.Enabled(e.cfg.IsExplainerEnabled) {
		logger.Debug("running explainer", "explainer", exp.Name())
		insights, err := exp.Explain(ctx, e.index)
		if err != nil {
			logger.Error("explainer failed", "explainer", exp.Name(), slog.Any("error", err))
			continue
		}

		allInsights = append(allInsights, insights...)
		usedNames = append(usedNames, exp.Name())
		logger.Debug("explainer done", "explainer", exp.Name(), "insights", len(insights))
	}

	return allInsights, usedNames
}

// runRenderers runs all enabled renderers.
func (e *Engine) runRenderers(ctx context.Context, snapshot *model.Snapshot, logger *slog.Logger) []string {
	usedNames := []string{}

	for _, rnd := range e.renderers.Enabled(e.cfg.IsRendererEnabled) {
		logger.Debug("running renderer", "renderer", rnd.Name())
		artifacts, err := rnd.Render(ctx, snapshot)
		if err != nil {
			logger.Error("renderer failed", "renderer", rnd.Name(), slog.Any("error", err))
			continue
		}

		snapshot.Artifacts = append(snapshot.Artifacts, artifacts...)
		usedNames = append(usedNames, rnd.Name())
	}

	return usedNames
}

// WriteArtifacts writes all snapshot artifacts to the output directory,
// including declarations.jsonl, insights.json, and snapshot.meta.json. An
// empty repoPath means the snapshot's repository.
func (e *Engine) WriteArtifacts(ctx context.Context, repoPath string) error {
	snapshot := e.Snapshot()
	if snapshot == nil {
		return errors.WithStack(ErrNoSnapshot)
	}
	if repoPath == "" {
		repoPath = snapshot.Meta.RepoPath
	}
	logger := slogctx.FromCtx(ctx).With("component", "engine")

	outDir := filepath.Join(repoPath, e.cfg.Output.Dir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Errorf("creating output dir: %w", err)
	}

	write := func(name string, data []byte) error {
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Errorf("writing %s: %w", name, err)
		}
		logger.Info("wrote artifact", "path", path, "size", humanize.Bytes(uint64(len(data))))
		return nil
	}

	// Write renderer artifacts (e.g. outline.md)
	for _, a := range snapshot.Artifacts {
		if err := write(a.Name, a.Content); err != nil {
			return err
		}
	}

	for _, name := range []string{DeclarationsFile, InsightsFile, MetaFile} {
		data, err := e.GetArtifact(name)
		if err != nil {
			return err
		}
		if err := write(name, data); err != nil {
			return err
		}
	}
	return nil
}

// GetArtifact returns the content of a named artifact, or the generated JSONL/JSON files.
func (e *Engine) GetArtifact(name string) ([]byte, error) {
	snapshot := e.Snapshot()
	if snapshot == nil {
		return nil, errors.WithStack(ErrNoSnapshot)
	}

	switch name {
	case DeclarationsFile:
		var buf bytes.Buffer
		if err := e.index.WriteJSONL(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case InsightsFile:
		return marshalIndent(snapshot.Insights)
	case MetaFile:
		return marshalIndent(snapshot.Meta)
	default:
		for _, a := range snapshot.Artifacts {
			if a.Name == name {
				return a.Content, nil
			}
		}
		return nil, errors.Errorf("artifact %q not found", name)
	}
}

// ArtifactNames lists every name GetArtifact accepts for the current
// snapshot.
func (e *Engine) ArtifactNames() []string {
	names := []string{DeclarationsFile, InsightsFile, MetaFile}
	if s := e.Snapshot(); s != nil {
		for _, a := range s.Artifacts {
			names = append(names, a.Name)
		}
	}
	return names
}

func marshalIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// loadPrevious reads the previous snapshot meta and file models. A file
// model is reusable only when its hash matches the meta record.
func (e *Engine) loadPrevious(repoPath string, logger *slog.Logger) map[string]model.FileModel {
	outDir := filepath.Join(repoPath, e.cfg.Output.Dir)

	data, err := os.ReadFile(filepath.Join(outDir, MetaFile))
	if err != nil {
		return nil
	}
	var meta model.SnapshotMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		logger.Warn("ignoring unreadable snapshot meta", slog.Any("error", err))
		return nil
	}
	hashes := make(map[string]string, len(meta.FileHashes))
	for _, fh := range meta.FileHashes {
		hashes[fh.Path] = fh.Hash
	}

	f, err := os.Open(filepath.Join(outDir, DeclarationsFile))
	if err != nil {
		return nil
	}
	defer f.Close()
	files, err := index.ReadFiles(f)
	if err != nil {
		logger.Warn("ignoring unreadable declarations", slog.Any("error", err))
		return nil
	}

	previous := make(map[string]model.FileModel, len(files))
	for _, fm := range files {
		if fm.Hash != "" && hashes[fm.Path] == fm.Hash {
			previous[fm.Path] = fm
		}
	}
	logger.Debug("loaded previous file models", "count", len(previous))
	return previous
}

// LoadArtifacts restores the snapshot written by a previous WriteArtifacts
// call so queries work before the first generation. Renderer artifacts are
// rebuilt from the loaded file models.
func (e *Engine) LoadArtifacts(ctx context.Context, repoPath string) (*model.Snapshot, error) {
	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, errors.Errorf("resolving repo path: %w", err)
	}
	logger := slogctx.FromCtx(ctx).With("component", "engine")
	outDir := filepath.Join(absRepo, e.cfg.Output.Dir)

	data, err := os.ReadFile(filepath.Join(outDir, MetaFile))
	if err != nil {
		return nil, errors.Errorf("reading snapshot meta: %w", err)
	}
	var meta model.SnapshotMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Errorf("decoding snapshot meta: %w", err)
	}

	f, err := os.Open(filepath.Join(outDir, DeclarationsFile))
	if err != nil {
		return nil, errors.Errorf("opening declarations: %w", err)
	}
	defer f.Close()
	files, err := index.ReadFiles(f)
	if err != nil {
		return nil, err
	}

	var insights []model.Insight
	if data, err := os.ReadFile(filepath.Join(outDir, InsightsFile)); err == nil {
		if err := json.Unmarshal(data, &insights); err != nil {
			logger.Warn("ignoring unreadable insights", slog.Any("error", err))
			insights = nil
		}
	}

	meta.RepoPath = absRepo
	snapshot := &model.Snapshot{Meta: meta, Files: files, Insights: insights}

	e.runMu.Lock()
	defer e.runMu.Unlock()
	e.index.Clear()
	e.index.Add(files...)
	snapshot.Meta.Renderers = e.runRenderers(ctx, snapshot, logger)
	e.SetSnapshot(snapshot)

	logger.Info("loaded existing snapshot", "id", meta.ID, "files", len(files), "declarations", e.index.Count())
	return snapshot, nil
}

// fileModTime returns the modification time of a file as an RFC3339 string.
func fileModTime(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return info.ModTime().UTC().Format(time.RFC3339)
}

// isSwiftSource reports whether an event path names a Swift file.
func isSwiftSource(path string) bool {
	return strings.HasSuffix(path, ".swift")
}
