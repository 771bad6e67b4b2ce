package engine

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"

	"github.com/dejo1307/swiftdecl/internal/model"
)

// Watch regenerates the snapshot and rewrites its artifacts whenever a
// Swift file below repoPath changes, until ctx is done. Bursts of events are
// coalesced: a run starts once no event arrived for the debounce period.
// onSnapshot receives the result of every run.
func (e *Engine) Watch(ctx context.Context, repoPath string, onSnapshot func(*model.Snapshot, error)) error {
	if repoPath == "" {
		repoPath = e.cfg.Repo
	}
	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return errors.Errorf("resolving repo path: %w", err)
	}
	logger := slogctx.FromCtx(ctx).With("component", "watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := e.addDirectoriesRecursively(watcher, absRepo, absRepo); err != nil {
		return err
	}
	logger.Info("watching for changes", "repo", absRepo, "dirs", len(watcher.WatchList()))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Handle new directories - add them to watcher
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := e.addDirectoriesRecursively(watcher, absRepo, event.Name); err != nil {
						logger.Warn("failed to watch new directory", "dir", event.Name, slog.Any("error", err))
					}
					continue
				}
			}
			if !e.relevant(absRepo, event) {
				continue
			}
			logger.Debug("change detected", "file", event.Name, "op", event.Op.String())

			// Reset debounce timer
			if timer == nil {
				timer = time.NewTimer(e.debounce)
			} else {
				timer.Reset(e.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			snapshot, err := e.GenerateSnapshot(ctx, absRepo)
			if err == nil {
				err = e.WriteArtifacts(ctx, absRepo)
			}
			if err != nil && ctx.Err() != nil {
				return nil
			}
			onSnapshot(snapshot, err)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}

// relevant reports whether event touches a Swift file the engine would
// extract.
func (e *Engine) relevant(repoPath string, event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	if !isSwiftSource(event.Name) {
		return false
	}
	rel, err := filepath.Rel(repoPath, event.Name)
	if err != nil {
		return false
	}
	return !e.ignore.Match(filepath.ToSlash(rel), false)
}

// addDirectoriesRecursively watches dir and every directory below it that
// is neither ignored nor the output directory.
func (e *Engine) addDirectoriesRecursively(watcher *fsnotify.Watcher, repoPath, dir string) error {
	outDir := filepath.Join(repoPath, e.cfg.Output.Dir)
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != repoPath {
			rel, err := filepath.Rel(repoPath, path)
			if err != nil {
				return err
			}
			if path == outDir || e.ignore.Match(filepath.ToSlash(rel), true) {
				return filepath.SkipDir
			}
		}
		if err := watcher.Add(path); err != nil {
			return errors.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
