// Package frontend turns source buffers into file models, choosing the
// parser by name or by file extension.
package frontend

import (
	"context"
	"path/filepath"

	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"

	"github.com/dejo1307/swiftdecl/internal/extract"
	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/swiftparse"
	"github.com/dejo1307/swiftdecl/internal/syntax"
	"github.com/dejo1307/swiftdecl/internal/syntax/sitter"
	"github.com/dejo1307/swiftdecl/internal/treecache"
)

// Front end names.
const (
	Swift      = "swift"
	TypeScript = "typescript"
)

// ErrUnknown is returned for an unsupported front end name.
var ErrUnknown = errors.Base("unknown front end")

// Names lists the supported front ends.
var Names = []string{Swift, TypeScript}

// Detect picks the front end for path by extension. Anything that is not
// TypeScript is treated as Swift.
func Detect(path string) string {
	switch filepath.Ext(path) {
	case ".ts", ".tsx", ".mts", ".cts":
		return TypeScript
	default:
		return Swift
	}
}

// Extract parses src with the named front end (detected from path when
// name is empty) and extracts its declarations.
func Extract(ctx context.Context, path string, src []byte, name string) (*model.FileModel, error) {
	return ExtractCached(ctx, nil, path, src, name)
}

// ExtractCached is Extract with Swift trees looked up in cache by path and
// content hash. A nil cache parses every time.
func ExtractCached(ctx context.Context, cache treecache.Cache, path string, src []byte, name string) (*model.FileModel, error) {
	if name == "" {
		name = Detect(path)
	}
	switch name {
	case Swift:
		parse := func() *swiftparse.File { return swiftparse.Parse(src) }
		var parsed *swiftparse.File
		if cache != nil {
			parsed = cache.Get(treecache.Key{Path: path, Hash: treecache.Sum(src)}, parse)
		} else {
			parsed = parse()
		}
		return FileModel(ctx, path, parsed.Root, Diagnostics(parsed.Diagnostics)), nil
	case TypeScript:
		root, err := sitter.ParseTypeScript(path, src)
		if err != nil {
			return nil, err
		}
		return FileModel(ctx, path, root, nil), nil
	default:
		return nil, errors.WithDetails(ErrUnknown, "frontend", name)
	}
}

// FileModel extracts the declarations below root. Consistency violations
// are logged through the context logger and appended to diagnostics.
func FileModel(ctx context.Context, path string, root syntax.Node, diagnostics []model.Diagnostic) *model.FileModel {
	logViolation := extract.LogReporter(slogctx.FromCtx(ctx).With("component", "extract", "file", path))
	fm := extract.File(root,
		extract.WithFile(path),
		extract.WithReporter(func(v *extract.ConsistencyViolation) {
			logViolation(v)
			diagnostics = append(diagnostics, model.Diagnostic{Line: v.Line, Message: v.Subject + ": " + v.Reason})
		}),
	)
	if len(diagnostics) > 0 {
		fm.Diagnostics = diagnostics
	}
	return fm
}

// Diagnostics converts parser diagnostics.
func Diagnostics(in []swiftparse.Diagnostic) []model.Diagnostic {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.Diagnostic, 0, len(in))
	for _, d := range in {
		out = append(out, model.Diagnostic{Line: d.Line, Message: d.Message})
	}
	return out
}
