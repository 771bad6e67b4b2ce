package engine

import (
	"strings"

	"github.com/gobwas/glob"
	"gitlab.com/tozd/go/errors"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	root    glob.Glob // pattern without a leading "**/", for root-level paths
}

// Matcher decides which repository paths are skipped.
type Matcher struct {
	patterns []compiledPattern
}

// NewMatcher compiles ignore patterns. "*" stays within one path segment and
// "**" crosses segments.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Errorf("compiling ignore pattern %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			if cp.root, err = glob.Compile(simplified, '/'); err != nil {
				return nil, errors.Errorf("compiling ignore pattern %q: %w", pattern, err)
			}
		}
		m.patterns = append(m.patterns, cp)
	}
	return m, nil
}

// Match reports whether relPath (slash-separated, relative to the repo
// root) is ignored. A directory also matches patterns that select
// everything below it, so "vendor" matches "vendor/**".
func (m *Matcher) Match(relPath string, isDir bool) bool {
	for _, cp := range m.patterns {
		if cp.glob.Match(relPath) {
			return true
		}
		if isDir && cp.glob.Match(relPath+"/") {
			return true
		}
		if cp.root != nil && !strings.Contains(relPath, "/") {
			if cp.root.Match(relPath) || (isDir && cp.root.Match(relPath+"/")) {
				return true
			}
		}
	}
	return false
}
