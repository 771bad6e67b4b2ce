package layers

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dejo1307/swiftdecl/internal/index"
	"github.com/dejo1307/swiftdecl/internal/model"
)

// LayerExplainer detects architectural layers from directory names and
// reports inheritance that crosses them in the wrong direction.
type LayerExplainer struct{}

// New creates a new LayerExplainer.
func New() *LayerExplainer {
	return &LayerExplainer{}
}

func (e *LayerExplainer) Name() string {
	return "layers"
}

// layerDef defines how we detect architectural layers from directory names.
type layerDef struct {
	Name     string
	Patterns []string
	Level    int // Lower level = inner/domain, higher = outer/UI
}

// Predefined layer patterns for common app architectures.
var (
	// Clean Architecture / VIPER style layers
	cleanLayers = []layerDef{
		{Name: "domain", Patterns: []string{"domain", "entity", "entities", "model", "models", "core"}, Level: 0},
		{Name: "application", Patterns: []string{"application", "usecase", "usecases", "service", "services", "interactor", "interactors"}, Level: 1},
		{Name: "presentation", Patterns: []string{"presentation", "presenter", "presenters", "viewmodel", "viewmodels"}, Level: 2},
		{Name: "data", Patterns: []string{"data", "repository", "repositories", "persistence", "storage", "networking", "network", "api"}, Level: 2},
		{Name: "ui", Patterns: []string{"ui", "view", "views", "screen", "screens", "scene", "scenes", "controller", "controllers", "viewcontrollers"}, Level: 3},
	}

	// MVVM layers
	mvvmLayers = []layerDef{
		{Name: "model", Patterns: []string{"model", "models"}, Level: 0},
		{Name: "viewmodel", Patterns: []string{"viewmodel", "viewmodels"}, Level: 1},
		{Name: "view", Patterns: []string{"view", "views"}, Level: 2},
	}
)

// archPattern represents a detected architecture pattern with its confidence.
type archPattern struct {
	Name       string
	Confidence float64
	Layers     map[string]*layerDef
	Modules    map[string]string // directory -> layer name
}

// Explain classifies the directories holding declarations and checks every
// inheritance edge between two classified directories.
func (e *LayerExplainer) Explain(ctx context.Context, idx *index.Index) ([]model.Insight, error) {
	modules := directories(idx)
	if len(modules) == 0 {
		return nil, nil
	}

	best := e.bestPattern(e.detectPatterns(modules))
	if best == nil {
		return nil, nil
	}

	classified := make([]string, 0, len(best.Modules))
	for mod := range best.Modules {
		classified = append(classified, mod)
	}
	slices.Sort(classified)

	evidence := make([]model.Evidence, 0, len(classified))
	for _, mod := range classified {
		evidence = append(evidence, model.Evidence{
			File:   mod,
			Detail: fmt.Sprintf("directory %q maps to layer %q", mod, best.Modules[mod]),
		})
	}

	insights := []model.Insight{{
		Title:       fmt.Sprintf("Architecture pattern: %s", best.Name),
		Description: fmt.Sprintf("Detected %s architecture pattern with %.0f%% confidence. Found %d layers with %d classified directories.", best.Name, best.Confidence*100, len(best.Layers), len(best.Modules)),
		Confidence:  best.Confidence,
		Evidence:    evidence,
		Actions: []string{
			"Ensure new types follow the detected layer structure",
			"Review cross-layer inheritance for violations",
		},
	}}

	return append(insights, e.detectViolations(idx, best)...), nil
}

// directories returns the distinct directories of indexed files that
// declare at least one type.
func directories(idx *index.Index) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range idx.Files() {
		if f.Forest.DeclarationCount() == 0 {
			continue
		}
		dir := fileDir(f.Path)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	slices.Sort(dirs)
	return dirs
}

func (e *LayerExplainer) detectPatterns(modules []string) []*archPattern {
	var patterns []*archPattern

	for _, def := range []struct {
		name   string
		layers []layerDef
	}{
		{"clean", cleanLayers},
		{"mvvm", mvvmLayers},
	} {
		pattern := &archPattern{
			Name:    def.name,
			Layers:  make(map[string]*layerDef),
			Modules: make(map[string]string),
		}

		matchCount := 0
		for _, mod := range modules {
			for i, layer := range def.layers {
				if matchesLayer(mod, layer.Patterns) {
					pattern.Layers[layer.Name] = &def.layers[i]
					pattern.Modules[mod] = layer.Name
					matchCount++
					break
				}
			}
		}

		if matchCount == 0 {
			continue
		}

		// Confidence based on how many directories are classified
		coverage := float64(matchCount) / float64(len(modules))
		// Also factor in how many distinct layers are matched
		layerCoverage := float64(len(pattern.Layers)) / float64(len(def.layers))
		pattern.Confidence = min(coverage*0.6+layerCoverage*0.4, 1.0)

		// Minimum threshold
		if pattern.Confidence >= 0.2 && len(pattern.Layers) >= 2 {
			patterns = append(patterns, pattern)
		}
	}

	return patterns
}

func (e *LayerExplainer) bestPattern(patterns []*archPattern) *archPattern {
	if len(patterns) == 0 {
		return nil
	}

	best := patterns[0]
	for _, p := range patterns[1:] {
		if p.Confidence > best.Confidence {
			best = p
		}
	}
	return best
}

// detectViolations reports types in an inner layer that inherit from or
// conform to a type declared in an outer layer.
func (e *LayerExplainer) detectViolations(idx *index.Index, pattern *archPattern) []model.Insight {
	var insights []model.Insight

	h := idx.Hierarchy()
	seen := make(map[string]bool)
	for _, entry := range idx.Declarations() {
		if entry.Declaration.Kind == model.KindExtension || seen[entry.QualifiedName] {
			continue
		}
		seen[entry.QualifiedName] = true

		sourceModule := fileDir(entry.File)
		sourceLayer, ok := pattern.Modules[sourceModule]
		if !ok {
			continue
		}
		sourceDef := pattern.Layers[sourceLayer]

		for _, target := range h.Supertypes(entry.QualifiedName, 1) {
			if target.External {
				continue
			}
			targetModule := fileDir(target.File)
			targetLayer, ok := pattern.Modules[targetModule]
			if !ok {
				continue
			}
			targetDef := pattern.Layers[targetLayer]
			if sourceDef.Level >= targetDef.Level {
				continue
			}

			insights = append(insights, model.Insight{
				Title: fmt.Sprintf("Layer violation: %s -> %s", sourceLayer, targetLayer),
				Description: fmt.Sprintf(
					"%s %q in %q (layer: %s, level %d) inherits from %s %q in %q (layer: %s, level %d). "+
						"Inner layers should not depend on outer layers.",
					entry.Declaration.Kind, entry.QualifiedName, sourceModule, sourceLayer, sourceDef.Level,
					target.Kind, target.Name, targetModule, targetLayer, targetDef.Level,
				),
				Confidence: 0.8,
				Evidence: []model.Evidence{
					{File: entry.File, Line: entry.Declaration.Line, Declaration: entry.QualifiedName, Detail: "inherits from " + target.Name},
					{File: target.File, Line: target.Line, Declaration: target.Name},
				},
				Actions: []string{
					"Declare a protocol in the inner layer and conform to it from the outer layer",
					"Move the shared type to an inner layer",
				},
			})
		}
	}

	return insights
}

// matchesLayer checks if a directory path contains any of the given patterns.
func matchesLayer(dir string, patterns []string) bool {
	for _, part := range strings.Split(strings.ToLower(dir), "/") {
		if slices.Contains(patterns, part) {
			return true
		}
	}
	return false
}

func fileDir(file string) string {
	i := strings.LastIndexByte(file, '/')
	if i < 0 {
		return "."
	}
	return file[:i]
}
