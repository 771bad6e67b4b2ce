// Package outline renders a compact markdown outline of every extracted
// declaration, sized to a token budget.
package outline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/modifier"
	"github.com/dejo1307/swiftdecl/internal/typedesc"
)

// ArtifactName is the file the outline is written to.
const ArtifactName = "outline.md"

// OutlineRenderer produces outline.md.
type OutlineRenderer struct {
	maxTokens int
}

// New creates a new OutlineRenderer with the given token budget.
func New(maxTokens int) *OutlineRenderer {
	if maxTokens <= 0 {
		maxTokens = 4000
	}
	return &OutlineRenderer{maxTokens: maxTokens}
}

func (r *OutlineRenderer) Name() string {
	return "outline"
}

// section holds a rendered section with its display name.
type section struct {
	name    string
	content string
}

// Render produces the outline using progressive summarization. The summary
// and insights come first, then one section per file in path order; later
// sections are cut first when the budget is tight.
func (r *OutlineRenderer) Render(ctx context.Context, snapshot *model.Snapshot) ([]model.Artifact, error) {
	sections := []section{
		{"Summary", renderSummary(snapshot)},
		{"Insights", renderInsights(snapshot)},
	}

	files := slices.Clone(snapshot.Files)
	slices.SortFunc(files, func(a, b model.FileModel) int {
		return strings.Compare(a.Path, b.Path)
	})
	for _, f := range files {
		sections = append(sections, section{f.Path, renderFile(f)})
	}
	sections = append(sections, section{"Meta", renderMeta(snapshot)})

	header := "# Declaration Outline\n\n"
	maxChars := r.maxTokens * 4 // rough estimate: 1 token ~= 4 chars
	remaining := maxChars - len(header)

	var sb strings.Builder
	sb.WriteString(header)

	for i, sec := range sections {
		if sec.content == "" {
			continue
		}
		if len(sec.content) <= remaining {
			sb.WriteString(sec.content)
			remaining -= len(sec.content)
			continue
		}
		rest := i
		if remaining > 200 {
			// Partially include this section, cutting at a line boundary
			cut := sec.content[:remaining-100]
			if nl := strings.LastIndexByte(cut, '\n'); nl > 0 {
				cut = cut[:nl+1]
			}
			sb.WriteString(cut)
			fmt.Fprintf(&sb, "\n---\n*[Truncated in: %s]*\n", sec.name)
			rest++
		}
		if omitted := names(sections[rest:]); len(omitted) > 0 {
			fmt.Fprintf(&sb, "\n---\n*[Omitted: %s]*\n", summarize(omitted))
		}
		break
	}

	return []model.Artifact{
		{
			Name:    ArtifactName,
			Content: []byte(sb.String()),
			Type:    "text/markdown",
		},
	}, nil
}

func names(sections []section) []string {
	var out []string
	for _, s := range sections {
		if s.content != "" {
			out = append(out, s.name)
		}
	}
	return out
}

func summarize(names []string) string {
	const shown = 5
	if len(names) <= shown {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(names[:shown], ", "), len(names)-shown)
}

func renderSummary(snapshot *model.Snapshot) string {
	counts := make(map[model.Kind]int)
	diagnostics := 0
	for _, f := range snapshot.Files {
		for _, k := range model.Kinds {
			counts[k] += len(f.Forest.Of(k))
		}
		diagnostics += len(f.Diagnostics)
	}

	var sb strings.Builder
	sb.WriteString("## Summary\n\n")
	if len(snapshot.Files) == 0 {
		sb.WriteString("_No Swift files found._\n\n")
		return sb.String()
	}
	sb.WriteString("| Kind | Count |\n")
	sb.WriteString("|------|-------|\n")
	for _, k := range model.Kinds {
		fmt.Fprintf(&sb, "| %s | %d |\n", k, counts[k])
	}
	fmt.Fprintf(&sb, "\n%d files, %d parse diagnostics.\n\n", len(snapshot.Files), diagnostics)
	return sb.String()
}

func renderInsights(snapshot *model.Snapshot) string {
	if len(snapshot.Insights) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Insights\n\n")
	for _, in := range snapshot.Insights {
		fmt.Fprintf(&sb, "- **%s** (confidence: %.0f%%)", in.Title, in.Confidence*100)
		if len(in.Evidence) > 0 && in.Evidence[0].File != "" {
			fmt.Fprintf(&sb, " at `%s:%d`", in.Evidence[0].File, in.Evidence[0].Line)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderFile(f model.FileModel) string {
	roots := f.Forest.Roots()
	if len(roots) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "### %s\n\n", f.Path)
	slices.SortStableFunc(roots, func(a, b model.Declaration) int {
		return a.Line - b.Line
	})
	for _, d := range roots {
		renderDeclaration(&sb, d, 0)
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderDeclaration(sb *strings.Builder, d model.Declaration, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(sb, "- `%s`", Signature(d))
	if d.Line > 0 {
		fmt.Fprintf(sb, " (line %d)", d.Line)
	}
	if m := members(d); m != "" {
		sb.WriteString(": " + m)
	}
	sb.WriteString("\n")
	for _, n := range d.Nested {
		renderDeclaration(sb, n, depth+1)
	}
}

// Signature renders the header of a declaration the way it reads in
// source, without its body: access level, kind, name, generic parameters
// and inherited types.
func Signature(d model.Declaration) string {
	var sb strings.Builder
	if access := d.Modifiers.Access(); access != 0 && access != modifier.Internal {
		sb.WriteString(access.String() + " ")
	}
	sb.WriteString(string(d.Kind) + " " + d.Name)
	if len(d.GenericParameters) > 0 {
		params := make([]string, 0, len(d.GenericParameters))
		for _, g := range d.GenericParameters {
			if g.Bound != nil {
				params = append(params, g.Name+": "+typedesc.AsSource(g.Bound))
			} else {
				params = append(params, g.Name)
			}
		}
		sb.WriteString("<" + strings.Join(params, ", ") + ">")
	}
	if len(d.InheritedTypes) > 0 {
		inherited := make([]string, 0, len(d.InheritedTypes))
		for _, t := range d.InheritedTypes {
			inherited = append(inherited, typedesc.AsSource(t))
		}
		sb.WriteString(": " + strings.Join(inherited, ", "))
	}
	return sb.String()
}

func members(d model.Declaration) string {
	var parts []string
	add := func(n int, singular, plural string) {
		switch {
		case n == 1:
			parts = append(parts, "1 "+singular)
		case n > 1:
			parts = append(parts, fmt.Sprintf("%d %s", n, plural))
		}
	}
	add(len(d.EnumCases), "case", "cases")
	add(len(d.Properties), "property", "properties")
	add(len(d.Functions), "function", "functions")
	add(len(d.Initializers), "initializer", "initializers")
	add(len(d.Typealiases), "typealias", "typealiases")
	add(len(d.AssociatedTypes), "associated type", "associated types")
	return strings.Join(parts, ", ")
}

func renderMeta(snapshot *model.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "*Generated at %s in %s. %d declarations, %d insights.*\n",
		snapshot.Meta.GeneratedAt, snapshot.Meta.Duration,
		snapshot.Meta.DeclarationCount, snapshot.Meta.InsightCount)
	return sb.String()
}
