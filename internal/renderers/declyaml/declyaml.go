// Package declyaml renders every file model as a readable YAML document.
package declyaml

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/modifier"
	"github.com/dejo1307/swiftdecl/internal/typedesc"
)

// ArtifactName is the file the document is written to.
const ArtifactName = "declarations.yaml"

// YAMLRenderer produces declarations.yaml.
type YAMLRenderer struct{}

// New creates a new YAMLRenderer.
func New() *YAMLRenderer {
	return &YAMLRenderer{}
}

func (r *YAMLRenderer) Name() string {
	return "yaml"
}

// Document is the top-level YAML shape.
type Document struct {
	Files []File `yaml:"files"`
}

// File is one source file.
type File struct {
	Path         string        `yaml:"path"`
	Imports      []string      `yaml:"imports,omitempty"`
	Declarations []Declaration `yaml:"declarations,omitempty"`
	Diagnostics  []string      `yaml:"diagnostics,omitempty"`
}

// Declaration is a type declaration with its members. Types are rendered
// as source text.
type Declaration struct {
	Kind         string        `yaml:"kind"`
	Name         string        `yaml:"name"`
	Line         int           `yaml:"line,omitempty"`
	Modifiers    modifier.Set  `yaml:"modifiers,omitempty"`
	Attributes   []string      `yaml:"attributes,omitempty"`
	Generics     []string      `yaml:"generics,omitempty"`
	Where        []string      `yaml:"where,omitempty"`
	Inherits     []string      `yaml:"inherits,omitempty"`
	Cases        []string      `yaml:"cases,omitempty"`
	Typealiases  []string      `yaml:"typealiases,omitempty"`
	Associated   []string      `yaml:"associated_types,omitempty"`
	Properties   []Property    `yaml:"properties,omitempty"`
	Initializers []string      `yaml:"initializers,omitempty"`
	Functions    []string      `yaml:"functions,omitempty"`
	Nested       []Declaration `yaml:"nested,omitempty"`
}

// Property is one stored or computed property.
type Property struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type,omitempty"`
	Paradigm string `yaml:"paradigm"`
	Value    string `yaml:"value,omitempty"`
}

// Render produces the declarations.yaml artifact.
func (r *YAMLRenderer) Render(ctx context.Context, snapshot *model.Snapshot) ([]model.Artifact, error) {
	data, err := Marshal(snapshot.Files)
	if err != nil {
		return nil, err
	}
	return []model.Artifact{
		{
			Name:    ArtifactName,
			Content: data,
			Type:    "application/yaml",
		},
	}, nil
}

// Marshal encodes files in path order.
func Marshal(files []model.FileModel) ([]byte, error) {
	files = slices.Clone(files)
	slices.SortFunc(files, func(a, b model.FileModel) int {
		return strings.Compare(a.Path, b.Path)
	})

	doc := Document{Files: make([]File, 0, len(files))}
	for _, f := range files {
		doc.Files = append(doc.Files, fileOf(f))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Errorf("encoding declarations: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Errorf("encoding declarations: %w", err)
	}
	return buf.Bytes(), nil
}

func fileOf(f model.FileModel) File {
	out := File{Path: f.Path, Imports: f.Imports}
	roots := f.Forest.Roots()
	slices.SortStableFunc(roots, func(a, b model.Declaration) int {
		return a.Line - b.Line
	})
	for _, d := range roots {
		out.Declarations = append(out.Declarations, declarationOf(d))
	}
	for _, diag := range f.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, diagnostic(diag))
	}
	return out
}

func diagnostic(d model.Diagnostic) string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

func declarationOf(d model.Declaration) Declaration {
	out := Declaration{
		Kind:       string(d.Kind),
		Name:       d.Name,
		Line:       d.Line,
		Modifiers:  d.Modifiers,
		Attributes: d.Attributes,
		Generics:   generics(d.GenericParameters),
		Where:      requirements(d.GenericRequirements),
		Inherits:   sources(d.InheritedTypes),
	}
	for _, c := range d.EnumCases {
		s := c.Name
		if len(c.AssociatedValues) > 0 {
			s += "(" + parameters(c.AssociatedValues) + ")"
		}
		if c.RawValue != "" {
			s += " = " + c.RawValue
		}
		if c.Indirect {
			s = "indirect " + s
		}
		out.Cases = append(out.Cases, s)
	}
	for _, t := range d.Typealiases {
		s := t.Name
		if t.Initializer != nil {
			s += " = " + typedesc.AsSource(t.Initializer)
		}
		out.Typealiases = append(out.Typealiases, s)
	}
	for _, a := range d.AssociatedTypes {
		s := a.Name
		if inherited := sources(a.InheritedTypes); len(inherited) > 0 {
			s += ": " + strings.Join(inherited, ", ")
		}
		if a.Initializer != nil {
			s += " = " + typedesc.AsSource(a.Initializer)
		}
		out.Associated = append(out.Associated, s)
	}
	for _, p := range d.Properties {
		prop := Property{
			Name:     p.Name,
			Paradigm: string(p.Paradigm.Kind),
			Value:    p.Paradigm.Source,
		}
		if p.DeclaredType != nil {
			prop.Type = typedesc.AsSource(p.DeclaredType)
		}
		out.Properties = append(out.Properties, prop)
	}
	for _, i := range d.Initializers {
		out.Initializers = append(out.Initializers, initializerSignature(i))
	}
	for _, f := range d.Functions {
		out.Functions = append(out.Functions, FunctionSignature(f))
	}
	for _, n := range d.Nested {
		out.Nested = append(out.Nested, declarationOf(n))
	}
	return out
}

// FunctionSignature renders a function header, e.g.
// "func load<T>(from url: URL) async throws -> T".
func FunctionSignature(f model.Function) string {
	var sb strings.Builder
	sb.WriteString("func " + f.Name)
	if g := generics(f.GenericParameters); len(g) > 0 {
		sb.WriteString("<" + strings.Join(g, ", ") + ">")
	}
	sb.WriteString("(" + parameters(f.Parameters) + ")")
	effects(&sb, f.Async, f.Throws)
	if f.ReturnType != nil {
		sb.WriteString(" -> " + typedesc.AsSource(f.ReturnType))
	}
	if w := requirements(f.GenericRequirements); len(w) > 0 {
		sb.WriteString(" where " + strings.Join(w, ", "))
	}
	return sb.String()
}

func initializerSignature(i model.Initializer) string {
	var sb strings.Builder
	if i.Modifiers.Has(modifier.Convenience) {
		sb.WriteString("convenience ")
	}
	sb.WriteString("init" + i.Optionality)
	if g := generics(i.GenericParameters); len(g) > 0 {
		sb.WriteString("<" + strings.Join(g, ", ") + ">")
	}
	sb.WriteString("(" + parameters(i.Parameters) + ")")
	effects(&sb, i.Async, i.Throws)
	return sb.String()
}

func effects(sb *strings.Builder, async, throws bool) {
	if async {
		sb.WriteString(" async")
	}
	if throws {
		sb.WriteString(" throws")
	}
}

func parameters(params []model.Parameter) string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		var s string
		switch {
		case p.Label != "" && p.Label != p.Name:
			s = p.Label + " " + p.Name + ": "
		case p.Name != "":
			s = p.Name + ": "
		}
		if p.Type != nil {
			s += typedesc.AsSource(p.Type)
		}
		if p.Variadic {
			s += "..."
		}
		if p.HasDefault {
			s += " = ..."
		}
		out = append(out, s)
	}
	return strings.Join(out, ", ")
}

func generics(params []model.GenericParameter) []string {
	var out []string
	for _, g := range params {
		if g.Bound != nil {
			out = append(out, g.Name+": "+typedesc.AsSource(g.Bound))
		} else {
			out = append(out, g.Name)
		}
	}
	return out
}

func requirements(reqs []model.GenericRequirement) []string {
	var out []string
	for _, r := range reqs {
		op := ": "
		if r.Relationship == model.Equals {
			op = " == "
		}
		out = append(out, typedesc.AsSource(r.Left)+op+typedesc.AsSource(r.Right))
	}
	return out
}

func sources(types []typedesc.TypeDescription) []string {
	var out []string
	for _, t := range types {
		out = append(out, typedesc.AsSource(t))
	}
	return out
}
