package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gitlab.com/tozd/go/errors"
	slogctx "github.com/veqryn/slog-context"

	"github.com/dejo1307/swiftdecl/internal/config"
	"github.com/dejo1307/swiftdecl/internal/engine"
	"github.com/dejo1307/swiftdecl/internal/frontend"
	"github.com/dejo1307/swiftdecl/internal/index"
	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/renderers/outline"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Server wraps the MCP server and connects it to the snapshot engine.
type Server struct {
	mcp *mcp.Server
	eng *engine.Engine
	cfg *config.Config
}

// New creates a new MCP server wired to the given engine.
func New(eng *engine.Engine, cfg *config.Config) (*Server, error) {
	s := &Server{
		eng: eng,
		cfg: cfg,
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "swiftdecl",
		Version: Version,
	}, nil)

	s.mcp = mcpServer
	s.registerResources()
	s.registerTools()

	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	slogctx.FromCtx(ctx).Info("starting MCP server on stdio transport", "component", "server")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// artifactResource describes an MCP resource backed by a snapshot artifact.
type artifactResource struct {
	uri         string
	name        string
	description string
	mimeType    string
	artifact    string
}

var artifactResources = []artifactResource{
	{"swiftdecl://snapshot/outline", "Declaration Outline", "Compact markdown outline of every declaration in the repository", "text/markdown", outline.ArtifactName},
	{"swiftdecl://snapshot/declarations", "Declarations", "All extracted file models in JSONL format, one file per line", "application/jsonl", engine.DeclarationsFile},
	{"swiftdecl://snapshot/insights", "Insights", "Inheritance cycles and rule findings", "application/json", engine.InsightsFile},
	{"swiftdecl://snapshot/meta", "Snapshot Metadata", "Metadata about the last snapshot generation", "application/json", engine.MetaFile},
}

// registerResources adds MCP resources for snapshot artifacts.
func (s *Server) registerResources() {
	for _, r := range artifactResources {
		s.mcp.AddResource(&mcp.Resource{
			URI:         r.uri,
			Name:        r.name,
			Description: r.description,
			MIMEType:    r.mimeType,
		}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			content, err := s.eng.GetArtifact(r.artifact)
			if err != nil {
				return nil, errors.Errorf("no snapshot available (run generate_snapshot first): %w", err)
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: req.Params.URI, Text: string(content), MIMEType: r.mimeType},
				},
			}, nil
		})
	}
}

// registerTools adds MCP tools for snapshot generation and declaration
// queries.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "generate_snapshot",
		Description: "Generate a declaration snapshot of a Swift repository. Parses every .swift file, extracts classes, structs, enums, protocols and extensions with their members, detects inheritance cycles, layer violations and rule findings, and writes the artifacts.",
	}, s.handleGenerateSnapshot)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_declarations",
		Description: "Query extracted declarations by kind, name, qualified name, enclosing type, file or inherited type. Returns compact JSON summaries with paging.",
	}, s.handleQueryDeclarations)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "show_declaration",
		Description: "Show a declaration found in the snapshot: its full extracted record and the surrounding source lines.",
	}, s.handleShowDeclaration)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "type_hierarchy",
		Description: "Show the supertypes and/or subtypes of a type, including conformances added by extensions.",
	}, s.handleTypeHierarchy)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "extract_source",
		Description: "Extract declarations from a source snippet without touching the snapshot. Returns the file model as JSON.",
	}, s.handleExtractSource)
}

// generateSnapshotArgs are the arguments for the generate_snapshot tool.
type generateSnapshotArgs struct {
	RepoPath string `json:"repo_path" jsonschema:"Path to the repository to analyze. Defaults to the configured repo path."`
}

func (s *Server) handleGenerateSnapshot(ctx context.Context, req *mcp.CallToolRequest, args generateSnapshotArgs) (*mcp.CallToolResult, any, error) {
	logger := slogctx.FromCtx(ctx).With("component", "server")

	repoPath := args.RepoPath
	if repoPath == "" {
		repoPath = s.cfg.Repo
	}

	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return errorResult(fmt.Sprintf("invalid repo path: %v", err)), nil, nil
	}

	snapshot, err := s.eng.GenerateSnapshot(ctx, absRepo)
	if err != nil {
		return errorResult(fmt.Sprintf("snapshot generation failed: %v", err)), nil, nil
	}

	// Write artifacts to disk
	if err := s.eng.WriteArtifacts(ctx, absRepo); err != nil {
		logger.Warn("failed to write artifacts", slog.Any("error", err))
	}

	summary := fmt.Sprintf(
		"Snapshot generated successfully.\n\n"+
			"- Repository: %s\n"+
			"- Files: %d (%d unchanged)\n"+
			"- Declarations: %d\n"+
			"- Diagnostics: %d\n"+
			"- Insights: %d\n"+
			"- Artifacts: %d\n"+
			"- Duration: %s\n"+
			"- Explainers: %v\n\n"+
			"Use the swiftdecl://snapshot/outline resource to read the outline.",
		snapshot.Meta.RepoPath,
		snapshot.Meta.FileCount,
		snapshot.Meta.ReusedFiles,
		snapshot.Meta.DeclarationCount,
		snapshot.Meta.DiagnosticCount,
		snapshot.Meta.InsightCount,
		len(snapshot.Artifacts),
		snapshot.Meta.Duration,
		snapshot.Meta.Explainers,
	)
	return textResult(summary), nil, nil
}

// queryDeclarationsArgs are the arguments for the query_declarations tool.
type queryDeclarationsArgs struct {
	Kind          string `json:"kind,omitempty" jsonschema:"Filter by kind: class, struct, enum, protocol or extension"`
	Name          string `json:"name,omitempty" jsonschema:"Filter by simple name using substring match"`
	QualifiedName string `json:"qualified_name,omitempty" jsonschema:"Exact dotted name, e.g. Outer.Inner"`
	Parent        string `json:"parent,omitempty" jsonschema:"Only declarations nested in this type (dotted prefix)"`
	FilePrefix    string `json:"file_prefix,omitempty" jsonschema:"Filter by file path prefix; absolute paths inside the repo are accepted"`
	Inherits      string `json:"inherits,omitempty" jsonschema:"Only declarations that list this supertype or protocol"`
	Offset        int    `json:"offset,omitempty" jsonschema:"Number of results to skip"`
	Limit         int    `json:"limit,omitempty" jsonschema:"Maximum results (default 100, max 500)"`
}

// declarationSummary is the compact form returned by queries.
type declarationSummary struct {
	QualifiedName string     `json:"qualified_name"`
	Kind          model.Kind `json:"kind"`
	Signature     string     `json:"signature"`
	File          string     `json:"file"`
	Line          int        `json:"line,omitempty"`
	Members       int        `json:"members"`
}

type queryResult struct {
	Total   int                  `json:"total"`
	Offset  int                  `json:"offset"`
	Results []declarationSummary `json:"results"`
}

func (s *Server) handleQueryDeclarations(ctx context.Context, req *mcp.CallToolRequest, args queryDeclarationsArgs) (*mcp.CallToolResult, any, error) {
	idx := s.eng.Index()
	if idx.Count() == 0 {
		return errorResult("No declarations available. Run generate_snapshot first."), nil, nil
	}

	entries, total := idx.Query(index.QueryOpts{
		Kind:          model.Kind(args.Kind),
		Name:          args.Name,
		QualifiedName: args.QualifiedName,
		Parent:        args.Parent,
		FilePrefix:    s.normalizeToRelative(args.FilePrefix),
		Inherits:      args.Inherits,
		Offset:        args.Offset,
		Limit:         args.Limit,
	})

	result := queryResult{Total: total, Offset: args.Offset, Results: make([]declarationSummary, 0, len(entries))}
	for _, e := range entries {
		result.Results = append(result.Results, summarize(e))
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to marshal results: %v", err)), nil, nil
	}

	text := string(data)
	if shown := args.Offset + len(entries); shown < total {
		text += fmt.Sprintf("\n\n... (showing %d of %d results, use offset=%d for more)", len(entries), total, shown)
	}
	return textResult(text), nil, nil
}

func summarize(e index.Entry) declarationSummary {
	d := e.Declaration
	return declarationSummary{
		QualifiedName: e.QualifiedName,
		Kind:          d.Kind,
		Signature:     outline.Signature(d),
		File:          e.File,
		Line:          d.Line,
		Members:       len(d.Properties) + len(d.Functions) + len(d.Initializers) + len(d.EnumCases) + len(d.Typealiases) + len(d.AssociatedTypes),
	}
}

// showDeclarationArgs are the arguments for the show_declaration tool.
type showDeclarationArgs struct {
	Name         string `json:"name" jsonschema:"required,Qualified name (e.g. Outer.Inner); falls back to a simple-name substring match"`
	ContextLines int    `json:"context_lines,omitempty" jsonschema:"Number of source lines to show around the declaration (default 30)"`
}

func (s *Server) handleShowDeclaration(ctx context.Context, req *mcp.CallToolRequest, args showDeclarationArgs) (*mcp.CallToolResult, any, error) {
	if s.eng.Snapshot() == nil {
		return errorResult("No snapshot available. Run generate_snapshot first."), nil, nil
	}
	if args.Name == "" {
		return errorResult("name is required"), nil, nil
	}

	idx := s.eng.Index()
	results := idx.Lookup(args.Name)
	if len(results) == 0 {
		results, _ = idx.Query(index.QueryOpts{Name: args.Name, Limit: 5})
	}
	if len(results) == 0 {
		return errorResult(fmt.Sprintf("No declarations matching %q", args.Name)), nil, nil
	}

	contextLines := args.ContextLines
	if contextLines <= 0 {
		contextLines = 30
	}

	// Limit to 5 results
	if len(results) > 5 {
		results = results[:5]
	}

	var sb strings.Builder
	for i, e := range results {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}

		fmt.Fprintf(&sb, "### %s\n", e.QualifiedName)
		fmt.Fprintf(&sb, "File: %s  Line: %d\n", e.File, e.Declaration.Line)
		fmt.Fprintf(&sb, "Signature:\n```\n%s\n```\n", outline.Signature(e.Declaration))
		if e.Declaration.Documentation != "" {
			fmt.Fprintf(&sb, "Documentation: %s\n", e.Declaration.Documentation)
		}

		record := e.Declaration
		record.Nested = nil
		if data, err := json.MarshalIndent(record, "", "  "); err == nil {
			fmt.Fprintf(&sb, "\nRecord:\n```json\n%s\n```\n", data)
		}
		sb.WriteString("\n")

		source, err := readSourceWindow(s.eng.ResolveFile(e.File), e.Declaration.Line, contextLines)
		if err != nil {
			fmt.Fprintf(&sb, "_Could not read source: %v_\n", err)
			continue
		}
		fmt.Fprintf(&sb, "```swift\n%s```\n", source)
	}

	return textResult(sb.String()), nil, nil
}

// typeHierarchyArgs are the arguments for the type_hierarchy tool.
type typeHierarchyArgs struct {
	Name      string `json:"name" jsonschema:"required,Qualified or unique simple type name"`
	Direction string `json:"direction,omitempty" jsonschema:"up (supertypes), down (subtypes) or both (default)"`
	MaxDepth  int    `json:"max_depth,omitempty" jsonschema:"Maximum traversal depth (default 10)"`
}

func (s *Server) handleTypeHierarchy(ctx context.Context, req *mcp.CallToolRequest, args typeHierarchyArgs) (*mcp.CallToolResult, any, error) {
	if s.eng.Index().Count() == 0 {
		return errorResult("No declarations available. Run generate_snapshot first."), nil, nil
	}
	if args.Name == "" {
		return errorResult("name is required"), nil, nil
	}

	direction := args.Direction
	if direction == "" {
		direction = "both"
	}
	if direction != "up" && direction != "down" && direction != "both" {
		return errorResult(fmt.Sprintf("invalid direction %q: use up, down or both", direction)), nil, nil
	}

	h := s.eng.Index().Hierarchy()
	name, ok := s.resolveTypeName(args.Name)
	if !ok {
		return errorResult(fmt.Sprintf("Type %q not found in the hierarchy", args.Name)), nil, nil
	}
	node, _ := h.Node(name)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", name)
	if node.External {
		sb.WriteString("_Declared outside the indexed sources._\n")
	} else {
		fmt.Fprintf(&sb, "%s at %s:%d\n", node.Kind, node.File, node.Line)
	}

	if direction == "up" || direction == "both" {
		writeRelated(&sb, "Supertypes", h.Supertypes(name, args.MaxDepth))
	}
	if direction == "down" || direction == "both" {
		writeRelated(&sb, "Subtypes", h.Subtypes(name, args.MaxDepth))
	}
	return textResult(sb.String()), nil, nil
}

// resolveTypeName finds the hierarchy vertex for a qualified name or a
// simple name that identifies exactly one declaration.
func (s *Server) resolveTypeName(name string) (string, bool) {
	h := s.eng.Index().Hierarchy()
	if _, ok := h.Node(name); ok {
		return name, true
	}
	var found string
	for _, e := range s.eng.Index().Declarations() {
		if e.Declaration.Name != name || e.Declaration.Kind == model.KindExtension {
			continue
		}
		if found != "" && found != e.QualifiedName {
			return "", false
		}
		found = e.QualifiedName
	}
	return found, found != ""
}

func writeRelated(sb *strings.Builder, title string, related []index.Related) {
	fmt.Fprintf(sb, "\n## %s (%d)\n\n", title, len(related))
	if len(related) == 0 {
		sb.WriteString("_None._\n")
		return
	}
	for _, r := range related {
		sb.WriteString(strings.Repeat("  ", r.Depth-1))
		if r.External {
			fmt.Fprintf(sb, "- %s (external)\n", r.Name)
		} else {
			fmt.Fprintf(sb, "- %s (%s, %s:%d)\n", r.Name, r.Kind, r.File, r.Line)
		}
	}
}

// extractSourceArgs are the arguments for the extract_source tool.
type extractSourceArgs struct {
	Source   string `json:"source" jsonschema:"required,Source text to extract declarations from"`
	Path     string `json:"path,omitempty" jsonschema:"File name recorded on the declarations; its extension selects the front end"`
	Frontend string `json:"frontend,omitempty" jsonschema:"swift or typescript; detected from path when omitted"`
}

func (s *Server) handleExtractSource(ctx context.Context, req *mcp.CallToolRequest, args extractSourceArgs) (*mcp.CallToolResult, any, error) {
	path := args.Path
	if path == "" {
		path = "snippet.swift"
	}
	fm, err := frontend.Extract(ctx, path, []byte(args.Source), args.Frontend)
	if err != nil {
		return errorResult(fmt.Sprintf("extraction failed: %v", err)), nil, nil
	}
	data, err := json.MarshalIndent(fm, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to marshal file model: %v", err)), nil, nil
	}
	return textResult(string(data)), nil, nil
}

// normalizeToRelative converts an absolute path inside the snapshot
// repository to a repo-relative, slash-separated path.
func (s *Server) normalizeToRelative(path string) string {
	if path == "" || !filepath.IsAbs(path) {
		return path
	}
	snapshot := s.eng.Snapshot()
	if snapshot == nil {
		return path
	}
	rel, err := filepath.Rel(snapshot.Meta.RepoPath, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

// readSourceWindow reads lines from a file centered around the given line number.
func readSourceWindow(absFile string, centerLine, contextLines int) (string, error) {
	data, err := os.ReadFile(absFile)
	if err != nil {
		return "", err
	}

	lines := strings.Split(string(data), "\n")
	startLine := max(centerLine-contextLines/2, 1)
	endLine := min(centerLine+contextLines/2, len(lines))

	var sb strings.Builder
	for i := startLine; i <= endLine; i++ {
		fmt.Fprintf(&sb, "%4d│ %s\n", i, lines[i-1])
	}
	return sb.String(), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
