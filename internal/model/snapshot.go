package model

// FileModel is the extraction result for one source file.
type FileModel struct {
	Path        string       `json:"path"`           // Relative to repo root
	Hash        string       `json:"hash,omitempty"` // sha256 of the content
	Imports     []string     `json:"imports,omitempty"`
	Forest      Forest       `json:"forest"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Diagnostic is a non-fatal parse problem recorded for a file.
type Diagnostic struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Insight is a finding produced by an explainer.
type Insight struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Confidence  float64    `json:"confidence"` // 0.0 - 1.0
	Evidence    []Evidence `json:"evidence"`
	Actions     []string   `json:"suggested_actions,omitempty"`
}

// Evidence links an insight back to concrete files and declarations.
type Evidence struct {
	File        string `json:"file,omitempty"`
	Line        int    `json:"line,omitempty"`
	Declaration string `json:"declaration,omitempty"` // Qualified name
	Detail      string `json:"detail,omitempty"`
}

// Artifact is a generated output file.
type Artifact struct {
	Name    string `json:"name"` // e.g. "outline.md"
	Content []byte `json:"-"`
	Type    string `json:"type"` // MIME type hint
}

// Snapshot holds the complete result of an analysis run.
type Snapshot struct {
	Meta      SnapshotMeta `json:"meta"`
	Files     []FileModel  `json:"files"`
	Insights  []Insight    `json:"insights"`
	Artifacts []Artifact   `json:"artifacts"`
}

// SnapshotMeta describes a snapshot generation run.
type SnapshotMeta struct {
	ID               string     `json:"id"`
	RepoPath         string     `json:"repo_path"`
	GeneratedAt      string     `json:"generated_at"`
	Duration         string     `json:"duration"`
	Explainers       []string   `json:"explainers"`
	Renderers        []string   `json:"renderers"`
	FileHashes       []FileHash `json:"file_hashes,omitempty"`
	FileCount        int        `json:"file_count"`
	ReusedFiles      int        `json:"reused_files"`
	DeclarationCount int        `json:"declaration_count"`
	DiagnosticCount  int        `json:"diagnostic_count"`
	InsightCount     int        `json:"insight_count"`
}

// FileHash tracks a file's content hash for incremental updates.
type FileHash struct {
	Path    string `json:"path"`
	Hash    string `json:"hash"`
	ModTime string `json:"mod_time"`
}
