// Package index stores extracted file models and answers declaration
// queries over them.
package index

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"

	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/typedesc"
)

// Entry is one declaration together with the file it was extracted from.
type Entry struct {
	QualifiedName string            `json:"qualified_name"`
	File          string            `json:"file"`
	Declaration   model.Declaration `json:"declaration"`
}

// Index provides in-memory storage and querying of file models with JSONL
// persistence.
type Index struct {
	mu      sync.RWMutex
	files   []model.FileModel
	entries []Entry

	// Indexes for fast lookups
	byKind      map[model.Kind][]int // kind -> indices into entries
	byFile      map[string][]int     // file -> indices into entries
	byQualified map[string][]int     // qualified name -> indices into entries
	bySimple    map[string][]int     // simple name -> indices into entries

	// Hierarchy is derived from entries and rebuilt on demand
	hierarchy *Hierarchy
}

// New creates an empty index.
func New() *Index {
	return &Index{
		byKind:      make(map[model.Kind][]int),
		byFile:      make(map[string][]int),
		byQualified: make(map[string][]int),
		bySimple:    make(map[string][]int),
	}
}

// Add adds file models to the index. Every declaration of each file's forest,
// nested ones included, becomes an entry.
func (x *Index) Add(files ...model.FileModel) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, f := range files {
		x.files = append(x.files, f)
		for _, d := range f.Forest.Declarations() {
			file := d.File
			if file == "" {
				file = f.Path
			}
			idx := len(x.entries)
			e := Entry{QualifiedName: d.QualifiedName(), File: file, Declaration: d}
			x.entries = append(x.entries, e)
			x.byKind[d.Kind] = append(x.byKind[d.Kind], idx)
			x.byFile[file] = append(x.byFile[file], idx)
			x.byQualified[e.QualifiedName] = append(x.byQualified[e.QualifiedName], idx)
			x.bySimple[d.Name] = append(x.bySimple[d.Name], idx)
		}
	}
	x.hierarchy = nil
}

// Files returns all file models in insertion order.
func (x *Index) Files() []model.FileModel {
	x.mu.RLock()
	defer x.mu.RUnlock()
	result := make([]model.FileModel, len(x.files))
	copy(result, x.files)
	return result
}

// File returns the model for path.
func (x *Index) File(path string) (model.FileModel, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, f := range x.files {
		if f.Path == path {
			return f, true
		}
	}
	return model.FileModel{}, false
}

// Declarations returns all entries.
func (x *Index) Declarations() []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	result := make([]Entry, len(x.entries))
	copy(result, x.entries)
	return result
}

// Count returns the number of declarations.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// DiagnosticCount returns the number of parse diagnostics across all files.
func (x *Index) DiagnosticCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n := 0
	for _, f := range x.files {
		n += len(f.Diagnostics)
	}
	return n
}

// ByKind returns all declarations of the given kind.
func (x *Index) ByKind(kind model.Kind) []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.collect(x.byKind[kind])
}

// ByFile returns all declarations extracted from file.
func (x *Index) ByFile(file string) []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.collect(x.byFile[file])
}

// Lookup returns the declarations with the given qualified name. Extensions
// share the name of the type they extend, so more than one entry may match.
func (x *Index) Lookup(qualifiedName string) []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.collect(x.byQualified[qualifiedName])
}

// QueryOpts holds the query filters. Multi-value filters within a dimension
// are OR-combined; filters across dimensions are AND-combined.
type QueryOpts struct {
	Kind          model.Kind   // single kind filter
	Kinds         []model.Kind // multi-kind filter (OR with Kind)
	Name          string       // substring of the simple name
	QualifiedName string       // exact qualified name
	Parent        string       // qualified parent prefix, e.g. "Outer" or "Outer.Inner"
	File          string       // exact file
	FilePrefix    string       // file path prefix, e.g. "Sources/App"
	Inherits      string       // inherited type, by simple or written name
	Offset        int          // number of results to skip
	Limit         int          // max results to return (0 = default 100, max 500)
}

// Query returns the entries matching opts together with the total number of
// matches before offset and limit are applied.
func (x *Index) Query(opts QueryOpts) ([]Entry, int) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	kinds := make(map[model.Kind]struct{}, len(opts.Kinds)+1)
	if opts.Kind != "" {
		kinds[opts.Kind] = struct{}{}
	}
	for _, k := range opts.Kinds {
		if k != "" {
			kinds[k] = struct{}{}
		}
	}

	var parent model.QualifiedPath
	if opts.Parent != "" {
		parent = strings.Split(opts.Parent, ".")
	}

	var matched []Entry
	for _, e := range x.entries {
		d := &e.Declaration
		if len(kinds) > 0 {
			if _, ok := kinds[d.Kind]; !ok {
				continue
			}
		}
		if opts.Name != "" && !strings.Contains(d.Name, opts.Name) {
			continue
		}
		if opts.QualifiedName != "" && e.QualifiedName != opts.QualifiedName {
			continue
		}
		if parent != nil && !d.ParentPath.HasPrefix(parent) {
			continue
		}
		if opts.File != "" && e.File != opts.File {
			continue
		}
		if opts.FilePrefix != "" && !strings.HasPrefix(e.File, opts.FilePrefix) {
			continue
		}
		if opts.Inherits != "" && !inherits(d, opts.Inherits) {
			continue
		}
		matched = append(matched, e)
	}

	total := len(matched)

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			return nil, total
		}
		matched = matched[opts.Offset:]
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, total
}

func inherits(d *model.Declaration, name string) bool {
	for _, t := range d.InheritedTypes {
		if typedesc.Name(t) == name || typedesc.AsSource(t) == name {
			return true
		}
	}
	return false
}

// Clear removes everything from the index.
func (x *Index) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.files = nil
	x.entries = nil
	x.byKind = make(map[model.Kind][]int)
	x.byFile = make(map[string][]int)
	x.byQualified = make(map[string][]int)
	x.bySimple = make(map[string][]int)
	x.hierarchy = nil
}

// Hierarchy returns the inheritance graph of the indexed declarations,
// building it on first use after a change.
func (x *Index) Hierarchy() *Hierarchy {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.hierarchy == nil {
		x.hierarchy = buildHierarchy(x.entries, x.resolve)
	}
	return x.hierarchy
}

// resolve maps an inherited type to the qualified name of an indexed
// declaration: first by its written name, then by a unique simple name.
// Callers hold x.mu.
func (x *Index) resolve(t typedesc.TypeDescription) (string, bool) {
	written := typedesc.AsSource(t)
	if _, ok := x.byQualified[written]; ok {
		return written, true
	}
	simple := typedesc.Name(t)
	var found string
	for _, i := range x.bySimple[simple] {
		e := x.entries[i]
		if e.Declaration.Kind == model.KindExtension {
			continue
		}
		if found != "" && found != e.QualifiedName {
			return written, false
		}
		found = e.QualifiedName
	}
	if found == "" {
		return written, false
	}
	return found, true
}

// WriteJSONL writes every file model as one JSON line.
func (x *Index) WriteJSONL(w io.Writer) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	enc := json.NewEncoder(w)
	for _, f := range x.files {
		if err := enc.Encode(f); err != nil {
			return errors.Errorf("encoding %s: %w", f.Path, err)
		}
	}
	return nil
}

// WriteJSONLFile writes the index as JSONL to path.
func (x *Index) WriteJSONLFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if err := x.WriteJSONL(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadJSONL reads file models from r and adds them to the index.
func (x *Index) ReadJSONL(r io.Reader) error {
	files, err := ReadFiles(r)
	if err != nil {
		return err
	}
	x.Add(files...)
	return nil
}

// ReadJSONLFile reads file models from the JSONL file at path.
func (x *Index) ReadJSONLFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return x.ReadJSONL(f)
}

// ReadFiles decodes a JSONL stream of file models without indexing them.
func ReadFiles(r io.Reader) ([]model.FileModel, error) {
	var files []model.FileModel
	scanner := bufio.NewScanner(r)
	// Allow large lines
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var f model.FileModel
		if err := json.Unmarshal(line, &f); err != nil {
			return nil, errors.Errorf("decoding file model: %w", err)
		}
		files = append(files, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("reading file models: %w", err)
	}
	return files, nil
}

func (x *Index) collect(indices []int) []Entry {
	result := make([]Entry, 0, len(indices))
	for _, idx := range indices {
		if idx < len(x.entries) {
			result = append(result, x.entries[idx])
		}
	}
	return result
}
