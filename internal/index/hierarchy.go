package index

import (
	"slices"

	"github.com/dominikbraun/graph"

	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/typedesc"
)

// TypeNode is a vertex of the inheritance graph.
type TypeNode struct {
	Name     string     `json:"name"` // Qualified name, or the written name of an external type
	Kind     model.Kind `json:"kind,omitempty"`
	File     string     `json:"file,omitempty"`
	Line     int        `json:"line,omitempty"`
	External bool       `json:"external,omitempty"` // Not declared in the indexed sources
}

// Related is a node reached by a hierarchy traversal.
type Related struct {
	TypeNode
	Depth int `json:"depth"`
}

// Hierarchy is the directed inheritance graph: an edge runs from a type to
// each type it inherits from or conforms to. Extensions contribute their
// conformances to the extended type.
type Hierarchy struct {
	g          graph.Graph[string, *TypeNode]
	supertypes map[string]map[string]graph.Edge[string]
	subtypes   map[string]map[string]graph.Edge[string]
	edgeCount  int
}

func buildHierarchy(entries []Entry, resolve func(typedesc.TypeDescription) (string, bool)) *Hierarchy {
	g := graph.New(func(n *TypeNode) string { return n.Name }, graph.Directed())

	for _, e := range entries {
		d := e.Declaration
		if d.Kind == model.KindExtension {
			continue
		}
		// Duplicate names keep the first declaration.
		_ = g.AddVertex(&TypeNode{Name: e.QualifiedName, Kind: d.Kind, File: e.File, Line: d.Line})
	}

	ensure := func(name string, known bool) {
		if !known {
			_ = g.AddVertex(&TypeNode{Name: name, External: true})
		}
	}

	h := &Hierarchy{g: g}
	for _, e := range entries {
		d := e.Declaration
		source := e.QualifiedName
		if d.Kind == model.KindExtension {
			if d.ExtendedType == nil {
				continue
			}
			name, ok := resolve(d.ExtendedType)
			ensure(name, ok)
			source = name
		}
		for _, t := range d.InheritedTypes {
			target, ok := resolve(t)
			ensure(target, ok)
			if err := g.AddEdge(source, target); err == nil {
				h.edgeCount++
			}
		}
	}

	h.supertypes, _ = g.AdjacencyMap()
	h.subtypes, _ = g.PredecessorMap()
	return h
}

// Node returns the vertex for a qualified name.
func (h *Hierarchy) Node(name string) (*TypeNode, bool) {
	n, err := h.g.Vertex(name)
	if err != nil {
		return nil, false
	}
	return n, true
}

// NodeCount returns the number of vertices, external types included.
func (h *Hierarchy) NodeCount() int {
	return len(h.supertypes)
}

// EdgeCount returns the number of inheritance edges.
func (h *Hierarchy) EdgeCount() int {
	return h.edgeCount
}

// Supertypes returns the types name inherits from, transitively up to
// maxDepth levels (0 = default 10), in breadth-first order.
func (h *Hierarchy) Supertypes(name string, maxDepth int) []Related {
	return h.traverse(name, h.supertypes, maxDepth)
}

// Subtypes returns the types inheriting from name, transitively up to
// maxDepth levels (0 = default 10), in breadth-first order.
func (h *Hierarchy) Subtypes(name string, maxDepth int) []Related {
	return h.traverse(name, h.subtypes, maxDepth)
}

func (h *Hierarchy) traverse(start string, adj map[string]map[string]graph.Edge[string], maxDepth int) []Related {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	if _, ok := adj[start]; !ok {
		return nil
	}

	type queueItem struct {
		name  string
		depth int
	}

	var result []Related
	visited := map[string]bool{start: true}
	queue := []queueItem{{name: start}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		if item.depth >= maxDepth {
			continue
		}
		next := make([]string, 0, len(adj[item.name]))
		for target := range adj[item.name] {
			next = append(next, target)
		}
		slices.Sort(next)
		for _, target := range next {
			if visited[target] {
				continue
			}
			visited[target] = true
			node, _ := h.Node(target)
			result = append(result, Related{TypeNode: *node, Depth: item.depth + 1})
			queue = append(queue, queueItem{name: target, depth: item.depth + 1})
		}
	}
	return result
}

// Cycles returns every set of types that inherit from each other, including
// a type that lists itself. Each cycle and the list are sorted.
func (h *Hierarchy) Cycles() [][]string {
	sccs, err := graph.StronglyConnectedComponents(h.g)
	if err != nil {
		return nil
	}
	var cycles [][]string
	for _, scc := range sccs {
		if len(scc) == 1 {
			if _, self := h.supertypes[scc[0]][scc[0]]; !self {
				continue
			}
		}
		slices.Sort(scc)
		cycles = append(cycles, scc)
	}
	slices.SortFunc(cycles, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	return cycles
}
