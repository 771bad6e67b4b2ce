package cycles

import (
	"context"
	"fmt"
	"strings"

	"github.com/dejo1307/swiftdecl/internal/index"
	"github.com/dejo1307/swiftdecl/internal/model"
)

// CycleExplainer reports types that inherit from each other, directly or
// through a chain of supertypes and extension conformances.
type CycleExplainer struct{}

// New creates a new CycleExplainer.
func New() *CycleExplainer {
	return &CycleExplainer{}
}

func (e *CycleExplainer) Name() string {
	return "cycles"
}

// Explain finds the strongly connected components of the inheritance graph.
func (e *CycleExplainer) Explain(ctx context.Context, idx *index.Index) ([]model.Insight, error) {
	h := idx.Hierarchy()

	var insights []model.Insight
	for _, cycle := range h.Cycles() {
		evidence := make([]model.Evidence, 0, len(cycle))
		for _, name := range cycle {
			ev := model.Evidence{
				Declaration: name,
				Detail:      fmt.Sprintf("type %q is part of the cycle", name),
			}
			if n, ok := h.Node(name); ok {
				ev.File = n.File
				ev.Line = n.Line
			}
			evidence = append(evidence, ev)
		}

		title := fmt.Sprintf("Inheritance cycle detected (%d types)", len(cycle))
		if len(cycle) == 1 {
			title = fmt.Sprintf("Type %s inherits from itself", cycle[0])
		}
		path := strings.Join(cycle, " -> ") + " -> " + cycle[0]

		insights = append(insights, model.Insight{
			Title:       title,
			Description: fmt.Sprintf("The following types form an inheritance cycle: %s. The compiler rejects circular inheritance, so at least one of these declarations is wrong or the name resolves to an unintended type.", path),
			Confidence:  1.0, // Deterministic
			Evidence:    evidence,
			Actions: []string{
				"Check which supertype reference resolves to the wrong declaration",
				"Qualify ambiguous nested type names",
			},
		})
	}

	return insights, nil
}
