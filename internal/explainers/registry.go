package explainers

import (
	"context"

	"github.com/dejo1307/swiftdecl/internal/index"
	"github.com/dejo1307/swiftdecl/internal/model"
)

// Explainer inspects the declaration index, such as the supertype graph or
// the per-file declarations, and reports insights.
type Explainer interface {
	// Name is the key used by the explainers section of the config.
	Name() string
	Explain(ctx context.Context, idx *index.Index) ([]model.Insight, error)
}

// Registry keeps explainers in registration order. Names are unique;
// registering a name again replaces the earlier explainer in place.
type Registry struct {
	explainers []Explainer
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(e Explainer) {
	for i, have := range r.explainers {
		if have.Name() == e.Name() {
			r.explainers[i] = e
			return
		}
	}
	r.explainers = append(r.explainers, e)
}

// Lookup finds an explainer by name.
func (r *Registry) Lookup(name string) (Explainer, bool) {
	for _, e := range r.explainers {
		if e.Name() == name {
			return e, true
		}
	}
	return nil, false
}

// Enabled returns the explainers whose name passes enabled, in registration
// order.
func (r *Registry) Enabled(enabled func(name string) bool) []Explainer {
	var out []Explainer
	for _, e := range r.explainers {
		if enabled(e.Name()) {
			out = append(out, e)
		}
	}
	return out
}
