package renderers

import (
	"context"

	"github.com/dejo1307/swiftdecl/internal/model"
)

// Renderer turns a finished snapshot into artifacts, such as the outline
// markdown or the declaration YAML, that WriteArtifacts puts on disk.
type Renderer interface {
	// Name is the key used by the renderers section of the config.
	Name() string
	Render(ctx context.Context, snapshot *model.Snapshot) ([]model.Artifact, error)
}

// Registry keeps renderers in registration order. Names are unique;
// registering a name again replaces the earlier renderer in place.
type Registry struct {
	renderers []Renderer
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(rnd Renderer) {
	for i, have := range r.renderers {
		if have.Name() == rnd.Name() {
			r.renderers[i] = rnd
			return
		}
	}
	r.renderers = append(r.renderers, rnd)
}

// Lookup finds a renderer by name.
func (r *Registry) Lookup(name string) (Renderer, bool) {
	for _, rnd := range r.renderers {
		if rnd.Name() == name {
			return rnd, true
		}
	}
	return nil, false
}

// Enabled returns the renderers whose name passes enabled, in registration
// order.
func (r *Registry) Enabled(enabled func(name string) bool) []Renderer {
	var out []Renderer
	for _, rnd := range r.renderers {
		if enabled(rnd.Name()) {
			out = append(out, rnd)
		}
	}
	return out
}
