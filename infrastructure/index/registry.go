package index

import (
	"fmt"

	"github.com/rios0rios0/fedcheck/domain"
)

// Registry manages all registered package index implementations.
type Registry struct {
	indexes map[string]Factory
}

// Factory is a constructor function that creates an Index for a run.
type Factory func(opts domain.CheckOptions) (domain.Index, error)

// NewRegistry creates an empty index registry.
func NewRegistry() *Registry {
	return &Registry{
		indexes: make(map[string]Factory),
	}
}

// Register adds an index factory under the given name (e.g. "fedora").
func (r *Registry) Register(name string, factory Factory) {
	r.indexes[name] = factory
}

// Get returns a configured index instance for the given name.
func (r *Registry) Get(name string, opts domain.CheckOptions) (domain.Index, error) {
	factory, ok := r.indexes[name]
	if !ok {
		return nil, fmt.Errorf("unknown index source: %q", name)
	}
	return factory(opts)
}

// Names returns the list of registered index names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.indexes))
	for name := range r.indexes {
		names = append(names, name)
	}
	return names
}
