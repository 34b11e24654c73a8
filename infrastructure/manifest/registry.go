package manifest

import (
	"github.com/rios0rios0/fedcheck/domain"
)

// Registry manages all registered manifest parser implementations.
type Registry struct {
	parsers map[string]domain.Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]domain.Parser),
	}
}

// Register adds a parser under its name.
func (r *Registry) Register(p domain.Parser) {
	r.parsers[p.Name()] = p
}

// Get returns the parser with the given name, or nil if not registered.
func (r *Registry) Get(name string) domain.Parser {
	return r.parsers[name]
}

// DetectForPath returns the first parser claiming the given manifest path,
// or nil when none does.
func (r *Registry) DetectForPath(path string) domain.Parser {
	for _, p := range r.parsers {
		if p.Detect(path) {
			return p
		}
	}
	return nil
}

// Names returns the list of registered parser names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	return names
}
