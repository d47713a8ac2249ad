package component

import (
	"fmt"
	"sync"
)

// Registry maps component names to definitions.
// Declarative route tables refer to components by name through a Registry.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewRegistry creates a registry pre-populated with defs.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds def under def.Name.
func (r *Registry) Register(def *Definition) error {
	if def == nil {
		return ErrNilDefinition
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.defs == nil {
		r.defs = make(map[string]*Definition)
	}
	if _, ok := r.defs[def.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	return def, nil
}
