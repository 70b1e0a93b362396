package module

import (
	"errors"
	"fmt"
)

// Factory builds one fresh module instance.
type Factory func() Module

// ErrUnknownType is returned by Create for unregistered names.
var ErrUnknownType = errors.New("unknown module type")

var errDuplicateType = errors.New("duplicate module type")

// Registry maps module type names to their factories. Names are
// case-sensitive and kept in registration order.
type Registry struct {
	factories map[string]Factory
	names     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for the given type name.
func (r *Registry) Register(typeName string, factory Factory) error {
	if typeName == "" {
		return errors.New("empty module type")
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[typeName]; exists {
		return fmt.Errorf("%w: %s", errDuplicateType, typeName)
	}

	r.factories[typeName] = factory
	r.names = append(r.names, typeName)

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(typeName string, factory Factory) {
	if err := r.Register(typeName, factory); err != nil {
		panic("module registry: " + err.Error())
	}
}

// Lookup returns the factory for the given type name, or nil.
func (r *Registry) Lookup(typeName string) Factory {
	return r.factories[typeName]
}

// Create instantiates a module of the given type.
func (r *Registry) Create(typeName string) (Module, error) {
	factory := r.factories[typeName]
	if factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return factory(), nil
}

// Names returns the registered type names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
