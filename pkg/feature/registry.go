package feature

import (
	"fmt"
	"sort"
)

// Constructor builds a fresh feature instance with the given id and the
// schema's default parameters.
type Constructor func(id string) Feature

// Registry maps feature type tags to constructors. Aliases let saved
// projects referencing a renamed type still load.
type Registry struct {
	ctors   map[string]Constructor
	aliases map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ctors:   make(map[string]Constructor),
		aliases: make(map[string]string),
	}
}

// Register adds a constructor under its canonical type tag. Registering
// the same tag twice is a programmer error.
func (r *Registry) Register(typeName string, ctor Constructor) {
	if _, dup := r.ctors[typeName]; dup {
		panic(fmt.Sprintf("feature: duplicate registration of type %q", typeName))
	}
	r.ctors[typeName] = ctor
}

// RegisterAlias maps a legacy type tag onto a canonical one.
func (r *Registry) RegisterAlias(alias, canonical string) {
	r.aliases[alias] = canonical
}

// Canonical resolves a possibly-aliased tag to its registered name.
func (r *Registry) Canonical(name string) (string, bool) {
	if _, ok := r.ctors[name]; ok {
		return name, true
	}
	if target, ok := r.aliases[name]; ok {
		_, registered := r.ctors[target]
		return target, registered
	}
	return "", false
}

// Get returns the constructor for a type tag, failing on unknown types.
func (r *Registry) Get(name string) (Constructor, error) {
	ctor, ok := r.GetSafe(name)
	if !ok {
		return nil, fmt.Errorf("feature: unknown feature type %q", name)
	}
	return ctor, nil
}

// GetSafe returns the constructor for a type tag, following aliases.
func (r *Registry) GetSafe(name string) (Constructor, bool) {
	canonical, ok := r.Canonical(name)
	if !ok {
		return nil, false
	}
	return r.ctors[canonical], true
}

// Types returns the registered canonical type tags, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// defaultRegistry holds the built-in feature vocabulary. Feature files
// self-register in init.
var defaultRegistry = NewRegistry()

// Default returns the registry holding every built-in feature type.
func Default() *Registry { return defaultRegistry }
