// Package registry is the glue between kind manifests and the catalog
// core. It stores the parsed kind templates, serves them to templated
// objects through the catalog.TemplateProvider contract, and maps the
// derivation function names used in catalog files to registered Go
// functions.
package registry

import (
	"fmt"
	"sort"

	"github.com/vk/provcat/internal/catalog"
	"github.com/vk/provcat/internal/field"
)

// KindTemplate is a fully parsed kind manifest entry: the ordered field
// declarations an object of this kind starts from.
type KindTemplate struct {
	Name        string
	Description string
	Fields      []catalog.FieldTemplate
}

// Registry holds kind templates and derive functions for one application
// instance.
type Registry struct {
	kinds       map[string]*KindTemplate
	deriveFuncs map[string]field.DeriveFunc
}

// New creates a registry preloaded with the built-in derive functions.
func New() *Registry {
	r := &Registry{
		kinds:       make(map[string]*KindTemplate),
		deriveFuncs: make(map[string]field.DeriveFunc),
	}
	for name, fn := range builtinDeriveFuncs {
		r.deriveFuncs[name] = fn
	}
	return r
}

// RegisterKind adds a kind template. Registering a name twice is an error;
// manifests must not compete for a kind.
func (r *Registry) RegisterKind(k *KindTemplate) error {
	if k == nil || k.Name == "" {
		return fmt.Errorf("registry: kind template must have a name")
	}
	if _, ok := r.kinds[k.Name]; ok {
		return fmt.Errorf("registry: kind %q is already registered", k.Name)
	}
	r.kinds[k.Name] = k
	return nil
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TemplateFor implements catalog.TemplateProvider. Each call returns a
// fresh copy of the stored declarations, so callers cannot mutate the
// registry's view of a kind.
func (r *Registry) TemplateFor(kind string) ([]catalog.FieldTemplate, error) {
	k, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("registry: unknown kind %q", kind)
	}
	return append([]catalog.FieldTemplate(nil), k.Fields...), nil
}

// RegisterDeriveFunc maps a manifest function name to a Go derive function.
// Re-registering a name is an error, built-ins included.
func (r *Registry) RegisterDeriveFunc(name string, fn field.DeriveFunc) error {
	if fn == nil {
		return fmt.Errorf("registry: derive function %q is nil", name)
	}
	if _, ok := r.deriveFuncs[name]; ok {
		return fmt.Errorf("registry: derive function %q is already registered", name)
	}
	r.deriveFuncs[name] = fn
	return nil
}

// DeriveFunc resolves a derivation function name.
func (r *Registry) DeriveFunc(name string) (field.DeriveFunc, error) {
	fn, ok := r.deriveFuncs[name]
	if !ok {
		return nil, fmt.Errorf("registry: unknown derive function %q", name)
	}
	return fn, nil
}
