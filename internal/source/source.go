// Package source implements the provenance registry: interned identities
// naming where an observed value came from (a catalog, instrument, or
// publication).
//
// Two Intern calls with the same canonical string return the same *Source
// pointer, so provenance checks elsewhere compare identities, not strings.
package source

import (
	"fmt"
	"sync"
)

// Source is an interned provenance identity. It is immutable after creation
// and lives for the lifetime of its registry.
type Source struct {
	canonical string
}

// Canonical returns the canonical string this identity was interned under.
func (s *Source) Canonical() string {
	return s.canonical
}

// String implements fmt.Stringer.
func (s *Source) String() string {
	return "Source: " + s.canonical
}

// Registry interns provenance labels. The mapping only grows: there is no
// removal during normal operation, which is an accepted tradeoff for a
// process-lifetime cache of short strings.
type Registry struct {
	mu      sync.Mutex
	sources map[string]*Source
}

// NewRegistry creates an empty interning registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]*Source),
	}
}

// Intern converts any printable label to its canonical string and returns
// the shared identity for that string, creating it on first use. Passing an
// existing *Source returns it unchanged. Idempotent.
func (r *Registry) Intern(label any) *Source {
	if s, ok := label.(*Source); ok && s != nil {
		return s
	}
	canonical := Canonical(label)

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sources[canonical]; ok {
		return s
	}
	s := &Source{canonical: canonical}
	r.sources[canonical] = s
	return s
}

// Len returns the number of distinct identities interned so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sources)
}

// Canonical renders a provenance label as its canonical string without
// interning it.
func Canonical(label any) string {
	if s, ok := label.(*Source); ok && s != nil {
		return s.canonical
	}
	if str, ok := label.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", label)
}

// Package-level default registry. Most callers intern through this; an
// isolated Registry is only needed when tests must not share identities.
var defaultRegistry = NewRegistry()

// Intern interns a label in the package-level default registry.
func Intern(label any) *Source {
	return defaultRegistry.Intern(label)
}

// Default returns the package-level default registry.
func Default() *Registry {
	return defaultRegistry
}

// ResetDefault replaces the default registry with a fresh one. This is NOT
// safe for concurrent use and exists for tests only.
func ResetDefault() {
	defaultRegistry = NewRegistry()
}
