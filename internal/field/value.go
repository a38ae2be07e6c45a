package field

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/provcat/internal/source"
)

// Value is a payload with provenance. Observed values carry a supplied
// payload; Derived values compute theirs on demand from other fields.
type Value interface {
	// Source returns the provenance identity, or nil when the value has none
	// (constants and some derivations).
	Source() *source.Source
	// Value returns the payload. Derived values may fail here.
	Value() (cty.Value, error)
}

// Observed wraps a concrete payload and a mandatory source, assigned at
// construction and immutable thereafter.
type Observed struct {
	src *source.Source
	val cty.Value
}

// NewObserved builds an observed value. The source label is interned; any
// printable label is accepted. A nil source is a configuration error.
func NewObserved(val cty.Value, src any) (*Observed, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: observed value requires a source", ErrConfiguration)
	}
	return &Observed{src: source.Intern(src), val: val}, nil
}

// Source returns the provenance of the observation.
func (o *Observed) Source() *source.Source {
	return o.src
}

// Value returns the observed payload. It always succeeds.
func (o *Observed) Value() (cty.Value, error) {
	return o.val, nil
}

// Constant wraps a bare payload with no provenance. It backs field defaults
// and adopted raw values, which live outside the provenance-keyed sequence.
type Constant struct {
	val cty.Value
}

// NewConstant builds a provenance-free value.
func NewConstant(val cty.Value) *Constant {
	return &Constant{val: val}
}

// Source returns nil: constants have no provenance.
func (c *Constant) Source() *source.Source {
	return nil
}

// Value returns the wrapped payload. It always succeeds.
func (c *Constant) Value() (cty.Value, error) {
	return c.val, nil
}

// DeriveFunc is a pure function computing a payload from its dependencies'
// current payloads, passed positionally in dependency-list order.
type DeriveFunc func(args ...cty.Value) (cty.Value, error)

// Derived computes its payload from a list of dependency fields, at most
// once. The result is cached for the lifetime of the value and never
// recomputed, even if a dependency's current value later changes. Cycles
// among derivations are not detected; a derivation that depends on itself
// through other fields recurses without bound.
type Derived struct {
	fn       DeriveFunc
	deps     []Handle
	src      *source.Source
	computed bool
	cached   cty.Value
}

// NewDerived builds a derived value from a function and a non-empty ordered
// list of dependency handles. The optional src describes the derivation.
// Misconfiguration fails here, not at evaluation time.
func NewDerived(fn DeriveFunc, deps []Handle, src any) (*Derived, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: derived value requires a function", ErrConfiguration)
	}
	if len(deps) == 0 {
		return nil, fmt.Errorf("%w: derived value requires at least one dependency", ErrConfiguration)
	}
	d := &Derived{
		fn:   fn,
		deps: append([]Handle(nil), deps...),
	}
	if src != nil {
		d.src = source.Intern(src)
	}
	return d, nil
}

// Source returns the provenance describing the derivation, or nil.
func (d *Derived) Source() *source.Source {
	return d.src
}

// Dependencies returns the dependency handles in evaluation order.
func (d *Derived) Dependencies() []Handle {
	return append([]Handle(nil), d.deps...)
}

// Value evaluates the derivation on first call and returns the cached
// result on every later call. Evaluation resolves each dependency handle,
// reads that field's current payload, and applies the function positionally.
// A handle whose field has been released fails with ErrStaleDependency.
// Failed evaluations are not cached.
func (d *Derived) Value() (cty.Value, error) {
	if d.computed {
		return d.cached, nil
	}

	args := make([]cty.Value, len(d.deps))
	for i, h := range d.deps {
		f, ok := h.Resolve()
		if !ok {
			return cty.NilVal, fmt.Errorf("%w: dependency %d is no longer backed by a live field", ErrStaleDependency, i)
		}
		v, err := f.Call()
		if err != nil {
			return cty.NilVal, fmt.Errorf("dependency %q: %w", f.Name(), err)
		}
		args[i] = v
	}

	out, err := d.fn(args...)
	if err != nil {
		return cty.NilVal, err
	}
	d.cached = out
	d.computed = true
	return out, nil
}

// knownPayload reports a value's payload when it is available without
// forcing a computation: observed and constant payloads always, derived
// payloads only once cached.
func knownPayload(v Value) (cty.Value, bool) {
	switch v := v.(type) {
	case *Observed:
		return v.val, true
	case *Constant:
		return v.val, true
	case *Derived:
		if v.computed {
			return v.cached, true
		}
	}
	return cty.NilVal, false
}
