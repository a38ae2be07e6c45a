// Package field implements the provenance-keyed multi-value store at the
// heart of a catalog: each field holds an ordered sequence of competing
// values attributed to different sources, one of which is selected as the
// current value for ordinary reads. Values are either observed (supplied)
// or derived (computed once from other fields and cached).
package field

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/provcat/internal/constraint"
	"github.com/vk/provcat/internal/source"
)

// Field is a named, ordered, multi-valued slot. The stored sequence keeps
// insertion order; no two entries may share the same non-nil source
// identity; every entry must satisfy the type constraint when one is set.
//
// Fields are not safe for concurrent use. Callers that share a field across
// goroutines must supply their own mutual exclusion.
type Field struct {
	name     string
	checker  constraint.Checker
	def      Value
	vals     []Value
	current  int // index into vals, -1 when empty
	released bool
}

// New creates an empty field with no constraint and no default. The name is
// immutable after creation.
func New(name string) *Field {
	return &Field{
		name:    name,
		current: -1,
	}
}

// NewTyped creates an empty field with an optional constraint and default.
// The default must satisfy the constraint.
func NewTyped(name string, checker constraint.Checker, def Value) (*Field, error) {
	f := New(name)
	f.checker = checker
	if def != nil {
		if err := f.SetDefault(def); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Name returns the field's immutable name.
func (f *Field) Name() string {
	return f.name
}

// Constraint returns the current type constraint, or nil.
func (f *Field) Constraint() constraint.Checker {
	return f.checker
}

// Default returns the default value, or nil.
func (f *Field) Default() Value {
	return f.def
}

// Len returns the number of stored values. The default does not count.
func (f *Field) Len() int {
	return len(f.vals)
}

// Values returns an ordered snapshot of the stored sequence.
func (f *Field) Values() []Value {
	return append([]Value(nil), f.vals...)
}

// CurrentIndex returns the position of the current entry, or -1 when the
// sequence is empty.
func (f *Field) CurrentIndex() int {
	return f.current
}

// --- Lookup keys ---

type keyKind int

const (
	keyBySource keyKind = iota + 1
	keyByPosition
	keyByDerived
)

// Key selects a stored value. Construct one with BySource, ByPosition, or
// ByDerived; the dispatch is exhaustive over these variants.
type Key struct {
	kind keyKind
	src  *source.Source
	pos  int
}

// BySource selects the value whose provenance matches the given label. The
// label is interned, so any printable value coercible to a source works.
func BySource(label any) Key {
	return Key{kind: keyBySource, src: source.Intern(label)}
}

// ByPosition selects the value at the given insertion-order position.
func ByPosition(i int) Key {
	return Key{kind: keyByPosition, pos: i}
}

// ByDerived selects the nth derived value, counting only derived entries in
// insertion order. ByDerived(0) is the first derivation.
func ByDerived(n int) Key {
	return Key{kind: keyByDerived, pos: n}
}

func (k Key) String() string {
	switch k.kind {
	case keyBySource:
		return fmt.Sprintf("source %q", k.src.Canonical())
	case keyByPosition:
		return fmt.Sprintf("position %d", k.pos)
	case keyByDerived:
		return fmt.Sprintf("derived entry %d", k.pos)
	}
	return "invalid key"
}

// indexOf resolves a key to a position in the stored sequence.
func (f *Field) indexOf(k Key) (int, error) {
	switch k.kind {
	case keyBySource:
		for i, v := range f.vals {
			if v.Source() == k.src {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: field %q has no value from %s", ErrNotFound, f.name, k.src)
	case keyByPosition:
		if k.pos < 0 || k.pos >= len(f.vals) {
			return 0, fmt.Errorf("%w: field %q has no value at position %d", ErrNotFound, f.name, k.pos)
		}
		return k.pos, nil
	case keyByDerived:
		if k.pos < 0 {
			return 0, fmt.Errorf("%w: derived index must not be negative", ErrInvalidArgument)
		}
		seen := 0
		for i, v := range f.vals {
			if _, ok := v.(*Derived); ok {
				if seen == k.pos {
					return i, nil
				}
				seen++
			}
		}
		return 0, fmt.Errorf("%w: field %q has %d derived values, want index %d", ErrNotFound, f.name, seen, k.pos)
	default:
		return 0, fmt.Errorf("%w: zero-valued lookup key", ErrInvalidArgument)
	}
}

// Lookup returns the stored value selected by the key.
func (f *Field) Lookup(k Key) (Value, error) {
	i, err := f.indexOf(k)
	if err != nil {
		return nil, err
	}
	return f.vals[i], nil
}

// --- Invariant checks ---

// checkValue validates a candidate against the type constraint and the
// duplicate-source rule. ignore names a position exempt from the duplicate
// check (the entry being replaced); pass -1 when none.
//
// Constraint checks apply to payloads that are known without forcing a
// computation; an unevaluated derivation cannot be checked until it runs.
func (f *Field) checkValue(v Value, ignore int) error {
	if v == nil {
		return fmt.Errorf("%w: nil value", ErrInvalidArgument)
	}
	if f.checker != nil {
		if payload, ok := knownPayload(v); ok {
			if err := f.checker.Check(payload); err != nil {
				return fmt.Errorf("%w: field %q: %v", ErrTypeMismatch, f.name, err)
			}
		}
	}
	if s := v.Source(); s != nil {
		for i, existing := range f.vals {
			if i == ignore {
				continue
			}
			if existing.Source() == s {
				return fmt.Errorf("%w: field %q already holds a value from %s", ErrDuplicateSource, f.name, s)
			}
		}
	}
	return nil
}

// --- Sequence mutation ---

// Set replaces the value selected by the key. The replacement is validated
// first; on failure the sequence is unchanged. The current index is
// untouched since positions do not move.
func (f *Field) Set(k Key, v Value) error {
	i, err := f.indexOf(k)
	if err != nil {
		return err
	}
	if err := f.checkValue(v, i); err != nil {
		return err
	}
	f.vals[i] = v
	return nil
}

// Insert places a value at the given position, shifting later entries. The
// current index keeps referencing the same logical entry: inserting at or
// before it shifts it forward by one. Inserting into an empty field makes
// the new entry current.
func (f *Field) Insert(pos int, v Value) error {
	if pos < 0 || pos > len(f.vals) {
		return fmt.Errorf("%w: insert position %d out of range [0,%d]", ErrInvalidArgument, pos, len(f.vals))
	}
	if err := f.checkValue(v, -1); err != nil {
		return err
	}
	f.vals = append(f.vals, nil)
	copy(f.vals[pos+1:], f.vals[pos:])
	f.vals[pos] = v

	switch {
	case f.current < 0:
		f.current = pos
	case pos <= f.current:
		f.current++
	}
	return nil
}

// Append adds a value at the end of the sequence.
func (f *Field) Append(v Value) error {
	return f.Insert(len(f.vals), v)
}

// Remove deletes the value selected by the key. Removing an entry before
// the current one shifts the current index back; removing the current entry
// resets the selection to the first remaining entry. An emptied sequence
// falls back to the default/empty state.
func (f *Field) Remove(k Key) error {
	i, err := f.indexOf(k)
	if err != nil {
		return err
	}
	f.removeAt(i)
	return nil
}

func (f *Field) removeAt(i int) {
	f.vals = append(f.vals[:i], f.vals[i+1:]...)
	switch {
	case len(f.vals) == 0:
		f.current = -1
	case i < f.current:
		f.current--
	case i == f.current:
		f.current = 0
	}
}

// --- Current value ---

// Current returns the value at the current index. When the sequence is
// empty the default substitutes; without one, ErrEmptyField.
func (f *Field) Current() (Value, error) {
	if f.current >= 0 {
		return f.vals[f.current], nil
	}
	if f.def != nil {
		return f.def, nil
	}
	return nil, fmt.Errorf("%w: field %q", ErrEmptyField, f.name)
}

// Call returns the payload of the current value: Current().Value().
func (f *Field) Call() (cty.Value, error) {
	v, err := f.Current()
	if err != nil {
		return cty.NilVal, err
	}
	return v.Value()
}

// --- Current-value write dispatch ---

type assignKind int

const (
	assignSelectSource assignKind = iota + 1
	assignObservedPair
	assignValue
	assignAdoptRaw
)

// Assignment is a tagged write request for the current value. Construct one
// with SelectSource, ObservedPair, WithValue, or AdoptRaw.
type Assignment struct {
	kind assignKind
	src  any
	raw  cty.Value
	val  Value
}

// SelectSource makes the existing entry with this provenance current.
func SelectSource(label any) Assignment {
	return Assignment{kind: assignSelectSource, src: label}
}

// ObservedPair synthesizes a new observed value from (payload, source),
// appends it, and selects it.
func ObservedPair(payload cty.Value, src any) Assignment {
	return Assignment{kind: assignObservedPair, raw: payload, src: src}
}

// WithValue appends the given value object and selects it.
func WithValue(v Value) Assignment {
	return Assignment{kind: assignValue, val: v}
}

// AdoptRaw carries a bare payload with no provenance. It is only accepted
// by a field that is both unconstrained and empty, where it becomes the
// field's default rather than a stored entry.
func AdoptRaw(payload cty.Value) Assignment {
	return Assignment{kind: assignAdoptRaw, raw: payload}
}

// SetCurrent applies a tagged write to the current value. Every variant is
// all-or-nothing: a failed validation leaves the field exactly as it was.
func (f *Field) SetCurrent(a Assignment) error {
	switch a.kind {
	case assignSelectSource:
		i, err := f.indexOf(BySource(a.src))
		if err != nil {
			return err
		}
		f.current = i
		return nil

	case assignObservedPair:
		ov, err := NewObserved(a.raw, a.src)
		if err != nil {
			return err
		}
		return f.appendAndSelect(ov)

	case assignValue:
		return f.appendAndSelect(a.val)

	case assignAdoptRaw:
		if f.checker != nil || len(f.vals) > 0 {
			return fmt.Errorf("%w: a value without provenance can only seed the default of an empty, unconstrained field", ErrInvalidArgument)
		}
		f.def = NewConstant(a.raw)
		return nil

	default:
		return fmt.Errorf("%w: zero-valued assignment", ErrInvalidArgument)
	}
}

func (f *Field) appendAndSelect(v Value) error {
	if err := f.checkValue(v, -1); err != nil {
		return err
	}
	f.vals = append(f.vals, v)
	f.current = len(f.vals) - 1
	return nil
}

// DeleteCurrent removes the entry at the current index and resets the
// selection to the first remaining entry, or to the default/empty state.
func (f *Field) DeleteCurrent() error {
	if f.current < 0 {
		return fmt.Errorf("%w: field %q", ErrEmptyField, f.name)
	}
	f.removeAt(f.current)
	return nil
}

// --- Constraint and default ---

// SetConstraint changes the type constraint. Every stored value with a
// known payload, and the default, are re-validated first; on any failure
// the previous constraint stays in force and the failure propagates.
func (f *Field) SetConstraint(c constraint.Checker) error {
	if c != nil {
		for _, v := range f.vals {
			payload, ok := knownPayload(v)
			if !ok {
				continue
			}
			if err := c.Check(payload); err != nil {
				return fmt.Errorf("%w: field %q: existing value violates new constraint: %v", ErrTypeMismatch, f.name, err)
			}
		}
		if f.def != nil {
			if payload, ok := knownPayload(f.def); ok {
				if err := c.Check(payload); err != nil {
					return fmt.Errorf("%w: field %q: default violates new constraint: %v", ErrTypeMismatch, f.name, err)
				}
			}
		}
	}
	f.checker = c
	return nil
}

// SetDefault sets the default value, validated against the constraint. The
// default lives outside the stored sequence and is exempt from the
// duplicate-source rule.
func (f *Field) SetDefault(v Value) error {
	if v == nil {
		f.def = nil
		return nil
	}
	if f.checker != nil {
		if payload, ok := knownPayload(v); ok {
			if err := f.checker.Check(payload); err != nil {
				return fmt.Errorf("%w: field %q: default: %v", ErrTypeMismatch, f.name, err)
			}
		}
	}
	f.def = v
	return nil
}
