package catalog

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/provcat/internal/field"
	"github.com/vk/provcat/internal/tree"
)

// Object is a field-bearing element: a tree node that additionally owns a
// mapping from field name to Field. Field order is the order fields were
// added and is preserved across removals.
type Object struct {
	node   *tree.Node
	names  []string
	fields map[string]*field.Field
}

// NewObject creates a detached object with no fields.
func NewObject(name string) *Object {
	o := &Object{fields: make(map[string]*field.Field)}
	o.node = tree.NewNode(name, o)
	return o
}

// Name returns the object's name.
func (o *Object) Name() string {
	return o.node.Name()
}

// TreeNode returns the underlying tree node.
func (o *Object) TreeNode() *tree.Node {
	return o.node
}

// SetParent attaches the object under another element, or detaches it when
// parent is nil. Cycle prevention applies.
func (o *Object) SetParent(parent Element) error {
	return o.node.SetParent(parentNode(parent))
}

// AddField registers a field under its own name, appended to the field
// order. A name already in use fails with ErrDuplicateName.
func (o *Object) AddField(f *field.Field) error {
	if f == nil {
		return errors.New("catalog: nil field")
	}
	if _, ok := o.fields[f.Name()]; ok {
		return fmt.Errorf("%w: %q on object %q", ErrDuplicateName, f.Name(), o.Name())
	}
	o.registerField(f)
	return nil
}

// registerField bypasses the duplicate-name guard; template construction
// trusts the provider to yield unique names.
func (o *Object) registerField(f *field.Field) {
	o.names = append(o.names, f.Name())
	o.fields[f.Name()] = f
}

// RemoveField unregisters the named field and releases it, so outstanding
// derivation handles onto it go stale. An absent name fails with
// ErrNotFound rather than being ignored.
func (o *Object) RemoveField(name string) error {
	f, ok := o.fields[name]
	if !ok {
		return fmt.Errorf("%w: %q on object %q", ErrNotFound, name, o.Name())
	}
	delete(o.fields, name)
	for i, n := range o.names {
		if n == name {
			o.names = append(o.names[:i], o.names[i+1:]...)
			break
		}
	}
	f.Release()
	return nil
}

// FieldKey addresses a field by name or by position in field order.
type FieldKey struct {
	name  string
	pos   int
	byPos bool
}

// ByName addresses a field by its name.
func ByName(name string) FieldKey {
	return FieldKey{name: name}
}

// At addresses a field by its position in field order.
func At(pos int) FieldKey {
	return FieldKey{pos: pos, byPos: true}
}

// Field returns the underlying Field for attribute-style access.
func (o *Object) Field(k FieldKey) (*field.Field, error) {
	if k.byPos {
		if k.pos < 0 || k.pos >= len(o.names) {
			return nil, fmt.Errorf("%w: object %q has no field at position %d", ErrNotFound, o.Name(), k.pos)
		}
		return o.fields[o.names[k.pos]], nil
	}
	f, ok := o.fields[k.name]
	if !ok {
		return nil, fmt.Errorf("%w: %q on object %q", ErrNotFound, k.name, o.Name())
	}
	return f, nil
}

// Get reads the plain payload of the field's current value. A field that is
// empty with no default yields a nil value, not an error; only a missing
// field name fails.
func (o *Object) Get(k FieldKey) (cty.Value, error) {
	f, err := o.Field(k)
	if err != nil {
		return cty.NilVal, err
	}
	v, err := f.Call()
	if errors.Is(err, field.ErrEmptyField) {
		return cty.NilVal, nil
	}
	return v, err
}

// Set writes through the field's full current-value dispatch.
func (o *Object) Set(k FieldKey, a field.Assignment) error {
	f, err := o.Field(k)
	if err != nil {
		return err
	}
	return f.SetCurrent(a)
}

// Delete removes the field's current value.
func (o *Object) Delete(k FieldKey) error {
	f, err := o.Field(k)
	if err != nil {
		return err
	}
	return f.DeleteCurrent()
}

// Contains reports whether a field with the given name exists.
func (o *Object) Contains(name string) bool {
	_, ok := o.fields[name]
	return ok
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.names)
}

// FieldNames returns an ordered snapshot of the field names.
func (o *Object) FieldNames() []string {
	return append([]string(nil), o.names...)
}
