package field

// Handle is a non-owning reference to a Field. Derived values hold their
// dependencies through handles so that they never extend the lifetime of a
// field's owning node: once the owner releases the field, every outstanding
// handle stops resolving and evaluation fails instead of resurrecting it.
type Handle struct {
	f *Field
}

// Resolve returns the referenced field, or false when the field has been
// released by its owner.
func (h Handle) Resolve() (*Field, bool) {
	if h.f == nil || h.f.released {
		return nil, false
	}
	return h.f, true
}

// Handle returns a non-owning reference to this field.
func (f *Field) Handle() Handle {
	return Handle{f: f}
}

// Release marks the field as destroyed. Outstanding handles stop resolving.
// Owners call this when a field is removed; the field itself must not be
// used afterwards.
func (f *Field) Release() {
	f.released = true
}

// Released reports whether the field has been released.
func (f *Field) Released() bool {
	return f.released
}
