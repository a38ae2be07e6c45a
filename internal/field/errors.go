package field

import "errors"

// Sentinel errors for the field layer. Callers match with errors.Is; the
// wrapped messages carry the specifics.
var (
	// ErrDuplicateSource means the field already holds a value from this provenance.
	ErrDuplicateSource = errors.New("duplicate source")
	// ErrTypeMismatch means a value fails the field's constraint, or a
	// constraint change would invalidate existing values.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrNotFound means no stored value matches the given key.
	ErrNotFound = errors.New("value not found")
	// ErrEmptyField means the field has no entries and no default.
	ErrEmptyField = errors.New("empty field")
	// ErrStaleDependency means a derived value's dependency field has been released.
	ErrStaleDependency = errors.New("stale dependency")
	// ErrInvalidArgument means a malformed key, position, or assignment.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConfiguration means a value was constructed with unusable inputs.
	ErrConfiguration = errors.New("configuration error")
)
