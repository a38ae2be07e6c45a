package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/provcat/internal/constraint"
	"github.com/vk/provcat/internal/source"
)

func TestLookupBySource(t *testing.T) {
	f := New("name")
	ned := mustObserved(t, cty.StringVal("M31"), "NED")
	twomass := mustObserved(t, cty.StringVal("M31"), "2MASS")
	require.NoError(t, f.Append(ned))
	require.NoError(t, f.Append(twomass))

	got, err := f.Lookup(BySource("NED"))
	require.NoError(t, err)
	assert.Same(t, Value(ned), got)

	// Raw labels intern to the same identity as existing sources.
	got, err = f.Lookup(BySource(source.Intern("2MASS")))
	require.NoError(t, err)
	assert.Same(t, Value(twomass), got)

	_, err = f.Lookup(BySource("SDSS"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupByPosition(t *testing.T) {
	f := New("name")
	a := mustObserved(t, cty.StringVal("a"), "s1")
	b := mustObserved(t, cty.StringVal("b"), "s2")
	require.NoError(t, f.Append(a))
	require.NoError(t, f.Append(b))

	got, err := f.Lookup(ByPosition(1))
	require.NoError(t, err)
	assert.Same(t, Value(b), got)

	_, err = f.Lookup(ByPosition(2))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.Lookup(ByPosition(-1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupByDerived(t *testing.T) {
	dep := New("dep")
	require.NoError(t, dep.Append(mustObserved(t, cty.NumberIntVal(1), "x")))

	f := New("mixed")
	require.NoError(t, f.Append(mustObserved(t, cty.NumberIntVal(10), "obs1")))
	d0, err := NewDerived(sum, []Handle{dep.Handle()}, "d0")
	require.NoError(t, err)
	require.NoError(t, f.Append(d0))
	require.NoError(t, f.Append(mustObserved(t, cty.NumberIntVal(20), "obs2")))
	d1, err := NewDerived(sum, []Handle{dep.Handle()}, "d1")
	require.NoError(t, err)
	require.NoError(t, f.Append(d1))

	got, err := f.Lookup(ByDerived(0))
	require.NoError(t, err)
	assert.Same(t, Value(d0), got)

	got, err = f.Lookup(ByDerived(1))
	require.NoError(t, err)
	assert.Same(t, Value(d1), got)

	_, err = f.Lookup(ByDerived(2))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicateSourceRejected(t *testing.T) {
	f := New("name")
	require.NoError(t, f.Append(mustObserved(t, cty.StringVal("M31"), "NED")))

	err := f.Append(mustObserved(t, cty.StringVal("Andromeda"), "NED"))
	assert.ErrorIs(t, err, ErrDuplicateSource)
	assert.Equal(t, 1, f.Len(), "rejected insertion must not mutate")

	// The first value is untouched.
	got, err := f.Call()
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal("M31"), got)
}

func TestTypeMismatchLeavesSequenceUnchanged(t *testing.T) {
	f := New("name")
	require.NoError(t, f.SetConstraint(constraint.ExactType(cty.String)))
	require.NoError(t, f.Append(mustObserved(t, cty.StringVal("M31"), "NED")))

	before := f.Values()
	err := f.Append(mustObserved(t, cty.NumberIntVal(42), "SDSS"))
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, before, f.Values())
}

func TestInsertMaintainsCurrentIndex(t *testing.T) {
	f := New("f")
	require.NoError(t, f.Append(mustObserved(t, cty.StringVal("a"), "s1")))
	require.NoError(t, f.SetCurrent(ObservedPair(cty.StringVal("b"), "s2")))
	require.Equal(t, 1, f.CurrentIndex())

	// Inserting before the current entry shifts the index forward.
	require.NoError(t, f.Insert(0, mustObserved(t, cty.StringVal("c"), "s3")))
	assert.Equal(t, 2, f.CurrentIndex())
	got, err := f.Call()
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal("b"), got, "current entry must stay the same logical value")

	// Inserting after it does not.
	require.NoError(t, f.Insert(3, mustObserved(t, cty.StringVal("d"), "s4")))
	assert.Equal(t, 2, f.CurrentIndex())

	t.Run("out of range", func(t *testing.T) {
		err := f.Insert(10, mustObserved(t, cty.StringVal("e"), "s5"))
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestRemoveMaintainsCurrentIndex(t *testing.T) {
	build := func(t *testing.T) *Field {
		f := New("f")
		require.NoError(t, f.Append(mustObserved(t, cty.StringVal("a"), "s1")))
		require.NoError(t, f.Append(mustObserved(t, cty.StringVal("b"), "s2")))
		require.NoError(t, f.Append(mustObserved(t, cty.StringVal("c"), "s3")))
		require.NoError(t, f.SetCurrent(SelectSource("s2")))
		return f
	}

	t.Run("removing before current shifts it back", func(t *testing.T) {
		f := build(t)
		require.NoError(t, f.Remove(BySource("s1")))
		assert.Equal(t, 0, f.CurrentIndex())
		got, err := f.Call()
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("b"), got)
	})

	t.Run("removing current resets to first remaining", func(t *testing.T) {
		f := build(t)
		require.NoError(t, f.Remove(BySource("s2")))
		assert.Equal(t, 0, f.CurrentIndex())
		got, err := f.Call()
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("a"), got)
	})

	t.Run("removing after current leaves it alone", func(t *testing.T) {
		f := build(t)
		require.NoError(t, f.Remove(BySource("s3")))
		assert.Equal(t, 1, f.CurrentIndex())
	})

	t.Run("removing the only entry empties the field", func(t *testing.T) {
		f := New("f")
		require.NoError(t, f.Append(mustObserved(t, cty.StringVal("a"), "s1")))
		require.NoError(t, f.Remove(ByPosition(0)))
		assert.Equal(t, -1, f.CurrentIndex())
		_, err := f.Current()
		assert.ErrorIs(t, err, ErrEmptyField)
	})
}

func TestSetReplacesInPlace(t *testing.T) {
	f := New("f")
	require.NoError(t, f.Append(mustObserved(t, cty.StringVal("a"), "s1")))
	require.NoError(t, f.Append(mustObserved(t, cty.StringVal("b"), "s2")))

	// Replacing an entry may keep its own source without tripping the
	// duplicate check against itself.
	require.NoError(t, f.Set(ByPosition(0), mustObserved(t, cty.StringVal("a2"), "s1")))
	got, err := f.Lookup(ByPosition(0))
	require.NoError(t, err)
	payload, err := got.Value()
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal("a2"), payload)

	// But it may not take another entry's source.
	err = f.Set(ByPosition(0), mustObserved(t, cty.StringVal("x"), "s2"))
	assert.ErrorIs(t, err, ErrDuplicateSource)
}

func TestCurrentFallsBackToDefault(t *testing.T) {
	f := New("f")
	_, err := f.Current()
	assert.ErrorIs(t, err, ErrEmptyField)

	require.NoError(t, f.SetDefault(NewConstant(cty.StringVal("unknown"))))
	got, err := f.Call()
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal("unknown"), got)

	// A stored value takes precedence over the default.
	require.NoError(t, f.Append(mustObserved(t, cty.StringVal("M31"), "NED")))
	got, err = f.Call()
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal("M31"), got)
}

func TestSetCurrentSelectSource(t *testing.T) {
	f := New("name")
	require.NoError(t, f.SetCurrent(ObservedPair(cty.StringVal("M31"), "NED")))
	require.NoError(t, f.SetCurrent(ObservedPair(cty.StringVal("M31"), "2MASS")))
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, 1, f.CurrentIndex())

	require.NoError(t, f.SetCurrent(SelectSource("NED")))
	assert.Equal(t, 0, f.CurrentIndex())
	assert.Equal(t, 2, f.Len(), "selecting must not append")

	err := f.SetCurrent(SelectSource("SDSS"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetCurrentObservedPairDuplicate(t *testing.T) {
	f := New("name")
	require.NoError(t, f.SetCurrent(ObservedPair(cty.StringVal("M31"), "NED")))

	err := f.SetCurrent(WithValue(mustObserved(t, cty.StringVal("M31"), "NED")))
	assert.ErrorIs(t, err, ErrDuplicateSource)
	assert.Equal(t, 1, f.Len())
}

func TestSetCurrentAdoptRaw(t *testing.T) {
	t.Run("empty unconstrained field adopts as default", func(t *testing.T) {
		f := New("loc")
		require.NoError(t, f.SetCurrent(AdoptRaw(cty.NumberIntVal(5))))
		assert.Equal(t, 0, f.Len(), "adopted value is a default, not an entry")

		got, err := f.Call()
		require.NoError(t, err)
		assert.True(t, got.RawEquals(cty.NumberIntVal(5)))
	})

	t.Run("constrained field rejects", func(t *testing.T) {
		f := New("loc")
		require.NoError(t, f.SetConstraint(constraint.ExactType(cty.Number)))
		err := f.SetCurrent(AdoptRaw(cty.NumberIntVal(5)))
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("non-empty field rejects", func(t *testing.T) {
		f := New("loc")
		require.NoError(t, f.Append(mustObserved(t, cty.NumberIntVal(1), "s")))
		err := f.SetCurrent(AdoptRaw(cty.NumberIntVal(5)))
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestDeleteCurrent(t *testing.T) {
	f := New("f")
	require.NoError(t, f.SetCurrent(ObservedPair(cty.StringVal("a"), "s1")))
	require.NoError(t, f.SetCurrent(ObservedPair(cty.StringVal("b"), "s2")))
	require.Equal(t, 1, f.CurrentIndex())

	require.NoError(t, f.DeleteCurrent())
	assert.Equal(t, 0, f.CurrentIndex())
	assert.Equal(t, 1, f.Len())

	require.NoError(t, f.DeleteCurrent())
	assert.Equal(t, -1, f.CurrentIndex())

	err := f.DeleteCurrent()
	assert.ErrorIs(t, err, ErrEmptyField)
}

func TestSetConstraintRollsBack(t *testing.T) {
	f := New("f")
	require.NoError(t, f.Append(mustObserved(t, cty.StringVal("M31"), "NED")))

	strType := constraint.ExactType(cty.String)
	require.NoError(t, f.SetConstraint(strType))

	err := f.SetConstraint(constraint.ExactType(cty.Number))
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, strType, f.Constraint(), "failed change must restore the previous constraint")

	t.Run("default is validated too", func(t *testing.T) {
		g := New("g")
		require.NoError(t, g.SetDefault(NewConstant(cty.StringVal("x"))))
		err := g.SetConstraint(constraint.ExactType(cty.Number))
		assert.ErrorIs(t, err, ErrTypeMismatch)
		assert.Nil(t, g.Constraint())
	})

	t.Run("clearing the constraint always succeeds", func(t *testing.T) {
		require.NoError(t, f.SetConstraint(nil))
		assert.Nil(t, f.Constraint())
	})
}

func TestDefaultExemptFromDuplicateSource(t *testing.T) {
	f := New("f")
	require.NoError(t, f.SetDefault(mustObserved(t, cty.StringVal("d"), "NED")))
	// A stored entry may use the same source the default carries.
	assert.NoError(t, f.Append(mustObserved(t, cty.StringVal("a"), "NED")))
}
