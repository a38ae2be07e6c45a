package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/provcat/internal/constraint"
	"github.com/vk/provcat/internal/field"
)

func TestAddRemoveField(t *testing.T) {
	o := NewObject("obj")
	require.NoError(t, o.AddField(field.New("name")))
	require.NoError(t, o.AddField(field.New("loc")))

	assert.Equal(t, 2, o.Len())
	assert.Equal(t, []string{"name", "loc"}, o.FieldNames())
	assert.True(t, o.Contains("name"))
	assert.False(t, o.Contains("ra"))

	t.Run("duplicate name rejected", func(t *testing.T) {
		err := o.AddField(field.New("name"))
		assert.ErrorIs(t, err, ErrDuplicateName)
		assert.Equal(t, 2, o.Len())
	})

	t.Run("removing an absent name fails", func(t *testing.T) {
		err := o.RemoveField("ra")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("removal preserves order of the rest", func(t *testing.T) {
		require.NoError(t, o.AddField(field.New("ra")))
		require.NoError(t, o.RemoveField("loc"))
		assert.Equal(t, []string{"name", "ra"}, o.FieldNames())
	})
}

func TestRemoveFieldReleasesIt(t *testing.T) {
	o := NewObject("obj")
	f := field.New("name")
	require.NoError(t, o.AddField(f))
	h := f.Handle()

	require.NoError(t, o.RemoveField("name"))
	_, ok := h.Resolve()
	assert.False(t, ok, "handles onto a removed field must go stale")
}

func TestMapStyleAccess(t *testing.T) {
	o := NewObject("obj")
	require.NoError(t, o.AddField(field.New("name")))
	require.NoError(t, o.AddField(field.New("loc")))

	require.NoError(t, o.Set(ByName("name"), field.ObservedPair(cty.StringVal("M31"), "NED")))

	t.Run("get by name", func(t *testing.T) {
		got, err := o.Get(ByName("name"))
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("M31"), got)
	})

	t.Run("get by position", func(t *testing.T) {
		got, err := o.Get(At(0))
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("M31"), got)
	})

	t.Run("empty field with no default reads as nil, not error", func(t *testing.T) {
		got, err := o.Get(ByName("loc"))
		require.NoError(t, err)
		assert.Equal(t, cty.NilVal, got)
	})

	t.Run("missing field name is an error", func(t *testing.T) {
		_, err := o.Get(ByName("ra"))
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = o.Get(At(7))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete goes through the current-value path", func(t *testing.T) {
		require.NoError(t, o.Delete(ByName("name")))
		got, err := o.Get(ByName("name"))
		require.NoError(t, err)
		assert.Equal(t, cty.NilVal, got)

		err = o.Delete(ByName("name"))
		assert.ErrorIs(t, err, field.ErrEmptyField)
	})
}

// The catalog scenario from the package's reason for existing: one object,
// one attribute, two competing observations.
func TestCompetingObservations(t *testing.T) {
	cat := NewCatalog("cat")
	obj := NewObject("obj")
	require.NoError(t, obj.SetParent(cat))

	name := field.New("name")
	require.NoError(t, name.SetConstraint(constraint.ExactType(cty.String)))
	require.NoError(t, obj.AddField(name))
	require.NoError(t, obj.AddField(field.New("loc")))

	// First observation becomes current.
	require.NoError(t, obj.Set(ByName("name"), field.ObservedPair(cty.StringVal("M31"), "NED")))
	got, err := obj.Get(ByName("name"))
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal("M31"), got)

	// A second source appends and takes over the selection.
	require.NoError(t, obj.Set(ByName("name"), field.ObservedPair(cty.StringVal("M31"), "2MASS")))
	assert.Equal(t, 2, name.Len())
	assert.Equal(t, 1, name.CurrentIndex())

	// Attribute-style access still reaches the first observation.
	v, err := name.Lookup(field.BySource("NED"))
	require.NoError(t, err)
	payload, err := v.Value()
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal("M31"), payload)

	// Repeating a source is rejected.
	err = obj.Set(ByName("name"), field.ObservedPair(cty.StringVal("M31"), "NED"))
	assert.ErrorIs(t, err, field.ErrDuplicateSource)
}

func TestElementsShareOneTree(t *testing.T) {
	cat := NewCatalog("cat")
	a := NewObject("a")
	b := NewObject("b")
	require.NoError(t, a.SetParent(cat))
	require.NoError(t, b.SetParent(a))

	assert.Equal(t, 3, cat.TreeNode().NodeCount())
	assert.Same(t, a, b.TreeNode().Parent().Owner())

	// Cycle prevention works across element kinds.
	err := cat.SetParent(b)
	assert.Error(t, err)
}
