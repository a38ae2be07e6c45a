package catalog

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/provcat/internal/constraint"
	"github.com/vk/provcat/internal/field"
	"github.com/vk/provcat/internal/tree"
)

// FieldTemplate is one declared field of a kind: a name with an optional
// type constraint and an optional default payload.
type FieldTemplate struct {
	Name       string
	Constraint constraint.Checker
	Default    *cty.Value
}

// TemplateProvider yields the ordered field declarations for a kind. The
// list must be stable: repeated calls for the same kind return an
// equivalent list, since templated objects rely on it both at construction
// and at Revert.
type TemplateProvider interface {
	TemplateFor(kind string) ([]FieldTemplate, error)
}

// TemplatedObject is an object whose initial field set is synthesized from
// a kind template. It tracks divergence from that template through the
// altered flag and can revert to the template's exact field set.
type TemplatedObject struct {
	*Object
	kind     string
	provider TemplateProvider
	altered  bool
}

// NewTemplatedObject builds an object of the given kind. Each template
// entry becomes a fresh per-instance field with the template's name,
// constraint, and default, and an empty value sequence.
func NewTemplatedObject(name, kind string, provider TemplateProvider) (*TemplatedObject, error) {
	tmpl, err := provider.TemplateFor(kind)
	if err != nil {
		return nil, err
	}

	t := &TemplatedObject{
		kind:     kind,
		provider: provider,
	}
	obj := &Object{fields: make(map[string]*field.Field)}
	obj.node = tree.NewNode(name, t)
	t.Object = obj

	for _, ft := range tmpl {
		f, err := fieldFromTemplate(ft)
		if err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
		// Template names are trusted unique; skip the duplicate guard.
		obj.registerField(f)
	}
	return t, nil
}

func fieldFromTemplate(ft FieldTemplate) (*field.Field, error) {
	var def field.Value
	if ft.Default != nil {
		def = field.NewConstant(*ft.Default)
	}
	return field.NewTyped(ft.Name, ft.Constraint, def)
}

// Kind returns the kind this object was templated from.
func (t *TemplatedObject) Kind() string {
	return t.kind
}

// Altered reports whether the field set has diverged from the template
// through a direct AddField or RemoveField.
func (t *TemplatedObject) Altered() bool {
	return t.altered
}

// AddField behaves as Object.AddField and latches the altered flag.
func (t *TemplatedObject) AddField(f *field.Field) error {
	if err := t.Object.AddField(f); err != nil {
		return err
	}
	t.altered = true
	return nil
}

// RemoveField behaves as Object.RemoveField and latches the altered flag.
func (t *TemplatedObject) RemoveField(name string) error {
	if err := t.Object.RemoveField(name); err != nil {
		return err
	}
	t.altered = true
	return nil
}

// Revert restores exactly the template's field name set and order: template
// fields missing from this object are recreated fresh, fields absent from
// the template are removed and released, and surviving template fields keep
// their stored values. Resets altered.
func (t *TemplatedObject) Revert() error {
	tmpl, err := t.provider.TemplateFor(t.kind)
	if err != nil {
		return err
	}

	kept := make(map[string]*field.Field, len(tmpl))
	names := make([]string, 0, len(tmpl))
	for _, ft := range tmpl {
		f, ok := t.fields[ft.Name]
		if !ok {
			f, err = fieldFromTemplate(ft)
			if err != nil {
				return fmt.Errorf("kind %q: %w", t.kind, err)
			}
		}
		kept[ft.Name] = f
		names = append(names, ft.Name)
	}

	// Release everything the template does not name.
	for name, f := range t.fields {
		if _, ok := kept[name]; !ok {
			f.Release()
		}
	}

	t.fields = kept
	t.names = names
	t.altered = false
	return nil
}
