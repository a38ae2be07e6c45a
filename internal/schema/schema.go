// Package schema declares the HCL block structures for the two file kinds
// this tool reads: kind manifests (field templates per object kind) and
// catalog files (object trees with observed and derived values).
package schema

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// --- Kind manifest structures ---

// FieldDef is a `field` block inside a kind: one declared field with an
// optional type constraint and default. `type` and `vector_of` are mutually
// exclusive; `vector_of` declares a numeric-vector constraint by element
// dtype.
type FieldDef struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type,optional"`
	VectorOf    hcl.Expression `hcl:"vector_of,optional"`
	Description string         `hcl:"description,optional"`
	Default     *cty.Value     `hcl:"default,optional"`
}

// KindDef is a `kind` block: the template an object of this kind starts
// from.
type KindDef struct {
	Name        string      `hcl:"name,label"`
	Description string      `hcl:"description,optional"`
	Fields      []*FieldDef `hcl:"field,block"`
}

// TemplateConfig is the top-level structure of a kind manifest file.
type TemplateConfig struct {
	Kinds []*KindDef `hcl:"kind,block"`
	Body  hcl.Body   `hcl:",remain"`
}

// --- Catalog file structures ---

// ValueDef is a `value` block: one observed value for a named field,
// attributed to a source. At most one value per field marks itself current;
// otherwise the last written value is the selection.
type ValueDef struct {
	Field   string    `hcl:"field,label"`
	Value   cty.Value `hcl:"value"`
	Source  string    `hcl:"source"`
	Current bool      `hcl:"current,optional"`
}

// DeriveDef is a `derive` block: a derived value for a named field,
// computed by a registered function from other fields' current values.
// Dependencies name fields on the same object, or `object.field` for
// fields elsewhere in the catalog.
type DeriveDef struct {
	Field     string   `hcl:"field,label"`
	Function  string   `hcl:"function"`
	DependsOn []string `hcl:"depends_on"`
	Source    string   `hcl:"source,optional"`
}

// ObjectDef is an `object` block: a templated object instance. Parent names
// another object in the same catalog; objects without a parent sit directly
// under the catalog root.
type ObjectDef struct {
	Kind    string       `hcl:"kind,label"`
	Name    string       `hcl:"instance_name,label"`
	Parent  string       `hcl:"parent,optional"`
	Values  []*ValueDef  `hcl:"value,block"`
	Derives []*DeriveDef `hcl:"derive,block"`
}

// CatalogDef is a `catalog` block: one tree root and its objects.
type CatalogDef struct {
	Name    string       `hcl:"name,label"`
	Objects []*ObjectDef `hcl:"object,block"`
}

// CatalogConfig is the top-level structure of a catalog file.
type CatalogConfig struct {
	Catalogs []*CatalogDef `hcl:"catalog,block"`
	Body     hcl.Body      `hcl:",remain"`
}
