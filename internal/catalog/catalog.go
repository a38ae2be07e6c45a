// Package catalog assembles the tree and field layers into catalog
// elements: a Catalog root that carries no fields, an Object that owns a
// named set of fields, and a TemplatedObject whose initial field set comes
// from an external template provider.
package catalog

import (
	"errors"

	"github.com/vk/provcat/internal/tree"
)

var (
	// ErrDuplicateName means the node already has a field with that name.
	ErrDuplicateName = errors.New("duplicate field name")
	// ErrNotFound means no field matches the given name or position.
	ErrNotFound = errors.New("field not found")
)

// Element is anything occupying a position in a catalog tree.
type Element interface {
	TreeNode() *tree.Node
}

// Catalog is a root-style element: a node grouping objects or other
// catalogs, without fields of its own.
type Catalog struct {
	node *tree.Node
}

// NewCatalog creates a detached catalog node.
func NewCatalog(name string) *Catalog {
	c := &Catalog{}
	c.node = tree.NewNode(name, c)
	return c
}

// Name returns the catalog's name.
func (c *Catalog) Name() string {
	return c.node.Name()
}

// TreeNode returns the underlying tree node.
func (c *Catalog) TreeNode() *tree.Node {
	return c.node
}

// SetParent attaches the catalog under another element. Catalogs nest.
func (c *Catalog) SetParent(parent Element) error {
	return c.node.SetParent(parentNode(parent))
}

func parentNode(parent Element) *tree.Node {
	if parent == nil {
		return nil
	}
	return parent.TreeNode()
}
