// Package tree implements the mutable single-parent tree underlying a
// catalog: parent/child links kept symmetric, cycle-guarded re-parenting,
// child reordering, and the traversal orders used to walk a subtree.
//
// Nodes are not safe for concurrent use; callers supply their own mutual
// exclusion per subtree when sharing one across goroutines.
package tree

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrCycle means a re-parenting would make a node its own ancestor.
	ErrCycle = errors.New("cycle detected")
	// ErrInvalidArgument means a malformed reorder spec or traversal order.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Node is a vertex in a catalog tree. A node has at most one parent and an
// ordered list of children; the links are always symmetric.
type Node struct {
	name     string
	owner    any
	parent   *Node
	children []*Node
}

// NewNode creates a detached node. owner is an optional back-reference to
// the entity wrapping this node (a catalog or object); traversal callbacks
// use it to get back from tree structure to domain data.
func NewNode(name string, owner any) *Node {
	return &Node{name: name, owner: owner}
}

// Name returns the node's name.
func (n *Node) Name() string {
	return n.name
}

// Owner returns the wrapping entity, or nil.
func (n *Node) Owner() any {
	return n.owner
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns an ordered snapshot of the current children. Mutating
// the returned slice does not affect the tree.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// SetParent moves the node under a new parent, keeping links symmetric:
// the node leaves its old parent's child list and is appended to the new
// one's. A nil parent merely detaches.
//
// Before any mutation, the prospective parent and its ancestors are walked;
// if the node appears among them the operation fails with ErrCycle and
// nothing changes.
func (n *Node) SetParent(newParent *Node) error {
	if newParent != nil {
		for a := newParent; a != nil; a = a.parent {
			if a == n {
				return fmt.Errorf("%w: %q is an ancestor of (or the same node as) the requested parent", ErrCycle, n.name)
			}
		}
	}

	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.parent = newParent
	if newParent != nil {
		newParent.children = append(newParent.children, n)
	}
	return nil
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// NodeCount returns the size of the subtree rooted here, self included.
// Computed freshly on every call; the tree mutates too often to cache.
func (n *Node) NodeCount() int {
	count := 1
	for _, c := range n.children {
		count += c.NodeCount()
	}
	return count
}

// --- Reordering ---

type reorderKind int

const (
	reorderReverse reorderKind = iota + 1
	reorderComparator
	reorderPermutation
)

// ReorderSpec describes how to reorder a node's children. Construct one
// with Reverse, ByComparator, or ByPermutation.
type ReorderSpec struct {
	kind reorderKind
	less func(a, b *Node) bool
	perm []int
}

// Reverse reverses the child order in place.
func Reverse() ReorderSpec {
	return ReorderSpec{kind: reorderReverse}
}

// ByComparator stable-sorts the children by a total order.
func ByComparator(less func(a, b *Node) bool) ReorderSpec {
	return ReorderSpec{kind: reorderComparator, less: less}
}

// ByPermutation applies an index permutation: new position i receives the
// child previously at perm[i]. The permutation must have exactly one entry
// per child, with no repeats.
func ByPermutation(perm []int) ReorderSpec {
	return ReorderSpec{kind: reorderPermutation, perm: perm}
}

// Reorder rearranges the node's children. On a malformed spec the child
// order is left exactly as it was.
func (n *Node) Reorder(spec ReorderSpec) error {
	switch spec.kind {
	case reorderReverse:
		for i, j := 0, len(n.children)-1; i < j; i, j = i+1, j-1 {
			n.children[i], n.children[j] = n.children[j], n.children[i]
		}
		return nil

	case reorderComparator:
		if spec.less == nil {
			return fmt.Errorf("%w: nil comparator", ErrInvalidArgument)
		}
		sort.SliceStable(n.children, func(i, j int) bool {
			return spec.less(n.children[i], n.children[j])
		})
		return nil

	case reorderPermutation:
		if len(spec.perm) != len(n.children) {
			return fmt.Errorf("%w: permutation has %d entries for %d children", ErrInvalidArgument, len(spec.perm), len(n.children))
		}
		seen := make([]bool, len(spec.perm))
		for _, p := range spec.perm {
			if p < 0 || p >= len(n.children) {
				return fmt.Errorf("%w: permutation index %d out of range", ErrInvalidArgument, p)
			}
			if seen[p] {
				return fmt.Errorf("%w: permutation repeats index %d", ErrInvalidArgument, p)
			}
			seen[p] = true
		}
		reordered := make([]*Node, len(n.children))
		for i, p := range spec.perm {
			reordered[i] = n.children[p]
		}
		n.children = reordered
		return nil

	default:
		return fmt.Errorf("%w: zero-valued reorder spec", ErrInvalidArgument)
	}
}
