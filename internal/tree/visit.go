package tree

import (
	"fmt"
	"strconv"
)

type orderKind int

const (
	orderPre orderKind = iota + 1
	orderPost
	orderAtIndex
	orderLevel
)

// Order selects a traversal order for Visit.
type Order struct {
	kind  orderKind
	index int
}

var (
	// PreOrder visits self, then children left to right.
	PreOrder = Order{kind: orderPre}
	// PostOrder visits children left to right, then self.
	PostOrder = Order{kind: orderPost}
	// LevelOrder visits self, then each successive depth left to right.
	LevelOrder = Order{kind: orderLevel}
)

// AtIndex interleaves self at child position k: children 0..k-1, then self,
// then children k and onward. When k is out of range for a node, that node
// is visited after all its children.
func AtIndex(k int) Order {
	return Order{kind: orderAtIndex, index: k}
}

// ParseOrder maps the textual order names to an Order. Integer strings map
// to AtIndex. Unknown names fail with ErrInvalidArgument.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "preorder":
		return PreOrder, nil
	case "postorder":
		return PostOrder, nil
	case "levelorder", "levelOrder", "breadthfirst":
		return LevelOrder, nil
	}
	if k, err := strconv.Atoi(s); err == nil {
		return AtIndex(k), nil
	}
	return Order{}, fmt.Errorf("%w: unknown traversal order %q", ErrInvalidArgument, s)
}

// VisitFunc is any unary callback from node to a result value.
type VisitFunc func(n *Node) any

// Visit applies fn to every node in the subtree rooted here and returns the
// results in visit order. An unknown order fails with ErrInvalidArgument
// before any callback runs.
func (n *Node) Visit(fn VisitFunc, order Order) ([]any, error) {
	var results []any
	switch order.kind {
	case orderPre:
		n.visitPre(fn, &results)
	case orderPost:
		n.visitPost(fn, &results)
	case orderAtIndex:
		n.visitAtIndex(fn, order.index, &results)
	case orderLevel:
		// Breadth-first with an explicit queue.
		queue := []*Node{n}
		for len(queue) > 0 {
			next := queue[0]
			queue = queue[1:]
			results = append(results, fn(next))
			queue = append(queue, next.children...)
		}
	default:
		return nil, fmt.Errorf("%w: zero-valued traversal order", ErrInvalidArgument)
	}
	return results, nil
}

func (n *Node) visitPre(fn VisitFunc, results *[]any) {
	*results = append(*results, fn(n))
	for _, c := range n.children {
		c.visitPre(fn, results)
	}
}

func (n *Node) visitPost(fn VisitFunc, results *[]any) {
	for _, c := range n.children {
		c.visitPost(fn, results)
	}
	*results = append(*results, fn(n))
}

func (n *Node) visitAtIndex(fn VisitFunc, k int, results *[]any) {
	// Clamp per node; children apply the original k to their own lists.
	at := k
	if at < 0 || at > len(n.children) {
		at = len(n.children)
	}
	for _, c := range n.children[:at] {
		c.visitAtIndex(fn, k, results)
	}
	*results = append(*results, fn(n))
	for _, c := range n.children[at:] {
		c.visitAtIndex(fn, k, results)
	}
}
