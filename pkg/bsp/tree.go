// Package bsp sorts convex polygons with a binary space partitioning tree.
//
// Build partitions a polygon sequence around the plane of its first element,
// splitting polygons that cross that plane, and recurses on the polygons
// left behind and in front of it. Traverse then replays the fragments in
// back to front order for a given viewer.
package bsp

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/stratum/pkg/polygon"
)

// ErrTypeUnexpectedSide marks a classification the builder cannot place.
const ErrTypeUnexpectedSide = "unexpected_side"

// Node is one splitting plane of the tree. The splitters of Back and Front
// classify as Back and Front against Splitter. Polygons coplanar with
// Splitter are kept in the two coplanar lists in insertion order.
//
// Deeper descendants were placed by Splitter too, but a fragment cut off
// further down can lie entirely within Splitter's CompareThreshold band
// and then classifies as Front against it, even below Back.
type Node struct {
	Splitter      *polygon.Polygon
	CoplanarFront []*polygon.Polygon
	CoplanarBack  []*polygon.Polygon
	Front         *Node
	Back          *Node
}

// Tree is a built partition tree. It is immutable.
type Tree struct {
	root   *Node
	splits int
	size   int
}

// Build partitions polygons into a tree. The tree takes ownership of the
// polygons: every element of the slice is cleared.
//
// The first polygon becomes the root splitter. No rebalancing is done, so
// the cost is O(n log n) on average and O(n²) in the worst case.
//
// A failing split aborts the build; no partial tree is returned.
func Build(polygons []*polygon.Polygon) (*Tree, error) {
	t := &Tree{}
	if len(polygons) == 0 {
		return t, nil
	}

	seq := make([]*polygon.Polygon, len(polygons))
	copy(seq, polygons)
	clear(polygons)

	t.root = &Node{Splitter: seq[0]}
	if err := t.partition(t.root, seq[1:]); err != nil {
		return nil, errors.New("building partition tree failed").
			WithType(errors.Type(err)).
			WithTag("polygons", len(seq)).
			Wrap(err)
	}
	t.size = len(seq) + t.splits
	return t, nil
}

func (t *Tree) partition(node *Node, seq []*polygon.Polygon) error {
	var front, back []*polygon.Polygon

	for _, p := range seq {
		switch side := polygon.Compare(p, node.Splitter); side {
		case polygon.Front:
			front = append(front, p)

		case polygon.Back:
			back = append(back, p)

		case polygon.Split:
			f, b, err := p.Split(node.Splitter)
			if err != nil {
				return err
			}
			t.splits++
			front = append(front, f)
			back = append(back, b)

		case polygon.CoplanarFront:
			node.CoplanarFront = append(node.CoplanarFront, p)

		case polygon.CoplanarBack:
			node.CoplanarBack = append(node.CoplanarBack, p)

		default:
			return errors.New("unexpected polygon classification").
				WithType(ErrTypeUnexpectedSide).
				WithTag("side", side.String()).
				WithTag("order_index", p.OrderIndex())
		}
	}

	if len(back) > 0 {
		node.Back = &Node{Splitter: back[0]}
		if err := t.partition(node.Back, back[1:]); err != nil {
			return err
		}
	}
	if len(front) > 0 {
		node.Front = &Node{Splitter: front[0]}
		if err := t.partition(node.Front, front[1:]); err != nil {
			return err
		}
	}
	return nil
}

// Root returns the root node, or nil for a tree built from no polygons.
func (t *Tree) Root() *Node {
	return t.root
}

// Splits returns how many split operations the build performed.
func (t *Tree) Splits() int {
	return t.splits
}

// Len returns the number of polygons held by the tree, fragments included.
// A full traversal visits exactly Len polygons.
func (t *Tree) Len() int {
	return t.size
}
