package bsp

import (
	"github.com/chazu/stratum/pkg/polygon"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Viewer decides which side of a splitter the eye is on. Side returns
// either polygon.Front or polygon.Back.
type Viewer interface {
	Side(splitter *polygon.Polygon) polygon.Side
}

// AxisViewer is an orthographic viewer infinitely far away along a
// direction.
type AxisViewer struct {
	Dir v3.Vec
}

// Along returns a viewer looking from far along dir. Along(+Z) is the usual
// compositor setup where layers stack towards the screen.
func Along(dir v3.Vec) AxisViewer {
	return AxisViewer{Dir: dir}
}

func (v AxisViewer) Side(splitter *polygon.Polygon) polygon.Side {
	if splitter.Normal().Dot(v.Dir) > 0 {
		return polygon.Front
	}
	return polygon.Back
}

// EyeViewer is a viewer at a point.
type EyeViewer struct {
	Position v3.Vec
}

// At returns a viewer at position.
func At(position v3.Vec) EyeViewer {
	return EyeViewer{Position: position}
}

func (v EyeViewer) Side(splitter *polygon.Polygon) polygon.Side {
	if splitter.SignedDistance(v.Position) > 0 {
		return polygon.Front
	}
	return polygon.Back
}

// Visitor receives polygons during traversal. The polygons belong to the
// tree and must not be modified.
type Visitor interface {
	Visit(p *polygon.Polygon)
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(p *polygon.Polygon)

func (f VisitorFunc) Visit(p *polygon.Polygon) {
	f(p)
}

// Collect returns a visitor that appends every visited polygon to dst.
func Collect(dst *[]*polygon.Polygon) Visitor {
	return VisitorFunc(func(p *polygon.Polygon) {
		*dst = append(*dst, p)
	})
}

// Traverse visits every polygon of the tree from back to front as seen by
// viewer. For a node the viewer is in front of, the order is: back subtree,
// coplanar front list, splitter, coplanar back list, front subtree. In every
// other case, a viewer lying on the plane included, the order is mirrored.
func (t *Tree) Traverse(viewer Viewer, visitor Visitor) {
	if t.root == nil {
		return
	}
	traverse(t.root, viewer, visitor)
}

func traverse(n *Node, viewer Viewer, visitor Visitor) {
	if viewer.Side(n.Splitter) == polygon.Front {
		if n.Back != nil {
			traverse(n.Back, viewer, visitor)
		}
		visitAll(n.CoplanarFront, visitor)
		visitor.Visit(n.Splitter)
		visitAll(n.CoplanarBack, visitor)
		if n.Front != nil {
			traverse(n.Front, viewer, visitor)
		}
		return
	}

	if n.Front != nil {
		traverse(n.Front, viewer, visitor)
	}
	visitAll(n.CoplanarBack, visitor)
	visitor.Visit(n.Splitter)
	visitAll(n.CoplanarFront, visitor)
	if n.Back != nil {
		traverse(n.Back, viewer, visitor)
	}
}

func visitAll(polys []*polygon.Polygon, visitor Visitor) {
	for _, p := range polys {
		visitor.Visit(p)
	}
}
