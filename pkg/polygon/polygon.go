// Package polygon implements the convex planar polygon used by the layer
// sorter: plane distance queries, sidedness classification against another
// polygon's plane, clipping by a plane, and point/normal transforms.
//
// All geometry is double precision and uses sdfx vectors and matrices.
package polygon

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	// CompareThreshold is the half thickness of a plane when classifying
	// vertices as front or back of it.
	CompareThreshold = 1.0

	// SplitThreshold is used when intersecting edges with a splitting plane.
	// It is half of CompareThreshold so that generated intersection points
	// stay inside the comparison band.
	SplitThreshold = CompareThreshold * 0.5

	// CoplanarDotEpsilon is the tolerance on |dot(na, nb)| for two normals
	// to be treated as parallel.
	CoplanarDotEpsilon = 0.001

	// NormalLengthEpsilon is the tolerance on |‖n‖² − 1| for a unit normal.
	NormalLengthEpsilon = 0.001
)

// SourceNormal is the normal of every polygon in its source (layer local)
// space. Source rectangles always face +Z.
var SourceNormal = v3.Vec{X: 0, Y: 0, Z: 1}

// Polygon is a convex, planar loop of at least three points with a unit
// normal. Points and normal only change through the transform methods;
// splitting produces new polygons.
type Polygon struct {
	points     []v3.Vec
	normal     v3.Vec
	orderIndex int
	source     any
	isSplit    bool
}

// New builds a polygon from an explicit point list. The points are copied.
// source is a non-owning reference to the object the polygon was derived
// from; the polygon must not outlive it.
func New(points []v3.Vec, normal v3.Vec, orderIndex int, source any) (*Polygon, error) {
	if len(points) < 3 {
		return nil, errors.New("polygon needs at least 3 points").
			WithType(ErrTypeInvalidPolygon).
			WithTag("order_index", orderIndex).
			WithTag("points", len(points))
	}
	if !isUnit(normal) {
		return nil, errors.New("polygon normal is not unit length").
			WithType(ErrTypeInvalidPolygon).
			WithTag("order_index", orderIndex).
			WithTag("normal_length", normal.Length())
	}
	return newPolygon(append([]v3.Vec(nil), points...), normal, orderIndex, source, false), nil
}

// newPolygon takes ownership of points.
func newPolygon(points []v3.Vec, normal v3.Vec, orderIndex int, source any, isSplit bool) *Polygon {
	return &Polygon{
		points:     points,
		normal:     normal,
		orderIndex: orderIndex,
		source:     source,
		isSplit:    isSplit,
	}
}

// Points returns the polygon's vertices. The slice must not be modified.
func (p *Polygon) Points() []v3.Vec {
	return p.points
}

// Normal returns the unit normal.
func (p *Polygon) Normal() v3.Vec {
	return p.normal
}

// OrderIndex returns the input order used to break ties between coplanar
// polygons. Split fragments share their parent's index.
func (p *Polygon) OrderIndex() int {
	return p.orderIndex
}

// Source returns the object the polygon was derived from.
func (p *Polygon) Source() any {
	return p.source
}

// IsSplit reports whether the polygon is a fragment produced by Split.
func (p *Polygon) IsSplit() bool {
	return p.isSplit
}

// Clone returns a deep copy of p.
func (p *Polygon) Clone() *Polygon {
	return newPolygon(append([]v3.Vec(nil), p.points...), p.normal, p.orderIndex, p.source, p.isSplit)
}

// SignedDistance returns the distance of point from the polygon's plane,
// positive on the side the normal points to.
func (p *Polygon) SignedDistance(point v3.Vec) float64 {
	return point.Sub(p.points[0]).Dot(p.normal)
}

func isUnit(n v3.Vec) bool {
	return math.Abs(n.Dot(n)-1) <= NormalLengthEpsilon
}
