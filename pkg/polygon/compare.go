package polygon

import "math"

// Side is the result of classifying a polygon against another polygon's
// plane.
type Side int

const (
	Front Side = iota
	Back
	Split
	CoplanarFront
	CoplanarBack
)

func (s Side) String() string {
	switch s {
	case Front:
		return "front"
	case Back:
		return "back"
	case Split:
		return "split"
	case CoplanarFront:
		return "coplanar-front"
	case CoplanarBack:
		return "coplanar-back"
	default:
		return "unknown"
	}
}

// Compare classifies a relative to b's plane.
//
// Planes are CompareThreshold thick: vertices within that distance of b's
// plane count as lying on it. When the normals are parallel and a lies on
// b's plane the polygons are coplanar, and their order indices decide
// between CoplanarFront and CoplanarBack. Anti-aligned normals invert that
// mapping.
func Compare(a, b *Polygon) Side {
	dot := a.normal.Dot(b.normal)
	if math.Abs(dot) >= 1-CoplanarDotEpsilon {
		sign := b.SignedDistance(a.points[0])
		switch {
		case sign < -CompareThreshold:
			return Back
		case sign > CompareThreshold:
			return Front
		}
		before := a.orderIndex < b.orderIndex
		if dot < 0 {
			before = !before
		}
		if before {
			return CoplanarFront
		}
		return CoplanarBack
	}

	var pos, neg int
	for _, pt := range a.points {
		d := b.SignedDistance(pt)
		switch {
		case d > CompareThreshold:
			pos++
		case d < -CompareThreshold:
			neg++
		}
		if pos > 0 && neg > 0 {
			return Split
		}
	}
	if neg == 0 {
		return Front
	}
	return Back
}
