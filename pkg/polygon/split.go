package polygon

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Split clips p by splitter's plane and returns the fragment in front of it
// and the fragment behind it. p must have been classified Split against
// splitter; otherwise, or when p is not convex, the error has type
// ErrTypeGeometryInvariant.
//
// Both fragments keep p's normal, order index and source and are marked as
// split. The two crossing points are shared by both fragments.
func (p *Polygon) Split(splitter *Polygon) (front, back *Polygon, err error) {
	n := len(p.points)
	sides := make([]int, n)
	dists := make([]float64, n)
	for i, pt := range p.points {
		dists[i] = splitter.SignedDistance(pt)
		sides[i] = sideOf(dists[i], SplitThreshold)
	}

	var crossings []v3.Vec
	var before []int
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		x, ok := p.crossing(i, j, sides, dists)
		if !ok {
			continue
		}
		crossings = append(crossings, x)
		before = append(before, i)
	}
	if len(crossings) != 2 {
		return nil, nil, errors.New("split did not find exactly two plane crossings").
			WithType(ErrTypeGeometryInvariant).
			WithTag("order_index", p.orderIndex).
			WithTag("splitter_order_index", splitter.orderIndex).
			WithTag("crossings", len(crossings))
	}

	first := make([]v3.Vec, 0, before[1]-before[0]+2)
	first = appendDistinct(first, crossings[0])
	for i := before[0] + 1; i <= before[1]; i++ {
		first = appendDistinct(first, p.points[i])
	}
	first = appendDistinct(first, crossings[1])

	second := make([]v3.Vec, 0, n-(before[1]-before[0])+2)
	second = appendDistinct(second, crossings[1])
	for i := before[1]; i != before[0]; {
		i = (i + 1) % n
		second = appendDistinct(second, p.points[i])
	}
	second = appendDistinct(second, crossings[0])

	if len(first) < 3 || len(second) < 3 {
		return nil, nil, errors.New("split produced a degenerate fragment").
			WithType(ErrTypeGeometryInvariant).
			WithTag("order_index", p.orderIndex).
			WithTag("first_points", len(first)).
			WithTag("second_points", len(second))
	}

	normal := p.normal
	if !isUnit(normal) {
		normal = normal.Normalize()
	}
	a := newPolygon(first, normal, p.orderIndex, p.source, true)
	b := newPolygon(second, normal, p.orderIndex, p.source, true)
	if Compare(a, splitter) == Front {
		return a, b, nil
	}
	return b, a, nil
}

// crossing reports whether the edge from vertex i to vertex j crosses the
// splitting plane and where.
//
// An edge whose end points lie strictly on opposite sides crosses at the
// interpolated point. An edge that starts inside the split band and ends
// outside of it crosses at its start vertex, but only when the polygon
// arrived at the band from the opposite side; a vertex that merely touches
// the plane is not a crossing.
func (p *Polygon) crossing(i, j int, sides []int, dists []float64) (v3.Vec, bool) {
	si, sj := sides[i], sides[j]
	switch {
	case si != 0 && sj != 0 && si != sj:
		ds, de := math.Abs(dists[i]), math.Abs(dists[j])
		t := ds / (ds + de)
		edge := p.points[j].Sub(p.points[i])
		return p.points[i].Add(edge.MulScalar(t)), true

	case si == 0 && sj != 0:
		n := len(sides)
		for k := (i + n - 1) % n; k != i; k = (k + n - 1) % n {
			if sides[k] != 0 {
				if sides[k] == -sj {
					return p.points[i], true
				}
				return v3.Vec{}, false
			}
		}
	}
	return v3.Vec{}, false
}

func sideOf(d, threshold float64) int {
	switch {
	case d > threshold:
		return 1
	case d < -threshold:
		return -1
	default:
		return 0
	}
}

func appendDistinct(pts []v3.Vec, pt v3.Vec) []v3.Vec {
	if len(pts) > 0 && pts[len(pts)-1] == pt {
		return pts
	}
	if len(pts) > 1 && pts[0] == pt {
		return pts
	}
	return append(pts, pt)
}
