package polygon

import v3 "github.com/deadsy/sdfx/vec/v3"

// Quad is four points of a fan piece. A triangle is stored as a quad whose
// last two points are equal.
type Quad [4]v3.Vec

// IsTriangle reports whether the quad is a degenerate triangle.
func (q Quad) IsTriangle() bool {
	return q[2] == q[3]
}

// Fan decomposes a polygon into quads fanned from its first vertex. It is
// lazy and can be consumed only once:
//
//	f := p.Fan()
//	for f.Next() {
//		draw(f.Quad())
//	}
type Fan struct {
	points []v3.Vec
	offset int
	cur    Quad
}

// Fan returns a fresh iterator over p's quads.
func (p *Polygon) Fan() *Fan {
	return &Fan{points: p.points, offset: 1}
}

// Next advances to the next quad. It returns false once the polygon is
// exhausted.
func (f *Fan) Next() bool {
	n := len(f.points)
	switch {
	case f.offset+2 < n:
		f.cur = Quad{f.points[0], f.points[f.offset], f.points[f.offset+1], f.points[f.offset+2]}
		f.offset += 2
		return true
	case f.offset+1 < n:
		last := f.points[f.offset+1]
		f.cur = Quad{f.points[0], f.points[f.offset], last, last}
		f.offset = n
		return true
	default:
		return false
	}
}

// Quad returns the quad produced by the last successful call to Next.
func (f *Fan) Quad() Quad {
	return f.cur
}
