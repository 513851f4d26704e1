package polygon

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Transform maps every point through m. The normal is left untouched.
func (p *Polygon) Transform(m sdf.M44) {
	for i, pt := range p.points {
		p.points[i] = m.MulPosition(pt)
	}
}

// TransformNormal maps the normal through the inverse-transpose of m, since
// normals do not transform like points, and renormalizes it if needed. It
// reports false and keeps the old normal when m is not invertible.
func (p *Polygon) TransformNormal(m sdf.M44) bool {
	n, ok := transformNormal(m, p.normal)
	if !ok {
		return false
	}
	p.normal = n
	return true
}

// ToRenderSpace maps both points and normal from source space into the
// shared render space.
func (p *Polygon) ToRenderSpace(m sdf.M44) {
	p.Transform(m)
	if !p.TransformNormal(m) {
		if n, ok := newellNormal(p.points); ok {
			p.normal = n
		}
	}
}

// ToSourceSpace maps the points back into source space with inv, the
// inverse of the source's placement, and resets the normal to SourceNormal.
func (p *Polygon) ToSourceSpace(inv sdf.M44) {
	p.Transform(inv)
	p.normal = SourceNormal
}

// transformNormal returns inverse-transpose(m) · n, normalized.
func transformNormal(m sdf.M44, n v3.Vec) (v3.Vec, bool) {
	inv := m.Inverse()
	origin := inv.MulPosition(v3.Vec{})
	// Column j of the linear part of inv, dotted with n, is component j of
	// transpose(inv) · n.
	cx := inv.MulPosition(v3.Vec{X: 1}).Sub(origin)
	cy := inv.MulPosition(v3.Vec{Y: 1}).Sub(origin)
	cz := inv.MulPosition(v3.Vec{Z: 1}).Sub(origin)
	out := v3.Vec{X: n.Dot(cx), Y: n.Dot(cy), Z: n.Dot(cz)}
	if !finite(out) {
		return n, false
	}
	l := out.Length()
	if l == 0 {
		return n, false
	}
	if math.Abs(out.Dot(out)-1) > NormalLengthEpsilon {
		out = out.MulScalar(1 / l)
	}
	return out, true
}

// newellNormal computes the unit normal of a planar loop from its winding.
func newellNormal(pts []v3.Vec) (v3.Vec, bool) {
	var n v3.Vec
	for i, cur := range pts {
		next := pts[(i+1)%len(pts)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	l := n.Length()
	if l < degenerateArea || !finite(n) {
		return v3.Vec{}, false
	}
	return n.MulScalar(1 / l), true
}

func finite(v v3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// degenerateArea is twice the smallest loop area newellNormal accepts.
const degenerateArea = 1e-12
