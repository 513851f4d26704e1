package polygon

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Rect is an axis aligned rectangle in a source's local XY plane.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Corners returns the rectangle's corners counter-clockwise when viewed
// from +Z, starting at (X, Y).
func (r Rect) Corners() [4]v3.Vec {
	return [4]v3.Vec{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
}

// Plane is a clipping half-space. Points with a non-negative signed
// distance are inside.
type Plane struct {
	Point  v3.Vec
	Normal v3.Vec
}

// Distance returns the signed distance of pt from the plane.
func (pl Plane) Distance(pt v3.Vec) float64 {
	return pt.Sub(pl.Point).Dot(pl.Normal)
}

// FromQuad maps rect through placement into the shared space, clips the
// result against every plane of frustum and builds a polygon from what
// stays visible. The clipped loop has at most 4+len(frustum) vertices.
//
// visible is false when clipping leaves fewer than three vertices. A quad
// that collapses to a line or a point yields an ErrTypeInvalidPolygon error.
func FromQuad(rect Rect, placement sdf.M44, frustum []Plane, orderIndex int, source any) (p *Polygon, visible bool, err error) {
	corners := rect.Corners()
	pts := make([]v3.Vec, 0, len(corners)+len(frustum))
	for _, c := range corners {
		pts = append(pts, placement.MulPosition(c))
	}

	winding, ok := newellNormal(pts)
	if !ok {
		return nil, false, errors.New("quad is degenerate after placement").
			WithType(ErrTypeInvalidPolygon).
			WithTag("order_index", orderIndex).
			WithTag("width", rect.Width).
			WithTag("height", rect.Height)
	}
	normal, ok := transformNormal(placement, SourceNormal)
	if !ok {
		normal = winding
	}

	for _, pl := range frustum {
		pts = clipToPlane(pts, pl)
		if len(pts) < 3 {
			return nil, false, nil
		}
	}

	p, err = New(pts, normal, orderIndex, source)
	if err != nil {
		return nil, false, errors.New("building polygon from quad failed").
			WithType(ErrTypeInvalidPolygon).
			Wrap(err)
	}
	return p, true, nil
}

// clipToPlane is one Sutherland-Hodgman pass keeping the inside of pl.
func clipToPlane(pts []v3.Vec, pl Plane) []v3.Vec {
	if len(pts) == 0 {
		return pts
	}
	out := make([]v3.Vec, 0, len(pts)+1)
	start := pts[len(pts)-1]
	ds := pl.Distance(start)
	for _, end := range pts {
		de := pl.Distance(end)
		switch {
		case de >= 0 && ds < 0:
			out = appendDistinct(out, lerp(start, end, ds, de))
			out = appendDistinct(out, end)
		case de >= 0:
			out = appendDistinct(out, end)
		case ds >= 0:
			out = appendDistinct(out, lerp(start, end, ds, de))
		}
		start, ds = end, de
	}
	return out
}

func lerp(a, b v3.Vec, da, db float64) v3.Vec {
	t := da / (da - db)
	return a.Add(b.Sub(a).MulScalar(t))
}
