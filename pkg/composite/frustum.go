package composite

import (
	"github.com/chazu/stratum/pkg/polygon"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DepthClip returns the near and far planes keeping points whose depth,
// measured from eye along look, lies within [near, far]. A zero look
// direction clips nothing.
func DepthClip(eye, look v3.Vec, near, far float64) []polygon.Plane {
	length := look.Length()
	if length == 0 {
		return nil
	}
	dir := look.MulScalar(1 / length)
	return []polygon.Plane{
		{Point: eye.Add(dir.MulScalar(near)), Normal: dir},
		{Point: eye.Add(dir.MulScalar(far)), Normal: dir.MulScalar(-1)},
	}
}
