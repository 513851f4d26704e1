package polygon

import (
	"math"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/require"
)

const tol = 1e-6

func vec(x, y, z float64) v3.Vec {
	return v3.Vec{X: x, Y: y, Z: z}
}

func mustNew(t *testing.T, points []v3.Vec, normal v3.Vec, index int) *Polygon {
	t.Helper()
	p, err := New(points, normal, index, nil)
	require.NoError(t, err)
	return p
}

func requirePointsInDelta(t *testing.T, want, got []v3.Vec) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.InDelta(t, want[i].X, got[i].X, tol, "point %d x", i)
		require.InDelta(t, want[i].Y, got[i].Y, tol, "point %d y", i)
		require.InDelta(t, want[i].Z, got[i].Z, tol, "point %d z", i)
	}
}

// square returns a 10x10 square in the z plane at height z.
func square(z float64) []v3.Vec {
	return []v3.Vec{vec(0, 10, z), vec(0, 0, z), vec(10, 0, z), vec(10, 10, z)}
}

func TestNewRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		points []v3.Vec
		normal v3.Vec
	}{
		{"no points", nil, vec(0, 0, 1)},
		{"two points", []v3.Vec{vec(0, 0, 0), vec(1, 0, 0)}, vec(0, 0, 1)},
		{"zero normal", square(0), vec(0, 0, 0)},
		{"long normal", square(0), vec(0, 0, 1.01)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.points, tt.normal, 0, nil)
			require.Error(t, err)
			require.Nil(t, p)
			require.True(t, errors.IsType(err, ErrTypeInvalidPolygon))
		})
	}
}

func TestNewCopiesPoints(t *testing.T) {
	pts := square(0)
	p := mustNew(t, pts, vec(0, 0, 1), 3)
	pts[0] = vec(99, 99, 99)

	require.Equal(t, vec(0, 10, 0), p.Points()[0])
	require.Equal(t, 3, p.OrderIndex())
	require.False(t, p.IsSplit())
}

func TestNewAcceptsNearUnitNormal(t *testing.T) {
	_, err := New(square(0), vec(0, 0, 1.0004), 0, nil)
	require.NoError(t, err)
}

func TestSignedDistance(t *testing.T) {
	p := mustNew(t, square(2), vec(0, 0, 1), 0)

	require.InDelta(t, 3, p.SignedDistance(vec(4, 4, 5)), tol)
	require.InDelta(t, -2, p.SignedDistance(vec(-7, 1, 0)), tol)
	require.InDelta(t, 0, p.SignedDistance(vec(100, -3, 2)), tol)
}

func TestCompare(t *testing.T) {
	base := mustNew(t, square(0), vec(0, 0, 1), 1)

	tests := []struct {
		name   string
		points []v3.Vec
		normal v3.Vec
		index  int
		want   Side
	}{
		{"parallel above", square(5), vec(0, 0, 1), 0, Front},
		{"parallel below", square(-5), vec(0, 0, 1), 0, Back},
		{"anti-parallel above", square(5), vec(0, 0, -1), 0, Front},
		{"inside thick plane counts as coplanar", square(0.9), vec(0, 0, 1), 0, CoplanarFront},
		{"coplanar earlier index", square(0), vec(0, 0, 1), 0, CoplanarFront},
		{"coplanar later index", square(0), vec(0, 0, 1), 2, CoplanarBack},
		{"anti-aligned earlier index", square(0), vec(0, 0, -1), 0, CoplanarBack},
		{"anti-aligned later index", square(0), vec(0, 0, -1), 2, CoplanarFront},
		{
			"crossing",
			[]v3.Vec{vec(5, 10, -5), vec(5, 0, -5), vec(5, 0, 5), vec(5, 10, 5)},
			vec(-1, 0, 0), 0, Split,
		},
		{
			"perpendicular above",
			[]v3.Vec{vec(5, 10, 2), vec(5, 0, 2), vec(5, 0, 8), vec(5, 10, 8)},
			vec(-1, 0, 0), 0, Front,
		},
		{
			"perpendicular touching from below",
			[]v3.Vec{vec(5, 10, -8), vec(5, 0, -8), vec(5, 0, 0.5), vec(5, 10, 0.5)},
			vec(-1, 0, 0), 0, Back,
		},
		{
			"perpendicular inside band only",
			[]v3.Vec{vec(5, 10, -0.5), vec(5, 0, -0.5), vec(5, 0, 0.5), vec(5, 10, 0.5)},
			vec(-1, 0, 0), 0, Front,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustNew(t, tt.points, tt.normal, tt.index)
			require.Equal(t, tt.want, Compare(p, base))
		})
	}
}

func TestSideString(t *testing.T) {
	require.Equal(t, "front", Front.String())
	require.Equal(t, "coplanar-back", CoplanarBack.String())
	require.Equal(t, "unknown", Side(42).String())
}

func TestSplitClipsAlongPlane(t *testing.T) {
	a := mustNew(t, square(0), vec(0, 0, 1), 0)
	b := mustNew(t, []v3.Vec{vec(5, 10, -5), vec(5, 0, -5), vec(5, 0, 5), vec(5, 10, 5)}, vec(-1, 0, 0), 1)

	require.Equal(t, Split, Compare(a, b))

	front, back, err := a.Split(b)
	require.NoError(t, err)

	requirePointsInDelta(t, []v3.Vec{vec(5, 10, 0), vec(0, 10, 0), vec(0, 0, 0), vec(5, 0, 0)}, front.Points())
	requirePointsInDelta(t, []v3.Vec{vec(5, 0, 0), vec(10, 0, 0), vec(10, 10, 0), vec(5, 10, 0)}, back.Points())

	require.Equal(t, Front, Compare(front, b))
	require.Equal(t, Back, Compare(back, b))

	for _, f := range []*Polygon{front, back} {
		require.True(t, f.IsSplit())
		require.Equal(t, a.OrderIndex(), f.OrderIndex())
		require.Equal(t, a.Normal(), f.Normal())
	}
	require.False(t, a.IsSplit(), "split must not mutate the original")
	requirePointsInDelta(t, square(0), a.Points())
}

func TestSplitPartitionLaw(t *testing.T) {
	splitters := []*Polygon{
		mustNew(t, []v3.Vec{vec(5, 10, -5), vec(5, 0, -5), vec(5, 0, 5), vec(5, 10, 5)}, vec(-1, 0, 0), 0),
		mustNew(t, []v3.Vec{vec(0, 3, -5), vec(10, 3, -5), vec(10, 3, 5), vec(0, 3, 5)}, vec(0, 1, 0), 0),
		mustNew(t, []v3.Vec{vec(0, 0, -5), vec(10, 10, -5), vec(10, 10, 5), vec(0, 0, 5)},
			vec(-1, 1, 0).MulScalar(1/math.Sqrt2), 0),
	}
	polys := []*Polygon{
		mustNew(t, square(0), vec(0, 0, 1), 1),
		mustNew(t, []v3.Vec{vec(0, 0, 0), vec(10, 0, 0), vec(10, 10, 0), vec(5, 14, 0), vec(0, 10, 0)}, vec(0, 0, 1), 2),
		mustNew(t, []v3.Vec{vec(-1, 5, 0), vec(5, -1, 0), vec(11, 5, 0), vec(5, 11, 0)}, vec(0, 0, 1), 3),
	}
	for si, s := range splitters {
		for pi, p := range polys {
			if Compare(p, s) != Split {
				continue
			}
			front, back, err := p.Split(s)
			require.NoError(t, err, "splitter %d polygon %d", si, pi)
			require.GreaterOrEqual(t, len(front.Points()), 3)
			require.GreaterOrEqual(t, len(back.Points()), 3)
			require.Equal(t, Front, Compare(front, s), "splitter %d polygon %d", si, pi)
			require.Equal(t, Back, Compare(back, s), "splitter %d polygon %d", si, pi)
			require.Equal(t, p.OrderIndex(), front.OrderIndex())
			require.Equal(t, p.OrderIndex(), back.OrderIndex())
		}
	}
}

func TestSplitThroughVertex(t *testing.T) {
	// A diamond whose top and bottom vertices lie on the splitter's plane.
	diamond := mustNew(t, []v3.Vec{vec(5, 0, 0), vec(10, 5, 0), vec(5, 10, 0), vec(0, 5, 0)}, vec(0, 0, 1), 0)
	splitter := mustNew(t, []v3.Vec{vec(5, 10, -5), vec(5, 0, -5), vec(5, 0, 5), vec(5, 10, 5)}, vec(-1, 0, 0), 1)

	require.Equal(t, Split, Compare(diamond, splitter))
	front, back, err := diamond.Split(splitter)
	require.NoError(t, err)

	requirePointsInDelta(t, []v3.Vec{vec(5, 10, 0), vec(0, 5, 0), vec(5, 0, 0)}, front.Points())
	requirePointsInDelta(t, []v3.Vec{vec(5, 0, 0), vec(10, 5, 0), vec(5, 10, 0)}, back.Points())
}

func TestSplitWithoutCrossingFails(t *testing.T) {
	a := mustNew(t, square(0), vec(0, 0, 1), 0)
	above := mustNew(t, square(5), vec(0, 0, 1), 1)

	front, back, err := above.Split(a)
	require.Error(t, err)
	require.Nil(t, front)
	require.Nil(t, back)
	require.True(t, errors.IsType(err, ErrTypeGeometryInvariant))
}

func TestTransform(t *testing.T) {
	p := mustNew(t, square(0), vec(0, 0, 1), 0)
	p.Transform(sdf.Translate3d(vec(1, 2, 3)))

	requirePointsInDelta(t, []v3.Vec{vec(1, 12, 3), vec(1, 2, 3), vec(11, 2, 3), vec(11, 12, 3)}, p.Points())
	require.Equal(t, vec(0, 0, 1), p.Normal())
}

func TestTransformNormal(t *testing.T) {
	t.Run("rotation", func(t *testing.T) {
		p := mustNew(t, square(0), vec(1, 0, 0), 0)
		require.True(t, p.TransformNormal(sdf.RotateZ(math.Pi/2)))
		n := p.Normal()
		require.InDelta(t, 0, n.X, tol)
		require.InDelta(t, 1, n.Y, tol)
		require.InDelta(t, 0, n.Z, tol)
	})

	t.Run("non-uniform scale uses inverse transpose", func(t *testing.T) {
		p := mustNew(t, square(0), vec(1, 1, 0).MulScalar(1/math.Sqrt2), 0)
		require.True(t, p.TransformNormal(sdf.Scale3d(vec(2, 1, 1))))
		n := p.Normal()
		want := vec(0.5, 1, 0).MulScalar(1 / math.Sqrt(1.25))
		require.InDelta(t, want.X, n.X, tol)
		require.InDelta(t, want.Y, n.Y, tol)
		require.InDelta(t, 1, n.Length(), tol)
	})

	t.Run("translation leaves normal alone", func(t *testing.T) {
		p := mustNew(t, square(0), vec(0, 0, 1), 0)
		require.True(t, p.TransformNormal(sdf.Translate3d(vec(7, 8, 9))))
		require.InDelta(t, 1, p.Normal().Z, tol)
	})
}

func TestToRenderAndSourceSpace(t *testing.T) {
	placement := sdf.Translate3d(vec(0, 0, 4)).Mul(sdf.RotateX(math.Pi / 2))

	p := mustNew(t, square(0), SourceNormal, 0)
	p.ToRenderSpace(placement)
	n := p.Normal()
	require.InDelta(t, 0, n.X, tol)
	require.InDelta(t, -1, n.Y, tol)
	require.InDelta(t, 0, n.Z, tol)
	require.InDelta(t, 4, p.Points()[1].Z, tol)

	p.ToSourceSpace(placement.Inverse())
	requirePointsInDelta(t, square(0), p.Points())
	require.Equal(t, SourceNormal, p.Normal())
}

func TestClone(t *testing.T) {
	p := mustNew(t, square(0), vec(0, 0, 1), 4)
	c := p.Clone()
	c.Transform(sdf.Translate3d(vec(1, 0, 0)))

	requirePointsInDelta(t, square(0), p.Points())
	require.InDelta(t, 1, c.Points()[0].X, tol)
	require.Equal(t, 4, c.OrderIndex())
}
