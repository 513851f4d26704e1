package scene

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec3 is a 3D vector as written in scene descriptions.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec converts v to an sdfx vector.
func (v Vec3) Vec() v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// ---------------------------------------------------------------------------
// Layer
// ---------------------------------------------------------------------------

// DefaultOpacity is the opacity of a layer that does not set one.
const DefaultOpacity = 1.0

// LayerData is a flat rectangle in its own XY plane with its minimum corner
// at the origin. It faces +Z before placement.
type LayerData struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Color   string  `json:"color,omitempty"` // "#rrggbb"
	Opacity float64 `json:"opacity"`
}

func (LayerData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData places its children. Created by the (place ...) form.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
	Scale       *Vec3 `json:"scale,omitempty"`
}

func (TransformData) nodeData() {}

// Matrix returns the local placement T·Rz·Ry·Rx·S. Unset components are
// the identity.
func (td TransformData) Matrix() sdf.M44 {
	m := sdf.Identity3d()
	if td.Translation != nil {
		m = m.Mul(sdf.Translate3d(td.Translation.Vec()))
	}
	if r := td.Rotation; r != nil {
		m = m.Mul(sdf.RotateZ(r.Z * math.Pi / 180.0)).
			Mul(sdf.RotateY(r.Y * math.Pi / 180.0)).
			Mul(sdf.RotateX(r.X * math.Pi / 180.0))
	}
	if td.Scale != nil {
		m = m.Mul(sdf.Scale3d(td.Scale.Vec()))
	}
	return m
}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData is a logical grouping. Created by the (group ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
