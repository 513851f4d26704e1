// Package mesh collects composited fragments into triangle meshes. A
// Builder is a composite.Drawer that places each local quad back in the
// shared space, so a frame can be exported as STL or uploaded to a
// renderer as flat buffers.
package mesh

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/stratum/pkg/composite"
	"github.com/chazu/stratum/pkg/polygon"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Error types.
const (
	ErrTypeDegenerateTriangle = "degenerate_triangle"
	ErrTypeEmpty              = "mesh_empty"
	ErrTypeSave               = "mesh_save_failed"
)

// minArea is the smallest doubled triangle area accepted.
const minArea = 1e-12

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`        // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`         // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`         // [i0,i1,i2, ...] triangles
	Layer    string    `json:"layer"`           // which scene layer this came from
	Color    string    `json:"color,omitempty"` // the layer's "#rrggbb"
	Opacity  float64   `json:"opacity"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

func (m *Mesh) add(tri *sdf.Triangle3) {
	n := tri.Normal()
	nx := float32(n.X)
	ny := float32(n.Y)
	nz := float32(n.Z)

	base := uint32(m.VertexCount())
	for j := 0; j < 3; j++ {
		v := tri[j]
		m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
		m.Normals = append(m.Normals, nx, ny, nz)
		m.Indices = append(m.Indices, base+uint32(j))
	}
}

// Compile-time interface check.
var _ composite.Drawer = (*Builder)(nil)

// Builder accumulates drawn fragments into one mesh per layer, in the order the
// layers are first drawn.
type Builder struct {
	meshes    []*Mesh
	byOrder   map[int]*Mesh
	triangles []*sdf.Triangle3
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{byOrder: make(map[int]*Mesh)}
}

// DrawFragment places every quad with the layer's placement and emits two
// triangles per quad, or one for a fan tail. Nothing of the fragment is
// recorded when any triangle has no area.
func (b *Builder) DrawFragment(layer *composite.Layer, quads []polygon.Quad) error {
	var tris []*sdf.Triangle3
	for qi, quad := range quads {
		var pts [4]v3.Vec
		for i, p := range quad {
			pts[i] = layer.Placement.MulPosition(p)
		}

		quadTris := []*sdf.Triangle3{{pts[0], pts[1], pts[2]}}
		if !quad.IsTriangle() {
			quadTris = append(quadTris, &sdf.Triangle3{pts[0], pts[2], pts[3]})
		}
		for i, tri := range quadTris {
			if area := tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0])).Length(); area < minArea {
				return errors.New("triangle has no area").
					WithType(ErrTypeDegenerateTriangle).
					WithTag("layer", layer.Name).
					WithTag("quad", qi).
					WithTag("triangle", i)
			}
		}
		tris = append(tris, quadTris...)
	}
	if len(tris) == 0 {
		return nil
	}

	m := b.meshFor(layer)
	for _, tri := range tris {
		m.add(tri)
	}
	b.triangles = append(b.triangles, tris...)
	return nil
}

func (b *Builder) meshFor(layer *composite.Layer) *Mesh {
	if m, ok := b.byOrder[layer.Order]; ok {
		return m
	}
	m := &Mesh{
		Layer:   layer.Name,
		Color:   layer.Data.Color,
		Opacity: layer.Data.Opacity,
	}
	b.byOrder[layer.Order] = m
	b.meshes = append(b.meshes, m)
	return m
}

// Meshes returns the meshes built so far.
func (b *Builder) Meshes() []*Mesh {
	return b.meshes
}

// Triangles returns every emitted triangle in draw order.
func (b *Builder) Triangles() []*sdf.Triangle3 {
	return b.triangles
}

// SaveSTL writes all triangles to an STL file.
func (b *Builder) SaveSTL(path string) error {
	if len(b.triangles) == 0 {
		return errors.New("nothing to save").
			WithType(ErrTypeEmpty).
			WithTag("path", path)
	}
	if err := render.SaveSTL(path, b.triangles); err != nil {
		return errors.New("saving stl failed").
			WithType(ErrTypeSave).
			WithTag("path", path).
			Wrap(err)
	}
	return nil
}
