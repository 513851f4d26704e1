// Package composite turns a scene into an ordered list of draw calls. It
// places every layer in a shared space, sorts the resulting polygons with
// a BSP tree and hands each visible fragment back to a Drawer in the
// layer's own coordinates.
package composite

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chazu/stratum/pkg/bsp"
	"github.com/chazu/stratum/pkg/polygon"
	"github.com/chazu/stratum/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrTypeDraw tags a fragment the Drawer refused.
const ErrTypeDraw = "draw_failed"

// Drawer is the external draw primitive. It receives every quad of one
// fragment at once, in the layer's local coordinates; a triangle repeats
// its last corner. A Drawer that returns an error must not have drawn any
// of the quads.
type Drawer interface {
	DrawFragment(layer *Layer, quads []polygon.Quad) error
}

// DrawerFunc adapts a function to a Drawer.
type DrawerFunc func(layer *Layer, quads []polygon.Quad) error

func (f DrawerFunc) DrawFragment(layer *Layer, quads []polygon.Quad) error {
	return f(layer, quads)
}

// Point is a JSON friendly vector.
type Point [3]float64

func point(v v3.Vec) Point {
	return Point{v.X, v.Y, v.Z}
}

// Draw is one fragment in back-to-front order.
type Draw struct {
	Layer      string     `json:"layer"`
	OrderIndex int        `json:"order_index"`
	Split      bool       `json:"split"`
	Points     []Point    `json:"points"`
	Quads      [][4]Point `json:"quads"`
}

// Stats summarises a frame.
type Stats struct {
	Layers        int           `json:"layers"`
	Clipped       int           `json:"clipped"`
	Polygons      int           `json:"polygons"`
	Splits        int           `json:"splits"`
	Fragments     int           `json:"fragments"`
	Skipped       int           `json:"skipped"`
	BuildDuration time.Duration `json:"build_duration"`
}

// Frame is the result of compositing a scene.
type Frame struct {
	Draws []Draw `json:"draws"`
	Stats Stats  `json:"stats"`
}

// Compositor sorts scene layers for painting.
type Compositor struct {
	// Viewer decides the traversal order. nil means Along(+Z).
	Viewer bsp.Viewer

	// Frustum planes clip layers in the shared space before sorting.
	Frustum []polygon.Plane

	// Drawer receives every fragment. It may be nil, in which case only
	// the Frame is produced.
	Drawer Drawer
}

func (c *Compositor) viewer() bsp.Viewer {
	if c.Viewer == nil {
		return bsp.Along(v3.Vec{Z: 1})
	}
	return c.Viewer
}

// Composite places, clips and sorts the layers of s, then draws them back
// to front. A layer that cannot be turned into a polygon or a failed sort
// aborts the frame. A fragment the Drawer rejects is logged and skipped.
func (c *Compositor) Composite(s *scene.Scene) (*Frame, error) {
	frame := &Frame{}
	if s == nil {
		return frame, nil
	}

	layers, err := CollectLayers(s)
	if err != nil {
		return nil, err
	}

	viewer := c.viewer()
	label := viewerName(viewer)

	polys := make([]*polygon.Polygon, 0, len(layers))
	for _, l := range layers {
		p, visible, err := polygon.FromQuad(l.Rect(), l.Placement, c.Frustum, l.Order, l)
		if err != nil {
			return nil, errors.New("placing layer failed").
				WithType(errors.Type(err)).
				WithTag("layer", l.Name).
				Wrap(err)
		}
		if !visible {
			frame.Stats.Clipped++
			continue
		}
		polys = append(polys, p)
	}
	frame.Stats.Layers = len(layers)
	frame.Stats.Polygons = len(polys)
	instrumentLayers(label, len(layers), frame.Stats.Clipped)

	start := time.Now()
	tree, err := bsp.Build(polys)
	frame.Stats.BuildDuration = time.Since(start)
	if err != nil {
		return nil, errors.New("sorting layers failed").
			WithType(errors.Type(err)).
			WithTag("layers", len(layers)).
			Wrap(err)
	}
	frame.Stats.Splits = tree.Splits()
	instrumentBuild(label, start, tree.Splits())

	tree.Traverse(viewer, &renderVisitor{
		drawer: c.Drawer,
		frame:  frame,
		label:  label,
	})

	logs.WithTag("layers", frame.Stats.Layers).
		WithTag("clipped", frame.Stats.Clipped).
		WithTag("splits", frame.Stats.Splits).
		WithTag("fragments", frame.Stats.Fragments).
		WithTag("skipped", frame.Stats.Skipped).
		Debug("frame composited")

	return frame, nil
}

// renderVisitor draws fragments as the tree hands them out. Each fragment
// is cloned before being mapped back to layer space so the tree stays
// intact.
type renderVisitor struct {
	drawer Drawer
	frame  *Frame
	label  string
}

func (r *renderVisitor) Visit(p *polygon.Polygon) {
	layer, ok := p.Source().(*Layer)
	if !ok {
		return
	}

	draw := Draw{
		Layer:      layer.Name,
		OrderIndex: p.OrderIndex(),
		Split:      p.IsSplit(),
	}
	for _, pt := range p.Points() {
		draw.Points = append(draw.Points, point(pt))
	}

	local := p.Clone()
	local.ToSourceSpace(layer.Inverse)

	var quads []polygon.Quad
	fan := local.Fan()
	for fan.Next() {
		quads = append(quads, fan.Quad())
	}

	if r.drawer != nil {
		if err := r.drawer.DrawFragment(layer, quads); err != nil {
			r.skip(layer, p, err)
			return
		}
	}
	for _, quad := range quads {
		draw.Quads = append(draw.Quads, [4]Point{
			point(quad[0]), point(quad[1]), point(quad[2]), point(quad[3]),
		})
	}

	r.frame.Draws = append(r.frame.Draws, draw)
	r.frame.Stats.Fragments++
	instrumentFragment(r.label)
}

func (r *renderVisitor) skip(layer *Layer, p *polygon.Polygon, err error) {
	r.frame.Stats.Skipped++
	instrumentSkippedFragment(r.label, err)

	logs.WithTag("layer", layer.Name).
		WithTag("order_index", p.OrderIndex()).
		Warn(errors.New("drawing fragment failed").
			WithType(ErrTypeDraw).
			Wrap(err))
}

func viewerName(v bsp.Viewer) string {
	switch v.(type) {
	case bsp.AxisViewer:
		return "axis"
	case bsp.EyeViewer:
		return "eye"
	default:
		return "custom"
	}
}
