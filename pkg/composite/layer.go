package composite

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/stratum/pkg/polygon"
	"github.com/chazu/stratum/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
)

// ErrTypeInvalidScene is returned when a scene cannot be walked.
const ErrTypeInvalidScene = "invalid_scene"

// Layer is one layer node reached while walking a scene, together with
// where it ends up in the shared space. A layer node reached through two
// placements yields two Layers.
type Layer struct {
	ID        scene.NodeID
	Name      string
	Data      scene.LayerData
	Order     int
	Placement sdf.M44
	Inverse   sdf.M44
}

// Rect returns the layer's rectangle in its own local plane.
func (l *Layer) Rect() polygon.Rect {
	return polygon.Rect{Width: l.Data.Width, Height: l.Data.Height}
}

// matrixStack accumulates placements during scene traversal. Each frame
// holds the product of every transform above it.
type matrixStack struct {
	frames []sdf.M44
}

func (ms *matrixStack) top() sdf.M44 {
	if len(ms.frames) == 0 {
		return sdf.Identity3d()
	}
	return ms.frames[len(ms.frames)-1]
}

func (ms *matrixStack) push(local sdf.M44) {
	ms.frames = append(ms.frames, ms.top().Mul(local))
}

func (ms *matrixStack) pop() {
	if len(ms.frames) > 0 {
		ms.frames = ms.frames[:len(ms.frames)-1]
	}
}

// walker collects layers in paint order.
type walker struct {
	scene  *scene.Scene
	stack  matrixStack
	onPath map[scene.NodeID]bool
	layers []*Layer
}

// CollectLayers walks the scene roots depth-first and returns every
// reachable layer in paint order. The scene is never mutated.
func CollectLayers(s *scene.Scene) ([]*Layer, error) {
	if s == nil {
		return nil, nil
	}

	w := &walker{
		scene:  s,
		onPath: make(map[scene.NodeID]bool),
	}
	for _, rootID := range s.Roots {
		root := s.Get(rootID)
		if root == nil {
			continue
		}
		if err := w.walkNode(root); err != nil {
			return nil, errors.New("walking scene root failed").
				WithType(errors.Type(err)).
				WithTag("root", rootID.Short()).
				Wrap(err)
		}
	}
	return w.layers, nil
}

func (w *walker) walkNode(n *scene.Node) error {
	if w.onPath[n.ID] {
		return errors.New("scene contains a cycle").
			WithType(ErrTypeInvalidScene).
			WithTag("node", n.ID.Short())
	}
	w.onPath[n.ID] = true
	defer delete(w.onPath, n.ID)

	switch n.Kind {
	case scene.NodeLayer:
		return w.handleLayer(n)

	case scene.NodeTransform:
		return w.handleTransform(n)

	case scene.NodeGroup:
		return w.walkChildren(n)

	default:
		return errors.Newf("unknown node kind: %v", n.Kind).
			WithType(ErrTypeInvalidScene).
			WithTag("node", n.ID.Short())
	}
}

func (w *walker) handleLayer(n *scene.Node) error {
	data, ok := n.Data.(scene.LayerData)
	if !ok {
		return errors.Newf("layer node has unexpected data type %T", n.Data).
			WithType(ErrTypeInvalidScene).
			WithTag("node", n.ID.Short())
	}

	name := n.Name
	if name == "" {
		name = n.ID.Short()
	}
	placement := w.stack.top()
	w.layers = append(w.layers, &Layer{
		ID:        n.ID,
		Name:      name,
		Data:      data,
		Order:     len(w.layers),
		Placement: placement,
		Inverse:   placement.Inverse(),
	})
	return nil
}

func (w *walker) handleTransform(n *scene.Node) error {
	td, ok := n.Data.(scene.TransformData)
	if !ok {
		return errors.Newf("transform node has unexpected data type %T", n.Data).
			WithType(ErrTypeInvalidScene).
			WithTag("node", n.ID.Short())
	}

	w.stack.push(td.Matrix())
	defer w.stack.pop()
	return w.walkChildren(n)
}

func (w *walker) walkChildren(n *scene.Node) error {
	for _, child := range w.scene.Children(n) {
		if err := w.walkNode(child); err != nil {
			return err
		}
	}
	return nil
}
