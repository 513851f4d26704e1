package scene

import (
	"fmt"
	"io"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// ErrTypeInvalidDocument marks a scene document that cannot be turned into
// a scene.
const ErrTypeInvalidDocument = "invalid_scene_document"

// Document is the JSON form of a flat scene: a list of placed layers in
// paint order.
type Document struct {
	Name   string          `json:"name"`
	Layers []DocumentLayer `json:"layers"`
}

// DocumentLayer is one placed layer of a Document.
type DocumentLayer struct {
	Name      string   `json:"name"`
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
	Color     string   `json:"color,omitempty"`
	Opacity   *float64 `json:"opacity,omitempty"`
	Translate *Vec3    `json:"translate,omitempty"`
	Rotate    *Vec3    `json:"rotate,omitempty"`
	Scale     *Vec3    `json:"scale,omitempty"`
}

// Decode reads a JSON Document from r and builds a scene from it. All
// layers sit under a single root group named after the document. A placed
// layer becomes a transform node over the layer node.
func Decode(r io.Reader) (*Scene, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.New("decoding scene document failed").
			WithType(ErrTypeInvalidDocument).
			Wrap(err)
	}
	return FromDocument(doc)
}

// FromDocument builds a scene from doc.
func FromDocument(doc Document) (*Scene, error) {
	s := New()
	s.Name = doc.Name

	groupName := doc.Name
	if groupName == "" {
		groupName = "scene"
	}
	group := &Node{
		ID:   NewNodeID("group/" + groupName),
		Kind: NodeGroup,
		Name: groupName,
		Data: GroupData{Description: doc.Name},
	}

	seen := make(map[string]bool, len(doc.Layers))
	for i, l := range doc.Layers {
		if l.Name == "" {
			return nil, errors.New("scene document layer has no name").
				WithType(ErrTypeInvalidDocument).
				WithTag("index", i)
		}
		if seen[l.Name] || l.Name == groupName {
			return nil, errors.New("scene document reuses a name").
				WithType(ErrTypeInvalidDocument).
				WithTag("index", i).
				WithTag("name", l.Name)
		}
		seen[l.Name] = true

		opacity := DefaultOpacity
		if l.Opacity != nil {
			opacity = *l.Opacity
		}
		layer := &Node{
			ID:   NewNodeID("layer/" + l.Name),
			Kind: NodeLayer,
			Name: l.Name,
			Data: LayerData{
				Width:   l.Width,
				Height:  l.Height,
				Color:   l.Color,
				Opacity: opacity,
			},
		}
		s.AddNode(layer)

		if l.Translate == nil && l.Rotate == nil && l.Scale == nil {
			group.Children = append(group.Children, layer.ID)
			continue
		}
		place := &Node{
			ID:       NewNodeID(fmt.Sprintf("place/%s/%d", l.Name, i)),
			Kind:     NodeTransform,
			Children: []NodeID{layer.ID},
			Data: TransformData{
				Translation: l.Translate,
				Rotation:    l.Rotate,
				Scale:       l.Scale,
			},
		}
		s.AddNode(place)
		group.Children = append(group.Children, place.ID)
	}

	s.AddNode(group)
	s.AddRoot(group.ID)
	return s, nil
}
