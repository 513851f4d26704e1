package scene

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestNewScene(t *testing.T) {
	s := New()
	if s.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if s.NameIndex == nil {
		t.Fatal("NameIndex map should be initialized")
	}
	if s.NodeCount() != 0 {
		t.Errorf("empty scene should have 0 nodes, got %d", s.NodeCount())
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	s := New()

	id := NewNodeID("layer/card")
	s.AddNode(&Node{
		ID:   id,
		Kind: NodeLayer,
		Name: "card",
		Data: LayerData{Width: 100, Height: 60, Opacity: 1},
	})
	s.AddRoot(id)

	if s.NodeCount() != 1 {
		t.Errorf("node count = %d, want 1", s.NodeCount())
	}
	if found := s.Lookup("card"); found == nil || found.ID != id {
		t.Fatal("Lookup('card') returned the wrong node")
	}
	if must := s.MustLookup("card"); must.ID != id {
		t.Errorf("MustLookup returned wrong node")
	}
	if s.Lookup("nonexistent") != nil {
		t.Error("Lookup should return nil for missing name")
	}
	if got := s.Get(id); got == nil || got.Name != "card" {
		t.Errorf("Get by ID failed")
	}
	if len(s.Roots) != 1 || s.Roots[0] != id {
		t.Errorf("roots = %v, want [%s]", s.Roots, id.Short())
	}
	if layers := s.Layers(); len(layers) != 1 {
		t.Errorf("Layers() count = %d, want 1", len(layers))
	}
}

func TestMustLookupPanics(t *testing.T) {
	s := New()
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLookup should panic on missing name")
		}
	}()
	s.MustLookup("missing")
}

func TestChildrenKeepsOrderAndSkipsDangling(t *testing.T) {
	s := New()
	a := NewNodeID("layer/a")
	b := NewNodeID("layer/b")
	parent := NewNodeID("group/root")

	s.AddNode(&Node{ID: a, Kind: NodeLayer, Name: "a", Data: LayerData{Width: 1, Height: 1}})
	s.AddNode(&Node{ID: b, Kind: NodeLayer, Name: "b", Data: LayerData{Width: 1, Height: 1}})
	s.AddNode(&Node{
		ID: parent, Kind: NodeGroup, Name: "root",
		Children: []NodeID{b, NewNodeID("layer/missing"), a},
		Data:     GroupData{},
	})

	children := s.Children(s.Get(parent))
	if len(children) != 2 {
		t.Fatalf("Children count = %d, want 2", len(children))
	}
	if children[0].Name != "b" || children[1].Name != "a" {
		t.Errorf("children = [%s %s], want [b a]", children[0].Name, children[1].Name)
	}
}

func TestNodeIDDeterministic(t *testing.T) {
	a := NewNodeID("layer/front")
	b := NewNodeID("layer/front")
	if a != b {
		t.Error("same path should produce same NodeID")
	}
	if a == NewNodeID("layer/back") {
		t.Error("different paths should produce different NodeIDs")
	}
}

func TestNodeIDZero(t *testing.T) {
	var id NodeID
	if !id.IsZero() {
		t.Error("zero-value NodeID should be zero")
	}
	id = NewNodeID("something")
	if id.IsZero() {
		t.Error("non-zero NodeID should not be zero")
	}
	if len(id.Short()) != 8 {
		t.Errorf("Short() len = %d, want 8", len(id.Short()))
	}
}

func TestNodeIDText(t *testing.T) {
	id := NewNodeID("layer/card")
	b, err := id.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var back NodeID
	if err := back.UnmarshalText(b); err != nil {
		t.Fatal(err)
	}
	if back != id {
		t.Errorf("round trip = %s, want %s", back, id)
	}
}

func TestStringers(t *testing.T) {
	if NodeLayer.String() != "layer" {
		t.Errorf("NodeLayer.String() = %q", NodeLayer.String())
	}
	if NodeKind(99).String() != "unknown" {
		t.Errorf("NodeKind(99).String() = %q", NodeKind(99).String())
	}
	if SeverityWarning.String() != "warning" {
		t.Errorf("SeverityWarning.String() = %q", SeverityWarning.String())
	}
}

func TestNodeDataInterface(t *testing.T) {
	var _ NodeData = LayerData{}
	var _ NodeData = TransformData{}
	var _ NodeData = GroupData{}
}

func TestTransformMatrix(t *testing.T) {
	near := func(t *testing.T, got, want v3.Vec) {
		t.Helper()
		if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 || math.Abs(got.Z-want.Z) > 1e-9 {
			t.Errorf("got %v, want %v", got, want)
		}
	}

	tests := []struct {
		name string
		td   TransformData
		in   v3.Vec
		want v3.Vec
	}{
		{"identity", TransformData{}, v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{X: 1, Y: 2, Z: 3}},
		{
			"translate",
			TransformData{Translation: &Vec3{X: 10, Y: 0, Z: -5}},
			v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{X: 11, Y: 2, Z: -2},
		},
		{
			"rotate about z",
			TransformData{Rotation: &Vec3{Z: 90}},
			v3.Vec{X: 1}, v3.Vec{Y: 1},
		},
		{
			"scale then rotate then translate",
			TransformData{
				Translation: &Vec3{X: 0, Y: 0, Z: 4},
				Rotation:    &Vec3{Z: 90},
				Scale:       &Vec3{X: 2, Y: 1, Z: 1},
			},
			v3.Vec{X: 1}, v3.Vec{Y: 2, Z: 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			near(t, tt.td.Matrix().MulPosition(tt.in), tt.want)
		})
	}
}
