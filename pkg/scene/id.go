package scene

import "github.com/google/uuid"

// namespace is the UUID namespace all node IDs are derived in.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("stratum/scene"))

// NodeID is a content-addressed identifier for scene nodes. The same
// creation path always yields the same ID.
type NodeID uuid.UUID

// NewNodeID derives the ID for the node created at path, for example
// "layer/card" or "place/card/0".
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(namespace, []byte(path)))
}

func (id NodeID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first eight hex digits of the ID.
func (id NodeID) Short() string {
	return id.String()[:8]
}

// IsZero reports whether id is the zero ID.
func (id NodeID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id NodeID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *NodeID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
