package flow

import (
	"time"

	"github.com/flowsmith/flowsmith/pkg/canvas"
)

// Node is the stable form of a canvas node: the four fields that define
// flow behavior, with all editor state stripped.
type Node struct {
	ID       string          `json:"id" yaml:"id" bson:"id"`
	Type     string          `json:"type" yaml:"type" bson:"type"`
	Position canvas.Position `json:"position" yaml:"position" bson:"position"`
	Data     map[string]any  `json:"data,omitempty" yaml:"data,omitempty" bson:"data,omitempty"`
}

// Edge is the stable form of a canvas edge.
type Edge struct {
	ID           string `json:"id" yaml:"id" bson:"id"`
	Source       string `json:"source" yaml:"source" bson:"source"`
	Target       string `json:"target" yaml:"target" bson:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty" bson:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty" bson:"targetHandle,omitempty"`
}

// Flow is a saved flow document: the stable node and edge lists plus the
// identity and bookkeeping fields the store maintains. It is the unit of
// persistence, transport and export.
type Flow struct {
	ID        string    `json:"id" yaml:"id" bson:"_id"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	Nodes     []Node    `json:"nodes" yaml:"nodes" bson:"nodes"`
	Edges     []Edge    `json:"edges" yaml:"edges" bson:"edges"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// Entry returns the flow's starting node, the single node with no
// incoming edges. The second result is false when the flow has no nodes
// or no unique entry (an unvalidated flow).
func (f Flow) Entry() (Node, bool) {
	if len(f.Nodes) == 0 {
		return Node{}, false
	}
	incoming := make(map[string]int, len(f.Nodes))
	for _, e := range f.Edges {
		incoming[e.Target]++
	}
	var entry Node
	found := 0
	for _, n := range f.Nodes {
		if incoming[n.ID] == 0 {
			entry = n
			found++
		}
	}
	if found != 1 {
		return Node{}, false
	}
	return entry, true
}

// NodeByID looks a stable node up by id.
func (f Flow) NodeByID(id string) (Node, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Outgoing returns the edges leaving the given node, in document order.
func (f Flow) Outgoing(nodeID string) []Edge {
	var out []Edge
	for _, e := range f.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}
