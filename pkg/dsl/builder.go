package dsl

import (
	"fmt"

	"github.com/flowsmith/flowsmith/pkg/canvas"
)

// Builder accumulates nodes and edges and compiles them into
// a canvas snapshot.
type Builder struct {
	order []string
	nodes map[string]*NodeBuilder
	edges []canvas.Edge
}

// New creates an empty snapshot builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add declares a node in the snapshot and returns its builder.
// Adding an id twice returns the existing node builder, so a node
// can be declared first and configured later.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: canvas.Node{
			ID:   id,
			Type: canvas.NodeTypeMessage,
		},
		builder: b,
	}
	b.order = append(b.order, id)
	b.nodes[id] = nb
	return nb
}

// Message declares a message node with the given text.
func (b *Builder) Message(id, text string) *NodeBuilder {
	return b.Add(id).Text(text)
}

// Build compiles the declared nodes and edges into a snapshot and
// verifies its structural integrity: node ids are unique, edges touch
// declared nodes and no edge loops back onto its source. Nodes keep
// their declaration order.
func (b *Builder) Build() (canvas.Snapshot, error) {
	snap := canvas.Snapshot{
		Nodes: make([]canvas.Node, 0, len(b.order)),
		Edges: append([]canvas.Edge(nil), b.edges...),
	}
	for _, id := range b.order {
		snap.Nodes = append(snap.Nodes, b.nodes[id].node)
	}

	if err := snap.Verify(); err != nil {
		return canvas.Snapshot{}, fmt.Errorf("failed to build snapshot: %w", err)
	}

	return snap, nil
}
