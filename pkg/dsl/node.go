package dsl

import "github.com/flowsmith/flowsmith/pkg/canvas"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    canvas.Node
	builder *Builder
}

// Text sets the message text shown when the node plays and marks the
// node as a message node.
func (n *NodeBuilder) Text(text string) *NodeBuilder {
	n.node.Type = canvas.NodeTypeMessage
	n.data()["text"] = text
	return n
}

// Type overrides the node type. Nodes default to message.
func (n *NodeBuilder) Type(nodeType string) *NodeBuilder {
	n.node.Type = nodeType
	return n
}

// At positions the node on the canvas.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = canvas.Position{X: x, Y: y}
	return n
}

// Data sets an arbitrary data entry on the node.
func (n *NodeBuilder) Data(key string, value any) *NodeBuilder {
	n.data()[key] = value
	return n
}

// To adds an edge from this node to the target node.
// The edge id is derived from the endpoints.
func (n *NodeBuilder) To(target string) *NodeBuilder {
	n.builder.edges = append(n.builder.edges, canvas.Edge{
		ID:     "e-" + n.node.ID + "-" + target,
		Source: n.node.ID,
		Target: target,
	})
	return n
}

// Branch adds an edge leaving this node through the named source
// handle. Handles become the choice labels when a flow is played.
func (n *NodeBuilder) Branch(handle, target string) *NodeBuilder {
	n.builder.edges = append(n.builder.edges, canvas.Edge{
		ID:           "e-" + n.node.ID + "-" + target,
		Source:       n.node.ID,
		Target:       target,
		SourceHandle: handle,
	})
	return n
}

func (n *NodeBuilder) data() map[string]any {
	if n.node.Data == nil {
		n.node.Data = make(map[string]any)
	}
	return n.node.Data
}

// Build returns the underlying canvas.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() canvas.Node {
	return n.node
}
