package canvas

// ConnectedIDs returns the set of node ids that appear as the source or
// target of at least one edge.
func (s Snapshot) ConnectedIDs() map[string]bool {
	connected := make(map[string]bool, len(s.Nodes))
	for _, e := range s.Edges {
		connected[e.Source] = true
		connected[e.Target] = true
	}
	return connected
}

// Disconnected returns the nodes no edge touches, in snapshot order.
func (s Snapshot) Disconnected() []Node {
	connected := s.ConnectedIDs()
	var out []Node
	for _, n := range s.Nodes {
		if !connected[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// InDegrees counts incoming edges per node id. Every node appears in the
// result, including those with zero incoming edges.
func (s Snapshot) InDegrees() map[string]int {
	degrees := make(map[string]int, len(s.Nodes))
	for _, n := range s.Nodes {
		degrees[n.ID] = 0
	}
	for _, e := range s.Edges {
		if _, ok := degrees[e.Target]; ok {
			degrees[e.Target]++
		}
	}
	return degrees
}

// EntryCandidates returns the nodes with no incoming edges, in snapshot
// order. A valid flow has exactly one; it is the node the conversation
// starts from.
func (s Snapshot) EntryCandidates() []Node {
	degrees := s.InDegrees()
	var out []Node
	for _, n := range s.Nodes {
		if degrees[n.ID] == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Outgoing returns the edges leaving the given node, in snapshot order.
func (s Snapshot) Outgoing(nodeID string) []Edge {
	var out []Edge
	for _, e := range s.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// NodeByID looks a node up by id. The second result is false when the id
// is not on the canvas.
func (s Snapshot) NodeByID(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
