package canvas

import "fmt"

// Verdict is the outcome of validating a snapshot. Reason is a
// display-ready sentence for the editor's error toast; it is empty when
// the snapshot is valid.
type Verdict struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Validate checks whether a snapshot forms a publishable flow. It is pure:
// the same snapshot always yields the same verdict and the input is never
// mutated.
//
// The rules, in order:
//
//  1. A canvas with zero or one node is always valid.
//  2. Every node must be connected to at least one edge.
//  3. Exactly one node may have zero incoming edges (the starting node).
//
// Validate assumes node ids are unique and edges reference existing nodes;
// snapshots from untrusted sources should pass Verify first.
func Validate(s Snapshot) Verdict {
	if len(s.Nodes) <= 1 {
		return Verdict{Valid: true}
	}

	disconnected := s.Disconnected()
	switch {
	case len(disconnected) > 1:
		return invalid("%d nodes are completely disconnected; connect all nodes", len(disconnected))
	case len(disconnected) == 1:
		return invalid("1 node is disconnected from the main flow")
	}

	entries := s.EntryCandidates()
	switch {
	case len(entries) > 1:
		return invalid("%d nodes have no incoming connections; only one starting node allowed", len(entries))
	case len(entries) == 0:
		// Every node is a target of some edge, so the graph is cyclic.
		return invalid("no starting node found; at least one node must have zero incoming connections")
	}

	return Verdict{Valid: true}
}

func invalid(format string, args ...any) Verdict {
	return Verdict{Valid: false, Reason: fmt.Sprintf(format, args...)}
}
