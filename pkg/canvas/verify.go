package canvas

import (
	"errors"
	"fmt"
)

// Structural integrity errors reported by Verify.
var (
	// ErrEmptyNodeID is returned when a node has no id.
	ErrEmptyNodeID = errors.New("node with empty id")
	// ErrDuplicateNodeID is returned when two nodes share an id.
	ErrDuplicateNodeID = errors.New("duplicate node id")
	// ErrDuplicateEdgeID is returned when two edges share an id.
	ErrDuplicateEdgeID = errors.New("duplicate edge id")
	// ErrUnknownEndpoint is returned when an edge references a node id
	// that is not on the canvas.
	ErrUnknownEndpoint = errors.New("edge references unknown node")
	// ErrSelfLoop is returned when an edge connects a node to itself.
	ErrSelfLoop = errors.New("edge connects node to itself")
)

// Verify checks the structural integrity Validate takes for granted:
// unique non-empty node ids, unique edge ids, and edges whose endpoints
// exist and differ. Snapshots arriving over the wire should be verified
// before validation; snapshots built in process with the editor's own
// invariants can skip it.
func (s Snapshot) Verify() error {
	ids := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: %w", i, ErrEmptyNodeID)
		}
		if ids[n.ID] {
			return fmt.Errorf("node %q: %w", n.ID, ErrDuplicateNodeID)
		}
		ids[n.ID] = true
	}

	edgeIDs := make(map[string]bool, len(s.Edges))
	for _, e := range s.Edges {
		if e.ID != "" {
			if edgeIDs[e.ID] {
				return fmt.Errorf("edge %q: %w", e.ID, ErrDuplicateEdgeID)
			}
			edgeIDs[e.ID] = true
		}
		if !ids[e.Source] {
			return fmt.Errorf("edge %q source %q: %w", e.ID, e.Source, ErrUnknownEndpoint)
		}
		if !ids[e.Target] {
			return fmt.Errorf("edge %q target %q: %w", e.ID, e.Target, ErrUnknownEndpoint)
		}
		if e.Source == e.Target {
			return fmt.Errorf("edge %q: %w", e.ID, ErrSelfLoop)
		}
	}
	return nil
}
