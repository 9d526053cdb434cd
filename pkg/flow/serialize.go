package flow

import "github.com/flowsmith/flowsmith/pkg/canvas"

// FromSnapshot projects an editor snapshot onto the stable form. Only the
// fields that define flow behavior survive; selection, drag state and
// measured dimensions are dropped. Node and edge order is preserved, and
// the snapshot is never mutated: payload maps are deep-copied so later
// edits on the canvas cannot leak into a saved flow.
//
// FromSnapshot does not validate. Saving an invalid flow is the caller's
// decision (drafts are legitimate); see canvas.Validate.
func FromSnapshot(s canvas.Snapshot) Flow {
	f := Flow{
		Nodes: make([]Node, len(s.Nodes)),
		Edges: make([]Edge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		f.Nodes[i] = Node{
			ID:       n.ID,
			Type:     n.Type,
			Position: n.Position,
			Data:     copyData(n.Data),
		}
	}
	for i, e := range s.Edges {
		f.Edges[i] = Edge{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
		}
	}
	return f
}

// Snapshot re-hydrates the stable form into an editor snapshot. Editor
// state starts zeroed; round-tripping through FromSnapshot preserves the
// stable fields exactly.
func (f Flow) Snapshot() canvas.Snapshot {
	s := canvas.Snapshot{
		Nodes: make([]canvas.Node, len(f.Nodes)),
		Edges: make([]canvas.Edge, len(f.Edges)),
	}
	for i, n := range f.Nodes {
		s.Nodes[i] = canvas.Node{
			ID:       n.ID,
			Type:     n.Type,
			Position: n.Position,
			Data:     copyData(n.Data),
		}
	}
	for i, e := range f.Edges {
		s.Edges[i] = canvas.Edge{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
		}
	}
	return s
}

// copyData deep-copies a payload map. Values are JSON-shaped (maps,
// slices, scalars), so recursing on those two container types is enough.
func copyData(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return copyData(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
