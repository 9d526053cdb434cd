package flow

import "testing"

func chainFlow() Flow {
	return Flow{
		ID: "f1",
		Nodes: []Node{
			{ID: "a", Type: "message", Data: map[string]any{"text": "one"}},
			{ID: "b", Type: "message", Data: map[string]any{"text": "two"}},
			{ID: "c", Type: "message", Data: map[string]any{"text": "three"}},
		},
		Edges: []Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "b", Target: "c"},
		},
	}
}

func TestEntry(t *testing.T) {
	entry, ok := chainFlow().Entry()
	if !ok {
		t.Fatal("Entry() not found")
	}
	if entry.ID != "a" {
		t.Errorf("Entry() = %s, want a", entry.ID)
	}
}

func TestEntry_NoUniqueEntry(t *testing.T) {
	f := Flow{
		Nodes: []Node{{ID: "a"}, {ID: "b"}},
		// No edges: both nodes qualify, so there is no single entry.
	}
	if _, ok := f.Entry(); ok {
		t.Error("Entry() = ok for two candidates, want miss")
	}

	if _, ok := (Flow{}).Entry(); ok {
		t.Error("Entry() = ok for empty flow, want miss")
	}
}

func TestOutgoingAndNodeByID(t *testing.T) {
	f := chainFlow()

	out := f.Outgoing("a")
	if len(out) != 1 || out[0].Target != "b" {
		t.Errorf("Outgoing(a) = %v, want edge to b", out)
	}
	if got := f.Outgoing("c"); len(got) != 0 {
		t.Errorf("Outgoing(c) = %v, want none", got)
	}

	if n, ok := f.NodeByID("b"); !ok || n.Data["text"] != "two" {
		t.Errorf("NodeByID(b) = (%+v, %v)", n, ok)
	}
	if _, ok := f.NodeByID("nope"); ok {
		t.Error("NodeByID(nope) found a node")
	}
}
