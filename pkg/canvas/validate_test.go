package canvas

import (
	"reflect"
	"testing"
)

func node(id string) Node {
	return Node{ID: id, Type: NodeTypeMessage, Data: map[string]any{"text": "hi"}}
}

func edge(source, target string) Edge {
	return Edge{ID: "e-" + source + "-" + target, Source: source, Target: target}
}

func TestValidate_EmptyCanvas(t *testing.T) {
	v := Validate(Snapshot{})
	if !v.Valid {
		t.Errorf("Validate(empty) = %+v, want valid", v)
	}
	if v.Reason != "" {
		t.Errorf("Validate(empty) reason = %q, want empty", v.Reason)
	}
}

func TestValidate_SingleNode(t *testing.T) {
	s := Snapshot{Nodes: []Node{node("a")}}
	if v := Validate(s); !v.Valid {
		t.Errorf("Validate(single node) = %+v, want valid", v)
	}
}

func TestValidate_SingleNodeIgnoresEdges(t *testing.T) {
	// With at most one node there is nothing to connect; stray edges from
	// a half-finished edit do not fail validation.
	s := Snapshot{
		Nodes: []Node{node("a")},
		Edges: []Edge{edge("a", "ghost")},
	}
	if v := Validate(s); !v.Valid {
		t.Errorf("Validate(single node with edge) = %+v, want valid", v)
	}
}

func TestValidate_LinearChain(t *testing.T) {
	s := Snapshot{
		Nodes: []Node{node("a"), node("b"), node("c")},
		Edges: []Edge{edge("a", "b"), edge("b", "c")},
	}
	if v := Validate(s); !v.Valid {
		t.Errorf("Validate(chain) = %+v, want valid", v)
	}
}

func TestValidate_FanOut(t *testing.T) {
	// One entry node branching to two targets is a valid flow.
	s := Snapshot{
		Nodes: []Node{node("a"), node("b"), node("c")},
		Edges: []Edge{
			{ID: "e1", Source: "a", Target: "b", SourceHandle: "yes"},
			{ID: "e2", Source: "a", Target: "c", SourceHandle: "no"},
		},
	}
	if v := Validate(s); !v.Valid {
		t.Errorf("Validate(fan-out) = %+v, want valid", v)
	}
}

func TestValidate_AllNodesDisconnected(t *testing.T) {
	s := Snapshot{Nodes: []Node{node("a"), node("b"), node("c")}}
	v := Validate(s)
	if v.Valid {
		t.Fatal("Validate(3 loose nodes) should be invalid")
	}
	want := "3 nodes are completely disconnected; connect all nodes"
	if v.Reason != want {
		t.Errorf("reason = %q, want %q", v.Reason, want)
	}
}

func TestValidate_OneNodeDisconnected(t *testing.T) {
	s := Snapshot{
		Nodes: []Node{node("a"), node("b"), node("c")},
		Edges: []Edge{edge("a", "b")},
	}
	v := Validate(s)
	if v.Valid {
		t.Fatal("Validate(stray node) should be invalid")
	}
	want := "1 node is disconnected from the main flow"
	if v.Reason != want {
		t.Errorf("reason = %q, want %q", v.Reason, want)
	}
}

func TestValidate_MultipleEntryPoints(t *testing.T) {
	// Two separate chains: every node touches an edge, so the
	// disconnection rule passes, but both chain heads have zero incoming
	// edges and the entry rule rejects the canvas.
	s := Snapshot{
		Nodes: []Node{node("a"), node("b"), node("c"), node("d")},
		Edges: []Edge{edge("a", "b"), edge("c", "d")},
	}
	v := Validate(s)
	if v.Valid {
		t.Fatal("Validate(two chains) should be invalid")
	}
	want := "2 nodes have no incoming connections; only one starting node allowed"
	if v.Reason != want {
		t.Errorf("reason = %q, want %q", v.Reason, want)
	}
}

func TestValidate_Cycle(t *testing.T) {
	s := Snapshot{
		Nodes: []Node{node("a"), node("b"), node("c")},
		Edges: []Edge{edge("a", "b"), edge("b", "c"), edge("c", "a")},
	}
	v := Validate(s)
	if v.Valid {
		t.Fatal("Validate(cycle) should be invalid")
	}
	want := "no starting node found; at least one node must have zero incoming connections"
	if v.Reason != want {
		t.Errorf("reason = %q, want %q", v.Reason, want)
	}
}

func TestValidate_DisconnectionBeforeEntryRule(t *testing.T) {
	// A canvas violating both rules reports the disconnection first.
	s := Snapshot{
		Nodes: []Node{node("a"), node("b"), node("c"), node("d")},
		Edges: []Edge{edge("a", "b")},
	}
	v := Validate(s)
	if v.Valid {
		t.Fatal("should be invalid")
	}
	want := "2 nodes are completely disconnected; connect all nodes"
	if v.Reason != want {
		t.Errorf("reason = %q, want %q", v.Reason, want)
	}
}

func TestValidate_Table(t *testing.T) {
	tests := []struct {
		name  string
		snap  Snapshot
		valid bool
	}{
		{"empty", Snapshot{}, true},
		{"self contained pair", Snapshot{
			Nodes: []Node{node("a"), node("b")},
			Edges: []Edge{edge("a", "b")},
		}, true},
		{"diamond", Snapshot{
			Nodes: []Node{node("a"), node("b"), node("c"), node("d")},
			Edges: []Edge{edge("a", "b"), edge("a", "c"), edge("b", "d"), edge("c", "d")},
		}, true},
		{"tail cycle", Snapshot{
			// a -> b -> c -> b: single entry, inner loop. The entry rule
			// only demands one zero-in-degree node, so this passes.
			Nodes: []Node{node("a"), node("b"), node("c")},
			Edges: []Edge{edge("a", "b"), edge("b", "c"), edge("c", "b")},
		}, true},
		{"two isolated pairs", Snapshot{
			Nodes: []Node{node("a"), node("b"), node("c"), node("d")},
			Edges: []Edge{edge("a", "b"), edge("c", "d")},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.snap); got.Valid != tt.valid {
				t.Errorf("Validate() = %+v, want valid=%v", got, tt.valid)
			}
		})
	}
}

func TestValidate_DoesNotMutateSnapshot(t *testing.T) {
	s := Snapshot{
		Nodes: []Node{node("b"), node("a"), node("c")},
		Edges: []Edge{edge("b", "a"), edge("a", "c")},
	}
	before := Snapshot{
		Nodes: append([]Node(nil), s.Nodes...),
		Edges: append([]Edge(nil), s.Edges...),
	}

	Validate(s)

	if !reflect.DeepEqual(s, before) {
		t.Error("Validate() mutated its input snapshot")
	}
}

func TestValidate_Deterministic(t *testing.T) {
	s := Snapshot{
		Nodes: []Node{node("a"), node("b"), node("c"), node("d")},
		Edges: []Edge{edge("a", "b")},
	}
	first := Validate(s)
	for i := 0; i < 10; i++ {
		if got := Validate(s); got != first {
			t.Fatalf("Validate() not deterministic: %+v then %+v", first, got)
		}
	}
}
