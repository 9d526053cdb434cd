package flowsmith_test

import (
	"context"
	"errors"
	"testing"

	"github.com/flowsmith/flowsmith"
	"github.com/flowsmith/flowsmith/pkg/adapters/file"
	"github.com/flowsmith/flowsmith/pkg/builder"
	"github.com/flowsmith/flowsmith/pkg/canvas"
	"github.com/flowsmith/flowsmith/pkg/flow"
)

func chainSnapshot() canvas.Snapshot {
	return canvas.Snapshot{
		Nodes: []canvas.Node{
			{ID: "welcome", Type: canvas.NodeTypeMessage, Data: map[string]any{"text": "Hi"}},
			{ID: "bye", Type: canvas.NodeTypeMessage, Data: map[string]any{"text": "Bye"}},
		},
		Edges: []canvas.Edge{
			{ID: "e1", Source: "welcome", Target: "bye"},
		},
	}
}

func TestFacade_RoundTrip(t *testing.T) {
	b := flowsmith.New()
	ctx := context.Background()

	verdict, err := b.Validate(ctx, chainSnapshot())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !verdict.Valid {
		t.Fatalf("expected valid snapshot, got reason %q", verdict.Reason)
	}

	saved, err := b.Save(ctx, builder.SaveRequest{Name: "Greeting", Snapshot: chainSnapshot()})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected a minted id")
	}

	loaded, err := b.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.Name != "Greeting" {
		t.Errorf("loaded name = %q, want Greeting", loaded.Name)
	}

	flows, err := b.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(flows) != 1 {
		t.Errorf("listed %d flows, want 1", len(flows))
	}

	if err := b.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := b.Get(ctx, saved.ID); !errors.Is(err, flow.ErrFlowNotFound) {
		t.Errorf("expected ErrFlowNotFound after delete, got %v", err)
	}
}

func TestFacade_WithStore(t *testing.T) {
	store := file.New(t.TempDir())
	b := flowsmith.New(flowsmith.WithStore(store))
	ctx := context.Background()

	saved, err := b.Save(ctx, builder.SaveRequest{ID: "on-disk", Name: "Persisted", Snapshot: chainSnapshot()})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A second builder over the same store sees the flow.
	b2 := flowsmith.New(flowsmith.WithStore(store))
	loaded, err := b2.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get through second builder failed: %v", err)
	}
	if loaded.Name != "Persisted" {
		t.Errorf("loaded name = %q, want Persisted", loaded.Name)
	}
}

func TestFacade_RejectsInvalid(t *testing.T) {
	b := flowsmith.New()
	ctx := context.Background()

	snap := canvas.Snapshot{
		Nodes: []canvas.Node{
			{ID: "a", Type: canvas.NodeTypeMessage},
			{ID: "b", Type: canvas.NodeTypeMessage},
		},
	}

	_, err := b.Save(ctx, builder.SaveRequest{Name: "Broken", Snapshot: snap})
	if !errors.Is(err, builder.ErrInvalidFlow) {
		t.Fatalf("expected ErrInvalidFlow, got %v", err)
	}
}

func TestFacade_Hooks(t *testing.T) {
	var validations, saves int
	b := flowsmith.New(flowsmith.WithHooks(builder.Hooks{
		OnValidate: func(ctx context.Context, ev *builder.ValidateEvent) { validations++ },
		OnSave:     func(ctx context.Context, ev *builder.SaveEvent) { saves++ },
	}))
	ctx := context.Background()

	if _, err := b.Validate(ctx, chainSnapshot()); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if _, err := b.Save(ctx, builder.SaveRequest{Name: "Hooked", Snapshot: chainSnapshot()}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if validations != 1 {
		t.Errorf("OnValidate fired %d times, want 1", validations)
	}
	if saves != 1 {
		t.Errorf("OnSave fired %d times, want 1", saves)
	}
}
