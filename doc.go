/*
Package flowsmith is the validation and serialization core for chatbot
flow builders: the part that decides whether a drawn canvas is a
runnable flow, and turns it into a stable document when it is.

It implements a "validate at the door" architecture, separating the
editor's live canvas (Snapshot) from the persisted document (Flow) and
refusing to persist anything the validator rejects.

# Concept

Flowsmith treats the editor canvas as untrusted input. Nodes and edges
arrive exactly as the frontend holds them, transient drag state and
all. Validation answers one question: does this canvas describe a flow
a bot could actually run, with every node reachable and exactly one
place to start? Only then is the canvas serialized into its stable
form, with editor state stripped, and handed to a store. This keeps
the core embeddable in any surface: HTTP API, MCP server, or CLI.

# Key Features

  - Deterministic Validation: the same snapshot always yields the same
    verdict, with frontend-ready reason strings.
  - Stable Serialization: saved flows carry only id, type, position and
    data, so documents survive editor churn.
  - Pluggable Storage: in-memory, filesystem, Redis and MongoDB stores
    behind one small interface.
  - Observability Hooks: validation and save events for wiring up
    metrics and structured logs.

# Usage

Initialize a Builder, validate a snapshot, and save it:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/flowsmith/flowsmith"
		"github.com/flowsmith/flowsmith/pkg/builder"
		"github.com/flowsmith/flowsmith/pkg/canvas"
	)

	func main() {
		b := flowsmith.New()
		ctx := context.Background()

		snap := canvas.Snapshot{
			Nodes: []canvas.Node{
				{ID: "welcome", Type: canvas.NodeTypeMessage, Data: map[string]any{"text": "Hi!"}},
				{ID: "bye", Type: canvas.NodeTypeMessage, Data: map[string]any{"text": "Bye!"}},
			},
			Edges: []canvas.Edge{
				{ID: "e1", Source: "welcome", Target: "bye"},
			},
		}

		verdict, err := b.Validate(ctx, snap)
		if err != nil {
			log.Fatal(err)
		}
		if !verdict.Valid {
			log.Fatalf("cannot save: %s", verdict.Reason)
		}

		saved, err := b.Save(ctx, builder.SaveRequest{Name: "Greeting", Snapshot: snap})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("saved flow", saved.ID)
	}
*/
package flowsmith
