package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowsmith/flowsmith/pkg/canvas"
	"github.com/flowsmith/flowsmith/pkg/flow"
)

// RunFlowStoreContract runs a suite of tests to verify that a FlowStore
// implementation adheres to the defined interface contract.
func RunFlowStoreContract(t *testing.T, store FlowStore) {
	ctx := context.Background()
	flowID := "contract-test-flow-" + time.Now().Format("20060102150405")

	newFlow := func(id, name string) *flow.Flow {
		f := flow.FromSnapshot(canvas.Snapshot{
			Nodes: []canvas.Node{
				{ID: "a", Type: canvas.NodeTypeMessage, Data: map[string]any{"text": "hello"}},
				{ID: "b", Type: canvas.NodeTypeMessage, Data: map[string]any{"text": "bye"}},
			},
			Edges: []canvas.Edge{{ID: "e1", Source: "a", Target: "b"}},
		})
		f.ID = id
		f.Name = name
		now := time.Now().UTC()
		f.CreatedAt = now
		f.UpdatedAt = now
		return &f
	}

	t.Run("Save and Load", func(t *testing.T) {
		f := newFlow(flowID, "greeting")

		err := store.Save(ctx, f)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, flowID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, f.ID, loaded.ID)
		assert.Equal(t, "greeting", loaded.Name)
		require.Len(t, loaded.Nodes, 2)
		assert.Equal(t, "hello", loaded.Nodes[0].Data["text"])
		require.Len(t, loaded.Edges, 1)
		assert.Equal(t, "a", loaded.Edges[0].Source)
		// Backends may truncate timestamp precision (JSON, BSON); only
		// assert the instant survives to the second.
		assert.WithinDuration(t, f.UpdatedAt, loaded.UpdatedAt, time.Second)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		f := newFlow(flowID, "renamed")
		require.NoError(t, store.Save(ctx, f))

		loaded, err := store.Load(ctx, flowID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", loaded.Name)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+flowID)
		assert.ErrorIs(t, err, flow.ErrFlowNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newFlow(flowID, "doomed")))

		err := store.Delete(ctx, flowID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, flowID)
		assert.ErrorIs(t, err, flow.ErrFlowNotFound, "Load after Delete should return ErrFlowNotFound")

		assert.NoError(t, store.Delete(ctx, flowID), "Delete should be idempotent")
	})

	t.Run("List", func(t *testing.T) {
		id1 := flowID + "-1"
		id2 := flowID + "-2"
		require.NoError(t, store.Save(ctx, newFlow(id1, "one")))
		require.NoError(t, store.Save(ctx, newFlow(id2, "two")))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
