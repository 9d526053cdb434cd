package ports

import (
	"context"

	"github.com/flowsmith/flowsmith/pkg/flow"
)

// FlowStore defines the interface for persisting saved flows.
// Implementations must be safe for concurrent use.
type FlowStore interface {
	// Save persists a flow under its ID, overwriting any previous version.
	Save(ctx context.Context, f *flow.Flow) error

	// Load retrieves a flow by ID.
	// Returns flow.ErrFlowNotFound if the flow does not exist.
	Load(ctx context.Context, id string) (*flow.Flow, error)

	// Delete removes a flow by ID. Deleting an absent flow is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all saved flows.
	List(ctx context.Context) ([]string, error)
}

// FlowWatcher is an optional extension of FlowStore for backends that can
// see changes made by other processes (another tool writing the same
// directory). The channel carries the ID of each changed flow and closes
// when ctx is done.
type FlowWatcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}
