package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/flowsmith/flowsmith/pkg/flow"
)

// Store implements ports.FlowStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*flow.Flow
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*flow.Flow),
	}
}

// Save persists the flow in memory.
func (s *Store) Save(ctx context.Context, f *flow.Flow) error {
	// Copy on write so later canvas edits can't reach stored flows,
	// matching the isolation a serializing backend gives for free.
	copied := copyFlow(f)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[f.ID] = copied
	return nil
}

// Load retrieves a flow from memory.
func (s *Store) Load(ctx context.Context, id string) (*flow.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.data[id]
	if !ok {
		return nil, flow.ErrFlowNotFound
	}

	// Copy on read so the caller can't mutate store state by pointer.
	return copyFlow(f), nil
}

// Delete removes a flow.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the ids of all saved flows, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// copyFlow clones a flow through its snapshot round trip, which deep
// copies nodes, edges and payload maps, then restores the bookkeeping
// fields the snapshot does not carry.
func copyFlow(f *flow.Flow) *flow.Flow {
	c := flow.FromSnapshot(f.Snapshot())
	c.ID = f.ID
	c.Name = f.Name
	c.CreatedAt = f.CreatedAt
	c.UpdatedAt = f.UpdatedAt
	return &c
}
