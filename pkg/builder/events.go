package builder

import (
	"context"
	"time"

	"github.com/flowsmith/flowsmith/pkg/canvas"
)

// ValidateEvent describes one validation verdict.
type ValidateEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Nodes     int            `json:"nodes"`
	Edges     int            `json:"edges"`
	Verdict   canvas.Verdict `json:"verdict"`
}

// SaveEvent describes one saved flow.
type SaveEvent struct {
	Timestamp time.Time `json:"timestamp"`
	FlowID    string    `json:"flow_id"`
	Name      string    `json:"name,omitempty"`
	Created   bool      `json:"created"` // false for updates
}

// DeleteEvent describes one deleted flow.
type DeleteEvent struct {
	Timestamp time.Time `json:"timestamp"`
	FlowID    string    `json:"flow_id"`
}

// ExportEvent describes one rendered export.
type ExportEvent struct {
	Timestamp time.Time `json:"timestamp"`
	FlowID    string    `json:"flow_id"`
	Format    string    `json:"format"`
}

// Hooks defines callbacks for builder observability. Any field may be
// nil. Callbacks run synchronously on the operation's goroutine; keep
// them fast or hand off.
type Hooks struct {
	OnValidate func(context.Context, *ValidateEvent)
	OnSave     func(context.Context, *SaveEvent)
	OnDelete   func(context.Context, *DeleteEvent)
	OnExport   func(context.Context, *ExportEvent)
}

func (h Hooks) emitValidate(ctx context.Context, e *ValidateEvent) {
	if h.OnValidate != nil {
		h.OnValidate(ctx, e)
	}
}

func (h Hooks) emitSave(ctx context.Context, e *SaveEvent) {
	if h.OnSave != nil {
		h.OnSave(ctx, e)
	}
}

func (h Hooks) emitDelete(ctx context.Context, e *DeleteEvent) {
	if h.OnDelete != nil {
		h.OnDelete(ctx, e)
	}
}

func (h Hooks) emitExport(ctx context.Context, e *ExportEvent) {
	if h.OnExport != nil {
		h.OnExport(ctx, e)
	}
}
