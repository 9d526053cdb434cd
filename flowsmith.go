package flowsmith

import (
	"context"
	"log/slog"

	"github.com/flowsmith/flowsmith/pkg/adapters/memory"
	"github.com/flowsmith/flowsmith/pkg/builder"
	"github.com/flowsmith/flowsmith/pkg/canvas"
	"github.com/flowsmith/flowsmith/pkg/flow"
	"github.com/flowsmith/flowsmith/pkg/ports"
)

// Version is the flowsmith release version. Overridden via -ldflags on
// tagged builds.
var Version = "0.3.0-dev"

// Builder is the high-level entry point for the flowsmith library.
// It wraps the builder service and provides a simplified API for
// consumers, backed by an in-memory store unless one is injected.
type Builder struct {
	svc    *builder.Service
	store  ports.FlowStore
	hooks  builder.Hooks
	logger *slog.Logger
}

// Option defines a functional option for configuring the Builder.
type Option func(*Builder)

// WithStore injects a custom flow store, bypassing the default
// in-memory one.
func WithStore(store ports.FlowStore) Option {
	return func(b *Builder) {
		b.store = store
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks builder.Hooks) Option {
	return func(b *Builder) {
		b.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// New initializes a flowsmith Builder.
func New(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}

	if b.store == nil {
		b.store = memory.NewStore()
	}

	svcOpts := []builder.Option{builder.WithHooks(b.hooks)}
	if b.logger != nil {
		svcOpts = append(svcOpts, builder.WithLogger(b.logger))
	}
	b.svc = builder.New(b.store, svcOpts...)

	return b
}

// Validate checks a canvas snapshot against the connectivity rules.
// The verdict carries the outcome; the error is reserved for
// structurally broken snapshots.
func (b *Builder) Validate(ctx context.Context, snap canvas.Snapshot) (canvas.Verdict, error) {
	return b.svc.Validate(ctx, snap)
}

// Save validates a snapshot and persists it as a flow.
func (b *Builder) Save(ctx context.Context, req builder.SaveRequest) (*flow.Flow, error) {
	return b.svc.Save(ctx, req)
}

// Get loads a flow by id.
func (b *Builder) Get(ctx context.Context, id string) (*flow.Flow, error) {
	return b.svc.Get(ctx, id)
}

// List loads all saved flows.
func (b *Builder) List(ctx context.Context) ([]flow.Flow, error) {
	return b.svc.List(ctx)
}

// Delete removes a flow.
func (b *Builder) Delete(ctx context.Context, id string) error {
	return b.svc.Delete(ctx, id)
}

// Export renders a flow in the given format and returns the bytes plus
// their MIME content type.
func (b *Builder) Export(ctx context.Context, id, format string) ([]byte, string, error) {
	return b.svc.Export(ctx, id, format)
}

// Store returns the underlying flow store used by the builder.
func (b *Builder) Store() ports.FlowStore {
	return b.svc.Store()
}

// Service returns the underlying builder service for adapters that
// need the full surface.
func (b *Builder) Service() *builder.Service {
	return b.svc
}
