package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flowsmith/flowsmith/internal/presentation/export"
	"github.com/flowsmith/flowsmith/pkg/canvas"
	"github.com/flowsmith/flowsmith/pkg/flow"
	"github.com/flowsmith/flowsmith/pkg/ports"
)

// ErrInvalidFlow is returned by Save when the snapshot fails validation.
// The verdict's reason is appended to the error message.
var ErrInvalidFlow = errors.New("flow is not valid")

// ErrMalformedSnapshot wraps structural defects (duplicate ids, dangling
// edges) reported by canvas.Verify.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Service orchestrates the builder operations: validate snapshots, save
// them as flows, and read them back. Adapters (HTTP, MCP, CLI) all talk
// to the same Service.
type Service struct {
	store  ports.FlowStore
	hooks  Hooks
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithHooks registers observability hooks.
func WithHooks(h Hooks) Option {
	return func(s *Service) {
		s.hooks = h
	}
}

// WithLogger sets a custom structured logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator overrides how new flow ids are minted. The default is
// a random UUID.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// New creates a Service over the given store.
func New(store ports.FlowStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return s
}

// Validate checks a snapshot. Structural integrity problems (duplicate
// ids, dangling edges) come back as an error; rule outcomes come back as
// the verdict, valid or not.
func (s *Service) Validate(ctx context.Context, snap canvas.Snapshot) (canvas.Verdict, error) {
	if err := snap.Verify(); err != nil {
		return canvas.Verdict{}, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}

	v := canvas.Validate(snap)

	s.hooks.emitValidate(ctx, &ValidateEvent{
		Timestamp: s.now(),
		Nodes:     len(snap.Nodes),
		Edges:     len(snap.Edges),
		Verdict:   v,
	})
	s.logger.Debug("snapshot validated",
		"nodes", len(snap.Nodes),
		"edges", len(snap.Edges),
		"valid", v.Valid,
		"reason", v.Reason,
	)

	return v, nil
}

// SaveRequest carries one save operation. An empty ID creates a new flow;
// a non-empty ID updates (or resurrects) that flow in place.
type SaveRequest struct {
	ID       string
	Name     string
	Snapshot canvas.Snapshot
}

// Save validates the snapshot and, when it passes, serializes and
// persists it. Invalid snapshots are rejected with ErrInvalidFlow so
// nothing half-broken ever reaches the store.
func (s *Service) Save(ctx context.Context, req SaveRequest) (*flow.Flow, error) {
	if err := req.Snapshot.Verify(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}
	if v := canvas.Validate(req.Snapshot); !v.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFlow, v.Reason)
	}

	f := flow.FromSnapshot(req.Snapshot)
	f.Name = req.Name

	now := s.now()
	created := req.ID == ""

	if created {
		f.ID = s.newID()
		f.CreatedAt = now
	} else {
		f.ID = req.ID
		existing, err := s.store.Load(ctx, req.ID)
		switch {
		case err == nil:
			f.CreatedAt = existing.CreatedAt
		case errors.Is(err, flow.ErrFlowNotFound):
			created = true
			f.CreatedAt = now
		default:
			return nil, err
		}
	}
	f.UpdatedAt = now

	if err := s.store.Save(ctx, &f); err != nil {
		return nil, fmt.Errorf("failed to save flow: %w", err)
	}

	s.hooks.emitSave(ctx, &SaveEvent{
		Timestamp: now,
		FlowID:    f.ID,
		Name:      f.Name,
		Created:   created,
	})
	s.logger.Info("flow saved", "flow_id", f.ID, "name", f.Name, "created", created)

	return &f, nil
}

// Get loads a flow by id.
func (s *Service) Get(ctx context.Context, id string) (*flow.Flow, error) {
	return s.store.Load(ctx, id)
}

// List loads all saved flows. Flows deleted between the listing and the
// load are skipped rather than failing the whole call.
func (s *Service) List(ctx context.Context) ([]flow.Flow, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	flows := make([]flow.Flow, 0, len(ids))
	for _, id := range ids {
		f, err := s.store.Load(ctx, id)
		if errors.Is(err, flow.ErrFlowNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		flows = append(flows, *f)
	}
	return flows, nil
}

// Delete removes a flow. Unlike the store's idempotent delete, the
// service reports flow.ErrFlowNotFound for unknown ids so transports can
// answer 404.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Load(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}

	s.hooks.emitDelete(ctx, &DeleteEvent{Timestamp: s.now(), FlowID: id})
	s.logger.Info("flow deleted", "flow_id", id)
	return nil
}

// Export loads a flow and renders it in the given format. See
// export.Formats for the supported set. The second result is the MIME
// content type of the rendition.
func (s *Service) Export(ctx context.Context, id, format string) ([]byte, string, error) {
	f, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, "", err
	}

	data, contentType, err := export.Render(*f, format)
	if err != nil {
		return nil, "", err
	}

	s.hooks.emitExport(ctx, &ExportEvent{Timestamp: s.now(), FlowID: id, Format: format})
	s.logger.Debug("flow exported", "flow_id", id, "format", format)

	return data, contentType, nil
}

// Store exposes the underlying FlowStore, letting adapters check for
// optional extensions like ports.FlowWatcher.
func (s *Service) Store() ports.FlowStore {
	return s.store
}
