package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/flowsmith/flowsmith"
	"github.com/flowsmith/flowsmith/api"
	"github.com/flowsmith/flowsmith/internal/presentation/export"
	"github.com/flowsmith/flowsmith/pkg/builder"
	"github.com/flowsmith/flowsmith/pkg/canvas"
	"github.com/flowsmith/flowsmith/pkg/flow"
	"github.com/flowsmith/flowsmith/pkg/ports"
)

// Builder is the flow-builder surface the HTTP adapter exposes.
type Builder interface {
	Validate(ctx context.Context, snap canvas.Snapshot) (canvas.Verdict, error)
	Save(ctx context.Context, req builder.SaveRequest) (*flow.Flow, error)
	Get(ctx context.Context, id string) (*flow.Flow, error)
	List(ctx context.Context) ([]flow.Flow, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, id, format string) ([]byte, string, error)
	Store() ports.FlowStore
}

var _ Builder = (*builder.Service)(nil)

// Server serves the flow-builder REST API described by api/openapi.yaml.
type Server struct {
	Builder Builder
	Streams *StreamManager

	logger  *slog.Logger
	metrics *requestMetrics
}

// Option defines a functional option for configuring the Server.
type Option func(*Server)

// WithLogger sets the logger used for request logging. Defaults to
// slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics registers request counters and latency histograms on reg
// and records every request against them.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Server) {
		s.metrics = newRequestMetrics(reg)
	}
}

// NewHandler creates the HTTP handler for the builder service.
func NewHandler(b Builder, opts ...Option) http.Handler {
	s := &Server{
		Builder: b,
		Streams: NewStreamManager(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	if s.metrics != nil {
		r.Use(s.metrics.middleware)
	}

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/events", s.subscribeEvents)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.Spec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Route("/flows", func(r chi.Router) {
		r.Get("/", s.listFlows)
		r.Post("/", s.createFlow)
		r.Post("/validate", s.validateFlow)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getFlow)
			r.Put("/", s.updateFlow)
			r.Delete("/", s.deleteFlow)
			r.Get("/export", s.exportFlow)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Flowsmith API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

var validate = validator.New(validator.WithRequiredStructEnabled())

// SaveFlowRequest is the body of POST /flows and PUT /flows/{id}: the
// snapshot to save plus the identity to file it under.
type SaveFlowRequest struct {
	ID    string        `json:"id,omitempty" validate:"omitempty,max=64"`
	Name  string        `json:"name" validate:"required,max=120"`
	Nodes []canvas.Node `json:"nodes"`
	Edges []canvas.Edge `json:"edges"`
}

// validateFlow handles the POST /flows/validate request.
func (s *Server) validateFlow(w http.ResponseWriter, r *http.Request) {
	var snap canvas.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		s.logger.Warn("validate: invalid request body", "error", err)
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	verdict, err := s.Builder.Validate(r.Context(), snap)
	if err != nil {
		s.logger.Warn("validate: rejected snapshot", "error", err)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, verdict)
}

// createFlow handles the POST /flows request.
func (s *Server) createFlow(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSaveRequest(w, r)
	if !ok {
		return
	}
	s.saveFlow(w, r, req, http.StatusCreated)
}

// updateFlow handles the PUT /flows/{id} request. The path id wins; a
// body id is only accepted when it agrees.
func (s *Server) updateFlow(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSaveRequest(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if req.ID != "" && req.ID != id {
		s.writeError(w, http.StatusBadRequest, "body id does not match path id")
		return
	}
	req.ID = id
	s.saveFlow(w, r, req, http.StatusOK)
}

func (s *Server) decodeSaveRequest(w http.ResponseWriter, r *http.Request) (SaveFlowRequest, bool) {
	var req SaveFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("save: invalid request body", "error", err)
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if err := validate.Struct(&req); err != nil {
		s.logger.Warn("save: rejected request", "error", err)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}

func (s *Server) saveFlow(w http.ResponseWriter, r *http.Request, req SaveFlowRequest, okStatus int) {
	saved, err := s.Builder.Save(r.Context(), builder.SaveRequest{
		ID:   req.ID,
		Name: req.Name,
		Snapshot: canvas.Snapshot{
			Nodes: req.Nodes,
			Edges: req.Edges,
		},
	})
	switch {
	case errors.Is(err, builder.ErrInvalidFlow):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, builder.ErrMalformedSnapshot):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("save failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save flow")
		return
	}

	s.broadcast(saved.ID, eventSaved)
	s.writeJSON(w, okStatus, saved)
}

// getFlow handles the GET /flows/{id} request.
func (s *Server) getFlow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f, err := s.Builder.Get(r.Context(), id)
	if errors.Is(err, flow.ErrFlowNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("get failed", "flow_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load flow")
		return
	}
	s.writeJSON(w, http.StatusOK, f)
}

// listFlows handles the GET /flows request.
func (s *Server) listFlows(w http.ResponseWriter, r *http.Request) {
	flows, err := s.Builder.List(r.Context())
	if err != nil {
		s.logger.Error("list failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list flows")
		return
	}
	s.writeJSON(w, http.StatusOK, flows)
}

// deleteFlow handles the DELETE /flows/{id} request.
func (s *Server) deleteFlow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.Builder.Delete(r.Context(), id)
	if errors.Is(err, flow.ErrFlowNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("delete failed", "flow_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete flow")
		return
	}

	s.broadcast(id, eventDeleted)
	w.WriteHeader(http.StatusNoContent)
}

// exportFlow handles the GET /flows/{id}/export request.
func (s *Server) exportFlow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatJSON
	}

	data, contentType, err := s.Builder.Export(r.Context(), id, format)
	switch {
	case errors.Is(err, flow.ErrFlowNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, export.ErrUnknownFormat):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("export failed", "flow_id", id, "format", format, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to export flow")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// getHealth handles the GET /health request.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getInfo handles the GET /info request.
func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := api.Document(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "flowsmith-http",
		"version":     strings.TrimSpace(flowsmith.Version),
		"api_version": apiVersion,
	})
}

// -- Helpers --

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
