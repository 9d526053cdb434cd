package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flowsmith/flowsmith"
	"github.com/flowsmith/flowsmith/internal/presentation/export"
	"github.com/flowsmith/flowsmith/pkg/builder"
	"github.com/flowsmith/flowsmith/pkg/canvas"
	"github.com/flowsmith/flowsmith/pkg/flow"
)

// Builder is the flow-builder surface exposed over MCP.
type Builder interface {
	Validate(ctx context.Context, snap canvas.Snapshot) (canvas.Verdict, error)
	Save(ctx context.Context, req builder.SaveRequest) (*flow.Flow, error)
	Get(ctx context.Context, id string) (*flow.Flow, error)
	List(ctx context.Context) ([]flow.Flow, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, id, format string) ([]byte, string, error)
}

var _ Builder = (*builder.Service)(nil)

// Server wraps the builder service and exposes it as an MCP server, so
// AI agents can validate, save and export flows as tools.
type Server struct {
	builder   Builder
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(b Builder) *Server {
	s := &Server{
		builder:   b,
		mcpServer: server.NewMCPServer("flowsmith-mcp", strings.TrimSpace(flowsmith.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: validate_flow
	validateTool := mcp.NewTool("validate_flow",
		mcp.WithDescription("Validate a canvas snapshot. The verdict carries a frontend-ready reason when the flow cannot be saved."),
		mcp.WithString("snapshot", mcp.Required(), mcp.Description("JSON object with nodes and edges, exactly as the editor holds them")),
		mcp.WithOutputSchema[canvas.Verdict](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: save_flow
	saveTool := mcp.NewTool("save_flow",
		mcp.WithDescription("Validate a snapshot and persist it as a flow. Omit id to create a new flow."),
		mcp.WithString("snapshot", mcp.Required(), mcp.Description("JSON object with nodes and edges")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Human-readable flow name")),
		mcp.WithString("id", mcp.Description("Existing flow id to save over (optional)")),
		mcp.WithOutputSchema[flow.Flow](),
	)
	s.mcpServer.AddTool(saveTool, mcp.NewStructuredToolHandler(s.handleSave))

	// TOOL: get_flow
	getTool := mcp.NewTool("get_flow",
		mcp.WithDescription("Load a saved flow by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Flow id")),
		mcp.WithOutputSchema[flow.Flow](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGet))

	// TOOL: list_flows
	s.mcpServer.AddTool(mcp.NewTool("list_flows",
		mcp.WithDescription("List every saved flow as a JSON array."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flows, err := s.builder.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(flows)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: delete_flow
	s.mcpServer.AddTool(mcp.NewTool("delete_flow",
		mcp.WithDescription("Delete a saved flow by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Flow id")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := s.builder.Delete(ctx, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("deleted flow %s", id)), nil
	})

	// TOOL: export_flow
	s.mcpServer.AddTool(mcp.NewTool("export_flow",
		mcp.WithDescription("Render a saved flow as json, yaml, mermaid, dot or svg."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Flow id")),
		mcp.WithString("format", mcp.Description("Output format (default json)")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		format := request.GetString("format", export.FormatJSON)

		data, _, err := s.builder.Export(ctx, id, format)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (canvas.Verdict, error) {
	snap, err := snapshotArg(args)
	if err != nil {
		return canvas.Verdict{}, err
	}

	verdict, err := s.builder.Validate(ctx, snap)
	if err != nil {
		return canvas.Verdict{}, fmt.Errorf("validate failed: %w", err)
	}
	return verdict, nil
}

func (s *Server) handleSave(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (flow.Flow, error) {
	snap, err := snapshotArg(args)
	if err != nil {
		return flow.Flow{}, err
	}

	id, _ := args["id"].(string)
	name, _ := args["name"].(string)

	saved, err := s.builder.Save(ctx, builder.SaveRequest{ID: id, Name: name, Snapshot: snap})
	if err != nil {
		return flow.Flow{}, fmt.Errorf("save failed: %w", err)
	}
	return *saved, nil
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (flow.Flow, error) {
	id, _ := args["id"].(string)
	if id == "" {
		return flow.Flow{}, fmt.Errorf("id argument is required")
	}

	f, err := s.builder.Get(ctx, id)
	if err != nil {
		return flow.Flow{}, fmt.Errorf("get failed: %w", err)
	}
	return *f, nil
}

func snapshotArg(args map[string]interface{}) (canvas.Snapshot, error) {
	raw, _ := args["snapshot"].(string)
	if raw == "" {
		return canvas.Snapshot{}, fmt.Errorf("snapshot argument is required")
	}

	var snap canvas.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return canvas.Snapshot{}, fmt.Errorf("snapshot is not valid JSON: %w", err)
	}
	return snap, nil
}

func (s *Server) registerResources() {
	// EXPOSE: flowsmith://flows
	s.mcpServer.AddResource(mcp.NewResource("flowsmith://flows", "Saved Flows",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		flows, err := s.builder.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list flows: %w", err)
		}
		jsonBytes, _ := json.Marshal(flows)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "flowsmith://flows",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
