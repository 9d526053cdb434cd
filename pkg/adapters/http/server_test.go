package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flowsmith/flowsmith/pkg/adapters/memory"
	"github.com/flowsmith/flowsmith/pkg/builder"
	"github.com/flowsmith/flowsmith/pkg/canvas"
	"github.com/flowsmith/flowsmith/pkg/flow"
)

const validSnapshotJSON = `{
	"nodes": [
		{"id": "welcome", "type": "message", "position": {"x": 0, "y": 0}, "data": {"text": "Hi there"}},
		{"id": "bye", "type": "message", "position": {"x": 240, "y": 0}, "data": {"text": "Goodbye"}}
	],
	"edges": [
		{"id": "e-welcome-bye", "source": "welcome", "target": "bye"}
	]
}`

const saveRequestJSON = `{
	"name": "Support flow",
	"nodes": [
		{"id": "welcome", "type": "message", "position": {"x": 0, "y": 0}, "data": {"text": "Hi there"}},
		{"id": "bye", "type": "message", "position": {"x": 240, "y": 0}, "data": {"text": "Goodbye"}}
	],
	"edges": [
		{"id": "e-welcome-bye", "source": "welcome", "target": "bye"}
	]
}`

const invalidSaveJSON = `{
	"name": "Broken flow",
	"nodes": [
		{"id": "a", "type": "message", "position": {"x": 0, "y": 0}},
		{"id": "b", "type": "message", "position": {"x": 100, "y": 0}}
	],
	"edges": []
}`

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	return NewHandler(builder.New(memory.NewStore()), opts...)
}

func do(t *testing.T, handler http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func postJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func createFlow(t *testing.T, handler http.Handler) flow.Flow {
	t.Helper()
	w := postJSON(t, handler, "POST", "/flows", saveRequestJSON)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}
	var saved flow.Flow
	if err := json.NewDecoder(w.Body).Decode(&saved); err != nil {
		t.Fatalf("decode created flow: %v", err)
	}
	return saved
}

func TestValidateFlow(t *testing.T) {
	handler := newTestHandler(t)

	w := postJSON(t, handler, "POST", "/flows/validate", validSnapshotJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	var verdict canvas.Verdict
	if err := json.NewDecoder(w.Body).Decode(&verdict); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if !verdict.Valid {
		t.Errorf("expected valid verdict, got reason %q", verdict.Reason)
	}
}

func TestValidateFlow_Invalid(t *testing.T) {
	handler := newTestHandler(t)

	body := `{
		"nodes": [
			{"id": "a", "type": "message", "position": {"x": 0, "y": 0}},
			{"id": "b", "type": "message", "position": {"x": 100, "y": 0}}
		],
		"edges": []
	}`
	w := postJSON(t, handler, "POST", "/flows/validate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}

	var verdict canvas.Verdict
	if err := json.NewDecoder(w.Body).Decode(&verdict); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if verdict.Valid {
		t.Fatal("expected invalid verdict")
	}
	want := "2 nodes are completely disconnected; connect all nodes"
	if verdict.Reason != want {
		t.Errorf("reason = %q, want %q", verdict.Reason, want)
	}
}

func TestValidateFlow_MalformedSnapshot(t *testing.T) {
	handler := newTestHandler(t)

	body := `{
		"nodes": [
			{"id": "dup", "type": "message", "position": {"x": 0, "y": 0}},
			{"id": "dup", "type": "message", "position": {"x": 1, "y": 1}}
		],
		"edges": []
	}`
	w := postJSON(t, handler, "POST", "/flows/validate", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "duplicate node id") {
		t.Errorf("expected duplicate id error, got %s", w.Body.String())
	}
}

func TestValidateFlow_BadJSON(t *testing.T) {
	handler := newTestHandler(t)

	w := postJSON(t, handler, "POST", "/flows/validate", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateFlow(t *testing.T) {
	handler := newTestHandler(t)

	saved := createFlow(t, handler)
	if saved.ID == "" {
		t.Fatal("expected a minted flow id")
	}
	if saved.Name != "Support flow" {
		t.Errorf("name = %q, want %q", saved.Name, "Support flow")
	}
	if len(saved.Nodes) != 2 || len(saved.Edges) != 1 {
		t.Errorf("saved %d nodes and %d edges, want 2 and 1", len(saved.Nodes), len(saved.Edges))
	}
	if saved.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	w := do(t, handler, "GET", "/flows/"+saved.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("read back failed: %d", w.Code)
	}
}

func TestCreateFlow_Invalid(t *testing.T) {
	handler := newTestHandler(t)

	w := postJSON(t, handler, "POST", "/flows", invalidSaveJSON)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "completely disconnected") {
		t.Errorf("expected verdict reason in error, got %s", w.Body.String())
	}
}

func TestCreateFlow_MissingName(t *testing.T) {
	handler := newTestHandler(t)

	w := postJSON(t, handler, "POST", "/flows", `{"nodes": [], "edges": []}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateFlow(t *testing.T) {
	handler := newTestHandler(t)
	saved := createFlow(t, handler)

	renamed := strings.Replace(saveRequestJSON, "Support flow", "Renamed flow", 1)
	w := postJSON(t, handler, "PUT", "/flows/"+saved.ID, renamed)
	if w.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", w.Code, w.Body.String())
	}

	var updated flow.Flow
	if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
		t.Fatalf("decode updated flow: %v", err)
	}
	if updated.ID != saved.ID {
		t.Errorf("id changed on update: %q -> %q", saved.ID, updated.ID)
	}
	if updated.Name != "Renamed flow" {
		t.Errorf("name = %q, want %q", updated.Name, "Renamed flow")
	}
}

func TestUpdateFlow_IDMismatch(t *testing.T) {
	handler := newTestHandler(t)
	saved := createFlow(t, handler)

	body := strings.Replace(saveRequestJSON, `"name"`, `"id": "somebody-else", "name"`, 1)
	w := postJSON(t, handler, "PUT", "/flows/"+saved.ID, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeleteFlow(t *testing.T) {
	handler := newTestHandler(t)
	saved := createFlow(t, handler)

	if w := do(t, handler, "DELETE", "/flows/"+saved.ID); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := do(t, handler, "DELETE", "/flows/"+saved.ID); w.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", w.Code)
	}
	if w := do(t, handler, "GET", "/flows/"+saved.ID); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestListFlows(t *testing.T) {
	handler := newTestHandler(t)
	createFlow(t, handler)
	createFlow(t, handler)

	w := do(t, handler, "GET", "/flows")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}

	var flows []flow.Flow
	if err := json.NewDecoder(w.Body).Decode(&flows); err != nil {
		t.Fatalf("decode flows: %v", err)
	}
	if len(flows) != 2 {
		t.Errorf("listed %d flows, want 2", len(flows))
	}
}

func TestExportFlow(t *testing.T) {
	handler := newTestHandler(t)
	saved := createFlow(t, handler)

	w := do(t, handler, "GET", "/flows/"+saved.ID+"/export?format=mermaid")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/vnd.mermaid" {
		t.Errorf("content type = %q, want text/vnd.mermaid", ct)
	}
	if !strings.Contains(w.Body.String(), "graph TD") {
		t.Errorf("expected mermaid output, got %s", w.Body.String())
	}

	if w := do(t, handler, "GET", "/flows/"+saved.ID+"/export?format=gif"); w.Code != http.StatusBadRequest {
		t.Errorf("unknown format: expected 400, got %d", w.Code)
	}
	if w := do(t, handler, "GET", "/flows/no-such-flow/export"); w.Code != http.StatusNotFound {
		t.Errorf("unknown flow: expected 404, got %d", w.Code)
	}
}

func TestSubscribeEvents_SaveBroadcast(t *testing.T) {
	handler := newTestHandler(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(wSub, reqSub)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond) // Wait for subscription to register

	if w := postJSON(t, handler, "POST", "/flows", saveRequestJSON); w.Code != http.StatusCreated {
		t.Fatalf("save failed: %d %s", w.Code, w.Body.String())
	}

	cancel()
	<-done

	output := wSub.Body.String()
	if !strings.Contains(output, "event: ping") {
		t.Error("expected initial ping")
	}
	if !strings.Contains(output, `"type":"saved"`) {
		t.Errorf("expected saved event in SSE output, got %q", output)
	}
}

func TestSubscribeEvents_TypeFilter(t *testing.T) {
	handler := newTestHandler(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/events?types=deleted", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(wSub, reqSub)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)

	saved := createFlow(t, handler)
	if w := do(t, handler, "DELETE", "/flows/"+saved.ID); w.Code != http.StatusNoContent {
		t.Fatalf("delete failed: %d", w.Code)
	}

	cancel()
	<-done

	output := wSub.Body.String()
	if strings.Contains(output, `"type":"saved"`) {
		t.Error("saved event should have been filtered out")
	}
	if !strings.Contains(output, `"type":"deleted"`) {
		t.Errorf("expected deleted event in SSE output, got %q", output)
	}
}

func TestOpenAPIRoutes(t *testing.T) {
	handler := newTestHandler(t)

	w := do(t, handler, "GET", "/openapi.yaml")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "openapi: 3") {
		t.Error("expected the OpenAPI document")
	}

	w = do(t, handler, "GET", "/swagger")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "swagger-ui") {
		t.Error("expected the Swagger UI page")
	}
}

func TestHealthAndInfo(t *testing.T) {
	handler := newTestHandler(t)

	w := do(t, handler, "GET", "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("health: expected 200 OK, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("health body = %s", w.Body.String())
	}

	w = do(t, handler, "GET", "/info")
	if w.Code != http.StatusOK {
		t.Fatalf("info: expected 200 OK, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"app":"flowsmith-http"`) {
		t.Errorf("info body = %s", w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler(t)

	w := do(t, handler, "OPTIONS", "/flows")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS headers on preflight")
	}
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	handler := newTestHandler(t, WithMetrics(reg))

	if w := do(t, handler, "GET", "/health"); w.Code != http.StatusOK {
		t.Fatalf("health failed: %d", w.Code)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	if !names["flowsmith_http_requests_total"] {
		t.Error("expected flowsmith_http_requests_total to be collected")
	}
	if !names["flowsmith_http_request_duration_seconds"] {
		t.Error("expected flowsmith_http_request_duration_seconds to be collected")
	}
}
