package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/flowsmith/flowsmith/pkg/ports"
)

// Event types pushed over /events.
const (
	eventSaved   = "saved"
	eventDeleted = "deleted"
	eventChanged = "changed"
)

// StreamEvent is the payload delivered to /events subscribers.
type StreamEvent struct {
	Type   string `json:"type"`
	FlowID string `json:"flow_id"`
}

// broadcast fans a flow event out to the matching SSE subscribers.
func (s *Server) broadcast(flowID, eventType string) {
	data, err := json.Marshal(StreamEvent{Type: eventType, FlowID: flowID})
	if err != nil {
		return
	}
	s.Streams.Broadcast(flowID, string(data))
}

// StreamManager handles active SSE connections, keyed by flow id. The
// empty key receives every flow's events.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(flowID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[flowID]; !ok {
		sm.subscribers[flowID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[flowID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[flowID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, flowID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(flowID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.deliver(sm.subscribers[flowID], flowID, msg)
	if flowID != "" {
		sm.deliver(sm.subscribers[""], flowID, msg)
	}
}

func (sm *StreamManager) deliver(subs map[chan<- string]struct{}, flowID, msg string) {
	for ch := range subs {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: client buffer full, dropping message", "flow_id", flowID)
		}
	}
}

// subscribeEvents handles the GET /events request (SSE). Save and
// delete events are pushed as they happen; when the store can watch for
// out-of-band changes those are forwarded as changed events.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("events: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flowID := r.URL.Query().Get("flow_id")
	var types []string
	if raw := r.URL.Query().Get("types"); raw != "" {
		types = strings.Split(raw, ",")
	}

	ch, cancel := s.Streams.Subscribe(flowID)
	defer cancel()

	var storeEvents <-chan string
	if watcher, ok := s.Builder.Store().(ports.FlowWatcher); ok {
		events, err := watcher.Watch(r.Context())
		if err != nil {
			s.logger.Warn("events: store watch unavailable", "error", err)
		} else {
			storeEvents = events
		}
	}

	s.logger.Debug("events: client subscribed", "flow_id", flowID, "types", types)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("events: client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !keepEvent(msg, types) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case id, ok := <-storeEvents:
			if !ok {
				storeEvents = nil
				continue
			}
			if flowID != "" && id != flowID {
				continue
			}
			data, err := json.Marshal(StreamEvent{Type: eventChanged, FlowID: id})
			if err != nil {
				continue
			}
			if !keepEvent(string(data), types) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// keepEvent applies the types filter to a marshaled StreamEvent.
// Unparseable messages pass through unfiltered.
func keepEvent(msg string, types []string) bool {
	if len(types) == 0 {
		return true
	}
	var ev StreamEvent
	if err := json.Unmarshal([]byte(msg), &ev); err != nil {
		return true
	}
	for _, t := range types {
		if strings.TrimSpace(t) == ev.Type {
			return true
		}
	}
	return false
}
