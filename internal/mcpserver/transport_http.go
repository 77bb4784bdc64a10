package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"codegraph/internal/logging"
)

const sessionHeader = "Mcp-Session-Id"

// HTTPServer exposes the session-oriented transport of §4.8: POST /mcp
// opens (or continues) a session and streams the response plus any progress
// notifications as SSE; GET /sse reconnects an existing session and replays
// buffered events after Last-Event-Id; GET /health is a liveness probe.
type HTTPServer struct {
	Handler  *Handler
	Sessions *SessionManager
}

func NewHTTPServer(handler *Handler, sessions *SessionManager) *HTTPServer {
	return &HTTPServer{Handler: handler, Sessions: sessions}
}

func (s *HTTPServer) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", s.handleMCP)
	mux.HandleFunc("/sse", s.handleSSE)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// handleMCP decodes one JSON-RPC request, runs it in the background against
// a context detached from the request (so a client disconnect does not
// abort an in-flight tool call a later GET /sse reconnect might still want
// the result of), and streams progress plus the final response as SSE to
// whichever connection is currently attached to the session.
func (s *HTTPServer) handleMCP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON-RPC request: "+err.Error(), http.StatusBadRequest)
		return
	}

	sess := s.sessionFor(r)
	w.Header().Set(sessionHeader, sess.ID)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	reqID := requestKey(req.ID)
	bgCtx, cancel := context.WithCancel(context.Background())
	if reqID != "" {
		sess.RegisterInflight(reqID, cancel)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		if reqID != "" {
			defer sess.ClearInflight(reqID)
		}

		sink := func(n Notification) {
			payload, err := eventPayload(n)
			if err != nil {
				return
			}
			sess.Publish("progress", payload)
		}

		resp := s.Handler.Handle(bgCtx, req, sink)
		if req.IsNotification() {
			return
		}
		payload, err := eventPayload(resp)
		if err != nil {
			logging.MCPDebug("session %s: failed to marshal response: %v", sess.ID, err)
			return
		}
		sess.Publish("message", payload)
	}()

	sub := sess.Subscribe(0)
	defer sess.Unsubscribe(sub)

	notify := r.Context().Done()
	for {
		select {
		case ev, ok := <-sub.ch:
			if !ok {
				return
			}
			writeSSEEvent(w, flusher, ev.id, ev.name, ev.data)
			if ev.name == "message" {
				return
			}
		case <-notify:
			// Client disconnected; the background goroutine keeps running
			// and publishing into the session's buffer for a later GET
			// /sse reconnect to pick up.
			return
		case <-done:
			// Handler finished without publishing (e.g. a bare
			// notification) — nothing more to stream.
			return
		}
	}
}

// handleSSE reconnects to an existing session and replays buffered events
// newer than Last-Event-Id, then continues streaming live ones.
func (s *HTTPServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		http.Error(w, sessionHeader+" header required", http.StatusBadRequest)
		return
	}
	sess, ok := s.Sessions.Get(sessionID)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	var lastID uint64
	if raw := r.Header.Get("Last-Event-Id"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			lastID = parsed
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	sub := sess.Subscribe(lastID)
	defer sess.Unsubscribe(sub)

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case ev, ok := <-sub.ch:
			if !ok {
				return
			}
			writeSSEEvent(w, flusher, ev.id, ev.name, ev.data)
		case <-keepAlive.C:
			writeSSEComment(w, flusher, "keep-alive")
		case <-r.Context().Done():
			return
		}
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *HTTPServer) sessionFor(r *http.Request) *Session {
	if id := r.Header.Get(sessionHeader); id != "" {
		if sess, ok := s.Sessions.Get(id); ok {
			return sess
		}
	}
	return s.Sessions.Create()
}

func requestKey(id json.RawMessage) string {
	if len(id) == 0 {
		return ""
	}
	return string(id)
}
