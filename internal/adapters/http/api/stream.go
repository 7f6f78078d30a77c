// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"

	"github.com/okian/pulse/pkg/metrics"
)

// StreamHandler handles long-lived SSE sessions. Each session owns one
// hub subscriber: registered on entry, unregistered on every exit path.
type StreamHandler struct {
	deps      Dependencies
	keepAlive time.Duration
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps Dependencies, keepAlive time.Duration) *StreamHandler {
	return &StreamHandler{deps: deps, keepAlive: keepAlive}
}

// HandleStream handles GET /stream requests. The session loops between
// delivering lines and emitting keep-alive comments after keepAlive of
// idleness, until the client disconnects, a write fails, or the hub
// closes the subscriber channel on shutdown.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming", NewKind("api.stream", ErrStreaming))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	sub := h.deps.Subscribe(ctx)
	defer h.deps.Unsubscribe(ctx, sub)

	idle := time.NewTimer(h.keepAlive)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case line, open := <-sub.C():
			if !open {
				// Hub shut down.
				return
			}
			if _, err := w.Write([]byte("data: " + line + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
			resetTimer(idle, h.keepAlive)

		case <-idle.C:
			// Idle: substitute a no-op comment so intermediaries and
			// clients do not treat the connection as dead.
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
			metrics.RecordStreamKeepAlive()
			idle.Reset(h.keepAlive)
		}
	}
}

// resetTimer restarts a timer that has not fired, draining it first.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
