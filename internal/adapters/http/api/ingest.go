// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/pulse/pkg/metrics"
)

// authHeader carries the producer's shared secret.
const authHeader = "X-Auth-Token"

// maxIngestBody bounds a single ingest payload. One record is one CSV
// line; anything near this limit is garbage.
const maxIngestBody = 1 << 20

// IngestHandler handles producer ingest requests.
type IngestHandler struct {
	deps  Dependencies
	token string
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(deps Dependencies) *IngestHandler {
	return &IngestHandler{deps: deps}
}

// ingestRequest is the structured envelope for POST /ingest.
type ingestRequest struct {
	Line *string `json:"line"`
}

// HandleIngest handles POST /ingest requests carrying a JSON envelope
// {"line": "<csv line>"}.
func (h *IngestHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	const op = "api.ingest"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if !h.authorized(r) {
		metrics.RecordIngestRejected("unauthorized")
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxIngestBody)).Decode(&req); err != nil {
		metrics.RecordIngestRejected("bad_format")
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Line == nil {
		metrics.RecordIngestRejected("bad_format")
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	h.ingest(w, r, op, *req.Line)
}

// HandleIngestText handles POST /ingest-txt requests whose raw body is
// the line itself.
func (h *IngestHandler) HandleIngestText(w http.ResponseWriter, r *http.Request) {
	const op = "api.ingest_txt"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if !h.authorized(r) {
		metrics.RecordIngestRejected("unauthorized")
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBody))
	if err != nil {
		metrics.RecordIngestRejected("bad_format")
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	h.ingest(w, r, op, string(body))
}

// ingest runs the shared tail of both payload shapes: durable append
// first, live publish second, blank line a successful no-op.
func (h *IngestHandler) ingest(w http.ResponseWriter, r *http.Request, op, line string) {
	if err := h.deps.Ingest(r.Context(), line); err != nil {
		metrics.RecordErrorByComponent("api", "durability")
		writeError(w, http.StatusInternalServerError, "durability", WrapKind(op, ErrDurability, err))
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "ok"})
}

func (h *IngestHandler) authorized(r *http.Request) bool {
	return h.token != "" && r.Header.Get(authHeader) == h.token
}
