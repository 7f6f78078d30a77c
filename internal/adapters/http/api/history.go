// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"
)

// HistoryHandler handles windowed historical queries.
type HistoryHandler struct {
	deps        Dependencies
	defaultDays int
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps Dependencies, defaultDays int) *HistoryHandler {
	return &HistoryHandler{deps: deps, defaultDays: defaultDays}
}

// HandleHistory handles GET /history?days=N requests and returns the
// matching lines newline-joined as plain text.
func (h *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.history"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	days, err := windowDays(r, h.defaultDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	lines := h.deps.History(r.Context(), days)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(strings.Join(lines, "\n")))
}

// windowDays extracts the days query parameter, falling back to the
// default when absent. Clamping to the one-day minimum happens in the
// service.
func windowDays(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
