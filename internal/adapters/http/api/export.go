// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/pulse/internal/domain/record"
	"github.com/okian/pulse/pkg/metrics"
)

// ExportHandler serves the two CSV download shapes: the full raw log
// and the windowed export with a synthesized header row.
type ExportHandler struct {
	deps        Dependencies
	defaultDays int
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies, defaultDays int) *ExportHandler {
	return &ExportHandler{deps: deps, defaultDays: defaultDays}
}

// HandleDownloadAll handles GET /download requests and streams the
// entire durable log verbatim. A missing log yields an empty download
// rather than an error.
func (h *ExportHandler) HandleDownloadAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	metrics.RecordExport("full")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="metrics.csv"`)
	_, _ = h.deps.WriteLog(w)
}

// HandleDownloadRange handles GET /download-range?days=N requests:
// the same filter as /history with the fixed header row prepended.
func (h *ExportHandler) HandleDownloadRange(w http.ResponseWriter, r *http.Request) {
	const op = "api.download_range"
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

	metrics.RecordExport("range")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="metrics_range.csv"`)
	_, _ = w.Write([]byte(record.Header + "\n"))
	for _, line := range lines {
		_, _ = w.Write([]byte(line + "\n"))
	}
}
