// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/okian/pulse/internal/adapters/mq/hub"
)

// Default handler configuration constants.
const (
	defaultKeepAlive  = 15 * time.Second
	defaultWindowDays = 7
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to the service package.
type Dependencies interface {
	// Ingest durably appends one line, then publishes it live.
	Ingest(ctx context.Context, line string) error

	// Subscribe and Unsubscribe manage live-stream subscribers.
	Subscribe(ctx context.Context) *hub.Subscriber
	Unsubscribe(ctx context.Context, sub *hub.Subscriber)

	// History returns log lines within the last days*24h window.
	History(ctx context.Context, days int) []string

	// WriteLog streams the entire durable log verbatim.
	WriteLog(w io.Writer) (int64, error)
}

// Server wires HTTP routes for the telemetry API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	ingestHandler  *IngestHandler
	streamHandler  *StreamHandler
	historyHandler *HistoryHandler
	exportHandler  *ExportHandler

	authToken     string
	allowedOrigin string
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAuthToken sets the shared secret checked on every ingest call.
func WithAuthToken(token string) Option {
	return func(s *Server) {
		s.authToken = token
	}
}

// WithAllowedOrigin sets the CORS origin echoed on read endpoints.
func WithAllowedOrigin(origin string) Option {
	return func(s *Server) {
		s.allowedOrigin = origin
	}
}

// WithKeepAlive sets the idle interval before a stream keep-alive.
func WithKeepAlive(interval time.Duration) Option {
	return func(s *Server) {
		if interval > 0 {
			s.streamHandler.keepAlive = interval
		}
	}
}

// WithDefaultWindowDays sets the window used when days is omitted.
func WithDefaultWindowDays(days int) Option {
	return func(s *Server) {
		if days > 0 {
			s.historyHandler.defaultDays = days
			s.exportHandler.defaultDays = days
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		ingestHandler:  NewIngestHandler(deps),
		streamHandler:  NewStreamHandler(deps, defaultKeepAlive),
		historyHandler: NewHistoryHandler(deps, defaultWindowDays),
		exportHandler:  NewExportHandler(deps, defaultWindowDays),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	s.ingestHandler.token = s.authToken
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	cors := func(h http.HandlerFunc) http.HandlerFunc {
		return CORSMiddleware(h, s.allowedOrigin)
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/ingest", MetricsMiddleware(cors(s.ingestHandler.HandleIngest), "ingest"))
	mux.HandleFunc("/ingest-txt", MetricsMiddleware(cors(s.ingestHandler.HandleIngestText), "ingest-txt"))
	mux.HandleFunc("/stream", cors(s.streamHandler.HandleStream))
	mux.HandleFunc("/history", MetricsMiddleware(cors(s.historyHandler.HandleHistory), "history"))
	mux.HandleFunc("/download", MetricsMiddleware(cors(s.exportHandler.HandleDownloadAll), "download"))
	mux.HandleFunc("/download-range", MetricsMiddleware(cors(s.exportHandler.HandleDownloadRange), "download-range"))
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
