// Package service provides the core telemetry service that implements
// the dependencies required by the HTTP API: durable ingestion,
// live-stream subscription, and windowed historical queries.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/okian/pulse/internal/adapters/appendlog"
	"github.com/okian/pulse/internal/adapters/mq/hub"
	"github.com/okian/pulse/internal/domain/record"
	"github.com/okian/pulse/pkg/logger"
	"github.com/okian/pulse/pkg/metrics"
)

// Default configuration constants.
const (
	defaultDataDir      = "./data"
	defaultDataFile     = "metrics.csv"
	defaultStreamBuffer = 256
	defaultWindowDays   = 7

	dataDirPermission = 0o755
	hoursPerDay       = 24
)

// Service owns the two shared resources of the system: the append-only
// log and the broadcast hub. Ingest sequences them strictly: a line is
// durable before any subscriber sees it.
type Service struct {
	mu sync.RWMutex

	// Core components
	log *appendlog.Log
	hub *hub.Hub

	// Configuration
	dataDir      string
	dataFile     string
	streamBuffer int
	windowDays   int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataDir sets the directory holding the append-only log.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithDataFile sets the log file name inside the data directory.
func WithDataFile(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.dataFile = name
		}
	}
}

// WithStreamBuffer sets the per-subscriber pending-line buffer size.
func WithStreamBuffer(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.streamBuffer = size
		}
	}
}

// WithDefaultWindowDays sets the window used when a query omits days.
func WithDefaultWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataDir:      defaultDataDir,
		dataFile:     defaultDataFile,
		streamBuffer: defaultStreamBuffer,
		windowDays:   defaultWindowDays,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the log file and the broadcast hub. The log file
// is created empty on first startup if absent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if err := os.MkdirAll(s.dataDir, dataDirPermission); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	s.log = appendlog.New(filepath.Join(s.dataDir, s.dataFile))
	if err := s.log.Touch(); err != nil {
		return fmt.Errorf("create log file: %w", err)
	}
	s.hub = hub.New(hub.WithBufferSize(s.streamBuffer))

	s.started = true
	s.logger.Info(ctx, "telemetry service started",
		logger.String("logFile", s.log.Path()),
		logger.Int("streamBuffer", s.streamBuffer),
		logger.Int("defaultWindowDays", s.windowDays),
	)
	return nil
}

// Stop shuts the service down: the hub closes so live sessions drain
// and exit. The log needs no teardown; every append closes the file.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	_ = s.hub.Close()
	s.started = false
	s.logger.Info(context.Background(), "telemetry service stopped")
}

// Ingest normalizes one line, appends it to the durable log, then
// publishes it to live subscribers, strictly in that order. A blank
// line after normalization is a successful no-op. If the append fails
// the line is never published.
func (s *Service) Ingest(ctx context.Context, line string) error {
	safe := normalize(line)
	if strings.TrimSpace(safe) == "" {
		// Empty heartbeat: nothing stored, nothing published.
		metrics.RecordIngestBlank()
		return nil
	}

	if err := s.log.Append(ctx, safe); err != nil {
		s.logger.Error(ctx, "append failed, line not published", logger.Error(err))
		return err
	}
	metrics.RecordIngested()

	delivered := s.hub.Publish(ctx, safe)
	s.logger.Debug(ctx, "line ingested",
		logger.Int("delivered", delivered),
		logger.Int("bytes", len(safe)),
	)
	return nil
}

// Subscribe registers a new live-stream subscriber with the hub.
func (s *Service) Subscribe(ctx context.Context) *hub.Subscriber {
	return s.hub.Register(ctx)
}

// Unsubscribe removes a subscriber; safe to call more than once.
func (s *Service) Unsubscribe(ctx context.Context, sub *hub.Subscriber) {
	s.hub.Unregister(ctx, sub)
}

// History returns every log line whose timestamp falls within the last
// days*24h, in physical append order. days below one is clamped to
// one. Lines with fewer than six fields are dropped; lines whose
// timestamp cannot be parsed are included (fail-open).
func (s *Service) History(ctx context.Context, days int) []string {
	if days < 1 {
		days = 1
	}
	cutoff := time.Now().UTC().Add(-time.Duration(days) * hoursPerDay * time.Hour)

	metrics.RecordHistoryQuery()

	var out []string
	_ = s.log.Scan(ctx, func(line string) bool {
		rec, err := record.Decode(line)
		if err != nil {
			// Not a record. Drop it entirely.
			return true
		}
		ts, err := rec.Timestamp()
		if err != nil {
			// Malformed timestamp but a plausible record: include it
			// rather than silently losing data.
			out = append(out, line)
			return true
		}
		if !ts.Before(cutoff) {
			out = append(out, line)
		}
		return true
	})
	return out
}

// WriteLog streams the entire durable log verbatim into w. A missing
// log writes nothing.
func (s *Service) WriteLog(w io.Writer) (int64, error) {
	return s.log.WriteTo(w)
}

// DefaultWindowDays returns the configured default query window.
func (s *Service) DefaultWindowDays() int {
	return s.windowDays
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started": s.started,
	}
	if s.started {
		size := s.log.Size()
		subs := s.hub.Count(ctx)

		stats["logFile"] = s.log.Path()
		stats["logSizeBytes"] = size
		stats["subscribers"] = subs

		metrics.UpdateLogSize(size)
		metrics.UpdateSubscriberCount(subs)
	}
	return stats
}

// normalize strips trailing line terminators; blank heartbeats reduce
// to the empty string.
func normalize(line string) string {
	return strings.TrimRight(line, "\r\n")
}
