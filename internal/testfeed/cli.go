package testfeed

import (
	"fmt"
	"os"

	"github.com/okian/pulse/pkg/logger"
)

// SetupLogging initializes the structured logger for the feed tool.
func SetupLogging(verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the feed tool.
func ShowHelp() {
	os.Stdout.WriteString(`Pulse Feed Test Tool
====================

Generates synthetic sensor metric lines and submits them to a running
pulse service, then reads the history back.

Usage:
  go run cmd/test-feed/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -lines int
        Number of metric lines to generate and submit (default 1000)
  -workers int
        Number of concurrent workers (default 4)
  -interval duration
        Pause between submissions per worker (default 0)
  -timeout duration
        HTTP request timeout (default 30s)
  -token string
        Ingest auth token (default "bbbdatamonitor")
  -raw
        Submit raw text bodies via /ingest-txt instead of JSON
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Feed with default settings
  go run cmd/test-feed/main.go

  # Simulate a live sensor at one reading per second
  go run cmd/test-feed/main.go -lines 300 -workers 1 -interval 1s

  # Feed raw text bodies
  go run cmd/test-feed/main.go -raw -lines 5000
`)
}
