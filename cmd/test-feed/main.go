package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/pulse/internal/testfeed"
)

// Default configuration constants.
const (
	defaultNumLines    = 1000
	defaultWorkers     = 4
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "Base URL of the service")
		numLines = flag.Int("lines", defaultNumLines, "Number of metric lines to generate and submit")
		workers  = flag.Int("workers", defaultWorkers, "Number of concurrent workers")
		interval = flag.Duration("interval", 0, "Pause between submissions per worker")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		token    = flag.String("token", "bbbdatamonitor", "Ingest auth token")
		raw      = flag.Bool("raw", false, "Submit raw text bodies via /ingest-txt")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testfeed.ShowHelp()
		return
	}

	if err := testfeed.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &testfeed.Config{
		BaseURL:   *baseURL,
		NumLines:  *numLines,
		Workers:   *workers,
		Timeout:   *timeout,
		Interval:  *interval,
		AuthToken: *token,
		Raw:       *raw,
		Verbose:   *verbose,
	}

	if err := testfeed.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Feed test failed: " + err.Error() + "\n")
		return
	}
}
