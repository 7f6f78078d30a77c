package testfeed

import "time"

// Config holds configuration for the feed test
type Config struct {
	BaseURL   string        // Base URL of the service
	NumLines  int           // Number of metric lines to generate
	Workers   int           // Number of concurrent workers
	Timeout   time.Duration // HTTP request timeout
	Interval  time.Duration // Pause between submissions per worker
	AuthToken string        // Ingest auth token
	Raw       bool          // Submit via /ingest-txt instead of /ingest
	Verbose   bool          // Enable verbose logging
}

// Line represents one generated metric reading in wire form.
type Line struct {
	Date        string
	Time        string
	OriginalDL  float64
	PredictedDL float64
	Temperature float64
	Pressure    float64
}

// AckResponse represents the response from line submission
type AckResponse struct {
	Status string `json:"status"`
}

// Stats holds test statistics
type Stats struct {
	LinesGenerated  int
	LinesSubmitted  int
	LinesSuccessful int
	LinesFailed     int
	HistoryLines    int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
