// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer sources.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir is the directory holding the append-only metrics log.
	DataDir string `koanf:"data_dir"`

	// DataFile is the log file name inside DataDir.
	DataFile string `koanf:"data_file"`

	// AuthToken is the shared secret checked on every ingest call.
	AuthToken string `koanf:"auth_token"`

	// AllowedOrigin is sent back as Access-Control-Allow-Origin; empty disables CORS.
	AllowedOrigin string `koanf:"allowed_origin"`

	// StreamBuffer bounds each live subscriber's pending-line buffer.
	StreamBuffer int `koanf:"stream_buffer"`

	// KeepAliveSeconds is the idle interval before a stream keep-alive is sent.
	KeepAliveSeconds int `koanf:"keepalive_seconds"`

	// DefaultWindowDays is used when a history query omits the days parameter.
	DefaultWindowDays int `koanf:"default_window_days"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":8080",
		DataDir:           "./data",
		DataFile:          "metrics.csv",
		AuthToken:         "bbbdatamonitor",
		AllowedOrigin:     "http://localhost:8000",
		StreamBuffer:      256,
		KeepAliveSeconds:  15,
		DefaultWindowDays: 7,
	}
}
