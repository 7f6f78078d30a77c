// Package hub implements the in-memory broadcast hub.
package hub

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithBufferSize sets the per-subscriber pending-line buffer size.
func WithBufferSize(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.buffer = size
		}
	}
}
