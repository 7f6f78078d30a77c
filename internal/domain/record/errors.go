package record

import "errors"

// Sentinel kinds for codec errors.
var (
	ErrTooFewFields = errors.New("fewer than six fields")
)
