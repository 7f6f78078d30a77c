package appendlog

import "errors"

// Sentinel kinds for log errors.
var (
	ErrAppend = errors.New("log append failed")
	ErrScan   = errors.New("log scan failed")
)
