// Package appendlog implements the durable, append-only line store.
//
// One Log owns one plain-text file: UTF-8, one record per line, never
// rewritten or compacted. Appends are serialized by a mutex so
// concurrent writers cannot interleave mid-line; reads always rescan
// the file from the start and fail open to an empty sequence when the
// file is missing.
package appendlog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/okian/pulse/pkg/metrics"
)

// Scanner buffer bounds. Lines are small CSV records but a corrupt
// write should not abort a whole scan.
const (
	scanInitialBuffer = 64 * 1024
	scanMaxLine       = 1024 * 1024
)

const filePermission = 0o644

// Log is the exclusive owner of the append-only file at path.
type Log struct {
	mu   sync.Mutex
	path string
}

// New returns a Log for path. The file is not touched until the first
// Append or Touch call.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the backing file path.
func (l *Log) Path() string {
	return l.path
}

// Touch creates the file empty if it does not exist yet.
func (l *Log) Touch() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermission)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAppend, err)
	}
	return f.Close()
}

// Append writes one normalized line plus a single terminator. Trailing
// CR/LF are stripped first; a blank result is a silent no-op. The write
// happens under the log mutex and the file is opened and closed per
// call so the line is visible to the next Scan immediately.
func (l *Log) Append(ctx context.Context, line string) error {
	safe := strings.TrimRight(line, "\r\n")
	if safe == "" {
		return nil
	}

	start := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermission)
	if err != nil {
		metrics.RecordAppendError()
		metrics.RecordErrorByComponent("appendlog", "open")
		return fmt.Errorf("%w: %w", ErrAppend, err)
	}

	_, werr := f.WriteString(safe + "\n")
	cerr := f.Close()
	if werr != nil {
		metrics.RecordAppendError()
		metrics.RecordErrorByComponent("appendlog", "write")
		return fmt.Errorf("%w: %w", ErrAppend, werr)
	}
	if cerr != nil {
		metrics.RecordAppendError()
		metrics.RecordErrorByComponent("appendlog", "close")
		return fmt.Errorf("%w: %w", ErrAppend, cerr)
	}

	metrics.RecordAppendLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	metrics.UpdateLogSize(l.sizeLocked())
	return nil
}

// Scan reads every non-blank line in physical append order, invoking fn
// for each. fn returning false stops the scan early. A missing or
// unreadable file yields an empty sequence with a nil error; the query
// path prefers empty results over hard failures.
func (l *Log) Scan(ctx context.Context, fn func(line string) bool) error {
	f, err := os.Open(l.path)
	if err != nil {
		// No log yet. Nothing to report.
		return nil
	}
	defer f.Close()

	start := time.Now()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, scanInitialBuffer), scanMaxLine)
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !fn(line) {
			break
		}
	}
	if err := sc.Err(); err != nil {
		metrics.RecordErrorByComponent("appendlog", "scan")
		return fmt.Errorf("%w: %w", ErrScan, err)
	}

	metrics.RecordScanLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	return nil
}

// Lines collects the whole log into memory. Intended for tests and
// small logs; the query path streams via Scan.
func (l *Log) Lines(ctx context.Context) ([]string, error) {
	var out []string
	err := l.Scan(ctx, func(line string) bool {
		out = append(out, line)
		return true
	})
	return out, err
}

// WriteTo streams the raw file verbatim into w. A missing file writes
// nothing and reports no error, matching the fail-open read contract.
func (l *Log) WriteTo(w io.Writer) (int64, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", ErrScan, err)
	}
	defer f.Close()
	return io.Copy(w, f)
}

// Size returns the current byte size of the log, 0 when absent.
func (l *Log) Size() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sizeLocked()
}

func (l *Log) sizeLocked() int64 {
	info, err := os.Stat(l.path)
	if err != nil {
		return 0
	}
	return info.Size()
}
