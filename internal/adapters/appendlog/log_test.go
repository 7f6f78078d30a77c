package appendlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "metrics.csv"))
}

func TestAppendAndScan(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	if err := l.Append(ctx, "a,b,c,d,e,f"); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := l.Append(ctx, "g,h,i,j,k,l\r\n"); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	lines, err := l.Lines(ctx)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	want := []string{"a,b,c,d,e,f", "g,h,i,j,k,l"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestAppendBlankIsNoOp(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	for _, in := range []string{"", "\n", "\r\n", "\r\n\r\n"} {
		if err := l.Append(ctx, in); err != nil {
			t.Fatalf("blank append %q errored: %v", in, err)
		}
	}

	if _, err := os.Stat(l.Path()); !os.IsNotExist(err) {
		// Touch was never called, so even the file should be absent.
		t.Errorf("expected no file after blank appends, got stat err %v", err)
	}
	lines, err := l.Lines(ctx)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected empty log, got %d lines", len(lines))
	}
}

func TestScanMissingFile(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "absent.csv"))

	lines, err := l.Lines(context.Background())
	if err != nil {
		t.Fatalf("expected nil error for missing file, got %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected empty sequence, got %d lines", len(lines))
	}
}

func TestScanIsRestartable(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	if err := l.Append(ctx, "1,1,1,1,1,1"); err != nil {
		t.Fatal(err)
	}

	for pass := 0; pass < 2; pass++ {
		lines, err := l.Lines(ctx)
		if err != nil {
			t.Fatalf("pass %d: %v", pass, err)
		}
		if len(lines) != 1 {
			t.Fatalf("pass %d: expected 1 line, got %d", pass, len(lines))
		}
	}
}

func TestScanEarlyStop(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := l.Append(ctx, fmt.Sprintf("%d,a,b,c,d,e", i)); err != nil {
			t.Fatal(err)
		}
	}

	var seen int
	if err := l.Scan(ctx, func(string) bool {
		seen++
		return seen < 2
	}); err != nil {
		t.Fatal(err)
	}
	if seen != 2 {
		t.Errorf("expected early stop after 2 lines, saw %d", seen)
	}
}

func TestTouchCreatesEmptyFile(t *testing.T) {
	l := newTestLog(t)

	if err := l.Touch(); err != nil {
		t.Fatalf("touch failed: %v", err)
	}
	info, err := os.Stat(l.Path())
	if err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty file, got %d bytes", info.Size())
	}
	if l.Size() != 0 {
		t.Errorf("expected Size 0, got %d", l.Size())
	}
}

func TestWriteToStreamsVerbatim(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	if err := l.Append(ctx, "x,y,z,1,2,3"); err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	n, err := l.WriteTo(&sb)
	if err != nil {
		t.Fatalf("write-to failed: %v", err)
	}
	if want := "x,y,z,1,2,3\n"; sb.String() != want {
		t.Errorf("expected %q, got %q", want, sb.String())
	}
	if n != int64(len(sb.String())) {
		t.Errorf("expected %d bytes copied, got %d", len(sb.String()), n)
	}
}

func TestWriteToMissingFile(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "absent.csv"))

	var sb strings.Builder
	n, err := l.WriteTo(&sb)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if n != 0 || sb.Len() != 0 {
		t.Errorf("expected empty copy, got %d bytes", n)
	}
}

func TestConcurrentAppendsDoNotInterleave(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				line := fmt.Sprintf("w%d,%d,a,b,c,d", id, i)
				if err := l.Append(ctx, line); err != nil {
					t.Errorf("append failed: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	lines, err := l.Lines(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != writers*perWriter {
		t.Fatalf("expected %d lines, got %d", writers*perWriter, len(lines))
	}
	for _, line := range lines {
		if strings.Count(line, ",") != 5 {
			t.Errorf("interleaved or torn line: %q", line)
		}
	}
}
