package api_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/pulse/internal/adapters/http/api"
)

// waitForSubscribers polls the hub until it holds want subscribers.
func waitForSubscribers(t *testing.T, deps *mockDeps, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if deps.hub.Count(context.Background()) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscriber count never reached %d", want)
}

func TestStreamDeliversPublishedLines(t *testing.T) {
	deps := newMockDeps()
	mux := newTestMux(deps)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect stream: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	waitForSubscribers(t, deps, 1)
	deps.hub.Publish(context.Background(), "2025-01-02,10:00:00,1.0,1.1,50.0,13.0")

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	if line != "data: 2025-01-02,10:00:00,1.0,1.1,50.0,13.0\n" {
		t.Fatalf("event line = %q", line)
	}
	if blank, _ := reader.ReadString('\n'); blank != "\n" {
		t.Fatalf("event terminator = %q", blank)
	}

	// Disconnecting must unregister the session's subscriber.
	cancel()
	waitForSubscribers(t, deps, 0)
}

func TestStreamEmitsKeepAliveWhenIdle(t *testing.T) {
	deps := newMockDeps()
	mux := newTestMux(deps, api.WithKeepAlive(50*time.Millisecond))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect stream: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read keep-alive: %v", err)
	}
	if line != ": ping\n" {
		t.Fatalf("keep-alive line = %q", line)
	}
}

func TestStreamRejectsNonGET(t *testing.T) {
	deps := newMockDeps()
	mux := newTestMux(deps)

	req := httptest.NewRequest(http.MethodPost, "/stream", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if deps.hub.Count(context.Background()) != 0 {
		t.Fatal("rejected request must not register a subscriber")
	}
}
