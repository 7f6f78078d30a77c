package testfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// authHeader carries the shared ingest secret.
const authHeader = "X-Auth-Token"

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
	token  string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration, token string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		token: token,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// PostJSON submits one line wrapped in the JSON ingest envelope.
func (c *HTTPClient) PostJSON(ctx context.Context, url, line string) (*http.Response, error) {
	body, err := json.Marshal(map[string]string{"line": line})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(authHeader, c.token)
	return c.client.Do(req)
}

// PostText submits one line as a raw text body.
func (c *HTTPClient) PostText(ctx context.Context, url, line string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(line+"\n"))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set(authHeader, c.token)
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
