package testfeed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/pulse/pkg/logger"
)

// Run executes the complete feed test: health check, generation,
// concurrent submission, then a history readback.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting pulse feed test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("lines", config.NumLines),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("raw", config.Raw))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	lines, err := generateLines(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("line generation failed: %w", err)
	}

	if err := submitLines(ctx, config, lines, stats); err != nil {
		return fmt.Errorf("line submission failed: %w", err)
	}

	if err := readBackHistory(ctx, config, stats); err != nil {
		return fmt.Errorf("history readback failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "feed test completed")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout, config.AuthToken)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// submitLines submits lines concurrently using a worker pool.
func submitLines(ctx context.Context, config *Config, lines []Line, stats *Stats) error {
	logger.Get().Info(ctx, "submitting lines",
		logger.Int("count", len(lines)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout, config.AuthToken)
	url := config.BaseURL + "/ingest"
	if config.Raw {
		url = config.BaseURL + "/ingest-txt"
	}

	var (
		successful int64
		failed     int64
		submitted  int64
	)

	lineChan := make(chan Line, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for line := range lineChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddInt64(&submitted, 1)
				if err := submitOne(ctx, client, url, line.Encode(), config.Raw); err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						logger.Get().Warn(ctx, "submission failed", logger.Error(err))
					}
				} else {
					atomic.AddInt64(&successful, 1)
				}

				if config.Interval > 0 {
					time.Sleep(config.Interval)
				}
			}
		}()
	}

	for _, line := range lines {
		select {
		case <-ctx.Done():
			close(lineChan)
			wg.Wait()
			return fmt.Errorf("submission canceled: %w", ctx.Err())
		case lineChan <- line:
		}
	}
	close(lineChan)
	wg.Wait()

	stats.LinesSubmitted = int(submitted)
	stats.LinesSuccessful = int(successful)
	stats.LinesFailed = int(failed)

	if failed > 0 {
		logger.Get().Warn(ctx, "some submissions failed", logger.Int64("failed", failed))
	}
	return nil
}

// submitOne posts one encoded line and checks the acknowledgement.
func submitOne(ctx context.Context, client *HTTPClient, url, encoded string, raw bool) error {
	var (
		resp *http.Response
		err  error
	)
	if raw {
		resp, err = client.PostText(ctx, url, encoded)
	} else {
		resp, err = client.PostJSON(ctx, url, encoded)
	}
	if err != nil {
		return fmt.Errorf("post failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// readBackHistory queries the last day and records how many lines the
// service reports.
func readBackHistory(ctx context.Context, config *Config, stats *Stats) error {
	logger.Get().Info(ctx, "reading back history")

	client := newHTTPClient(config.Timeout, config.AuthToken)
	resp, err := client.Get(ctx, config.BaseURL+"/history?days=1")
	if err != nil {
		return fmt.Errorf("history request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	text := strings.TrimSpace(string(body))
	if text != "" {
		stats.HistoryLines = len(strings.Split(text, "\n"))
	}

	logger.Get().Info(ctx, "history read back", logger.Int("lines", stats.HistoryLines))
	return nil
}

// displayFinalStats logs the end-of-run summary.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "feed test statistics",
		logger.Int("generated", stats.LinesGenerated),
		logger.Int("submitted", stats.LinesSubmitted),
		logger.Int("successful", stats.LinesSuccessful),
		logger.Int("failed", stats.LinesFailed),
		logger.Int("historyLines", stats.HistoryLines),
		logger.Duration("duration", stats.Duration))
}
