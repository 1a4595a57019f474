// Package fetch retrieves the published archive over HTTP. It is the
// pipeline's only network collaborator: the transformation core consumes
// bytes and never retries - retry policy lives here.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultURL is the published Drugs@FDA download location.
const DefaultURL = "https://www.fda.gov/media/89850/download"

// Client downloads the source archive with bounded retries.
type Client struct {
	http    *http.Client
	retries int
	backoff time.Duration
}

// New builds a client. timeout bounds each attempt; retries is the number
// of additional attempts after the first.
func New(timeout time.Duration, retries int) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		retries: retries,
		backoff: 2 * time.Second,
	}
}

// Download fetches the archive bytes. Transport errors and 5xx responses
// are retried with linear backoff; 4xx responses fail immediately since
// retrying a client error cannot succeed.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying archive download", "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		data, retryable, err := c.attempt(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, fmt.Errorf("fetch: download failed after %d attempts: %w", c.retries+1, lastErr)
}

func (c *Client) attempt(ctx context.Context, url string) (data []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("fetch: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("fetch: %s returned %s", url, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("fetch: %s returned %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("fetch: read body: %w", err)
	}
	return body, false, nil
}
