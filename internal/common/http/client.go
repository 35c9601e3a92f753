// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

// DoWithRetry re-issues a request up to attempts times with exponential
// backoff. Only safe for idempotent requests; writes must not go through
// here. build must return a fresh request each attempt since bodies are
// consumed on send.
func (c *Client) DoWithRetry(ctx context.Context, attempts int, build func() (*http.Request, error)) (*http.Response, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := 200 * time.Millisecond

	for i := 0; i < attempts; i++ {
		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := c.DoWithContext(ctx, req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if err != nil {
			lastErr = err
		} else {
			resp.Body.Close()
			lastErr = &StatusError{Code: resp.StatusCode}
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return nil, lastErr
}

// StatusError reports a 5xx response that exhausted the retry budget.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return http.StatusText(e.Code)
}
