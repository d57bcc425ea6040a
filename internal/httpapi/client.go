package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"curveOps/internal/retry"
)

const maxBodyBytes = 32 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// Client issues JSON requests with retries.
type Client struct {
	http   *http.Client
	retry  retry.Policy
	logger *zap.Logger
}

func NewClient(timeout time.Duration, policy retry.Policy, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		retry:  policy,
		logger: logger,
	}
}

// GetJSON performs a GET with query parameters and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	target := endpoint
	if len(query) > 0 {
		target = endpoint + "?" + query.Encode()
	}
	return c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	}, out)
}

// PostJSON posts body encoded as JSON and decodes the JSON response into out.
func (c *Client) PostJSON(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, out)
}

// PostBody posts a prebuilt body with the given content type.
func (c *Client) PostBody(ctx context.Context, endpoint, contentType string, body []byte, out interface{}) error {
	return c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	}, out)
}

func (c *Client) do(ctx context.Context, build func(context.Context) (*http.Request, error), out interface{}) error {
	return retry.Do(ctx, c.retry, func(ctx context.Context) error {
		req, err := build(ctx)
		if err != nil {
			return retry.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Warn("http request failed", zap.String("host", req.URL.Host), zap.String("path", req.URL.Path), zap.Error(err))
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 256)}
			c.logger.Warn("http status", zap.String("host", req.URL.Host), zap.String("path", req.URL.Path), zap.Int("status", resp.StatusCode))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return statusErr
			}
			return retry.Permanent(statusErr)
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return retry.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
