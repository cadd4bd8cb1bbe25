// Package httpclient is the shared transport for model provider adapters:
// JSON over HTTP with rate limiting and retry on transient failures.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/logger"
)

// Default configuration values.
const (
	DefaultTimeout    = 120 * time.Second
	DefaultRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 10 * time.Second

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 2048
)

// Config holds transport settings.
type Config struct {
	// Timeout bounds one HTTP attempt.
	Timeout time.Duration

	// RetryAttempts is the total number of attempts; 0 and 1 both mean no retry.
	RetryAttempts uint

	// RetryDelay is the initial backoff, doubled per attempt.
	RetryDelay time.Duration

	// RequestsPerMinute limits requests; 0 is unlimited.
	RequestsPerMinute int
}

// ConfigFromSettings builds a Config from application settings.
func ConfigFromSettings(t domain.TransportSettings, timeout time.Duration) Config {
	return Config{
		Timeout:           timeout,
		RetryAttempts:     t.RetryAttempts,
		RetryDelay:        t.RetryDelay,
		RequestsPerMinute: t.RequestsPerMinute,
	}
}

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps 429 to domain.ErrRateLimited.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	return nil
}

// Temporary reports whether the request may succeed if repeated.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode >= 500
}

// Client sends JSON requests for one provider.
type Client struct {
	http     *http.Client
	limiter  *RateLimiter
	attempts uint
	delay    time.Duration
}

// New creates a client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  NewRateLimiter(cfg.RequestsPerMinute),
		attempts: cfg.RetryAttempts,
		delay:    cfg.RetryDelay,
	}
}

// PostJSON sends body as JSON and decodes a 2xx response into out.
// Transient failures are retried with exponential backoff.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, url, headers, payload, out)
}

// Get sends a GET and decodes a 2xx response into out, which may be nil.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string, out any) error {
	return c.do(ctx, http.MethodGet, url, headers, nil, out)
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string, payload []byte, out any) error {
	return retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return c.once(ctx, method, url, headers, payload, out)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("Retrying %s %s (attempt %d): %v", method, url, n+2, err)
		}),
	)
}

// once performs a single attempt.
func (c *Client) once(ctx context.Context, method, url string, headers map[string]string, payload []byte, out any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(data), maxErrorBody),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.RecordRateLimit(statusErr.RetryAfter)
		}
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return retry.Unrecoverable(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// isTransient reports whether err is worth another attempt.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	// Network-level failures.
	return true
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return time.Until(at)
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
