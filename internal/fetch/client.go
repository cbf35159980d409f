package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openzim/ted/internal/logging"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "Mozilla/5.0"

	// maxAttempts bounds the retry loop; the fifth failure is final.
	maxAttempts = 5
	// pacingInterval is waited before every attempt so a healthy run never
	// trips server-side rate limiting in the first place.
	pacingInterval = time.Second
	// rateLimitBackoffUnit grows linearly with the attempt number after a 429.
	rateLimitBackoffUnit = 30 * time.Second
)

// Client issues GET and POST requests with bounded retry and pacing.
type Client struct {
	http        *http.Client
	userAgent   string
	pacing      time.Duration
	backoffUnit time.Duration
	logger      *slog.Logger
}

// Option customizes a client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithUserAgent overrides the User-Agent header. The source rejects requests
// with an empty or default library agent, so blank values are ignored.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if strings.TrimSpace(agent) != "" {
			c.userAgent = strings.TrimSpace(agent)
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithPacing overrides the fixed pre-attempt delay. Tests shrink it.
func WithPacing(pacing time.Duration) Option {
	return func(c *Client) {
		if pacing >= 0 {
			c.pacing = pacing
		}
	}
}

// WithBackoffUnit overrides the per-attempt rate-limit backoff unit. Tests shrink it.
func WithBackoffUnit(unit time.Duration) Option {
	return func(c *Client) {
		if unit >= 0 {
			c.backoffUnit = unit
		}
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "fetch")
		}
	}
}

// NewClient constructs a client with the repository retry policy.
func NewClient(opts ...Option) *Client {
	client := &Client{
		http:        &http.Client{Timeout: defaultTimeout},
		userAgent:   defaultUserAgent,
		pacing:      pacingInterval,
		backoffUnit: rateLimitBackoffUnit,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Response carries the status and body of a completed request.
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Get retrieves a URL, retrying per the repository policy.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.do(ctx, url, nil)
}

// PostJSON sends body as JSON, retrying per the repository policy.
func (c *Client) PostJSON(ctx context.Context, url string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return c.do(ctx, url, payload)
}

// Download streams a URL to a file using the same retry policy. Used for
// media assets too large to buffer.
func (c *Client) Download(ctx context.Context, url, path string) error {
	resp, err := c.doRaw(ctx, url, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, url string, body []byte) (*Response, error) {
	resp, err := c.doRaw(ctx, url, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", url, err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

func (c *Client) doRaw(ctx context.Context, url string, body []byte) (*http.Response, error) {
	var lastStatus int
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Fixed pacing before every attempt, successful or not.
		if err := sleepContext(ctx, c.pacing); err != nil {
			return nil, err
		}

		req, err := c.newRequest(ctx, url, body)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Debug("request failed, retrying",
				logging.String("url", url),
				logging.Int("attempt", attempt),
				logging.Error(err),
			)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			_ = resp.Body.Close()
			return nil, &NotFoundError{URL: url}
		case resp.StatusCode == http.StatusTooManyRequests:
			_ = resp.Body.Close()
			lastStatus = resp.StatusCode
			lastErr = nil
			backoff := c.backoffUnit * time.Duration(attempt)
			c.logger.Warn("rate limited, backing off",
				logging.String("url", url),
				logging.Int("attempt", attempt),
				logging.Duration("backoff", backoff),
			)
			if err := sleepContext(ctx, backoff); err != nil {
				return nil, err
			}
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		default:
			_ = resp.Body.Close()
			lastStatus = resp.StatusCode
			lastErr = nil
			c.logger.Debug("unexpected status, retrying",
				logging.String("url", url),
				logging.Int("attempt", attempt),
				logging.Int("status", resp.StatusCode),
			)
		}
	}

	return nil, &ExhaustedError{
		URL:        url,
		Attempts:   maxAttempts,
		LastStatus: lastStatus,
		Body:       string(body),
		Err:        lastErr,
	}
}

func (c *Client) newRequest(ctx context.Context, url string, body []byte) (*http.Request, error) {
	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
