package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the remote document store's REST API.
//
// Design decision: We use a struct with a shared http.Client rather
// than passing one on each call because:
//  1. Credential and timeout configuration should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with an httptest server
type Client struct {
	// server is the site root, e.g. https://acme.example.net.
	server string

	// baseURL is the content API root under the site.
	baseURL string

	// email and token authenticate every request via basic auth.
	email string
	token string

	// spaceKey is the default space for page creation. When empty, new
	// pages inherit the space of their parent.
	spaceKey string

	client *http.Client

	// maxRetries bounds retransmissions of a failed request. Only
	// transient failures are retried.
	maxRetries int

	// retryDelay is the base backoff, doubled on each attempt.
	retryDelay time.Duration

	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Tests use this to
// point the client at a local server with custom transport settings.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries bounds retries of transient failures. Zero disables
// retrying entirely.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets the base backoff between retries.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithSpaceKey sets the default space for page creation.
func WithSpaceKey(key string) Option {
	return func(c *Client) {
		c.spaceKey = key
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the store rooted at server. The server
// URL is the site root without the API path suffix.
func NewClient(server, email, token string, opts ...Option) *Client {
	server = strings.TrimRight(server, "/")
	c := &Client{
		server:     server,
		baseURL:    server + "/wiki/rest/api",
		email:      email,
		token:      token,
		client:     &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends one API request, retrying transient failures. The body is
// kept as bytes so each attempt replays an identical request. The
// response body is fully read so the connection can be reused.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, contentType string, header http.Header) ([]byte, int, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, 0, fmt.Errorf("build request: %w", err)
		}
		req.SetBasicAuth(c.email, c.token)
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%s %s: %w", method, path, err)
			if ctx.Err() != nil || attempt >= c.maxRetries {
				return nil, 0, lastErr
			}
			if err := c.backoff(ctx, method, path, attempt, 0); err != nil {
				return nil, 0, err
			}
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, 0, fmt.Errorf("%s %s: read response: %w", method, path, readErr)
		}

		if retryableStatus(resp.StatusCode) && attempt < c.maxRetries {
			if err := c.backoff(ctx, method, path, attempt, resp.StatusCode); err != nil {
				return nil, 0, err
			}
			continue
		}
		return data, resp.StatusCode, nil
	}
}

// retryableStatus reports whether a status indicates a transient
// condition. 429 is throttling; 5xx is a server-side fault. Other 4xx
// statuses would fail identically on resend.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func (c *Client) backoff(ctx context.Context, method, path string, attempt, status int) error {
	delay := c.retryDelay << uint(attempt)
	c.logger.Debug("retrying request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("attempt", attempt+1),
		slog.Int("status", status),
		slog.Duration("delay", delay))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	data, status, err := c.do(ctx, http.MethodGet, path, query, nil, "", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return c.statusError(http.MethodGet, path, status, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// sendJSON issues a request with a JSON payload and decodes the
// response into out when out is non-nil.
func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", path, err)
	}
	data, status, err := c.do(ctx, method, path, nil, body, "application/json", nil)
	if err != nil {
		return 0, err
	}
	if status < 200 || status >= 300 {
		return status, c.statusError(method, path, status, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return status, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return status, nil
}

// statusError maps a non-success response to an error. The server's
// own message is surfaced when it sends one.
func (c *Client) statusError(method, path string, status int, body []byte) error {
	if status == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	return &APIError{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Message:    errorMessage(body),
	}
}

// errorMessage extracts the human-readable detail from an error
// response body, falling back to a truncated raw body.
func errorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
