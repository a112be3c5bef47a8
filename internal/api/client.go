package api

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

	"github.com/google/uuid"
)

// Credentials supplies the bearer token for authenticated calls. The session
// gate implements it; an empty token means the viewer is anonymous.
type Credentials interface {
	Token() string
}

// Client talks to the course platform's REST API.
type Client struct {
	baseURL       *url.URL
	http          *http.Client
	userAgent     string
	timeout       time.Duration
	uploadTimeout time.Duration
	creds         Credentials
	metrics       *Metrics
	logger        *slog.Logger
}

const (
	defaultBaseURL       = "http://localhost:5000/api/v2"
	defaultUserAgent     = "gittutor/0.1"
	defaultTimeout       = 30 * time.Second
	defaultUploadTimeout = 10 * time.Minute
	maxErrorBody         = 64 * 1024
)

// Option customizes a Client.
type Option func(*Client)

// WithTimeout bounds every non-upload request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithMetrics records request counts and latency.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger routes request logging to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a Client for the API rooted at baseURL. The path of baseURL
// is kept, so "http://host/api/v2" resolves "courses" to "/api/v2/courses".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:       base,
		http:          &http.Client{},
		userAgent:     defaultUserAgent,
		timeout:       defaultTimeout,
		uploadTimeout: defaultUploadTimeout,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// UseCredentials attaches the bearer source consulted on every request.
func (c *Client) UseCredentials(creds Credentials) {
	c.creds = creds
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// call describes one request.
type call struct {
	method      string
	endpoint    string // stable label for logs and metrics
	path        []string
	query       url.Values
	auth        bool
	body        io.Reader
	contentType string
	upload      bool
}

func (c *Client) token() string {
	if c.creds == nil {
		return ""
	}
	return strings.TrimSpace(c.creds.Token())
}

// send performs the request and returns the raw response body of a 2xx reply.
// Every failure is returned as *Error.
func (c *Client) send(ctx context.Context, cl call) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	token := c.token()
	if cl.auth && token == "" {
		return nil, ErrNoCredential
	}

	timeout := c.timeout
	if cl.upload {
		timeout = c.uploadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL := c.baseURL.JoinPath(cl.path...)
	if len(cl.query) > 0 {
		reqURL.RawQuery = cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, reqURL.String(), cl.body)
	if err != nil {
		return nil, &Error{Kind: KindTransient, Endpoint: cl.endpoint, Message: "create request", Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(cl.endpoint, 0, time.Since(start))
		c.logger.Warn("api request failed",
			"method", cl.method,
			"endpoint", cl.endpoint,
			"request_id", requestID,
			"error", err,
		)
		return nil, transportError(cl.endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	elapsed := time.Since(start)
	c.metrics.observe(cl.endpoint, resp.StatusCode, elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := statusError(cl.endpoint, resp.StatusCode, body)
		c.logger.Warn("api request rejected",
			"method", cl.method,
			"endpoint", cl.endpoint,
			"status", resp.StatusCode,
			"kind", apiErr.Kind.String(),
			"duration", elapsed,
			"request_id", requestID,
		)
		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransient, Endpoint: cl.endpoint, Message: "read response", Err: err}
	}
	c.logger.Debug("api request",
		"method", cl.method,
		"endpoint", cl.endpoint,
		"status", resp.StatusCode,
		"duration", elapsed,
		"request_id", requestID,
	)
	return body, nil
}

// sendJSON encodes payload as the request body.
func (c *Client) sendJSON(ctx context.Context, cl call, payload any) ([]byte, error) {
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		cl.body = bytes.NewReader(buf)
		cl.contentType = "application/json"
	}
	return c.send(ctx, cl)
}

func decodeError(endpoint string, err error) error {
	return &Error{Kind: KindTransient, Endpoint: endpoint, Message: "decode response", Err: err}
}

// decodeOne decodes a single entity that may be wrapped in an envelope under
// one of keys or "data".
func decodeOne[T any](body []byte, keys ...string) (T, error) {
	var zero T
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		for _, key := range append(keys, "data") {
			raw, ok := envelope[key]
			if !ok || isNull(raw) {
				continue
			}
			trimmed := bytes.TrimSpace(raw)
			if len(trimmed) == 0 || trimmed[0] != '{' {
				continue
			}
			var out T
			if err := json.Unmarshal(trimmed, &out); err != nil {
				return zero, err
			}
			return out, nil
		}
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// decodeList decodes a bare array or an array wrapped under one of keys or
// "data".
func decodeList[T any](body []byte, keys ...string) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	for _, key := range append(keys, "data") {
		raw, ok := envelope[key]
		if !ok || isNull(raw) {
			continue
		}
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
