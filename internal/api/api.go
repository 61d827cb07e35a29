package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"rankwatch/internal/logger"
)

// Client is a thin wrapper around net/http shared by the outbound
// adapters: SERP lookups, results-page scrapes and webhook posts.
// Responses with status >= 400 come back as errors.
type Client struct {
	httpClient *http.Client
	logging    bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout bounds every request made through the client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogging turns on request/response debug logging.
func WithLogging(enabled bool) ClientOption {
	return func(c *Client) {
		c.logging = enabled
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request collects everything for one call before Do sends it.
type Request struct {
	Method  string
	URL     string
	Body    interface{}
	Headers map[string]string
	Query   url.Values
	ctx     context.Context
}

func NewRequest(method, url string) *Request {
	return &Request{
		Method:  method,
		URL:     url,
		Headers: make(map[string]string),
		ctx:     context.Background(),
	}
}

func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// WithQueryParam adds one URL query parameter.
func (r *Request) WithQueryParam(key, value string) *Request {
	if r.Query == nil {
		r.Query = url.Values{}
	}
	r.Query.Set(key, value)
	return r
}

func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// WithJSONBody sets a body that Do will JSON-encode.
func (r *Request) WithJSONBody(body interface{}) *Request {
	r.Body = body
	return r
}

// Response is the part of an HTTP response callers consume.
type Response struct {
	StatusCode int
	Body       []byte
}

// Do sends the request, appending query parameters to the URL and
// JSON-encoding a non-nil body. Any status >= 400 is returned as an
// error carrying the response body.
func (c *Client) Do(req *Request) (*Response, error) {
	target := req.URL
	if len(req.Query) > 0 {
		sep := "?"
		if u, err := url.Parse(target); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(req.ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.logging {
		logger.Debug(req.ctx, "HTTP request", "method", req.Method, "url", target)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if c.logging {
			logger.Warn(req.ctx, "HTTP request failed",
				"method", req.Method,
				"url", target,
				"error", err.Error(),
			)
		}
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if c.logging {
		logger.Debug(req.ctx, "HTTP response",
			"method", req.Method,
			"url", target,
			"status", httpResp.StatusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"body_size", len(body),
		)
	}

	if httpResp.StatusCode >= 400 {
		if c.logging {
			logger.Warn(req.ctx, "HTTP error response",
				"method", req.Method,
				"url", target,
				"status", httpResp.StatusCode,
			)
		}
		return nil, fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, string(body))
	}

	return &Response{StatusCode: httpResp.StatusCode, Body: body}, nil
}

// POST sends body as JSON to url.
func (c *Client) POST(ctx context.Context, url string, body interface{}) (*Response, error) {
	return c.Do(NewRequest(http.MethodPost, url).WithContext(ctx).WithJSONBody(body))
}

// BrowserHeaders returns desktop-browser request headers for scrape
// targets that refuse the default Go user agent.
func BrowserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "text/html,application/json;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
}
