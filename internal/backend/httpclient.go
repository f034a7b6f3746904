package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// endpoints holds the REST paths used by the CLI, relative to the base URL.
// Paths containing %s take the execution id.
type endpoints struct {
	Execute string
	Status  string
	Results string
	Cancel  string
}

var defaultEndpoints = endpoints{
	Execute: "/api/v1/sql/execute",
	Status:  "/api/v1/execution/%s/status",
	Results: "/api/v1/execution/%s/results/csv",
	Cancel:  "/api/v1/execution/%s/cancel",
}

// apiKeyHeader carries the API key on every request.
const apiKeyHeader = "X-DUNE-API-KEY"

// HTTP implements API over the Dune REST endpoints.
type HTTP struct {
	// baseURL is the base URL for all HTTP requests (e.g., "https://api.dune.com")
	baseURL string
	// endpoints contains the URL paths for the execution endpoints
	endpoints endpoints
	// apiKey is sent in the X-DUNE-API-KEY header
	apiKey      string
	performance string
	userAgent   string
	// timeout bounds each JSON call as a whole, and each results page per read.
	timeout time.Duration
	// client is the underlying HTTP client; it waits at most timeout for response headers
	client *http.Client
}

// newHTTP creates a new HTTP client from options.
// opts.RequestTimeout (10s by default) is a total deadline for execute, status
// and cancel. Result downloads only fail when the server sends nothing for that
// long, so large results may take as long as they need.
func newHTTP(opts Options) *HTTP {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := opts.Client
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = timeout
		client = &http.Client{Transport: transport}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "dunequery-cli"
	}
	return &HTTP{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		endpoints:   defaultEndpoints,
		apiKey:      opts.APIKey,
		performance: opts.Performance,
		userAgent:   ua,
		timeout:     timeout,
		client:      client,
	}
}

// callContext bounds a small JSON call by the request timeout.
func (h *HTTP) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.timeout)
}

// newRequest builds a request carrying the standard headers.
func (h *HTTP) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(apiKeyHeader, h.apiKey)
	req.Header.Set("User-Agent", h.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req and converts non-2xx responses into *APIError.
// On success the caller owns the response body.
func (h *HTTP) do(req *http.Request, op string) (*http.Response, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeAPIError(op, resp)
	}
	return resp, nil
}

// decodeAPIError extracts the message from an error response.
// The API answers {"error": "..."}; anything else is reported as plain text.
func decodeAPIError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := strings.TrimSpace(string(b))

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{Op: op, StatusCode: resp.StatusCode, Message: msg}
}
