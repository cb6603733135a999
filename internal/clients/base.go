package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/itanishqshelar/Flashfits-AI/internal/middleware"
)

// Client is a thin HTTP client bound to one upstream service.
type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client
}

func NewClient(name, baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid %s base url %q: %w", name, baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s base url %q: scheme and host are required", name, baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Name: name, BaseURL: u, HTTP: httpClient}, nil
}

// Do sends a request to path on the upstream. A non-nil payload is sent as
// JSON. Correlation and user ids in ctx are forwarded unless headers already
// carry them.
func (c *Client) Do(ctx context.Context, method, path string, payload any, headers http.Header) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", c.Name, err)
		}
		body = bytes.NewReader(raw)
	}

	u := c.BaseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", c.Name, err)
	}

	copyHeaders(req.Header, headers)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	setDefault(req.Header, middleware.HeaderCorrelationID, middleware.GetCorrelationID(ctx))
	setDefault(req.Header, middleware.HeaderUserID, middleware.GetUserID(ctx))

	return c.HTTP.Do(req)
}

func setDefault(h http.Header, key, value string) {
	if value != "" && h.Get(key) == "" {
		h.Set(key, value)
	}
}

func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		if isHopByHopHeader(k) {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// Hop-by-hop headers (RFC 7230) plus Host, which belongs on req.Host.
func isHopByHopHeader(k string) bool {
	switch http.CanonicalHeaderKey(k) {
	case "Connection", "Proxy-Connection", "Keep-Alive",
		"Proxy-Authenticate", "Proxy-Authorization",
		"Te", "Trailer", "Transfer-Encoding", "Upgrade", "Host":
		return true
	default:
		return false
	}
}
