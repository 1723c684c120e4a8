package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPFetcher fetches resources over HTTP. Same-origin paths are resolved
// against the configured base URL; absolute URLs are fetched as-is.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher resolving rooted paths against baseURL.
func NewHTTPFetcher(baseURL string, timeout time.Duration) (*HTTPFetcher, error) {
	if baseURL == "" {
		return nil, errors.New("origin base URL is required")
	}
	return &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Fetch performs the HTTP request and buffers the body. The response body
// is fully read so stored copies are self-contained.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *Request) (*Response, error) {
	target := req.URL
	if req.SameOrigin() {
		target = f.baseURL + req.URL
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", req.URL, err)
	}

	httpRes, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.URL, err)
	}
	defer httpRes.Body.Close()

	body, err := io.ReadAll(httpRes.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", req.URL, err)
	}

	return &Response{
		Status: httpRes.StatusCode,
		Header: httpRes.Header.Clone(),
		Body:   body,
		URL:    req.URL,
	}, nil
}
