package resource

import (
	"context"
	"net/http"
)

// Mode mirrors the purpose of a request: a full-page navigation or a
// subresource load. Navigations are the only requests eligible for the
// offline document fallback.
type Mode string

const (
	ModeNavigate Mode = "navigate"
	ModeResource Mode = "resource"
)

// Request identifies a resource the app wants to load.
// URL is either a same-origin path ("/bibles/web/gen.json") or an
// absolute cross-origin URL (a CDN script listed in the precache manifest).
type Request struct {
	Method string
	URL    string
	Mode   Mode
}

// NewRequest creates a GET subresource request for the given URL.
func NewRequest(url string) *Request {
	return &Request{Method: http.MethodGet, URL: url, Mode: ModeResource}
}

// NewNavigationRequest creates a GET navigation request for the given URL.
func NewNavigationRequest(url string) *Request {
	return &Request{Method: http.MethodGet, URL: url, Mode: ModeNavigate}
}

// Key returns the cache key for this request. Method + URL, matching the
// minimal HTTP cache key; header-based variance is not modeled.
func (r *Request) Key() string {
	return r.Method + " " + r.URL
}

// IsNavigation reports whether this request is a full-page navigation.
func (r *Request) IsNavigation() bool {
	return r.Mode == ModeNavigate
}

// SameOrigin reports whether the request targets the app's own origin.
// Same-origin URLs are stored as rooted paths; anything with a scheme is
// treated as cross-origin.
func (r *Request) SameOrigin() bool {
	return len(r.URL) > 0 && r.URL[0] == '/'
}

// Response is the stored/served form of a fetched resource.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	URL    string
}

// OK reports whether the response is a plain success. Only OK responses
// are ever written to a cache store.
func (r *Response) OK() bool {
	return r.Status == http.StatusOK
}

// Clone deep-copies the response so cache internals and callers never
// share header maps or body slices.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	cloned := &Response{
		Status: r.Status,
		URL:    r.URL,
	}
	if r.Header != nil {
		cloned.Header = r.Header.Clone()
	}
	if r.Body != nil {
		cloned.Body = make([]byte, len(r.Body))
		copy(cloned.Body, r.Body)
	}
	return cloned
}

// Fetcher is the network primitive supplied by the environment.
// Implementations must honor ctx cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req *Request) (*Response, error)

func (f FetcherFunc) Fetch(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
