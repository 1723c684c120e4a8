package worker

import "strings"

// Strategy selects how an intercepted request is satisfied.
type Strategy string

const (
	// CacheFirst serves from cache, falling back to the network on a miss
	// and opportunistically storing successful same-origin responses.
	CacheFirst Strategy = "cache-first"
	// StaleWhileRevalidate serves the cached entry immediately and
	// refreshes it in the background for next time.
	StaleWhileRevalidate Strategy = "stale-while-revalidate"
	// NetworkFirstWithDocumentFallback tries the network, then the cache,
	// then the root document for navigations.
	NetworkFirstWithDocumentFallback Strategy = "network-first"
)

// Route maps a URL path pattern to a retrieval strategy.
// A pattern ending in "/**" matches the whole subtree; anything else
// matches exactly.
type Route struct {
	Pattern  string
	Strategy Strategy
}

// Matches reports whether the route applies to the given URL.
func (r Route) Matches(url string) bool {
	if prefix, ok := strings.CutSuffix(r.Pattern, "/**"); ok {
		return strings.HasPrefix(url, prefix+"/")
	}
	return url == r.Pattern
}

// DefaultRoutes returns the routing table for the study app: the bulk
// content trees use stale-while-revalidate, everything else defaults to
// cache-first.
func DefaultRoutes() []Route {
	return []Route{
		{Pattern: "/bibles/**", Strategy: StaleWhileRevalidate},
		{Pattern: "/xrefs/**", Strategy: StaleWhileRevalidate},
	}
}

// routeFor evaluates routes in priority order; first match wins.
func (w *Worker) routeFor(url string) Strategy {
	for _, route := range w.routes {
		if route.Matches(url) {
			return route.Strategy
		}
	}
	return CacheFirst
}
