package worker

import (
	"context"
	"fmt"

	"github.com/bereanapp/berean/internal/logger"
	"github.com/bereanapp/berean/internal/resource"
	"github.com/containerd/errdefs"
)

// HandleFetch answers an intercepted request using the strategy selected
// by the routing table. Only an activated worker serves requests.
func (w *Worker) HandleFetch(ctx context.Context, req *resource.Request) (*resource.Response, error) {
	if state := w.State(); state != StateActivated {
		return nil, fmt.Errorf("worker %s is %s, not activated", w.CacheName(), state)
	}

	switch w.routeFor(req.URL) {
	case StaleWhileRevalidate:
		return w.staleWhileRevalidate(ctx, req)
	case NetworkFirstWithDocumentFallback:
		return w.networkFirst(ctx, req)
	default:
		return w.cacheFirst(ctx, req)
	}
}

// cacheFirst serves the cached entry when present, otherwise fetches.
// Successful cacheable responses are stored in the background; a network
// failure on a navigation falls back to the precached root document.
func (w *Worker) cacheFirst(ctx context.Context, req *resource.Request) (*resource.Response, error) {
	store := w.store()
	if cached, err := store.Match(req); err == nil {
		return cached, nil
	} else if !errdefs.IsNotFound(err) {
		return nil, err
	}

	res, err := w.fetcher.Fetch(ctx, req)
	if err != nil {
		if req.IsNavigation() {
			return w.documentFallback(err)
		}
		return nil, err
	}
	if res.OK() && w.cacheable(req) {
		w.writeBack(req, res)
	}
	return res, nil
}

// staleWhileRevalidate returns the cached entry immediately and refreshes
// it in the background. On a cold cache it degrades to network-first: the
// caller gets the network result, which is then stored for next time.
// A failed background refetch never evicts the stale entry.
func (w *Worker) staleWhileRevalidate(ctx context.Context, req *resource.Request) (*resource.Response, error) {
	store := w.store()
	cached, err := store.Match(req)
	if err == nil {
		w.revalidate(req)
		return cached, nil
	}
	if !errdefs.IsNotFound(err) {
		return nil, err
	}

	res, fetchErr := w.fetcher.Fetch(ctx, req)
	if fetchErr != nil {
		return nil, fetchErr
	}
	if res.OK() {
		w.writeBack(req, res)
	}
	return res, nil
}

// networkFirst prefers a fresh response, falling back to the cached entry
// and finally to the root document for navigations.
func (w *Worker) networkFirst(ctx context.Context, req *resource.Request) (*resource.Response, error) {
	res, err := w.fetcher.Fetch(ctx, req)
	if err == nil {
		if res.OK() && w.cacheable(req) {
			w.writeBack(req, res)
		}
		return res, nil
	}

	if cached, matchErr := w.store().Match(req); matchErr == nil {
		return cached, nil
	}
	if req.IsNavigation() {
		return w.documentFallback(err)
	}
	return nil, err
}

// documentFallback serves the precached root document as the offline
// shell. fetchErr is what brought us here; it is returned if even the
// shell is missing.
func (w *Worker) documentFallback(fetchErr error) (*resource.Response, error) {
	shell, err := w.store().Match(resource.NewRequest(w.rootDocument))
	if err != nil {
		return nil, fmt.Errorf("offline with no document fallback: %w", fetchErr)
	}
	logger.WithComponent("worker").Debugf("serving offline shell %s: %v", w.rootDocument, fetchErr)
	return shell, nil
}

// cacheable reports whether a miss-path response for this request may be
// stored. Opportunistic caching is restricted to same-origin requests;
// cross-origin URLs qualify only when explicitly precached, so opaque
// third-party responses never enter the store by accident.
func (w *Worker) cacheable(req *resource.Request) bool {
	return req.SameOrigin() || w.precacheSet[req.URL]
}

// writeBack stores the response without blocking the caller. Failures are
// logged only.
func (w *Worker) writeBack(req *resource.Request, res *resource.Response) {
	res = res.Clone()
	w.pending.Add(1)
	go func() {
		defer w.pending.Done()
		if err := w.store().Put(req, res); err != nil {
			logger.WithComponent("worker").Errorf("write-back of %s failed: %v", req.Key(), err)
		}
	}()
}

// revalidate refetches the resource in the background and overwrites the
// cache entry on success. The fetch is never canceled on behalf of the
// original caller, and its failure is swallowed: the stale entry already
// satisfied the request. Last write wins; a slow revalidation landing
// after a newer explicit write for the same key will overwrite it.
func (w *Worker) revalidate(req *resource.Request) {
	w.pending.Add(1)
	go func() {
		defer w.pending.Done()
		log := logger.WithComponent("worker")
		res, err := w.fetcher.Fetch(context.Background(), req)
		if err != nil {
			log.Debugf("background revalidation of %s failed: %v", req.URL, err)
			return
		}
		if !res.OK() {
			log.Debugf("background revalidation of %s returned %d, keeping stale entry", req.URL, res.Status)
			return
		}
		if err := w.store().Put(req, res); err != nil {
			log.Errorf("revalidation write of %s failed: %v", req.Key(), err)
			return
		}
		log.Tracef("revalidated %s", req.URL)
	}()
}
