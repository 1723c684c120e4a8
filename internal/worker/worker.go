package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bereanapp/berean/internal/cachestore"
	"github.com/bereanapp/berean/internal/logger"
	"github.com/bereanapp/berean/internal/resource"
)

// State is the lifecycle state of a worker instance.
//
//	New → Installing → Installed (waiting) → Activating → Activated
//
// Discarded is terminal: install failed, or a newer instance won before
// this one activated.
type State string

const (
	StateNew        State = "new"
	StateInstalling State = "installing"
	StateInstalled  State = "installed"
	StateActivating State = "activating"
	StateActivated  State = "activated"
	StateDiscarded  State = "discarded"
)

// ErrInvalidTransition is returned when a lifecycle method is called from
// the wrong state.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// Clients is the set of open pages a worker claims when it activates.
type Clients interface {
	Claim(version string)
}

// Options configures a worker instance.
type Options struct {
	// Version is the cache version this worker serves, e.g. "v3".
	Version string
	// Prefix is the recognized cache-name prefix, e.g. "berean-".
	// Activation deletes every store carrying it except this worker's own.
	Prefix string
	// Precache lists the assets fetched unconditionally during install.
	Precache []string
	// RootDocument is the offline shell served to navigations on a
	// cache-miss network failure. It must be listed in Precache.
	RootDocument string
	// Routes maps path patterns to retrieval strategies. First match wins;
	// unmatched requests use CacheFirst.
	Routes []Route

	Storage *cachestore.Storage
	Fetcher resource.Fetcher
	Clients Clients
}

// Worker owns one versioned cache store and serves intercepted requests
// from it according to the configured routes.
type Worker struct {
	version      string
	prefix       string
	precache     []string
	precacheSet  map[string]bool
	rootDocument string
	routes       []Route

	storage *cachestore.Storage
	fetcher resource.Fetcher
	clients Clients

	mu    sync.Mutex
	state State

	// pending tracks background cache writes so shutdown and tests can
	// drain them; the environment may otherwise terminate the instance
	// mid-write.
	pending sync.WaitGroup
}

// New creates a worker in state New. It does not touch storage.
func New(opts Options) (*Worker, error) {
	if opts.Version == "" {
		return nil, errors.New("version is required")
	}
	if opts.Prefix == "" {
		return nil, errors.New("cache name prefix is required")
	}
	if opts.Storage == nil {
		return nil, errors.New("storage is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if opts.RootDocument == "" {
		return nil, errors.New("root document is required")
	}

	precacheSet := make(map[string]bool, len(opts.Precache))
	for _, asset := range opts.Precache {
		precacheSet[asset] = true
	}
	if !precacheSet[opts.RootDocument] {
		return nil, fmt.Errorf("root document %s must be precached", opts.RootDocument)
	}

	routes := opts.Routes
	if routes == nil {
		routes = DefaultRoutes()
	}

	return &Worker{
		version:      opts.Version,
		prefix:       opts.Prefix,
		precache:     append([]string(nil), opts.Precache...),
		precacheSet:  precacheSet,
		rootDocument: opts.RootDocument,
		routes:       routes,
		storage:      opts.Storage,
		fetcher:      opts.Fetcher,
		clients:      opts.Clients,
		state:        StateNew,
	}, nil
}

// Version returns the cache version this worker serves.
func (w *Worker) Version() string {
	return w.version
}

// CacheName returns the name of this worker's cache store.
func (w *Worker) CacheName() string {
	return w.prefix + w.version
}

// State returns the current lifecycle state.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Worker) transition(from, to State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != from {
		return fmt.Errorf("%w: %s -> %s (current: %s)", ErrInvalidTransition, from, to, w.state)
	}
	w.state = to
	return nil
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Install opens this version's cache store and precaches every manifest
// asset. Any single failure fails the whole install: the partial store is
// deleted, the worker is discarded and the previous version stays in
// control. A worker never reaches Installed with a partial precache.
func (w *Worker) Install(ctx context.Context) error {
	if err := w.transition(StateNew, StateInstalling); err != nil {
		return err
	}

	log := logger.WithComponent("worker")
	log.Infof("installing %s with %d precache assets", w.CacheName(), len(w.precache))

	store := w.storage.Open(w.CacheName())
	for _, asset := range w.precache {
		req := resource.NewRequest(asset)
		res, err := w.fetcher.Fetch(ctx, req)
		if err != nil {
			w.failInstall(asset, err)
			return fmt.Errorf("precache %s: %w", asset, err)
		}
		if !res.OK() {
			err := fmt.Errorf("precache %s: unexpected status %d", asset, res.Status)
			w.failInstall(asset, err)
			return err
		}
		if err := store.Put(req, res); err != nil {
			w.failInstall(asset, err)
			return fmt.Errorf("precache %s: %w", asset, err)
		}
	}

	w.setState(StateInstalled)
	log.Infof("%s installed", w.CacheName())
	return nil
}

// failInstall discards the worker and removes its partial store.
func (w *Worker) failInstall(asset string, err error) {
	logger.WithComponent("worker").Errorf("install of %s failed on %s: %v", w.CacheName(), asset, err)
	w.storage.Delete(w.CacheName())
	w.setState(StateDiscarded)
}

// Activate deletes every stale store carrying the recognized prefix, then
// claims all open pages. Per-store deletion failures are logged and do not
// block the rest of cleanup or the claim.
func (w *Worker) Activate(ctx context.Context) error {
	if err := w.transition(StateInstalled, StateActivating); err != nil {
		return err
	}

	log := logger.WithComponent("worker")
	for _, name := range w.storage.Names() {
		if !strings.HasPrefix(name, w.prefix) || name == w.CacheName() {
			continue
		}
		if !w.storage.Delete(name) {
			log.Warnf("could not delete stale cache %s, continuing", name)
			continue
		}
		log.Infof("deleted stale cache %s", name)
	}

	if w.clients != nil {
		w.clients.Claim(w.version)
	}

	w.setState(StateActivated)
	log.Infof("%s activated", w.CacheName())
	return nil
}

// Discard marks a waiting worker as superseded. No-op once activated.
func (w *Worker) Discard() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateActivated || w.state == StateDiscarded {
		return
	}
	w.state = StateDiscarded
}

// Wait blocks until all background cache writes have settled.
func (w *Worker) Wait() {
	w.pending.Wait()
}

// store returns this worker's cache store.
func (w *Worker) store() *cachestore.Store {
	return w.storage.Open(w.CacheName())
}
