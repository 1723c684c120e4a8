package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bereanapp/berean/internal/cachestore"
	"github.com/bereanapp/berean/internal/logger"
	"github.com/bereanapp/berean/internal/manifest"
	"github.com/bereanapp/berean/internal/resource"
	"github.com/bereanapp/berean/internal/worker"
)

// Options configures a Registration.
type Options struct {
	// Prefix is the recognized cache-name prefix shared by all versions.
	Prefix string
	// ManifestPath is the precache manifest the registration re-reads on
	// every update check; a changed version there is a pending deployment.
	ManifestPath string
	// Routes overrides the default routing table. Nil keeps the default.
	Routes []worker.Route
	// UpdatePoll is the fixed interval between update checks.
	UpdatePoll time.Duration

	Storage *cachestore.Storage
	Fetcher resource.Fetcher
}

// Registration plays the host-page role: it installs and activates cache
// workers, polls for newer versions, surfaces update-found and
// controller-change events, and relays the skip-waiting signal.
type Registration struct {
	prefix       string
	manifestPath string
	routes       []worker.Route
	poll         time.Duration
	storage      *cachestore.Storage
	fetcher      resource.Fetcher

	// updateMu serializes update checks. They arrive concurrently from the
	// poll ticker, the manifest watcher and the API; an unserialized pair
	// for the same version would install it twice and notify twice.
	updateMu sync.Mutex

	mu         sync.Mutex
	pending    *worker.Worker // installed, about to activate without waiting
	waiting    *worker.Worker // installed, held back by the live controller
	controller *worker.Worker

	pages            []*Page
	updateFound      []func(*worker.Worker)
	controllerChange []func()
}

// NewRegistration creates a registration. Register must be called before
// the registration can serve requests.
func NewRegistration(opts Options) (*Registration, error) {
	if opts.Prefix == "" {
		return nil, errors.New("cache name prefix is required")
	}
	if opts.ManifestPath == "" {
		return nil, errors.New("precache manifest path is required")
	}
	if opts.Storage == nil {
		return nil, errors.New("storage is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if opts.UpdatePoll <= 0 {
		opts.UpdatePoll = 60 * time.Second
	}

	return &Registration{
		prefix:       opts.Prefix,
		manifestPath: opts.ManifestPath,
		routes:       opts.Routes,
		poll:         opts.UpdatePoll,
		storage:      opts.Storage,
		fetcher:      opts.Fetcher,
	}, nil
}

// newWorker builds a worker for the given precache manifest.
func (r *Registration) newWorker(m *manifest.PrecacheManifest) (*worker.Worker, error) {
	return worker.New(worker.Options{
		Version:      m.Version,
		Prefix:       r.prefix,
		Precache:     m.Assets,
		RootDocument: m.Root,
		Routes:       r.routes,
		Storage:      r.storage,
		Fetcher:      r.fetcher,
		Clients:      r,
	})
}

// Register installs and activates the first worker from the current
// precache manifest. Install failure leaves the registration without a
// controller; the caller decides whether that is fatal.
func (r *Registration) Register(ctx context.Context) error {
	r.updateMu.Lock()
	defer r.updateMu.Unlock()

	m, err := manifest.LoadPrecache(r.manifestPath)
	if err != nil {
		return err
	}

	w, err := r.newWorker(m)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.pending = w
	r.mu.Unlock()

	if err := w.Install(ctx); err != nil {
		r.clearPending(w)
		return err
	}
	if err := w.Activate(ctx); err != nil {
		r.clearPending(w)
		return err
	}

	logger.WithComponent("registry").Infof("registered cache version %s", w.Version())
	return nil
}

// Update re-reads the precache manifest and, when it announces a new
// version, installs a worker for it. With a live controller the new worker
// is held in Waiting and update-found listeners fire; without one it
// activates immediately. A failed install is logged by the worker, the old
// version stays fully in control and no listener fires.
func (r *Registration) Update(ctx context.Context) error {
	r.updateMu.Lock()
	defer r.updateMu.Unlock()

	m, err := manifest.LoadPrecache(r.manifestPath)
	if err != nil {
		return fmt.Errorf("update check: %w", err)
	}

	log := logger.WithComponent("registry")

	r.mu.Lock()
	current := ""
	if r.controller != nil {
		current = r.controller.Version()
	}
	if r.waiting != nil && r.waiting.Version() == m.Version {
		r.mu.Unlock()
		log.Debugf("version %s already waiting", m.Version)
		return nil
	}
	r.mu.Unlock()

	if m.Version == current {
		log.Debugf("no update: version %s is current", current)
		return nil
	}

	w, err := r.newWorker(m)
	if err != nil {
		return err
	}
	if err := w.Install(ctx); err != nil {
		return fmt.Errorf("install %s: %w", m.Version, err)
	}

	r.mu.Lock()
	if r.controller == nil {
		r.pending = w
		r.mu.Unlock()
		return w.Activate(ctx)
	}
	if r.waiting != nil {
		// A newer deployment superseded the one still waiting.
		r.waiting.Discard()
	}
	r.waiting = w
	listeners := append([]func(*worker.Worker){}, r.updateFound...)
	r.mu.Unlock()

	log.Infof("version %s installed and waiting behind %s", w.Version(), current)
	for _, fn := range listeners {
		fn(w)
	}
	return nil
}

// SkipWaiting activates the waiting worker, if any. This is the only
// programmatic way a waiting instance takes over before all pages close.
func (r *Registration) SkipWaiting(ctx context.Context) error {
	r.mu.Lock()
	w := r.waiting
	r.mu.Unlock()
	if w == nil {
		return nil
	}
	logger.WithComponent("registry").Infof("skip-waiting received, activating %s", w.Version())
	return w.Activate(ctx)
}

// PostMessage relays a control message from the page. Unknown kinds are
// ignored, matching the single-message protocol.
func (r *Registration) PostMessage(ctx context.Context, msg worker.Message) error {
	if msg.Kind == worker.KindSkipWaiting {
		return r.SkipWaiting(ctx)
	}
	logger.WithComponent("registry").Debugf("ignoring message kind %q", msg.Kind)
	return nil
}

// Claim implements worker.Clients: the activating worker becomes the
// controller for every open page, and controller-change listeners fire.
func (r *Registration) Claim(version string) {
	r.mu.Lock()
	var w *worker.Worker
	switch {
	case r.pending != nil && r.pending.Version() == version:
		w = r.pending
		r.pending = nil
	case r.waiting != nil && r.waiting.Version() == version:
		w = r.waiting
		r.waiting = nil
	default:
		r.mu.Unlock()
		logger.WithComponent("registry").Warnf("claim from unknown version %s ignored", version)
		return
	}
	r.controller = w
	pages := append([]*Page(nil), r.pages...)
	listeners := append([]func(){}, r.controllerChange...)
	r.mu.Unlock()

	for _, p := range pages {
		p.controllerChanged(version)
	}
	for _, fn := range listeners {
		fn()
	}
}

// Controller returns the worker currently serving requests, or nil.
func (r *Registration) Controller() *worker.Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.controller
}

// Waiting returns the installed-but-waiting worker, or nil. Checking this
// right after registration covers an update that arrived while no page
// was open.
func (r *Registration) Waiting() *worker.Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waiting
}

// ControllerStoreLen returns the entry count of the controller's store.
func (r *Registration) ControllerStoreLen() int {
	c := r.Controller()
	if c == nil {
		return 0
	}
	return r.storage.Open(c.CacheName()).Len()
}

// HandleFetch forwards the request to the current controller.
func (r *Registration) HandleFetch(ctx context.Context, req *resource.Request) (*resource.Response, error) {
	c := r.Controller()
	if c == nil {
		return nil, errors.New("no active cache worker")
	}
	return c.HandleFetch(ctx, req)
}

// OnUpdateFound registers a listener for newly waiting versions.
func (r *Registration) OnUpdateFound(fn func(*worker.Worker)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateFound = append(r.updateFound, fn)
}

// OnControllerChange registers a listener for controller hand-offs.
func (r *Registration) OnControllerChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controllerChange = append(r.controllerChange, fn)
}

// AddPage attaches an open page to this registration.
func (r *Registration) AddPage(p *Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, p)
}

func (r *Registration) clearPending(w *worker.Worker) {
	r.mu.Lock()
	if r.pending == w {
		r.pending = nil
	}
	r.mu.Unlock()
}
