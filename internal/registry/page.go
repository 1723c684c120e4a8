package registry

import "sync"

// Page models one open client page. When the controller changes it
// schedules a single reload; further controller-change events are ignored
// until the reload completes, so a hand-off that fires the event twice
// still causes exactly one reload.
type Page struct {
	mu                sync.Mutex
	controllerVersion string
	refreshing        bool
	reloads           int
}

// NewPage creates a page controlled by the given version ("" for none).
func NewPage(controllerVersion string) *Page {
	return &Page{controllerVersion: controllerVersion}
}

func (p *Page) controllerChanged(version string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.controllerVersion = version
	if p.refreshing {
		return
	}
	p.refreshing = true
	p.reloads++
}

// CompleteReload marks the reload as finished: the fresh page load re-arms
// the guard for the next hand-off.
func (p *Page) CompleteReload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshing = false
}

// ControllerVersion returns the version currently controlling this page.
func (p *Page) ControllerVersion() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.controllerVersion
}

// Reloads returns how many reloads this page has performed.
func (p *Page) Reloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}
