package cachestore

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/bereanapp/berean/internal/resource"
	"github.com/containerd/errdefs"
)

// Store is a single named cache holding Request→Response pairs.
// Reads and writes deep-copy so callers never share internals.
// Last write wins per key; entries are never evicted on failed refetch.
type Store struct {
	name    string
	mu      sync.RWMutex
	entries map[string]*resource.Response
}

func newStore(name string) *Store {
	return &Store{name: name, entries: map[string]*resource.Response{}}
}

// Name returns the store's cache name (prefix + version).
func (s *Store) Name() string {
	return s.name
}

// Match looks up the stored response for the request.
// Returns a wrapped errdefs.ErrNotFound on a miss.
func (s *Store) Match(req *resource.Request) (*resource.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.entries[req.Key()]
	if !ok {
		return nil, fmt.Errorf("%s: %w", req.Key(), errdefs.ErrNotFound)
	}
	return res.Clone(), nil
}

// Put stores a copy of the response under the request's key.
// Only 200 responses are storable.
func (s *Store) Put(req *resource.Request, res *resource.Response) error {
	if res == nil {
		return fmt.Errorf("nil response for %s", req.Key())
	}
	if res.Status != http.StatusOK {
		return fmt.Errorf("refusing to store status %d for %s", res.Status, req.Key())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[req.Key()] = res.Clone()
	return nil
}

// Keys returns the stored cache keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
