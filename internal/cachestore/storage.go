package cachestore

import (
	"sort"
	"sync"
)

// Storage is the set of named cache stores. Several stores may coexist
// during an update window (old + new version); activation cleanup deletes
// the stale ones.
type Storage struct {
	mu     sync.RWMutex
	stores map[string]*Store
}

// NewStorage creates an empty storage.
func NewStorage() *Storage {
	return &Storage{stores: map[string]*Store{}}
}

// Open returns the store with the given name, creating it if absent.
func (st *Storage) Open(name string) *Store {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.stores[name]; ok {
		return s
	}
	s := newStore(name)
	st.stores[name] = s
	return s
}

// Has reports whether a store with the given name exists.
func (st *Storage) Has(name string) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	_, ok := st.stores[name]
	return ok
}

// Delete removes the named store. Returns false if it did not exist.
func (st *Storage) Delete(name string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.stores[name]; !ok {
		return false
	}
	delete(st.stores, name)
	return true
}

// Names returns all store names in sorted order.
func (st *Storage) Names() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	names := make([]string, 0, len(st.stores))
	for name := range st.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
