package assets

import (
	"sort"
	"sync"

	"github.com/xob0t/GoCard/pkg/errors"
)

// Set is a collection of named pools.
type Set struct {
	mu    sync.RWMutex
	pools map[string]*Pool
}

// NewSet creates a set holding pools.
func NewSet(pools ...*Pool) *Set {
	s := &Set{pools: make(map[string]*Pool, len(pools))}
	for _, p := range pools {
		s.pools[p.Name()] = p
	}
	return s
}

// Pool returns the named pool, creating an empty one on first use.
func (s *Set) Pool(name string) *Pool {
	s.mu.RLock()
	p, ok := s.pools[name]
	s.mu.RUnlock()
	if ok {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pools[name]; ok {
		return p
	}
	p = NewPool(name)
	s.pools[name] = p
	return p
}

// Put replaces the named pool.
func (s *Set) Put(p *Pool) {
	s.mu.Lock()
	s.pools[p.Name()] = p
	s.mu.Unlock()
}

// Names returns the pool names in sorted order.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.pools))
	for n := range s.pools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Require returns MISSING_ASSET_POOL for the first named pool that is
// absent or empty.
func (s *Set) Require(names ...string) error {
	for _, n := range names {
		s.mu.RLock()
		p, ok := s.pools[n]
		s.mu.RUnlock()
		if !ok || p.Len() == 0 {
			return errors.New(errors.ErrCodeMissingAssetPool, "asset pool %q is empty", n)
		}
	}
	return nil
}

// Find locates an asset by ID across all pools.
func (s *Set) Find(id string) (Asset, bool) {
	for _, n := range s.Names() {
		for _, a := range s.Pool(n).List() {
			if a.ID == id {
				return a, true
			}
		}
	}
	return Asset{}, false
}

// Remove deletes an asset by ID from whichever pool holds it.
func (s *Set) Remove(id string) bool {
	for _, n := range s.Names() {
		if s.Pool(n).Remove(id) {
			return true
		}
	}
	return false
}
