// Package cache keeps fetched responses for the lifetime of a session.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"gembrowse/addr"
	"gembrowse/gemini"
)

// Policy controls entry lifetime. The zero TTL keeps entries for the whole
// session; a positive TTL evicts by recency without changing the Get/Put
// contract.
type Policy struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// DefaultPolicy returns the session-scoped policy: no expiry.
func DefaultPolicy() Policy {
	return Policy{TTL: gocache.NoExpiration, SweepInterval: 1 * time.Minute}
}

// Entry is a cached response and when it was fetched.
type Entry struct {
	Addr      *addr.Address
	Response  *gemini.Response
	FetchedAt time.Time
}

// Age returns how long ago the entry was fetched.
func (e *Entry) Age() time.Duration {
	return time.Since(e.FetchedAt)
}

// Store holds responses keyed by canonical address.
type Store struct {
	c *gocache.Cache
}

// New creates a store with the given policy.
func New(p Policy) *Store {
	ttl := p.TTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	sweep := p.SweepInterval
	if sweep <= 0 {
		sweep = 1 * time.Minute
	}
	return &Store{c: gocache.New(ttl, sweep)}
}

// Get looks up the entry for an address. A miss is ordinary control flow,
// reported in the second return.
func (s *Store) Get(a *addr.Address) (*Entry, bool) {
	v, ok := s.c.Get(a.Key())
	if !ok {
		return nil, false
	}
	return v.(*Entry), true
}

// Put stores a response, overwriting any entry for the same address.
func (s *Store) Put(a *addr.Address, r *gemini.Response) {
	s.c.Set(a.Key(), &Entry{Addr: a, Response: r, FetchedAt: time.Now()}, gocache.DefaultExpiration)
}

// Invalidate removes the entry for an address if present.
func (s *Store) Invalidate(a *addr.Address) {
	s.c.Delete(a.Key())
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	return s.c.ItemCount()
}

// OnEvicted registers a hook called when an entry expires or is removed.
func (s *Store) OnEvicted(f func(key string, e *Entry)) {
	s.c.OnEvicted(func(k string, v interface{}) {
		f(k, v.(*Entry))
	})
}
