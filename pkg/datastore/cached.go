package datastore

import (
	"iter"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"go.minekube.com/pex/pkg/internal/cachutil"
	"go.minekube.com/pex/pkg/subject"
)

// CacheOptions configures Cached.
type CacheOptions struct {
	TTL      time.Duration // Zero keeps entries until invalidated.
	Capacity uint64        // Zero is unbounded.
}

// CachedStore memoizes Data of a wrapped Store.
//
// Entries are keyed by subject.Ref and dropped on Invalidate, which must be
// called whenever the wrapped store's source is re-read.
type CachedStore struct {
	Store
	cache   *ttlcache.Cache[subject.Ref, *subject.Data]
	janitor bool // expiry loop running
}

// Cached wraps s with a Data cache.
func Cached(s Store, opts CacheOptions) *CachedStore {
	loader := cachutil.NewSuppressedLoader[subject.Ref, *subject.Data](subject.Ref.String,
		func(c *ttlcache.Cache[subject.Ref, *subject.Data], ref subject.Ref) *ttlcache.Item[subject.Ref, *subject.Data] {
			data, err := s.Data(ref.Type, ref.Identifier)
			if err != nil {
				return nil
			}
			return c.Set(ref, data, ttlcache.DefaultTTL)
		})
	cacheOpts := []ttlcache.Option[subject.Ref, *subject.Data]{
		ttlcache.WithLoader[subject.Ref, *subject.Data](loader),
		ttlcache.WithTTL[subject.Ref, *subject.Data](opts.TTL),
	}
	if opts.Capacity != 0 {
		cacheOpts = append(cacheOpts, ttlcache.WithCapacity[subject.Ref, *subject.Data](opts.Capacity))
	}
	c := &CachedStore{
		Store: s,
		cache: ttlcache.New(cacheOpts...),
	}
	if opts.TTL > 0 {
		c.janitor = true
		go c.cache.Start()
	}
	return c
}

// Data returns the cached data of a subject, loading it on a miss.
func (c *CachedStore) Data(typ, identifier string) (*subject.Data, error) {
	if item := c.cache.Get(subject.Ref{Type: typ, Identifier: identifier}); item != nil {
		return item.Value(), nil
	}
	// not cached because loading failed, surface the error
	return c.Store.Data(typ, identifier)
}

// All returns every subject with its data, served through the cache.
func (c *CachedStore) All() iter.Seq2[subject.Ref, *subject.Data] { return AllOf(c) }

// Len returns the number of cached entries.
func (c *CachedStore) Len() int { return c.cache.Len() }

// Invalidate drops all cached entries.
func (c *CachedStore) Invalidate() { c.cache.DeleteAll() }

// Unwrap returns the wrapped store.
func (c *CachedStore) Unwrap() Store { return c.Store }

// Close stops the cache and closes the wrapped store.
func (c *CachedStore) Close() error {
	if c.janitor {
		c.cache.Stop()
	}
	c.cache.DeleteAll()
	return c.Store.Close()
}
