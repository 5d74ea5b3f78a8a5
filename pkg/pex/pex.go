// Package pex runs the configured data store: it builds and initializes the
// store, memoizes subject data and rebuilds the store when its files change.
package pex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/robinbraemer/event"
	"go.uber.org/atomic"

	"go.minekube.com/pex/pkg/datastore"
	"go.minekube.com/pex/pkg/internal/reload"
	"go.minekube.com/pex/pkg/util/errs"
)

// ErrNotWatchable is returned by Watch if the data store is not backed by local files.
var ErrNotWatchable = errors.New("data store cannot be watched")

// Options are the options for a PEX instance.
type Options struct {
	// Config is the config. (required)
	Config *Config
	// Logger is the logger used by PEX and its data stores.
	// If not set, the logger of the New context is used.
	Logger logr.Logger
	// Event is the event manager store events are fired on.
	// If not set, a new one is created.
	Event event.Manager
}

// PEX holds the data store in use.
type PEX struct {
	config *Config
	log    logr.Logger
	event  event.Manager

	reloadMu sync.Mutex // serializes Reload
	current  atomic.Pointer[loaded]
}

type loaded struct {
	base  datastore.Store        // initialized store
	store datastore.Store        // base or cache
	cache *datastore.CachedStore // nil if caching is disabled
}

// New builds and initializes the default data store of the config
// and fires a StoreLoadedEvent.
func New(ctx context.Context, options Options) (*PEX, error) {
	if options.Config == nil {
		return nil, errs.ErrMissingConfig
	}
	log := options.Logger
	if log.GetSink() == nil {
		log = logr.FromContextOrDiscard(ctx)
	}
	log = log.WithName("pex")
	mgr := options.Event
	if mgr == nil {
		mgr = event.New(event.WithLogger(log.WithName("event")))
	}
	p := &PEX{
		config: options.Config,
		log:    log,
		event:  mgr,
	}

	start := time.Now()
	l, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	p.current.Store(l)
	p.event.Fire(&StoreLoadedEvent{Store: l.store, Took: time.Since(start)})
	return p, nil
}

// load builds a fresh instance of the default data store.
func (p *PEX) load(ctx context.Context) (*loaded, error) {
	id := p.config.DefaultDataStore
	ds, ok := p.config.DataStores[id]
	if !ok {
		return nil, fmt.Errorf("%w: data store %q is not configured", errs.ErrMissingConfig, id)
	}
	s, err := datastore.New(ds.Type, id, ds.Options)
	if err != nil {
		return nil, fmt.Errorf("error creating data store %q: %w", id, err)
	}
	if err = s.Initialize(logr.NewContext(ctx, p.log)); err != nil {
		_ = s.Close()
		return nil, err
	}
	l := &loaded{base: s, store: s}
	if p.config.Cache.Enabled {
		l.cache = datastore.Cached(s, datastore.CacheOptions{
			TTL:      time.Duration(p.config.Cache.TTL),
			Capacity: p.config.Cache.Capacity,
		})
		l.store = l.cache
	}
	return l, nil
}

// Store returns the data store in use.
// The returned store is replaced, not modified, on reloads.
func (p *PEX) Store() datastore.Store { return p.current.Load().store }

// Config returns the config PEX was created with.
func (p *PEX) Config() *Config { return p.config }

// Event returns the event manager.
func (p *PEX) Event() event.Manager { return p.event }

// ConversionOptions returns the data stores found next to the base directory
// that can be converted.
func (p *PEX) ConversionOptions() []datastore.ConversionResult {
	return datastore.ConversionOptions(p.config.BaseDirectory)
}

// Reload builds and initializes a new instance of the data store and
// replaces the store in use with it. If loading fails the current store
// stays in use and the error is returned.
func (p *PEX) Reload(ctx context.Context) error {
	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()

	start := time.Now()
	next, err := p.load(ctx)
	if err != nil {
		return fmt.Errorf("error reloading data store %q: %w", p.config.DefaultDataStore, err)
	}
	prev := p.current.Swap(next)
	if prev.cache != nil {
		prev.cache.Invalidate()
	}
	if err = prev.store.Close(); err != nil {
		p.log.Error(err, "error closing replaced data store")
	}
	p.log.V(1).Info("replaced data store", "store", next.store.Name(), "took", time.Since(start).String())
	p.event.Fire(&StoreReloadedEvent{Previous: prev.store, Current: next.store})
	return nil
}

// Watch reloads the data store whenever its files change until ctx is canceled.
// It returns right away if watching is disabled in the config.
//
// The watched paths are taken again from each reloaded store, so worlds
// and documents created in between are picked up.
func (p *PEX) Watch(ctx context.Context) error {
	if !p.config.Watch.Enabled {
		return nil
	}
	return p.watch(ctx, false)
}

// watch watches the current paths. With catchUp it reloads once after
// arming, for changes made while no watch was active.
func (p *PEX) watch(ctx context.Context, catchUp bool) error {
	paths, err := p.watchPaths()
	if err != nil {
		return err
	}
	wctx, cancel := context.WithCancel(ctx)
	var rearmed atomic.Bool
	rearm := func() error {
		next, err := p.watchPaths()
		if err != nil || slices.Equal(next, paths) || !rearmed.CompareAndSwap(false, true) {
			return err
		}
		cancel()
		return p.watch(ctx, true)
	}
	err = reload.Watch(logr.NewContext(wctx, p.log), paths, time.Duration(p.config.Watch.Debounce), func() error {
		if err := p.Reload(ctx); err != nil {
			return err
		}
		return rearm()
	})
	if err != nil {
		cancel()
		return fmt.Errorf("error watching data store files: %w", err)
	}
	p.log.V(1).Info("watching data store files", "files", len(paths))
	if !catchUp {
		return nil
	}
	if err = p.Reload(ctx); err != nil {
		return err
	}
	return rearm()
}

// watchPaths returns the existing paths of the current store.
// Paths that appear later make the watch re-arm.
func (p *PEX) watchPaths() ([]string, error) {
	w, ok := p.current.Load().base.(datastore.Watchable)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotWatchable, p.config.DefaultDataStore)
	}
	var paths []string
	for _, path := range w.WatchPaths() {
		if _, err := os.Stat(path); err == nil {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// Close closes the data store in use.
func (p *PEX) Close() error {
	return p.current.Load().store.Close()
}
