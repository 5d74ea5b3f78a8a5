// Package groupmanager is a read-only data store over the directory layout of
// the GroupManager plugin, used to import its users and groups.
//
// The directory contains:
//
//	config.yml         settings.mirrors world mirroring
//	globalgroups.yml   groups "g:<name>", applying in every world
//	worlds/<world>/users.yml   users <id> group, subgroups, permissions, info
//	worlds/<world>/groups.yml  groups <name> default, permissions, inheritance, info
//
// Global groups project without contexts, world entries are scoped to the
// world=<world> context and world mirrors become context inheritance.
package groupmanager

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"

	"go.minekube.com/pex/pkg/contexts"
	"go.minekube.com/pex/pkg/datastore"
	"go.minekube.com/pex/pkg/rank"
	"go.minekube.com/pex/pkg/subject"
	"go.minekube.com/pex/pkg/util/errs"
)

// Options are the options of a GroupManager store.
type Options struct {
	// Config is the store configuration. (required)
	Config *Config
	// Logger is the logger used by the store.
	// If not set, the logger of the Initialize context is used.
	Logger logr.Logger
	// Tracer traces initialization.
	// If not set, the global otel tracer provider is used.
	Tracer trace.Tracer
}

// Store is a read-only datastore.Store of a GroupManager directory.
type Store struct {
	name   string
	config Config
	log    logr.Logger
	tracer trace.Tracer

	ready   atomic.Bool
	mu      sync.Mutex // guards Initialize
	initErr error      // terminal initialization failure
	idx     *index     // set before ready
}

var (
	_ datastore.Store     = (*Store)(nil)
	_ datastore.Watchable = (*Store)(nil)
)

// New returns a new uninitialized Store.
func New(identifier string, options Options) (*Store, error) {
	if options.Config == nil {
		return nil, errs.ErrMissingConfig
	}
	var log logr.Logger
	if options.Logger.GetSink() != nil {
		log = options.Logger.WithName("groupmanager").WithValues("store", identifier)
	}
	tracer := options.Tracer
	if tracer == nil {
		tracer = otel.Tracer("go.minekube.com/pex/pkg/datastore/groupmanager")
	}
	return &Store{
		name:   identifier,
		config: *options.Config,
		log:    log,
		tracer: tracer,
	}, nil
}

func (s *Store) Name() string { return s.name }

// Root returns the GroupManager directory of the store.
func (s *Store) Root() string { return s.config.GroupManagerRoot }

// Initialize loads every document of the GroupManager directory.
//
// A store can be initialized once. A failed initialization is terminal,
// further calls return the same error.
func (s *Store) Initialize(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready.Load() {
		return datastore.ErrAlreadyInitialized
	}
	if s.initErr != nil {
		return s.initErr
	}

	root := s.config.GroupManagerRoot
	ctx, span := s.tracer.Start(ctx, "groupmanager.Initialize", trace.WithAttributes(
		attribute.String("pex.store", s.name),
		attribute.String("pex.groupmanager.root", root),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now()
	idx, err := scan(ctx, root)
	if err != nil {
		err = fmt.Errorf("error initializing GroupManager store %q: %w", s.name, err)
		if ctx.Err() == nil {
			s.initErr = err
		}
		return err
	}
	s.idx = idx
	s.ready.Store(true)

	s.logger(ctx).Info("loaded GroupManager data",
		"root", root,
		"worlds", len(idx.worldNames),
		"mirrored", idx.mirrors.Mirrored().Cardinality(),
		"took", time.Since(start).String())
	return nil
}

func (s *Store) logger(ctx context.Context) logr.Logger {
	if s.log.GetSink() != nil {
		return s.log
	}
	return logr.FromContextOrDiscard(ctx).WithName("groupmanager").WithValues("store", s.name)
}

// snapshot returns the loaded index or nil if not ready.
func (s *Store) snapshot() *index {
	if !s.ready.Load() {
		return nil
	}
	return s.idx
}

func (s *Store) Data(typ, identifier string) (*subject.Data, error) {
	idx := s.snapshot()
	if idx == nil {
		return nil, datastore.ErrNotReady
	}
	e, ok := entityOf(typ)
	if !ok {
		return subject.NewData(), nil
	}
	return idx.project(e, e.identifier(identifier)), nil
}

func (s *Store) IsRegistered(typ, identifier string) (bool, error) {
	idx := s.snapshot()
	if idx == nil {
		return false, datastore.ErrNotReady
	}
	e, ok := entityOf(typ)
	if !ok {
		return false, nil
	}
	return idx.registered(e, e.identifier(identifier)), nil
}

func (s *Store) AllIdentifiers(typ string) mapset.Set[string] {
	idx := s.snapshot()
	e, ok := entityOf(typ)
	if idx == nil || !ok {
		return mapset.NewThreadUnsafeSet[string]()
	}
	return mapset.NewThreadUnsafeSet(idx.identifiers(e)...)
}

func (s *Store) RegisteredTypes() []string { return subject.Types() }

// All returns users, then groups, each in identifier order.
func (s *Store) All() iter.Seq2[subject.Ref, *subject.Data] { return datastore.AllOf(s) }

// AllRankLadders returns no ladders, GroupManager has none.
func (s *Store) AllRankLadders() iter.Seq[string] {
	return func(func(string) bool) {}
}

func (s *Store) RankLadder(name string) (*rank.Ladder, error) {
	return rank.Fixed(name), nil
}

func (s *Store) HasRankLadder(string) (bool, error) { return false, nil }

// ContextInheritance returns the world mirrors of config.yml.
func (s *Store) ContextInheritance() (contexts.Inheritance, error) {
	idx := s.snapshot()
	if idx == nil {
		return nil, datastore.ErrNotReady
	}
	return idx.mirrors, nil
}

// Mirrors returns the world mirrors of config.yml.
func (s *Store) Mirrors() (*Mirrors, error) {
	idx := s.snapshot()
	if idx == nil {
		return nil, datastore.ErrNotReady
	}
	return idx.mirrors, nil
}

// DefinedContextKeys is not supported, every context key of a
// GroupManager store is the world context.
func (s *Store) DefinedContextKeys() ([]string, error) {
	return nil, fmt.Errorf("%w: defined context keys of GroupManager data", datastore.ErrUnsupported)
}

// KnownWorlds returns the names of all world directories in sorted order.
func (s *Store) KnownWorlds() []string {
	idx := s.snapshot()
	if idx == nil {
		return nil
	}
	return append([]string(nil), idx.worldNames...)
}

// WatchPaths returns the documents the store reads and the world directories.
// Before initialization only the top-level paths are known.
func (s *Store) WatchPaths() []string {
	if idx := s.snapshot(); idx != nil {
		return idx.watchPaths()
	}
	return (&index{root: s.config.GroupManagerRoot}).watchPaths()
}

// Close is a no-op, all documents are read during Initialize.
func (s *Store) Close() error { return nil }
