// Package datastore defines the contract between permission data stores and
// the engine consuming them, and a registry of store factories.
package datastore

import (
	"context"
	"iter"

	mapset "github.com/deckarep/golang-set/v2"

	"go.minekube.com/pex/pkg/contexts"
	"go.minekube.com/pex/pkg/rank"
	"go.minekube.com/pex/pkg/subject"
)

// Store is a source of subject data.
//
// A Store starts uninitialized and becomes ready after a successful call to
// Initialize. Queries on a store that is not ready return ErrNotReady, or
// an empty result for queries that cannot fail.
// All queries of a ready store are safe for concurrent use.
type Store interface {
	// Name returns the identifier the store was created with.
	Name() string
	// Initialize loads the store. It blocks until loading is complete.
	Initialize(ctx context.Context) error

	// Data returns the data of a subject.
	// Subjects without data return an empty Data, not an error.
	Data(typ, identifier string) (*subject.Data, error)
	// IsRegistered reports whether the store holds data for a subject.
	// Unknown subject types are never registered.
	IsRegistered(typ, identifier string) (bool, error)
	// AllIdentifiers returns the identifiers of all subjects of a type.
	AllIdentifiers(typ string) mapset.Set[string]
	// RegisteredTypes returns the subject types the store holds.
	RegisteredTypes() []string
	// All returns every subject with its data.
	// The sequence is computed anew on each iteration.
	All() iter.Seq2[subject.Ref, *subject.Data]

	// AllRankLadders returns the names of all rank ladders.
	AllRankLadders() iter.Seq[string]
	// RankLadder returns a ladder by name; unknown ladders are empty.
	RankLadder(name string) (*rank.Ladder, error)
	// HasRankLadder reports whether a ladder with ranks exists.
	HasRankLadder(name string) (bool, error)

	// ContextInheritance returns the context inheritance of the store.
	ContextInheritance() (contexts.Inheritance, error)
	// DefinedContextKeys returns all context keys used by stored data.
	// Stores that cannot answer return ErrUnsupported.
	DefinedContextKeys() ([]string, error)

	// Close releases the store.
	Close() error
}

// Watchable is implemented by stores backed by local files.
type Watchable interface {
	// WatchPaths returns the files and directories the store reads.
	WatchPaths() []string
}

// AllOf returns an All sequence for s built from its identifiers:
// every registered type in order, identifiers in sorted order.
// Subjects whose data cannot be loaded are skipped.
func AllOf(s Store) iter.Seq2[subject.Ref, *subject.Data] {
	return func(yield func(subject.Ref, *subject.Data) bool) {
		for _, typ := range s.RegisteredTypes() {
			for _, id := range mapset.Sorted(s.AllIdentifiers(typ)) {
				data, err := s.Data(typ, id)
				if err != nil {
					continue
				}
				if !yield(subject.Ref{Type: typ, Identifier: id}, data) {
					return
				}
			}
		}
	}
}
