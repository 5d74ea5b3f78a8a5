package pex

import (
	"time"

	"go.minekube.com/pex/pkg/datastore"
	"go.minekube.com/pex/pkg/internal/reload"
)

// StoreLoadedEvent is fired once the data store was initialized by New.
type StoreLoadedEvent struct {
	Store datastore.Store
	// Took is the time it took to build and initialize the store.
	Took time.Duration
}

// StoreReloadedEvent is fired after the data store was replaced
// by a freshly loaded instance.
type StoreReloadedEvent = reload.UpdateEvent[datastore.Store]
