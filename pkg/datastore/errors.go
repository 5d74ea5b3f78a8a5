package datastore

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationMissing is returned when the location a store
	// should load from does not exist.
	ErrConfigurationMissing = errors.New("data store location missing")
	// ErrDocumentLoad matches every *LoadError.
	ErrDocumentLoad = errors.New("error loading document")
	// ErrUnsupported is returned for queries a store cannot answer.
	// It is a capability gap, not a data problem.
	ErrUnsupported = errors.New("query not supported by data store")
	// ErrNotReady is returned by queries on a store that is not initialized.
	ErrNotReady = errors.New("data store not initialized")
	// ErrAlreadyInitialized is returned when initializing a ready store.
	ErrAlreadyInitialized = errors.New("data store already initialized")
	// ErrUnknownType is returned for data store types without a registered Factory.
	ErrUnknownType = errors.New("unknown data store type")
)

// LoadError is an error loading a document a store requires.
type LoadError struct {
	Path string // The document that failed to load.
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("error loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDocumentLoad) true for every LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrDocumentLoad }

// MissingError returns an error matching ErrConfigurationMissing for path.
func MissingError(path, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrConfigurationMissing, path, reason)
}
