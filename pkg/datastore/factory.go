package datastore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"
)

// Factory creates stores of one type.
type Factory interface {
	// Type is the type name used in configuration, e.g. "groupmanager".
	Type() string
	// FriendlyName is a human readable name of the type.
	FriendlyName() string
	// New creates an uninitialized store from configuration options.
	New(identifier string, options map[string]any) (Store, error)
}

// Convertible is implemented by factories of stores that can be discovered
// next to an engine installation and converted.
type Convertible interface {
	Factory
	// ConversionOptions returns stores found relative to the engine's
	// base directory. The returned stores are not initialized.
	ConversionOptions(baseDir string) []ConversionResult
}

// ConversionResult is a store discovered for conversion.
type ConversionResult struct {
	Store       Store
	Description string
}

var registry = struct {
	sync.RWMutex
	factories map[string]Factory
}{factories: map[string]Factory{}}

// Register makes a Factory available by its type.
// It panics if a factory of the same type is already registered.
func Register(f Factory) {
	registry.Lock()
	defer registry.Unlock()
	if _, dup := registry.factories[f.Type()]; dup {
		panic("datastore: Register called twice for type " + f.Type())
	}
	registry.factories[f.Type()] = f
}

// Lookup returns the registered Factory of a type.
func Lookup(typ string) (Factory, bool) {
	registry.RLock()
	defer registry.RUnlock()
	f, ok := registry.factories[typ]
	return f, ok
}

// Factories returns all registered factories sorted by type.
func Factories() []Factory {
	registry.RLock()
	defer registry.RUnlock()
	list := make([]Factory, 0, len(registry.factories))
	for _, f := range registry.factories {
		list = append(list, f)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Type() < list[j].Type() })
	return list
}

// New creates an uninitialized store using the registered Factory of typ.
func New(typ, identifier string, options map[string]any) (Store, error) {
	f, ok := Lookup(typ)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, typ)
	}
	return f.New(identifier, options)
}

// ConversionOptions collects the conversion options of every registered
// Convertible factory.
func ConversionOptions(baseDir string) []ConversionResult {
	var results []ConversionResult
	for _, f := range Factories() {
		if c, ok := f.(Convertible); ok {
			results = append(results, c.ConversionOptions(baseDir)...)
		}
	}
	return results
}

// DecodeOptions decodes generic configuration options into out,
// which must be a pointer to a struct holding defaults.
// Unknown keys are rejected.
func DecodeOptions(options map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err = dec.Decode(options); err != nil {
		return fmt.Errorf("invalid data store options: %w", err)
	}
	return nil
}
