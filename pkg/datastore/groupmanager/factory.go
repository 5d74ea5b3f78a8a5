package groupmanager

import (
	"os"
	"path/filepath"

	"go.minekube.com/pex/pkg/datastore"
)

// Type is the data store type of GroupManager stores.
const Type = "groupmanager"

// DefaultIdentifier is the identifier of discovered stores.
const DefaultIdentifier = "gm-file"

func init() { datastore.Register(Factory{}) }

// Factory creates GroupManager stores from configuration options.
type Factory struct{}

var _ datastore.Convertible = Factory{}

func (Factory) Type() string         { return Type }
func (Factory) FriendlyName() string { return "GroupManager" }

// New creates a store from options, e.g. {"groupManagerRoot": "plugins/GroupManager"}.
func (Factory) New(identifier string, options map[string]any) (datastore.Store, error) {
	cfg := DefaultConfig
	if err := datastore.DecodeOptions(options, &cfg); err != nil {
		return nil, err
	}
	return New(identifier, Options{Config: &cfg})
}

// ConversionOptions looks for a GroupManager directory next to baseDir,
// e.g. plugins/GroupManager for plugins/PermissionsEx.
func (Factory) ConversionOptions(baseDir string) []datastore.ConversionResult {
	root := filepath.Join(filepath.Dir(filepath.Clean(baseDir)), "GroupManager")
	if r, ok := Discover(root); ok {
		return []datastore.ConversionResult{r}
	}
	return nil
}

// Discover reports whether root looks like a GroupManager directory,
// that is, it contains a config.yml. The returned store is not initialized.
func Discover(root string) (datastore.ConversionResult, bool) {
	fi, err := os.Stat(filepath.Join(root, configFile))
	if err != nil || fi.IsDir() {
		return datastore.ConversionResult{}, false
	}
	s, err := New(DefaultIdentifier, Options{Config: &Config{GroupManagerRoot: root}})
	if err != nil {
		return datastore.ConversionResult{}, false
	}
	return datastore.ConversionResult{
		Store:       s,
		Description: "GroupManager (" + root + ")",
	}, true
}
