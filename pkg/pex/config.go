package pex

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"go.minekube.com/pex/pkg/datastore"
	"go.minekube.com/pex/pkg/datastore/groupmanager"
	"go.minekube.com/pex/pkg/util/configutil"
	"go.minekube.com/pex/pkg/util/validation"
)

// Config is the PermissionsEx config for reading in files and environment variables with Viper.
type Config struct {
	// Debug enables debug logging.
	Debug bool `yaml:"debug" json:"debug"`
	// BaseDirectory is the engine's base directory.
	// Conversion candidates are searched next to it.
	BaseDirectory string `yaml:"baseDirectory" json:"baseDirectory" validate:"required"`
	// DefaultDataStore is the identifier of the data store in use.
	DefaultDataStore string `yaml:"defaultDataStore" json:"defaultDataStore" validate:"required"`
	// DataStores by identifier.
	DataStores map[string]DataStore `yaml:"dataStores" json:"dataStores" validate:"required,min=1,dive"`

	Cache     Cache     `yaml:"cache" json:"cache"`
	Watch     Watch     `yaml:"watch" json:"watch"`
	Telemetry Telemetry `yaml:"telemetry" json:"telemetry"`
}

// DataStore configures one data store.
type DataStore struct {
	// Type is the registered data store type, e.g. "groupmanager".
	Type string `yaml:"type" json:"type" validate:"required"`
	// Options are decoded by the data store type.
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// Cache configures memoization of subject data.
type Cache struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// TTL of cached entries, zero keeps them until the store is reloaded.
	TTL configutil.Duration `yaml:"ttl" json:"ttl"`
	// Capacity is the maximum number of cached subjects, zero is unbounded.
	Capacity uint64 `yaml:"capacity" json:"capacity"`
}

// Watch configures reloading the data store when its files change.
type Watch struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Debounce is the quiet period after the last change before reloading.
	Debounce configutil.Duration `yaml:"debounce" json:"debounce"`
}

// Telemetry configures OpenTelemetry instrumentation.
type Telemetry struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// DefaultConfig is the default configuration.
var DefaultConfig = Config{
	BaseDirectory:    "plugins/PermissionsEx",
	DefaultDataStore: groupmanager.DefaultIdentifier,
	DataStores:       defaultDataStores(),
	Cache: Cache{
		TTL:      configutil.Duration(5 * time.Minute),
		Capacity: 1024,
	},
	Watch: Watch{
		Debounce: configutil.Duration(100 * time.Millisecond),
	},
}

func defaultDataStores() map[string]DataStore {
	return map[string]DataStore{
		groupmanager.DefaultIdentifier: {
			Type: groupmanager.Type,
			Options: map[string]any{
				"groupManagerRoot": groupmanager.DefaultConfig.GroupManagerRoot,
			},
		},
	}
}

// SetDefaults sets Config defaults to use with Viper.
func SetDefaults(i configutil.SetDefault) {
	d := DefaultConfig
	i.SetDefault("debug", d.Debug)
	i.SetDefault("baseDirectory", d.BaseDirectory)
	i.SetDefault("defaultDataStore", d.DefaultDataStore)
	i.SetDefault("cache.enabled", d.Cache.Enabled)
	i.SetDefault("cache.ttl", d.Cache.TTL.String())
	i.SetDefault("cache.capacity", d.Cache.Capacity)
	i.SetDefault("watch.enabled", d.Watch.Enabled)
	i.SetDefault("watch.debounce", d.Watch.Debounce.String())
	i.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
}

// LoadConfig reads the config file set in v, if any, and decodes it.
// Every call returns a fresh Config that shares no maps with previous loads.
// Without configured data stores the default GroupManager store is used.
func LoadConfig(v *viper.Viper) (*Config, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %q: %w", v.ConfigFileUsed(), err)
		}
	}
	SetDefaults(v)

	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		configutil.DurationHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)))
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if len(cfg.DataStores) == 0 {
		cfg.DataStores = defaultDataStores()
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate validates the config using struct tags and rules spanning fields.
func (c *Config) Validate() (warns []error, errs []error) {
	e := func(m string, args ...any) { errs = append(errs, fmt.Errorf(m, args...)) }
	w := func(m string, args ...any) { warns = append(warns, fmt.Errorf(m, args...)) }
	if c == nil {
		e("config must not be nil")
		return
	}

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			e("%v", err)
			return
		}
		for _, fe := range fieldErrs {
			e("%s: validation failed on '%s' tag (value: %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
	}

	if c.DefaultDataStore != "" {
		if _, ok := c.DataStores[c.DefaultDataStore]; !ok {
			e("Default data store %q must be configured under dataStores", c.DefaultDataStore)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(c.DataStores)) {
		ds := c.DataStores[id]
		if !validation.ValidIdentifier(id) {
			e("Invalid data store identifier %q: %s and length be 1-%d", id,
				validation.QualifiedNameErrMsg, validation.QualifiedNameMaxLength)
		}
		if ds.Type != "" {
			if _, ok := datastore.Lookup(ds.Type); !ok {
				e("Unknown type %q of data store %q", ds.Type, id)
			}
		}
		if id != c.DefaultDataStore {
			w("Data store %q is configured but not used as default data store.", id)
		}
	}

	if c.Cache.TTL < 0 {
		e("Cache ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Watch.Debounce < 0 {
		e("Watch debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return
}

// Valid validates c, logs warnings and errors and returns an error
// if there was at least one validation error.
func (c *Config) Valid(log logr.Logger) error {
	warns, errs := c.Validate()
	for _, err := range warns {
		log.Info("config warning", "warning", err.Error())
	}
	if len(errs) == 0 {
		return nil
	}
	for _, err := range errs {
		log.Error(err, "config error")
	}
	a, s := "are", "s"
	if len(errs) == 1 {
		a, s = "is", ""
	}
	return fmt.Errorf("there %s %d config validation error%s", a, len(errs), s)
}
