package pex

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/robinbraemer/event"
	"github.com/stretchr/testify/require"

	"go.minekube.com/pex/pkg/datastore"
	"go.minekube.com/pex/pkg/datastore/groupmanager"
	"go.minekube.com/pex/pkg/util/configutil"
	"go.minekube.com/pex/pkg/util/errs"
)

func testLogger(t *testing.T) logr.Logger { return testr.New(t) }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// testConfig returns a config of a GroupManager directory with one world.
func testConfig(t *testing.T) (*Config, string) {
	t.Helper()
	plugins := t.TempDir()
	root := filepath.Join(plugins, "GroupManager")
	writeFile(t, filepath.Join(root, "config.yml"), "settings: {}\n")
	writeFile(t, filepath.Join(root, "worlds", "world", "users.yml"), "users:\n  alice:\n    group: admin\n")
	writeFile(t, filepath.Join(root, "worlds", "world", "groups.yml"), "groups:\n  admin:\n    permissions: ['*']\n")
	return &Config{
		BaseDirectory:    filepath.Join(plugins, "PermissionsEx"),
		DefaultDataStore: "gm",
		DataStores: map[string]DataStore{
			"gm": {Type: groupmanager.Type, Options: map[string]any{"groupManagerRoot": root}},
		},
		Watch: Watch{Debounce: configutil.Duration(20 * time.Millisecond)},
	}, root
}

func TestNew(t *testing.T) {
	cfg, _ := testConfig(t)
	mgr := event.New()
	var loaded *StoreLoadedEvent
	event.Subscribe(mgr, 0, func(e *StoreLoadedEvent) { loaded = e })

	p, err := New(context.Background(), Options{Config: cfg, Logger: testLogger(t), Event: mgr})
	require.NoError(t, err)
	defer p.Close()

	require.NotNil(t, loaded)
	require.Same(t, p.Store(), loaded.Store)
	require.Equal(t, "gm", p.Store().Name())

	ok, err := p.Store().IsRegistered("user", "alice")
	require.NoError(t, err)
	require.True(t, ok)

	conv := p.ConversionOptions()
	require.Len(t, conv, 1)
	require.Contains(t, conv[0].Description, "GroupManager")
}

func TestNew_DefaultEventManager(t *testing.T) {
	cfg, _ := testConfig(t)
	p, err := New(context.Background(), Options{Config: cfg, Logger: testLogger(t)})
	require.NoError(t, err)
	defer p.Close()

	require.NotNil(t, p.Event())
	var reloaded *StoreReloadedEvent
	defer event.Subscribe(p.Event(), 0, func(e *StoreReloadedEvent) { reloaded = e })()
	require.NoError(t, p.Reload(context.Background()))
	require.NotNil(t, reloaded)
	require.Same(t, p.Store(), reloaded.Current)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(context.Background(), Options{})
	require.ErrorIs(t, err, errs.ErrMissingConfig)

	cfg, root := testConfig(t)
	cfg.DefaultDataStore = "other"
	_, err = New(context.Background(), Options{Config: cfg})
	require.ErrorIs(t, err, errs.ErrMissingConfig)

	cfg, _ = testConfig(t)
	cfg.DataStores["gm"] = DataStore{Type: "sqlite"}
	_, err = New(context.Background(), Options{Config: cfg})
	require.ErrorIs(t, err, datastore.ErrUnknownType)

	cfg, _ = testConfig(t)
	cfg.DataStores["gm"] = DataStore{Type: groupmanager.Type, Options: map[string]any{"root": root}}
	_, err = New(context.Background(), Options{Config: cfg})
	require.Error(t, err, "unknown option")

	cfg, _ = testConfig(t)
	cfg.DataStores["gm"] = DataStore{Type: groupmanager.Type, Options: map[string]any{"groupManagerRoot": filepath.Join(root, "missing")}}
	_, err = New(context.Background(), Options{Config: cfg})
	require.ErrorIs(t, err, datastore.ErrConfigurationMissing)
}

func TestNew_Cached(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Cache = Cache{Enabled: true}
	p, err := New(context.Background(), Options{Config: cfg})
	require.NoError(t, err)
	defer p.Close()

	cached, ok := p.Store().(*datastore.CachedStore)
	require.True(t, ok)
	_, err = cached.Data("user", "alice")
	require.NoError(t, err)
	require.Equal(t, 1, cached.Len())
}

func TestReload(t *testing.T) {
	cfg, root := testConfig(t)
	cfg.Cache = Cache{Enabled: true}
	mgr := event.New()
	var reloaded *StoreReloadedEvent
	event.Subscribe(mgr, 0, func(e *StoreReloadedEvent) { reloaded = e })

	p, err := New(context.Background(), Options{Config: cfg, Event: mgr})
	require.NoError(t, err)
	defer p.Close()
	first := p.Store()
	_, err = first.Data("user", "alice")
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "worlds", "world", "users.yml"), "users:\n  bob: {}\n")
	require.NoError(t, p.Reload(context.Background()))
	require.NotSame(t, first, p.Store())
	require.NotNil(t, reloaded)
	require.Same(t, first, reloaded.Previous)
	require.Same(t, p.Store(), reloaded.Current)
	require.Zero(t, first.(*datastore.CachedStore).Len(), "replaced cache is invalidated")
	require.Equal(t, []string{"bob"}, mapset.Sorted(p.Store().AllIdentifiers("user")))

	// a broken document keeps the current store
	current := p.Store()
	writeFile(t, filepath.Join(root, "worlds", "world", "users.yml"), "users: [\n")
	require.ErrorIs(t, p.Reload(context.Background()), datastore.ErrDocumentLoad)
	require.Same(t, current, p.Store())
}

func TestWatch(t *testing.T) {
	cfg, root := testConfig(t)
	p, err := New(context.Background(), Options{Config: cfg, Logger: testLogger(t)})
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// disabled
	require.NoError(t, p.Watch(ctx))

	cfg.Watch.Enabled = true
	require.NoError(t, p.Watch(ctx))

	writeFile(t, filepath.Join(root, "worlds", "world", "groups.yml"), "groups:\n  admin: {}\n  mod: {}\n")
	require.Eventually(t, func() bool {
		return p.Store().AllIdentifiers("group").ContainsOne("mod")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatch_NewWorld(t *testing.T) {
	cfg, root := testConfig(t)
	cfg.Watch.Enabled = true
	p, err := New(context.Background(), Options{Config: cfg, Logger: testLogger(t)})
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Watch(ctx))

	registered := func(id string) func() bool {
		return func() bool {
			ok, err := p.Store().IsRegistered("user", id)
			return err == nil && ok
		}
	}

	nether := filepath.Join(root, "worlds", "world_nether")
	require.NoError(t, os.Mkdir(nether, 0755))
	require.Eventually(t, func() bool {
		return slices.Contains(p.Store().(*groupmanager.Store).KnownWorlds(), "world_nether")
	}, 5*time.Second, 10*time.Millisecond)

	// documents created in the new world are watched after the reload
	writeFile(t, filepath.Join(nether, "users.yml"), "users:\n  carol: {}\n")
	require.Eventually(t, registered("carol"), 5*time.Second, 10*time.Millisecond)
	writeFile(t, filepath.Join(nether, "users.yml"), "users:\n  dave: {}\n")
	require.Eventually(t, registered("dave"), 5*time.Second, 10*time.Millisecond)
}
