package platform

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.minekube.com/common/minecraft/component"
	"go.minekube.com/common/minecraft/key"

	"go.minekube.com/pex/pkg/command"
	"go.minekube.com/pex/pkg/contexts"
	"go.minekube.com/pex/pkg/datastore"
	"go.minekube.com/pex/pkg/datastore/groupmanager"
	"go.minekube.com/pex/pkg/util/netutil"
	"go.minekube.com/pex/pkg/util/permission"
)

type testPlayer struct {
	permission.Subject
	remote, virtual net.Addr
	world, dim      key.Key
	messages        []string
}

func (p *testPlayer) RemoteAddr() net.Addr  { return p.remote }
func (p *testPlayer) VirtualHost() net.Addr { return p.virtual }
func (p *testPlayer) World() key.Key        { return p.world }
func (p *testPlayer) Dimension() key.Key    { return p.dim }
func (p *testPlayer) SendMessage(msg component.Component) error {
	p.messages = append(p.messages, plain(msg))
	return nil
}

var _ interface {
	Player
	Source
} = (*testPlayer)(nil)

// plain flattens the text content of a component.
func plain(c component.Component) string {
	t, ok := c.(*component.Text)
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(t.Content)
	for _, e := range t.Extra {
		b.WriteString(plain(e))
	}
	return b.String()
}

type testSubject struct{ associated any }

func (s testSubject) Associated() any { return s.associated }

type testServer struct{}

func (testServer) Worlds() []key.Key {
	return []key.Key{key.New(key.MinecraftNamespace, "overworld"), key.New("custom", "lobby")}
}
func (testServer) Dimensions() []key.Key {
	return []key.Key{key.New(key.MinecraftNamespace, "the_nether")}
}

func newPlayer(perms ...string) *testPlayer {
	allowed := map[string]bool{}
	for _, p := range perms {
		allowed[p] = true
	}
	return &testPlayer{
		Subject: permission.Of(func(p string) permission.TriState {
			if allowed[p] {
				return permission.True
			}
			return permission.Undefined
		}),
		remote:  &net.TCPAddr{IP: net.ParseIP("203.0.113.7"), Port: 51234},
		virtual: netutil.NewAddr("play.example.com:25566", "tcp"),
		world:   key.New("custom", "lobby"),
		dim:     key.New(key.MinecraftNamespace, "overworld"),
	}
}

func TestDefinitions_FromSubject(t *testing.T) {
	defs := Definitions(testServer{})
	require.Equal(t, []string{DimensionKey, LocalHostKey, LocalIPKey, LocalPortKey, RemoteIPKey, WorldKey}, defs.Names())

	p := newPlayer()
	active := defs.FromSubject(testSubject{associated: p})
	require.Equal(t, []string{"custom:lobby"}, active.Get(WorldKey))
	require.Equal(t, []string{"minecraft:overworld"}, active.Get(DimensionKey))
	require.Equal(t, []string{"203.0.113.7"}, active.Get(RemoteIPKey))
	require.Equal(t, []string{"play.example.com"}, active.Get(LocalHostKey))
	require.Equal(t, []string{"25566"}, active.Get(LocalPortKey))
	// hostname virtual hosts have no localip
	require.Empty(t, active.Get(LocalIPKey))

	p.virtual = &net.TCPAddr{IP: net.ParseIP("::ffff:10.0.0.1"), Port: 25565}
	active = defs.FromSubject(testSubject{associated: p})
	require.Equal(t, []string{"10.0.0.1"}, active.Get(LocalIPKey))
	require.Equal(t, []string{"10.0.0.1"}, active.Get(LocalHostKey))

	require.True(t, defs.FromSubject(testSubject{}).Empty())
	require.True(t, defs.FromSubject(testSubject{associated: "offline"}).Empty())
}

func TestDefinitions_Matching(t *testing.T) {
	defs := Definitions(nil)

	require.True(t, defs.Matches(contexts.V(RemoteIPKey, "203.0.113.0/24"), contexts.V(RemoteIPKey, "203.0.113.7")))
	require.False(t, defs.Matches(contexts.V(RemoteIPKey, "203.0.113.7"), contexts.V(RemoteIPKey, "203.0.113.0/24")))
	require.True(t, defs.Matches(contexts.V(WorldKey, "minecraft:overworld"), contexts.V(WorldKey, "minecraft:overworld")))
	require.False(t, defs.Matches(contexts.V(WorldKey, "overworld"), contexts.V(DimensionKey, "overworld")))
	require.False(t, defs.Matches(contexts.V(LocalPortKey, "x"), contexts.V(LocalPortKey, "x")))

	v, err := defs.Get(LocalPortKey).Normalize("025565")
	require.NoError(t, err)
	require.Equal(t, "25565", v)
	_, err = defs.Get(RemoteIPKey).Normalize("not-an-ip")
	require.Error(t, err)
}

func TestDefinitions_Suggest(t *testing.T) {
	defs := Definitions(testServer{})
	require.Equal(t, []string{"custom:lobby", "minecraft:overworld"}, defs.Get(WorldKey).Suggest(nil))
	require.Equal(t, []string{"minecraft:the_nether"}, defs.Get(DimensionKey).Suggest(nil))
	require.Empty(t, Definitions(nil).Get(WorldKey).Suggest(nil))
}

func TestDefinitions_FromSource(t *testing.T) {
	defs := Definitions(nil)
	p := newPlayer()
	active := defs.FromSource(p)
	require.Equal(t, []string{"custom:lobby"}, active.Get(WorldKey))
	require.Equal(t, []string{"203.0.113.7"}, active.Get(RemoteIPKey))

	require.True(t, defs.FromSource(struct{}{}).Empty())
}

func testStore(t *testing.T) datastore.Store {
	t.Helper()
	root := filepath.Join(t.TempDir(), "GroupManager")
	files := map[string]string{
		"globalgroups.yml":        "groups:\n  g:admin:\n    permissions: ['*']\n",
		"worlds/world/users.yml":  "users:\n  alice:\n    group: admin\n    permissions: [-essentials.fly]\n",
		"worlds/world/groups.yml": "groups:\n  default:\n    default: true\n",
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, mkfile(p, content))
	}
	s, err := groupmanager.New("gm", groupmanager.Options{Config: &groupmanager.Config{GroupManagerRoot: root}})
	require.NoError(t, err)
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func TestCommand(t *testing.T) {
	s := testStore(t)
	var mgr command.Manager
	RegisterCommands(&mgr, func() datastore.Store { return s }, Definitions(testServer{}))
	require.True(t, mgr.Has("pex"))
	require.True(t, mgr.Has("permissionsex"))

	p := newPlayer(typesCmdPermission, listCmdPermission, infoCmdPermission, contextsCmdPermission)
	ctx := context.Background()

	require.NoError(t, mgr.Do(ctx, p, "pex types"))
	require.NoError(t, mgr.Do(ctx, p, "pex list group"))
	require.NoError(t, mgr.Do(ctx, p, "pex list world"))
	require.NoError(t, mgr.Do(ctx, p, "permissionsex info user alice"))
	require.NoError(t, mgr.Do(ctx, p, "pex info user bob"))
	require.NoError(t, mgr.Do(ctx, p, "pex contexts"))
	require.Len(t, p.messages, 6)

	require.Equal(t, "Subject types of gm (2): user, group", p.messages[0])
	require.Contains(t, p.messages[1], "group subjects (2):")
	require.Contains(t, p.messages[1], "admin, default")
	require.Contains(t, p.messages[2], `Unknown subject type "world"`)
	require.Contains(t, p.messages[3], "[world=world]")
	require.Contains(t, p.messages[3], "parents: group:admin")
	require.Contains(t, p.messages[3], "essentials.fly: -1")
	require.Contains(t, p.messages[4], "has no data")
	require.Contains(t, p.messages[5], "world=custom:lobby")

	suggestions, err := mgr.OfferSuggestions(ctx, p, "pex info user al")
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, suggestions)
	suggestions, err = mgr.OfferSuggestions(ctx, p, "pex list gr")
	require.NoError(t, err)
	require.Equal(t, []string{"group"}, suggestions)
}

func TestCommand_Permissions(t *testing.T) {
	s := testStore(t)
	var mgr command.Manager
	RegisterCommands(&mgr, func() datastore.Store { return s }, nil)

	p := newPlayer(typesCmdPermission)
	require.NoError(t, mgr.Do(context.Background(), p, "pex types"))
	require.Error(t, mgr.Do(context.Background(), p, "pex list user"))
	require.Error(t, mgr.Do(context.Background(), p, "pex info user alice"))
	require.Len(t, p.messages, 1)
}

func mkfile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
