package subject

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"go.minekube.com/pex/pkg/contexts"
	"go.minekube.com/pex/pkg/util/permission"
)

var nether = contexts.NewSet(contexts.V("world", "nether"))

func TestNewData(t *testing.T) {
	perms := map[string]int{"build": 1}
	d := NewData(
		Segment{Permissions: perms, Parents: []Ref{Group("base")}},
		Segment{Contexts: nether, Permissions: map[string]int{"fly": -1}, Options: map[string]string{"prefix": "&c"}},
		Segment{Contexts: nether}, // empty, dropped
		Segment{Permissions: map[string]int{"build": -1, "chat": 1}, Parents: []Ref{Group("vip")}, DefaultValue: 1},
	)

	// returned data is not affected by later mutation of the input
	perms["build"] = -5

	require.Len(t, d.Segments(), 2)
	require.Equal(t, map[string]int{"build": 1, "chat": 1}, d.Permissions(contexts.Set{}))
	require.Equal(t, []Ref{Group("base"), Group("vip")}, d.Parents(contexts.Set{}))
	require.Equal(t, 1, d.DefaultValue(contexts.Set{}))

	require.Equal(t, permission.False, d.Permission(nether, "fly"))
	require.Equal(t, permission.Undefined, d.Permission(nether, "build"))
	require.Equal(t, permission.True, d.Permission(contexts.Set{}, "anything"))

	v, ok := d.Option(nether, "prefix")
	require.True(t, ok)
	require.Equal(t, "&c", v)

	// accessors return copies
	d.Permissions(nether)["fly"] = 1
	require.Equal(t, permission.False, d.Permission(nether, "fly"))

	require.Len(t, d.ActiveContexts(), 2)
	require.True(t, d.ActiveContexts()[1].Equal(nether))
}

func TestData_Empty(t *testing.T) {
	var nilData *Data
	require.True(t, nilData.Empty())
	require.Nil(t, nilData.Parents(contexts.Set{}))
	require.True(t, NewData().Empty())
	require.True(t, NewData(Segment{}).Empty())
}

func TestData_Marshal(t *testing.T) {
	d := NewData(Segment{
		Contexts:    nether,
		Permissions: map[string]int{"fly": 1},
		Parents:     []Ref{Group("admin")},
	})

	b, err := json.Marshal(d)
	require.NoError(t, err)
	require.JSONEq(t, `[{"contexts":[{"key":"world","value":"nether"}],"permissions":{"fly":1},"parents":["group:admin"]}]`, string(b))

	y, err := yaml.Marshal(d)
	require.NoError(t, err)
	require.Contains(t, string(y), "- group:admin")
}

func TestParseRef(t *testing.T) {
	r, err := ParseRef("group:g:admin")
	require.NoError(t, err)
	require.Equal(t, Group("g:admin"), r)
	require.Equal(t, "group:g:admin", r.String())

	_, err = ParseRef("admin")
	require.Error(t, err)
	_, err = ParseRef(":admin")
	require.Error(t, err)
}
