package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.minekube.com/brigodier"
	"go.minekube.com/common/minecraft/component"

	"go.minekube.com/pex/pkg/command/suggest"
	"go.minekube.com/pex/pkg/util/permission"
)

// testSource records messages sent to it.
type testSource struct {
	permission.Subject
	messages []string
}

func (s *testSource) SendMessage(msg component.Component) error {
	if t, ok := msg.(*component.Text); ok {
		s.messages = append(s.messages, t.Content)
	}
	return nil
}

func newSource(perms ...string) *testSource {
	allowed := map[string]bool{}
	for _, p := range perms {
		allowed[p] = true
	}
	return &testSource{Subject: permission.Of(func(p string) permission.TriState {
		if allowed[p] {
			return permission.True
		}
		return permission.Undefined
	})}
}

func echoCmd(literal string) brigodier.LiteralNodeBuilder {
	return brigodier.Literal(literal).
		Requires(RequiresPermission("test.echo")).
		Then(brigodier.Argument("name", brigodier.String).
			Suggests(SuggestFunc(func(c *Context, b *brigodier.SuggestionsBuilder) *brigodier.Suggestions {
				return suggest.Similar(b, []string{"admin", "default", "moderator"}).Build()
			})).
			Executes(Command(func(c *Context) error {
				return c.SendMessage(&component.Text{Content: "hello " + c.String("name")})
			})),
		)
}

func TestManager_RegisterWithAliases(t *testing.T) {
	var mgr Manager
	mgr.RegisterWithAliases(echoCmd, "echo", "e", "say")

	require.True(t, mgr.Has("echo"))
	require.True(t, mgr.Has("E"))
	require.True(t, mgr.Has("say"))
	require.False(t, mgr.Has("other"))

	src := newSource("test.echo")
	for _, cmd := range []string{"echo bob", "e bob", "say bob"} {
		require.NoError(t, mgr.Do(context.TODO(), src, cmd))
	}
	require.Equal(t, []string{"hello bob", "hello bob", "hello bob"}, src.messages)
}

func TestManager_Requires(t *testing.T) {
	var mgr Manager
	mgr.RegisterWithAliases(echoCmd, "echo", "e")

	src := newSource()
	require.Error(t, mgr.Do(context.TODO(), src, "echo bob"))
	require.Error(t, mgr.Do(context.TODO(), src, "e bob"))
	require.Empty(t, src.messages)
}

func TestManager_OfferSuggestions(t *testing.T) {
	var mgr Manager
	mgr.RegisterWithAliases(echoCmd, "echo")

	s, err := mgr.OfferSuggestions(context.TODO(), newSource("test.echo"), "echo adm")
	require.NoError(t, err)
	require.Equal(t, []string{"admin"}, s)
}

func TestManager_ExecuteWithoutSource(t *testing.T) {
	var mgr Manager
	mgr.RegisterWithAliases(echoCmd, "echo")
	parse := mgr.Parse(context.TODO(), nil, "echo bob")
	require.Error(t, mgr.Execute(parse))
}
