package command

import (
	"context"
	"errors"
	"strings"

	"go.minekube.com/brigodier"
	"go.minekube.com/common/minecraft/component"

	"go.minekube.com/pex/pkg/util/permission"
)

// Manager dispatches permission commands to the brigodier tree
// registered on it. Every execution needs a Source.
type Manager struct{ brigodier.Dispatcher }

// Source is whoever runs a command, a player or the console.
type Source interface {
	permission.Subject
	// SendMessage sends a message component to the invoker.
	SendMessage(msg component.Component) error
}

// SourceFromContext returns the Source stored by Manager.Parse, or nil.
func SourceFromContext(ctx context.Context) Source {
	src, _ := ctx.Value(sourceCtxKey).(Source)
	return src
}

// Context is passed to Command and SuggestFunc handlers.
type Context struct {
	*brigodier.CommandContext
	Source
}

func createContext(c *brigodier.CommandContext) *Context {
	return &Context{
		CommandContext: c,
		Source:         SourceFromContext(c),
	}
}

// RequiresContext is passed to Requires handlers.
type RequiresContext struct {
	context.Context
	Source
}

// Command adapts fn to a brigodier.Command.
func Command(fn func(c *Context) error) brigodier.Command {
	return brigodier.CommandFunc(func(c *brigodier.CommandContext) error {
		return fn(createContext(c))
	})
}

// SuggestFunc implements brigodier.SuggestionProvider.
type SuggestFunc func(c *Context, b *brigodier.SuggestionsBuilder) *brigodier.Suggestions

var _ brigodier.SuggestionProvider = (*SuggestFunc)(nil)

func (s SuggestFunc) Suggestions(c *brigodier.CommandContext, b *brigodier.SuggestionsBuilder) *brigodier.Suggestions {
	return s(createContext(c), b)
}

// Requires adapts fn to a brigodier requirement.
func Requires(fn func(c *RequiresContext) bool) func(context.Context) bool {
	return func(ctx context.Context) bool {
		return fn(&RequiresContext{
			Context: ctx,
			Source:  SourceFromContext(ctx),
		})
	}
}

// RequiresPermission returns a requirement that the Source has perm.
func RequiresPermission(perm string) func(context.Context) bool {
	return Requires(func(c *RequiresContext) bool {
		return c.Source != nil && c.Source.HasPermission(perm)
	})
}

// ParseResults are returned by Manager.Parse and consumed by Manager.Execute.
type ParseResults brigodier.ParseResults

// Parse parses cmdline on behalf of src.
func (m *Manager) Parse(ctx context.Context, src Source, cmdline string) *ParseResults {
	ctx = context.WithValue(ctx, sourceCtxKey, src)
	return (*ParseResults)(m.Dispatcher.ParseReader(ctx, &brigodier.StringReader{String: cmdline}))
}

// Execute runs parsed results. It fails if they were parsed without a Source.
func (m *Manager) Execute(parse *ParseResults) error {
	if SourceFromContext(parse.Context) == nil {
		return errors.New("context misses command source")
	}
	return m.Dispatcher.Execute((*brigodier.ParseResults)(parse))
}

// Do parses and executes cmdline.
func (m *Manager) Do(ctx context.Context, src Source, cmdline string) error {
	return m.Execute(m.Parse(ctx, src, cmdline))
}

// Has reports whether a root command or alias named name is registered.
func (m *Manager) Has(name string) bool {
	_, ok := m.Dispatcher.Root.Children()[strings.ToLower(name)]
	return ok
}

// RegisterWithAliases registers the command built by build under name
// and under every alias. Each alias gets its own copy of the command tree.
func (m *Manager) RegisterWithAliases(build func(literal string) brigodier.LiteralNodeBuilder, name string, aliases ...string) {
	m.Register(build(name))
	for _, alias := range aliases {
		m.Register(build(alias))
	}
}

// OfferSuggestions returns the completions of cmdline for src.
func (m *Manager) OfferSuggestions(ctx context.Context, src Source, cmdline string) ([]string, error) {
	suggestions, err := m.Dispatcher.CompletionSuggestions((*brigodier.ParseResults)(m.Parse(ctx, src, cmdline)))
	if err != nil {
		return nil, err
	}
	s := make([]string, 0, len(suggestions.Suggestions))
	for _, suggestion := range suggestions.Suggestions {
		s = append(s, suggestion.Text)
	}
	return s, nil
}

type sourceCtx struct{}

var sourceCtxKey = &sourceCtx{}
