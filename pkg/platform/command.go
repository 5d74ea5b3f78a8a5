package platform

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"go.minekube.com/brigodier"
	"go.minekube.com/common/minecraft/color"
	"go.minekube.com/common/minecraft/component"

	"go.minekube.com/pex/pkg/command"
	"go.minekube.com/pex/pkg/command/suggest"
	"go.minekube.com/pex/pkg/contexts"
	"go.minekube.com/pex/pkg/datastore"
	"go.minekube.com/pex/pkg/subject"
)

// Command permissions.
const (
	typesCmdPermission    = "permissionsex.command.types"
	listCmdPermission     = "permissionsex.command.list"
	infoCmdPermission     = "permissionsex.command.info"
	contextsCmdPermission = "permissionsex.command.contexts"
)

const maxIdentifiersToList = 100

// StoreFunc returns the current data store.
type StoreFunc func() datastore.Store

// RegisterCommands registers /pex and its alias /permissionsex.
func RegisterCommands(mgr *command.Manager, store StoreFunc, defs *contexts.Registry) {
	mgr.RegisterWithAliases(func(literal string) brigodier.LiteralNodeBuilder {
		return NewCommand(literal, store, defs)
	}, "pex", "permissionsex")
}

// NewCommand returns the command tree to inspect the data of a store:
//
//	<literal> types
//	<literal> list <type>
//	<literal> info <type> <identifier>
//	<literal> contexts
func NewCommand(literal string, store StoreFunc, defs *contexts.Registry) brigodier.LiteralNodeBuilder {
	typeArg := func() *brigodier.RequiredArgumentBuilder {
		return brigodier.Argument("type", brigodier.String).
			Suggests(command.SuggestFunc(func(c *command.Context, b *brigodier.SuggestionsBuilder) *brigodier.Suggestions {
				return suggest.Similar(b, store().RegisteredTypes()).Build()
			}))
	}
	return brigodier.Literal(literal).
		Executes(command.Command(func(c *command.Context) error {
			return c.SendMessage(usage(literal))
		})).
		Then(brigodier.Literal("types").
			Requires(command.RequiresPermission(typesCmdPermission)).
			Executes(command.Command(func(c *command.Context) error {
				return c.SendMessage(TypesInfo(store()))
			})),
		).
		Then(brigodier.Literal("list").
			Requires(command.RequiresPermission(listCmdPermission)).
			Then(typeArg().
				Executes(command.Command(func(c *command.Context) error {
					return c.SendMessage(ListInfo(store(), c.String("type")))
				})),
			),
		).
		Then(brigodier.Literal("info").
			Requires(command.RequiresPermission(infoCmdPermission)).
			Then(typeArg().
				Then(brigodier.Argument("identifier", brigodier.String).
					Suggests(command.SuggestFunc(func(c *command.Context, b *brigodier.SuggestionsBuilder) *brigodier.Suggestions {
						ids := mapset.Sorted(store().AllIdentifiers(c.String("type")))
						return suggest.Similar(b, ids).Build()
					})).
					Executes(command.Command(func(c *command.Context) error {
						return c.SendMessage(SubjectInfo(store(), c.String("type"), c.String("identifier")))
					})),
				),
			),
		).
		Then(brigodier.Literal("contexts").
			Requires(command.RequiresPermission(contextsCmdPermission)).
			Executes(command.Command(func(c *command.Context) error {
				return c.SendMessage(contextsInfo(defs, c.Source))
			})),
		)
}

func usage(literal string) component.Component {
	return &component.Text{S: component.Style{Color: color.Yellow}, Content: fmt.Sprintf(
		"Usage: /%[1]s types | /%[1]s list <type> | /%[1]s info <type> <identifier> | /%[1]s contexts", literal)}
}

func errorText(format string, a ...any) component.Component {
	return &component.Text{S: component.Style{Color: color.Red}, Content: fmt.Sprintf(format, a...)}
}

// TypesInfo lists the subject types of a store.
func TypesInfo(s datastore.Store) component.Component {
	types := s.RegisteredTypes()
	info := &component.Text{S: component.Style{Color: color.Yellow}, Content: fmt.Sprintf("Subject types of %s (%d): ", s.Name(), len(types))}
	for i, typ := range types {
		if i != 0 {
			info.Extra = append(info.Extra, &component.Text{Content: ", "})
		}
		info.Extra = append(info.Extra, &component.Text{Content: typ, S: component.Style{Color: color.Aqua}})
	}
	return info
}

// ListInfo lists the identifiers of a subject type.
func ListInfo(s datastore.Store, typ string) component.Component {
	if !slices.Contains(s.RegisteredTypes(), typ) {
		return errorText("Unknown subject type %q.", typ)
	}
	ids := mapset.Sorted(s.AllIdentifiers(typ))
	list := &component.Text{S: component.Style{Color: color.Gray}}
	for i, id := range ids {
		if i == maxIdentifiersToList {
			list.Extra = append(list.Extra, &component.Text{Content: fmt.Sprintf("\n\nand %d more...", len(ids)-i)})
			break
		}
		if i != 0 {
			list.Extra = append(list.Extra, &component.Text{Content: ", "})
		}
		list.Extra = append(list.Extra, &component.Text{Content: id})
	}
	return &component.Text{S: component.Style{Color: color.Yellow}, Content: fmt.Sprintf("%s subjects (%d):\n", typ, len(ids)),
		Extra: []component.Component{list}}
}

// SubjectInfo shows the data of a subject segment by segment.
func SubjectInfo(s datastore.Store, typ, id string) component.Component {
	ok, err := s.IsRegistered(typ, id)
	if err != nil {
		return errorText("Error looking up %s: %v", subject.Ref{Type: typ, Identifier: id}, err)
	}
	if !ok {
		return errorText("%s %q has no data.", typ, id)
	}
	data, err := s.Data(typ, id)
	if err != nil {
		return errorText("Error loading %s: %v", subject.Ref{Type: typ, Identifier: id}, err)
	}
	info := &component.Text{S: component.Style{Color: color.Yellow}, Content: fmt.Sprintf("Data of %s:%s", typ, id)}
	add := func(c component.Component) { info.Extra = append(info.Extra, c) }
	for _, seg := range data.Segments() {
		add(&component.Text{Content: "\n" + seg.Contexts.String(), S: component.Style{Color: color.Aqua}})
		if seg.DefaultValue != 0 {
			add(&component.Text{Content: fmt.Sprintf("\n  default: %d", seg.DefaultValue), S: component.Style{Color: color.Gray}})
		}
		if len(seg.Parents) != 0 {
			names := make([]string, len(seg.Parents))
			for i, p := range seg.Parents {
				names[i] = p.String()
			}
			add(&component.Text{Content: "\n  parents: " + strings.Join(names, ", "), S: component.Style{Color: color.Gray}})
		}
		for _, perm := range slices.Sorted(maps.Keys(seg.Permissions)) {
			c := color.Green
			if seg.Permissions[perm] < 0 {
				c = color.Red
			}
			add(&component.Text{Content: fmt.Sprintf("\n  %s: %d", perm, seg.Permissions[perm]), S: component.Style{Color: c}})
		}
		for _, opt := range slices.Sorted(maps.Keys(seg.Options)) {
			add(&component.Text{Content: fmt.Sprintf("\n  %s = %q", opt, seg.Options[opt]), S: component.Style{Color: color.White}})
		}
	}
	return info
}

func contextsInfo(defs *contexts.Registry, source command.Source) component.Component {
	if defs == nil {
		return errorText("No context definitions available.")
	}
	active := defs.FromSource(source)
	return &component.Text{S: component.Style{Color: color.Yellow}, Content: "Active contexts: ", Extra: []component.Component{
		&component.Text{Content: active.String(), S: component.Style{Color: color.Aqua}},
		&component.Text{Content: "\nKnown context keys: " + strings.Join(defs.Names(), ", "), S: component.Style{Color: color.Gray}},
	}}
}
