package pex

import (
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-logr/logr"
	"github.com/urfave/cli/v2"

	"go.minekube.com/pex/internal/util/console"
	"go.minekube.com/pex/pkg/command/suggest"
	"go.minekube.com/pex/pkg/datastore"
	"go.minekube.com/pex/pkg/datastore/groupmanager"
	"go.minekube.com/pex/pkg/pex"
	"go.minekube.com/pex/pkg/platform"
)

const maxDidYouMean = 3

const rootFlagName = "root"

func rootFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    rootFlagName,
		Aliases: []string{"r"},
		Usage:   "Read the GroupManager directory at `DIR` instead of the configured data store",
	}
}

// withStore returns an action that runs fn with the loaded data store.
func withStore(fn func(c *cli.Context, p *pex.PEX) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, log, err := setup(c)
		if err != nil {
			return err
		}
		if root := c.String(rootFlagName); root != "" {
			cfg.DefaultDataStore = groupmanager.DefaultIdentifier
			cfg.DataStores = map[string]pex.DataStore{
				groupmanager.DefaultIdentifier: {
					Type:    groupmanager.Type,
					Options: map[string]any{"groupManagerRoot": root},
				},
			}
		}
		c.Context = logr.NewContext(c.Context, log)
		p, err := pex.New(c.Context, pex.Options{Config: cfg, Logger: log})
		if err != nil {
			return cli.Exit(fmt.Errorf("error loading data store: %w", err), 1)
		}
		defer p.Close()
		return fn(c, p)
	}
}

func printLine(c *cli.Context, a ...any) {
	_, _ = fmt.Fprintln(c.App.Writer, a...)
}

func discoverCommand() *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "List data stores of other permission plugins that can be converted",
		Description: `Looks for data stores next to the configured base directory,
e.g. plugins/GroupManager for plugins/PermissionsEx, or checks --root.`,
		Flags: []cli.Flag{rootFlag()},
		Action: func(c *cli.Context) error {
			var results []datastore.ConversionResult
			if root := c.String(rootFlagName); root != "" {
				if r, ok := groupmanager.Discover(root); ok {
					results = append(results, r)
				}
			} else {
				cfg, _, err := setup(c)
				if err != nil {
					return err
				}
				results = datastore.ConversionOptions(cfg.BaseDirectory)
			}
			if len(results) == 0 {
				return cli.Exit("No data stores found to convert.", 1)
			}
			for _, r := range results {
				printLine(c, r.Description)
				if err := r.Store.Initialize(c.Context); err != nil {
					printLine(c, "  error:", err)
					continue
				}
				for _, typ := range r.Store.RegisteredTypes() {
					printLine(c, fmt.Sprintf("  %s: %d", typ, r.Store.AllIdentifiers(typ).Cardinality()))
				}
				_ = r.Store.Close()
			}
			return nil
		},
	}
}

func typesCommand() *cli.Command {
	return &cli.Command{
		Name:  "types",
		Usage: "List the subject types of the data store",
		Flags: []cli.Flag{rootFlag()},
		Action: withStore(func(c *cli.Context, p *pex.PEX) error {
			printLine(c, console.Ansi(platform.TypesInfo(p.Store())))
			return nil
		}),
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List the subjects of a type",
		ArgsUsage: "<type>",
		Flags:     []cli.Flag{rootFlag()},
		Action: withStore(func(c *cli.Context, p *pex.PEX) error {
			if c.NArg() != 1 {
				return cli.Exit("Usage: pex list <type>", 1)
			}
			typ := c.Args().First()
			if err := knownType(p.Store(), typ); err != nil {
				return err
			}
			printLine(c, console.Ansi(platform.ListInfo(p.Store(), typ)))
			return nil
		}),
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show the data of a subject",
		ArgsUsage: "<type> <identifier>",
		Flags:     []cli.Flag{rootFlag()},
		Action: withStore(func(c *cli.Context, p *pex.PEX) error {
			if c.NArg() != 2 {
				return cli.Exit("Usage: pex info <type> <identifier>", 1)
			}
			typ, id := c.Args().Get(0), c.Args().Get(1)
			if err := knownType(p.Store(), typ); err != nil {
				return err
			}
			if err := registered(p.Store(), typ, id); err != nil {
				return err
			}
			printLine(c, console.Ansi(platform.SubjectInfo(p.Store(), typ, id)))
			return nil
		}),
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Exit with status 1 if a subject has no data",
		ArgsUsage: "<type> <identifier>",
		Flags:     []cli.Flag{rootFlag()},
		Action: withStore(func(c *cli.Context, p *pex.PEX) error {
			if c.NArg() != 2 {
				return cli.Exit("Usage: pex check <type> <identifier>", 1)
			}
			if err := registered(p.Store(), c.Args().Get(0), c.Args().Get(1)); err != nil {
				return err
			}
			printLine(c, "registered")
			return nil
		}),
	}
}

func contextsCommand() *cli.Command {
	return &cli.Command{
		Name:  "contexts",
		Usage: "Show the context inheritance of the data store, e.g. world mirrors",
		Flags: []cli.Flag{rootFlag()},
		Action: withStore(func(c *cli.Context, p *pex.PEX) error {
			inh, err := p.Store().ContextInheritance()
			if err != nil {
				return cli.Exit(err, 1)
			}
			all := inh.AllParents()
			if len(all) == 0 {
				printLine(c, "No context inheritance.")
				return nil
			}
			lines := make([]string, 0, len(all))
			for child, parents := range all {
				names := make([]string, len(parents))
				for i, parent := range parents {
					names[i] = parent.String()
				}
				lines = append(lines, fmt.Sprintf("%s -> %s", child, strings.Join(names, ", ")))
			}
			slices.Sort(lines)
			for _, line := range lines {
				printLine(c, line)
			}
			return nil
		}),
	}
}

func knownType(s datastore.Store, typ string) error {
	types := s.RegisteredTypes()
	if slices.Contains(types, typ) {
		return nil
	}
	return cli.Exit(fmt.Sprintf("Unknown subject type %q, must be one of %s.", typ, strings.Join(types, ", ")), 1)
}

// registered returns an exit error naming similar identifiers
// if the subject is not registered.
func registered(s datastore.Store, typ, id string) error {
	ok, err := s.IsRegistered(typ, id)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if ok {
		return nil
	}
	msg := fmt.Sprintf("%s %q has no data.", typ, id)
	similar := suggest.Rank(id, mapset.Sorted(s.AllIdentifiers(typ)), 0.5)
	if len(similar) > maxDidYouMean {
		similar = similar[:maxDidYouMean]
	}
	if len(similar) != 0 {
		msg += " Did you mean " + strings.Join(similar, ", ") + "?"
	}
	return cli.Exit(msg, 1)
}
