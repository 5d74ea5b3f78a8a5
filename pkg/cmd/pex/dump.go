package pex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/robinbraemer/event"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"go.minekube.com/pex/pkg/datastore"
	"go.minekube.com/pex/pkg/pex"
	"go.minekube.com/pex/pkg/subject"
	"go.minekube.com/pex/pkg/util/interrupt"
)

// dump is the serialized content of a data store.
type dump struct {
	Store              string                              `json:"store" yaml:"store"`
	Subjects           map[string]map[string]*subject.Data `json:"subjects" yaml:"subjects"`
	ContextInheritance map[string][]string                 `json:"contextInheritance,omitempty" yaml:"contextInheritance,omitempty"`
}

func dumpOf(s datastore.Store) (*dump, error) {
	d := &dump{Store: s.Name(), Subjects: map[string]map[string]*subject.Data{}}
	for ref, data := range s.All() {
		byID, ok := d.Subjects[ref.Type]
		if !ok {
			byID = map[string]*subject.Data{}
			d.Subjects[ref.Type] = byID
		}
		byID[ref.Identifier] = data
	}
	inh, err := s.ContextInheritance()
	if err != nil {
		return nil, err
	}
	for child, parents := range inh.AllParents() {
		if d.ContextInheritance == nil {
			d.ContextInheritance = map[string][]string{}
		}
		for _, parent := range parents {
			d.ContextInheritance[child.String()] = append(d.ContextInheritance[child.String()], parent.String())
		}
	}
	return d, nil
}

func (d *dump) encode(format string) ([]byte, error) {
	switch format {
	case "json":
		b, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml", "yml":
		buf := new(bytes.Buffer)
		enc := yaml.NewEncoder(buf)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown format %q, must be one of yaml, json", format)
}

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Write all subject data of the data store",
		Description: `Writes every subject with its data, and the context inheritance,
as PermissionsEx sees it.

	pex dump --format json --output pex.json
	pex dump --watch                 # Writes again whenever the files change`,
		Flags: []cli.Flag{
			rootFlag(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: yaml or json",
				Value:   "yaml",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to `FILE` instead of stdout",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Keep running and write again after the data store was reloaded",
			},
		},
		Action: withStore(func(c *cli.Context, p *pex.PEX) error {
			format, output := c.String("format"), c.String("output")
			write := func(s datastore.Store) error {
				d, err := dumpOf(s)
				if err != nil {
					return err
				}
				b, err := d.encode(format)
				if err != nil {
					return err
				}
				if output != "" {
					return os.WriteFile(output, b, 0644)
				}
				_, err = io.Copy(c.App.Writer, bytes.NewReader(b))
				return err
			}
			if err := write(p.Store()); err != nil {
				return cli.Exit(fmt.Errorf("error writing dump: %w", err), 1)
			}
			if !c.Bool("watch") {
				return nil
			}

			ctx, stop := interrupt.Context(c.Context)
			defer stop()
			log := logr.FromContextOrDiscard(c.Context)
			defer event.Subscribe(p.Event(), 0, func(e *pex.StoreReloadedEvent) {
				if err := write(e.Current); err != nil {
					log.Error(err, "error writing dump")
				}
			})()

			p.Config().Watch.Enabled = true
			if err := p.Watch(ctx); err != nil {
				return cli.Exit(err, 1)
			}
			<-ctx.Done()
			return nil
		}),
	}
}
