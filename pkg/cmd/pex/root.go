package pex

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/robinbraemer/event"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go.minekube.com/pex/pkg/pex"
	"go.minekube.com/pex/pkg/telemetry"
	"go.minekube.com/pex/pkg/util/interrupt"
	"go.minekube.com/pex/pkg/version"
)

// Execute runs App() and calls os.Exit when finished.
func Execute() {
	if err := App().Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func App() *cli.App {
	app := cli.NewApp()
	app.Name = "pex"
	app.Usage = "PermissionsEx data store tool."
	app.Description = `Reads the permission data of other permission plugins,
like GroupManager, and serves it the way PermissionsEx sees it.

Without a command the configured data store is loaded and,
if enabled, reloaded whenever its files change.

Visit the website https://minekube.com for more information.`

	// Use -V for version (Unix convention), -v is verbosity.
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
	app.Version = version.String()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage: `config file (default: ./pex.yml)
Supports: yaml/yml, json, toml, hcl, ini, prop/properties/props, env/dotenv`,
			EnvVars: []string{"PEX_CONFIG"},
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "Enable debug mode and highest log verbosity",
			EnvVars: []string{"PEX_DEBUG"},
		},
		&cli.IntFlag{
			Name:    "verbosity",
			Aliases: []string{"v"},
			Usage:   "The higher the verbosity the more logs are shown",
			EnvVars: []string{"PEX_VERBOSITY"},
		},
	}
	app.Commands = []*cli.Command{
		configCommand(),
		discoverCommand(),
		typesCommand(),
		listCommand(),
		infoCommand(),
		checkCommand(),
		contextsCommand(),
		dumpCommand(),
		versionCommand(),
	}
	app.Action = func(c *cli.Context) error {
		cfg, log, err := setup(c)
		if err != nil {
			return err
		}

		ctx, stop := interrupt.Context(c.Context)
		defer stop()
		ctx = logr.NewContext(ctx, log)

		cleanup, err := telemetry.Init(ctx, cfg)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer cleanup()

		mgr := event.New(event.WithLogger(log.WithName("event")))
		if cfg.Telemetry.Enabled {
			unsubscribe, err := telemetry.Instrument(telemetry.Options{Event: mgr})
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer unsubscribe()
		}

		p, err := pex.New(ctx, pex.Options{Config: cfg, Logger: log, Event: mgr})
		if err != nil {
			return cli.Exit(fmt.Errorf("error loading data store: %w", err), 1)
		}
		defer p.Close()

		if err = p.Watch(ctx); err != nil {
			return cli.Exit(err, 1)
		}
		log.Info("data store ready", "store", p.Store().Name(), "watch", cfg.Watch.Enabled)
		<-ctx.Done()
		log.Info("shutting down")
		return nil
	}
	return app
}

// setup loads and validates the config and creates the logger
// according to the global flags.
func setup(c *cli.Context) (*pex.Config, logr.Logger, error) {
	v, err := initViper(c)
	if err != nil {
		return nil, logr.Discard(), cli.Exit(err, 1)
	}
	cfg, err := pex.LoadConfig(v)
	if err != nil {
		return nil, logr.Discard(), cli.Exit(err, 1)
	}

	// Flags overwrite config
	debug := c.Bool("debug") || cfg.Debug
	cfg.Debug = debug
	verbosity := c.Int("verbosity")
	if !c.IsSet("verbosity") && debug {
		verbosity = math.MaxInt8
	}

	log, err := newLogger(debug, verbosity)
	if err != nil {
		return nil, logr.Discard(), cli.Exit(fmt.Errorf("error creating zap logger: %w", err), 1)
	}
	log.V(1).Info("using config file", "config", v.ConfigFileUsed())

	if err = cfg.Valid(log); err != nil {
		return nil, log, cli.Exit(err, 1)
	}
	return cfg, log, nil
}

func initViper(c *cli.Context) (*viper.Viper, error) {
	v := viper.New()
	if c.IsSet("config") {
		v.SetConfigFile(c.String("config"))
	} else {
		v.SetConfigName("pex")
		v.AddConfigPath(".")
	}
	// Load Environment Variables
	v.SetEnvPrefix("PEX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return v, fmt.Errorf("error reading config file %q: %w", v.ConfigFileUsed(), err)
		}
	}
	return v, nil
}

// newLogger returns a new zap logger with a modified production
// or development default config to ensure human readability.
func newLogger(debug bool, v int) (l logr.Logger, err error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-v))
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}
