// Package main provides charctl, the offline administration tool: content
// validation, catalog listing, sheet builds and account roles.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/charforge/internal/config"
	"github.com/cory-johannsen/charforge/internal/game/rules"
	"github.com/cory-johannsen/charforge/internal/game/ruleset"
	"github.com/cory-johannsen/charforge/internal/observability"
	"github.com/cory-johannsen/charforge/internal/scripting"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath  string
	contentRoot string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "charctl",
		Short:         "charforge administration tool",
		Long:          `charctl validates rules content, lists the catalog, builds sheets offline and manages account roles.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to configuration file (defaults and CHARFORGE_ environment when empty)")
	root.PersistentFlags().StringVar(&opts.contentRoot, "content", "", "content root; overrides content.root")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newContentCmd(opts),
		newRacesCmd(opts),
		newTraitsCmd(opts),
		newSheetCmd(opts),
		newAccountCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// load reads configuration, applying the --content override.
func (o *options) load() (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, err
	}
	v := config.NewViper()
	if o.configPath != "" {
		v.SetConfigFile(o.configPath)
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	if o.contentRoot != "" {
		v.Set("content.root", o.contentRoot)
	}
	return config.LoadFromViper(v)
}

// logger returns a console logger, at debug level with --verbose.
func (o *options) logger(cfg config.Config) (*zap.Logger, error) {
	lc := cfg.Logging
	lc.Format = "console"
	if o.verbose {
		lc.Level = "debug"
	} else {
		lc.Level = "warn"
	}
	return observability.NewLogger(lc, zap.String("tool", "charctl"))
}

// env is what content commands need.
type env struct {
	cfg    config.Config
	lib    *ruleset.Library
	runner *scripting.Runner
	engine *rules.Engine
	logger *zap.Logger
}

func (o *options) env() (*env, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	logger, err := o.logger(cfg)
	if err != nil {
		return nil, err
	}
	lib, err := ruleset.LoadLibrary(cfg.Content.Root)
	if err != nil {
		return nil, err
	}
	runner := scripting.NewRunner(cfg.Content.ScriptInstructionLimit, logger)
	return &env{
		cfg:    cfg,
		lib:    lib,
		runner: runner,
		engine: rules.NewEngine(lib, runner, logger),
		logger: logger,
	}, nil
}
