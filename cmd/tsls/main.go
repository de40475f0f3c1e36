package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/arjunmahishi/tsls/config"
	"github.com/arjunmahishi/tsls/cst"
	_ "github.com/arjunmahishi/tsls/lang" // Register languages
	"github.com/arjunmahishi/tsls/langdef"
	"github.com/arjunmahishi/tsls/output"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.Command{
		Name:    "tsls",
		Usage:   "rule-driven tree-sitter language server",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "settings file (default: nearest " + config.FileName + ")",
			},
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "language to analyse",
			},
			&cli.StringFlag{
				Name:  "rules",
				Usage: "rule-set document replacing the built-in one",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			astCommand(),
			symbolsCommand(),
			scopeCommand(),
			checkCommand(),
			watchCommand(),
			rulesCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		if !errors.Is(err, errCheckFailed) {
			output.WriteError(err)
		}
		os.Exit(1)
	}
}

// env is the state every subcommand starts from.
type env struct {
	cfg      config.Config
	logger   *zap.Logger
	language cst.Language
	def      *langdef.Definition
}

// setup merges flags over the settings file, builds the logger and loads
// the process-wide language definition. A rule set that fails to load is
// fatal.
func setup(cmd *cli.Command) (*env, error) {
	cfg, err := config.Discover(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if cmd.IsSet("language") {
		cfg.Language = cmd.String("language")
	}
	if cmd.IsSet("rules") {
		cfg.Rules = cmd.String("rules")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := config.NewLogger(cfg.LogLevel, false)
	if err != nil {
		return nil, err
	}
	language, err := cfg.ResolveLanguage()
	if err != nil {
		return nil, err
	}
	text, err := cfg.RuleSet(language)
	if err != nil {
		return nil, err
	}
	if err := langdef.Load(text); err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	logger.Debug("loaded language definition",
		zap.String("language", language.Name()),
		zap.String("rules", cfg.Rules))

	return &env{
		cfg:      cfg,
		logger:   logger,
		language: language,
		def:      langdef.Get(),
	}, nil
}
