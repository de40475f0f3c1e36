package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/arjunmahishi/tsls/analyze"
	"github.com/arjunmahishi/tsls/config"
	"github.com/arjunmahishi/tsls/document"
	"github.com/arjunmahishi/tsls/lsp"
	"github.com/arjunmahishi/tsls/output"
	"github.com/arjunmahishi/tsls/span"
	"github.com/arjunmahishi/tsls/types"
	"github.com/arjunmahishi/tsls/watch"
)

// errCheckFailed makes the process exit non-zero after check has already
// printed its report.
var errCheckFailed = errors.New("check found errors")

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the language server on stdin/stdout",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.logger.Sync() //nolint:errcheck

			srv := lsp.NewServer(e.language, e.def, lsp.Options{
				Logger:         e.logger,
				MaxDiagnostics: e.cfg.MaxDiagnostics,
				Version:        version,
			})
			return srv.Serve(ctx, lsp.Stdio())
		},
	}
}

func astCommand() *cli.Command {
	return &cli.Command{
		Name:  "ast",
		Usage: "print the translated tree of a file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "file to translate (required)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print JSON instead of the tree dump",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			res, err := analyze.AST(ctx, analyze.ASTOptions{
				Language:   e.language.Name(),
				Definition: e.def,
				File:       cmd.String("file"),
				Logger:     e.logger,
			})
			if err != nil {
				return err
			}
			if cmd.Bool("json") {
				return output.JSON(os.Stdout, res, false)
			}
			fmt.Println(res.Tree)
			return nil
		},
	}
}

func symbolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "symbols",
		Usage: "list declared symbols",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Value: ".",
				Usage: "root path to scan",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "single file to analyze",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "filter: type, constant, variable, function",
			},
			&cli.BoolFlag{
				Name:  "top-level",
				Usage: "only symbols of the root scope",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "minimize output",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "number of parallel workers",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			results, err := analyze.Symbols(ctx, analyze.SymbolsOptions{
				Language:   e.language.Name(),
				Definition: e.def,
				Path:       cmd.String("path"),
				File:       cmd.String("file"),
				TopLevel:   cmd.Bool("top-level"),
				Category:   cmd.String("category"),
				Jobs:       jobs(cmd, e.cfg),
				MaxBytes:   e.cfg.MaxBytes,
				Logger:     e.logger,
			})
			if err != nil {
				return err
			}
			return output.JSON(os.Stdout, results, cmd.Bool("compact"))
		},
	}
}

func scopeCommand() *cli.Command {
	return &cli.Command{
		Name:  "scope",
		Usage: "show the scope chain and visible symbols at a position",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "file to analyze (required)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "pos",
				Usage:    "one-based line:column (required)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "resolve this name at the position",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "minimize output",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			pos, err := span.ParsePos(cmd.String("pos"))
			if err != nil {
				return err
			}
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			res, err := analyze.Scope(ctx, analyze.ScopeOptions{
				Language:   e.language.Name(),
				Definition: e.def,
				File:       cmd.String("file"),
				Position:   pos,
				Name:       cmd.String("name"),
				Logger:     e.logger,
			})
			if err != nil {
				return err
			}
			return output.JSON(os.Stdout, res, cmd.Bool("compact"))
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "report syntax, rule and symbol diagnostics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Value: ".",
				Usage: "root path to scan",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "single file to check",
			},
			&cli.BoolFlag{
				Name:  "quick",
				Usage: "only syntax and rule shape diagnostics",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print JSON reports",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "number of parallel workers",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			reports, err := analyze.Check(ctx, analyze.CheckOptions{
				Language:       e.language.Name(),
				Definition:     e.def,
				Path:           cmd.String("path"),
				File:           cmd.String("file"),
				Quick:          cmd.Bool("quick"),
				MaxDiagnostics: e.cfg.MaxDiagnostics,
				Jobs:           jobs(cmd, e.cfg),
				MaxBytes:       e.cfg.MaxBytes,
				Logger:         e.logger,
			})
			if err != nil {
				return err
			}

			if cmd.Bool("json") {
				err = output.JSON(os.Stdout, reports, false)
			} else {
				err = output.Reports(os.Stdout, reports)
			}
			if err != nil {
				return err
			}
			if analyze.HasErrors(reports) {
				return errCheckFailed
			}
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "re-check a file every time it changes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "file to watch (required)",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			file := cmd.String("file")
			return watch.Run(ctx, file, e.language, e.def, watch.Options{
				Logger:         e.logger,
				MaxDiagnostics: e.cfg.MaxDiagnostics,
			}, func(snap *document.Snapshot) {
				report := types.FileReport{File: file}
				for _, d := range snap.FullDiagnostics() {
					report.Diagnostics = append(report.Diagnostics, types.Diagnostic{
						Severity: d.Severity.String(),
						Code:     d.Code.String(),
						Message:  d.Message,
						Range:    types.FromRange(d.Range),
					})
				}
				if err := output.Reports(os.Stdout, []types.FileReport{report}); err != nil {
					output.WriteError(err)
				}
			})
		},
	}
}

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "print the built-in rule set of the language",
		Description: "Print the rule-set document tsls uses when --rules is not given.\n" +
			"Use it as a starting point for a custom rule set.\n\n" +
			"Examples:\n" +
			"  tsls rules                  # print the Go rules\n" +
			"  tsls rules > my-rules.yaml  # save to file",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := config.Discover(cmd.String("config"))
			if err != nil {
				return err
			}
			if cmd.IsSet("language") {
				cfg.Language = cmd.String("language")
			}
			language, err := cfg.ResolveLanguage()
			if err != nil {
				return err
			}
			fmt.Print(language.Rules())
			return nil
		},
	}
}

// jobs returns the --jobs flag when given, the configured value otherwise.
func jobs(cmd *cli.Command, cfg config.Config) int {
	if cmd.IsSet("jobs") {
		return cmd.Int("jobs")
	}
	return cfg.Jobs
}
