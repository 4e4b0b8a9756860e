// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/fxctl/internal/app"
	"github.com/staranto/fxctl/internal/config"
	"github.com/staranto/fxctl/internal/meta"
)

// InitApp loads config, builds the shared App and returns the root command.
// A missing config file is not an error; every setting has a default.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	return InitAppWith(ctx, args, nil)
}

// InitAppWith is InitApp with a prebuilt App. A nil a builds one from the
// loaded config.
func InitAppWith(ctx context.Context, args []string, a *app.App) (*cli.Command, error) {
	// The arg[1] immediately following the binary (arg[0]) is the fxctl
	// subcommand and also represents the namespace key to be used when retrieving
	// config values. arg[1] could be -h/--help, so ignore it if it appears to be
	// a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	if _, err := config.Load(); err != nil {
		log.Debugf("running without config file: %v", err)
	}
	config.Config.Namespace = ns

	if a == nil {
		a = app.New(app.SettingsFromConfig())
	}

	meta := meta.Meta{
		Args:    args,
		Config:  config.Config,
		Context: ctx,
		App:     a,
	}

	root := &cli.Command{
		Name:  "fxctl",
		Usage: "Currency conversion with a shared rate cache",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "fxctl version info",
				HideDefault: true,
			},
		},
	}

	root.Commands = append(root.Commands,
		GreetCommandBuilder(root, meta),
		CurrenciesCommandBuilder(root, meta),
		ConvertCommandBuilder(root, meta),
		BatchCommandBuilder(root, meta),
		CompletionCommandBuilder(root, meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range root.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return root, nil
}
