// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

// configSources returns the value sources for flag name: the FXCTL_<ENV>
// variable, then ns.name and name in the config file at path.
func configSources(ns, name, env, path string) cli.ValueSourceChain {
	chain := cli.NewValueSourceChain()
	if env != "" {
		chain.Chain = append(chain.Chain, cli.EnvVar(env))
	}
	if path != "" {
		chain.Chain = append(chain.Chain,
			yaml.YAML(ns+"."+name, altsrc.StringSourcer(path)),
			yaml.YAML(name, altsrc.StringSourcer(path)),
		)
	}
	return chain
}

// NewOutputFlags returns the flags shared by every command that renders rows.
// ns is the command name used to namespace config file keys.
func NewOutputFlags(ns, path string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: configSources(ns, "color", "", path),
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml)",
			Sources: configSources(ns, "output", "FXCTL_OUTPUT", path),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of columns to sort the results by",
			Sources: configSources(ns, "sort", "", path),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: configSources(ns, "titles", "", path),
			Value:   false,
		},
	}

	return
}

// NewPrecisionFlag controls the decimals shown for amounts in text output.
func NewPrecisionFlag(ns, path string) *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "precision",
		Aliases: []string{"p"},
		Usage:   "decimal places for amounts in text output",
		Sources: configSources(ns, "precision", "FXCTL_PRECISION", path),
		Value:   2,
		Validator: func(value int) error {
			return FlagValidators(value, PrecisionValidator)
		},
	}
}
