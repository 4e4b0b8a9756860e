// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/staranto/fxctl/internal/meta"
	"github.com/staranto/fxctl/internal/output"
)

// Conversion is the json/yaml form of a convert result.
type Conversion struct {
	Base   string  `json:"base" yaml:"base"`
	Target string  `json:"target" yaml:"target"`
	Amount float64 `json:"amount" yaml:"amount"`
	Result float64 `json:"result" yaml:"result"`
}

// ConvertCommandAction converts AMOUNT from BASE to TARGET and prints the
// result.
func ConvertCommandAction(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() != 3 {
		return fmt.Errorf("convert requires BASE TARGET AMOUNT, got %d argument(s)", args.Len())
	}

	base, target, amount, err := ParseConversion(args.Get(0), args.Get(1), args.Get(2))
	if err != nil {
		return err
	}

	result, err := GetMeta(cmd).App.ConvertCurrency(ctx, base, target, amount)
	if err != nil {
		return err
	}

	w := Writer(cmd)
	c := Conversion{Base: base, Target: target, Amount: amount, Result: result}

	switch opts := OutputOptions(cmd); opts.Format {
	case "json":
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		b, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		_, err = fmt.Fprintln(w, output.FormatAmount(result, opts.Precision))
		return err
	}
}

// ConvertCommandBuilder constructs the "convert" command.
func ConvertCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	src := meta.Config.Source
	return (&CommandBuilder{
		Name:      "convert",
		Usage:     "convert an amount between currencies",
		UsageText: "fxctl convert BASE TARGET AMOUNT [options]",
		Flags: []cli.Flag{
			NewPrecisionFlag("convert", src),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format (text, json, yaml)",
				Sources: configSources("convert", "output", "FXCTL_OUTPUT", src),
				Value:   "text",
				Validator: func(value string) error {
					return FlagValidators(value, OutputValidator)
				},
			},
		},
		Action: ConvertCommandAction,
		Meta:   meta,
	}).Build()
}
