// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/fxctl/internal/meta"
)

// GreetCommandAction prints the greeting for the NAME argument.
func GreetCommandAction(ctx context.Context, cmd *cli.Command) error {
	name := strings.Join(cmd.Args().Slice(), " ")
	if name == "" {
		return errors.New("greet requires a NAME")
	}
	_, err := fmt.Fprintln(Writer(cmd), GetMeta(cmd).App.Greet(name))
	return err
}

func GreetCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "greet",
		Usage:     "print a greeting",
		UsageText: "fxctl greet NAME",
		Action:    GreetCommandAction,
		Meta:      meta,
	}).Build()
}
