// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/fxctl/internal/meta"
	"github.com/staranto/fxctl/internal/output"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// Writer returns where command output goes: the root command's Writer, or
// stdout.
func Writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// ErrWriter is Writer for diagnostics.
func ErrWriter(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.ErrWriter != nil {
		return root.ErrWriter
	}
	return os.Stderr
}

// OutputOptions collects the rendering flags of cmd.
func OutputOptions(cmd *cli.Command) output.Options {
	opts := output.Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
	}
	if hasFlag(cmd, "precision") {
		opts.Precision = cmd.Int("precision")
	}
	return opts
}

func hasFlag(cmd *cli.Command, name string) bool {
	for _, f := range cmd.Flags {
		for _, n := range f.Names() {
			if n == name {
				return true
			}
		}
	}
	return false
}

// ParseConversion validates BASE TARGET AMOUNT arguments. Codes are
// upper-cased.
func ParseConversion(base, target, amount string) (string, string, float64, error) {
	b, err := NormalizeCode(base)
	if err != nil {
		return "", "", 0, err
	}
	t, err := NormalizeCode(target)
	if err != nil {
		return "", "", 0, err
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil || math.IsNaN(a) || math.IsInf(a, 0) {
		return "", "", 0, fmt.Errorf("invalid amount %q", amount)
	}
	return b, t, a, nil
}

// CommandBuilder constructs a cli.Command with metadata wired in and, when
// Output is set, the shared output flags appended.
type CommandBuilder struct {
	Name      string
	Aliases   []string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Output    bool
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (b *CommandBuilder) Build() *cli.Command {
	flags := b.Flags
	if b.Output {
		flags = append(flags, NewOutputFlags(b.Name, b.Meta.Config.Source)...)
	}

	return &cli.Command{
		Name:      b.Name,
		Aliases:   b.Aliases,
		Usage:     b.Usage,
		UsageText: b.UsageText,
		Metadata: map[string]any{
			"meta": b.Meta,
		},
		Flags:  flags,
		Action: b.Action,
	}
}
