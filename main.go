// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/fxctl/internal/command"
	"github.com/staranto/fxctl/internal/config"
	mylog "github.com/staranto/fxctl/internal/log"
	"github.com/staranto/fxctl/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, expandArgSets(args)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// expandArgSets splices a named argument set from the config file in right
// after the command. "@name" selects <command>.name; without one,
// <command>.defaults is used if present. Each set entry is split on spaces.
func expandArgSets(args []string) []string {
	if len(args) < 2 || strings.HasPrefix(args[1], "-") {
		return args
	}

	// We know the first two args are going to be the executable and command.
	out := make([]string, 2, len(args))
	copy(out, args[:2])

	set := "defaults"
	var rest []string
	for _, a := range args[2:] {
		if a == "--help" || a == "-h" {
			return append(out, "--help")
		}
		if len(a) > 1 && strings.HasPrefix(a, "@") && set == "defaults" {
			set = a[1:]
			continue
		}
		rest = append(rest, a)
	}

	setArgs, _ := config.GetStringSlice(args[1] + "." + set)
	for _, arg := range setArgs {
		out = append(out, strings.Fields(arg)...)
	}
	out = append(out, rest...)

	log.Debugf("set=%s, args=%v", set, out)
	return out
}
