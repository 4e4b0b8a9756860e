// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/fxctl/internal/meta"
	"github.com/staranto/fxctl/internal/output"
)

var currencyColumns = []string{"code", "name"}

// CurrenciesCommandAction lists the currency catalog. Rows are sorted by code
// unless --sort says otherwise.
func CurrenciesCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	names := m.App.GetCurrencies()
	rows := make([]map[string]interface{}, 0, len(names))
	for code, name := range names {
		rows = append(rows, map[string]interface{}{
			"code": code,
			"name": name,
		})
	}

	opts := OutputOptions(cmd)
	if opts.Sort == "" {
		opts.Sort = "code"
	}
	log.Debugf("currencies: %d rows, opts: %+v", len(rows), opts)

	return output.SliceDiceSpit(rows, currencyColumns, opts, Writer(cmd))
}

// CurrenciesCommandBuilder constructs the "currencies" command, also
// available as "cq".
func CurrenciesCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "currencies",
		Aliases:   []string{"cq"},
		Usage:     "list supported currencies",
		UsageText: "fxctl currencies [options]",
		Output:    true,
		Action:    CurrenciesCommandAction,
		Meta:      meta,
	}).Build()
}
