// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/fxctl/internal/meta"
	"github.com/staranto/fxctl/internal/output"
)

var batchColumns = []string{"line", "base", "target", "amount", "result", "error"}

// Request is one parsed batch line. Err holds a parse failure; such requests
// are reported but never converted.
type Request struct {
	Line   int
	Base   string
	Target string
	Amount float64
	Err    error
}

// ReadRequests parses "BASE TARGET AMOUNT" lines. Blank lines and lines
// starting with '#' are skipped.
func ReadRequests(r io.Reader) ([]Request, error) {
	var reqs []Request

	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		req := Request{Line: n}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			req.Err = fmt.Errorf("expected BASE TARGET AMOUNT, got %q", line)
		} else {
			req.Base, req.Target, req.Amount, req.Err = ParseConversion(fields[0], fields[1], fields[2])
		}
		reqs = append(reqs, req)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read requests: %w", err)
	}

	return reqs, nil
}

// converter is the part of app.App the batch runner needs.
type converter interface {
	ConvertCurrency(ctx context.Context, base, target string, amount float64) (float64, error)
}

// RunBatch converts every request with at most workers conversions in
// flight. One row per request is returned in input order; a failed
// conversion fills the row's error and does not stop the others. Once ctx
// is done the remaining requests are marked failed without being tried and
// ctx's error is returned.
func RunBatch(ctx context.Context, conv converter, reqs []Request, workers int) ([]map[string]interface{}, int, error) {
	rows := make([]map[string]interface{}, len(reqs))
	failed := make([]bool, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i, req := range reqs {
		row := map[string]interface{}{
			"line":   req.Line,
			"base":   req.Base,
			"target": req.Target,
			"amount": req.Amount,
			"result": nil,
			"error":  nil,
		}
		rows[i] = row

		if req.Err != nil {
			row["error"] = req.Err.Error()
			failed[i] = true
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				row["error"] = err.Error()
				failed[i] = true
				return err
			}
			v, err := conv.ConvertCurrency(gctx, req.Base, req.Target, req.Amount)
			if err != nil {
				row["error"] = err.Error()
				failed[i] = true
				return ctx.Err()
			}
			row["result"] = v
			return nil
		})
	}
	err := g.Wait()

	nFailed := 0
	for _, f := range failed {
		if f {
			nFailed++
		}
	}
	return rows, nFailed, err
}

// BatchCommandAction reads requests from FILE (or stdin when FILE is absent
// or "-") and converts them concurrently through the shared cache.
func BatchCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	var in io.Reader = os.Stdin
	if root := cmd.Root(); root != nil && root.Reader != nil {
		in = root.Reader
	}
	if path := cmd.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open batch file: %w", err)
		}
		defer f.Close()
		in = f
	}

	reqs, err := ReadRequests(in)
	if err != nil {
		return err
	}

	workers := cmd.Int("workers")
	log.WithFields(log.Fields{"requests": len(reqs), "workers": workers}).Debug("batch start")

	rows, failed, runErr := RunBatch(ctx, m.App, reqs, workers)

	opts := OutputOptions(cmd)
	if err := output.SliceDiceSpit(rows, batchColumns, opts, Writer(cmd)); err != nil {
		return err
	}

	if cmd.Bool("stats") {
		st := m.App.CacheStats()
		fmt.Fprintf(ErrWriter(cmd), "cache: entries=%d hits=%d misses=%d sets=%d swept=%d\n",
			st.Entries, st.Hits, st.Misses, st.Sets, st.Swept)
	}

	if runErr != nil {
		return fmt.Errorf("batch interrupted: %w", runErr)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(reqs))
	}
	return nil
}

// BatchCommandBuilder constructs the "batch" command.
func BatchCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	src := meta.Config.Source
	return (&CommandBuilder{
		Name:      "batch",
		Usage:     "run many conversions concurrently",
		UsageText: "fxctl batch [FILE|-] [options]",
		Flags: []cli.Flag{
			NewPrecisionFlag("batch", src),
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "maximum concurrent conversions",
				Sources: configSources("batch", "workers", "FXCTL_WORKERS", src),
				Value:   4,
			},
			&cli.BoolFlag{
				Name:        "stats",
				Usage:       "print cache statistics to stderr",
				HideDefault: true,
			},
		},
		Output: true,
		Action: BatchCommandAction,
		Meta:   meta,
	}).Build()
}
