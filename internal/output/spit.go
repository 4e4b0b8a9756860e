// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v2"

	"github.com/staranto/fxctl/internal/config"
	"github.com/staranto/fxctl/internal/filters"
)

// Formats accepted by --output.
var Formats = []string{"text", "json", "yaml"}

// Options controls how a result set is rendered.
type Options struct {
	Format string
	Filter string
	Sort   string
	Titles bool
	Color  bool
	// Precision is the number of decimals for float cells in text output.
	Precision int
}

// SliceDiceSpit filters, sorts and renders rows. columns fixes the column
// order for text output and the key set for json/yaml.
func SliceDiceSpit(rows []map[string]interface{}, columns []string, opts Options, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	rows = filters.FilterRows(rows, opts.Filter)
	SortDataset(rows, opts.Sort)
	rows = project(rows, columns)

	switch opts.Format {
	case "json":
		if rows == nil {
			rows = []map[string]interface{}{}
		}
		out, err := json.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		out, err := yaml.Marshal(toMapSlices(rows, columns))
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		TableWriter(rows, columns, opts, w)
		return nil
	}
}

// TableWriter renders rows as a borderless table, one line per row. Floats
// are shown with opts.Precision decimals and nil cells as "-".
func TableWriter(rows []map[string]interface{}, columns []string, opts Options, w io.Writer) {
	if len(rows) == 0 {
		return
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(columns))
		for j, col := range columns {
			cells[i][j] = formatCell(row[col], opts.Precision)
		}
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		StyleFunc(newStyler(opts.Color)).
		Rows(cells...)

	if opts.Titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(columns...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// newStyler returns the table StyleFunc: left aligned cells, "padding"
// spaces between columns and, when color is set, the colors.* palette for
// the header and alternating rows.
func newStyler(color bool) func(row, col int) lipgloss.Style {
	base := lipgloss.NewStyle().Align(lipgloss.Left)
	header, even, odd := base, base, base

	if color {
		h, e, o := getColors("colors")
		header = header.Foreground(lipgloss.Color(h))
		even = even.Foreground(lipgloss.Color(e))
		odd = odd.Foreground(lipgloss.Color(o))
	}

	pad, _ := config.GetInt("padding", 2)
	log.Debugf("table padding: %d, color: %t", pad, color)

	return func(row, col int) lipgloss.Style {
		style := odd
		switch {
		case row == table.HeaderRow:
			style = header
		case row%2 == 0:
			style = even
		}
		if col > 0 {
			style = style.PaddingLeft(pad)
		}
		return style
	}
}

// FormatAmount renders v with thousands separators and exactly precision
// decimals.
func FormatAmount(v float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	return humanize.FormatFloat("#,###."+strings.Repeat("#", precision), v)
}

// formatCell renders floats as amounts and everything else via
// InterfaceToString.
func formatCell(value interface{}, precision int) string {
	if f, ok := value.(float64); ok {
		return FormatAmount(f, precision)
	}
	return InterfaceToString(value, "-")
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

// project keeps only columns in each row. A nil columns keeps everything.
func project(rows []map[string]interface{}, columns []string) []map[string]interface{} {
	if columns == nil {
		return rows
	}
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		p := make(map[string]interface{}, len(columns))
		for _, col := range columns {
			if v, ok := row[col]; ok {
				p[col] = v
			}
		}
		out = append(out, p)
	}
	return out
}

// toMapSlices keeps the column order in yaml output.
func toMapSlices(rows []map[string]interface{}, columns []string) []yaml.MapSlice {
	out := make([]yaml.MapSlice, 0, len(rows))
	for _, row := range rows {
		ms := make(yaml.MapSlice, 0, len(columns))
		for _, col := range columns {
			if v, ok := row[col]; ok {
				ms = append(ms, yaml.MapItem{Key: col, Value: v})
			}
		}
		out = append(out, ms)
	}
	return out
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
