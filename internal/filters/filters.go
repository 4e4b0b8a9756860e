// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package filters applies --filter expressions to output rows.
//
// An expression is KEY OP TARGET where OP is one of
//
//	=  equal            ^  has prefix
//	~  contains (any case)  @  contains
//	<  less than        >  greater than
//	/  regular expression
//
// and may be prefixed with '!' to negate it. Numbers compare numerically
// for =, < and >; everything else compares as text.
package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/apex/log"
)

var exprRe = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is one parsed expression.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

var textOps = map[string]func(value, target string) bool{
	"=": func(v, t string) bool { return v == t },
	"^": strings.HasPrefix,
	"@": strings.Contains,
	"~": func(v, t string) bool { return strings.Contains(strings.ToLower(v), strings.ToLower(t)) },
	"<": func(v, t string) bool { return v < t },
	">": func(v, t string) bool { return v > t },
}

var numberOps = map[string]func(value, target float64) bool{
	"=": func(v, t float64) bool { return v == t },
	"<": func(v, t float64) bool { return v < t },
	">": func(v, t float64) bool { return v > t },
}

// regexps caches compiled "/" targets, errors included, so rows of one
// result set pay for a pattern once.
var regexps sync.Map

type compiled struct {
	re  *regexp.Regexp
	err error
}

func compile(pattern string) (*regexp.Regexp, error) {
	if c, ok := regexps.Load(pattern); ok {
		return c.(compiled).re, c.(compiled).err
	}
	re, err := regexp.Compile(pattern)
	regexps.Store(pattern, compiled{re, err})
	return re, err
}

// Parse reads a single expression.
func Parse(expr string) (Filter, error) {
	m := exprRe.FindStringSubmatch(expr)
	if m == nil || m[1] == "" {
		return Filter{}, fmt.Errorf("invalid filter: %s", expr)
	}
	return Filter{
		Key:     m[1],
		Negate:  strings.HasPrefix(m[2], "!"),
		Operand: strings.TrimPrefix(m[2], "!"),
		Target:  m[3],
	}, nil
}

// BuildFilters splits spec on "," (or FXCTL_FILTER_DELIM) and parses each
// expression. Bad expressions are logged and dropped.
func BuildFilters(spec string) []Filter {
	if spec == "" {
		return nil
	}

	sep := ","
	if d := os.Getenv("FXCTL_FILTER_DELIM"); d != "" {
		sep = d
	}

	var out []Filter
	for _, expr := range strings.Split(spec, sep) {
		f, err := Parse(expr)
		if err != nil {
			log.Error(err.Error())
			continue
		}
		out = append(out, f)
	}
	return out
}

// Match reports whether value satisfies f. nil never matches, negated or not.
func (f Filter) Match(value interface{}) bool {
	var ok bool
	switch v := value.(type) {
	case nil:
		return false
	case string:
		ok = f.matchText(v)
	case bool:
		ok = f.matchText(strconv.FormatBool(v))
	case float64:
		ok = f.matchNumber(v)
	case float32:
		ok = f.matchNumber(float64(v))
	case int:
		ok = f.matchNumber(float64(v))
	case int64:
		ok = f.matchNumber(float64(v))
	default:
		log.Errorf("cannot filter on %T", value)
		return false
	}
	return ok != f.Negate
}

// matchText and matchNumber return the un-negated result. An unknown
// operand or bad target yields f.Negate, so Match reports false either way.
func (f Filter) matchText(v string) bool {
	if f.Operand == "/" {
		re, err := compile(f.Target)
		if err != nil {
			log.WithError(err).Errorf("bad filter regex %q", f.Target)
			return f.Negate
		}
		return re.MatchString(v)
	}

	op, ok := textOps[f.Operand]
	if !ok {
		log.Errorf("unsupported filter operand %q", f.Operand)
		return f.Negate
	}
	return op(v, f.Target)
}

func (f Filter) matchNumber(v float64) bool {
	op, ok := numberOps[f.Operand]
	if !ok {
		log.Errorf("unsupported numeric filter operand %q", f.Operand)
		return f.Negate
	}
	t, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64)
	if err != nil {
		log.Errorf("filter target %q is not a number", f.Target)
		return f.Negate
	}
	return op(v, t)
}

// FilterRows keeps the rows matching every filter in spec, in order. A
// filter naming a column no row has is reported and ignored.
func FilterRows(rows []map[string]interface{}, spec string) []map[string]interface{} {
	filters := usable(rows, BuildFilters(spec))
	if len(filters) == 0 {
		return rows
	}

	var kept []map[string]interface{}
	for _, row := range rows {
		if all(row, filters) {
			kept = append(kept, row)
		}
	}
	return kept
}

func all(row map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		if !f.Match(row[f.Key]) {
			return false
		}
	}
	return true
}

// usable drops filters whose key appears in none of rows.
func usable(rows []map[string]interface{}, filters []Filter) []Filter {
	if len(rows) == 0 || len(filters) == 0 {
		return filters
	}

	var out []Filter
	for _, f := range filters {
		if hasKey(rows, f.Key) {
			out = append(out, f)
			continue
		}
		log.Warnf("filter key not found: %s", f.Key)
		fmt.Fprintf(os.Stderr, "warning: filter key not found: %s\n", f.Key)
	}
	return out
}

func hasKey(rows []map[string]interface{}, key string) bool {
	for _, row := range rows {
		if _, ok := row[key]; ok {
			return true
		}
	}
	return false
}
