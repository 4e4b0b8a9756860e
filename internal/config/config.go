// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

// Package config loads fxctl.yaml and answers dotted-path lookups such as
// "cache.ttl". When Namespace is set, "<namespace>.<key>" shadows "<key>".
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked for in the standard locations.
const FileName = "fxctl.yaml"

type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

// Config is the process-wide configuration. It is empty until Load
// succeeds, and every getter then falls back to its default.
var Config Type

// Load reads the config file and makes it the package Config. With no
// argument the file is discovered; an explicit path skips discovery. A
// missing file is an error, but callers typically ignore it and run on
// defaults.
func Load(path ...string) (Type, error) {
	Config = Type{}

	var file string
	if len(path) > 0 && path[0] != "" {
		file = path[0]
	} else {
		found, err := discover()
		if err != nil {
			return Type{}, err
		}
		file = found
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return Type{}, fmt.Errorf("config file not found: %w", err)
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Type{}, fmt.Errorf("failed to parse %s: %w", file, err)
	}

	Config = Type{Source: file, Data: data}
	return Config, nil
}

// discover returns FXCTL_CFG if set, otherwise the first fxctl.yaml found in
// XDG_CONFIG_HOME, APPDATA or HOME.
func discover() (string, error) {
	if p := os.Getenv("FXCTL_CFG"); p != "" {
		return p, nil
	}

	for _, env := range []string{"XDG_CONFIG_HOME", "APPDATA", "HOME"} {
		dir := os.Getenv(env)
		if dir == "" {
			continue
		}
		file := filepath.Join(dir, FileName)
		if fi, err := os.Stat(file); err == nil && !fi.IsDir() {
			log.Debugf("using config file: %s", file)
			return file, nil
		}
	}
	return "", errors.New("config file not found in XDG_CONFIG_HOME, APPDATA or HOME")
}

// lookup resolves a dotted key, trying the namespaced form first.
func (cfg *Type) lookup(key string) (interface{}, bool) {
	if cfg.Namespace != "" {
		if v, ok := walk(cfg.Data, cfg.Namespace+"."+key); ok {
			return v, true
		}
	}
	return walk(cfg.Data, key)
}

func walk(data map[string]interface{}, key string) (interface{}, bool) {
	var node interface{} = data
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if node, ok = m[part]; !ok {
			return nil, false
		}
	}
	return node, true
}

// get returns the value at key converted by conv. An absent key yields the
// default when one is given; a present key of the wrong type is always an
// error.
func get[T any](key string, conv func(interface{}) (T, bool), defaults []T) (T, error) {
	var zero T

	v, ok := Config.lookup(key)
	if !ok {
		if len(defaults) == 1 {
			return defaults[0], nil
		}
		return zero, fmt.Errorf("config key not found: %s", key)
	}

	out, ok := conv(v)
	if !ok {
		return zero, fmt.Errorf("config key %s: unexpected type %T", key, v)
	}
	return out, nil
}

func GetString(key string, defaultValue ...string) (string, error) {
	return get(key, func(v interface{}) (string, bool) {
		s, ok := v.(string)
		return s, ok
	}, defaultValue)
}

// GetInt accepts any YAML number; fractions are truncated.
func GetInt(key string, defaultValue ...int) (int, error) {
	return get(key, func(v interface{}) (int, bool) {
		switch n := v.(type) {
		case int:
			return n, true
		case int64:
			return int(n), true
		case float64:
			return int(n), true
		}
		return 0, false
	}, defaultValue)
}

func GetBool(key string, defaultValue ...bool) (bool, error) {
	return get(key, func(v interface{}) (bool, bool) {
		b, ok := v.(bool)
		return b, ok
	}, defaultValue)
}

// GetStringSlice returns a list of strings. A scalar string is returned as
// a one element slice.
func GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	return get(key, func(v interface{}) ([]string, bool) {
		switch list := v.(type) {
		case string:
			return []string{list}, true
		case []interface{}:
			out := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, false
				}
				out = append(out, s)
			}
			return out, true
		}
		return nil, false
	}, defaultValue)
}
