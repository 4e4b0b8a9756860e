// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/staranto/fxctl/internal/config"
)

func TestExpandArgSets(t *testing.T) {
	config.Config = config.Type{
		Namespace: "convert",
		Data: map[string]interface{}{
			"convert": map[string]interface{}{
				"defaults": []interface{}{"--precision 4"},
				"eu":       []interface{}{"--output json", "USD EUR"},
			},
		},
	}
	defer func() { config.Config = config.Type{} }()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"defaults", []string{"fxctl", "convert", "USD", "EUR", "1"}, []string{"fxctl", "convert", "--precision", "4", "USD", "EUR", "1"}},
		{"named set", []string{"fxctl", "convert", "@eu", "100"}, []string{"fxctl", "convert", "--output", "json", "USD", "EUR", "100"}},
		{"unknown set", []string{"fxctl", "convert", "@nope", "USD", "EUR", "1"}, []string{"fxctl", "convert", "USD", "EUR", "1"}},
		{"help", []string{"fxctl", "convert", "USD", "-h"}, []string{"fxctl", "convert", "--help"}},
		{"root flag", []string{"fxctl", "--help"}, []string{"fxctl", "--help"}},
		{"no command", []string{"fxctl"}, []string{"fxctl"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandArgSets(tt.args))
		})
	}
}
