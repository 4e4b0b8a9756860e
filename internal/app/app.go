// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package app is the composition root. It builds the conversion cache, rate
// client and conversion service once and exposes the commands offered to the
// front-end.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/apex/log"

	"github.com/staranto/fxctl/internal/cache"
	"github.com/staranto/fxctl/internal/catalog"
	"github.com/staranto/fxctl/internal/config"
	"github.com/staranto/fxctl/internal/convert"
	"github.com/staranto/fxctl/internal/rates"
)

// Settings are the tunables read from the config file.
type Settings struct {
	CacheEnabled  bool
	CacheTTL      time.Duration
	CacheCapacity int
	RatesURL      string
	RatesTimeout  time.Duration
	Coalesce      bool
}

// SettingsFromConfig reads Settings from the loaded config, falling back to
// defaults for anything absent. FXCTL_CACHE=0|false disables the cache
// regardless of the file.
func SettingsFromConfig() Settings {
	enabled, _ := config.GetBool("cache.enabled", true)
	if v, ok := os.LookupEnv("FXCTL_CACHE"); ok && (v == "0" || v == "false") {
		enabled = false
	}
	ttl, _ := config.GetInt("cache.ttl", int(cache.DefaultTTL/time.Second))
	capacity, _ := config.GetInt("cache.capacity", cache.DefaultCapacity)
	url, _ := config.GetString("rates.url", rates.DefaultURL)
	timeout, _ := config.GetInt("rates.timeout", int(rates.DefaultTimeout/time.Second))
	coalesce, _ := config.GetBool("convert.coalesce", false)

	return Settings{
		CacheEnabled:  enabled,
		CacheTTL:      time.Duration(ttl) * time.Second,
		CacheCapacity: capacity,
		RatesURL:      url,
		RatesTimeout:  time.Duration(timeout) * time.Second,
		Coalesce:      coalesce,
	}
}

// App owns the process-wide conversion cache. Create one per process and
// share it between every command invocation.
type App struct {
	store   *cache.Store
	service *convert.Service
}

// New wires an App from s using the HTTP rate client.
func New(s Settings) *App {
	return NewWithSource(s, rates.NewClient(s.RatesURL, s.RatesTimeout))
}

// NewWithSource wires an App from s against an arbitrary rate source.
func NewWithSource(s Settings, source rates.Source) *App {
	var store *cache.Store
	if s.CacheEnabled {
		store = cache.New(cache.Config{TTL: s.CacheTTL, Capacity: s.CacheCapacity})
	} else {
		log.Debug("conversion cache disabled")
	}

	var opts []convert.Option
	if s.Coalesce {
		opts = append(opts, convert.WithCoalescing())
	}

	return &App{
		store:   store,
		service: convert.NewService(store, source, opts...),
	}
}

// Greet returns the greeting shown by the front-end.
func (a *App) Greet(name string) string {
	return fmt.Sprintf("Hello, %s! You've been greeted from Go!", name)
}

// GetCurrencies returns the currency catalog keyed by code.
func (a *App) GetCurrencies() map[string]string {
	return catalog.Names()
}

// ConvertCurrency converts amount from base to target. Failures are returned
// as plain messages; the typed errors of the layers below do not escape.
func (a *App) ConvertCurrency(ctx context.Context, base, target string, amount float64) (float64, error) {
	v, err := a.service.Convert(ctx, base, target, amount)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"base":   base,
			"target": target,
		}).Debug("conversion failed")
		return 0, errors.New(describe(err, target))
	}
	return v, nil
}

// CacheStats reports the conversion cache counters.
func (a *App) CacheStats() cache.Stats {
	return a.store.Stats()
}

func describe(err error, target string) string {
	switch {
	case errors.Is(err, convert.ErrTargetNotFound):
		return fmt.Sprintf("Target currency %s not found", target)
	case errors.Is(err, rates.ErrTransport):
		return "rate lookup failed: " + err.Error()
	default:
		return err.Error()
	}
}
