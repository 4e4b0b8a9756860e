// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package convert turns an amount in one currency into another, consulting
// the conversion cache before the upstream rate source.
package convert

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"

	"github.com/staranto/fxctl/internal/cache"
	"github.com/staranto/fxctl/internal/rates"
)

// ErrTargetNotFound matches every *TargetNotFoundError via errors.Is.
var ErrTargetNotFound = errors.New("target currency not found")

// TargetNotFoundError reports a target code missing from the fetched table.
type TargetNotFoundError struct {
	Code string
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("target currency %s not found", e.Code)
}

func (e *TargetNotFoundError) Is(target error) bool { return target == ErrTargetNotFound }

// Service converts amounts. Results are cached; failures never are.
type Service struct {
	store  *cache.Store
	source rates.Source

	// group is nil unless coalescing was requested. Without it concurrent
	// misses for one key each go upstream and the last Set wins.
	group *singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithCoalescing makes concurrent misses for the same key share a single
// upstream lookup.
func WithCoalescing() Option {
	return func(s *Service) {
		s.group = &singleflight.Group{}
	}
}

// NewService returns a Service reading through store to source. store may be
// nil, which disables caching.
func NewService(store *cache.Store, source rates.Source, opts ...Option) *Service {
	s := &Service{store: store, source: source}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert returns amount expressed in target. Identical codes return amount
// untouched without touching the cache or the rate source.
func (s *Service) Convert(ctx context.Context, source, target string, amount float64) (float64, error) {
	if source == target {
		return amount, nil
	}

	key := cache.Key(source, target, amount)
	if v, ok := s.store.Get(key); ok {
		return v, nil
	}

	if s.group == nil {
		return s.fetch(ctx, key, source, target, amount)
	}

	// The shared lookup outlives any one caller's cancellation; each caller
	// stops waiting on its own context instead.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return s.fetch(fetchCtx, key, source, target, amount)
	})

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("failed to get rates for %s: %w", source, ctx.Err())
	case res := <-ch:
		if res.Shared {
			log.Debugf("coalesced lookup: %s", key)
		}
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(float64), nil
	}
}

// fetch performs the single upstream call for a miss and caches a success.
func (s *Service) fetch(ctx context.Context, key, source, target string, amount float64) (float64, error) {
	table, err := s.source.Latest(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("failed to get rates for %s: %w", source, err)
	}

	rate, ok := table[target]
	if !ok {
		return 0, &TargetNotFoundError{Code: target}
	}

	v := amount * rate
	s.store.Set(key, v)

	log.WithFields(log.Fields{
		"source": source,
		"target": target,
		"rate":   rate,
	}).Debug("converted")

	return v, nil
}
