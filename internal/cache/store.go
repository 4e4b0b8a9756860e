// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"sync"
	"time"

	"github.com/apex/log"
)

const (
	// DefaultTTL is how long an entry is served after it was written.
	DefaultTTL = 300 * time.Second
	// DefaultCapacity is the entry count above which a Set sweeps stale
	// entries before inserting.
	DefaultCapacity = 1000
)

// Entry is a single cached conversion result.
type Entry struct {
	Value float64
	// CreatedAt is the Unix time, in seconds, of the last write.
	CreatedAt int64
}

// Config controls a Store. Zero values select the defaults.
type Config struct {
	TTL      time.Duration
	Capacity int
	// Now is the clock used to stamp and age entries. Tests substitute a fake.
	Now func() time.Time
}

// Stats is a point-in-time snapshot of store counters.
type Stats struct {
	Entries int
	Hits    int
	Misses  int
	Sets    int
	Swept   int
}

// Store is a TTL-bounded, size-bounded map of conversion results. Every
// access goes through one mutex around the whole map.
//
// A nil *Store is a valid, disabled cache: Get always misses and Set drops
// the value. Callers never need to care whether caching is on.
type Store struct {
	mu       sync.Mutex
	entries  map[string]Entry
	ttl      int64
	capacity int
	now      func() time.Time
	stats    Stats
}

// New returns an empty Store configured by cfg.
func New(cfg Config) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	// Entries are stamped in whole seconds; a sub-second TTL rounds up.
	ttl := int64((cfg.TTL + time.Second - 1) / time.Second)

	return &Store{
		entries:  make(map[string]Entry),
		ttl:      ttl,
		capacity: cfg.Capacity,
		now:      cfg.Now,
	}
}

// Get returns the value cached under key if it is younger than the TTL.
// Stale entries are left in place; only an overflow sweep removes them.
func (s *Store) Get(key string) (float64, bool) {
	if s == nil {
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || s.now().Unix()-entry.CreatedAt >= s.ttl {
		s.stats.Misses++
		log.Debugf("cache miss: %s", key)
		return 0, false
	}

	s.stats.Hits++
	log.Debugf("cache hit: %s", key)
	return entry.Value, true
}

// Set stores value under key stamped with the current time. When the store
// holds more than its capacity, every stale entry is removed first.
func (s *Store) Set(key string, value float64) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	if len(s.entries) > s.capacity {
		s.sweepLocked(now)
	}

	// Never move a stamp backwards if the clock does.
	if existing, ok := s.entries[key]; ok && existing.CreatedAt > now {
		now = existing.CreatedAt
	}

	s.entries[key] = Entry{Value: value, CreatedAt: now}
	s.stats.Sets++
}

// Sweep removes every entry older than the TTL and returns how many were
// removed. Set calls it on overflow; it is exported for diagnostics.
func (s *Store) Sweep() int {
	if s == nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweepLocked(s.now().Unix())
}

// sweepLocked requires s.mu to be held.
func (s *Store) sweepLocked(now int64) int {
	removed := 0
	for k, e := range s.entries {
		if now-e.CreatedAt > s.ttl {
			delete(s.entries, k)
			removed++
		}
	}

	s.stats.Swept += removed
	log.WithFields(log.Fields{
		"removed":   removed,
		"remaining": len(s.entries),
	}).Debug("cache sweep")

	return removed
}

// Len returns the number of entries, stale ones included.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Stats returns a snapshot of the store counters.
func (s *Store) Stats() Stats {
	if s == nil {
		return Stats{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats
	st.Entries = len(s.entries)
	return st
}
