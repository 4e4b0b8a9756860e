// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides the in-process conversion cache. Entries expire
// after a fixed TTL and stale entries are swept only when the store grows
// past its capacity.
package cache
