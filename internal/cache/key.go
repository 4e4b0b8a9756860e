// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import "fmt"

// KeyPrecision is the number of decimal places of the amount that take part
// in the key. Amounts that differ only beyond it share an entry.
const KeyPrecision = 6

// Key derives the cache key for converting amount from source to target.
// Negative zero shares the key of zero.
func Key(source, target string, amount float64) string {
	if amount == 0 {
		amount = 0
	}
	return fmt.Sprintf("%s_%s_%.*f", source, target, KeyPrecision, amount)
}
