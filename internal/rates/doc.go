// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package rates fetches exchange-rate tables from the upstream rate API.
package rates
