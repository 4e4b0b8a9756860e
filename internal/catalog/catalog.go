// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package catalog holds the fixed list of currencies offered to users.
package catalog

import "sort"

// names is the curated set of popular and CIS currencies. It is not checked
// against the codes the rate source supports.
var names = map[string]string{
	"USD": "United States Dollar",
	"EUR": "Euro",
	"GBP": "British Pound",
	"JPY": "Japanese Yen",
	"CAD": "Canadian Dollar",
	"AUD": "Australian Dollar",
	"CHF": "Swiss Franc",
	"CNY": "Chinese Yuan",
	"INR": "Indian Rupee",
	"MXN": "Mexican Peso",

	"RUB": "Russian Ruble",
	"KZT": "Kazakhstani Tenge",
	"UAH": "Ukrainian Hryvnia",
	"BYN": "Belarusian Ruble",
	"AMD": "Armenian Dram",
	"GEL": "Georgian Lari",
	"UZS": "Uzbekistani Som",
}

// Names returns a copy of the code to display-name table.
func Names() map[string]string {
	out := make(map[string]string, len(names))
	for k, v := range names {
		out[k] = v
	}
	return out
}

// Name returns the display name for code.
func Name(code string) (string, bool) {
	n, ok := names[code]
	return n, ok
}

// Codes returns the catalog codes in ascending order.
func Codes() []string {
	codes := make([]string, 0, len(names))
	for k := range names {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}
