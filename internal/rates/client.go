// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package rates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/tidwall/gjson"
)

const (
	// DefaultURL is the latest-rates endpoint; the base code is appended as
	// the final path segment.
	DefaultURL = "https://api.exchangerate-api.com/v4/latest"
	// DefaultTimeout bounds a single upstream request.
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 1 << 20
)

// Table maps currency codes to rates relative to a base currency.
type Table map[string]float64

// Source returns the full rate table for a base currency.
type Source interface {
	Latest(ctx context.Context, base string) (Table, error)
}

// Client is a Source backed by the upstream HTTP API. It never retries;
// retrying is left to the caller.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for baseURL. An empty baseURL selects
// DefaultURL and a non-positive timeout selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = timeout

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// Latest fetches the rate table for base.
func (c *Client) Latest(ctx context.Context, base string) (Table, error) {
	u := c.baseURL + "/" + url.PathEscape(base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportError{Op: "create request for", URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	log.Debugf("fetching rates: %s", u)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "fetch", URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Op: "fetch", URL: u, StatusCode: resp.StatusCode}
	}

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		return nil, &TransportError{Op: "read response from", URL: u, Err: err}
	}

	table, err := Decode(doc.Bytes())
	if err != nil {
		return nil, &TransportError{Op: "decode response from", URL: u, Err: err}
	}

	log.WithFields(log.Fields{"base": base, "rates": len(table)}).Debug("rates fetched")
	return table, nil
}

// Decode extracts the rates object from an upstream response body.
func Decode(body []byte) (Table, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("malformed JSON")
	}

	rates := gjson.GetBytes(body, "rates")
	if !rates.IsObject() {
		return nil, errors.New("missing rates object")
	}

	table := make(Table)
	var decodeErr error
	rates.ForEach(func(code, rate gjson.Result) bool {
		if rate.Type != gjson.Number {
			decodeErr = fmt.Errorf("rate for %s is not a number", code.String())
			return false
		}
		table[code.String()] = rate.Float()
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}

	return table, nil
}
