// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRequests(t *testing.T) {
	in := strings.Join([]string{
		"# header",
		"USD EUR 100",
		"",
		"  gbp   jpy 2.5  ",
		"USD EUR",
		"USD EURO 1",
		"USD EUR ten",
	}, "\n")

	reqs, err := ReadRequests(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, reqs, 5)

	assert.Equal(t, Request{Line: 2, Base: "USD", Target: "EUR", Amount: 100}, reqs[0])
	assert.Equal(t, Request{Line: 4, Base: "GBP", Target: "JPY", Amount: 2.5}, reqs[1])

	assert.Equal(t, 5, reqs[2].Line)
	assert.EqualError(t, reqs[2].Err, `expected BASE TARGET AMOUNT, got "USD EUR"`)
	assert.Error(t, reqs[3].Err)
	assert.EqualError(t, reqs[4].Err, `invalid amount "ten"`)
}

func TestReadRequests_Empty(t *testing.T) {
	reqs, err := ReadRequests(strings.NewReader("# nothing\n\n"))
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

// recordingConverter multiplies by a fixed rate, fails for target XXX and
// tracks the highest number of concurrent calls.
type recordingConverter struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	release  chan struct{}
}

func (c *recordingConverter) ConvertCurrency(ctx context.Context, base, target string, amount float64) (float64, error) {
	c.mu.Lock()
	c.inFlight++
	c.peak = max(c.peak, c.inFlight)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}()

	if c.release != nil {
		<-c.release
	}
	if target == "XXX" {
		return 0, errors.New("Target currency XXX not found")
	}
	return amount * 2, nil
}

func TestRunBatch_OrderAndErrors(t *testing.T) {
	reqs := []Request{
		{Line: 1, Base: "USD", Target: "EUR", Amount: 1},
		{Line: 2, Base: "USD", Target: "XXX", Amount: 2},
		{Line: 3, Err: errors.New("bad line")},
		{Line: 4, Base: "USD", Target: "GBP", Amount: 4},
	}

	rows, failed, err := RunBatch(context.Background(), &recordingConverter{}, reqs, 3)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, 2, failed)

	for i, row := range rows {
		assert.Equal(t, reqs[i].Line, row["line"], "row %d keeps input order", i)
	}
	assert.Equal(t, 2.0, rows[0]["result"])
	assert.Nil(t, rows[0]["error"])
	assert.Nil(t, rows[1]["result"])
	assert.Equal(t, "Target currency XXX not found", rows[1]["error"])
	assert.Equal(t, "bad line", rows[2]["error"])
	assert.Equal(t, 8.0, rows[3]["result"])
}

func TestRunBatch_WorkerLimit(t *testing.T) {
	conv := &recordingConverter{release: make(chan struct{})}

	reqs := make([]Request, 10)
	for i := range reqs {
		reqs[i] = Request{Line: i + 1, Base: "USD", Target: "EUR", Amount: float64(i)}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, err := RunBatch(context.Background(), conv, reqs, 3)
		assert.NoError(t, err)
	}()

	for range reqs {
		conv.release <- struct{}{}
	}
	<-done

	assert.LessOrEqual(t, conv.peak, 3)
	assert.GreaterOrEqual(t, conv.peak, 1)
}

func TestRunBatch_ZeroWorkers(t *testing.T) {
	reqs := []Request{{Line: 1, Base: "USD", Target: "EUR", Amount: 1}}
	rows, failed, err := RunBatch(context.Background(), &recordingConverter{}, reqs, 0)
	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.Equal(t, 2.0, rows[0]["result"])
}

func TestRunBatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reqs := []Request{
		{Line: 1, Base: "USD", Target: "EUR", Amount: 1},
		{Line: 2, Base: "USD", Target: "GBP", Amount: 2},
	}

	rows, failed, err := RunBatch(ctx, &recordingConverter{}, reqs, 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, failed)
	for _, row := range rows {
		assert.Nil(t, row["result"])
		assert.Equal(t, context.Canceled.Error(), row["error"])
	}
}

func decodeRows(t *testing.T, b []byte) []map[string]interface{} {
	t.Helper()
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &rows))
	return rows
}

func TestBatchCommand_Stdin(t *testing.T) {
	h := newHarness(t)

	in := "USD EUR 100\nUSD GBP 100\nUSD EUR 100\n# done\n"
	require.NoError(t, h.run(t, in, "batch", "-o", "json", "--stats", "-w", "2"))

	rows := decodeRows(t, h.stdout.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, 92.0, rows[0]["result"])
	assert.Equal(t, 79.0, rows[1]["result"])
	assert.Equal(t, 92.0, rows[2]["result"])

	// Two distinct keys; the repeat is either a hit or a racing miss.
	st := h.app.CacheStats()
	assert.Equal(t, 2, st.Entries)
	assert.Equal(t, 3, st.Hits+st.Misses)
	assert.Contains(t, h.stderr.String(), "cache: entries=2")
}

func TestBatchCommand_File(t *testing.T) {
	h := newHarness(t)

	path := filepath.Join(t.TempDir(), "requests.txt")
	require.NoError(t, os.WriteFile(path, []byte("USD JPY 2\nUSD XXX 1\nbogus\n"), 0o600))

	err := h.run(t, "", "batch", "-o", "json", path)
	assert.EqualError(t, err, "2 of 3 conversions failed")

	rows := decodeRows(t, h.stdout.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, 300.0, rows[0]["result"])
	assert.Equal(t, "Target currency XXX not found", rows[1]["error"])
	assert.Equal(t, 3.0, rows[2]["line"])
	assert.NotNil(t, rows[2]["error"])
}

func TestBatchCommand_FilterFailures(t *testing.T) {
	h := newHarness(t)

	in := "USD EUR 1\nUSD XXX 1\n"
	err := h.run(t, in, "batch", "-o", "json", "--filter", "error@not found")
	assert.Error(t, err)

	rows := decodeRows(t, h.stdout.Bytes())
	require.Len(t, rows, 1)
	assert.Equal(t, "XXX", rows[0]["target"])
}

func TestBatchCommand_MissingFile(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "", "batch", filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to open batch file"), err.Error())
}

func TestBatchCommand_SharedCacheAcrossInvocations(t *testing.T) {
	h := newHarness(t)

	var in strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&in, "USD EUR %d\n", i%5)
	}

	require.NoError(t, h.run(t, in.String(), "batch", "-o", "json", "-w", "8"))
	first := h.src.calls.Load()
	assert.LessOrEqual(t, first, int32(20))

	h.stdout.Reset()
	require.NoError(t, h.run(t, in.String(), "batch", "-o", "json"))
	assert.Equal(t, first, h.src.calls.Load(), "second batch served entirely from the cache")
	assert.Equal(t, 5, h.app.CacheStats().Entries)
}
