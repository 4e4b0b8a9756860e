// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/fxctl/internal/cache"
	"github.com/staranto/fxctl/internal/rates"
)

// fakeSource serves fixed tables and counts lookups.
type fakeSource struct {
	tables map[string]rates.Table
	err    error
	calls  atomic.Int32
	// gate, when set, blocks every lookup until it is closed.
	gate chan struct{}
}

func (f *fakeSource) Latest(ctx context.Context, base string) (rates.Table, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.tables[base], nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func usdSource() *fakeSource {
	return &fakeSource{tables: map[string]rates.Table{
		"USD": {"EUR": 0.92, "GBP": 0.79},
	}}
}

func TestConvert_Identity(t *testing.T) {
	src := usdSource()
	store := cache.New(cache.Config{})
	svc := NewService(store, src)

	for _, amount := range []float64{0, 1, -5, 123.456789, 1e12} {
		v, err := svc.Convert(context.Background(), "XYZ", "XYZ", amount)
		require.NoError(t, err)
		assert.Equal(t, amount, v)
	}

	assert.Equal(t, int32(0), src.calls.Load())
	st := store.Stats()
	assert.Equal(t, 0, st.Hits+st.Misses+st.Sets)
}

func TestConvert_CacheHit(t *testing.T) {
	src := usdSource()
	svc := NewService(cache.New(cache.Config{}), src)

	v, err := svc.Convert(context.Background(), "USD", "EUR", 100)
	require.NoError(t, err)
	assert.Equal(t, 92.0, v)

	v, err = svc.Convert(context.Background(), "USD", "EUR", 100)
	require.NoError(t, err)
	assert.Equal(t, 92.0, v)

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestConvert_TTLExpiry(t *testing.T) {
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	src := usdSource()
	svc := NewService(cache.New(cache.Config{Now: clk.Now}), src)

	_, err := svc.Convert(context.Background(), "USD", "GBP", 10)
	require.NoError(t, err)

	clk.Advance(299 * time.Second)
	_, err = svc.Convert(context.Background(), "USD", "GBP", 10)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())

	clk.Advance(time.Second)
	v, err := svc.Convert(context.Background(), "USD", "GBP", 10)
	require.NoError(t, err)
	assert.InDelta(t, 7.9, v, 1e-9)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestConvert_KeyDiscrimination(t *testing.T) {
	src := usdSource()
	store := cache.New(cache.Config{})
	svc := NewService(store, src)

	a, err := svc.Convert(context.Background(), "USD", "EUR", 10)
	require.NoError(t, err)
	b, err := svc.Convert(context.Background(), "USD", "EUR", 20)
	require.NoError(t, err)

	assert.InDelta(t, 9.2, a, 1e-9)
	assert.InDelta(t, 18.4, b, 1e-9)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestConvert_TargetNotFound(t *testing.T) {
	src := usdSource()
	store := cache.New(cache.Config{})
	svc := NewService(store, src)

	_, err := svc.Convert(context.Background(), "USD", "XXX", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.EqualError(t, err, "target currency XXX not found")

	var nf *TargetNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "XXX", nf.Code)

	assert.Equal(t, 0, store.Len())
	_, ok := store.Get(cache.Key("USD", "XXX", 10))
	assert.False(t, ok)

	// Failures are not cached, so the next attempt asks again.
	_, _ = svc.Convert(context.Background(), "USD", "XXX", 10)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestConvert_TransportError(t *testing.T) {
	upstream := &rates.TransportError{Op: "fetch", URL: "http://rates/USD", StatusCode: 503}
	src := &fakeSource{err: upstream}
	store := cache.New(cache.Config{})
	svc := NewService(store, src)

	v, err := svc.Convert(context.Background(), "USD", "EUR", 10)
	require.Error(t, err)
	assert.Zero(t, v)
	assert.ErrorIs(t, err, rates.ErrTransport)
	assert.Contains(t, err.Error(), "failed to get rates for USD")
	assert.Equal(t, 0, store.Len())

	// No internal retry.
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestConvert_NilStore(t *testing.T) {
	src := usdSource()
	svc := NewService(nil, src)

	for i := 0; i < 3; i++ {
		v, err := svc.Convert(context.Background(), "USD", "EUR", 100)
		require.NoError(t, err)
		assert.Equal(t, 92.0, v)
	}
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestConvert_ConcurrentMissesWithoutCoalescing(t *testing.T) {
	src := usdSource()
	src.gate = make(chan struct{})
	store := cache.New(cache.Config{})
	svc := NewService(store, src)

	const callers = 5
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := svc.Convert(context.Background(), "USD", "EUR", 100)
			assert.NoError(t, err)
			assert.Equal(t, 92.0, v)
		}()
	}

	require.Eventually(t, func() bool {
		return src.calls.Load() == callers
	}, time.Second, time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, callers, store.Stats().Sets)
}

func TestConvert_Coalescing(t *testing.T) {
	src := usdSource()
	src.gate = make(chan struct{})
	store := cache.New(cache.Config{})
	svc := NewService(store, src, WithCoalescing())

	const callers = 5
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
	)
	started.Add(callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			v, err := svc.Convert(context.Background(), "USD", "EUR", 100)
			assert.NoError(t, err)
			assert.Equal(t, 92.0, v)
		}()
	}

	started.Wait()
	require.Eventually(t, func() bool {
		return src.calls.Load() >= 1
	}, time.Second, time.Millisecond)
	// Give the remaining callers time to join the in-flight lookup.
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, 1, store.Stats().Sets)
}

func TestConvert_ContextCanceled(t *testing.T) {
	src := usdSource()
	src.gate = make(chan struct{})
	defer close(src.gate)
	store := cache.New(cache.Config{})
	svc := NewService(store, src)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.Convert(ctx, "USD", "EUR", 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, store.Len())
}

func TestConvert_CoalescingSurvivesFirstCallerCancel(t *testing.T) {
	src := usdSource()
	src.gate = make(chan struct{})
	store := cache.New(cache.Config{})
	svc := NewService(store, src, WithCoalescing())

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Convert(ctx, "USD", "EUR", 100)
		firstErr <- err
	}()
	require.Eventually(t, func() bool {
		return src.calls.Load() == 1
	}, time.Second, time.Millisecond)

	type result struct {
		v   float64
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, err := svc.Convert(context.Background(), "USD", "EUR", 100)
		second <- result{v, err}
	}()
	// Let the second caller join the in-flight lookup.
	time.Sleep(20 * time.Millisecond)

	cancel()
	err := <-firstErr
	assert.ErrorIs(t, err, context.Canceled)

	close(src.gate)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 92.0, res.v)

	assert.Equal(t, int32(1), src.calls.Load())
	v, ok := store.Get(cache.Key("USD", "EUR", 100))
	assert.True(t, ok)
	assert.Equal(t, 92.0, v)
}
