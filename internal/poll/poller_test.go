package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock hands out a single controllable ticker.
type fakeClock struct {
	ticker *fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{ticker: &fakeTicker{ch: make(chan time.Time)}}
}

func (c *fakeClock) NewTicker(time.Duration) Ticker { return c.ticker }

// Tick delivers one tick and waits until the poller has consumed it.
func (c *fakeClock) Tick() {
	c.ticker.ch <- time.Now()
}

type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               { t.stopped.Store(true) }

// countingFetch records fetch invocations and signals each one.
type countingFetch struct {
	count atomic.Int32
	fired chan struct{}
}

func newCountingFetch() *countingFetch {
	return &countingFetch{fired: make(chan struct{}, 16)}
}

func (f *countingFetch) fetch(context.Context) {
	f.count.Add(1)
	f.fired <- struct{}{}
}

func (f *countingFetch) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
	}
}

func TestPollerImmediateFetch(t *testing.T) {
	clock := newFakeClock()
	fetch := newCountingFetch()
	p := NewWithClock(5*time.Second, fetch.fetch, clock)

	p.Start(context.Background())
	defer p.Stop()

	fetch.wait(t)
	assert.Equal(t, int32(1), fetch.count.Load(), "one fetch fires on activation before any tick")
}

func TestPollerFetchPerTick(t *testing.T) {
	clock := newFakeClock()
	fetch := newCountingFetch()
	p := NewWithClock(5*time.Second, fetch.fetch, clock)

	p.Start(context.Background())
	defer p.Stop()
	fetch.wait(t)

	for i := 0; i < 3; i++ {
		clock.Tick()
		fetch.wait(t)
	}
	assert.Equal(t, int32(4), fetch.count.Load())
}

func TestPollerStop(t *testing.T) {
	clock := newFakeClock()
	fetch := newCountingFetch()
	p := NewWithClock(5*time.Second, fetch.fetch, clock)

	p.Start(context.Background())
	fetch.wait(t)
	require.True(t, p.Running())

	p.Stop()
	assert.False(t, p.Running())
	assert.True(t, clock.ticker.stopped.Load())

	// Once Stop has returned, nothing may fire again.
	after := fetch.count.Load()
	select {
	case clock.ticker.ch <- time.Now():
		// Nobody is listening on a stopped poller; if the send happened to
		// land, the guard inside the loop would still have exited.
	default:
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, fetch.count.Load(), "no fetch after Stop returned")
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := NewWithClock(time.Second, func(context.Context) {}, newFakeClock())
	p.Start(context.Background())
	p.Stop()
	assert.NotPanics(t, func() { p.Stop() })
}

func TestPollerDoubleStartIsNoOp(t *testing.T) {
	clock := newFakeClock()
	fetch := newCountingFetch()
	p := NewWithClock(5*time.Second, fetch.fetch, clock)

	p.Start(context.Background())
	defer p.Stop()
	fetch.wait(t)

	p.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fetch.count.Load(), "second Start must not spawn a second loop")
}

func TestPollerContextCancelStopsLoop(t *testing.T) {
	clock := newFakeClock()
	fetch := newCountingFetch()
	p := NewWithClock(5*time.Second, fetch.fetch, clock)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	fetch.wait(t)

	cancel()
	p.Stop()
	assert.False(t, p.Running())
}
