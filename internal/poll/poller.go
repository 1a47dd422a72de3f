// Package poll implements the fixed-interval refresh loop backing the
// near-real-time screens (messages, incoming requests). The contract: one
// immediate fetch on activation, a fetch per interval afterwards, and a
// teardown after which no fetch ever fires again.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mattter-gateway/internal/logger"
)

// Poller drives one screen's refresh loop. A slow fetch and the next
// scheduled fetch may both be in flight; overlapping fetches are not
// coalesced.
type Poller struct {
	id       string
	interval time.Duration
	fetch    func(ctx context.Context)
	clock    Clock

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New builds a poller around fetch. The fetch callback must bound its own
// network calls; the poller only schedules it.
func New(interval time.Duration, fetch func(ctx context.Context)) *Poller {
	return NewWithClock(interval, fetch, realClock{})
}

// NewWithClock is New with an injectable clock for tests.
func NewWithClock(interval time.Duration, fetch func(ctx context.Context), clock Clock) *Poller {
	return &Poller{
		id:       uuid.NewString(),
		interval: interval,
		fetch:    fetch,
		clock:    clock,
	}
}

// ID identifies this poller in logs and metrics.
func (p *Poller) ID() string { return p.id }

// Start performs the immediate fetch and begins the interval loop. Calling
// Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.started = true
	done := p.done
	p.mu.Unlock()

	logger.Debug("poller started", "poller_id", p.id, "interval", p.interval)
	go func() {
		defer close(done)
		ticker := p.clock.NewTicker(p.interval)
		defer ticker.Stop()

		p.fetch(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				if ctx.Err() != nil {
					return
				}
				p.fetch(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit, so when Stop returns no
// fetch will fire afterwards. An in-flight fetch sees its context cancelled.
// Idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.started = false
	p.cancel = nil
	p.mu.Unlock()

	cancel()
	<-done
	logger.Debug("poller stopped", "poller_id", p.id)
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}
