package gateway

import (
	"context"
	"sync"
	"time"

	"mattter-gateway/internal/logger"
	"mattter-gateway/internal/messaging"
	"mattter-gateway/internal/metrics"
)

// ThreadRegistry tracks the open message threads, one per booking. Opening
// a thread starts its polling channel; closing it (explicitly or via idle
// pruning) stops it with the no-fetch-after-stop guarantee.
type ThreadRegistry struct {
	backend   messaging.Backend
	sess      messaging.SessionContext
	interval  time.Duration
	idleLimit time.Duration
	metrics   *metrics.Metrics

	mu      sync.Mutex
	threads map[int32]*messaging.Thread
}

func NewThreadRegistry(backend messaging.Backend, sess messaging.SessionContext, interval, idleLimit time.Duration, m *metrics.Metrics) *ThreadRegistry {
	return &ThreadRegistry{
		backend:   backend,
		sess:      sess,
		interval:  interval,
		idleLimit: idleLimit,
		metrics:   m,
		threads:   make(map[int32]*messaging.Thread),
	}
}

// Open returns the thread for the booking, creating and starting it if
// needed. Reopening an existing thread just refreshes its activity stamp.
// The polling channel outlives the request that opened it, so it runs on
// the registry's own context rather than the caller's.
func (r *ThreadRegistry) Open(bookingID int32) *messaging.Thread {
	r.mu.Lock()
	t, ok := r.threads[bookingID]
	if !ok {
		t = messaging.NewThread(r.backend, r.sess, bookingID, r.interval)
		r.threads[bookingID] = t
	}
	r.mu.Unlock()

	if !t.Active() {
		t.Open(context.Background())
		if r.metrics != nil {
			r.metrics.ActivePollers.Inc()
		}
	} else {
		t.Touch()
	}
	return t
}

// Get returns the thread if it is already open.
func (r *ThreadRegistry) Get(bookingID int32) (*messaging.Thread, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[bookingID]
	return t, ok
}

// Close stops the booking's thread. Unknown ids are a no-op.
func (r *ThreadRegistry) Close(bookingID int32) {
	r.mu.Lock()
	t, ok := r.threads[bookingID]
	if ok {
		delete(r.threads, bookingID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	t.Close()
	if r.metrics != nil {
		r.metrics.ActivePollers.Dec()
	}
}

// CloseAll tears down every thread, used at shutdown and on logout.
func (r *ThreadRegistry) CloseAll() {
	r.mu.Lock()
	all := make([]*messaging.Thread, 0, len(r.threads))
	for _, t := range r.threads {
		all = append(all, t)
	}
	r.threads = make(map[int32]*messaging.Thread)
	r.mu.Unlock()

	for _, t := range all {
		t.Close()
		if r.metrics != nil {
			r.metrics.ActivePollers.Dec()
		}
	}
}

// PruneIdle closes threads with no activity past the idle limit and
// returns how many were closed.
func (r *ThreadRegistry) PruneIdle() int {
	cutoff := time.Now().Add(-r.idleLimit)

	r.mu.Lock()
	var stale []*messaging.Thread
	for id, t := range r.threads {
		if t.IdleSince().Before(cutoff) {
			stale = append(stale, t)
			delete(r.threads, id)
		}
	}
	r.mu.Unlock()

	for _, t := range stale {
		logger.Info("closing idle message thread", "booking_id", t.BookingID())
		t.Close()
		if r.metrics != nil {
			r.metrics.ActivePollers.Dec()
		}
	}
	return len(stale)
}
