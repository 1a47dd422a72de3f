// Package messaging drives one booking's conversation view: a polled
// message list with send and mark-as-read on top of it.
package messaging

import (
	"context"
	"sync"
	"time"

	"mattter-gateway/internal/domain"
	"mattter-gateway/internal/logger"
	"mattter-gateway/internal/poll"
)

// DefaultInterval matches the messaging modal's observed refresh period.
const DefaultInterval = 5 * time.Second

// Backend is the slice of the API client a thread depends on.
type Backend interface {
	ListMessages(ctx context.Context, bookingID int32) ([]domain.Message, error)
	SendMessage(ctx context.Context, bookingID int32, content string) (domain.Message, error)
	MarkMessagesRead(ctx context.Context, bookingID int32) (int, error)
}

// SessionContext forces logout when the token is rejected mid-conversation.
type SessionContext interface {
	ResolveAuthFailure(err error) bool
}

// Thread is the live conversation for one booking. Open starts the polling
// channel (immediate fetch, then every interval); Close tears it down with
// the guarantee that no fetch fires afterwards.
type Thread struct {
	backend   Backend
	sess      SessionContext
	bookingID int32
	poller    *poll.Poller

	mu       sync.Mutex
	messages []domain.Message
	touched  time.Time
}

func NewThread(backend Backend, sess SessionContext, bookingID int32, interval time.Duration) *Thread {
	return newThread(backend, sess, bookingID, interval, nil)
}

// NewThreadWithClock is NewThread with an injectable clock for tests.
func NewThreadWithClock(backend Backend, sess SessionContext, bookingID int32, interval time.Duration, clock poll.Clock) *Thread {
	return newThread(backend, sess, bookingID, interval, clock)
}

func newThread(backend Backend, sess SessionContext, bookingID int32, interval time.Duration, clock poll.Clock) *Thread {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := &Thread{
		backend:   backend,
		sess:      sess,
		bookingID: bookingID,
		touched:   time.Now(),
	}
	if clock == nil {
		t.poller = poll.New(interval, t.refresh)
	} else {
		t.poller = poll.NewWithClock(interval, t.refresh, clock)
	}
	return t
}

// BookingID identifies the conversation.
func (t *Thread) BookingID() int32 { return t.bookingID }

// Open activates the thread's polling channel.
func (t *Thread) Open(ctx context.Context) {
	t.Touch()
	t.poller.Start(ctx)
}

// Close deactivates the thread. Safe to call repeatedly.
func (t *Thread) Close() {
	t.poller.Stop()
}

// Active reports whether the polling channel is running.
func (t *Thread) Active() bool { return t.poller.Running() }

// Messages returns the current conversation snapshot, oldest first.
func (t *Thread) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Message(nil), t.messages...)
}

// Send posts a message and refreshes the view immediately on success.
func (t *Thread) Send(ctx context.Context, content string) error {
	t.Touch()
	if _, err := t.backend.SendMessage(ctx, t.bookingID, content); err != nil {
		t.sess.ResolveAuthFailure(err)
		return err
	}
	t.refresh(ctx)
	return nil
}

// Touch records activity for idle pruning.
func (t *Thread) Touch() {
	t.mu.Lock()
	t.touched = time.Now()
	t.mu.Unlock()
}

// IdleSince returns the last activity time.
func (t *Thread) IdleSince() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.touched
}

// refresh is one polling cycle: fetch the list, and on success flag the
// counterpart's messages read. A failed cycle keeps the prior messages
// visible and is skipped, not surfaced.
func (t *Thread) refresh(ctx context.Context) {
	msgs, err := t.backend.ListMessages(ctx, t.bookingID)
	if err != nil {
		if !t.sess.ResolveAuthFailure(err) {
			logger.Debug("message refresh failed, keeping prior view", "booking_id", t.bookingID, "error", err)
		}
		return
	}

	t.mu.Lock()
	t.messages = msgs
	t.mu.Unlock()

	if _, err := t.backend.MarkMessagesRead(ctx, t.bookingID); err != nil {
		logger.Debug("mark-as-read failed", "booking_id", t.bookingID, "error", err)
	}
}
