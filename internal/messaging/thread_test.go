package messaging

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mattter-gateway/internal/api"
	"mattter-gateway/internal/domain"
	"mattter-gateway/internal/poll"
)

type fakeClock struct {
	ticker *fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{ticker: &fakeTicker{ch: make(chan time.Time)}}
}

func (c *fakeClock) NewTicker(time.Duration) poll.Ticker { return c.ticker }

type fakeTicker struct {
	ch chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               {}

// scriptedBackend serves canned message lists and records calls. Each
// ListMessages call signals completion so tests can await a poll cycle.
type scriptedBackend struct {
	mu        sync.Mutex
	messages  []domain.Message
	listErr   error
	markCalls int
	sendCalls int
	listDone  chan struct{}
}

func newScriptedBackend(msgs ...domain.Message) *scriptedBackend {
	return &scriptedBackend{messages: msgs, listDone: make(chan struct{}, 16)}
}

func (b *scriptedBackend) ListMessages(ctx context.Context, bookingID int32) ([]domain.Message, error) {
	b.mu.Lock()
	msgs, err := append([]domain.Message(nil), b.messages...), b.listErr
	b.mu.Unlock()
	b.listDone <- struct{}{}
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (b *scriptedBackend) SendMessage(ctx context.Context, bookingID int32, content string) (domain.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sendCalls++
	msg := domain.Message{ID: int32(len(b.messages) + 1), BookingID: bookingID, Content: content}
	b.messages = append(b.messages, msg)
	return msg, nil
}

func (b *scriptedBackend) MarkMessagesRead(ctx context.Context, bookingID int32) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.markCalls++
	return 0, nil
}

func (b *scriptedBackend) setListErr(err error) {
	b.mu.Lock()
	b.listErr = err
	b.mu.Unlock()
}

func (b *scriptedBackend) awaitList(t *testing.T) {
	t.Helper()
	select {
	case <-b.listDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a message fetch")
	}
}

type noopSession struct{}

func (noopSession) ResolveAuthFailure(error) bool { return false }

func TestThreadOpenFetchesAndMarksRead(t *testing.T) {
	backend := newScriptedBackend(domain.Message{ID: 1, BookingID: 7, Content: "hello"})
	clock := newFakeClock()
	th := NewThreadWithClock(backend, noopSession{}, 7, 5*time.Second, clock)

	th.Open(context.Background())
	defer th.Close()
	backend.awaitList(t)

	require.Eventually(t, func() bool {
		return len(th.Messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "hello", th.Messages()[0].Content)
	assert.True(t, th.Active())

	require.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return backend.markCalls > 0
	}, 2*time.Second, 10*time.Millisecond, "opening the thread flags unread messages read")
}

func TestThreadPollsOnTick(t *testing.T) {
	backend := newScriptedBackend()
	clock := newFakeClock()
	th := NewThreadWithClock(backend, noopSession{}, 7, 5*time.Second, clock)

	th.Open(context.Background())
	defer th.Close()
	backend.awaitList(t)

	backend.mu.Lock()
	backend.messages = append(backend.messages, domain.Message{ID: 2, BookingID: 7, Content: "new"})
	backend.mu.Unlock()

	clock.ticker.ch <- time.Now()
	backend.awaitList(t)

	require.Eventually(t, func() bool {
		return len(th.Messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestThreadFailedCycleKeepsPriorView(t *testing.T) {
	backend := newScriptedBackend(domain.Message{ID: 1, BookingID: 7, Content: "kept"})
	clock := newFakeClock()
	th := NewThreadWithClock(backend, noopSession{}, 7, 5*time.Second, clock)

	th.Open(context.Background())
	defer th.Close()
	backend.awaitList(t)
	require.Eventually(t, func() bool { return len(th.Messages()) == 1 }, 2*time.Second, 10*time.Millisecond)

	backend.setListErr(&api.NetworkError{Err: assert.AnError})
	clock.ticker.ch <- time.Now()
	backend.awaitList(t)

	assert.Len(t, th.Messages(), 1, "failed cycle is skipped, not rendered")
	assert.Equal(t, "kept", th.Messages()[0].Content)
}

func TestThreadSendRefreshesImmediately(t *testing.T) {
	backend := newScriptedBackend()
	clock := newFakeClock()
	th := NewThreadWithClock(backend, noopSession{}, 7, 5*time.Second, clock)

	th.Open(context.Background())
	defer th.Close()
	backend.awaitList(t)

	require.NoError(t, th.Send(context.Background(), "ping"))
	backend.awaitList(t) // the post-send refresh, no tick needed

	require.Eventually(t, func() bool {
		return len(th.Messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "ping", th.Messages()[0].Content)
}

func TestThreadCloseStopsPolling(t *testing.T) {
	backend := newScriptedBackend()
	clock := newFakeClock()
	th := NewThreadWithClock(backend, noopSession{}, 7, 5*time.Second, clock)

	th.Open(context.Background())
	backend.awaitList(t)
	th.Close()

	assert.False(t, th.Active())
	assert.NotPanics(t, th.Close, "closing twice is safe")
}

func TestThreadIdleTracking(t *testing.T) {
	backend := newScriptedBackend()
	th := NewThreadWithClock(backend, noopSession{}, 7, 5*time.Second, newFakeClock())

	before := th.IdleSince()
	time.Sleep(10 * time.Millisecond)
	th.Touch()
	assert.True(t, th.IdleSince().After(before))
}
