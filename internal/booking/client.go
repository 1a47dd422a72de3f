// Package booking mediates the booking state machine against the remote
// API, keeping the local list views (incoming requests, matched, pending)
// consistent. The server stays authoritative for every transition; local
// checks exist only to gate UI affordances and to keep late or duplicate
// responses from corrupting view state.
package booking

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"mattter-gateway/internal/api"
	"mattter-gateway/internal/domain"
	"mattter-gateway/internal/logger"
)

// Backend is the slice of the API client the lifecycle client depends on.
type Backend interface {
	ListBookings(ctx context.Context, statuses ...domain.BookingStatus) ([]domain.Booking, error)
	CreateBooking(ctx context.Context, catalystID int32, notes string, prefs domain.PreferenceSnapshot) (domain.Booking, error)
	AcceptBooking(ctx context.Context, id int32) (domain.Booking, error)
	RejectBooking(ctx context.Context, id int32) (domain.Booking, error)
	SetBookingStatus(ctx context.Context, id int32, status domain.BookingStatus) (domain.Booking, error)
	DeleteBooking(ctx context.Context, id int32) error
	FetchPreferences(ctx context.Context) (domain.PreferenceSnapshot, error)
}

// SessionContext is what the client needs from the session: the resolved
// user for role checks, and the auth-failure hook that forces logout.
type SessionContext interface {
	User() *domain.UserRecord
	ResolveAuthFailure(err error) bool
}

// Client holds the booking view state for one signed-in user. The
// "requested" list is the incoming-requests view for a catalyst and the
// pending-requests view for a seeker; "matched" holds CONFIRMED and
// COMPLETED bookings for either side.
type Client struct {
	backend Backend
	sess    SessionContext

	mu        sync.Mutex
	requested []domain.Booking
	matched   []domain.Booking
	inflight  map[int32]bool
}

func NewClient(backend Backend, sess SessionContext) *Client {
	return &Client{
		backend:  backend,
		sess:     sess,
		inflight: make(map[int32]bool),
	}
}

// Refresh re-synchronizes both views from the server, fetching the
// requested and matched lists concurrently. A failed fetch leaves the
// previously rendered data in place.
func (c *Client) Refresh(ctx context.Context) error {
	var requested, matched []domain.Booking
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := c.backend.ListBookings(gctx, domain.BookingStatusRequested)
		if err != nil {
			return err
		}
		requested = list
		return nil
	})
	g.Go(func() error {
		list, err := c.backend.ListBookings(gctx, domain.BookingStatusConfirmed, domain.BookingStatusCompleted)
		if err != nil {
			return err
		}
		matched = list
		return nil
	})
	if err := g.Wait(); err != nil {
		c.sess.ResolveAuthFailure(err)
		return err
	}

	c.mu.Lock()
	c.requested = requested
	c.matched = matched
	c.mu.Unlock()
	return nil
}

// Requested returns the REQUESTED view: incoming requests for a catalyst,
// pending requests for a seeker.
func (c *Client) Requested() []domain.Booking {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Booking(nil), c.requested...)
}

// Matched returns the CONFIRMED/COMPLETED view.
func (c *Client) Matched() []domain.Booking {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Booking(nil), c.matched...)
}

// ActionInFlight reports whether an action on this booking id is currently
// outstanding; screens disable the booking's buttons while it is.
func (c *Client) ActionInFlight(id int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight[id]
}

// OutstandingFor reports whether an active booking with the given catalyst
// already exists locally. Best-effort: the send-request affordance is
// suppressed while one is outstanding, but the server remains the source
// of truth on duplicates.
func (c *Client) OutstandingFor(catalystID int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.requested {
		if b.Catalyst.ID == catalystID {
			return true
		}
	}
	for _, b := range c.matched {
		if b.Catalyst.ID == catalystID {
			return true
		}
	}
	return false
}

// CreateRequest sends a new booking request to a catalyst. Empty notes are
// rejected locally before any network call. The seeker's current preference
// snapshot is attached best-effort: a failed preference fetch degrades to an
// empty snapshot rather than blocking the request.
func (c *Client) CreateRequest(ctx context.Context, catalystID int32, notes string) (domain.Booking, error) {
	if notes == "" {
		return domain.Booking{}, &api.ValidationError{Field: "notes", Reason: "a message to the catalyst is required"}
	}
	if u := c.sess.User(); u != nil && u.Role != domain.RoleSeeker {
		return domain.Booking{}, &api.ValidationError{Reason: "only seekers can send booking requests"}
	}
	if c.OutstandingFor(catalystID) {
		return domain.Booking{}, &api.ValidationError{Reason: "a request with this catalyst is already outstanding"}
	}

	prefs, err := c.backend.FetchPreferences(ctx)
	if err != nil {
		logger.Warn("preference fetch failed, sending request without snapshot", "error", err)
		prefs = domain.PreferenceSnapshot{}
	}

	created, err := c.backend.CreateBooking(ctx, catalystID, notes, prefs)
	if err != nil {
		c.sess.ResolveAuthFailure(err)
		return domain.Booking{}, err
	}

	c.mu.Lock()
	c.requested = append(c.requested, created)
	c.mu.Unlock()
	return created, nil
}

// Accept confirms an incoming request. Valid only from REQUESTED; a booking
// locally known to be elsewhere in the lifecycle is rejected before the
// network call.
func (c *Client) Accept(ctx context.Context, id int32) error {
	if err := c.requireLocalStatus(id, domain.BookingStatusRequested); err != nil {
		return err
	}
	release, err := c.beginAction(id)
	if err != nil {
		return err
	}
	defer release()

	updated, err := c.backend.AcceptBooking(ctx, id)
	if err != nil {
		return c.reconcileFailure(id, err)
	}
	c.applyConfirmed(id, updated)
	return nil
}

// Reject declines an incoming request. Valid only from REQUESTED. On
// success the booking leaves the active set.
func (c *Client) Reject(ctx context.Context, id int32) error {
	if err := c.requireLocalStatus(id, domain.BookingStatusRequested); err != nil {
		return err
	}
	release, err := c.beginAction(id)
	if err != nil {
		return err
	}
	defer release()

	if _, err := c.backend.RejectBooking(ctx, id); err != nil {
		return c.reconcileFailure(id, err)
	}
	c.removeLocal(id)
	return nil
}

// Complete marks a confirmed booking as completed, in place. A booking not
// locally CONFIRMED is rejected; the status is never silently advanced.
func (c *Client) Complete(ctx context.Context, id int32) error {
	if err := c.requireLocalStatus(id, domain.BookingStatusConfirmed); err != nil {
		return err
	}
	return c.patchStatus(ctx, id, domain.BookingStatusCompleted)
}

// Reopen moves a completed booking back to confirmed.
func (c *Client) Reopen(ctx context.Context, id int32) error {
	if err := c.requireLocalStatus(id, domain.BookingStatusCompleted); err != nil {
		return err
	}
	return c.patchStatus(ctx, id, domain.BookingStatusConfirmed)
}

func (c *Client) patchStatus(ctx context.Context, id int32, status domain.BookingStatus) error {
	release, err := c.beginAction(id)
	if err != nil {
		return err
	}
	defer release()

	updated, err := c.backend.SetBookingStatus(ctx, id, status)
	if err != nil {
		return c.reconcileFailure(id, err)
	}
	c.setLocalStatus(id, updated, status)
	return nil
}

// Remove deletes a booking from whichever view holds it. Irreversible, so
// the confirmed flag must come from an explicit user confirmation step.
func (c *Client) Remove(ctx context.Context, id int32, confirmed bool) error {
	if !confirmed {
		return &api.ValidationError{Reason: "removal requires explicit confirmation"}
	}
	release, err := c.beginAction(id)
	if err != nil {
		return err
	}
	defer release()

	if err := c.backend.DeleteBooking(ctx, id); err != nil {
		return c.reconcileFailure(id, err)
	}
	c.removeLocal(id)
	return nil
}

// requireLocalStatus gates an action on the locally known status. Unknown
// ids pass through: the view may simply be stale, and the server will
// validate anyway.
func (c *Client) requireLocalStatus(id int32, want domain.BookingStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.findLocked(id)
	if !ok {
		return nil
	}
	if b.Status != want {
		return &api.ValidationError{
			Field:  "status",
			Reason: "booking is " + string(b.Status) + ", expected " + string(want),
		}
	}
	return nil
}

// beginAction marks an id in flight so a second interaction on the same
// booking is refused while the first is unresolved. This is what keeps the
// delayed-response interleaving from producing two terminal states.
func (c *Client) beginAction(id int32) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[id] {
		return nil, &api.ValidationError{Reason: "an action on this booking is already in flight"}
	}
	c.inflight[id] = true
	return func() {
		c.mu.Lock()
		delete(c.inflight, id)
		c.mu.Unlock()
	}, nil
}

// reconcileFailure maps an action failure onto local state: auth failures
// clear the session, a NotFound means the entity is gone upstream and is
// dropped from local view as a no-op, everything else leaves state alone
// and surfaces the error.
func (c *Client) reconcileFailure(id int32, err error) error {
	if c.sess.ResolveAuthFailure(err) {
		return err
	}
	if api.IsNotFound(err) {
		c.removeLocal(id)
		return nil
	}
	return err
}

// applyConfirmed moves a booking into the matched view. A response arriving
// after the booking was removed locally is a no-op; the move is
// remove-then-add so the entity can never appear in two views at once.
func (c *Client) applyConfirmed(id int32, updated domain.Booking) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prior, ok := c.findLocked(id)
	if !ok {
		return
	}
	c.removeLocked(id)
	b := updated
	if b.ID == 0 {
		b = prior
	}
	b.Status = domain.BookingStatusConfirmed
	c.matched = append(c.matched, b)
}

func (c *Client) setLocalStatus(id int32, updated domain.Booking, status domain.BookingStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.matched {
		if c.matched[i].ID == id {
			if updated.ID != 0 {
				c.matched[i] = updated
			}
			c.matched[i].Status = status
			return
		}
	}
}

func (c *Client) removeLocal(id int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(id)
}

func (c *Client) removeLocked(id int32) {
	c.requested = dropID(c.requested, id)
	c.matched = dropID(c.matched, id)
}

func (c *Client) findLocked(id int32) (domain.Booking, bool) {
	for _, b := range c.requested {
		if b.ID == id {
			return b, true
		}
	}
	for _, b := range c.matched {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Booking{}, false
}

func dropID(list []domain.Booking, id int32) []domain.Booking {
	out := list[:0]
	for _, b := range list {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}
