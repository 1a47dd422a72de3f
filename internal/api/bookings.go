package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"mattter-gateway/internal/domain"
)

// ListBookings fetches the caller's bookings, optionally filtered to a set
// of statuses (comma-joined upstream, e.g. CONFIRMED,COMPLETED).
func (c *Client) ListBookings(ctx context.Context, statuses ...domain.BookingStatus) ([]domain.Booking, error) {
	path := "/api/bookings/"
	if len(statuses) > 0 {
		parts := make([]string, len(statuses))
		for i, s := range statuses {
			parts[i] = string(s)
		}
		path += "?status=" + url.QueryEscape(strings.Join(parts, ","))
	}
	var bookings []domain.Booking
	if err := c.do(ctx, http.MethodGet, path, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CreateBooking sends a new request to a catalyst, attaching the seeker's
// preference snapshot for context.
func (c *Client) CreateBooking(ctx context.Context, catalystID int32, notes string, prefs domain.PreferenceSnapshot) (domain.Booking, error) {
	var created domain.Booking
	err := c.do(ctx, http.MethodPost, "/api/bookings/", map[string]any{
		"catalyst_id":        catalystID,
		"notes":              notes,
		"seeker_preferences": prefs,
	}, &created)
	if err != nil {
		return domain.Booking{}, err
	}
	return created, nil
}

type bookingEnvelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Booking domain.Booking `json:"booking"`
}

// AcceptBooking confirms a pending request (catalyst only).
func (c *Client) AcceptBooking(ctx context.Context, id int32) (domain.Booking, error) {
	return c.bookingAction(ctx, id, "accept_request")
}

// RejectBooking declines a pending request (catalyst only).
func (c *Client) RejectBooking(ctx context.Context, id int32) (domain.Booking, error) {
	return c.bookingAction(ctx, id, "reject_request")
}

func (c *Client) bookingAction(ctx context.Context, id int32, action string) (domain.Booking, error) {
	path := fmt.Sprintf("/api/bookings/%d/%s/", id, action)
	var env bookingEnvelope
	if err := c.do(ctx, http.MethodPost, path, nil, &env); err != nil {
		if IsNotFound(err) {
			return domain.Booking{}, &NotFoundError{Resource: "booking", ID: id}
		}
		return domain.Booking{}, err
	}
	return env.Booking, nil
}

// SetBookingStatus patches a booking's status directly; used for the
// complete and reopen transitions.
func (c *Client) SetBookingStatus(ctx context.Context, id int32, status domain.BookingStatus) (domain.Booking, error) {
	path := fmt.Sprintf("/api/bookings/%d/", id)
	var updated domain.Booking
	err := c.do(ctx, http.MethodPatch, path, map[string]string{"status": string(status)}, &updated)
	if err != nil {
		if IsNotFound(err) {
			return domain.Booking{}, &NotFoundError{Resource: "booking", ID: id}
		}
		return domain.Booking{}, err
	}
	return updated, nil
}

// DeleteBooking removes a booking from the active set. Irreversible; the
// caller must have collected an explicit confirmation first.
func (c *Client) DeleteBooking(ctx context.Context, id int32) error {
	path := fmt.Sprintf("/api/bookings/%d/delete_booking/", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		if IsNotFound(err) {
			return &NotFoundError{Resource: "booking", ID: id}
		}
		return err
	}
	return nil
}
