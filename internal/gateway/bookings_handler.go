package gateway

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func bookingIDFrom(w http.ResponseWriter, r *http.Request) (int32, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid booking id"})
		return 0, false
	}
	return int32(id), true
}

// handleListBookings refreshes both booking views and returns them. A
// refresh failure still answers with the last known views so the screen
// does not blank out.
func (g *Gateway) handleListBookings(w http.ResponseWriter, r *http.Request) {
	stale := false
	if err := g.bookings.Refresh(r.Context()); err != nil {
		stale = true
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"requested": g.bookings.Requested(),
		"matched":   g.bookings.Matched(),
		"stale":     stale,
	})
}

type createBookingRequest struct {
	CatalystID int32  `json:"catalyst_id"`
	Notes      string `json:"notes"`
}

func (g *Gateway) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// catalyst_id is a user id, not a profile id; no endpoint resolves a
	// profile by user id, so availability is checked on the catalyst view
	// before submitting and the backend has the final say here.
	created, err := g.bookings.CreateRequest(r.Context(), req.CatalystID, req.Notes)
	if err != nil {
		g.countBookingAction("create", err)
		g.writeError(w, err)
		return
	}
	g.countBookingAction("create", nil)
	writeJSON(w, http.StatusCreated, created)
}

func (g *Gateway) handleAcceptBooking(w http.ResponseWriter, r *http.Request) {
	g.bookingAction(w, r, "accept", g.bookings.Accept)
}

func (g *Gateway) handleRejectBooking(w http.ResponseWriter, r *http.Request) {
	g.bookingAction(w, r, "reject", g.bookings.Reject)
}

func (g *Gateway) handleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	g.bookingAction(w, r, "complete", g.bookings.Complete)
}

func (g *Gateway) handleReopenBooking(w http.ResponseWriter, r *http.Request) {
	g.bookingAction(w, r, "reopen", g.bookings.Reopen)
}

// handleRemoveBooking deletes a booking from history. The confirm query
// parameter stands in for the confirmation dialog; without it nothing is
// sent to the backend.
func (g *Gateway) handleRemoveBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingIDFrom(w, r)
	if !ok {
		return
	}
	confirmed := r.URL.Query().Get("confirm") == "true"

	if err := g.bookings.Remove(r.Context(), id, confirmed); err != nil {
		g.countBookingAction("remove", err)
		g.writeError(w, err)
		return
	}
	// The conversation outlives an unconfirmed or failed removal; only a
	// booking that is actually gone loses its polling channel.
	g.threads.Close(id)
	g.countBookingAction("remove", nil)
	writeJSON(w, http.StatusOK, map[string]any{
		"requested": g.bookings.Requested(),
		"matched":   g.bookings.Matched(),
	})
}

func (g *Gateway) bookingAction(w http.ResponseWriter, r *http.Request, name string, fn func(context.Context, int32) error) {
	id, ok := bookingIDFrom(w, r)
	if !ok {
		return
	}
	if err := fn(r.Context(), id); err != nil {
		g.countBookingAction(name, err)
		g.writeError(w, err)
		return
	}
	g.countBookingAction(name, nil)
	writeJSON(w, http.StatusOK, map[string]any{
		"requested": g.bookings.Requested(),
		"matched":   g.bookings.Matched(),
	})
}

func (g *Gateway) countBookingAction(action string, err error) {
	if g.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	g.metrics.BookingActionsTotal.WithLabelValues(action, outcome).Inc()
}

// handleOutstanding answers whether the seeker already has a live booking
// with the catalyst, used to disable the request button.
func (g *Gateway) handleOutstanding(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("catalyst_id")
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid catalyst id"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"outstanding": g.bookings.OutstandingFor(int32(id)),
	})
}
