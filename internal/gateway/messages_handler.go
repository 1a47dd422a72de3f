package gateway

import (
	"net/http"
)

// handleOpenThread opens (or revisits) the booking's conversation and
// returns the current message list. Opening starts the 5 second polling
// channel; repeated opens reuse the running one.
func (g *Gateway) handleOpenThread(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingIDFrom(w, r)
	if !ok {
		return
	}
	t := g.threads.Open(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"booking_id": id,
		"messages":   t.Messages(),
	})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (g *Gateway) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingIDFrom(w, r)
	if !ok {
		return
	}
	var req sendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t := g.threads.Open(id)
	if err := t.Send(r.Context(), req.Content); err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"booking_id": id,
		"messages":   t.Messages(),
	})
}

// handleCloseThread stops the booking's polling channel. Closing a thread
// that is not open is a no-op.
func (g *Gateway) handleCloseThread(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingIDFrom(w, r)
	if !ok {
		return
	}
	g.threads.Close(id)
	writeJSON(w, http.StatusOK, map[string]any{"booking_id": id, "closed": true})
}
