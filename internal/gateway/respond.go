package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"mattter-gateway/internal/api"
	"mattter-gateway/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps the client error taxonomy onto HTTP statuses. Validation
// failures are the caller's to fix, auth failures send the session back to
// login, rejections echo the backend's reason, and network failures come
// back retryable.
func (g *Gateway) writeError(w http.ResponseWriter, err error) {
	var ve *api.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Reason, "field": ve.Field})
		return
	}
	var ae *api.AuthError
	if errors.As(err, &ae) {
		if g.metrics != nil {
			g.metrics.AuthFailuresTotal.Inc()
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": ae.Reason})
		return
	}
	var nf *api.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
		return
	}
	var sr *api.ServerRejection
	if errors.As(err, &sr) {
		status := sr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, map[string]string{"error": sr.Reason})
		return
	}
	if api.IsNetworkError(err) {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "backend unreachable, try again"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}
