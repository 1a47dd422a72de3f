package gateway

import (
	"net/http"

	"mattter-gateway/internal/domain"
	"mattter-gateway/internal/logger"
)

// handleHome sends the signed-in user to their home screen. The guard has
// already bounced anonymous visitors to login.
func (g *Gateway) handleHome(w http.ResponseWriter, r *http.Request) {
	user := g.sess.User()
	http.Redirect(w, r, domain.HomeRoute(user.Role), http.StatusSeeOther)
}

// handleSeekerScreen is the seeker's view model: both booking lists plus
// the preference snapshot attached to new requests.
func (g *Gateway) handleSeekerScreen(w http.ResponseWriter, r *http.Request) {
	stale := g.bookings.Refresh(r.Context()) != nil
	if err := g.prefs.Load(r.Context()); err != nil {
		stale = true
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":        g.sess.User(),
		"requested":   g.bookings.Requested(),
		"matched":     g.bookings.Matched(),
		"preferences": g.prefs.Current(),
		"stale":       stale,
	})
}

// handleCatalystScreen is the catalyst's view model: incoming requests to
// accept or reject, and the matched bookings in progress.
func (g *Gateway) handleCatalystScreen(w http.ResponseWriter, r *http.Request) {
	stale := g.bookings.Refresh(r.Context()) != nil
	writeJSON(w, http.StatusOK, map[string]any{
		"user":     g.sess.User(),
		"incoming": g.bookings.Requested(),
		"matched":  g.bookings.Matched(),
		"stale":    stale,
	})
}

func (g *Gateway) handleAdminScreen(w http.ResponseWriter, r *http.Request) {
	if err := g.admin.Refresh(r.Context()); err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":      g.sess.User(),
		"dashboard": g.admin.Dashboard(),
	})
}

func (g *Gateway) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := g.backend.CurrentProfile(r.Context())
	if err != nil {
		g.sess.ResolveAuthFailure(err)
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleCatalystProfile is a catalyst's public profile as a seeker sees
// it, addressed by profile id. catalyst_id is the user id a booking
// request must carry, and can_request mirrors the availability flag so
// the caller knows up front whether a request would be refused.
func (g *Gateway) handleCatalystProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	profile, err := g.backend.FetchProfile(r.Context(), id)
	if err != nil {
		g.sess.ResolveAuthFailure(err)
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profile":     profile,
		"catalyst_id": profile.User.ID,
		"can_request": profile.IsActive,
	})
}

// handleUpdateProfile forwards a partial profile edit and refreshes the
// session's identity from the result, so a role change is reflected on the
// next guard decision.
func (g *Gateway) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if !decodeBody(w, r, &patch) {
		return
	}
	profile, err := g.backend.UpdateProfile(r.Context(), patch)
	if err != nil {
		g.sess.ResolveAuthFailure(err)
		g.writeError(w, err)
		return
	}
	if err := g.sess.RefreshIdentity(r.Context()); err != nil {
		logger.Debug("identity refresh after profile update failed", "error", err)
	}
	writeJSON(w, http.StatusOK, profile)
}
