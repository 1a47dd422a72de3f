package gateway

import (
	"net/http"

	"github.com/gorilla/mux"

	"mattter-gateway/internal/domain"
)

// Router builds the route table. Screen routes carry the guard with the
// roles the original navigation enforced; the auth routes and health
// endpoints are open.
func (g *Gateway) Router() *mux.Router {
	r := mux.NewRouter()

	// Session lifecycle.
	r.HandleFunc("/login", g.instrument("/login", g.handleLogin)).Methods(http.MethodPost)
	r.HandleFunc("/register", g.instrument("/register", g.handleRegister)).Methods(http.MethodPost)
	r.HandleFunc("/logout", g.instrument("/logout", g.handleLogout)).Methods(http.MethodPost)
	r.HandleFunc("/session", g.instrument("/session", g.handleSession)).Methods(http.MethodGet)

	// Screens. Any signed-in role may land on "/", which forwards to the
	// role's own home. Wrong-role visits bounce there too, via the guard.
	r.HandleFunc("/", g.instrument("/", g.guarded(g.handleHome))).Methods(http.MethodGet)
	r.HandleFunc("/seeker", g.instrument("/seeker", g.guarded(g.handleSeekerScreen, domain.RoleSeeker))).Methods(http.MethodGet)
	r.HandleFunc("/catalyst", g.instrument("/catalyst", g.guarded(g.handleCatalystScreen, domain.RoleCatalyst))).Methods(http.MethodGet)
	r.HandleFunc("/admin", g.instrument("/admin", g.guarded(g.handleAdminScreen, domain.RoleAdmin))).Methods(http.MethodGet)

	// Profile.
	r.HandleFunc("/profile", g.instrument("/profile", g.guarded(g.handleGetProfile))).Methods(http.MethodGet)
	r.HandleFunc("/profile", g.instrument("/profile", g.guarded(g.handleUpdateProfile))).Methods(http.MethodPatch)
	r.HandleFunc("/catalysts/{id:[0-9]+}", g.instrument("/catalysts/{id}", g.guarded(g.handleCatalystProfile, domain.RoleSeeker))).Methods(http.MethodGet)

	// Bookings.
	r.HandleFunc("/bookings", g.instrument("/bookings", g.guarded(g.handleListBookings))).Methods(http.MethodGet)
	r.HandleFunc("/bookings", g.instrument("/bookings", g.guarded(g.handleCreateBooking, domain.RoleSeeker))).Methods(http.MethodPost)
	r.HandleFunc("/bookings/outstanding", g.instrument("/bookings/outstanding", g.guarded(g.handleOutstanding, domain.RoleSeeker))).Methods(http.MethodGet)
	r.HandleFunc("/bookings/{id:[0-9]+}/accept", g.instrument("/bookings/{id}/accept", g.guarded(g.handleAcceptBooking, domain.RoleCatalyst))).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id:[0-9]+}/reject", g.instrument("/bookings/{id}/reject", g.guarded(g.handleRejectBooking, domain.RoleCatalyst))).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id:[0-9]+}/complete", g.instrument("/bookings/{id}/complete", g.guarded(g.handleCompleteBooking))).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id:[0-9]+}/reopen", g.instrument("/bookings/{id}/reopen", g.guarded(g.handleReopenBooking))).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id:[0-9]+}", g.instrument("/bookings/{id}", g.guarded(g.handleRemoveBooking))).Methods(http.MethodDelete)

	// Messaging.
	r.HandleFunc("/bookings/{id:[0-9]+}/messages", g.instrument("/bookings/{id}/messages", g.guarded(g.handleOpenThread))).Methods(http.MethodGet)
	r.HandleFunc("/bookings/{id:[0-9]+}/messages", g.instrument("/bookings/{id}/messages", g.guarded(g.handleSendMessage))).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id:[0-9]+}/messages", g.instrument("/bookings/{id}/messages", g.guarded(g.handleCloseThread))).Methods(http.MethodDelete)

	// Preferences.
	r.HandleFunc("/preferences", g.instrument("/preferences", g.guarded(g.handleGetPreferences, domain.RoleSeeker))).Methods(http.MethodGet)
	r.HandleFunc("/preferences", g.instrument("/preferences", g.guarded(g.handleUpdatePreferences, domain.RoleSeeker))).Methods(http.MethodPut)

	// Admin panel.
	r.HandleFunc("/admin/users", g.instrument("/admin/users", g.guarded(g.handleAdminDashboard, domain.RoleAdmin))).Methods(http.MethodGet)
	r.HandleFunc("/admin/users/{id:[0-9]+}", g.instrument("/admin/users/{id}", g.guarded(g.handleAdminUserDetail, domain.RoleAdmin))).Methods(http.MethodGet)
	r.HandleFunc("/admin/users/{id:[0-9]+}", g.instrument("/admin/users/{id}", g.guarded(g.handleAdminRemoveUser, domain.RoleAdmin))).Methods(http.MethodDelete)

	// Operational endpoints.
	if g.metrics != nil {
		r.Handle("/metrics", g.metrics.Handler()).Methods(http.MethodGet)
	}
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return r
}
