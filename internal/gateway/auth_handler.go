package gateway

import (
	"net/http"

	"mattter-gateway/internal/api"
	"mattter-gateway/internal/domain"
	"mattter-gateway/internal/guard"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionView struct {
	Status string             `json:"status"`
	User   *domain.UserRecord `json:"user,omitempty"`
	Home   string             `json:"home,omitempty"`
}

// handleLogin signs the user in and answers with the screen they land on.
// Staff accounts land on the admin panel regardless of their marketplace
// role; everyone else lands on their role's home screen.
func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := g.sess.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if g.metrics != nil {
			g.metrics.SessionLoginsTotal.WithLabelValues("failure").Inc()
		}
		g.writeError(w, err)
		return
	}
	if g.metrics != nil {
		g.metrics.SessionLoginsTotal.WithLabelValues("success").Inc()
	}

	redirect := domain.HomeRoute(user.Role)
	if next := r.URL.Query().Get("next"); next != "" && next[0] == '/' {
		redirect = next
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":     user,
		"redirect": redirect,
	})
}

func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := g.sess.Register(r.Context(), req)
	if err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":     user,
		"redirect": domain.HomeRoute(user.Role),
	})
}

// handleLogout clears the session and tears down every polling channel.
// Logging out twice is fine.
func (g *Gateway) handleLogout(w http.ResponseWriter, r *http.Request) {
	g.threads.CloseAll()
	g.sess.Logout()
	if g.metrics != nil {
		g.metrics.SessionLogoutsTotal.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": guard.LoginRoute})
}

// handleSession reports the resolved session so a screen can decide what to
// draw without triggering the guard.
func (g *Gateway) handleSession(w http.ResponseWriter, r *http.Request) {
	view := sessionView{Status: string(g.sess.Status())}
	if u := g.sess.User(); u != nil {
		view.User = u
		view.Home = domain.HomeRoute(u.Role)
	}
	writeJSON(w, http.StatusOK, view)
}
