package gateway

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func userIDFrom(w http.ResponseWriter, r *http.Request) (int32, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return 0, false
	}
	return int32(id), true
}

func (g *Gateway) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	if err := g.admin.Refresh(r.Context()); err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.admin.Dashboard())
}

func (g *Gateway) handleAdminUserDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	detail, err := g.admin.UserDetail(r.Context(), id)
	if err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleAdminRemoveUser deletes an account and everything attached to it.
// Like booking removal, the confirm parameter stands in for the dialog.
func (g *Gateway) handleAdminRemoveUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := g.admin.RemoveUser(r.Context(), id, confirmed); err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.admin.Dashboard())
}
