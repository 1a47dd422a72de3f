package gateway

import (
	"net/http"

	"mattter-gateway/internal/domain"
)

// handleGetPreferences loads the editable preferences from the backend.
// On a load failure the last known snapshot is returned.
func (g *Gateway) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	stale := false
	if err := g.prefs.Load(r.Context()); err != nil {
		stale = true
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"preferences": g.prefs.Current(),
		"stale":       stale,
	})
}

type updatePreferencesRequest struct {
	ServiceScope      domain.ServiceScope `json:"service_scope"`
	ServicesSelected  []string            `json:"services_selected"`
	ConsultationTypes []string            `json:"consultation_type"`
	BudgetCatalyst    string              `json:"budget_catalyst"`
	BudgetPersonal    string              `json:"budget_personal"`
}

// handleUpdatePreferences applies an edit and saves it. Scope changes go
// through the scope rule, which forces the service list for the scopes
// that lock it; hand-picked services are only honored under a free scope.
func (g *Gateway) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req updatePreferencesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.ServiceScope != "" {
		if err := g.prefs.SetScope(req.ServiceScope); err != nil {
			g.writeError(w, err)
			return
		}
	}
	if !g.prefs.Current().ScopeLocksServices() {
		for _, svc := range diffServices(g.prefs.Current().ServicesSelected, req.ServicesSelected) {
			if err := g.prefs.ToggleService(svc); err != nil {
				g.writeError(w, err)
				return
			}
		}
	}
	if req.ConsultationTypes != nil {
		g.prefs.SetConsultationTypes(req.ConsultationTypes)
	}
	if req.BudgetCatalyst != "" || req.BudgetPersonal != "" {
		cur := g.prefs.Current()
		catalyst, personal := cur.BudgetCatalyst, cur.BudgetPersonal
		if req.BudgetCatalyst != "" {
			catalyst = req.BudgetCatalyst
		}
		if req.BudgetPersonal != "" {
			personal = req.BudgetPersonal
		}
		g.prefs.SetBudgets(catalyst, personal)
	}

	if err := g.prefs.Save(r.Context()); err != nil {
		g.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preferences": g.prefs.Current()})
}

// diffServices returns the services present in exactly one of the lists,
// which is the set of toggles turning current into wanted.
func diffServices(current, wanted []string) []string {
	seen := make(map[string]int, len(current)+len(wanted))
	for _, s := range current {
		seen[s]++
	}
	for _, s := range wanted {
		seen[s] += 2
	}
	var toggles []string
	for s, mark := range seen {
		if mark == 1 || mark == 2 {
			toggles = append(toggles, s)
		}
	}
	return toggles
}
