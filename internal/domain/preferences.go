package domain

type ServiceScope string

const (
	ScopeCompleteRebranding ServiceScope = "complete_rebranding"
	ScopeWardrobeOnly       ServiceScope = "wardrobe_only"
)

// AllServices is the fixed set a complete rebranding always selects.
var AllServices = []string{"body_fitness", "hair", "skincare", "nails", "hygiene", "wardrobe"}

var validConsultationTypes = map[string]bool{"physical": true, "online": true}

var validCatalystBudgets = map[string]bool{
	"free": true, "200-500": true, "500-1000": true,
	"1000-2000": true, "2000-5000": true, "5000+": true,
}

var validPersonalBudgets = map[string]bool{
	"200-1000": true, "1000-3000": true, "3000-5000": true,
	"5000-10000": true, "10000+": true,
}

// PreferenceSnapshot is a seeker's saved consultation/budget/service
// preferences. A copy is attached to every new booking request so the
// catalyst sees context.
type PreferenceSnapshot struct {
	ConsultationType []string     `json:"consultation_type"`
	ServiceScope     ServiceScope `json:"service_scope"`
	ServicesSelected []string     `json:"services_selected"`
	BudgetCatalyst   string       `json:"budget_catalyst"`
	BudgetPersonal   string       `json:"budget_personal"`
}

// WithScope returns a copy with the scope applied and the service set forced
// to match it: complete rebranding selects every service, wardrobe-only
// selects just the wardrobe. The forced set is not independently editable.
func (p PreferenceSnapshot) WithScope(scope ServiceScope) PreferenceSnapshot {
	p.ServiceScope = scope
	if scope == ScopeCompleteRebranding {
		p.ServicesSelected = append([]string(nil), AllServices...)
	} else {
		p.ServicesSelected = []string{"wardrobe"}
	}
	return p
}

// ScopeLocksServices reports whether the service set is display-only for the
// current scope.
func (p PreferenceSnapshot) ScopeLocksServices() bool {
	return p.ServiceScope == ScopeCompleteRebranding || p.ServiceScope == ScopeWardrobeOnly
}

// Validate mirrors the backend's preference validation so bad selections are
// caught before a network call.
func (p PreferenceSnapshot) Validate() error {
	for _, ct := range p.ConsultationType {
		if !validConsultationTypes[ct] {
			return &FieldError{Field: "consultation_type", Value: ct}
		}
	}
	if p.ServiceScope != "" && p.ServiceScope != ScopeCompleteRebranding && p.ServiceScope != ScopeWardrobeOnly {
		return &FieldError{Field: "service_scope", Value: string(p.ServiceScope)}
	}
	valid := make(map[string]bool, len(AllServices))
	for _, s := range AllServices {
		valid[s] = true
	}
	for _, s := range p.ServicesSelected {
		if !valid[s] {
			return &FieldError{Field: "services_selected", Value: s}
		}
	}
	if p.BudgetCatalyst != "" && !validCatalystBudgets[p.BudgetCatalyst] {
		return &FieldError{Field: "budget_catalyst", Value: p.BudgetCatalyst}
	}
	if p.BudgetPersonal != "" && !validPersonalBudgets[p.BudgetPersonal] {
		return &FieldError{Field: "budget_personal", Value: p.BudgetPersonal}
	}
	return nil
}

// FieldError reports an invalid preference selection.
type FieldError struct {
	Field string
	Value string
}

func (e *FieldError) Error() string {
	return "invalid value " + e.Value + " for " + e.Field
}
