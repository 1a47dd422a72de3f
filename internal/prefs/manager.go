// Package prefs owns the seeker's preference snapshot: the guided
// onboarding rules, the standalone editor semantics, and persistence
// against the backend.
package prefs

import (
	"context"
	"sync"

	"mattter-gateway/internal/api"
	"mattter-gateway/internal/domain"
)

// Backend is the slice of the API client the manager depends on.
type Backend interface {
	FetchPreferences(ctx context.Context) (domain.PreferenceSnapshot, error)
	UpdatePreferences(ctx context.Context, prefs domain.PreferenceSnapshot) (domain.PreferenceSnapshot, error)
}

// SessionContext forces logout when the token is rejected.
type SessionContext interface {
	ResolveAuthFailure(err error) bool
}

// Manager holds the working copy of the snapshot between edits and saves.
// A failed fetch or save keeps the prior local copy visible.
type Manager struct {
	backend Backend
	sess    SessionContext

	mu      sync.Mutex
	current domain.PreferenceSnapshot
}

func NewManager(backend Backend, sess SessionContext) *Manager {
	return &Manager{backend: backend, sess: sess}
}

// Load pulls the saved snapshot. On failure the prior local copy stays.
func (m *Manager) Load(ctx context.Context) error {
	snap, err := m.backend.FetchPreferences(ctx)
	if err != nil {
		m.sess.ResolveAuthFailure(err)
		return err
	}
	m.mu.Lock()
	m.current = snap
	m.mu.Unlock()
	return nil
}

// Current returns the working copy.
func (m *Manager) Current() domain.PreferenceSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// SetScope fixes the service scope, forcing the service set to match:
// complete rebranding selects all six services, wardrobe-only selects just
// the wardrobe.
func (m *Manager) SetScope(scope domain.ServiceScope) error {
	if scope != domain.ScopeCompleteRebranding && scope != domain.ScopeWardrobeOnly {
		return &api.ValidationError{Field: "service_scope", Reason: "unknown scope " + string(scope)}
	}
	m.mu.Lock()
	m.current = m.current.WithScope(scope)
	m.mu.Unlock()
	return nil
}

// ToggleService flips one service selection. While a scope is fixed the
// auto-selected set is display-only, so toggling is refused.
func (m *Manager) ToggleService(service string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.ScopeLocksServices() {
		return &api.ValidationError{Field: "services_selected", Reason: "service set is fixed by the selected scope"}
	}
	for i, s := range m.current.ServicesSelected {
		if s == service {
			m.current.ServicesSelected = append(m.current.ServicesSelected[:i], m.current.ServicesSelected[i+1:]...)
			return nil
		}
	}
	m.current.ServicesSelected = append(m.current.ServicesSelected, service)
	return nil
}

// SetConsultationTypes replaces the consultation-type selection.
func (m *Manager) SetConsultationTypes(types []string) {
	m.mu.Lock()
	m.current.ConsultationType = append([]string(nil), types...)
	m.mu.Unlock()
}

// SetBudgets replaces the budget buckets.
func (m *Manager) SetBudgets(catalyst, personal string) {
	m.mu.Lock()
	m.current.BudgetCatalyst = catalyst
	m.current.BudgetPersonal = personal
	m.mu.Unlock()
}

// Save validates and persists the working copy. Validation failures never
// reach the wire; a server failure keeps the prior local copy.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	working := m.current
	m.mu.Unlock()

	saved, err := m.backend.UpdatePreferences(ctx, working)
	if err != nil {
		m.sess.ResolveAuthFailure(err)
		return err
	}

	m.mu.Lock()
	m.current = saved
	m.mu.Unlock()
	return nil
}
