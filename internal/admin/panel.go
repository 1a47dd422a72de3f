// Package admin is the moderation panel client: aggregate user tables,
// per-user drill-down, and confirmed user removal.
package admin

import (
	"context"
	"sync"

	"mattter-gateway/internal/api"
	"mattter-gateway/internal/logger"
)

// Backend is the slice of the API client the panel depends on.
type Backend interface {
	FetchAdminDashboard(ctx context.Context) (api.AdminDashboard, error)
	FetchAdminUserDetail(ctx context.Context, userID int32) (api.AdminUserDetail, error)
	DeleteUser(ctx context.Context, userID int32) error
}

// SessionContext forces logout when the token is rejected.
type SessionContext interface {
	ResolveAuthFailure(err error) bool
}

// Panel caches the dashboard tables so a failed refresh keeps the prior
// data on screen.
type Panel struct {
	backend Backend
	sess    SessionContext

	mu   sync.Mutex
	dash api.AdminDashboard
}

func NewPanel(backend Backend, sess SessionContext) *Panel {
	return &Panel{backend: backend, sess: sess}
}

// Refresh reloads the dashboard tables.
func (p *Panel) Refresh(ctx context.Context) error {
	dash, err := p.backend.FetchAdminDashboard(ctx)
	if err != nil {
		p.sess.ResolveAuthFailure(err)
		return err
	}
	p.mu.Lock()
	p.dash = dash
	p.mu.Unlock()
	return nil
}

// Dashboard returns the cached tables.
func (p *Panel) Dashboard() api.AdminDashboard {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dash
}

// UserDetail loads the drill-down for one user. A user deleted since the
// last refresh is pruned locally and reported as not found.
func (p *Panel) UserDetail(ctx context.Context, userID int32) (api.AdminUserDetail, error) {
	detail, err := p.backend.FetchAdminUserDetail(ctx, userID)
	if err != nil {
		p.sess.ResolveAuthFailure(err)
		if api.IsNotFound(err) {
			p.prune(userID)
		}
		return api.AdminUserDetail{}, err
	}
	return detail, nil
}

// RemoveUser permanently deletes an account. The confirmed flag must come
// from an explicit confirmation step naming the target. A target already
// gone upstream is treated as a local no-op removal.
func (p *Panel) RemoveUser(ctx context.Context, userID int32, confirmed bool) error {
	if !confirmed {
		return &api.ValidationError{Reason: "user removal requires explicit confirmation"}
	}
	if err := p.backend.DeleteUser(ctx, userID); err != nil {
		if p.sess.ResolveAuthFailure(err) {
			return err
		}
		if api.IsNotFound(err) {
			logger.Info("user already deleted upstream", "user_id", userID)
			p.prune(userID)
			return nil
		}
		return err
	}
	p.prune(userID)
	return nil
}

func (p *Panel) prune(userID int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dash.Catalysts = dropUser(p.dash.Catalysts, userID)
	p.dash.Seekers = dropUser(p.dash.Seekers, userID)
}

func dropUser(list []api.AdminUserSummary, userID int32) []api.AdminUserSummary {
	out := list[:0]
	for _, u := range list {
		if u.UserID != userID {
			out = append(out, u)
		}
	}
	return out
}
