package guard

import (
	"mattter-gateway/internal/domain"
	"mattter-gateway/internal/session"
)

const LoginRoute = "/login"

type Action string

const (
	// ActionRender means the requested screen may be shown.
	ActionRender Action = "RENDER"
	// ActionSuspend means session resolution is still in flight; show a
	// loading indicator and make no redirect decision yet.
	ActionSuspend Action = "SUSPEND"
	// ActionRedirect means navigate to Outcome.Location instead.
	ActionRedirect Action = "REDIRECT"
)

// Outcome is the guard's decision for one navigation.
type Outcome struct {
	Action   Action
	Location string
	// ReturnTo carries the originally requested location through a redirect
	// to login so it is not lost silently.
	ReturnTo string
}

// Decide is the route guard: a pure function over the session status, the
// resolved user, and the route's required roles. It is re-evaluated on every
// navigation and on every session state change. Loading is distinct from
// Anonymous: an unresolved session suspends, it never redirects.
func Decide(status session.Status, user *domain.UserRecord, requiredRoles []domain.Role, requested string) Outcome {
	if status == session.StatusLoading {
		return Outcome{Action: ActionSuspend}
	}
	if user == nil {
		return Outcome{Action: ActionRedirect, Location: LoginRoute, ReturnTo: requested}
	}
	if len(requiredRoles) > 0 && !roleAllowed(user.Role, requiredRoles) {
		return Outcome{Action: ActionRedirect, Location: domain.HomeRoute(user.Role)}
	}
	return Outcome{Action: ActionRender}
}

func roleAllowed(role domain.Role, allowed []domain.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
