package gateway

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mattter-gateway/internal/domain"
	"mattter-gateway/internal/guard"
	"mattter-gateway/internal/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument wraps a handler with request logging and Prometheus counters,
// keyed by the route template rather than the concrete path.
func (g *Gateway) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		elapsed := time.Since(start)
		if g.metrics != nil {
			g.metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			g.metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())
		}
		logger.Debug("request handled",
			"route", route,
			"method", r.Method,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds())
	}
}

// guarded applies the route guard before the handler runs. An unresolved
// session answers with a retryable loading page instead of guessing at a
// redirect; an anonymous session is sent to login with the requested
// location preserved; a role mismatch lands on the user's own home screen.
func (g *Gateway) guarded(next http.HandlerFunc, roles ...domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		outcome := guard.Decide(g.sess.Status(), g.sess.User(), roles, r.URL.Path)
		if g.metrics != nil {
			g.metrics.GuardDecisionsTotal.WithLabelValues(string(outcome.Action)).Inc()
		}

		switch outcome.Action {
		case guard.ActionSuspend:
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		case guard.ActionRedirect:
			location := outcome.Location
			if outcome.ReturnTo != "" {
				location += "?next=" + url.QueryEscape(outcome.ReturnTo)
			}
			http.Redirect(w, r, location, http.StatusSeeOther)
		default:
			next(w, r)
		}
	}
}
