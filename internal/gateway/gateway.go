// Package gateway is the local HTTP surface of the Mattter client: routes
// for the screens, a guard middleware enforcing render-vs-redirect, and
// JSON view models over the client core. It serves one signed-in user, the
// way the original single-page client did.
package gateway

import (
	"mattter-gateway/internal/admin"
	"mattter-gateway/internal/api"
	"mattter-gateway/internal/booking"
	"mattter-gateway/internal/config"
	"mattter-gateway/internal/metrics"
	"mattter-gateway/internal/prefs"
	"mattter-gateway/internal/session"
)

// Gateway bundles the client core behind the HTTP surface.
type Gateway struct {
	cfg      *config.Config
	sess     *session.Store
	bookings *booking.Client
	prefs    *prefs.Manager
	admin    *admin.Panel
	threads  *ThreadRegistry
	metrics  *metrics.Metrics
	backend  *api.Client
}

// New wires the gateway. The session store is the only writer of persisted
// credentials; everything else reads session state through it.
func New(cfg *config.Config, sess *session.Store, backend *api.Client, m *metrics.Metrics) *Gateway {
	g := &Gateway{
		cfg:      cfg,
		sess:     sess,
		backend:  backend,
		metrics:  m,
		bookings: booking.NewClient(backend, sess),
		prefs:    prefs.NewManager(backend, sess),
		admin:    admin.NewPanel(backend, sess),
	}
	g.threads = NewThreadRegistry(backend, sess, cfg.MessageInterval(), cfg.ThreadIdleLimit(), m)
	return g
}

// Threads exposes the registry for the idle-pruning job.
func (g *Gateway) Threads() *ThreadRegistry {
	return g.threads
}

// Close stops every active polling channel.
func (g *Gateway) Close() {
	g.threads.CloseAll()
}
