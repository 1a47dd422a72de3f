// Package metrics registers the gateway's Prometheus collectors on a
// private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the Mattter gateway.
type Metrics struct {
	registry *prometheus.Registry

	// Local HTTP surface.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Guard decisions.
	GuardDecisionsTotal *prometheus.CounterVec

	// Session lifecycle.
	SessionLoginsTotal  *prometheus.CounterVec
	SessionLogoutsTotal prometheus.Counter
	AuthFailuresTotal   prometheus.Counter

	// Booking actions.
	BookingActionsTotal *prometheus.CounterVec

	// Polling channels.
	ActivePollers prometheus.Gauge
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mattter_gateway_http_requests_total",
			Help: "Requests handled by the local HTTP surface.",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mattter_gateway_http_request_duration_seconds",
			Help:    "Latency of local HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		GuardDecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mattter_gateway_guard_decisions_total",
			Help: "Route guard outcomes by action.",
		}, []string{"action"}),
		SessionLoginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mattter_gateway_session_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		SessionLogoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mattter_gateway_session_logouts_total",
			Help: "Explicit logouts.",
		}),
		AuthFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mattter_gateway_auth_failures_total",
			Help: "Upstream auth rejections that forced a logout.",
		}),
		BookingActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mattter_gateway_booking_actions_total",
			Help: "Booking lifecycle actions by kind and outcome.",
		}, []string{"action", "outcome"}),
		ActivePollers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mattter_gateway_active_pollers",
			Help: "Polling channels currently running.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GuardDecisionsTotal,
		m.SessionLoginsTotal,
		m.SessionLogoutsTotal,
		m.AuthFailuresTotal,
		m.BookingActionsTotal,
		m.ActivePollers,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
