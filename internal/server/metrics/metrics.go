// Package metrics collects and exposes Prometheus metrics for the auth
// service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts auth-flow outcomes.
type Collector struct {
	logins       *prometheus.CounterVec
	refreshes    *prometheus.CounterVec
	revocations  prometheus.Counter
	verification *prometheus.CounterVec
	resets       *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "passfort_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "passfort_refreshes_total",
			Help: "Refresh attempts by outcome.",
		}, []string{"outcome"}),
		revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "passfort_revocations_total",
			Help: "Explicit session revocations (logouts).",
		}),
		verification: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "passfort_verifications_total",
			Help: "Email verification redemptions by outcome.",
		}, []string{"outcome"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "passfort_resets_total",
			Help: "Password reset completions by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.logins,
		c.refreshes,
		c.revocations,
		c.verification,
		c.resets,
	)

	return c
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordLogin counts one login attempt.
func (c *Collector) RecordLogin(ok bool) { c.logins.WithLabelValues(outcome(ok)).Inc() }

// RecordRefresh counts one refresh attempt.
func (c *Collector) RecordRefresh(ok bool) { c.refreshes.WithLabelValues(outcome(ok)).Inc() }

// RecordRevocation counts one explicit logout.
func (c *Collector) RecordRevocation() { c.revocations.Inc() }

// RecordVerification counts one verification redemption.
func (c *Collector) RecordVerification(ok bool) { c.verification.WithLabelValues(outcome(ok)).Inc() }

// RecordReset counts one reset completion.
func (c *Collector) RecordReset(ok bool) { c.resets.WithLabelValues(outcome(ok)).Inc() }

// Handler returns the HTTP handler exposing the registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
