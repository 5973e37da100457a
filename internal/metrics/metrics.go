// Package metrics holds the Prometheus counters exported on /metrics.
//
// A nil *Metrics is valid and records nothing, so packages can take one
// without forcing their tests to build a registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "newsletter"

// Delivery outcomes used as the "outcome" label of deliveries_total.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeQueued  = "queued"
	OutcomeSkipped = "skipped"
)

type Metrics struct {
	registry *prometheus.Registry

	subscriptionsCreated   prometheus.Counter
	subscriptionsConfirmed prometheus.Counter
	confirmationEmails     *prometheus.CounterVec
	newslettersPublished   prometheus.Counter
	deliveries             *prometheus.CounterVec
	loginAttempts          *prometheus.CounterVec
}

// New registers every collector on a private registry together with the
// Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		subscriptionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_created_total",
			Help:      "Subscriptions stored with status pending_confirmation.",
		}),
		subscriptionsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_confirmed_total",
			Help:      "Subscriptions confirmed through an emailed token.",
		}),
		confirmationEmails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "confirmation_emails_total",
			Help:      "Confirmation emails by outcome.",
		}, []string{"outcome"}),
		newslettersPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "newsletters_published_total",
			Help:      "Newsletter issues accepted for delivery.",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Newsletter issue deliveries by outcome.",
		}, []string{"outcome"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Credential checks by result.",
		}, []string{"result"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.subscriptionsCreated,
		m.subscriptionsConfirmed,
		m.confirmationEmails,
		m.newslettersPublished,
		m.deliveries,
		m.loginAttempts,
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) SubscriptionCreated() {
	if m == nil {
		return
	}
	m.subscriptionsCreated.Inc()
}

func (m *Metrics) SubscriptionConfirmed() {
	if m == nil {
		return
	}
	m.subscriptionsConfirmed.Inc()
}

func (m *Metrics) ConfirmationEmail(outcome string) {
	if m == nil {
		return
	}
	m.confirmationEmails.WithLabelValues(outcome).Inc()
}

func (m *Metrics) NewsletterPublished() {
	if m == nil {
		return
	}
	m.newslettersPublished.Inc()
}

func (m *Metrics) Delivery(outcome string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(outcome).Inc()
}

// LoginAttempt records a credential check; success selects the label.
func (m *Metrics) LoginAttempt(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.loginAttempts.WithLabelValues(result).Inc()
}
