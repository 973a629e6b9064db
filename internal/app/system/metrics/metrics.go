// Package metrics holds the Prometheus collectors for asset workflow and
// scheduling outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assetflow",
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "Asset workflow operations by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assetflow",
			Subsystem: "schedule",
			Name:      "reservations_total",
			Help:      "Reservation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	availabilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assetflow",
			Subsystem: "schedule",
			Name:      "availability_checks_total",
			Help:      "Availability checks by result.",
		},
		[]string{"available"},
	)

	accessDenials = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "assetflow",
			Subsystem: "access",
			Name:      "denials_total",
			Help:      "Requests denied by the team access gate.",
		},
	)
)

func init() {
	Registry.MustRegister(
		transitions,
		reservations,
		availabilityChecks,
		accessDenials,
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordTransition counts a workflow operation. outcome is "ok" or an
// error kind.
func RecordTransition(action, outcome string) {
	transitions.WithLabelValues(action, outcome).Inc()
}

// RecordReservation counts a reservation attempt.
func RecordReservation(outcome string) {
	reservations.WithLabelValues(outcome).Inc()
}

// RecordAvailability counts an availability check.
func RecordAvailability(available bool) {
	label := "false"
	if available {
		label = "true"
	}
	availabilityChecks.WithLabelValues(label).Inc()
}

// RecordAccessDenied counts an access gate denial.
func RecordAccessDenied() {
	accessDenials.Inc()
}
