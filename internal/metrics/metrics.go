// Package metrics provides Prometheus instrumentation for the lifecycle engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PassRunsTotal counts scheduled pass executions by pass name and result.
	PassRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zapdesk",
			Name:      "lifecycle_pass_runs_total",
			Help:      "Total lifecycle pass executions by pass and result.",
		},
		[]string{"pass", "result"},
	)

	// PassDuration observes pass wall-clock time by pass name.
	PassDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zapdesk",
			Name:      "lifecycle_pass_duration_seconds",
			Help:      "Lifecycle pass duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"pass"},
	)

	// TenantsBlockedTotal counts tenant block transitions by reason.
	TenantsBlockedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zapdesk",
			Name:      "tenants_blocked_total",
			Help:      "Tenants transitioned to blocked, by reason.",
		},
		[]string{"reason"},
	)

	// TenantsPurgedTotal counts permanent tenant deletions.
	TenantsPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zapdesk",
			Name:      "tenants_purged_total",
			Help:      "Tenants permanently deleted by the sweeper.",
		},
	)

	// DowngradesTotal counts scheduled downgrade evaluations by outcome.
	DowngradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zapdesk",
			Name:      "downgrades_total",
			Help:      "Scheduled plan downgrades evaluated, by outcome (applied, rejected).",
		},
		[]string{"outcome"},
	)

	// NotificationsTotal counts notification sends by kind and result.
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zapdesk",
			Name:      "notifications_total",
			Help:      "Notification send attempts by kind and result (sent, deduped, failed).",
		},
		[]string{"kind", "result"},
	)

	// RenewalChargesTotal counts renewal charges created via the gateway.
	RenewalChargesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zapdesk",
			Name:      "renewal_charges_total",
			Help:      "Renewal charges created with the payment gateway.",
		},
	)

	// ProviderTeardownErrors counts WhatsApp instance teardown failures during purge.
	ProviderTeardownErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zapdesk",
			Name:      "provider_teardown_errors_total",
			Help:      "WhatsApp provider instance deletions that failed during tenant purge.",
		},
	)
)

// Register registers all collectors with the default registry.
// Call once at startup.
func Register() {
	prometheus.MustRegister(
		PassRunsTotal,
		PassDuration,
		TenantsBlockedTotal,
		TenantsPurgedTotal,
		DowngradesTotal,
		NotificationsTotal,
		RenewalChargesTotal,
		ProviderTeardownErrors,
	)
}
