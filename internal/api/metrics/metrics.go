// Package metrics defines and registers all custom Prometheus metrics for the
// Keycloak plugins API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation through promauto.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "keycloak_plugins"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - api: "admin" or "shop"
//   - result: "success", "denied" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by API and result.",
	},
	[]string{"api", "result"},
)

// ── Provisioning metrics ──────────────────────────────────────────────────────

// PromotionsTotal counts administrator promotions.
// Label:
//   - result: "success" or "failure"
var PromotionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "administrator_promotions_total",
		Help:      "Total number of administrator promotions, by result.",
	},
	[]string{"result"},
)

// VendorsProvisionedTotal counts provisioning runs.
// Label:
//   - result: "success" or the name of the step that aborted the run
var VendorsProvisionedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vendors_provisioned_total",
		Help:      "Total number of vendor provisioning runs, by result.",
	},
	[]string{"result"},
)

// ProvisioningStepsTotal counts executed provisioning steps.
// Labels:
//   - step: e.g. "seller", "channel", "roles"
//   - outcome: "completed", "skipped" or "failed"
var ProvisioningStepsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provisioning_steps_total",
		Help:      "Total number of vendor provisioning steps executed, by step and outcome.",
	},
	[]string{"step", "outcome"},
)

// ProvisioningStepDuration measures how long each provisioning step takes.
var ProvisioningStepDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provisioning_step_duration_seconds",
		Help:      "Duration of a single vendor provisioning step.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"step"},
)

// StepRecorder feeds provisioning step outcomes into the metrics above.
type StepRecorder struct{}

func (StepRecorder) StepFinished(step, outcome string, elapsed time.Duration) {
	ProvisioningStepsTotal.WithLabelValues(step, outcome).Inc()
	ProvisioningStepDuration.WithLabelValues(step).Observe(elapsed.Seconds())
}
