package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/rest"
)

// Reconcile result labels
const (
	resultSuccess       = "success"
	resultFailure       = "failure"
	resultObserveFailed = "observe_failed"
	resultError         = "error"
)

var (
	// Reconciliation metrics
	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flink_operator",
			Subsystem: "controller",
			Name:      "reconcile_total",
			Help:      "Total number of reconciliations by result",
		},
		[]string{"deployment", "result"},
	)

	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flink_operator",
			Subsystem: "controller",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliation in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"deployment"},
	)

	observeFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flink_operator",
			Subsystem: "controller",
			Name:      "observe_failures_total",
			Help:      "Total number of cycles skipped because the cluster could not be observed",
		},
		[]string{"deployment"},
	)

	// Cluster lifecycle metrics
	clusterSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flink_operator",
			Subsystem: "cluster",
			Name:      "submissions_total",
			Help:      "Total number of initial cluster submissions by mode",
		},
		[]string{"deployment", "mode"},
	)

	clusterUpgradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flink_operator",
			Subsystem: "cluster",
			Name:      "upgrades_total",
			Help:      "Total number of destructive cluster upgrades by mode",
		},
		[]string{"deployment", "mode"},
	)

	jobRunning = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "flink_operator",
			Subsystem: "job",
			Name:      "running",
			Help:      "Whether the job of an application deployment is running (1) or not (0)",
		},
		[]string{"deployment"},
	)
)

func init() {
	// Register metrics with controller-runtime's registry
	metrics.Registry.MustRegister(
		reconcileTotal,
		reconcileDuration,
		observeFailuresTotal,
		clusterSubmissionsTotal,
		clusterUpgradesTotal,
		jobRunning,
	)
}

// recordReconcileMetric records a reconciliation result.
func recordReconcileMetric(deployment, result string, duration float64) {
	reconcileTotal.WithLabelValues(deployment, result).Inc()
	reconcileDuration.WithLabelValues(deployment).Observe(duration)
}

// recordObserveFailureMetric records a skipped cycle.
func recordObserveFailureMetric(deployment string) {
	observeFailuresTotal.WithLabelValues(deployment).Inc()
}

// recordSubmissionMetric records an initial cluster submission.
func recordSubmissionMetric(deployment string, mode flinkv1alpha1.ClusterMode) {
	clusterSubmissionsTotal.WithLabelValues(deployment, string(mode)).Inc()
}

// recordUpgradeMetric records a destructive upgrade.
func recordUpgradeMetric(deployment string, mode flinkv1alpha1.ClusterMode) {
	clusterUpgradesTotal.WithLabelValues(deployment, string(mode)).Inc()
}

// recordJobRunningMetric records whether the job of d is running.
func recordJobRunningMetric(d *flinkv1alpha1.FlinkDeployment) {
	if d.Spec.Mode() != flinkv1alpha1.ClusterModeApplication {
		return
	}
	running := d.Status != nil && d.Status.JobStatus != nil && d.Status.JobStatus.State == rest.JobStateRunning
	if running {
		jobRunning.WithLabelValues(d.Name).Set(1)
	} else {
		jobRunning.WithLabelValues(d.Name).Set(0)
	}
}

// Metrics helper methods that check enableMetrics before recording.

func (r *FlinkDeploymentReconciler) recordReconcile(deployment, result string, duration float64) {
	if r.enableMetrics {
		recordReconcileMetric(deployment, result, duration)
	}
}

func (r *FlinkDeploymentReconciler) recordObserveFailure(deployment string) {
	if r.enableMetrics {
		recordObserveFailureMetric(deployment)
	}
}

func (r *FlinkDeploymentReconciler) recordSubmission(deployment string, mode flinkv1alpha1.ClusterMode) {
	if r.enableMetrics {
		recordSubmissionMetric(deployment, mode)
	}
}

func (r *FlinkDeploymentReconciler) recordUpgrade(deployment string, mode flinkv1alpha1.ClusterMode) {
	if r.enableMetrics {
		recordUpgradeMetric(deployment, mode)
	}
}

func (r *FlinkDeploymentReconciler) recordJobRunning(d *flinkv1alpha1.FlinkDeployment) {
	if r.enableMetrics {
		recordJobRunningMetric(d)
	}
}
