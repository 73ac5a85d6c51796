package controller

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
	"github.com/imamik/flink-operator/internal/operator/reconciler"
)

func TestRecordReconcileMetric(t *testing.T) {
	reconcileTotal.Reset()
	reconcileDuration.Reset()

	recordReconcileMetric("wordcount", resultSuccess, 0.2)

	counter, err := reconcileTotal.GetMetricWithLabelValues("wordcount", resultSuccess)
	assert.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))

	recordReconcileMetric("wordcount", resultFailure, 0.1)

	failureCounter, err := reconcileTotal.GetMetricWithLabelValues("wordcount", resultFailure)
	assert.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(failureCounter))
	assert.Equal(t, 1, testutil.CollectAndCount(reconcileDuration))
}

func TestRecordLifecycleMetrics(t *testing.T) {
	clusterSubmissionsTotal.Reset()
	clusterUpgradesTotal.Reset()
	observeFailuresTotal.Reset()

	recordSubmissionMetric("wordcount", flinkv1alpha1.ClusterModeApplication)
	recordUpgradeMetric("wordcount", flinkv1alpha1.ClusterModeApplication)
	recordUpgradeMetric("wordcount", flinkv1alpha1.ClusterModeApplication)
	recordObserveFailureMetric("wordcount")

	assert.Equal(t, float64(1), testutil.ToFloat64(clusterSubmissionsTotal.WithLabelValues("wordcount", "application")))
	assert.Equal(t, float64(2), testutil.ToFloat64(clusterUpgradesTotal.WithLabelValues("wordcount", "application")))
	assert.Equal(t, float64(1), testutil.ToFloat64(observeFailuresTotal.WithLabelValues("wordcount")))
}

func TestRecordJobRunningMetric(t *testing.T) {
	jobRunning.Reset()

	d := newTestDeployment("wordcount", withJob)
	d.Status = &flinkv1alpha1.FlinkDeploymentStatus{JobStatus: &flinkv1alpha1.JobStatus{State: "RUNNING"}}
	recordJobRunningMetric(d)
	assert.Equal(t, float64(1), testutil.ToFloat64(jobRunning.WithLabelValues("wordcount")))

	d.Status.JobStatus.State = flinkv1alpha1.JobStatusSuspended
	recordJobRunningMetric(d)
	assert.Equal(t, float64(0), testutil.ToFloat64(jobRunning.WithLabelValues("wordcount")))

	session := newTestDeployment("session")
	recordJobRunningMetric(session)
	assert.Equal(t, 1, testutil.CollectAndCount(jobRunning), "session deployments have no job gauge")
}

func TestReconcile_RecordsMetricsWhenEnabled(t *testing.T) {
	reconcileTotal.Reset()
	clusterSubmissionsTotal.Reset()

	d := newTestDeployment("metrics-session")
	env := newTestEnv(t, d)
	env.r.enableMetrics = true

	_, err := env.reconcile(t, d.Name)
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(reconcileTotal.WithLabelValues("metrics-session", resultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(clusterSubmissionsTotal.WithLabelValues("metrics-session", "session")))
}

func TestReconcile_NoMetricsWhenDisabled(t *testing.T) {
	reconcileTotal.Reset()
	observeFailuresTotal.Reset()

	d := newTestDeployment("quiet-session")
	env := newTestEnv(t, d)
	env.observer.ObserveFunc = func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) bool {
		return false
	}
	env.session.ReconcileFunc = func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) (reconciler.Outcome, error) {
		return reconciler.Outcome{Succeeded: true, Action: reconciler.ActionSubmit}, nil
	}

	_, err := env.reconcile(t, d.Name)
	require.NoError(t, err)

	assert.Equal(t, 0, testutil.CollectAndCount(reconcileTotal))
	assert.Equal(t, 0, testutil.CollectAndCount(observeFailuresTotal))
}
