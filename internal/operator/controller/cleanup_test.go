package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
)

func deleting(d *flinkv1alpha1.FlinkDeployment) {
	now := metav1.Now()
	d.DeletionTimestamp = &now
	d.Finalizers = []string{flinkv1alpha1.FinalizerCleanup}
}

func TestCleanup_RemovesClusterAndIngress(t *testing.T) {
	d := newTestDeployment("basic-session", withCommittedSpec, deleting)
	d.Spec.IngressDomain = "flink.example.com"
	env := newTestEnv(t, d)

	result, err := env.reconcile(t, d.Name)

	require.NoError(t, err)
	assert.Zero(t, result.RequeueAfter)
	assert.Equal(t, []string{"basic-session"}, env.deleter.DeleteClusterCalls)
	assert.Equal(t, []string{"basic-session"}, env.ingress.Removals)
	assert.Empty(t, env.ingress.Updates)
	assert.Equal(t, 0, env.observer.Calls, "deletion does not observe")
	assert.Equal(t, 0, env.session.Calls, "deletion does not reconcile")

	err = env.client.Get(context.Background(), types.NamespacedName{Name: d.Name, Namespace: "default"}, &flinkv1alpha1.FlinkDeployment{})
	assert.True(t, apierrors.IsNotFound(err), "resource should be gone once the finalizer is released")
}

func TestCleanup_IndependentOfStatus(t *testing.T) {
	tests := []struct {
		name   string
		status *flinkv1alpha1.FlinkDeploymentStatus
	}{
		{"nil status", nil},
		{"error status", &flinkv1alpha1.FlinkDeploymentStatus{Error: "cannot switch from job to session cluster"}},
		{"suspended job", &flinkv1alpha1.FlinkDeploymentStatus{JobStatus: &flinkv1alpha1.JobStatus{State: flinkv1alpha1.JobStatusSuspended}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeployment("wordcount", withJob, deleting)
			d.Status = tt.status
			env := newTestEnv(t, d)

			_, err := env.reconcile(t, d.Name)

			require.NoError(t, err)
			assert.Len(t, env.deleter.DeleteClusterCalls, 1)
			assert.Len(t, env.ingress.Removals, 1)
		})
	}
}

func TestCleanup_RetriesDeletion(t *testing.T) {
	d := newTestDeployment("basic-session", deleting)
	env := newTestEnv(t, d)
	attempts := 0
	env.deleter.DeleteClusterFunc = func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment) error {
		attempts++
		if attempts < 2 {
			return errors.New("etcdserver: request timed out")
		}
		return nil
	}

	_, err := env.reconcile(t, d.Name)

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Len(t, env.ingress.Removals, 1)
}

func TestCleanup_KeepsFinalizerWhenDeletionFails(t *testing.T) {
	d := newTestDeployment("basic-session", withCommittedSpec, deleting)
	env := newTestEnv(t, d)
	env.deleter.DeleteClusterFunc = func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment) error {
		return errors.New("forbidden")
	}

	result, err := env.reconcile(t, d.Name)

	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, result.RequeueAfter, "a failed deletion is retried by polling")
	assert.Len(t, env.deleter.DeleteClusterCalls, 3, "one attempt plus two retries")
	assert.Empty(t, env.ingress.Removals, "ingress is removed after the cluster")

	stored := env.get(t, d.Name)
	assert.Contains(t, stored.Finalizers, flinkv1alpha1.FinalizerCleanup)
	assert.Equal(t, d.Status.Spec.Image, stored.Status.Spec.Image, "cleanup never writes status")

	select {
	case e := <-env.recorder.Events:
		assert.Contains(t, e, "Warning CleanupFailed")
	default:
		t.Fatal("expected a warning event")
	}
}

func TestCleanup_KeepsFinalizerWhenIngressRemovalFails(t *testing.T) {
	d := newTestDeployment("basic-session", deleting)
	env := newTestEnv(t, d)
	env.ingress.UpdateIngressRulesFunc = func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, operatorNamespace string, remove bool) error {
		return errors.New("connection refused")
	}

	result, err := env.reconcile(t, d.Name)

	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, result.RequeueAfter)
	assert.Contains(t, env.get(t, d.Name).Finalizers, flinkv1alpha1.FinalizerCleanup)
}
