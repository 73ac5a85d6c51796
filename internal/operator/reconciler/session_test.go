package reconciler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/tools/record"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
)

func newSessionReconciler(service *MockClusterService, ingress *MockIngressManager, recorder *record.FakeRecorder) *SessionReconciler {
	return NewSessionReconciler(service, ingress, WithRecorder(recorder), WithOperatorNamespace("flink-operator"))
}

func TestSessionReconciler_FreshDeployment(t *testing.T) {
	service := &MockClusterService{}
	ingress := &MockIngressManager{}
	recorder := record.NewFakeRecorder(10)
	r := newSessionReconciler(service, ingress, recorder)

	d := sessionDeployment()
	outcome, err := r.Reconcile(context.Background(), d, testConfig(d))

	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, ActionSubmit, outcome.Action)
	assert.Equal(t, []string{"submit-session"}, service.Calls)
	assert.Equal(t, 1, ingress.Updates)
	assert.Equal(t, []string{"flink-operator"}, ingress.OperatorNamespaces)
	require.NotNil(t, d.Status, "status should be initialised")
	assert.Nil(t, d.Status.Spec, "committing the spec is left to the caller")
	requireEvent(t, recorder, "Normal Submitted")
}

func TestSessionReconciler_SubmitFailure(t *testing.T) {
	service := &MockClusterService{
		SubmitSessionClusterFunc: func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) error {
			return errors.New("api server unavailable")
		},
	}
	ingress := &MockIngressManager{}
	recorder := record.NewFakeRecorder(10)
	r := newSessionReconciler(service, ingress, recorder)

	d := sessionDeployment()
	outcome, err := r.Reconcile(context.Background(), d, testConfig(d))

	require.NoError(t, err, "transient failures are not returned as errors")
	assert.False(t, outcome.Succeeded)
	assert.False(t, outcome.PersistProgress)
	assert.Equal(t, 0, ingress.Updates, "ingress should not be touched after a failed submit")
	requireEvent(t, recorder, "Warning SubmitFailed")
}

func TestSessionReconciler_IngressFailure(t *testing.T) {
	service := &MockClusterService{}
	ingress := &MockIngressManager{
		UpdateIngressRulesFunc: func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, operatorNamespace string, remove bool) error {
			return errors.New("admission webhook denied")
		},
	}
	recorder := record.NewFakeRecorder(10)
	r := newSessionReconciler(service, ingress, recorder)

	d := sessionDeployment()
	outcome, err := r.Reconcile(context.Background(), d, testConfig(d))

	require.NoError(t, err)
	assert.False(t, outcome.Succeeded)
	requireEvent(t, recorder, "Warning IngressFailed")
}

func TestSessionReconciler_UnchangedSpecIsNoop(t *testing.T) {
	service := &MockClusterService{}
	ingress := &MockIngressManager{}
	r := newSessionReconciler(service, ingress, record.NewFakeRecorder(10))

	d := sessionDeployment()
	commit(d)

	outcome, err := r.Reconcile(context.Background(), d, testConfig(d))

	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, ActionNone, outcome.Action)
	assert.Empty(t, service.Calls)
	assert.Equal(t, 0, ingress.Updates)
}

func TestSessionReconciler_Idempotent(t *testing.T) {
	service := &MockClusterService{}
	ingress := &MockIngressManager{}
	r := newSessionReconciler(service, ingress, record.NewFakeRecorder(10))

	d := sessionDeployment()
	outcome, err := r.Reconcile(context.Background(), d, testConfig(d))
	require.NoError(t, err)
	require.True(t, outcome.Succeeded)
	commit(d)

	outcome, err = r.Reconcile(context.Background(), d, testConfig(d))
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, []string{"submit-session"}, service.Calls, "second pass should not touch the cluster")
	assert.Equal(t, 1, ingress.Updates, "second pass should not touch the ingress")
}

func TestSessionReconciler_UpgradeStopsBeforeSubmit(t *testing.T) {
	service := &MockClusterService{}
	ingress := &MockIngressManager{}
	recorder := record.NewFakeRecorder(10)
	r := newSessionReconciler(service, ingress, recorder)

	d := sessionDeployment()
	commit(d)
	d.Spec.TaskManager.Replicas = 3
	cfg := testConfig(d)

	outcome, err := r.Reconcile(context.Background(), d, cfg)

	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, ActionUpgrade, outcome.Action)
	assert.Equal(t, []string{"stop-session", "submit-session"}, service.Calls)
	require.Len(t, service.Configs, 2)
	assert.Equal(t, service.Configs[0], service.Configs[1], "stop and submit should see the same configuration")
	assert.Equal(t, "3", service.Configs[1].Get(conf.KeyTaskManagerReplicas))
	assert.Equal(t, 1, ingress.Updates)
	requireEvent(t, recorder, "Normal Upgrading")
}

func TestSessionReconciler_UpgradeStopFailure(t *testing.T) {
	service := &MockClusterService{
		StopSessionClusterFunc: func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) error {
			return errors.New("delete failed")
		},
	}
	recorder := record.NewFakeRecorder(10)
	r := newSessionReconciler(service, &MockIngressManager{}, recorder)

	d := sessionDeployment()
	commit(d)
	d.Spec.Image = "flink:1.15.0"

	outcome, err := r.Reconcile(context.Background(), d, testConfig(d))

	require.NoError(t, err)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, []string{"stop-session"}, service.Calls, "submit should not run after a failed stop")
	requireEvent(t, recorder, "Warning UpgradeFailed")
}

func TestSessionReconciler_UpgradeSubmitFailure(t *testing.T) {
	service := &MockClusterService{
		SubmitSessionClusterFunc: func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) error {
			return errors.New("quota exceeded")
		},
	}
	r := newSessionReconciler(service, &MockIngressManager{}, record.NewFakeRecorder(10))

	d := sessionDeployment()
	commit(d)
	d.Spec.Image = "flink:1.15.0"

	outcome, err := r.Reconcile(context.Background(), d, testConfig(d))

	require.NoError(t, err)
	assert.False(t, outcome.Succeeded)
	assert.False(t, outcome.PersistProgress)
	assert.Equal(t, []string{"stop-session", "submit-session"}, service.Calls)
}

func TestSessionReconciler_RejectsSwitchFromJob(t *testing.T) {
	service := &MockClusterService{}
	r := newSessionReconciler(service, &MockIngressManager{}, record.NewFakeRecorder(10))

	d := applicationDeployment()
	commit(d)
	d.Spec.Job = nil

	_, err := r.Reconcile(context.Background(), d, testConfig(d))

	require.Error(t, err)
	assert.True(t, IsInvariantViolation(err))
	assert.ErrorIs(t, err, ErrModeSwitch)
	assert.Equal(t, "cannot switch from job to session cluster", err.Error())
	assert.Empty(t, service.Calls, "no cluster mutation on a mode switch")
}

func TestSessionReconciler_NilRecorder(t *testing.T) {
	service := &MockClusterService{
		SubmitSessionClusterFunc: func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) error {
			return errors.New("boom")
		},
	}
	r := NewSessionReconciler(service, &MockIngressManager{})

	d := sessionDeployment()
	assert.NotPanics(t, func() {
		_, _ = r.Reconcile(context.Background(), d, testConfig(d))
	})
}

func TestSessionReconciler_UpgradeIngressFailureDoesNotRedeploy(t *testing.T) {
	service := &MockClusterService{}
	failures := 1
	ingress := &MockIngressManager{
		UpdateIngressRulesFunc: func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, operatorNamespace string, remove bool) error {
			if failures > 0 {
				failures--
				return errors.New("admission webhook unavailable")
			}
			return nil
		},
	}
	recorder := record.NewFakeRecorder(10)
	r := newSessionReconciler(service, ingress, recorder)

	d := sessionDeployment()
	commit(d)
	d.Spec.Image = "flink:1.15.0"

	outcome, err := r.Reconcile(context.Background(), d, testConfig(d))

	require.NoError(t, err)
	assert.True(t, outcome.Succeeded, "a resubmitted cluster should be committed even if the ingress update failed")
	assert.Equal(t, ActionUpgrade, outcome.Action)
	requireEvent(t, recorder, "Warning IngressFailed")

	commit(d)
	outcome, err = r.Reconcile(context.Background(), d, testConfig(d))

	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, ActionNone, outcome.Action)
	assert.Equal(t, []string{"stop-session", "submit-session"}, service.Calls, "the session cluster should be redeployed once")
}
