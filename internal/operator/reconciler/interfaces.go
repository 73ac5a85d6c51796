package reconciler

import (
	"context"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
)

// ModeReconciler reconciles a deployment of one cluster mode. It may mutate
// d.Status; the caller decides from the Outcome whether to persist it.
type ModeReconciler interface {
	Reconcile(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) (Outcome, error)
}

// SessionClusterService starts and stops session clusters.
type SessionClusterService interface {
	SubmitSessionCluster(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) error
	StopSessionCluster(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) error
}

// ApplicationClusterService starts application clusters and stops their job.
type ApplicationClusterService interface {
	SubmitApplicationCluster(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, savepoint string) error
	// CancelJob stops the job according to mode and removes the cluster. It
	// returns the savepoint taken, if any, even when a later step fails.
	CancelJob(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, mode flinkv1alpha1.UpgradeMode) (string, error)
}

// IngressManager maintains the ingress rules of a deployment.
type IngressManager interface {
	UpdateIngressRules(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, operatorNamespace string, remove bool) error
}

// SavepointStore checks that a savepoint can be restored from.
type SavepointStore interface {
	Exists(ctx context.Context, location string) (bool, error)
}
