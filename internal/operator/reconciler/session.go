package reconciler

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/log"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
)

// SessionReconciler reconciles deployments without a job.
type SessionReconciler struct {
	base
	service SessionClusterService
}

// NewSessionReconciler creates a SessionReconciler.
func NewSessionReconciler(service SessionClusterService, ingress IngressManager, opts ...Option) *SessionReconciler {
	return &SessionReconciler{base: newBase(ingress, opts), service: service}
}

// Reconcile deploys the session cluster on first sight and redeploys it
// whenever the spec changed since the last successful reconciliation.
func (r *SessionReconciler) Reconcile(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) (Outcome, error) {
	logger := log.FromContext(ctx).WithValues("deployment", d.Name, "namespace", d.Namespace, "mode", flinkv1alpha1.ClusterModeSession)

	if !deployed(d) {
		if d.Status == nil {
			d.Status = &flinkv1alpha1.FlinkDeploymentStatus{}
		}

		logger.Info("Deploying session cluster")
		if err := r.service.SubmitSessionCluster(ctx, d, cfg); err != nil {
			logger.Error(err, "Failed to submit session cluster")
			r.warning(d, EventReasonSubmitFailed, "Failed to submit session cluster: %v", err)
			return failure(ActionSubmit), nil
		}
		if err := r.ingress.UpdateIngressRules(ctx, d, cfg, r.operatorNamespace, false); err != nil {
			logger.Error(err, "Failed to create ingress rules")
			r.warning(d, EventReasonIngressFailed, "Failed to create ingress rules: %v", err)
			return failure(ActionSubmit), nil
		}

		r.normal(d, EventReasonSubmitted, "Session cluster submitted")
		return success(ActionSubmit), nil
	}

	if !specChanged(d) {
		return success(ActionNone), nil
	}

	if d.Status.Spec.Job != nil {
		return Outcome{}, modeSwitchError("job", "session")
	}

	logger.Info("Upgrading session cluster")
	logger.V(1).Info("Spec changed", "diff", specDiff(d))
	r.normal(d, EventReasonUpgrading, "Spec changed, redeploying session cluster")

	if err := r.service.StopSessionCluster(ctx, d, cfg); err != nil {
		logger.Error(err, "Failed to stop session cluster")
		r.warning(d, EventReasonUpgradeFailed, "Failed to stop session cluster: %v", err)
		return failure(ActionUpgrade), nil
	}
	if err := r.service.SubmitSessionCluster(ctx, d, cfg); err != nil {
		logger.Error(err, "Failed to resubmit session cluster")
		r.warning(d, EventReasonUpgradeFailed, "Failed to resubmit session cluster: %v", err)
		return failure(ActionUpgrade), nil
	}
	r.refreshIngress(ctx, logger, d, cfg)

	return success(ActionUpgrade), nil
}
