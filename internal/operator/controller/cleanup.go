package controller

import (
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/util/retry"
)

// cleanup removes the Flink cluster and the ingress of a deleted deployment
// and then releases the finalizer. Status is never written. A failed step
// keeps the finalizer and is retried on the next cycle.
func (r *FlinkDeploymentReconciler) cleanup(ctx context.Context, deployment *flinkv1alpha1.FlinkDeployment) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	if !controllerutil.ContainsFinalizer(deployment, flinkv1alpha1.FinalizerCleanup) {
		return ctrl.Result{}, nil
	}

	logger.Info("Deleting Flink cluster")
	err := retry.WithExponentialBackoff(ctx, func(ctx context.Context) error {
		return r.deleter.DeleteCluster(ctx, deployment)
	},
		retry.WithMaxRetries(r.deleteMaxRetries),
		retry.WithInitialDelay(r.deleteInitialDelay),
		retry.WithOnRetry(func(attempt int, err error, next time.Duration) {
			logger.V(1).Info("retrying cluster deletion", "attempt", attempt, "error", err.Error(), "backoff", next)
		}),
	)
	if err != nil {
		logger.Error(err, "Failed to delete Flink cluster")
		r.Recorder.Eventf(deployment, corev1.EventTypeWarning, EventReasonCleanupFailed, "Failed to delete Flink cluster: %v", err)
		return ctrl.Result{RequeueAfter: r.rescheduleInterval}, nil
	}

	cfg := r.deriver.Derive(deployment)
	if err := r.ingress.UpdateIngressRules(ctx, deployment, cfg, r.operatorNamespace, true); err != nil {
		logger.Error(err, "Failed to delete ingress rules")
		r.Recorder.Eventf(deployment, corev1.EventTypeWarning, EventReasonCleanupFailed, "Failed to delete ingress rules: %v", err)
		return ctrl.Result{RequeueAfter: r.rescheduleInterval}, nil
	}

	controllerutil.RemoveFinalizer(deployment, flinkv1alpha1.FinalizerCleanup)
	if err := r.Update(ctx, deployment); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	r.Recorder.Event(deployment, corev1.EventTypeNormal, EventReasonDeleted, "Flink cluster deleted")
	logger.Info("Flink cluster deleted")
	return ctrl.Result{}, nil
}
