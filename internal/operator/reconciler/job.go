package reconciler

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
)

// JobReconciler reconciles application clusters.
type JobReconciler struct {
	base
	service ApplicationClusterService
}

// NewJobReconciler creates a JobReconciler.
func NewJobReconciler(service ApplicationClusterService, ingress IngressManager, opts ...Option) *JobReconciler {
	return &JobReconciler{base: newBase(ingress, opts), service: service}
}

// Reconcile drives the job of an application cluster toward spec.job.state.
// Changes to a running job are applied by stopping it according to its
// upgrade mode and resubmitting it from the state that was kept.
func (r *JobReconciler) Reconcile(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) (Outcome, error) {
	logger := log.FromContext(ctx).WithValues("deployment", d.Name, "namespace", d.Namespace, "mode", flinkv1alpha1.ClusterModeApplication)
	job := d.Spec.Job

	if !deployed(d) {
		if d.Status == nil {
			d.Status = &flinkv1alpha1.FlinkDeploymentStatus{}
		}

		if job.DesiredState() == flinkv1alpha1.JobStateSuspended {
			logger.Info("Job created in suspended state, not deploying")
			d.Status.JobStatus = &flinkv1alpha1.JobStatus{
				State:             flinkv1alpha1.JobStatusSuspended,
				SavepointLocation: job.InitialSavepointPath,
			}
			return success(ActionNone), nil
		}

		logger.Info("Deploying application cluster", "initialSavepoint", job.InitialSavepointPath)
		if ok := r.deploy(ctx, logger, d, cfg, job.InitialSavepointPath); !ok {
			return failure(ActionSubmit), nil
		}
		if err := r.ingress.UpdateIngressRules(ctx, d, cfg, r.operatorNamespace, false); err != nil {
			logger.Error(err, "Failed to create ingress rules")
			r.warning(d, EventReasonIngressFailed, "Failed to create ingress rules: %v", err)
			return failure(ActionSubmit), nil
		}

		r.normal(d, EventReasonSubmitted, "Application cluster submitted")
		return success(ActionSubmit), nil
	}

	if !specChanged(d) {
		return success(ActionNone), nil
	}

	if d.Status.Spec.Job == nil {
		return Outcome{}, modeSwitchError("session", "job")
	}

	logger.V(1).Info("Spec changed", "diff", specDiff(d))

	suspended := d.Status.JobStatus != nil && d.Status.JobStatus.State == flinkv1alpha1.JobStatusSuspended
	desired := job.DesiredState()

	switch {
	case !suspended && desired == flinkv1alpha1.JobStateRunning:
		logger.Info("Upgrading job", "upgradeMode", job.EffectiveUpgradeMode())
		r.normal(d, EventReasonUpgrading, "Spec changed, upgrading job with upgrade mode %s", job.EffectiveUpgradeMode())

		if ok := r.suspend(ctx, logger, d, cfg); !ok {
			return r.afterFailedSuspend(d, ActionUpgrade), nil
		}
		if ok := r.resume(ctx, logger, d, cfg); !ok {
			return Outcome{PersistProgress: true, Action: ActionUpgrade}, nil
		}
		r.refreshIngress(ctx, logger, d, cfg)
		return success(ActionUpgrade), nil

	case !suspended && desired == flinkv1alpha1.JobStateSuspended:
		logger.Info("Suspending job", "upgradeMode", job.EffectiveUpgradeMode())
		if ok := r.suspend(ctx, logger, d, cfg); !ok {
			return r.afterFailedSuspend(d, ActionSuspend), nil
		}
		r.normal(d, EventReasonSuspended, "Job suspended")
		return success(ActionSuspend), nil

	case suspended && desired == flinkv1alpha1.JobStateRunning:
		logger.Info("Resuming job", "savepoint", d.Status.JobStatus.SavepointLocation)
		if ok := r.resume(ctx, logger, d, cfg); !ok {
			return failure(ActionResume), nil
		}
		r.refreshIngress(ctx, logger, d, cfg)
		r.normal(d, EventReasonResumed, "Job resumed")
		return success(ActionResume), nil

	default:
		// Suspended and staying suspended: the new spec takes effect on resume
		return success(ActionNone), nil
	}
}

// suspend stops the running job and records it as suspended together with
// the savepoint it can be resumed from.
func (r *JobReconciler) suspend(ctx context.Context, logger logr.Logger, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) bool {
	mode := d.Spec.Job.EffectiveUpgradeMode()
	savepoint, err := r.service.CancelJob(ctx, d, cfg, mode)
	if savepoint != "" {
		markSuspended(d, savepoint)
	}
	if err != nil {
		logger.Error(err, "Failed to stop job", "upgradeMode", mode)
		r.warning(d, EventReasonSuspendFailed, "Failed to stop job with upgrade mode %s: %v", mode, err)
		return false
	}

	// Only savepoint mode yields a location; last-state restores from HA metadata
	markSuspended(d, savepoint)
	return true
}

// afterFailedSuspend keeps the status when the job was already stopped with a savepoint.
func (r *JobReconciler) afterFailedSuspend(d *flinkv1alpha1.FlinkDeployment, action Action) Outcome {
	if d.Status.JobStatus != nil && d.Status.JobStatus.State == flinkv1alpha1.JobStatusSuspended {
		return Outcome{PersistProgress: true, Action: action}
	}
	return failure(action)
}

// resume submits the job from the recorded savepoint, or from scratch for stateless jobs.
func (r *JobReconciler) resume(ctx context.Context, logger logr.Logger, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) bool {
	savepoint := ""
	if d.Spec.Job.EffectiveUpgradeMode() != flinkv1alpha1.UpgradeModeStateless && d.Status.JobStatus != nil {
		savepoint = d.Status.JobStatus.SavepointLocation
	}
	if !r.deploy(ctx, logger, d, cfg, savepoint) {
		return false
	}

	// The observer picks up the new job on the next cycle
	d.Status.JobStatus = &flinkv1alpha1.JobStatus{SavepointLocation: savepoint}
	return true
}

// deploy submits the application cluster after checking that savepoint can be restored.
func (r *JobReconciler) deploy(ctx context.Context, logger logr.Logger, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, savepoint string) bool {
	if savepoint != "" && r.savepoints != nil {
		exists, err := r.savepoints.Exists(ctx, savepoint)
		if err != nil {
			logger.Error(err, "Failed to verify savepoint", "savepoint", savepoint)
			r.warning(d, EventReasonSavepointMissing, "Failed to verify savepoint %s: %v", savepoint, err)
			return false
		}
		if !exists {
			err := fmt.Errorf("savepoint %s does not exist", savepoint)
			logger.Error(err, "Cannot restore job")
			r.warning(d, EventReasonSavepointMissing, "Cannot restore job: %v", err)
			return false
		}
	}

	if err := r.service.SubmitApplicationCluster(ctx, d, cfg, savepoint); err != nil {
		logger.Error(err, "Failed to submit application cluster")
		r.warning(d, EventReasonSubmitFailed, "Failed to submit application cluster: %v", err)
		return false
	}
	return true
}

func markSuspended(d *flinkv1alpha1.FlinkDeployment, savepoint string) {
	previous := d.Status.JobStatus
	status := &flinkv1alpha1.JobStatus{
		State:             flinkv1alpha1.JobStatusSuspended,
		SavepointLocation: savepoint,
	}
	if previous != nil {
		status.JobName = previous.JobName
		status.JobID = previous.JobID
	}
	d.Status.JobStatus = status
}
