package service

import (
	"context"
	"errors"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
	"github.com/imamik/flink-operator/internal/flink/rest"
)

// ErrNoRunningJob is returned when a savepoint is requested but no job is running.
var ErrNoRunningJob = errors.New("no running job found")

// ErrHARequired is returned for last-state upgrades without high availability.
var ErrHARequired = errors.New("last-state upgrade mode requires high availability")

// ClusterOverview returns the JobManager's cluster overview.
func (s *FlinkService) ClusterOverview(ctx context.Context, cfg conf.Configuration) (*rest.ClusterOverview, error) {
	return s.restClient(cfg).ClusterOverview(ctx)
}

// ListJobs returns the jobs known to the JobManager.
func (s *FlinkService) ListJobs(ctx context.Context, cfg conf.Configuration) ([]rest.JobOverview, error) {
	return s.restClient(cfg).ListJobs(ctx)
}

// CancelJob stops the job of an application cluster according to mode and
// removes the cluster. For UpgradeModeSavepoint the location of the savepoint
// taken is returned.
func (s *FlinkService) CancelJob(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, mode flinkv1alpha1.UpgradeMode) (string, error) {
	logger := log.FromContext(ctx).WithValues("deployment", d.Name, "namespace", d.Namespace, "upgradeMode", mode)
	rc := s.restClient(cfg)

	switch mode {
	case flinkv1alpha1.UpgradeModeStateless:
		jobID, err := s.activeJobID(ctx, d, rc)
		switch {
		case err != nil:
			logger.Info("Could not look up job, deleting cluster without cancelling", "error", err.Error())
		case jobID != "":
			if err := rc.CancelJob(ctx, jobID); err != nil && !errors.Is(err, rest.ErrNotFound) {
				logger.Info("Failed to cancel job, deleting cluster anyway", "jobID", jobID, "error", err.Error())
			}
		}
		return "", s.DeleteCluster(ctx, d)

	case flinkv1alpha1.UpgradeModeSavepoint:
		jobID, err := s.activeJobID(ctx, d, rc)
		if err != nil {
			return "", fmt.Errorf("failed to find job: %w", err)
		}
		if jobID == "" {
			return "", ErrNoRunningJob
		}

		triggerID, err := rc.StopWithSavepoint(ctx, jobID, cfg.Get(conf.KeySavepointDir))
		if err != nil {
			return "", fmt.Errorf("failed to stop job %s with savepoint: %w", jobID, err)
		}
		logger.Info("Triggered stop-with-savepoint", "jobID", jobID, "triggerID", triggerID)

		location, err := rc.WaitForSavepoint(ctx, jobID, triggerID, s.savepointTimeout, s.savepointPoll)
		if err != nil {
			return "", err
		}
		logger.Info("Savepoint completed", "jobID", jobID, "location", location)

		if err := s.DeleteCluster(ctx, d); err != nil {
			return location, err
		}
		return location, nil

	case flinkv1alpha1.UpgradeModeLastState:
		if !cfg.HAEnabled() {
			return "", ErrHARequired
		}
		return "", s.DeleteCluster(ctx, d)

	default:
		return "", fmt.Errorf("unknown upgrade mode %q", mode)
	}
}

// activeJobID returns the recorded job id, or the id of a job that has not
// reached a terminal state. An empty id means no such job exists.
func (s *FlinkService) activeJobID(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, rc RESTClient) (string, error) {
	if d.Status != nil && d.Status.JobStatus != nil && d.Status.JobStatus.JobID != "" &&
		!isTerminal(d.Status.JobStatus.State) {
		return d.Status.JobStatus.JobID, nil
	}

	jobs, err := rc.ListJobs(ctx)
	if err != nil {
		return "", err
	}
	for _, job := range jobs {
		if !isTerminal(job.State) {
			return job.ID, nil
		}
	}
	return "", nil
}

func isTerminal(state string) bool {
	switch state {
	case rest.JobStateFinished, rest.JobStateCanceled, rest.JobStateFailed, flinkv1alpha1.JobStatusSuspended:
		return true
	}
	return false
}
