package observer

import (
	"context"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/log"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
	"github.com/imamik/flink-operator/internal/flink/rest"
)

// ClusterInspector reads the live state of a Flink cluster.
type ClusterInspector interface {
	JobManagerStatus(ctx context.Context, d *flinkv1alpha1.FlinkDeployment) (flinkv1alpha1.JobManagerDeploymentStatus, error)
	ClusterOverview(ctx context.Context, cfg conf.Configuration) (*rest.ClusterOverview, error)
	ListJobs(ctx context.Context, cfg conf.Configuration) ([]rest.JobOverview, error)
}

// Observer implements the observe step of a reconciliation cycle.
type Observer struct {
	inspector ClusterInspector
	now       func() time.Time
}

// New creates an Observer.
func New(inspector ClusterInspector) *Observer {
	return &Observer{inspector: inspector, now: time.Now}
}

// Observe refreshes d.Status from the live cluster and reports whether the
// cycle may continue.
func (o *Observer) Observe(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) bool {
	logger := log.FromContext(ctx).WithValues("deployment", d.Name, "namespace", d.Namespace)

	if d.Status == nil {
		return true
	}

	application := d.Spec.Mode() == flinkv1alpha1.ClusterModeApplication
	if application && d.Status.JobStatus != nil && d.Status.JobStatus.State == flinkv1alpha1.JobStatusSuspended {
		logger.V(1).Info("Job is suspended, skipping observation")
		return true
	}

	jmStatus, err := o.inspector.JobManagerStatus(ctx, d)
	if err != nil {
		logger.Error(err, "Failed to get JobManager deployment status")
		return false
	}
	d.Status.JobManagerDeploymentStatus = jmStatus

	if jmStatus != flinkv1alpha1.JobManagerDeploymentReady {
		logger.V(1).Info("JobManager not ready", "status", jmStatus)
		d.Status.ClusterInfo = nil
		return true
	}

	if application {
		return o.observeJob(ctx, d, cfg)
	}
	return o.observeCluster(ctx, d, cfg)
}

func (o *Observer) observeCluster(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) bool {
	overview, err := o.inspector.ClusterOverview(ctx, cfg)
	if err != nil {
		log.FromContext(ctx).Info("Failed to read cluster overview", "deployment", d.Name, "error", err.Error())
		return false
	}

	d.Status.ClusterInfo = &flinkv1alpha1.ClusterInfo{
		FlinkVersion:   overview.FlinkVersion,
		TaskManagers:   overview.TaskManagers,
		SlotsTotal:     overview.SlotsTotal,
		SlotsAvailable: overview.SlotsAvailable,
	}
	return true
}

func (o *Observer) observeJob(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) bool {
	logger := log.FromContext(ctx).WithValues("deployment", d.Name)

	jobs, err := o.inspector.ListJobs(ctx, cfg)
	if err != nil {
		logger.Info("Failed to list jobs", "error", err.Error())
		return false
	}
	if len(jobs) == 0 {
		logger.Info("No jobs found on application cluster")
		return false
	}

	previous := d.Status.JobStatus
	job := selectJob(jobs, previous)

	status := &flinkv1alpha1.JobStatus{
		JobName:    job.Name,
		JobID:      job.ID,
		State:      job.State,
		UpdateTime: &metav1.Time{Time: o.now()},
	}
	if previous != nil {
		status.SavepointLocation = previous.SavepointLocation
		if previous.JobID == job.ID && previous.State == job.State && previous.UpdateTime != nil {
			status.UpdateTime = previous.UpdateTime
		}
	}
	d.Status.JobStatus = status
	return true
}

// selectJob picks the recorded job, falling back to the most recently started one.
func selectJob(jobs []rest.JobOverview, previous *flinkv1alpha1.JobStatus) rest.JobOverview {
	if previous != nil && previous.JobID != "" {
		for _, job := range jobs {
			if job.ID == previous.JobID {
				return job
			}
		}
	}

	latest := jobs[0]
	for _, job := range jobs[1:] {
		if job.StartTime > latest.StartTime {
			latest = job
		}
	}
	return latest
}
