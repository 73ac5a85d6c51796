package controller

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/rest"
)

// commit records deployment's spec as reconciled on observed.
func (r *FlinkDeploymentReconciler) commit(deployment, observed *flinkv1alpha1.FlinkDeployment) {
	if observed.Status == nil {
		observed.Status = &flinkv1alpha1.FlinkDeploymentStatus{}
	}
	status := observed.Status

	status.Spec = deployment.Spec.DeepCopy()
	status.Error = ""
	status.ObservedGeneration = deployment.Generation
	status.LastReconcileTime = &metav1.Time{Time: r.now()}

	meta.SetStatusCondition(&status.Conditions, metav1.Condition{
		Type:               flinkv1alpha1.ConditionReconciled,
		Status:             metav1.ConditionTrue,
		Reason:             "ReconcileSucceeded",
		Message:            "Spec is deployed",
		ObservedGeneration: deployment.Generation,
	})

	ready, reason, message := readiness(observed)
	meta.SetStatusCondition(&status.Conditions, metav1.Condition{
		Type:               flinkv1alpha1.ConditionReady,
		Status:             conditionStatus(ready),
		Reason:             reason,
		Message:            message,
		ObservedGeneration: deployment.Generation,
	})
}

// setErrorStatus records a fatal error without touching status.spec.
func (r *FlinkDeploymentReconciler) setErrorStatus(observed *flinkv1alpha1.FlinkDeployment, err error) {
	if observed.Status == nil {
		observed.Status = &flinkv1alpha1.FlinkDeploymentStatus{}
	}
	observed.Status.Error = err.Error()
	meta.SetStatusCondition(&observed.Status.Conditions, metav1.Condition{
		Type:               flinkv1alpha1.ConditionReconciled,
		Status:             metav1.ConditionFalse,
		Reason:             "ReconcileError",
		Message:            err.Error(),
		ObservedGeneration: observed.Generation,
	})
}

// readiness derives the Ready condition from the observed status.
func readiness(d *flinkv1alpha1.FlinkDeployment) (bool, string, string) {
	status := d.Status
	if d.Spec.Mode() == flinkv1alpha1.ClusterModeApplication {
		if status.JobStatus != nil && status.JobStatus.State == flinkv1alpha1.JobStatusSuspended {
			return false, "JobSuspended", "Job is suspended"
		}
	}

	if status.JobManagerDeploymentStatus != flinkv1alpha1.JobManagerDeploymentReady {
		jm := status.JobManagerDeploymentStatus
		if jm == "" {
			jm = flinkv1alpha1.JobManagerDeploymentDeploying
		}
		return false, "JobManagerNotReady", fmt.Sprintf("JobManager is %s", jm)
	}

	if d.Spec.Mode() == flinkv1alpha1.ClusterModeApplication {
		if status.JobStatus == nil || status.JobStatus.State != rest.JobStateRunning {
			state := "unknown"
			if status.JobStatus != nil && status.JobStatus.State != "" {
				state = status.JobStatus.State
			}
			return false, "JobNotRunning", fmt.Sprintf("Job is %s", state)
		}
		return true, "JobRunning", "Job is running"
	}

	return true, "ClusterReady", "Session cluster is ready"
}

func conditionStatus(ready bool) metav1.ConditionStatus {
	if ready {
		return metav1.ConditionTrue
	}
	return metav1.ConditionFalse
}
