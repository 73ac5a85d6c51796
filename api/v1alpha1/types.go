// Package v1alpha1 contains API Schema definitions for the flink.apache.org v1alpha1 API group
// +kubebuilder:object:generate=true
// +groupName=flink.apache.org
package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// FlinkDeploymentSpec defines the desired state of a Flink cluster.
type FlinkDeploymentSpec struct {
	// Image is the Flink container image
	Image string `json:"image"`

	// ImagePullPolicy for the JobManager and TaskManager containers
	// +optional
	ImagePullPolicy corev1.PullPolicy `json:"imagePullPolicy,omitempty"`

	// FlinkVersion is informational and used for printer columns and defaults
	// +optional
	FlinkVersion string `json:"flinkVersion,omitempty"`

	// ServiceAccount used by the JobManager and TaskManager pods
	// +optional
	ServiceAccount string `json:"serviceAccount,omitempty"`

	// FlinkConfiguration overrides entries of the effective flink-conf.yaml
	// +optional
	FlinkConfiguration map[string]string `json:"flinkConfiguration,omitempty"`

	// IngressDomain enables an ingress rule <name>.<namespace>.<ingressDomain> for the REST endpoint
	// +optional
	IngressDomain string `json:"ingressDomain,omitempty"`

	// JobManager sizing
	// +optional
	JobManager JobManagerSpec `json:"jobManager,omitempty"`

	// TaskManager sizing
	// +optional
	TaskManager TaskManagerSpec `json:"taskManager,omitempty"`

	// Job turns the deployment into an application cluster running exactly this job.
	// Without it the deployment is a session cluster. The mode cannot change after creation.
	// +optional
	Job *JobSpec `json:"job,omitempty"`
}

// Resource describes the container resources of a Flink process.
type Resource struct {
	// CPU as a Kubernetes quantity (e.g., "1", "500m")
	// +optional
	CPU string `json:"cpu,omitempty"`

	// Memory as a Flink memory size (e.g., "2048m", "2g")
	// +optional
	Memory string `json:"memory,omitempty"`
}

// JobManagerSpec defines the JobManager configuration.
type JobManagerSpec struct {
	// +optional
	Resource Resource `json:"resource,omitempty"`

	// Replicas of the JobManager (more than one requires HA)
	// +kubebuilder:default=1
	// +optional
	Replicas int32 `json:"replicas,omitempty"`
}

// TaskManagerSpec defines the TaskManager configuration.
type TaskManagerSpec struct {
	// +optional
	Resource Resource `json:"resource,omitempty"`

	// TaskSlots per TaskManager
	// +kubebuilder:validation:Minimum=1
	// +optional
	TaskSlots int32 `json:"taskSlots,omitempty"`

	// Replicas of the TaskManager
	// +kubebuilder:default=1
	// +optional
	Replicas int32 `json:"replicas,omitempty"`
}

// JobState is the desired state of the job.
type JobState string

const (
	// JobStateRunning means the job should be running
	JobStateRunning JobState = "running"
	// JobStateSuspended means the job should be stopped, keeping its state for a later resume
	JobStateSuspended JobState = "suspended"
)

// UpgradeMode controls how a running job is stopped before an upgrade or suspend.
type UpgradeMode string

const (
	// UpgradeModeStateless cancels the job without keeping state
	UpgradeModeStateless UpgradeMode = "stateless"
	// UpgradeModeSavepoint stops the job with a savepoint and restores from it
	UpgradeModeSavepoint UpgradeMode = "savepoint"
	// UpgradeModeLastState deletes the cluster and relies on HA metadata to restore
	UpgradeModeLastState UpgradeMode = "last-state"
)

// JobSpec defines the job of an application cluster.
type JobSpec struct {
	// JarURI of the job artifact, e.g. local:///opt/flink/usrlib/job.jar
	JarURI string `json:"jarURI"`

	// EntryClass of the job
	// +optional
	EntryClass string `json:"entryClass,omitempty"`

	// Args passed to the job main method
	// +optional
	Args []string `json:"args,omitempty"`

	// Parallelism of the job
	// +optional
	Parallelism int32 `json:"parallelism,omitempty"`

	// State is the desired job state
	// +kubebuilder:validation:Enum=running;suspended
	// +kubebuilder:default=running
	// +optional
	State JobState `json:"state,omitempty"`

	// UpgradeMode used when the job is upgraded or suspended
	// +kubebuilder:validation:Enum=stateless;savepoint;last-state
	// +kubebuilder:default=stateless
	// +optional
	UpgradeMode UpgradeMode `json:"upgradeMode,omitempty"`

	// InitialSavepointPath restores the first submission from this savepoint
	// +optional
	InitialSavepointPath string `json:"initialSavepointPath,omitempty"`
}

// DesiredState returns the desired job state, defaulting to running.
func (j *JobSpec) DesiredState() JobState {
	if j.State == "" {
		return JobStateRunning
	}
	return j.State
}

// EffectiveUpgradeMode returns the upgrade mode, defaulting to stateless.
func (j *JobSpec) EffectiveUpgradeMode() UpgradeMode {
	if j.UpgradeMode == "" {
		return UpgradeModeStateless
	}
	return j.UpgradeMode
}

// ClusterMode is the operating mode of a FlinkDeployment. It has exactly two values.
type ClusterMode string

const (
	// ClusterModeSession is a long-lived cluster that accepts independently submitted jobs
	ClusterModeSession ClusterMode = "session"
	// ClusterModeApplication is a cluster bound to the single job in spec.job
	ClusterModeApplication ClusterMode = "application"
)

// Mode classifies the spec by the presence of a job definition.
func (s *FlinkDeploymentSpec) Mode() ClusterMode {
	if s.Job == nil {
		return ClusterModeSession
	}
	return ClusterModeApplication
}

// JobManagerDeploymentStatus is the observed state of the JobManager Deployment.
type JobManagerDeploymentStatus string

const (
	// JobManagerDeploymentReady means the JobManager is available and its REST API reachable
	JobManagerDeploymentReady JobManagerDeploymentStatus = "READY"
	// JobManagerDeploymentDeploying means the Deployment exists but is not available yet
	JobManagerDeploymentDeploying JobManagerDeploymentStatus = "DEPLOYING"
	// JobManagerDeploymentMissing means no JobManager Deployment exists
	JobManagerDeploymentMissing JobManagerDeploymentStatus = "MISSING"
)

// JobStatusSuspended is recorded by the operator once it stopped the job of an application cluster.
const JobStatusSuspended = "SUSPENDED"

// JobStatus is the observed state of the job of an application cluster.
type JobStatus struct {
	// JobName reported by Flink
	// +optional
	JobName string `json:"jobName,omitempty"`

	// JobID reported by Flink
	// +optional
	JobID string `json:"jobId,omitempty"`

	// State reported by Flink (RUNNING, FAILED, ...) or SUSPENDED when stopped by the operator
	// +optional
	State string `json:"state,omitempty"`

	// UpdateTime is when the job status was last observed
	// +optional
	UpdateTime *metav1.Time `json:"updateTime,omitempty"`

	// SavepointLocation of the last savepoint taken by the operator
	// +optional
	SavepointLocation string `json:"savepointLocation,omitempty"`
}

// ClusterInfo is the observed overview of a running cluster.
type ClusterInfo struct {
	// +optional
	FlinkVersion string `json:"flinkVersion,omitempty"`
	// +optional
	TaskManagers int32 `json:"taskManagers,omitempty"`
	// +optional
	SlotsTotal int32 `json:"slotsTotal,omitempty"`
	// +optional
	SlotsAvailable int32 `json:"slotsAvailable,omitempty"`
}

// FlinkDeploymentStatus defines the observed state of FlinkDeployment.
type FlinkDeploymentStatus struct {
	// Spec is the last successfully reconciled spec
	// +optional
	Spec *FlinkDeploymentSpec `json:"spec,omitempty"`

	// JobManagerDeploymentStatus is the observed JobManager state
	// +optional
	JobManagerDeploymentStatus JobManagerDeploymentStatus `json:"jobManagerDeploymentStatus,omitempty"`

	// JobStatus of an application cluster
	// +optional
	JobStatus *JobStatus `json:"jobStatus,omitempty"`

	// ClusterInfo of a ready cluster
	// +optional
	ClusterInfo *ClusterInfo `json:"clusterInfo,omitempty"`

	// Error is the last fatal reconciliation error, cleared on the next successful reconciliation
	// +optional
	Error string `json:"error,omitempty"`

	// Conditions represent the latest available observations
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`

	// ObservedGeneration is the generation of the last successfully reconciled spec
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`

	// LastReconcileTime is when the operator last committed this status
	// +optional
	LastReconcileTime *metav1.Time `json:"lastReconcileTime,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=flinkdep
// +kubebuilder:printcolumn:name="JobManager",type=string,JSONPath=`.status.jobManagerDeploymentStatus`
// +kubebuilder:printcolumn:name="Job State",type=string,JSONPath=`.status.jobStatus.state`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// FlinkDeployment is the Schema for the flinkdeployments API.
type FlinkDeployment struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec FlinkDeploymentSpec `json:"spec,omitempty"`

	// Status is nil until the first reconciliation initialises it
	Status *FlinkDeploymentStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// FlinkDeploymentList contains a list of FlinkDeployment.
type FlinkDeploymentList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []FlinkDeployment `json:"items"`
}

// Condition types for FlinkDeployment
const (
	// ConditionReady indicates the JobManager is ready (and the job running, in application mode)
	ConditionReady = "Ready"
	// ConditionReconciled indicates status.spec matches spec
	ConditionReconciled = "Reconciled"
)

// FinalizerCleanup guards deletion until the Flink cluster and its ingress are removed.
const FinalizerCleanup = "flink.apache.org/cleanup"
