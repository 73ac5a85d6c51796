package v1alpha1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/api/equality"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func TestFlinkDeploymentSpec_Mode(t *testing.T) {
	session := FlinkDeploymentSpec{Image: "flink:1.14"}
	assert.Equal(t, ClusterModeSession, session.Mode())

	application := FlinkDeploymentSpec{Image: "flink:1.14", Job: &JobSpec{JarURI: "local:///opt/flink/job.jar"}}
	assert.Equal(t, ClusterModeApplication, application.Mode())
}

func TestJobSpec_Defaults(t *testing.T) {
	job := &JobSpec{}
	assert.Equal(t, JobStateRunning, job.DesiredState())
	assert.Equal(t, UpgradeModeStateless, job.EffectiveUpgradeMode())

	job = &JobSpec{State: JobStateSuspended, UpgradeMode: UpgradeModeSavepoint}
	assert.Equal(t, JobStateSuspended, job.DesiredState())
	assert.Equal(t, UpgradeModeSavepoint, job.EffectiveUpgradeMode())
}

func TestFlinkDeployment_DeepCopy(t *testing.T) {
	now := metav1.Now()
	original := &FlinkDeployment{
		ObjectMeta: metav1.ObjectMeta{Name: "wordcount", Namespace: "default"},
		Spec: FlinkDeploymentSpec{
			Image:              "flink:1.14",
			FlinkConfiguration: map[string]string{"taskmanager.numberOfTaskSlots": "2"},
			Job:                &JobSpec{JarURI: "local:///job.jar", Args: []string{"--input", "a"}},
		},
		Status: &FlinkDeploymentStatus{
			Spec:              &FlinkDeploymentSpec{Image: "flink:1.13"},
			JobStatus:         &JobStatus{JobID: "abc", UpdateTime: &now},
			ClusterInfo:       &ClusterInfo{TaskManagers: 1},
			Conditions:        []metav1.Condition{{Type: ConditionReady, Status: metav1.ConditionTrue}},
			LastReconcileTime: &now,
		},
	}

	copied := original.DeepCopy()
	require.True(t, equality.Semantic.DeepEqual(original, copied))

	copied.Spec.FlinkConfiguration["taskmanager.numberOfTaskSlots"] = "4"
	copied.Spec.Job.Args[0] = "--output"
	copied.Status.Spec.Image = "flink:1.15"
	copied.Status.JobStatus.JobID = "def"
	copied.Status.ClusterInfo.TaskManagers = 3
	copied.Status.Conditions[0].Status = metav1.ConditionFalse

	assert.Equal(t, "2", original.Spec.FlinkConfiguration["taskmanager.numberOfTaskSlots"])
	assert.Equal(t, "--input", original.Spec.Job.Args[0])
	assert.Equal(t, "flink:1.13", original.Status.Spec.Image)
	assert.Equal(t, "abc", original.Status.JobStatus.JobID)
	assert.Equal(t, int32(1), original.Status.ClusterInfo.TaskManagers)
	assert.Equal(t, metav1.ConditionTrue, original.Status.Conditions[0].Status)
}

func TestFlinkDeployment_DeepCopyNilStatus(t *testing.T) {
	original := &FlinkDeployment{Spec: FlinkDeploymentSpec{Image: "flink:1.14"}}
	copied := original.DeepCopy()
	assert.Nil(t, copied.Status)
	assert.Nil(t, (*FlinkDeployment)(nil).DeepCopy())
}

func TestSemanticEqualityTreatsEmptyAndNilAlike(t *testing.T) {
	a := FlinkDeploymentSpec{Image: "flink:1.14"}
	b := FlinkDeploymentSpec{Image: "flink:1.14", FlinkConfiguration: map[string]string{}}
	assert.True(t, equality.Semantic.DeepEqual(a, b))
}
