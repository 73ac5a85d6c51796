package handlers

import (
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
)

// useFakeCluster routes connect to a fake client holding objs.
func useFakeCluster(t *testing.T, contextNamespace string, objs ...client.Object) {
	t.Helper()

	k8sClient := fake.NewClientBuilder().
		WithScheme(flinkv1alpha1.Scheme).
		WithObjects(objs...).
		Build()

	origClient := newKubeClient
	origTTY := isInteractiveTTY
	t.Cleanup(func() {
		newKubeClient = origClient
		isInteractiveTTY = origTTY
	})

	newKubeClient = func(string) (client.Client, string, error) {
		return k8sClient, contextNamespace, nil
	}
	isInteractiveTTY = func() bool { return false }
}

func sessionDeployment(name, namespace string) *flinkv1alpha1.FlinkDeployment {
	return &flinkv1alpha1.FlinkDeployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec: flinkv1alpha1.FlinkDeploymentSpec{
			Image:         "flink:1.14.3",
			IngressDomain: "flink.example.com",
			TaskManager:   flinkv1alpha1.TaskManagerSpec{TaskSlots: 2, Replicas: 1},
		},
	}
}

func applicationDeployment(name, namespace string) *flinkv1alpha1.FlinkDeployment {
	return &flinkv1alpha1.FlinkDeployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec: flinkv1alpha1.FlinkDeploymentSpec{
			Image: "flink:1.14.3",
			Job: &flinkv1alpha1.JobSpec{
				JarURI:      "local:///opt/flink/examples/streaming/WordCount.jar",
				Parallelism: 2,
				UpgradeMode: flinkv1alpha1.UpgradeModeSavepoint,
			},
		},
	}
}

// reconciled records spec as the last reconciled spec of d.
func reconciled(d *flinkv1alpha1.FlinkDeployment, jm flinkv1alpha1.JobManagerDeploymentStatus) *flinkv1alpha1.FlinkDeployment {
	d.Status = &flinkv1alpha1.FlinkDeploymentStatus{
		Spec:                       d.Spec.DeepCopy(),
		JobManagerDeploymentStatus: jm,
	}
	return d
}
