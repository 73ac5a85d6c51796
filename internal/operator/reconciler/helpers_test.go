package reconciler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/tools/record"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
)

func sessionDeployment() *flinkv1alpha1.FlinkDeployment {
	return &flinkv1alpha1.FlinkDeployment{
		ObjectMeta: metav1.ObjectMeta{Name: "basic-session", Namespace: "default"},
		Spec: flinkv1alpha1.FlinkDeploymentSpec{
			Image:              "flink:1.14.3",
			FlinkConfiguration: map[string]string{conf.KeyTaskSlots: "2"},
			IngressDomain:      "flink.example.com",
			JobManager:         flinkv1alpha1.JobManagerSpec{Replicas: 1},
			TaskManager:        flinkv1alpha1.TaskManagerSpec{Replicas: 1, TaskSlots: 2},
		},
	}
}

func applicationDeployment() *flinkv1alpha1.FlinkDeployment {
	d := sessionDeployment()
	d.Name = "wordcount"
	d.Spec.Job = &flinkv1alpha1.JobSpec{
		JarURI:      "local:///opt/flink/examples/streaming/WordCount.jar",
		Parallelism: 2,
		UpgradeMode: flinkv1alpha1.UpgradeModeSavepoint,
	}
	return d
}

// commit records the current spec as successfully reconciled.
func commit(d *flinkv1alpha1.FlinkDeployment) {
	if d.Status == nil {
		d.Status = &flinkv1alpha1.FlinkDeploymentStatus{}
	}
	d.Status.Spec = d.Spec.DeepCopy()
}

func testConfig(d *flinkv1alpha1.FlinkDeployment) conf.Configuration {
	return conf.NewDeriver(nil).Derive(d)
}

// drainEvents returns all events emitted so far.
func drainEvents(recorder *record.FakeRecorder) []string {
	var events []string
	for {
		select {
		case e := <-recorder.Events:
			events = append(events, e)
		default:
			return events
		}
	}
}

func requireEvent(t *testing.T, recorder *record.FakeRecorder, prefix string) {
	t.Helper()
	events := drainEvents(recorder)
	for _, e := range events {
		if strings.HasPrefix(e, prefix) {
			return
		}
	}
	require.Failf(t, "event not found", "expected event with prefix %q, got %v", prefix, events)
}
