//go:build kind

package kind

import (
	"fmt"
	"testing"
)

// CollectDiagnostics gathers debug info for a failing FlinkDeployment.
func (f *Framework) CollectDiagnostics(t *testing.T, namespace, name string) {
	t.Helper()
	t.Logf("\n=== Diagnostics: %s/flinkdeployment/%s ===", namespace, name)

	output, _ := f.Kubectl("-n", namespace, "get", "flinkdeployment", name, "-o", "yaml")
	t.Logf("FlinkDeployment:\n%s", output)

	output, _ = f.Kubectl("-n", namespace, "get", "events", "--sort-by=.lastTimestamp",
		"--field-selector", fmt.Sprintf("involvedObject.name=%s", name))
	t.Logf("Events:\n%s", output)

	output, _ = f.Kubectl("-n", namespace, "get", "all", "-l", "app.kubernetes.io/instance="+name, "-o", "wide")
	t.Logf("Resources:\n%s", output)

	f.CollectPodLogs(t, namespace, "app.kubernetes.io/instance="+name+",app.kubernetes.io/component=jobmanager", 50)
}

// CollectPodLogs gets logs from pods matching a label.
func (f *Framework) CollectPodLogs(t *testing.T, namespace, label string, tailLines int) {
	t.Helper()

	podName, err := f.Kubectl("-n", namespace, "get", "pods", "-l", label,
		"-o", "jsonpath={.items[0].metadata.name}")
	if err != nil || podName == "" {
		return
	}

	output, _ := f.Kubectl("-n", namespace, "logs", podName, fmt.Sprintf("--tail=%d", tailLines))
	t.Logf("Logs from %s:\n%s", podName, output)
}
