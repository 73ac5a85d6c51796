//go:build kind

package kind

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

const pollInterval = 2 * time.Second

// WaitForCondition polls until condition returns true or timeout is reached.
func (f *Framework) WaitForCondition(t *testing.T, desc string, timeout time.Duration, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(pollInterval)
	}
	t.Fatalf("timeout waiting for %s", desc)
}

// WaitForDeployment waits for a deployment to have all replicas ready.
func (f *Framework) WaitForDeployment(t *testing.T, namespace, name string, timeout time.Duration) {
	t.Helper()
	t.Logf("Waiting for deployment %s/%s...", namespace, name)

	f.WaitForCondition(t, fmt.Sprintf("deployment %s/%s ready", namespace, name), timeout, func() bool {
		output, err := f.JSONPath("deployment", namespace, name, "{.status.readyReplicas}/{.status.replicas}")
		if err != nil {
			return false
		}
		parts := strings.Split(output, "/")
		if len(parts) == 2 && parts[0] != "" && parts[0] != "0" && parts[0] == parts[1] {
			t.Logf("  ✓ %s/%s ready (%s)", namespace, name, output)
			return true
		}
		return false
	})
}

// WaitForField waits until a JSONPath of a resource has the expected value.
func (f *Framework) WaitForField(t *testing.T, kind, namespace, name, path, want string, timeout time.Duration) {
	t.Helper()

	f.WaitForCondition(t, fmt.Sprintf("%s %s/%s %s=%s", kind, namespace, name, path, want), timeout, func() bool {
		output, err := f.JSONPath(kind, namespace, name, path)
		return err == nil && strings.TrimSpace(output) == want
	})
}

// WaitForDeleted waits until a resource no longer exists.
func (f *Framework) WaitForDeleted(t *testing.T, kind, namespace, name string, timeout time.Duration) {
	t.Helper()

	f.WaitForCondition(t, fmt.Sprintf("%s %s/%s deleted", kind, namespace, name), timeout, func() bool {
		return !f.ResourceExists(kind, namespace, name)
	})
}
