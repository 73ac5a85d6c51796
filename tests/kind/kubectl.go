//go:build kind

package kind

import (
	"bytes"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// Kubectl executes a kubectl command and returns output.
func (f *Framework) Kubectl(args ...string) (string, error) {
	fullArgs := append([]string{"--kubeconfig", f.KubeconfigPath()}, args...)
	// #nosec G204 -- test code with controlled command arguments
	cmd := exec.Command("kubectl", fullArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%v: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

// KubectlMust executes kubectl and fails the test on error.
func (f *Framework) KubectlMust(t *testing.T, args ...string) string {
	t.Helper()
	output, err := f.Kubectl(args...)
	if err != nil {
		t.Fatalf("kubectl %s: %v", strings.Join(args, " "), err)
	}
	return output
}

// KubectlApply applies a manifest string.
func (f *Framework) KubectlApply(t *testing.T, manifest string) {
	t.Helper()

	// #nosec G204 -- test code with controlled command arguments
	cmd := exec.Command("kubectl", "--kubeconfig", f.KubeconfigPath(), "apply", "-f", "-")
	cmd.Stdin = strings.NewReader(manifest)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("kubectl apply: %v\n%s", err, stderr.String())
	}
}

// ResourceExists checks if a resource exists.
func (f *Framework) ResourceExists(kind, namespace, name string) bool {
	args := []string{"get", kind}
	if namespace != "" {
		args = append(args, "-n", namespace)
	}
	args = append(args, name)
	_, err := f.Kubectl(args...)
	return err == nil
}

// JSONPath reads one field of a resource.
func (f *Framework) JSONPath(kind, namespace, name, path string) (string, error) {
	args := []string{"get", kind, name, "-o", "jsonpath=" + path}
	if namespace != "" {
		args = append([]string{"-n", namespace}, args...)
	}
	return f.Kubectl(args...)
}

// PortForward forwards a free local port to a service port until the test ends
// and returns the local address.
func (f *Framework) PortForward(t *testing.T, namespace, service string, port int) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free port: %v", err)
	}
	localPort := listener.Addr().(*net.TCPAddr).Port
	_ = listener.Close()

	// #nosec G204 -- test code with controlled command arguments
	cmd := exec.Command("kubectl", "--kubeconfig", f.KubeconfigPath(), "-n", namespace,
		"port-forward", "svc/"+service, fmt.Sprintf("%d:%d", localPort, port))
	if err := cmd.Start(); err != nil {
		t.Fatalf("kubectl port-forward: %v", err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})

	addr := fmt.Sprintf("127.0.0.1:%d", localPort)
	f.WaitForCondition(t, "port-forward to "+service, 30*time.Second, func() bool {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	})
	return addr
}
