//go:build kind

// Package kind provides end-to-end tests against a local Kubernetes cluster.
// Uses kind (Kubernetes in Docker) to run real Flink clusters managed by an
// operator started in the test process.
package kind

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	clusterName = "flink-operator-test"
	flinkImage  = "flink:1.14.3"
)

// prerequisites maps each required binary check to the message reported when it fails.
var prerequisites = []struct {
	check  func() error
	reason string
}{
	{func() error { _, err := exec.LookPath("kind"); return err }, "kind not found: install with 'go install sigs.k8s.io/kind@latest'"},
	{func() error { _, err := exec.LookPath("kubectl"); return err }, "kubectl not found"},
	{func() error { return exec.Command("docker", "info").Run() }, "docker not running"},
}

// Framework owns the kind cluster the suite runs against.
type Framework struct {
	workDir        string
	kubeconfigPath string
	created        bool
}

// NewFramework creates a test framework instance.
func NewFramework() *Framework {
	return &Framework{}
}

// Setup reuses the kind cluster of a previous run or creates a new one,
// then preloads the Flink image when it is available locally.
func (f *Framework) Setup(ctx context.Context) error {
	for _, p := range prerequisites {
		if err := p.check(); err != nil {
			return errors.New(p.reason)
		}
	}

	workDir, err := os.MkdirTemp("", "flink-operator-kind-*")
	if err != nil {
		return err
	}
	f.workDir = workDir
	f.kubeconfigPath = filepath.Join(workDir, "kubeconfig")

	if !clusterExists() {
		fmt.Printf("Creating kind cluster %s with %d worker(s)\n", clusterName, workerCount())
		if err := createCluster(ctx); err != nil {
			return fmt.Errorf("create cluster: %w", err)
		}
		f.created = true
	}

	// #nosec G204 -- test code with controlled command arguments
	if out, err := exec.CommandContext(ctx, "kind", "export", "kubeconfig",
		"--name", clusterName, "--kubeconfig", f.kubeconfigPath).CombinedOutput(); err != nil {
		return fmt.Errorf("export kubeconfig: %w: %s", err, out)
	}

	preloadImage(ctx, flinkImage)
	return nil
}

// Teardown removes the kubeconfig and deletes the cluster if this run created it.
// Set KEEP_KIND_CLUSTER to keep a created cluster for debugging.
func (f *Framework) Teardown() {
	if f.created && os.Getenv("KEEP_KIND_CLUSTER") != "" {
		fmt.Printf("\nCluster preserved: kind delete cluster --name %s\n", clusterName)
		f.created = false
	}

	if f.created {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		_ = exec.CommandContext(ctx, "kind", "delete", "cluster", "--name", clusterName).Run()
	}
	if f.workDir != "" {
		_ = os.RemoveAll(f.workDir)
	}
}

// KubeconfigPath returns the path to the kubeconfig of the kind cluster.
func (f *Framework) KubeconfigPath() string {
	return f.kubeconfigPath
}

func clusterExists() bool {
	out, err := exec.Command("kind", "get", "clusters").Output()
	if err != nil {
		return false
	}
	for _, name := range strings.Fields(string(out)) {
		if name == clusterName {
			return true
		}
	}
	return false
}

// workerCount reads KIND_WORKERS; one worker runs a JobManager and a TaskManager.
func workerCount() int {
	if n, err := strconv.Atoi(os.Getenv("KIND_WORKERS")); err == nil && n >= 0 {
		return n
	}
	return 1
}

func createCluster(ctx context.Context) error {
	config := "kind: Cluster\napiVersion: kind.x-k8s.io/v1alpha4\nnodes:\n- role: control-plane\n" +
		strings.Repeat("- role: worker\n", workerCount())

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	// #nosec G204 -- test code with controlled command arguments
	cmd := exec.CommandContext(ctx, "kind", "create", "cluster",
		"--name", clusterName, "--config", "-", "--wait", "120s")
	cmd.Stdin = strings.NewReader(config)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// preloadImage copies image from the local docker daemon into the kind nodes so
// pods do not pull it from the registry. Missing local images are skipped.
func preloadImage(ctx context.Context, image string) {
	if err := exec.CommandContext(ctx, "docker", "image", "inspect", image).Run(); err != nil {
		return
	}
	fmt.Printf("Loading %s into kind cluster\n", image)
	// #nosec G204 -- test code with controlled command arguments
	if out, err := exec.CommandContext(ctx, "kind", "load", "docker-image", image, "--name", clusterName).CombinedOutput(); err != nil {
		fmt.Printf("Could not preload %s: %v: %s\n", image, err, out)
	}
}
