package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/yaml"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/config"
	"github.com/imamik/flink-operator/internal/flink/conf"
)

// Output formats of the config command.
const (
	OutputConf = "conf"
	OutputYAML = "yaml"
	OutputJSON = "json"
)

// ConfigOptions are the inputs of the config command.
type ConfigOptions struct {
	Kubeconfig   string
	Namespace    string
	Name         string
	File         string
	DefaultsFile string
	Output       string
}

// Config handles the config command.
//
// It prints the configuration the operator derives for a deployment, read
// either from the cluster or from a local manifest.
func Config(ctx context.Context, out io.Writer, opts ConfigOptions) error {
	defaults, err := config.LoadFlinkDefaults(opts.DefaultsFile)
	if err != nil {
		return err
	}

	deployment, err := loadDeployment(ctx, opts)
	if err != nil {
		return err
	}

	cfg := conf.NewDeriver(defaults).Derive(deployment)
	return printConfiguration(out, cfg, opts.Output)
}

func loadDeployment(ctx context.Context, opts ConfigOptions) (*flinkv1alpha1.FlinkDeployment, error) {
	if opts.File != "" {
		return readDeploymentManifest(opts.File, opts.Namespace)
	}

	k8sClient, namespace, err := connect(opts.Kubeconfig, opts.Namespace)
	if err != nil {
		return nil, err
	}

	deployment := &flinkv1alpha1.FlinkDeployment{}
	if err := k8sClient.Get(ctx, client.ObjectKey{Namespace: namespace, Name: opts.Name}, deployment); err != nil {
		return nil, fmt.Errorf("failed to get FlinkDeployment %s/%s: %w", namespace, opts.Name, err)
	}
	return deployment, nil
}

// readDeploymentManifest reads a FlinkDeployment from a YAML or JSON manifest.
func readDeploymentManifest(path, namespace string) (*flinkv1alpha1.FlinkDeployment, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	deployment := &flinkv1alpha1.FlinkDeployment{}
	if err := yaml.UnmarshalStrict(data, deployment); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if deployment.Name == "" {
		return nil, fmt.Errorf("manifest %s has no metadata.name", path)
	}
	if namespace != "" {
		deployment.Namespace = namespace
	}
	if deployment.Namespace == "" {
		deployment.Namespace = "default"
	}
	return deployment, nil
}

func printConfiguration(out io.Writer, cfg conf.Configuration, output string) error {
	switch output {
	case "", OutputConf:
		fmt.Fprint(out, cfg.Render())
	case OutputYAML:
		data, err := yaml.Marshal(map[string]string(cfg))
		if err != nil {
			return fmt.Errorf("failed to marshal configuration: %w", err)
		}
		fmt.Fprint(out, string(data))
	case OutputJSON:
		data, err := json.MarshalIndent(map[string]string(cfg), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal configuration: %w", err)
		}
		fmt.Fprintln(out, string(data))
	default:
		return fmt.Errorf("unsupported output format %q (use conf, yaml or json)", output)
	}
	return nil
}
