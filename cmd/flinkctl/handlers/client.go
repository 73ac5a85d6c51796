// Package handlers implements the business logic of the flinkctl commands.
package handlers

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
)

// newKubeClient builds a client from the kubeconfig and returns it together
// with the namespace of the current context. Tests replace it with a fake.
var newKubeClient = func(kubeconfig string) (client.Client, string, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		rules.ExplicitPath = kubeconfig
	}
	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{})

	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	namespace, _, err := clientConfig.Namespace()
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve namespace: %w", err)
	}

	k8sClient, err := client.New(restConfig, client.Options{Scheme: flinkv1alpha1.Scheme})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return k8sClient, namespace, nil
}

// connect returns a client and the namespace to use, preferring an explicit one.
func connect(kubeconfig, namespace string) (client.Client, string, error) {
	k8sClient, contextNamespace, err := newKubeClient(kubeconfig)
	if err != nil {
		return nil, "", err
	}
	if namespace == "" {
		namespace = contextNamespace
	}
	return k8sClient, namespace, nil
}

// isInteractiveTTY is replaced in tests to force plain output.
var isInteractiveTTY = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
