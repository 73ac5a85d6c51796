// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// globalOptions are the flags shared by every command.
type globalOptions struct {
	kubeconfig string
	namespace  string
}

// Root returns the root command for the flinkctl CLI.
func Root() *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "flinkctl",
		Short:         "Inspect Flink deployments managed by the flink-operator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&g.kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (default: KUBECONFIG or ~/.kube/config)")
	cmd.PersistentFlags().StringVarP(&g.namespace, "namespace", "n", "", "Namespace of the deployments (default: namespace of the current context)")

	cmd.AddCommand(Status(g))
	cmd.AddCommand(Config(g))
	cmd.AddCommand(Version())

	return cmd
}
