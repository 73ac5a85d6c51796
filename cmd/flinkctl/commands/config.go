package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imamik/flink-operator/cmd/flinkctl/handlers"
)

// Config returns the command for printing the effective Flink configuration.
//
// The configuration is derived exactly like the operator does it, from the
// deployment spec layered over the operator defaults.
//
// Optional flags:
//
//	--file, -f: Read the deployment from a manifest instead of the cluster
//	--defaults-file: Operator-level flink-conf.yaml defaults
//	--output, -o: conf (default), yaml or json
func Config(g *globalOptions) *cobra.Command {
	opts := handlers.ConfigOptions{}

	cmd := &cobra.Command{
		Use:   "config [name]",
		Short: "Print the effective Flink configuration of a deployment",
		Long: `Print the flink-conf.yaml the operator derives for a FlinkDeployment.

Examples:
  # Configuration of a deployment in the cluster
  flinkctl config wordcount

  # Configuration of a local manifest with the operator defaults applied
  flinkctl config -f wordcount.yaml --defaults-file flink-conf.yaml -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.File == "" {
				return fmt.Errorf("either a deployment name or --file is required")
			}
			if len(args) == 1 {
				opts.Name = args[0]
			}
			opts.Kubeconfig = g.kubeconfig
			opts.Namespace = g.namespace
			return handlers.Config(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Path to a FlinkDeployment manifest")
	cmd.Flags().StringVar(&opts.DefaultsFile, "defaults-file", "", "Path to the operator-level flink-conf.yaml defaults")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", handlers.OutputConf, "Output format: conf, yaml or json")

	return cmd
}
