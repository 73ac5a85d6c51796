package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/imamik/flink-operator/cmd/flinkctl/handlers"
)

// Status returns the command for displaying the state of FlinkDeployments.
//
// Optional flags:
//
//	--all-namespaces, -A: List deployments of every namespace
//	--watch, -w: Continuously watch status updates
//	--interval: Refresh interval in watch mode
//	--json: Output in JSON format
//	--live: Query the REST API of every deployment exposed through an ingress
func Status(g *globalOptions) *cobra.Command {
	opts := handlers.StatusOptions{}

	cmd := &cobra.Command{
		Use:   "status [name]",
		Short: "Show the state of Flink deployments",
		Long: `Display the state of FlinkDeployments as recorded by the operator.

Shows for every deployment:
  - Mode (session or application)
  - JobManager deployment status
  - Job state and last savepoint (application mode)
  - Whether the current spec has been reconciled or is still pending

Examples:
  # Show all deployments of the current namespace
  flinkctl status

  # Show one deployment with live cluster data from its ingress
  flinkctl status wordcount --live

  # Watch every namespace
  flinkctl status -A --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Kubeconfig = g.kubeconfig
			opts.Namespace = g.namespace
			if len(args) == 1 {
				opts.Name = args[0]
			}
			return handlers.Status(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.AllNamespaces, "all-namespaces", "A", false, "List deployments of every namespace")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Continuously watch status updates")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 5*time.Second, "Refresh interval in watch mode")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&opts.Live, "live", false, "Query the Flink REST API through each deployment's ingress")

	return cmd
}
