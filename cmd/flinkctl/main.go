// Package main is the entry point for the flinkctl CLI.
//
// flinkctl inspects FlinkDeployment resources managed by the flink-operator.
// It shows what the operator last reconciled, what is still pending and the
// effective Flink configuration the operator derives for a deployment.
//
// Commands: status, config, version.
//
// For detailed usage information, run:
//
//	flinkctl --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/flink-operator/cmd/flinkctl/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
