// Package cli wires the gpumon commands: the monitoring dashboard and the
// cluster management subcommands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configDirFlag overrides the cluster config directory.
var configDirFlag string

// rootCmd is the base command. Running gpumon with a cluster name starts
// the dashboard directly.
var rootCmd = &cobra.Command{
	Use:   "gpumon [cluster]",
	Short: "Live GPU fleet-health dashboard",
	Long: `gpumon polls a cluster of GPU hosts over SSH and renders a live
terminal dashboard of device utilization, memory, temperature, and power,
with per-host and per-device problem detection.

Cluster definitions live as YAML files in the config directory
(one file per cluster, listing its hosts).

Examples:
  gpumon training
  gpumon monitor training --interval 10s --details
  gpumon cluster list`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return monitorCommand(args[0], monitorOptions{
			ConfigDir: configDirFlag,
		})
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and prints any error with its suggestion.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "",
		"cluster config directory (default: user config dir)")
}
