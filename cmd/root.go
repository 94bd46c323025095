package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "policyvault",
	Short: "Version-control engine for governed policy documents",
	Long: `policyvault snapshots a governed document on every committed edit,
computes structural diffs between any two snapshots, and restores earlier
snapshots append-only under a mandatory justification.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
