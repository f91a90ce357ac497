package cli

import (
	plancmd "github.com/greenlightd/greenlight/internal/cli/plan"
	"github.com/greenlightd/greenlight/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "greenlight",
	Short:   "Propose, approve and execute agent plans with a durable audit trail",
	Long:    `Greenlight stores multi-step plans proposed by autonomous agents, routes them through human approval, and tracks execution with crash-safe, versioned writes.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(plancmd.PlanCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
