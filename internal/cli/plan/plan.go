package plan

import (
	"github.com/spf13/cobra"
)

// PlanCmd is the parent command for plan-related subcommands.
var PlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage and execute plans",
	Long:  `Commands for proposing, reviewing and executing plans.`,
}

func init() {
	PlanCmd.AddCommand(createCmd)
	PlanCmd.AddCommand(listCmd)
	PlanCmd.AddCommand(showCmd)
	PlanCmd.AddCommand(approveCmd)
	PlanCmd.AddCommand(rejectCmd)
	PlanCmd.AddCommand(cancelCmd)
	PlanCmd.AddCommand(runCmd)
	PlanCmd.AddCommand(recoverCmd)
}
