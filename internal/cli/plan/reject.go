package plan

import (
	"fmt"

	"github.com/greenlightd/greenlight/internal/display"
	"github.com/spf13/cobra"
)

var rejectFeedback string

var rejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a proposed plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		p, err := store.Reject(args[0], rejectFeedback)
		if err != nil {
			return err
		}
		fmt.Printf("Rejected %s (%s, v%d)\n", p.ID, display.RenderStatus(p.Status), p.Version)
		return nil
	},
}

func init() {
	rejectCmd.Flags().StringVarP(&rejectFeedback, "feedback", "m", "", "Feedback for the proposer, appended to the plan")
}
