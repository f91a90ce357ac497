package plan

import (
	"fmt"

	"github.com/greenlightd/greenlight/internal/display"
	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a plan that has not finished",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		p, err := store.Cancel(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Cancelled %s (%s, v%d)\n", p.ID, display.RenderStatus(p.Status), p.Version)
		return nil
	},
}
