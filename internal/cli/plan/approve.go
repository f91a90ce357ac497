package plan

import (
	"fmt"

	"github.com/greenlightd/greenlight/internal/display"
	"github.com/spf13/cobra"
)

var approveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a proposed plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		p, err := store.Approve(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Approved %s (%s, v%d). Run it with: greenlight plan run %s\n",
			p.ID, display.RenderStatus(p.Status), p.Version, p.ID)
		return nil
	},
}
