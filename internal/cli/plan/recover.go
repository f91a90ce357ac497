package plan

import (
	"fmt"
	"time"

	"github.com/greenlightd/greenlight/internal/config"
	"github.com/greenlightd/greenlight/internal/display"
	"github.com/greenlightd/greenlight/internal/plan"
	"github.com/spf13/cobra"
)

var recoverTimeoutMinutes int

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Scan executing plans after a restart and flag stalled ones",
	Long: `Scan plans left in executing status, compare their elapsed time against
the executor timeout, and mark the ones past it as stalled. Plans within the
timeout are reported as still executing but unconfirmed; nothing is ever
terminated automatically.`,
	RunE: runRecover,
}

func init() {
	recoverCmd.Flags().IntVar(&recoverTimeoutMinutes, "timeout", 0, "Timeout in minutes (overrides settings)")
}

func runRecover(cmd *cobra.Command, args []string) error {
	store, root, err := openStore()
	if err != nil {
		return err
	}
	settings, err := config.Load(root)
	if err != nil {
		return err
	}

	timeout := settings.ExecutorTimeout()
	if recoverTimeoutMinutes > 0 {
		timeout = time.Duration(recoverTimeoutMinutes) * time.Minute
	}

	detector := plan.NewDetector(store, timeout)
	detections, err := detector.Scan()
	if err != nil {
		return err
	}

	for _, d := range detections {
		if !d.Stalled {
			continue
		}
		if _, err := store.MarkStalled(d.Plan.ID); err != nil {
			return fmt.Errorf("mark %s stalled: %w", d.Plan.ID, err)
		}
	}

	fmt.Println(display.RenderDetections(detections))
	return nil
}
