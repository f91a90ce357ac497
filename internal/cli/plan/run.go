package plan

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/greenlightd/greenlight/internal/config"
	"github.com/greenlightd/greenlight/internal/display"
	"github.com/greenlightd/greenlight/internal/executor"
	"github.com/greenlightd/greenlight/internal/plan"
	"github.com/spf13/cobra"
)

var runAgentCommand string

var runCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Execute an approved plan",
	Long:  `Execute an approved plan. Preflight checks version freshness and tool availability, then each step is dispatched to the agent command with progress checkpointed for audit.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func init() {
	runCmd.Flags().StringVar(&runAgentCommand, "agent", "", "Agent command to dispatch steps to (overrides settings)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	id := args[0]

	store, root, err := openStore()
	if err != nil {
		return err
	}
	settings, err := config.Load(root)
	if err != nil {
		return err
	}

	agentCommand := settings.AgentCommand
	if runAgentCommand != "" {
		agentCommand = runAgentCommand
	}
	runner, err := executor.NewAgentRunner(agentCommand)
	if err != nil {
		return err
	}

	// Show the operator what is about to run; the fetched version pins the
	// preflight check, so a plan modified after this point refuses to start.
	p, err := store.Get(id)
	if err != nil {
		return err
	}
	fmt.Println(display.RenderPlan(p))
	fmt.Println()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	checkpoints := plan.NewCheckpointLog(store.SessionsDir())
	inventory := plan.StaticInventory(settings.AvailableTools)
	exec := executor.New(store, checkpoints, runner, inventory)

	if err := exec.Execute(ctx, id, p.Version); err != nil {
		if errors.Is(err, plan.ErrVersionConflict) {
			return fmt.Errorf("%w\nAnother process modified the plan; re-check it with `greenlight plan show %s` and retry", err, id)
		}
		return err
	}

	fmt.Printf("Plan %s completed. Session log: %s\n", id, checkpoints.Path(id))
	return nil
}
