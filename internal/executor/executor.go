// Package executor drives an approved plan through its execution lifecycle:
// preflight, the executing transition, per-step dispatch with checkpointing,
// and the terminal transition. Step dispatch itself is behind the Runner
// interface; the executor only orchestrates state.
package executor

import (
	"context"
	"fmt"

	"github.com/greenlightd/greenlight/internal/plan"
)

// Executor runs one plan at a time. All durable state lives in the plan
// store and the checkpoint log; the executor holds nothing worth recovering.
type Executor struct {
	store       *plan.Store
	checkpoints *plan.CheckpointLog
	runner      Runner
	inventory   plan.ToolInventory
}

// New creates an executor over the given collaborators.
func New(store *plan.Store, checkpoints *plan.CheckpointLog, runner Runner, inventory plan.ToolInventory) *Executor {
	return &Executor{
		store:       store,
		checkpoints: checkpoints,
		runner:      runner,
		inventory:   inventory,
	}
}

// Execute runs an approved plan to a terminal status. expectedVersion is the
// version the caller observed when it decided to run; preflight refuses to
// start if the plan has been modified since. A step failure marks the plan
// failed; context cancellation maps to the cancel transition with the
// interrupted step reset to pending. The checkpoint log records every step
// event for post-crash diagnosis.
func (e *Executor) Execute(ctx context.Context, id string, expectedVersion int) error {
	if err := plan.Preflight(e.store, id, expectedVersion, e.inventory); err != nil {
		return err
	}

	p, err := e.store.StartExecution(id)
	if err != nil {
		return err
	}
	if err := e.checkpoints.Start(id); err != nil {
		return err
	}

	for i := range p.Steps {
		if ctx.Err() != nil {
			return e.cancelled(id, i)
		}

		if err := e.setScript(id, i, plan.StepInProgress); err != nil {
			return err
		}
		if err := e.checkpoints.Step(id, i, plan.StepInProgress, ""); err != nil {
			return err
		}

		summary, runErr := e.runner.RunStep(ctx, p, i)
		if runErr != nil {
			if ctx.Err() != nil {
				return e.cancelled(id, i)
			}
			return e.failed(id, i, runErr)
		}

		if err := e.setScript(id, i, plan.StepDone); err != nil {
			return err
		}
		if err := e.checkpoints.Step(id, i, plan.StepDone, summary); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("all %d steps completed", len(p.Steps))
	if _, err := e.store.Complete(id, summary); err != nil {
		return err
	}
	return e.checkpoints.End(id, plan.StatusCompleted, summary)
}

func (e *Executor) failed(id string, stepIndex int, runErr error) error {
	reason := fmt.Sprintf("step %d: %v", stepIndex+1, runErr)
	if err := e.setScript(id, stepIndex, plan.StepFailed); err != nil {
		return err
	}
	if err := e.checkpoints.Step(id, stepIndex, plan.StepFailed, runErr.Error()); err != nil {
		return err
	}
	if _, err := e.store.Fail(id, reason); err != nil {
		return err
	}
	if err := e.checkpoints.End(id, plan.StatusFailed, reason); err != nil {
		return err
	}
	return fmt.Errorf("plan %s: %s", id, reason)
}

func (e *Executor) cancelled(id string, stepIndex int) error {
	// The interrupted step goes back to pending; a re-proposed plan starts
	// a fresh attempt, so the marker is purely for the audit trail.
	if err := e.setScript(id, stepIndex, plan.StepPending); err != nil {
		return err
	}
	if _, err := e.store.Cancel(id); err != nil {
		return err
	}
	summary := fmt.Sprintf("cancelled at step %d", stepIndex+1)
	if err := e.checkpoints.End(id, plan.StatusCancelled, summary); err != nil {
		return err
	}
	return context.Canceled
}

// setScript updates the advisory progress marker for one step. The write is
// a normal optimistic-lock update; a conflict here means something else is
// mutating an executing plan and is surfaced, not swallowed.
func (e *Executor) setScript(id string, stepIndex int, status plan.StepStatus) error {
	_, err := e.store.Update(id, func(p *plan.Plan) error {
		for len(p.Scripts) < len(p.Steps) {
			p.Scripts = append(p.Scripts, plan.StepPending)
		}
		if stepIndex < 0 || stepIndex >= len(p.Scripts) {
			return fmt.Errorf("plan %s: step index %d out of range", id, stepIndex)
		}
		p.Scripts[stepIndex] = status
		return nil
	})
	return err
}
