package executor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/greenlightd/greenlight/internal/plan"
)

// Runner dispatches one plan step to whatever executes it. The host agent
// runtime supplies the real implementation; this package only depends on the
// capability, not on any framework.
type Runner interface {
	RunStep(ctx context.Context, p *plan.Plan, stepIndex int) (summary string, err error)
}

// commandContext is the function used to create exec.Cmd instances.
// It can be replaced in tests to mock command execution.
var commandContext = exec.CommandContext

const maxSummaryLen = 500

// AgentRunner dispatches steps by invoking an external agent command. The
// step's tool, operation, target and description are passed as arguments.
type AgentRunner struct {
	command string
}

// NewAgentRunner creates a runner for the given command line, e.g.
// "my-agent step". The command comes from project settings or the CLI.
func NewAgentRunner(command string) (*AgentRunner, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("executor: agent command is empty; set agent_command in settings or pass --agent")
	}
	return &AgentRunner{command: command}, nil
}

// RunStep invokes the agent command for one step and returns its trimmed
// output as the step summary.
func (r *AgentRunner) RunStep(ctx context.Context, p *plan.Plan, stepIndex int) (string, error) {
	step := p.Steps[stepIndex]

	fields := strings.Fields(r.command)
	args := append(fields[1:],
		"--plan", p.ID,
		"--tool", step.Tool,
		"--operation", step.Operation,
	)
	if step.Target != "" {
		args = append(args, "--target", step.Target)
	}
	args = append(args, step.Description)

	cmd := commandContext(ctx, fields[0], args...)
	out, err := cmd.CombinedOutput()
	summary := truncate(strings.TrimSpace(string(out)), maxSummaryLen)
	if err != nil {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		return summary, fmt.Errorf("agent command failed: %w", err)
	}
	return summary, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
