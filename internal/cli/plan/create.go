package plan

import (
	"fmt"
	"strings"

	"github.com/greenlightd/greenlight/internal/display"
	"github.com/greenlightd/greenlight/internal/plan"
	"github.com/spf13/cobra"
)

var (
	createTitle   string
	createSteps   []string
	createTools   []string
	createContext string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Propose a new plan",
	Long: `Propose a new plan. Each --step is "description|tool|operation" with an
optional fourth "|target" segment. The plan starts in proposed status and
must be approved before it can run.`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createTitle, "title", "", "Plan title (required)")
	createCmd.Flags().StringArrayVar(&createSteps, "step", nil, `Step as "description|tool|operation[|target]" (repeatable)`)
	createCmd.Flags().StringArrayVar(&createTools, "tool", nil, "Required tool capability (repeatable)")
	createCmd.Flags().StringVar(&createContext, "context", "", "Free-form context for the reviewer")
	createCmd.MarkFlagRequired("title")
}

func runCreate(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}

	steps, err := parseSteps(createSteps)
	if err != nil {
		return err
	}

	p, err := store.Create(plan.Draft{
		Title:         createTitle,
		Steps:         steps,
		ToolsRequired: createTools,
		Context:       createContext,
	})
	if err != nil {
		return err
	}

	fmt.Println(display.RenderPlan(p))
	fmt.Printf("\nProposed plan %s. Approve it with: greenlight plan approve %s\n", p.ID, p.ID)
	return nil
}

func parseSteps(values []string) ([]plan.Step, error) {
	var steps []plan.Step
	for i, v := range values {
		parts := strings.SplitN(v, "|", 4)
		if len(parts) < 3 {
			return nil, fmt.Errorf("step %d: expected \"description|tool|operation[|target]\", got %q", i+1, v)
		}
		step := plan.Step{
			Description: strings.TrimSpace(parts[0]),
			Tool:        strings.TrimSpace(parts[1]),
			Operation:   strings.TrimSpace(parts[2]),
		}
		if len(parts) == 4 {
			step.Target = strings.TrimSpace(parts[3])
		}
		if step.Description == "" {
			return nil, fmt.Errorf("step %d: description is empty", i+1)
		}
		steps = append(steps, step)
	}
	return steps, nil
}
