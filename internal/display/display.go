// Package display renders plans for the terminal. Output is plain text with
// lipgloss styling; nothing here is interactive.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/greenlightd/greenlight/internal/plan"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#5FAFAF") // Teal accent
	secondaryColor = lipgloss.Color("#666666") // Gray for secondary text
	successColor   = lipgloss.Color("#87AF87") // Muted sage for success
	errorColor     = lipgloss.Color("#AF5F5F") // Muted terracotta for errors
	warnColor      = lipgloss.Color("#AFAF5F") // Muted amber for attention

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtleStyle = lipgloss.NewStyle().Foreground(secondaryColor)

	statusStyles = map[plan.Status]lipgloss.Style{
		plan.StatusProposed:    lipgloss.NewStyle().Foreground(primaryColor),
		plan.StatusApproved:    lipgloss.NewStyle().Foreground(successColor),
		plan.StatusExecuting:   lipgloss.NewStyle().Bold(true).Foreground(primaryColor),
		plan.StatusCompleted:   lipgloss.NewStyle().Foreground(successColor),
		plan.StatusFailed:      lipgloss.NewStyle().Foreground(errorColor),
		plan.StatusRejected:    lipgloss.NewStyle().Foreground(errorColor),
		plan.StatusCancelled:   subtleStyle,
		plan.StatusStalled:     lipgloss.NewStyle().Bold(true).Foreground(warnColor),
		plan.StatusNeedsReview: lipgloss.NewStyle().Foreground(warnColor),
	}
)

// RenderStatus returns the styled status token.
func RenderStatus(s plan.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(string(s))
}

// RenderList renders one line per plan: id, status, version, title.
func RenderList(plans []*plan.Plan) string {
	if len(plans) == 0 {
		return subtleStyle.Render("No plans found.")
	}

	var b strings.Builder
	for _, p := range plans {
		fmt.Fprintf(&b, "%s  %-12s  v%-3d  %s\n",
			subtleStyle.Render(fmt.Sprintf("%-28s", p.ID)),
			RenderStatus(p.Status),
			p.Version,
			p.Title,
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderPlan renders the full detail view of one plan.
func RenderPlan(p *plan.Plan) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", subtleStyle.Render("id:"), p.ID)
	fmt.Fprintf(&b, "%s %s\n", subtleStyle.Render("status:"), RenderStatus(p.Status))
	fmt.Fprintf(&b, "%s %d\n", subtleStyle.Render("version:"), p.Version)
	fmt.Fprintf(&b, "%s %s\n", subtleStyle.Render("created:"), p.CreatedAt.Local().Format(time.RFC822))
	fmt.Fprintf(&b, "%s %s\n", subtleStyle.Render("updated:"), p.UpdatedAt.Local().Format(time.RFC822))
	if len(p.ToolsRequired) > 0 {
		fmt.Fprintf(&b, "%s %s\n", subtleStyle.Render("tools:"), strings.Join(p.ToolsRequired, ", "))
	}
	if !p.ExecutionStartedAt.IsZero() {
		fmt.Fprintf(&b, "%s %s\n", subtleStyle.Render("started:"), p.ExecutionStartedAt.Local().Format(time.RFC822))
	}
	if !p.ExecutionEndedAt.IsZero() {
		fmt.Fprintf(&b, "%s %s\n", subtleStyle.Render("ended:"), p.ExecutionEndedAt.Local().Format(time.RFC822))
	}

	if len(p.Steps) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Steps"))
		b.WriteString("\n")
		for i, step := range p.Steps {
			marker := plan.StepPending
			if i < len(p.Scripts) {
				marker = p.Scripts[i]
			}
			fmt.Fprintf(&b, "%s %d. %s %s\n",
				stepMarker(marker), i+1, step.Description,
				subtleStyle.Render(fmt.Sprintf("(%s/%s)", step.Tool, step.Operation)),
			)
		}
	}

	if p.Context != "" {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Context"))
		b.WriteString("\n")
		b.WriteString(p.Context)
		b.WriteString("\n")
	}
	if p.ResultSummary != "" {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Result"))
		b.WriteString("\n")
		b.WriteString(p.ResultSummary)
		b.WriteString("\n")
	}
	if p.Body != "" {
		b.WriteString("\n")
		b.WriteString(p.Body)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderDetections renders the recovery scan report: stalled plans and
// still-executing, unconfirmed ones.
func RenderDetections(detections []plan.Detection) string {
	if len(detections) == 0 {
		return subtleStyle.Render("No executing plans found.")
	}

	var b strings.Builder
	for _, d := range detections {
		if d.Stalled {
			fmt.Fprintf(&b, "%s  %s  %s\n",
				statusStyles[plan.StatusStalled].Render("stalled"),
				d.Plan.ID,
				subtleStyle.Render(fmt.Sprintf("executing for %s", d.Elapsed.Round(time.Second))),
			)
		} else {
			fmt.Fprintf(&b, "%s  %s  %s\n",
				RenderStatus(plan.StatusExecuting),
				d.Plan.ID,
				subtleStyle.Render(fmt.Sprintf("running for %s, unconfirmed", d.Elapsed.Round(time.Second))),
			)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func stepMarker(s plan.StepStatus) string {
	switch s {
	case plan.StepDone:
		return statusStyles[plan.StatusCompleted].Render("[x]")
	case plan.StepInProgress:
		return statusStyles[plan.StatusExecuting].Render("[>]")
	case plan.StepFailed:
		return statusStyles[plan.StatusFailed].Render("[!]")
	default:
		return subtleStyle.Render("[ ]")
	}
}
