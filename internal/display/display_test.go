package display

import (
	"strings"
	"testing"
	"time"

	"github.com/greenlightd/greenlight/internal/plan"
)

func samplePlan() *plan.Plan {
	now := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	return &plan.Plan{
		ID:            "a1b2c3-send-reminder",
		Title:         "Send reminder",
		Status:        plan.StatusExecuting,
		Version:       3,
		CreatedAt:     now,
		UpdatedAt:     now,
		ToolsRequired: []string{"mail"},
		Steps: []plan.Step{
			{Description: "Draft the reminder", Tool: "mail", Operation: "draft"},
			{Description: "Send it", Tool: "mail", Operation: "send"},
		},
		Scripts: []plan.StepStatus{plan.StepDone, plan.StepInProgress},
		Context: "Bob asked for a nudge.",
	}
}

func TestRenderList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		out := RenderList(nil)
		if !strings.Contains(out, "No plans found") {
			t.Errorf("got %q", out)
		}
	})

	t.Run("one line per plan", func(t *testing.T) {
		out := RenderList([]*plan.Plan{samplePlan()})
		for _, want := range []string{"a1b2c3-send-reminder", "executing", "v3", "Send reminder"} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in %q", want, out)
			}
		}
	})
}

func TestRenderPlan(t *testing.T) {
	p := samplePlan()
	p.ResultSummary = "halfway there"
	out := RenderPlan(p)

	for _, want := range []string{
		"Send reminder",
		"a1b2c3-send-reminder",
		"executing",
		"Draft the reminder",
		"(mail/draft)",
		"[x]",
		"[>]",
		"Bob asked for a nudge.",
		"halfway there",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output", want)
		}
	}
}

func TestRenderDetections(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		out := RenderDetections(nil)
		if !strings.Contains(out, "No executing plans") {
			t.Errorf("got %q", out)
		}
	})

	t.Run("stalled and unconfirmed", func(t *testing.T) {
		p := samplePlan()
		out := RenderDetections([]plan.Detection{
			{Plan: p, Stalled: true, Elapsed: time.Hour},
			{Plan: p, Stalled: false, Elapsed: 5 * time.Minute},
		})
		if !strings.Contains(out, "stalled") {
			t.Errorf("missing stalled line: %q", out)
		}
		if !strings.Contains(out, "unconfirmed") {
			t.Errorf("missing unconfirmed line: %q", out)
		}
	})
}

func TestStepMarker(t *testing.T) {
	tests := []struct {
		status plan.StepStatus
		want   string
	}{
		{plan.StepDone, "[x]"},
		{plan.StepInProgress, "[>]"},
		{plan.StepFailed, "[!]"},
		{plan.StepPending, "[ ]"},
	}
	for _, tc := range tests {
		if got := stepMarker(tc.status); !strings.Contains(got, tc.want) {
			t.Errorf("stepMarker(%q): got %q, want %q", tc.status, got, tc.want)
		}
	}
}
