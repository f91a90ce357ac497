package plan

import "time"

// Status is the lifecycle state of a plan. Exactly one value at any time;
// transitions are restricted to the edges enforced by the store.
type Status string

const (
	StatusProposed    Status = "proposed"
	StatusApproved    Status = "approved"
	StatusExecuting   Status = "executing"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusRejected    Status = "rejected"
	StatusCancelled   Status = "cancelled"
	StatusStalled     Status = "stalled"
	StatusNeedsReview Status = "needs_review"
)

// Terminal reports whether the status ends a plan's lifecycle. Terminal
// plans stay on disk; archival is out of scope.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Known reports whether s is one of the recognized status values.
func (s Status) Known() bool {
	switch s {
	case StatusProposed, StatusApproved, StatusExecuting, StatusCompleted,
		StatusFailed, StatusRejected, StatusCancelled, StatusStalled,
		StatusNeedsReview:
		return true
	}
	return false
}

// StepStatus is an advisory per-step progress marker. It is mutated during
// execution but plays no part in the optimistic-locking protocol.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepDone       StepStatus = "done"
	StepFailed     StepStatus = "failed"
)

// Step is one action in a plan. Steps are immutable after creation;
// re-proposing is a new plan.
type Step struct {
	Description string
	Tool        string
	Operation   string
	Target      string
}

// Plan is the versioned document representing a proposed multi-step action
// and its lifecycle state. One file per plan.
type Plan struct {
	ID            string
	Title         string
	Status        Status
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ToolsRequired []string
	Steps         []Step

	// Populated only once status enters executing / a terminal state.
	ExecutionStartedAt time.Time
	ExecutionEndedAt   time.Time
	ResultSummary      string

	// Scripts holds one advisory progress marker per step.
	Scripts []StepStatus

	// Context and Body are free-form narrative, never interpreted by the
	// store. Rejection feedback is appended to Body.
	Context string
	Body    string
}

// Clone returns a deep copy so cached plans are never aliased by callers.
func (p *Plan) Clone() *Plan {
	c := *p
	c.ToolsRequired = append([]string(nil), p.ToolsRequired...)
	c.Steps = append([]Step(nil), p.Steps...)
	c.Scripts = append([]StepStatus(nil), p.Scripts...)
	return &c
}

// RequiresTool reports whether the plan declares the named capability.
func (p *Plan) RequiresTool(name string) bool {
	for _, t := range p.ToolsRequired {
		if t == name {
			return true
		}
	}
	return false
}

// Draft holds the caller-supplied fields for a new plan. The store assigns
// id, status, version and timestamps.
type Draft struct {
	Title         string
	Steps         []Step
	ToolsRequired []string
	Context       string
	Body          string
}
