package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PlanLevel is the step index sentinel for plan-level checkpoint records.
const PlanLevel = -1

// CheckpointRecord is one line of a plan's session log: the forensic trail
// used to diagnose what happened when a process crashed mid-execution.
// Records are never rewritten or deleted, and the log is never parsed back
// into a Plan.
type CheckpointRecord struct {
	RecordID  string    `json:"record_id"`
	PlanID    string    `json:"plan_id"`
	StepIndex int       `json:"step_index"`
	Status    string    `json:"status"`
	Summary   string    `json:"summary,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CheckpointLog appends step-level execution events to one JSON-lines file
// per plan, independent of the plan document and its locking protocol.
type CheckpointLog struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// CheckpointOption customizes a CheckpointLog.
type CheckpointOption func(*CheckpointLog)

// WithCheckpointClock overrides the record timestamp source.
func WithCheckpointClock(clock func() time.Time) CheckpointOption {
	return func(l *CheckpointLog) { l.now = clock }
}

// NewCheckpointLog creates a log writing under the given sessions directory.
func NewCheckpointLog(dir string, opts ...CheckpointOption) *CheckpointLog {
	l := &CheckpointLog{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the session file for a plan.
func (l *CheckpointLog) Path(planID string) string {
	return filepath.Join(l.dir, planID+".jsonl")
}

// Start appends the plan-level "execution started" record.
func (l *CheckpointLog) Start(planID string) error {
	return l.append(planID, PlanLevel, "started", "")
}

// Step appends a step-level record.
func (l *CheckpointLog) Step(planID string, stepIndex int, status StepStatus, summary string) error {
	return l.append(planID, stepIndex, string(status), summary)
}

// End appends the plan-level terminal record.
func (l *CheckpointLog) End(planID string, final Status, summary string) error {
	return l.append(planID, PlanLevel, string(final), summary)
}

func (l *CheckpointLog) append(planID string, stepIndex int, status, summary string) error {
	rec := CheckpointRecord{
		RecordID:  uuid.New().String(),
		PlanID:    planID,
		StepIndex: stepIndex,
		Status:    status,
		Summary:   summary,
		Timestamp: l.now().UTC(),
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("checkpoint %s: marshal record: %w", planID, err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("checkpoint %s: create sessions directory: %w", planID, err)
	}
	f, err := os.OpenFile(l.Path(planID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("checkpoint %s: open session log: %w", planID, err)
	}
	defer f.Close()
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("checkpoint %s: append record: %w", planID, err)
	}
	return nil
}
