package plan

import (
	"strings"
	"time"
)

// The lifecycle engine: every transition is one guarded, version-incrementing
// Update call. There is no raw status setter; Update itself rejects any
// status change that does not follow an edge below.
//
//	proposed  --approve-->        approved
//	proposed  --reject-->         rejected
//	approved  --start-->          executing
//	executing --complete-->       completed
//	executing --fail-->           failed
//	executing --(detector)-->     stalled
//	<non-terminal> --cancel-->    cancelled

// legalEdge reports whether from -> to is a permitted status change.
func legalEdge(from, to Status) bool {
	switch {
	case from == StatusProposed && (to == StatusApproved || to == StatusRejected):
		return true
	case from == StatusApproved && to == StatusExecuting:
		return true
	case from == StatusExecuting && (to == StatusCompleted || to == StatusFailed || to == StatusStalled):
		return true
	case to == StatusCancelled && !from.Terminal():
		return true
	}
	return false
}

// Approve moves a proposed plan to approved.
func (s *Store) Approve(id string) (*Plan, error) {
	return s.transition(id, "approve", StatusProposed, StatusApproved, nil)
}

// Reject moves a proposed plan to rejected, appending the reviewer's
// feedback to the plan body.
func (s *Store) Reject(id, feedback string) (*Plan, error) {
	return s.transition(id, "reject", StatusProposed, StatusRejected, func(p *Plan) {
		feedback = strings.TrimSpace(feedback)
		if feedback == "" {
			return
		}
		section := "## Feedback\n\n" + feedback
		if p.Body == "" {
			p.Body = section
		} else {
			p.Body = p.Body + "\n\n" + section
		}
	})
}

// StartExecution moves an approved plan to executing and records the start
// time used by the stalled-plan detector.
func (s *Store) StartExecution(id string) (*Plan, error) {
	return s.transition(id, "start execution", StatusApproved, StatusExecuting, func(p *Plan) {
		p.ExecutionStartedAt = s.now().UTC().Truncate(time.Second)
	})
}

// Complete moves an executing plan to completed with a result summary.
func (s *Store) Complete(id, summary string) (*Plan, error) {
	return s.transition(id, "complete", StatusExecuting, StatusCompleted, func(p *Plan) {
		p.ExecutionEndedAt = s.now().UTC().Truncate(time.Second)
		p.ResultSummary = strings.TrimSpace(summary)
	})
}

// Fail moves an executing plan to failed with the failure reason as its
// result summary.
func (s *Store) Fail(id, reason string) (*Plan, error) {
	return s.transition(id, "fail", StatusExecuting, StatusFailed, func(p *Plan) {
		p.ExecutionEndedAt = s.now().UTC().Truncate(time.Second)
		p.ResultSummary = strings.TrimSpace(reason)
	})
}

// MarkStalled flags an executing plan whose run exceeded the configured
// timeout. Invoked by the caller of the detector, never by the detector
// itself; the plan is flagged for operator attention, not terminated.
func (s *Store) MarkStalled(id string) (*Plan, error) {
	return s.transition(id, "mark stalled", StatusExecuting, StatusStalled, nil)
}

// Cancel moves any non-terminal plan to cancelled.
func (s *Store) Cancel(id string) (*Plan, error) {
	return s.Update(id, func(p *Plan) error {
		if p.Status.Terminal() {
			return &TransitionError{ID: id, Operation: "cancel", Status: p.Status}
		}
		if p.Status == StatusExecuting {
			p.ExecutionEndedAt = s.now().UTC().Truncate(time.Second)
		}
		p.Status = StatusCancelled
		return nil
	})
}

func (s *Store) transition(id, op string, from, to Status, apply func(*Plan)) (*Plan, error) {
	return s.Update(id, func(p *Plan) error {
		if p.Status != from {
			return &TransitionError{ID: id, Operation: op, Status: p.Status}
		}
		p.Status = to
		if apply != nil {
			apply(p)
		}
		return nil
	})
}
