package plan

import "time"

// Detection is the classification of one executing plan at scan time.
// Stalled plans have outlived the configured timeout; the rest are surfaced
// as "still executing, unconfirmed" for operator attention — this core
// cannot tell a live run from a process that died before the timeout.
type Detection struct {
	Plan    *Plan
	Stalled bool
	Elapsed time.Duration
}

// Detector scans executing plans at process start and classifies them
// against a timeout. It never writes; callers commit the stalled transition
// through Store.MarkStalled.
type Detector struct {
	store   *Store
	timeout time.Duration
	now     func() time.Time
}

// DetectorOption customizes a Detector.
type DetectorOption func(*Detector)

// WithDetectorClock overrides the detector's time source.
func WithDetectorClock(clock func() time.Time) DetectorOption {
	return func(d *Detector) { d.now = clock }
}

// NewDetector builds a detector over the store with the given timeout.
func NewDetector(store *Store, timeout time.Duration, opts ...DetectorOption) *Detector {
	d := &Detector{store: store, timeout: timeout, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Scan classifies every plan currently in executing status.
func (d *Detector) Scan() ([]Detection, error) {
	plans, err := d.store.List(StatusExecuting)
	if err != nil {
		return nil, err
	}

	now := d.now().UTC()
	detections := make([]Detection, 0, len(plans))
	for _, p := range plans {
		if p.ExecutionStartedAt.IsZero() {
			// Executing with no recorded start time: there is no way to
			// measure elapsed time, so treat it as stalled.
			detections = append(detections, Detection{Plan: p, Stalled: true})
			continue
		}
		elapsed := now.Sub(p.ExecutionStartedAt)
		detections = append(detections, Detection{
			Plan:    p,
			Stalled: elapsed > d.timeout,
			Elapsed: elapsed,
		})
	}
	return detections, nil
}
