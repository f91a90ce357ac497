package plan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/greenlightd/greenlight/internal/util"
)

const (
	// GreenlightDir is the per-project state directory.
	GreenlightDir = ".greenlight"

	plansDir     = "plans"
	sessionsDir  = "sessions"
	artifactsDir = "artifacts"
	planExt      = ".md"

	maxIDAttempts = 10
)

// Store owns the on-disk plan directory. Writes are crash-safe (temp file +
// atomic rename) and concurrent mutation is detected through optimistic
// locking: every successful write increments the plan version by exactly one,
// and the on-disk version is verified immediately before commit. The losing
// writer in a race gets a ConflictError instead of silently overwriting.
type Store struct {
	root string
	now  func() time.Time

	mu    sync.Mutex
	cache map[string]*Plan

	// writeMu serializes the verify-commit window for writers sharing this
	// store. Cross-process races are still decided by the on-disk version
	// check inside that window.
	writeMu sync.Mutex
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithClock overrides the time source, for staleness and timestamp tests.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) { s.now = clock }
}

// NewStore builds a store rooted at the given project directory. Plan files
// live under <project>/.greenlight/plans/.
func NewStore(projectDir string, opts ...StoreOption) *Store {
	s := &Store{
		root:  projectDir,
		now:   time.Now,
		cache: make(map[string]*Plan),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlansDir returns the directory holding the plan documents.
func (s *Store) PlansDir() string {
	return filepath.Join(s.root, GreenlightDir, plansDir)
}

// SessionsDir returns the directory holding per-plan checkpoint logs.
func (s *Store) SessionsDir() string {
	return filepath.Join(s.PlansDir(), sessionsDir)
}

// ArtifactsDir returns the directory for a plan's large context blobs. The
// store never parses anything under it.
func (s *Store) ArtifactsDir(id string) string {
	return filepath.Join(s.PlansDir(), artifactsDir, id)
}

func (s *Store) planPath(id string) string {
	return filepath.Join(s.PlansDir(), id+planExt)
}

// Create assigns a fresh id to the draft and writes it as a proposed plan at
// version 1. The id is a crypto-random short id plus a slug of the title and
// is collision-checked against existing files.
func (s *Store) Create(draft Draft) (*Plan, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, fmt.Errorf("plan: create: title is required")
	}
	if err := os.MkdirAll(s.PlansDir(), 0755); err != nil {
		return nil, fmt.Errorf("plan: create plans directory: %w", err)
	}

	id, err := s.freshID(draft.Title)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	p := &Plan{
		ID:            id,
		Title:         draft.Title,
		Status:        StatusProposed,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
		ToolsRequired: append([]string(nil), draft.ToolsRequired...),
		Steps:         append([]Step(nil), draft.Steps...),
		Context:       strings.TrimSpace(draft.Context),
		Body:          strings.TrimSpace(draft.Body),
	}
	for range p.Steps {
		p.Scripts = append(p.Scripts, StepPending)
	}

	if err := s.writeAtomic(p); err != nil {
		return nil, err
	}
	s.cachePut(p)
	return p.Clone(), nil
}

// Get returns the plan by id, from the cache when present, otherwise from
// disk (populating the cache).
func (s *Store) Get(id string) (*Plan, error) {
	s.mu.Lock()
	cached, ok := s.cache[id]
	s.mu.Unlock()
	if ok {
		return cached.Clone(), nil
	}

	p, err := s.readDisk(id)
	if err != nil {
		return nil, err
	}
	s.cachePut(p)
	return p.Clone(), nil
}

// List enumerates every plan file in the store directory, optionally
// filtered by status. Order follows filesystem enumeration; callers needing
// a display order must sort.
func (s *Store) List(statuses ...Status) ([]*Plan, error) {
	entries, err := os.ReadDir(s.PlansDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plan: read plans directory: %w", err)
	}

	var plans []*Plan
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), planExt) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), planExt)
		p, err := s.Get(id)
		if err != nil {
			return nil, fmt.Errorf("plan: list %s: %w", entry.Name(), err)
		}
		if len(statuses) > 0 && !statusIn(p.Status, statuses) {
			continue
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// Update runs one read-modify-write cycle against the plan. The mutator is
// applied to an in-memory copy; the version is bumped by exactly one and
// updated_at refreshed; the on-disk version is re-read immediately before
// commit and, if it no longer matches, the write is aborted with a
// ConflictError. The commit itself writes a fresh temporary file and renames
// it into place, so no reader ever observes a partially written file. The
// verify-commit window is held under a store-level lock: when writers race
// on one plan, exactly one commit lands per version.
//
// A mutator error aborts the cycle before anything touches disk. Status
// changes made by the mutator must follow the lifecycle edges; an illegal
// edge is rejected with a TransitionError.
func (s *Store) Update(id string, mutate func(*Plan) error) (*Plan, error) {
	current, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	expected := current.Version

	next := current.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	if next.ID != id {
		return nil, fmt.Errorf("plan %s: update: id is immutable", id)
	}
	if next.Status != current.Status && !legalEdge(current.Status, next.Status) {
		return nil, &TransitionError{ID: id, Operation: fmt.Sprintf("set status %s", next.Status), Status: current.Status}
	}
	next.Version = expected + 1
	next.UpdatedAt = s.now().UTC().Truncate(time.Second)

	data, err := Serialize(next)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// The cache may be stale; only the on-disk version decides the race.
	onDisk, err := s.readDisk(id)
	if err != nil {
		return nil, err
	}
	if onDisk.Version != expected {
		s.cachePut(onDisk)
		return nil, &ConflictError{ID: id, Expected: expected, Actual: onDisk.Version}
	}

	if err := writeFileAtomic(s.planPath(id), data); err != nil {
		return nil, fmt.Errorf("plan %s: commit: %w", id, err)
	}
	s.cachePut(next)
	return next.Clone(), nil
}

// InvalidateCache drops all cached entries, forcing the next read to hit
// disk. Required after out-of-band file changes.
func (s *Store) InvalidateCache() {
	s.mu.Lock()
	s.cache = make(map[string]*Plan)
	s.mu.Unlock()
}

func (s *Store) readDisk(id string) (*Plan, error) {
	data, err := os.ReadFile(s.planPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("plan %s: read: %w", id, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("plan %s: parse: %w", id, err)
	}
	return p, nil
}

func (s *Store) writeAtomic(p *Plan) error {
	data, err := Serialize(p)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.planPath(p.ID), data); err != nil {
		return fmt.Errorf("plan %s: commit: %w", p.ID, err)
	}
	return nil
}

// writeFileAtomic writes data to a fresh temporary file next to path and
// renames it into place. Each call gets its own temp file, so concurrent
// writers never clobber each other's in-flight bytes.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func (s *Store) cachePut(p *Plan) {
	s.mu.Lock()
	s.cache[p.ID] = p.Clone()
	s.mu.Unlock()
}

func (s *Store) freshID(title string) (string, error) {
	slug := util.Slugify(title)
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		short, err := util.GenerateShortID()
		if err != nil {
			return "", fmt.Errorf("plan: generate id: %w", err)
		}
		id := short
		if slug != "" {
			id = short + "-" + slug
		}
		if _, err := os.Stat(s.planPath(id)); errors.Is(err, fs.ErrNotExist) {
			return id, nil
		}
	}
	return "", fmt.Errorf("plan: could not generate a unique id after %d attempts", maxIDAttempts)
}

func statusIn(status Status, set []Status) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}
