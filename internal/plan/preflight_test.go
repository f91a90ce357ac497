package plan

import (
	"errors"
	"strings"
	"testing"
)

func TestPreflight(t *testing.T) {
	setup := func(t *testing.T) (*Store, *Plan) {
		t.Helper()
		s := testStore(t)
		p, err := s.Create(testDraft())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		p, err = s.Approve(p.ID)
		if err != nil {
			t.Fatalf("approve: %v", err)
		}
		return s, p
	}

	t.Run("approved plan with tools passes", func(t *testing.T) {
		s, p := setup(t)
		if err := Preflight(s, p.ID, p.Version, StaticInventory{"mail", "search"}); err != nil {
			t.Errorf("preflight: %v", err)
		}
	})

	t.Run("not approved", func(t *testing.T) {
		s := testStore(t)
		p, err := s.Create(testDraft())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		err = Preflight(s, p.ID, p.Version, StaticInventory{"mail"})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("got %v, want ValidationError", err)
		}
		if ve.Reason != ReasonStatus {
			t.Errorf("reason: got %q, want %q", ve.Reason, ReasonStatus)
		}
		if !errors.Is(err, ErrValidation) {
			t.Error("does not unwrap to ErrValidation")
		}
	})

	t.Run("stale version", func(t *testing.T) {
		s, p := setup(t)
		fetched := p.Version
		// Another writer touches the plan after the caller fetched it.
		if _, err := s.Update(p.ID, func(p *Plan) error {
			p.Context = "amended"
			return nil
		}); err != nil {
			t.Fatalf("update: %v", err)
		}
		err := Preflight(s, p.ID, fetched, StaticInventory{"mail"})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("got %v, want ValidationError", err)
		}
		if ve.Reason != ReasonStaleVersion {
			t.Errorf("reason: got %q, want %q", ve.Reason, ReasonStaleVersion)
		}
	})

	t.Run("missing tools are all reported", func(t *testing.T) {
		s := testStore(t)
		draft := testDraft()
		draft.ToolsRequired = []string{"mail", "search", "calendar"}
		p, err := s.Create(draft)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if p, err = s.Approve(p.ID); err != nil {
			t.Fatalf("approve: %v", err)
		}
		err = Preflight(s, p.ID, p.Version, StaticInventory{"search"})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("got %v, want ValidationError", err)
		}
		if ve.Reason != ReasonMissingTool {
			t.Errorf("reason: got %q, want %q", ve.Reason, ReasonMissingTool)
		}
		if !strings.Contains(ve.Detail, "mail") || !strings.Contains(ve.Detail, "calendar") {
			t.Errorf("detail missing tool names: %q", ve.Detail)
		}
		if strings.Contains(ve.Detail, "search") {
			t.Errorf("detail lists an available tool: %q", ve.Detail)
		}
	})

	t.Run("nil inventory fails closed when tools required", func(t *testing.T) {
		s, p := setup(t)
		err := Preflight(s, p.ID, p.Version, nil)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("got %v, want ValidationError", err)
		}
		if ve.Reason != ReasonMissingTool {
			t.Errorf("reason: got %q", ve.Reason)
		}
	})

	t.Run("no tools required ignores inventory", func(t *testing.T) {
		s := testStore(t)
		p, err := s.Create(Draft{Title: "No tools"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if p, err = s.Approve(p.ID); err != nil {
			t.Fatalf("approve: %v", err)
		}
		if err := Preflight(s, p.ID, p.Version, nil); err != nil {
			t.Errorf("preflight: %v", err)
		}
	})

	t.Run("unknown plan", func(t *testing.T) {
		s := testStore(t)
		if err := Preflight(s, "missing", 1, nil); !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}
