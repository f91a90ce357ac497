package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/greenlightd/greenlight/internal/plan"
	"github.com/greenlightd/greenlight/internal/testutil"
)

func TestFindProjectRoot(t *testing.T) {
	t.Run("current directory", func(t *testing.T) {
		tmpDir := testutil.SetupTestDir(t)
		if err := os.MkdirAll(plan.GreenlightDir, 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		root, err := findProjectRoot()
		if err != nil {
			t.Fatalf("find root: %v", err)
		}
		if root != tmpDir {
			t.Errorf("root: got %q, want %q", root, tmpDir)
		}
	})

	t.Run("walks up from a subdirectory", func(t *testing.T) {
		tmpDir := testutil.SetupTestDir(t)
		if err := os.MkdirAll(plan.GreenlightDir, 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		nested := filepath.Join(tmpDir, "a", "b")
		if err := os.MkdirAll(nested, 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.Chdir(nested); err != nil {
			t.Fatalf("chdir: %v", err)
		}
		root, err := findProjectRoot()
		if err != nil {
			t.Fatalf("find root: %v", err)
		}
		if root != tmpDir {
			t.Errorf("root: got %q, want %q", root, tmpDir)
		}
	})

	t.Run("uninitialized", func(t *testing.T) {
		testutil.SetupTestDir(t)
		if _, err := findProjectRoot(); err == nil {
			t.Error("expected error outside a project")
		}
	})
}

func TestParseSteps(t *testing.T) {
	t.Run("three and four segments", func(t *testing.T) {
		steps, err := parseSteps([]string{
			"Draft the reminder|mail|draft",
			"Send it | mail | send | bob smith",
		})
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if len(steps) != 2 {
			t.Fatalf("got %d steps", len(steps))
		}
		if steps[0].Target != "" {
			t.Errorf("step 1 target: got %q", steps[0].Target)
		}
		if steps[1].Description != "Send it" || steps[1].Tool != "mail" || steps[1].Target != "bob smith" {
			t.Errorf("step 2: %+v", steps[1])
		}
	})

	t.Run("too few segments", func(t *testing.T) {
		if _, err := parseSteps([]string{"just a description"}); err == nil {
			t.Error("expected error for missing segments")
		}
	})

	t.Run("empty description", func(t *testing.T) {
		if _, err := parseSteps([]string{" |mail|send"}); err == nil {
			t.Error("expected error for empty description")
		}
	})
}

func TestParseStatuses(t *testing.T) {
	statuses, err := parseStatuses([]string{"proposed", "stalled"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(statuses) != 2 || statuses[0] != plan.StatusProposed || statuses[1] != plan.StatusStalled {
		t.Errorf("got %v", statuses)
	}

	if _, err := parseStatuses([]string{"limbo"}); err == nil {
		t.Error("expected error for unknown status")
	}
}
