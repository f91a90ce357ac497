package plan

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"
	"time"
)

func readRecords(t *testing.T, path string) []CheckpointRecord {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open session log: %v", err)
	}
	defer f.Close()

	var records []CheckpointRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec CheckpointRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("unmarshal record: %v", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return records
}

func TestCheckpointLog(t *testing.T) {
	fixed := time.Date(2026, 8, 25, 14, 0, 0, 0, time.UTC)
	log := NewCheckpointLog(t.TempDir(), WithCheckpointClock(func() time.Time { return fixed }))

	if err := log.Start("run-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := log.Step("run-1", 0, StepInProgress, ""); err != nil {
		t.Fatalf("step: %v", err)
	}
	if err := log.Step("run-1", 0, StepDone, "sent the reminder"); err != nil {
		t.Fatalf("step: %v", err)
	}
	if err := log.End("run-1", StatusCompleted, "all done"); err != nil {
		t.Fatalf("end: %v", err)
	}

	records := readRecords(t, log.Path("run-1"))
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}

	if records[0].StepIndex != PlanLevel || records[0].Status != "started" {
		t.Errorf("record 0: %+v", records[0])
	}
	if records[1].StepIndex != 0 || records[1].Status != string(StepInProgress) {
		t.Errorf("record 1: %+v", records[1])
	}
	if records[2].Status != string(StepDone) || records[2].Summary != "sent the reminder" {
		t.Errorf("record 2: %+v", records[2])
	}
	if records[3].StepIndex != PlanLevel || records[3].Status != string(StatusCompleted) {
		t.Errorf("record 3: %+v", records[3])
	}

	seen := make(map[string]bool)
	for i, rec := range records {
		if rec.PlanID != "run-1" {
			t.Errorf("record %d: plan id %q", i, rec.PlanID)
		}
		if rec.RecordID == "" || seen[rec.RecordID] {
			t.Errorf("record %d: id %q not unique", i, rec.RecordID)
		}
		seen[rec.RecordID] = true
		if !rec.Timestamp.Equal(fixed) {
			t.Errorf("record %d: timestamp %v", i, rec.Timestamp)
		}
	}
}

func TestCheckpointLogAppendsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first := NewCheckpointLog(dir)
	if err := first.Start("run-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// A later process appends to the same file; earlier records survive.
	second := NewCheckpointLog(dir)
	if err := second.End("run-1", StatusStalled, ""); err != nil {
		t.Fatalf("end: %v", err)
	}

	records := readRecords(t, first.Path("run-1"))
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Status != "started" || records[1].Status != string(StatusStalled) {
		t.Errorf("records: %+v", records)
	}
}

func TestCheckpointLogPerPlanFiles(t *testing.T) {
	log := NewCheckpointLog(t.TempDir())
	if err := log.Start("run-a"); err != nil {
		t.Fatalf("start a: %v", err)
	}
	if err := log.Start("run-b"); err != nil {
		t.Fatalf("start b: %v", err)
	}
	if got := readRecords(t, log.Path("run-a")); len(got) != 1 {
		t.Errorf("run-a: %d records, want 1", len(got))
	}
	if got := readRecords(t, log.Path("run-b")); len(got) != 1 {
		t.Errorf("run-b: %d records, want 1", len(got))
	}
}
