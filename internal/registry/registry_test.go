package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "active_work_registry.json"))
}

func TestLoadMissingFile(t *testing.T) {
	store := newTestStore(t)

	snap, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if snap.Tasks == nil {
		t.Fatal("Load() of missing file returned nil Tasks, want empty slice")
	}
	if len(snap.Tasks) != 0 {
		t.Errorf("Load() of missing file returned %d tasks, want 0", len(snap.Tasks))
	}
}

func TestLoadMalformed(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load(); err == nil {
		t.Fatal("Load() of malformed file succeeded, want error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	claimedAt := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)

	want := &Snapshot{Tasks: []WorkItem{
		{ID: "task-1", Title: "first", Status: StatusUnclaimed, Priority: PriorityHigh},
		{
			ID:        "task-2",
			Title:     "second",
			Status:    StatusClaimed,
			Priority:  PriorityLow,
			ClaimedBy: "agent-a",
			ClaimedAt: &claimedAt,
		},
	}}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(got.Tasks) != 2 {
		t.Fatalf("Load() returned %d tasks, want 2", len(got.Tasks))
	}
	if got.Tasks[0].ID != "task-1" || got.Tasks[1].ID != "task-2" {
		t.Errorf("task order = %q, %q; registry order must survive the round trip",
			got.Tasks[0].ID, got.Tasks[1].ID)
	}
	if got.Tasks[1].ClaimedBy != "agent-a" {
		t.Errorf("ClaimedBy = %q, want %q", got.Tasks[1].ClaimedBy, "agent-a")
	}
	if got.Tasks[1].ClaimedAt == nil || !got.Tasks[1].ClaimedAt.Equal(claimedAt) {
		t.Errorf("ClaimedAt = %v, want %v", got.Tasks[1].ClaimedAt, claimedAt)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(&Snapshot{Tasks: []WorkItem{}}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if _, err := os.Stat(store.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file still present after Save()")
	}
	if _, err := os.Stat(store.Path()); err != nil {
		t.Errorf("registry file missing after Save(): %v", err)
	}
}

func TestSaveCreatesParentDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "registry.json"))
	if err := store.Save(&Snapshot{}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
}

func TestFind(t *testing.T) {
	snap := &Snapshot{Tasks: []WorkItem{
		{ID: "a", Status: StatusUnclaimed},
		{ID: "b", Status: StatusClaimed},
	}}

	if task := snap.Find("missing"); task != nil {
		t.Errorf("Find(missing) = %v, want nil", task)
	}

	task := snap.Find("b")
	if task == nil {
		t.Fatal("Find(b) = nil, want task")
	}

	// Mutations through the returned pointer must be visible in the
	// snapshot, since callers mutate then Save.
	task.Status = StatusDone
	if snap.Tasks[1].Status != StatusDone {
		t.Error("mutation through Find() pointer not visible in snapshot")
	}
}

func TestStatusSet(t *testing.T) {
	snap := &Snapshot{Tasks: []WorkItem{
		{ID: "a", Status: StatusDone},
		{ID: "b", Status: StatusUnclaimed},
	}}

	set := snap.StatusSet()
	if set["a"] != StatusDone || set["b"] != StatusUnclaimed {
		t.Errorf("StatusSet() = %v", set)
	}

	// The set is a copy: later snapshot mutations must not leak in.
	snap.Tasks[1].Status = StatusClaimed
	if set["b"] != StatusUnclaimed {
		t.Error("StatusSet() aliases the snapshot, want point-in-time copy")
	}
}

func TestPriorityRank(t *testing.T) {
	tests := []struct {
		priority Priority
		want     int
	}{
		{PriorityUrgent, 0},
		{PriorityHigh, 1},
		{PriorityMedium, 2},
		{PriorityLow, 3},
		{Priority("bogus"), 4},
		{Priority(""), 4},
	}

	for _, tt := range tests {
		if got := tt.priority.Rank(); got != tt.want {
			t.Errorf("Rank(%q) = %d, want %d", tt.priority, got, tt.want)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	for _, s := range []Status{StatusUnclaimed, StatusClaimed, StatusBlocked, StatusReview} {
		if s.IsTerminal() {
			t.Errorf("IsTerminal(%q) = true, want false", s)
		}
	}
	if !StatusDone.IsTerminal() {
		t.Error("IsTerminal(done) = false, want true")
	}
}
