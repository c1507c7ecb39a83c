package claim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Iron-Ham/foreman/internal/errors"
)

func newTestRecords(t *testing.T) *Records {
	t.Helper()
	return NewRecords(filepath.Join(t.TempDir(), "agent_locks"))
}

func TestKeyString(t *testing.T) {
	k := Key{TaskID: "task-1", AgentID: "agent-a"}
	if got := k.String(); got != "task-1.agent-a" {
		t.Errorf("String() = %q, want %q", got, "task-1.agent-a")
	}
}

func TestAcquire(t *testing.T) {
	recs := newTestRecords(t)
	key := Key{TaskID: "task-1", AgentID: "agent-a"}

	if err := recs.Acquire(key); err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}

	meta, err := recs.Read(key)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if meta.Holder != "agent-a" {
		t.Errorf("Holder = %q, want %q", meta.Holder, "agent-a")
	}
	if meta.Since.IsZero() {
		t.Error("Since is zero, want acquisition time")
	}
}

func TestAcquireDuplicate(t *testing.T) {
	recs := newTestRecords(t)
	key := Key{TaskID: "task-1", AgentID: "agent-a"}

	if err := recs.Acquire(key); err != nil {
		t.Fatalf("first Acquire() error: %v", err)
	}

	err := recs.Acquire(key)
	if !errors.Is(err, ErrRecordExists) {
		t.Fatalf("second Acquire() error = %v, want ErrRecordExists", err)
	}

	// A different agent contending for the same task also collides only
	// on its own key; the record namespace is (task, agent).
	other := Key{TaskID: "task-1", AgentID: "agent-b"}
	if err := recs.Acquire(other); err != nil {
		t.Fatalf("Acquire() for second agent error: %v", err)
	}
}

func TestRemove(t *testing.T) {
	recs := newTestRecords(t)
	key := Key{TaskID: "task-1", AgentID: "agent-a"}

	if err := recs.Acquire(key); err != nil {
		t.Fatal(err)
	}
	if err := recs.Remove(key); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, err := os.Stat(recs.Path(key)); !os.IsNotExist(err) {
		t.Error("record still present after Remove()")
	}

	// Removing again is not an error.
	if err := recs.Remove(key); err != nil {
		t.Errorf("Remove() of missing record error: %v, want nil", err)
	}
}

func TestListEmpty(t *testing.T) {
	recs := newTestRecords(t)

	held, err := recs.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(held) != 0 {
		t.Errorf("List() of missing dir = %v, want empty", held)
	}
}

func TestRecordsList(t *testing.T) {
	recs := newTestRecords(t)

	// Dotted task and agent ids must survive the round trip; the key is
	// reconstructed from the metadata holder, not by splitting on the
	// first delimiter.
	keys := []Key{
		{TaskID: "task-1", AgentID: "agent-a"},
		{TaskID: "feature.auth.v2", AgentID: "agent.b"},
	}
	for _, k := range keys {
		if err := recs.Acquire(k); err != nil {
			t.Fatal(err)
		}
	}

	held, err := recs.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(held) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(held))
	}

	byKey := make(map[Key]Held, len(held))
	for _, h := range held {
		byKey[h.Key] = h
	}
	for _, k := range keys {
		h, ok := byKey[k]
		if !ok {
			t.Errorf("List() missing key %v", k)
			continue
		}
		if h.Meta.Holder != k.AgentID {
			t.Errorf("Holder = %q, want %q", h.Meta.Holder, k.AgentID)
		}
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	recs := newTestRecords(t)
	if err := recs.Acquire(Key{TaskID: "task-1", AgentID: "agent-a"}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(recs.dir, "README.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(recs.dir, "stray.lock"), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	held, err := recs.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	// The non-.lock file is skipped; "stray.lock" has no dot in its stem
	// and no holder, so it is not a record we wrote.
	if len(held) != 1 {
		t.Fatalf("List() returned %d records, want 1: %v", len(held), held)
	}
	if held[0].Key.TaskID != "task-1" {
		t.Errorf("TaskID = %q, want %q", held[0].Key.TaskID, "task-1")
	}
}

func TestListFallsBackToFilename(t *testing.T) {
	recs := newTestRecords(t)
	key := Key{TaskID: "task-1", AgentID: "agent-a"}
	if err := recs.Acquire(key); err != nil {
		t.Fatal(err)
	}
	// Corrupt the body; the filename still identifies the key.
	if err := os.WriteFile(recs.Path(key), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	held, err := recs.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(held) != 1 {
		t.Fatalf("List() returned %d records, want 1", len(held))
	}
	if held[0].Key != key {
		t.Errorf("Key = %v, want %v", held[0].Key, key)
	}
}
