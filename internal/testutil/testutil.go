// Package testutil provides testing utilities for Foreman tests.
package testutil

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/Iron-Ham/foreman/internal/coordfs"
	"github.com/Iron-Ham/foreman/internal/registry"
)

// SetupCoordRoot creates a temporary coordination root with the full
// directory tree scaffolded. The root is automatically cleaned up when
// the test completes.
func SetupCoordRoot(t *testing.T) coordfs.Layout {
	t.Helper()

	layout := coordfs.NewLayout(t.TempDir())
	if err := layout.Ensure(); err != nil {
		t.Fatalf("failed to scaffold coordination root: %v", err)
	}
	return layout
}

// SeedRegistry writes the given tasks as the registry snapshot.
func SeedRegistry(t *testing.T, layout coordfs.Layout, tasks ...registry.WorkItem) {
	t.Helper()

	store := registry.NewStore(layout.RegistryPath())
	if err := store.Save(&registry.Snapshot{Tasks: tasks}); err != nil {
		t.Fatalf("failed to seed registry: %v", err)
	}
}

// LoadRegistry reads the current registry snapshot.
func LoadRegistry(t *testing.T, layout coordfs.Layout) *registry.Snapshot {
	t.Helper()

	snap, err := registry.NewStore(layout.RegistryPath()).Load()
	if err != nil {
		t.Fatalf("failed to load registry: %v", err)
	}
	return snap
}

// SeedDependencyMap writes the given dependency map file.
func SeedDependencyMap(t *testing.T, layout coordfs.Layout, deps map[string][]string) {
	t.Helper()

	data, err := json.MarshalIndent(deps, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal dependency map: %v", err)
	}
	if err := os.WriteFile(layout.DependencyMapPath(), data, 0644); err != nil {
		t.Fatalf("failed to write dependency map: %v", err)
	}
}

// Unclaimed returns a minimal unclaimed work item for tests.
func Unclaimed(id string, priority registry.Priority) registry.WorkItem {
	return registry.WorkItem{
		ID:       id,
		Title:    "task " + id,
		Status:   registry.StatusUnclaimed,
		Priority: priority,
	}
}

// AgeHeartbeat rewinds an agent's heartbeat mtime by the given amount,
// simulating an agent that stopped beating that long ago.
func AgeHeartbeat(t *testing.T, layout coordfs.Layout, agentID string, age time.Duration) {
	t.Helper()

	past := time.Now().Add(-age)
	if err := os.Chtimes(layout.HeartbeatPath(agentID), past, past); err != nil {
		t.Fatalf("failed to age heartbeat: %v", err)
	}
}
