package coordfs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Well-known file and directory names under the coordination root.
const (
	RegistryFileName      = "active_work_registry.json"
	DependencyMapFileName = "dependency_map.json"
	QuotaFileName         = "quota.json"
	LogFileName           = "coordination.log"
	LockDirName           = "agent_locks"
	HeartbeatDirName      = "heartbeat"
	GuardDirName          = ".lock"
	DebugLogFileName      = "debug.log"
)

// Guarded resources. Each has its own guard lock file so unrelated
// operations never contend on the same lock.
const (
	ResourceRegistry     = "registry"
	ResourceQuota        = "quota"
	ResourceCoordination = "coordination"
)

// Layout maps a coordination root directory to the shared artifacts that
// live beneath it. All coordination state (the work registry, dependency
// map, agent lock records, heartbeats, quota counters, and the coordination
// log) resolves through a Layout so path construction lives in one place.
type Layout struct {
	// Root is the coordination root directory, e.g. ".foreman/coordination".
	Root string
}

// NewLayout creates a Layout rooted at the given directory.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// RegistryPath returns the path to the work registry JSON file.
func (l Layout) RegistryPath() string {
	return filepath.Join(l.Root, RegistryFileName)
}

// DependencyMapPath returns the path to the dependency map JSON file.
func (l Layout) DependencyMapPath() string {
	return filepath.Join(l.Root, DependencyMapFileName)
}

// QuotaPath returns the path to the shared quota counter file.
func (l Layout) QuotaPath() string {
	return filepath.Join(l.Root, QuotaFileName)
}

// LogPath returns the path to the active coordination log.
func (l Layout) LogPath() string {
	return filepath.Join(l.Root, LogFileName)
}

// ArchivedLogPath returns the path of a rotated coordination log for the
// given date string (YYYY-MM-DD).
func (l Layout) ArchivedLogPath(date string) string {
	return filepath.Join(l.Root, fmt.Sprintf("coordination-%s.log", date))
}

// LockDir returns the directory holding per-claim lock records.
func (l Layout) LockDir() string {
	return filepath.Join(l.Root, LockDirName)
}

// HeartbeatDir returns the directory holding per-agent heartbeat files.
func (l Layout) HeartbeatDir() string {
	return filepath.Join(l.Root, HeartbeatDirName)
}

// HeartbeatPath returns the heartbeat file for the given agent.
func (l Layout) HeartbeatPath(agentID string) string {
	return filepath.Join(l.HeartbeatDir(), agentID+".beat")
}

// GuardPath returns the guard lock file for the named resource. Guard files
// carry no payload; only the advisory lock on them matters.
func (l Layout) GuardPath(resource string) string {
	return filepath.Join(l.Root, GuardDirName, resource+".lock")
}

// DebugLogPath returns the path of the structured debug log.
func (l Layout) DebugLogPath() string {
	return filepath.Join(l.Root, DebugLogFileName)
}

// Ensure creates the coordination directory tree if it does not exist.
// It is safe to call repeatedly.
func (l Layout) Ensure() error {
	for _, dir := range []string{
		l.Root,
		l.LockDir(),
		l.HeartbeatDir(),
		filepath.Join(l.Root, GuardDirName),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists reports whether the coordination root has been initialized.
func (l Layout) Exists() bool {
	info, err := os.Stat(l.Root)
	return err == nil && info.IsDir()
}
