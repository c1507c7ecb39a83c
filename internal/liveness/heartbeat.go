package liveness

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/foreman/internal/coordfs"
)

// Heartbeats tracks per-agent liveness files. Each agent exclusively owns
// its own heartbeat file by naming convention, so touching one needs no
// lock. Only the file's modification time carries meaning.
type Heartbeats struct {
	layout coordfs.Layout
}

// NewHeartbeats creates a Heartbeats over the given layout.
func NewHeartbeats(layout coordfs.Layout) *Heartbeats {
	return &Heartbeats{layout: layout}
}

// Touch creates or refreshes the heartbeat file for the agent, setting
// its modification time to now.
func (h *Heartbeats) Touch(agentID string) error {
	path := h.layout.HeartbeatPath(agentID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create heartbeat dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("touch heartbeat: %w", err)
	}
	_ = f.Close()

	// Opening alone does not refresh mtime on an existing file.
	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		return fmt.Errorf("refresh heartbeat mtime: %w", err)
	}
	return nil
}

// Last returns the agent's last heartbeat time. ok is false when the
// agent has never beaten.
func (h *Heartbeats) Last(agentID string) (last time.Time, ok bool, err error) {
	info, err := os.Stat(h.layout.HeartbeatPath(agentID))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("stat heartbeat: %w", err)
	}
	return info.ModTime(), true, nil
}
