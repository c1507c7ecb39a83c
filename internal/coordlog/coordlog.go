// Package coordlog maintains the append-only, human-auditable activity
// trail shared by all agents. Appends run under a dedicated log guard
// lock so interleaved writers never tear lines; daily rotation keeps the
// active log from growing without bound.
package coordlog

import (
	"fmt"
	"os"
	"time"

	"github.com/Iron-Ham/foreman/internal/coordfs"
	"github.com/Iron-Ham/foreman/internal/flock"
)

// rotationWindow is how far past midnight an opportunistic rotation is
// still attempted.
const rotationWindow = 5 * time.Minute

// Log appends to and rotates the shared coordination log.
type Log struct {
	layout      coordfs.Layout
	lockTimeout time.Duration
}

// New creates a Log over the given layout.
func New(layout coordfs.Layout, lockTimeout time.Duration) *Log {
	return &Log{layout: layout, lockTimeout: lockTimeout}
}

// Append writes one timestamped line attributed to the agent:
//
//	[<rfc3339>] <agent_id> ▶ <message>
func (l *Log) Append(agentID, message string) error {
	return flock.WithLock(l.layout.GuardPath(coordfs.ResourceCoordination), l.lockTimeout, func() error {
		f, err := os.OpenFile(l.layout.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open coordination log: %w", err)
		}
		defer func() { _ = f.Close() }()

		line := fmt.Sprintf("[%s] %s ▶ %s\n", time.Now().UTC().Format(time.RFC3339), agentID, message)
		if _, err := f.WriteString(line); err != nil {
			return fmt.Errorf("append coordination log: %w", err)
		}
		return nil
	})
}

// Rotate renames the active log to its dated archive name for the given
// time. A missing active log is a no-op.
func (l *Log) Rotate(now time.Time) error {
	return flock.WithLock(l.layout.GuardPath(coordfs.ResourceCoordination), l.lockTimeout, func() error {
		if _, err := os.Stat(l.layout.LogPath()); err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("stat coordination log: %w", err)
		}

		archive := l.layout.ArchivedLogPath(now.UTC().Format("2006-01-02"))
		if err := os.Rename(l.layout.LogPath(), archive); err != nil {
			return fmt.Errorf("rotate coordination log: %w", err)
		}
		return nil
	})
}

// MaybeRotate rotates only within the first minutes after midnight UTC.
// Callers invoke it opportunistically (the stale-claim sweep does) so the
// log rolls roughly once a day without a scheduler.
func (l *Log) MaybeRotate(now time.Time) error {
	utc := now.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	if utc.Sub(midnight) >= rotationWindow {
		return nil
	}
	return l.Rotate(utc)
}
