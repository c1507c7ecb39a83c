// Package quota maintains the shared usage counters. The counters are a
// single JSON record guarded by its own lock path, so quota updates never
// contend with registry operations.
package quota

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Iron-Ham/foreman/internal/coordfs"
	"github.com/Iron-Ham/foreman/internal/flock"
)

// Record is the shared usage counter structure. It is not tied to any
// individual task.
type Record struct {
	TokensUsed uint64    `json:"tokens_used"`
	LastReset  time.Time `json:"last_reset"`
	Requests   uint64    `json:"requests"`
}

// Tracker reads and updates the quota record under the quota guard lock.
type Tracker struct {
	layout      coordfs.Layout
	lockTimeout time.Duration
}

// NewTracker creates a Tracker over the given layout.
func NewTracker(layout coordfs.Layout, lockTimeout time.Duration) *Tracker {
	return &Tracker{layout: layout, lockTimeout: lockTimeout}
}

// Add increments the token counter by tokens and the request counter by
// one, returning the updated record.
func (t *Tracker) Add(tokens uint64) (Record, error) {
	return flock.WithLockValue(t.layout.GuardPath(coordfs.ResourceQuota), t.lockTimeout, func() (Record, error) {
		rec, err := t.load()
		if err != nil {
			return Record{}, err
		}
		rec.TokensUsed += tokens
		rec.Requests++
		if err := t.save(rec); err != nil {
			return Record{}, err
		}
		return rec, nil
	})
}

// Current returns the quota record without mutating it. The read still
// runs under the quota lock so the snapshot is consistent with
// concurrent adders.
func (t *Tracker) Current() (Record, error) {
	return flock.WithLockValue(t.layout.GuardPath(coordfs.ResourceQuota), t.lockTimeout, func() (Record, error) {
		return t.load()
	})
}

// load reads the record, defaulting a fresh one when the file is absent.
func (t *Tracker) load() (Record, error) {
	data, err := os.ReadFile(t.layout.QuotaPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Record{LastReset: time.Now().UTC()}, nil
		}
		return Record{}, fmt.Errorf("read quota: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parse quota %s: %w", t.layout.QuotaPath(), err)
	}
	return rec, nil
}

func (t *Tracker) save(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal quota: %w", err)
	}
	if err := os.WriteFile(t.layout.QuotaPath(), data, 0644); err != nil {
		return fmt.Errorf("write quota: %w", err)
	}
	return nil
}
