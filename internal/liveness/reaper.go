package liveness

import (
	"fmt"
	"os"
	"time"

	"github.com/Iron-Ham/foreman/internal/claim"
	"github.com/Iron-Ham/foreman/internal/coordfs"
	"github.com/Iron-Ham/foreman/internal/flock"
	"github.com/Iron-Ham/foreman/internal/registry"
)

// DefaultStaleTimeout is how long an agent may go without a heartbeat
// before its claims are considered abandoned.
const DefaultStaleTimeout = 300 * time.Second

// Reaper reclaims work abandoned by agents whose heartbeat has gone
// silent. It is the only mechanism that moves an item backward from
// claimed to unclaimed.
type Reaper struct {
	layout      coordfs.Layout
	store       *registry.Store
	locks       *claim.Records
	beats       *Heartbeats
	lockTimeout time.Duration
	poll        time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// ReaperOption configures a Reaper.
type ReaperOption func(*Reaper)

// WithLockTimeout sets how long the reaper waits for the registry guard
// lock.
func WithLockTimeout(d time.Duration) ReaperOption {
	return func(r *Reaper) {
		r.lockTimeout = d
	}
}

// WithPollInterval sets the guard lock retry interval.
func WithPollInterval(d time.Duration) ReaperOption {
	return func(r *Reaper) {
		r.poll = d
	}
}

// WithClock overrides the reaper's time source.
func WithClock(now func() time.Time) ReaperOption {
	return func(r *Reaper) {
		r.now = now
	}
}

// NewReaper creates a Reaper over the given layout.
func NewReaper(layout coordfs.Layout, opts ...ReaperOption) *Reaper {
	r := &Reaper{
		layout:      layout,
		store:       registry.NewStore(layout.RegistryPath()),
		locks:       claim.NewRecords(layout.LockDir()),
		beats:       NewHeartbeats(layout),
		lockTimeout: flock.DefaultTimeout,
		poll:        flock.DefaultPollInterval,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CleanStale scans every lock record, checks its holder's heartbeat, and
// reclaims records whose holder has been silent longer than timeout (or
// has no heartbeat at all). Each stale record is deleted, and any task
// still claimed by a stale agent is reset to unclaimed under the registry
// guard lock. Returns the reclaimed keys.
//
// Running it again with no new staleness reclaims nothing and leaves the
// registry untouched.
func (r *Reaper) CleanStale(timeout time.Duration) ([]claim.Key, error) {
	held, err := r.locks.List()
	if err != nil {
		return nil, err
	}
	if len(held) == 0 {
		return nil, nil
	}

	now := r.now()
	var reclaimed []claim.Key
	staleAgents := make(map[string]bool)

	for _, rec := range held {
		last, ok, err := r.beats.Last(rec.Key.AgentID)
		if err != nil {
			return reclaimed, err
		}
		if ok && now.Sub(last) <= timeout {
			continue
		}

		if err := os.Remove(rec.Path); err != nil && !os.IsNotExist(err) {
			return reclaimed, fmt.Errorf("remove stale lock %s: %w", rec.Path, err)
		}
		reclaimed = append(reclaimed, rec.Key)
		staleAgents[rec.Key.AgentID] = true
	}

	if len(staleAgents) == 0 {
		return nil, nil
	}

	err = r.withRegistryLock(func() error {
		snap, err := r.store.Load()
		if err != nil {
			return err
		}

		changed := false
		for i := range snap.Tasks {
			task := &snap.Tasks[i]
			if task.Status == registry.StatusClaimed && staleAgents[task.ClaimedBy] {
				task.Status = registry.StatusUnclaimed
				task.ClaimedBy = ""
				task.ClaimedAt = nil
				changed = true
			}
		}

		if !changed {
			return nil
		}
		return r.store.Save(snap)
	})
	if err != nil {
		return reclaimed, err
	}
	return reclaimed, nil
}

func (r *Reaper) withRegistryLock(fn func() error) error {
	l := flock.New(r.layout.GuardPath(coordfs.ResourceRegistry))
	if err := l.Acquire(r.lockTimeout, r.poll); err != nil {
		return fmt.Errorf("registry lock: %w", err)
	}
	defer func() { _ = l.Unlock() }()

	return fn()
}
