package claim

import (
	"fmt"
	"sort"
	"time"

	"github.com/Iron-Ham/foreman/internal/coordfs"
	"github.com/Iron-Ham/foreman/internal/depmap"
	"github.com/Iron-Ham/foreman/internal/errors"
	"github.com/Iron-Ham/foreman/internal/flock"
	"github.com/Iron-Ham/foreman/internal/registry"
)

// Engine selects, orders, and atomically assigns eligible work items to
// requesting agents. All registry mutations run inside the registry guard
// lock; the per-key lock record provides the cross-process
// at-most-one-claimant guarantee.
type Engine struct {
	layout      coordfs.Layout
	store       *registry.Store
	locks       *Records
	lockTimeout time.Duration
	poll        time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLockTimeout sets how long the engine waits for the registry guard
// lock before failing with errors.ErrLockTimeout.
func WithLockTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.lockTimeout = d
	}
}

// WithPollInterval sets the guard lock retry interval.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.poll = d
	}
}

// NewEngine creates an Engine over the given coordination layout.
func NewEngine(layout coordfs.Layout, opts ...Option) *Engine {
	e := &Engine{
		layout:      layout,
		store:       registry.NewStore(layout.RegistryPath()),
		locks:       NewRecords(layout.LockDir()),
		lockTimeout: flock.DefaultTimeout,
		poll:        flock.DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Records exposes the engine's lock record accessor, shared with the
// liveness reaper so both operate on the same directory.
func (e *Engine) Records() *Records {
	return e.locks
}

// Store exposes the engine's registry store for read-only listing.
func (e *Engine) Store() *registry.Store {
	return e.store
}

// Request describes one claim attempt.
type Request struct {
	// AgentID identifies the requesting agent. Required.
	AgentID string

	// Capability, if set, restricts candidates to items tagged with the
	// same capability.
	Capability string

	// SkillLevel, if set, restricts candidates to items whose declared
	// skill_level matches. Items without a declared level always pass.
	SkillLevel string

	// Any skips priority ordering and considers items in registry order.
	Any bool
}

// Claim assigns the first eligible work item to the requesting agent.
// Returns nil with no error when the backlog has nothing currently
// claimable, which is a normal outcome and not a failure.
//
// The entire pass runs inside one registry guard lock acquisition:
// load, order, filter against a point-in-time status snapshot, create the
// per-key lock record exclusively, mutate, and persist only if a claim
// was made.
func (e *Engine) Claim(req Request) (*registry.WorkItem, error) {
	if req.AgentID == "" {
		return nil, errors.New("agent id must not be empty")
	}

	var claimed *registry.WorkItem
	err := e.withRegistryLock(func() error {
		snap, err := e.store.Load()
		if err != nil {
			return err
		}
		deps, err := depmap.Load(e.layout.DependencyMapPath())
		if err != nil {
			return err
		}

		// Candidates are visited through an index order so the snapshot
		// itself is never reordered: the persisted registry keeps its
		// original order, which is the tie-break for equal priorities.
		order := make([]int, len(snap.Tasks))
		for i := range order {
			order[i] = i
		}
		if !req.Any {
			// Stable, so equal-priority items keep registry order.
			sort.SliceStable(order, func(i, j int) bool {
				return snap.Tasks[order[i]].Priority.Rank() < snap.Tasks[order[j]].Priority.Rank()
			})
		}

		// Statuses are copied before the loop so a claim made in this
		// pass cannot change the eligibility of items examined after it.
		statuses := snap.StatusSet()

		for _, idx := range order {
			task := &snap.Tasks[idx]
			if task.Status != registry.StatusUnclaimed {
				continue
			}
			if req.Capability != "" && task.Capability != req.Capability {
				continue
			}
			if req.SkillLevel != "" && task.SkillLevel != "" && task.SkillLevel != req.SkillLevel {
				continue
			}
			if !deps.Satisfied(task.ID, statuses) {
				continue
			}

			key := Key{TaskID: task.ID, AgentID: req.AgentID}
			if err := e.locks.Acquire(key); err != nil {
				if errors.Is(err, ErrRecordExists) {
					// Another agent won the race for this item;
					// keep looking.
					continue
				}
				return err
			}

			now := time.Now().UTC()
			task.Status = registry.StatusClaimed
			task.ClaimedBy = req.AgentID
			task.ClaimedAt = &now

			if err := e.store.Save(snap); err != nil {
				_ = e.locks.Remove(key)
				return err
			}

			cp := *task
			claimed = &cp
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Release marks a claimed item done and removes its lock record. Only the
// recorded claimant may release; anyone else fails with errors.ErrNotOwned
// and the item is left untouched.
func (e *Engine) Release(taskID, agentID string) error {
	return e.withRegistryLock(func() error {
		snap, err := e.store.Load()
		if err != nil {
			return err
		}

		task := snap.Find(taskID)
		if task == nil {
			return errors.NewCoordError("release", taskID, errors.ErrTaskNotFound)
		}
		if task.Status != registry.StatusClaimed || task.ClaimedBy != agentID {
			return errors.NewCoordError("release", taskID, errors.ErrNotOwned)
		}

		now := time.Now().UTC()
		task.Status = registry.StatusDone
		task.CompletedAt = &now

		if err := e.store.Save(snap); err != nil {
			return err
		}
		return e.locks.Remove(Key{TaskID: taskID, AgentID: agentID})
	})
}

// Approve marks an item in review as done, stamping the reviewer. Fails
// with errors.ErrNotInReview for items in any other state. Items reach
// review through external tooling only; the engine never moves work into
// that state.
func (e *Engine) Approve(taskID, reviewerID string) error {
	return e.withRegistryLock(func() error {
		snap, err := e.store.Load()
		if err != nil {
			return err
		}

		task := snap.Find(taskID)
		if task == nil {
			return errors.NewCoordError("approve", taskID, errors.ErrTaskNotFound)
		}
		if task.Status != registry.StatusReview {
			return errors.NewCoordError("approve", taskID, errors.ErrNotInReview)
		}

		now := time.Now().UTC()
		task.Status = registry.StatusDone
		task.ReviewerID = reviewerID
		task.CompletedAt = &now

		if err := e.store.Save(snap); err != nil {
			return err
		}
		if task.ClaimedBy != "" {
			return e.locks.Remove(Key{TaskID: taskID, AgentID: task.ClaimedBy})
		}
		return nil
	})
}

// List returns the current registry snapshot under the registry guard
// lock, so callers get a consistent view even while claims are in flight.
func (e *Engine) List() (*registry.Snapshot, error) {
	var snap *registry.Snapshot
	err := e.withRegistryLock(func() error {
		var loadErr error
		snap, loadErr = e.store.Load()
		return loadErr
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (e *Engine) withRegistryLock(fn func() error) error {
	l := flock.New(e.layout.GuardPath(coordfs.ResourceRegistry))
	if err := l.Acquire(e.lockTimeout, e.poll); err != nil {
		return fmt.Errorf("registry lock: %w", err)
	}
	defer func() { _ = l.Unlock() }()

	return fn()
}
