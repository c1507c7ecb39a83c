package flock

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/Iron-Ham/foreman/internal/errors"
)

const (
	// DefaultTimeout bounds how long callers wait for a contended lock.
	DefaultTimeout = 30 * time.Second

	// DefaultPollInterval is how often a contended lock is re-attempted.
	// Bounded polling is deliberate: the workload is low-contention and
	// human/agent timescale, and the timeout-and-report behavior matters
	// more than wakeup latency.
	DefaultPollInterval = 250 * time.Millisecond
)

// Lock provides cross-process mutual exclusion using flock(2) on a lock
// file. It serializes access among processes sharing the same filesystem;
// it is not a substitute for consensus across machines without shared,
// lock-capable storage.
type Lock struct {
	path string
	file *os.File
}

// New creates a Lock on the given path. The file and its parent
// directories are created on first acquisition if absent.
func New(path string) *Lock {
	return &Lock{path: path}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false if it is held elsewhere.
func (l *Lock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return false, fmt.Errorf("create lock dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return false, fmt.Errorf("open lock file: %w", err)
	}

	err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		_ = f.Close()
		if err == unix.EWOULDBLOCK {
			return false, nil
		}
		return false, fmt.Errorf("flock: %w", err)
	}

	l.file = f
	return true, nil
}

// Acquire obtains the lock, polling at the given interval while it is held
// elsewhere. It fails with errors.ErrLockTimeout once timeout has elapsed
// without acquisition.
func (l *Lock) Acquire(timeout, poll time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	start := time.Now()
	for {
		ok, err := l.TryLock()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Since(start) > timeout {
			return fmt.Errorf("%w: %s held for over %s", errors.ErrLockTimeout, l.path, timeout)
		}
		time.Sleep(poll)
	}
}

// Unlock releases the lock and closes the lock file.
func (l *Lock) Unlock() error {
	if l.file == nil {
		return nil
	}

	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		_ = l.file.Close()
		l.file = nil
		return fmt.Errorf("funlock: %w", err)
	}

	err := l.file.Close()
	l.file = nil
	return err
}

// WithLock runs fn while holding an exclusive lock on path, using the
// default poll interval. The lock is released on every exit path,
// including an error from fn.
func WithLock(path string, timeout time.Duration, fn func() error) error {
	return WithLockInterval(path, timeout, DefaultPollInterval, fn)
}

// WithLockInterval is WithLock with an explicit poll interval.
func WithLockInterval(path string, timeout, poll time.Duration, fn func() error) error {
	l := New(path)
	if err := l.Acquire(timeout, poll); err != nil {
		return err
	}
	defer func() { _ = l.Unlock() }()

	return fn()
}

// WithLockValue runs fn while holding an exclusive lock on path and
// returns its result. Used for critical sections that produce a value,
// e.g. the claim selection pass.
func WithLockValue[T any](path string, timeout time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	l := New(path)
	if err := l.Acquire(timeout, DefaultPollInterval); err != nil {
		return zero, err
	}
	defer func() { _ = l.Unlock() }()

	return fn()
}
