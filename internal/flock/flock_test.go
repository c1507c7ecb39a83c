package flock

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Iron-Ham/foreman/internal/errors"
)

func lockPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "guard.lock")
}

func TestTryLock(t *testing.T) {
	path := lockPath(t)
	l := New(path)

	ok, err := l.TryLock()
	if err != nil {
		t.Fatalf("TryLock() error: %v", err)
	}
	if !ok {
		t.Fatal("TryLock() = false, want true on uncontended lock")
	}
	defer l.Unlock() //nolint:errcheck

	// A second handle on the same path must not acquire while the first
	// holds it. flock conflicts are per open file description, so two
	// Lock values in one process contend just like two processes.
	other := New(path)
	ok, err = other.TryLock()
	if err != nil {
		t.Fatalf("TryLock() on held lock error: %v", err)
	}
	if ok {
		t.Fatal("TryLock() = true on held lock, want false")
	}
}

func TestTryLockCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "guard.lock")
	l := New(path)

	ok, err := l.TryLock()
	if err != nil {
		t.Fatalf("TryLock() error: %v", err)
	}
	if !ok {
		t.Fatal("TryLock() = false, want true")
	}
	if err := l.Unlock(); err != nil {
		t.Errorf("Unlock() error: %v", err)
	}
}

func TestAcquireTimeout(t *testing.T) {
	path := lockPath(t)

	holder := New(path)
	if ok, err := holder.TryLock(); err != nil || !ok {
		t.Fatalf("setup TryLock() = %v, %v", ok, err)
	}
	defer holder.Unlock() //nolint:errcheck

	waiter := New(path)
	start := time.Now()
	err := waiter.Acquire(50*time.Millisecond, 10*time.Millisecond)
	if !errors.Is(err, errors.ErrLockTimeout) {
		t.Fatalf("Acquire() error = %v, want ErrLockTimeout", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Acquire() returned after %v, want at least the timeout", elapsed)
	}
}

func TestAcquireAfterRelease(t *testing.T) {
	path := lockPath(t)

	holder := New(path)
	if ok, err := holder.TryLock(); err != nil || !ok {
		t.Fatalf("setup TryLock() = %v, %v", ok, err)
	}

	released := make(chan struct{})
	go func() {
		time.Sleep(30 * time.Millisecond)
		holder.Unlock() //nolint:errcheck
		close(released)
	}()

	waiter := New(path)
	if err := waiter.Acquire(time.Second, 5*time.Millisecond); err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	defer waiter.Unlock() //nolint:errcheck
	<-released
}

func TestUnlockIdempotent(t *testing.T) {
	l := New(lockPath(t))
	if ok, err := l.TryLock(); err != nil || !ok {
		t.Fatalf("setup TryLock() = %v, %v", ok, err)
	}

	if err := l.Unlock(); err != nil {
		t.Fatalf("Unlock() error: %v", err)
	}
	if err := l.Unlock(); err != nil {
		t.Errorf("second Unlock() error: %v, want nil", err)
	}
}

func TestWithLockReleasesOnError(t *testing.T) {
	path := lockPath(t)
	sentinel := errors.New("boom")

	err := WithLock(path, time.Second, func() error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("WithLock() error = %v, want the callback error", err)
	}

	// The lock must be free again after the failed callback.
	l := New(path)
	ok, err := l.TryLock()
	if err != nil {
		t.Fatalf("TryLock() error: %v", err)
	}
	if !ok {
		t.Fatal("lock still held after WithLock() callback error")
	}
	l.Unlock() //nolint:errcheck
}

func TestWithLockValue(t *testing.T) {
	path := lockPath(t)

	got, err := WithLockValue(path, time.Second, func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("WithLockValue() error: %v", err)
	}
	if got != 42 {
		t.Errorf("WithLockValue() = %d, want 42", got)
	}
}

func TestWithLockSerializes(t *testing.T) {
	path := lockPath(t)

	var inside, overlaps, entries int32
	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			done <- WithLockInterval(path, 5*time.Second, time.Millisecond, func() error {
				if atomic.AddInt32(&inside, 1) != 1 {
					atomic.AddInt32(&overlaps, 1)
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				atomic.AddInt32(&entries, 1)
				return nil
			})
		}()
	}

	for i := 0; i < 10; i++ {
		if err := <-done; err != nil {
			t.Fatalf("WithLockInterval() error: %v", err)
		}
	}
	if n := atomic.LoadInt32(&overlaps); n != 0 {
		t.Errorf("critical section overlapped %d times, want 0", n)
	}
	if n := atomic.LoadInt32(&entries); n != 10 {
		t.Errorf("critical section entered %d times, want 10", n)
	}
}
