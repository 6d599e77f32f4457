// Package fsutil holds the advisory lock and atomic replace helpers shared
// by the tunnel config store and the listener ledger.
package fsutil

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Lock serializes writers of one resource inside the process (mutex) and
// across processes (flock on a sidecar lock file).
type Lock struct {
	path string
	mu   sync.Mutex
}

// NewLock returns a lock backed by the file at path. The file is created on
// first use and never removed.
func NewLock(path string) *Lock {
	return &Lock{path: path}
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Acquire blocks until both the in-process mutex and the file lock are held.
// The returned function releases them.
func (l *Lock) Acquire() (func(), error) {
	l.mu.Lock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("open lock %s: %w", l.path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		_ = f.Close()
		l.mu.Unlock()
		return nil, fmt.Errorf("flock %s: %w", l.path, err)
	}
	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
		l.mu.Unlock()
	}, nil
}

// With runs fn while holding the lock.
func (l *Lock) With(fn func() error) error {
	release, err := l.Acquire()
	if err != nil {
		return err
	}
	defer release()
	return fn()
}
