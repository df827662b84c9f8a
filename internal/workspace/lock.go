// Package workspace guards an output directory with an exclusive file lock so
// two batch runs never write the same chunks directory at once.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFile is created inside the guarded directory.
const LockFile = ".vadscribe.lock"

// ErrLocked reports that another process holds the lock.
var ErrLocked = errors.New("workspace is locked by another run")

// Lock is a held workspace lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire takes the lock for dir without blocking. It returns ErrLocked when
// another run holds it.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure workspace: %w", err)
	}
	path := filepath.Join(dir, LockFile)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
