package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrLocked is returned when another live process holds a session lock.
var ErrLocked = errors.New("session is locked")

// Lock is a pid file that serializes writers of one session across processes.
type Lock struct {
	path string
}

// NewLock creates a lock for session id inside dir.
func NewLock(dir, id string) *Lock {
	return &Lock{
		path: filepath.Join(dir, id+".lock"),
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire takes the lock. Locks left behind by dead processes, or holding
// garbage instead of a pid, are removed and acquisition is retried once.
func (l *Lock) Acquire() error {
	err := l.create()
	if err == nil {
		return nil
	}
	if !os.IsExist(err) {
		return fmt.Errorf("failed to create lock file: %w", err)
	}

	pid, alive, err := l.holder()
	if err != nil {
		return err
	}
	if alive {
		return fmt.Errorf("%w by PID %d", ErrLocked, pid)
	}

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale lock file: %w", err)
	}

	if err := l.create(); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: acquired by another process during retry", ErrLocked)
		}
		return fmt.Errorf("failed to create lock file on retry: %w", err)
	}
	return nil
}

// Release removes the lock file. Releasing a lock that isn't held is not an error.
func (l *Lock) Release() error {
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// IsLocked reports whether a live process holds the lock.
// Stale or invalid lock files are removed.
func (l *Lock) IsLocked() (bool, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		return false, nil
	}

	_, alive, err := l.holder()
	if err != nil {
		return false, err
	}
	if alive {
		return true, nil
	}

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to remove stale lock file: %w", err)
	}
	return false, nil
}

// create writes our pid to a new lock file with O_EXCL.
func (l *Lock) create() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, writeErr := fmt.Fprintf(f, "%d", os.Getpid())
	f.Close()
	if writeErr != nil {
		os.Remove(l.path)
		return fmt.Errorf("failed to write lock file: %w", writeErr)
	}
	return nil
}

// holder reads the pid in the lock file. An unparsable pid counts as a dead holder.
func (l *Lock) holder() (pid int, alive bool, err error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read existing lock file: %w", err)
	}

	pid, parseErr := strconv.Atoi(strings.TrimSpace(string(data)))
	if parseErr != nil {
		return 0, false, nil
	}
	return pid, processExists(pid), nil
}

// processExists checks for a live process using signal 0.
func processExists(pid int) bool {
	if pid == os.Getpid() {
		return true
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
