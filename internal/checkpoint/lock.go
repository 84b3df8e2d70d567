package checkpoint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// Acquire claims exclusive ownership of the state directory by writing a
// PID lock file. If another live process holds the lock, ErrConcurrentRun
// is returned; a lock left behind by a dead process is broken silently.
func (s *Store) Acquire() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	path := filepath.Join(s.dir, lockFile)

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return fmt.Errorf("write lock file: %w", errors.Join(werr, cerr))
			}
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("create lock file: %w", err)
		}

		pid, readErr := readLockPID(path)
		if readErr == nil && processAlive(pid) {
			return fmt.Errorf("%w (pid %d, state dir %s)", ErrConcurrentRun, pid, s.dir)
		}
		// Stale or unreadable lock: break it and retry the exclusive create.
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("remove stale lock: %w", rmErr)
		}
	}
}

// Release drops the lock. Safe to call when the lock was never taken.
func (s *Store) Release() {
	os.Remove(filepath.Join(s.dir, lockFile))
}

func readLockPID(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(raw)))
}

// processAlive probes a PID with signal 0.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
