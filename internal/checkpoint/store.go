package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	checkpointFile = "cleanup.checkpoint.json"
	lockFile       = "cleanup.lock"
)

var (
	// ErrNotFound means no usable checkpoint exists in the state directory.
	ErrNotFound = errors.New("no checkpoint found")

	// ErrIncompatible means the checkpoint was written by an incompatible
	// version or with a conflicting category filter; it must not be merged.
	ErrIncompatible = errors.New("incompatible checkpoint")

	// ErrConcurrentRun means another live process owns the state directory.
	ErrConcurrentRun = errors.New("another cleanup run is already active")
)

// Store owns the persisted checkpoint under a single state directory.
// Exactly one run may hold the store's lock at a time.
type Store struct {
	dir string
}

// NewStore returns a store rooted at the given state directory. The
// directory is created lazily on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the state directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the canonical checkpoint file path.
func (s *Store) Path() string { return filepath.Join(s.dir, checkpointFile) }

// Exists reports whether a checkpoint file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

// Load reads and validates the persisted checkpoint.
//
// A missing file returns ErrNotFound. A file that fails to parse is
// preserved by renaming it aside (never silently overwritten) and also
// returns ErrNotFound, so the caller starts fresh while the evidence
// survives for inspection. A version newer than this build understands
// returns ErrIncompatible.
func (s *Store) Load() (*State, error) {
	raw, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		if renameErr := s.preserveCorrupt(); renameErr != nil {
			return nil, fmt.Errorf("checkpoint corrupt and could not be preserved: %w", renameErr)
		}
		return nil, ErrNotFound
	}
	if st.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: file version %d, supported up to %d",
			ErrIncompatible, st.Version, CurrentVersion)
	}
	if st.SessionID == "" {
		// Malformed but parseable; treat like corruption.
		if renameErr := s.preserveCorrupt(); renameErr != nil {
			return nil, fmt.Errorf("checkpoint corrupt and could not be preserved: %w", renameErr)
		}
		return nil, ErrNotFound
	}
	st.normalize()
	return &st, nil
}

// Save atomically persists the state: the file is written to a temporary
// name in the same directory and renamed over the canonical path, so a
// reader never observes a half-written checkpoint.
func (s *Store) Save(st *State) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	st.LastCheckpointAt = time.Now()

	tmp, err := os.CreateTemp(s.dir, checkpointFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("create checkpoint temp file: %w", err)
	}
	tmpName := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close checkpoint temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}

// Clear removes the persisted checkpoint. Clearing an absent checkpoint
// is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.Path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear checkpoint: %w", err)
	}
	return nil
}

// preserveCorrupt renames a broken checkpoint aside with a timestamp
// suffix so the user can inspect what happened.
func (s *Store) preserveCorrupt() error {
	aside := s.Path() + ".corrupt-" + time.Now().Format("20060102T150405")
	return os.Rename(s.Path(), aside)
}
