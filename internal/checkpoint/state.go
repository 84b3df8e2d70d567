// Package checkpoint persists in-progress cleanup state so an interrupted
// run can resume exactly where it stopped.
package checkpoint

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// CurrentVersion is the checkpoint schema version this build writes.
// Loading a file with a higher version fails with ErrIncompatible.
const CurrentVersion = 1

// Code is an item's processing state.
type Code string

const (
	StatusPending Code = "pending"
	StatusDone    Code = "done"
	StatusSkipped Code = "skipped"
	StatusFailed  Code = "failed"
)

// Terminal reports whether the code is a final state that is never
// re-attempted within the same session.
func (c Code) Terminal() bool {
	return c == StatusDone || c == StatusSkipped || c == StatusFailed
}

// ItemStatus records one item's state plus a failure reason when relevant.
type ItemStatus struct {
	Code   Code   `json:"code"`
	Reason string `json:"reason,omitempty"`
}

// State is the persisted record of one cleanup session.
type State struct {
	Version          int                   `json:"version"`
	SessionID        string                `json:"session_id"`
	CategoryFilter   []string              `json:"category_filter,omitempty"`
	Items            map[string]ItemStatus `json:"items"`
	BytesReclaimed   int64                 `json:"bytes_reclaimed"`
	ItemsProcessed   int                   `json:"items_processed"`
	LastCheckpointAt time.Time             `json:"last_checkpoint_at"`
}

// NewState creates the state for a fresh session.
func NewState(categoryFilter []string) *State {
	return &State{
		Version:        CurrentVersion,
		SessionID:      newSessionID(),
		CategoryFilter: categoryFilter,
		Items:          make(map[string]ItemStatus),
	}
}

// newSessionID returns a random identifier so unrelated runs can never be
// mistaken for one another.
func newSessionID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// Fall back to a time-derived id; uniqueness per host is enough.
		return time.Now().Format("20060102T150405.000000000")
	}
	return hex.EncodeToString(b[:])
}

// Status returns the recorded status for a path, defaulting to Pending.
func (s *State) Status(path string) ItemStatus {
	if st, ok := s.Items[path]; ok {
		return st
	}
	return ItemStatus{Code: StatusPending}
}

// SetStatus records a status transition for a path.
func (s *State) SetStatus(path string, code Code, reason string) {
	s.Items[path] = ItemStatus{Code: code, Reason: reason}
}

// CountByCode tallies recorded items per status code.
func (s *State) CountByCode() map[Code]int {
	out := make(map[Code]int)
	for _, st := range s.Items {
		out[st.Code]++
	}
	return out
}

// PendingCount returns the number of recorded items still pending.
func (s *State) PendingCount() int {
	n := 0
	for _, st := range s.Items {
		if !st.Code.Terminal() {
			n++
		}
	}
	return n
}

// normalize repairs a freshly decoded state: nil maps become empty and
// unknown status codes (from newer point releases) degrade to Pending so
// the work is replayed rather than lost.
func (s *State) normalize() {
	if s.Items == nil {
		s.Items = make(map[string]ItemStatus)
		return
	}
	for path, st := range s.Items {
		switch st.Code {
		case StatusPending, StatusDone, StatusSkipped, StatusFailed:
		default:
			s.Items[path] = ItemStatus{Code: StatusPending}
		}
	}
}
