package state

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// MaxNotices bounds the notice history kept in memory.
const MaxNotices = 20

// Notice is a user-facing error message.
type Notice struct {
	Title   string
	Message string
	At      time.Time
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Notices             []Notice // oldest first
	LastChecked         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the server has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// LatestNotice returns the newest notice.
func (s Snapshot) LatestNotice() (Notice, bool) {
	if len(s.Notices) == 0 {
		return Notice{}, false
	}
	return s.Notices[len(s.Notices)-1], true
}

// Store coordinates concurrent updates to the snapshot. The zero value is
// ready to use.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

// Notify records a notice. It satisfies the notifier interfaces of the
// pagecache and navigation packages.
func (s *Store) Notify(title, message string) {
	log.Printf("notice: %s: %s", title, message)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Notices = append(s.snapshot.Notices, Notice{Title: title, Message: message, At: s.clock()})
	if n := len(s.snapshot.Notices); n > MaxNotices {
		s.snapshot.Notices = append([]Notice(nil), s.snapshot.Notices[n-MaxNotices:]...)
	}
}

// RecordPoll stores the outcome of a connectivity check. When err is non-nil
// the failure streak grows; success resets it.
func (s *Store) RecordPoll(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastChecked = s.clock()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Notices = cloneNotices(s.snapshot.Notices)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func cloneNotices(items []Notice) []Notice {
	if len(items) == 0 {
		return nil
	}
	dup := make([]Notice, len(items))
	copy(dup, items)
	return dup
}
