package notify

import (
	"sync"

	"github.com/google/uuid"

	"saldo/internal/clock"
)

type phase int

const (
	watching phase = iota + 1
	notified
	reminderScheduled
	reminderFired
)

func (p phase) String() string {
	switch p {
	case watching:
		return "watching"
	case notified:
		return "notified"
	case reminderScheduled:
		return "reminder_scheduled"
	case reminderFired:
		return "reminder_fired"
	default:
		return "unwatched"
	}
}

// watch is the per-target tracking entry. The timer callback holds a pointer
// to its entry and fires only if the same entry is still tracked.
type watch struct {
	phase     phase
	name      string
	milestone int // highest progress milestone announced
	timer     clock.Timer
}

// Session is the dedup state of one logged-in session. It must not be
// shared between owners.
type Session struct {
	mu      sync.Mutex
	id      string
	ownerID string
	closed  bool

	tracked  map[string]*watch
	achieved map[string]bool // ids that got their achieved event this session

	lowBalanceSent bool
}

func NewSession(ownerID string) *Session {
	return &Session{
		id:       uuid.NewString(),
		ownerID:  ownerID,
		tracked:  make(map[string]*watch),
		achieved: make(map[string]bool),
	}
}

func (s *Session) ID() string      { return s.id }
func (s *Session) OwnerID() string { return s.ownerID }

// Close cancels pending reminders and forgets all tracking. A closed session
// ignores further events.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.tracked {
		s.dropLocked(id)
	}
	clear(s.achieved)
	s.closed = true
}

// Pending returns the number of scheduled reminders.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, w := range s.tracked {
		if w.phase == reminderScheduled {
			n++
		}
	}
	return n
}

func (s *Session) phaseOf(id string) phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.tracked[id]; ok {
		return w.phase
	}
	return 0
}

func (s *Session) dropLocked(id string) {
	w, ok := s.tracked[id]
	if !ok {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	delete(s.tracked, id)
}
