package match

import (
	"time"

	"github.com/jaikisan157/shadowchat/internal/metrics"
)

// waitingEntry is a session's membership in the matchmaking queue. A
// session id appears at most once; a new search supersedes the old entry
// and restarts the affinity window.
type waitingEntry struct {
	sessionID  string
	interests  []string // normalized snapshot at enqueue time
	enqueuedAt time.Time
}

// enqueueLocked inserts or replaces sess's queue entry with a fresh
// timestamp, preserving insertion order for the pairing scan.
func (s *Service) enqueueLocked(sess *session) *waitingEntry {
	s.dequeueLocked(sess.id)

	entry := &waitingEntry{
		sessionID:  sess.id,
		interests:  sess.interests,
		enqueuedAt: time.Now(),
	}
	s.queue = append(s.queue, entry)
	metrics.QueueDepth.Set(float64(len(s.queue)))
	return entry
}

// dequeueLocked removes a session's entry, if present.
func (s *Service) dequeueLocked(sessionID string) {
	for i, entry := range s.queue {
		if entry.sessionID == sessionID {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			metrics.QueueDepth.Set(float64(len(s.queue)))
			return
		}
	}
}

// queuedLocked reports whether a session is currently waiting.
func (s *Service) queuedLocked(sessionID string) bool {
	for _, entry := range s.queue {
		if entry.sessionID == sessionID {
			return true
		}
	}
	return false
}
