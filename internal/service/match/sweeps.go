package match

import (
	"log"
	"time"

	"github.com/jaikisan157/shadowchat/internal/metrics"
	"github.com/jaikisan157/shadowchat/internal/model/protocol"
)

// SweepMatches re-runs the pairing scan for waiting entries, catching
// pairs whose affinity windows expired without either side issuing a new
// request. At most one pairing is made per tick so the queue is never
// mutated mid-iteration.
func (s *Service) SweepMatches() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, r := range s.queue {
		if w := s.findCandidateLocked(r, now); w != nil {
			s.pairLocked(r, w)
			return
		}
	}
}

// SweepStale evicts entries that sat in the queue past the stale timeout.
// The affected session is told its search timed out; its connection stays
// up.
func (s *Service) SweepStale() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var stale []string
	for _, entry := range s.queue {
		if now.Sub(entry.enqueuedAt) > s.cfg.StaleTimeout {
			stale = append(stale, entry.sessionID)
		}
	}

	for _, sessionID := range stale {
		s.dequeueLocked(sessionID)
		sess, ok := s.sessions[sessionID]
		if !ok {
			continue
		}
		sess.send(protocol.NewSearchTimeout(msgSearchTimeout))
		if _, linked := s.links[sessionID]; !linked {
			s.clearCountedLocked(sess)
		}
		log.Printf("[sweep] stale search evicted session=%s", sessionID)
	}
}

// SweepIdle proactively disconnects sessions with no inbound traffic for
// longer than the idle threshold, sending a final notice first.
func (s *Service) SweepIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var idle []*session
	for _, sess := range s.sessions {
		if now.Sub(sess.lastActivity) > s.cfg.IdleTimeout {
			idle = append(idle, sess)
		}
	}

	for _, sess := range idle {
		sess.send(protocol.NewError(msgIdleDisconnect))
		conn := sess.conn
		s.disconnectLocked(sess.id, metrics.ReasonIdle)
		conn.Close()
		log.Printf("[sweep] idle session disconnected id=%s", sess.id)
	}
}
