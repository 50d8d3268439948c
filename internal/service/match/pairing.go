package match

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jaikisan157/shadowchat/internal/metrics"
	"github.com/jaikisan157/shadowchat/internal/model/interest"
	"github.com/jaikisan157/shadowchat/internal/model/protocol"
)

// findCandidateLocked scans the queue for a partner for r under the
// time-relaxed affinity rules. The first eligible entry in queue order
// wins; overlap size is deliberately not ranked.
func (s *Service) findCandidateLocked(r *waitingEntry, now time.Time) *waitingEntry {
	// Prefer a shared interest when the requester declared any.
	if len(r.interests) > 0 {
		for _, w := range s.queue {
			if w.sessionID == r.sessionID {
				continue
			}
			if len(interest.Intersect(r.interests, w.interests)) > 0 {
				return w
			}
		}
		// Hold out for an interest match during the requester's own
		// affinity window.
		if now.Sub(r.enqueuedAt) < s.cfg.AffinityWindow {
			return nil
		}
	}

	// Random pairing, but only with entries that either declared no
	// interests or have already exhausted their own window. This protects
	// a waiting user's chance at an interest match.
	for _, w := range s.queue {
		if w.sessionID == r.sessionID {
			continue
		}
		if len(w.interests) == 0 || now.Sub(w.enqueuedAt) >= s.cfg.AffinityWindow {
			return w
		}
	}

	// A no-preference requester never starves: take anyone still waiting.
	if len(r.interests) == 0 {
		for _, w := range s.queue {
			if w.sessionID != r.sessionID {
				return w
			}
		}
	}

	return nil
}

// pairLocked atomically removes both entries from the queue and creates
// the symmetric link. Both sides are notified with each other's identifier
// and the shared-interest copy.
func (s *Service) pairLocked(a, b *waitingEntry) {
	s.dequeueLocked(a.sessionID)
	s.dequeueLocked(b.sessionID)
	s.linkLocked(a.sessionID, b.sessionID, false)

	message := matchedMessage(interest.Intersect(a.interests, b.interests))
	if sess, ok := s.sessions[a.sessionID]; ok {
		sess.send(protocol.NewMatched(b.sessionID, message))
	}
	if sess, ok := s.sessions[b.sessionID]; ok {
		sess.send(protocol.NewMatched(a.sessionID, message))
	}

	metrics.Matches.WithLabelValues(metrics.KindHuman).Inc()
	log.Printf("[match] paired %s with %s", a.sessionID, b.sessionID)
}

// matchedMessage renders the user-facing pairing copy. An empty
// intersection yields the generic stranger greeting.
func matchedMessage(common []string) string {
	if len(common) == 0 {
		return msgMatchedGeneric
	}

	labels := make([]string, len(common))
	for i, label := range common {
		labels[i] = interest.Display(label)
	}
	return fmt.Sprintf("You both like %s. Say hi!", strings.Join(labels, ", "))
}
