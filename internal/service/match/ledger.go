package match

import (
	"sort"

	"github.com/jaikisan157/shadowchat/internal/model/interest"
	"github.com/jaikisan157/shadowchat/internal/model/protocol"
)

// The ledger counts each allow-listed interest once per session that is
// currently queued or chatting. Free-text interests match but are never
// counted, which keeps the label space bounded. Counts are maintained
// incrementally; they are never recomputed from scratch.

// setCountedLocked replaces sess's ledger contribution with the
// allow-listed subset of a normalized interest list.
func (s *Service) setCountedLocked(sess *session, normalized []string) {
	s.clearCountedLocked(sess)

	counted := interest.Counted(normalized)
	for _, label := range counted {
		s.ledger[label]++
	}
	sess.counted = counted
}

// clearCountedLocked withdraws sess's contribution. Counts never go
// negative: each decrement is backed by a recorded contribution.
func (s *Service) clearCountedLocked(sess *session) {
	for _, label := range sess.counted {
		if s.ledger[label] <= 1 {
			delete(s.ledger, label)
		} else {
			s.ledger[label]--
		}
	}
	sess.counted = nil
}

// statsLocked returns the popularity rows sorted by count descending, ties
// broken alphabetically for a stable display order.
func (s *Service) statsLocked() []protocol.InterestStat {
	stats := make([]protocol.InterestStat, 0, len(s.ledger))
	for label, count := range s.ledger {
		stats = append(stats, protocol.InterestStat{Label: interest.Display(label), Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Label < stats[j].Label
	})
	return stats
}

// Stats exposes the ledger for the HTTP read side.
func (s *Service) Stats() []protocol.InterestStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}
