package match

import "github.com/jaikisan157/shadowchat/internal/model/protocol"

// link is one direction of a pairing. Links are always written in pairs so
// that if A maps to B, B maps to A; a session holds at most one.
type link struct {
	partnerID string
	synthetic bool
}

// linkLocked bonds two identifiers symmetrically.
func (s *Service) linkLocked(a, b string, synthetic bool) {
	s.links[a] = link{partnerID: b, synthetic: synthetic}
	s.links[b] = link{partnerID: a, synthetic: synthetic}
}

// endChatLocked dissolves sessionID's pairing, if any. The other side gets
// a partner-disconnected notice when notify is set; the caller's own
// connection is left untouched. Ending a synthetic pairing also discards
// the peer's conversation state.
func (s *Service) endChatLocked(sessionID string, notify bool) {
	l, linked := s.links[sessionID]
	if !linked {
		return
	}

	delete(s.links, sessionID)
	delete(s.links, l.partnerID)

	if l.synthetic {
		delete(s.fallbacks, l.partnerID)
		s.peers.Remove(l.partnerID)
		return
	}

	partner, ok := s.sessions[l.partnerID]
	if !ok {
		return
	}
	if notify {
		partner.send(protocol.NewPartnerDisconnected(msgPartnerDisconnected))
	}
	// The partner is now neither queued nor linked, so its interests
	// leave the counted population.
	if !s.queuedLocked(l.partnerID) {
		s.clearCountedLocked(partner)
	}
}
