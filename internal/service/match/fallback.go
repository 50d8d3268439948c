package match

import (
	"context"
	"log"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/jaikisan157/shadowchat/internal/metrics"
	"github.com/jaikisan157/shadowchat/internal/model/interest"
	"github.com/jaikisan157/shadowchat/internal/model/protocol"
)

// fallbackPeer is a synthetic counterpart standing in for a human in the
// link table. Conversation state lives behind the PeerBackend contract;
// only the identifiers and the assigned interest set are tracked here.
type fallbackPeer struct {
	id        string
	humanID   string
	interests []string // normalized persona interests
}

// SweepFallback assigns a simulated partner to the longest-suffering
// waiting entry past the fallback threshold. At most one assignment
// happens per tick.
func (s *Service) SweepFallback() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, entry := range s.queue {
		if now.Sub(entry.enqueuedAt) >= s.cfg.FallbackThreshold {
			s.assignFallbackLocked(entry)
			return
		}
	}
}

// assignFallbackLocked pairs entry with a fresh synthetic peer through the
// same link table as human pairings, so downstream routing is agnostic to
// whether the partner is human.
func (s *Service) assignFallbackLocked(entry *waitingEntry) {
	sess, ok := s.sessions[entry.sessionID]
	if !ok {
		s.dequeueLocked(entry.sessionID)
		return
	}

	// The synthetic identifier is shaped like any session id; the human
	// side is never told the partner is simulated.
	peerID := uuid.NewString()
	assigned := interest.Normalize(s.peers.Create(peerID, entry.interests), 0)

	s.dequeueLocked(entry.sessionID)
	s.linkLocked(entry.sessionID, peerID, true)
	s.fallbacks[peerID] = &fallbackPeer{id: peerID, humanID: entry.sessionID, interests: assigned}

	sess.send(protocol.NewMatched(peerID, matchedMessage(interest.Intersect(entry.interests, assigned))))

	metrics.Matches.WithLabelValues(metrics.KindFallback).Inc()
	log.Printf("[match] fallback partner %s assigned to %s", peerID, entry.sessionID)

	go s.greetFromPeer(entry.sessionID, peerID)
}

// greetFromPeer delivers the opening line after a randomized pause, with a
// typing indicator bracketing it like a human would produce.
func (s *Service) greetFromPeer(humanID, peerID string) {
	time.Sleep(time.Duration(1500+rand.IntN(2500)) * time.Millisecond)

	greeting := s.peers.Greeting(peerID)
	if greeting == "" {
		return
	}
	if !s.sendPeerTyping(humanID, peerID, true) {
		return
	}
	time.Sleep(s.peers.TypingDelay(greeting))
	s.deliverPeerMessage(humanID, peerID, greeting)
}

// deliverToPeer hands the human's message to the capability contract and
// schedules the reply. This is the only genuinely asynchronous path in the
// core: the human may disconnect while the reply is in flight, so every
// delivery step re-checks the link and discards silently when it is gone.
func (s *Service) deliverToPeer(humanID, peerID, text string) {
	reply, disengage := s.peers.Reply(context.Background(), peerID, text)
	if disengage {
		s.disengagePeer(humanID, peerID)
		return
	}
	if reply == "" {
		return
	}

	if !s.sendPeerTyping(humanID, peerID, true) {
		return
	}
	time.Sleep(s.peers.TypingDelay(reply))
	s.deliverPeerMessage(humanID, peerID, reply)
}

// sendPeerTyping forwards a synthetic typing indicator. It reports whether
// the pairing still exists.
func (s *Service) sendPeerTyping(humanID, peerID string, isTyping bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.peerLinkLocked(humanID, peerID)
	if !ok {
		return false
	}
	sess.send(protocol.NewTyping(isTyping))
	return true
}

// deliverPeerMessage delivers a synthetic chat line, clearing the typing
// indicator first. Replies that outlived their pairing are dropped.
func (s *Service) deliverPeerMessage(humanID, peerID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.peerLinkLocked(humanID, peerID)
	if !ok {
		return
	}
	sess.send(protocol.NewTyping(false))
	sess.send(protocol.NewMessage(text, uuid.NewString(), time.Now()))
}

// disengagePeer ends a synthetic pairing on the peer's initiative. The
// human sees exactly what a human departure looks like.
func (s *Service) disengagePeer(humanID, peerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.peerLinkLocked(humanID, peerID)
	if !ok {
		return
	}

	delete(s.links, humanID)
	delete(s.links, peerID)
	delete(s.fallbacks, peerID)
	s.peers.Remove(peerID)

	sess.send(protocol.NewTyping(false))
	sess.send(protocol.NewPartnerDisconnected(msgPartnerDisconnected))
	if !s.queuedLocked(humanID) {
		s.clearCountedLocked(sess)
	}
	log.Printf("[match] fallback partner %s disengaged from %s", peerID, humanID)
}

// peerLinkLocked validates that humanID is still linked to peerID and
// returns the human session.
func (s *Service) peerLinkLocked(humanID, peerID string) (*session, bool) {
	l, linked := s.links[humanID]
	if !linked || !l.synthetic || l.partnerID != peerID {
		return nil, false
	}
	sess, ok := s.sessions[humanID]
	if !ok {
		return nil, false
	}
	return sess, true
}
