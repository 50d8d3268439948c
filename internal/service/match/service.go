package match

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaikisan157/shadowchat/internal/config"
	"github.com/jaikisan157/shadowchat/internal/metrics"
	"github.com/jaikisan157/shadowchat/internal/model/interest"
	"github.com/jaikisan157/shadowchat/internal/model/protocol"
)

// User-facing copy for system notices.
const (
	msgWaiting             = "Looking for someone to chat with..."
	msgChatEnded           = "You ended the chat."
	msgPartnerDisconnected = "Stranger has disconnected."
	msgSearchTimeout       = "Search timed out. No one is available right now."
	msgIdleDisconnect      = "Disconnected due to inactivity."
	msgDuplicateTab        = "You opened a chat in another tab. This session is now inactive."
	msgMatchedGeneric      = "You're chatting with a random stranger. Say hi!"
)

// Conn is the transport handle held by the connection registry. The ws
// handler wraps the real websocket connection behind this so the core never
// depends on the transport library directly.
type Conn interface {
	// WriteJSON sends one protocol frame. Writing to a closed transport
	// must be a silent no-op, never an error surfaced to callers.
	WriteJSON(v any) error
	// WriteRaw sends pre-encoded bytes, used for verbatim game relay.
	WriteRaw(data []byte) error
	Close() error
}

// PeerBackend is the capability contract of the simulated-partner service.
// The matchmaking core knows nothing about prompts or models; it only asks
// for greetings and replies and honors the disengage signal.
type PeerBackend interface {
	// Create assigns a persona to a synthetic peer and returns the
	// persona's declared interests.
	Create(peerID string, interests []string) []string
	// Greeting produces the opening line for a fresh pairing.
	Greeting(peerID string) string
	// Reply produces the peer's answer to an inbound text. A true second
	// return value means the peer chose to end the relationship; the
	// reply text is then empty.
	Reply(ctx context.Context, peerID, text string) (string, bool)
	// TypingDelay estimates how long a human would take to type text.
	TypingDelay(text string) time.Duration
	// Remove discards a peer's conversation state.
	Remove(peerID string)
}

// Service owns all shared matchmaking state: connection registry, device
// dedup map, interest ledger, waiting queue, and link table. Every mutation
// happens under one mutex so sweeps never observe a half-updated queue.
type Service struct {
	cfg   config.MatchConfig
	peers PeerBackend

	mu        sync.Mutex
	sessions  map[string]*session       // session id -> live connection state
	devices   map[string]string         // device id -> session id
	queue     []*waitingEntry           // insertion-ordered matchmaking queue
	links     map[string]link           // session id -> partner, symmetric
	fallbacks map[string]*fallbackPeer  // synthetic peer id -> peer
	ledger    map[string]int            // allow-listed interest -> population count
}

// NewService builds the matchmaking core. peers must not be nil; run the
// filler-only bot backend when no model is configured.
func NewService(cfg config.MatchConfig, peers PeerBackend) *Service {
	return &Service{
		cfg:       cfg,
		peers:     peers,
		sessions:  make(map[string]*session),
		devices:   make(map[string]string),
		links:     make(map[string]link),
		fallbacks: make(map[string]*fallbackPeer),
		ledger:    make(map[string]int),
	}
}

// Start launches the periodic sweeps. They stop when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go s.sweepLoop(ctx, s.cfg.RetrySweepInterval, s.SweepMatches)
	go s.sweepLoop(ctx, s.cfg.FallbackSweepInterval, s.SweepFallback)
	go s.sweepLoop(ctx, s.cfg.StaleSweepInterval, s.SweepStale)
	go s.sweepLoop(ctx, s.cfg.IdleSweepInterval, s.SweepIdle)
}

func (s *Service) sweepLoop(ctx context.Context, interval time.Duration, body func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			body()
		}
	}
}

// FindMatch handles a find_match request: supersede any existing queue
// entry, end any current pairing, and either pair immediately or start
// waiting.
func (s *Service) FindMatch(sessionID string, interests []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return
	}

	s.endChatLocked(sessionID, true)

	normalized := interest.Normalize(interests, s.cfg.MaxInterests)
	sess.interests = normalized
	s.searchLocked(sess)
}

// NewChat ends the current pairing (if any) and immediately re-enters
// search in one step.
func (s *Service) NewChat(sessionID string, interests []string) {
	// Same transition as find_match; matched -> searching in one step.
	s.FindMatch(sessionID, interests)
}

// searchLocked enqueues sess with a fresh timestamp and attempts a pairing
// right away.
func (s *Service) searchLocked(sess *session) {
	entry := s.enqueueLocked(sess)
	s.setCountedLocked(sess, sess.interests)

	candidate := s.findCandidateLocked(entry, time.Now())
	if candidate == nil {
		sess.send(protocol.NewWaiting(msgWaiting))
		return
	}
	s.pairLocked(entry, candidate)
}

// CancelSearch removes the session from the queue without touching its
// connection.
func (s *Service) CancelSearch(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return
	}

	s.dequeueLocked(sessionID)
	if _, linked := s.links[sessionID]; !linked {
		s.clearCountedLocked(sess)
	}
	sess.send(protocol.NewSearchCancelled())
}

// SendMessage routes a chat line to the current partner. With no partner it
// is silently ignored.
func (s *Service) SendMessage(sessionID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return
	}

	l, linked := s.links[sessionID]
	if !linked {
		return
	}

	messageID := uuid.NewString()
	now := time.Now()
	metrics.Messages.Inc()

	if l.synthetic {
		sess.send(protocol.NewMessageSent(text, messageID, now))
		go s.deliverToPeer(sessionID, l.partnerID, text)
		return
	}

	if partner, ok := s.sessions[l.partnerID]; ok {
		partner.send(protocol.NewMessage(text, messageID, now))
	}
	sess.send(protocol.NewMessageSent(text, messageID, now))
}

// SetTyping forwards a typing indicator to a human partner. Synthetic
// partners do not care whether the human is typing.
func (s *Service) SetTyping(sessionID string, isTyping bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, linked := s.links[sessionID]
	if !linked || l.synthetic {
		return
	}
	if partner, ok := s.sessions[l.partnerID]; ok {
		partner.send(protocol.NewTyping(isTyping))
	}
}

// React forwards an emoji reaction to a human partner. Synthetic partners
// ignore reactions.
func (s *Service) React(sessionID, messageID, emoji string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, linked := s.links[sessionID]
	if !linked || l.synthetic {
		return
	}
	if partner, ok := s.sessions[l.partnerID]; ok {
		partner.send(protocol.NewReactionReceived(messageID, emoji))
	}
}

// RelayGame forwards an opaque game frame verbatim to a human partner.
// Frames addressed to a synthetic partner are dropped.
func (s *Service) RelayGame(sessionID string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, linked := s.links[sessionID]
	if !linked || l.synthetic {
		return
	}
	if partner, ok := s.sessions[l.partnerID]; ok {
		partner.sendRaw(raw)
	}
}

// StopChat ends the current pairing without closing the caller's own
// connection.
func (s *Service) StopChat(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return
	}

	s.endChatLocked(sessionID, true)
	s.dequeueLocked(sessionID)
	s.clearCountedLocked(sess)
	sess.send(protocol.NewChatEnded(msgChatEnded))
}

// GetInterests answers with the allow-list and current popularity counts.
func (s *Service) GetInterests(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	sess.send(protocol.NewInterests(interest.Known, s.statsLocked()))
}

// SendError reports a protocol error back to the offending session only.
func (s *Service) SendError(sessionID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		sess.send(protocol.NewError(message))
	}
}

// Disconnect tears a session out of every shared structure. Calling it
// twice for the same identifier is safe; the second call is a no-op.
func (s *Service) Disconnect(sessionID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnectLocked(sessionID, reason)
}

func (s *Service) disconnectLocked(sessionID, reason string) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return
	}

	s.endChatLocked(sessionID, true)
	s.dequeueLocked(sessionID)
	s.clearCountedLocked(sess)
	s.removeLocked(sess)

	metrics.Disconnects.WithLabelValues(reason).Inc()
	log.Printf("[match] session disconnected id=%s reason=%s online=%d", sessionID, reason, len(s.sessions))
	s.broadcastOnlineCountLocked()
}
