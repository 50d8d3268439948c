package match

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jaikisan157/shadowchat/internal/metrics"
	"github.com/jaikisan157/shadowchat/internal/model/interest"
	"github.com/jaikisan157/shadowchat/internal/model/protocol"
)

// session is one connected participant's server-side state. The transport
// handle is owned here; everything else references the session id.
type session struct {
	id       string
	deviceID string
	conn     Conn

	interests []string // normalized current declaration
	counted   []string // allow-listed labels contributed to the ledger

	lastActivity time.Time
	open         bool
}

// send writes one frame, silently dropping it when the transport is gone.
func (s *session) send(v any) {
	if !s.open {
		return
	}
	if err := s.conn.WriteJSON(v); err != nil {
		log.Printf("[match] send failed session=%s: %v", s.id, err)
	}
}

func (s *session) sendRaw(data []byte) {
	if !s.open {
		return
	}
	if err := s.conn.WriteRaw(data); err != nil {
		log.Printf("[match] raw send failed session=%s: %v", s.id, err)
	}
}

// Register admits a new transport: device takeover first, then a fresh
// session id, the connected greeting, and an online-count broadcast.
func (s *Service) Register(conn Conn, deviceID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Last tab wins: a colliding device identifier forcibly closes the
	// older session before the new one proceeds, so a device never holds
	// two live sessions.
	if deviceID != "" {
		if oldID, taken := s.devices[deviceID]; taken {
			if old, ok := s.sessions[oldID]; ok {
				old.send(protocol.NewDuplicateTab(msgDuplicateTab))
				s.endChatLocked(oldID, true)
				s.dequeueLocked(oldID)
				s.clearCountedLocked(old)
				s.removeLocked(old)
				old.conn.Close()
				metrics.Disconnects.WithLabelValues(metrics.ReasonDuplicate).Inc()
				log.Printf("[match] duplicate tab takeover device=%s old=%s", deviceID, oldID)
			}
		}
	}

	sess := &session{
		id:           uuid.NewString(),
		deviceID:     deviceID,
		conn:         conn,
		lastActivity: time.Now(),
		open:         true,
	}
	s.sessions[sess.id] = sess
	if deviceID != "" {
		s.devices[deviceID] = sess.id
	}
	metrics.Connections.Inc()

	log.Printf("[match] session connected id=%s online=%d", sess.id, len(s.sessions))

	sess.send(protocol.NewConnected(sess.id, len(s.sessions), interest.Known))
	s.broadcastOnlineCountLocked()
	return sess.id
}

// removeLocked drops a session from the registry and the device map. It
// marks the transport closed so pending sends become no-ops.
func (s *Service) removeLocked(sess *session) {
	sess.open = false
	delete(s.sessions, sess.id)
	if sess.deviceID != "" && s.devices[sess.deviceID] == sess.id {
		delete(s.devices, sess.deviceID)
	}
	metrics.Connections.Dec()
}

// Touch refreshes the last-activity timestamp; called for every inbound
// protocol message, not for liveness probes.
func (s *Service) Touch(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		sess.lastActivity = time.Now()
	}
}

// OnlineCount returns the number of live sessions, for the health endpoint.
func (s *Service) OnlineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) broadcastOnlineCountLocked() {
	frame := protocol.NewOnlineCount(len(s.sessions))
	for _, sess := range s.sessions {
		sess.send(frame)
	}
}
