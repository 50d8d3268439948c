package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/jaikisan157/shadowchat/internal/config"
	"github.com/jaikisan157/shadowchat/internal/metrics"
	"github.com/jaikisan157/shadowchat/internal/model/protocol"
	"github.com/jaikisan157/shadowchat/internal/service/match"
)

// Handler owns the websocket endpoint: upgrade, the read loop, and the
// transport-level liveness probes. All protocol semantics live in the
// match service.
type Handler struct {
	matchSvc *match.Service
	cfg      config.MatchConfig
	upgrader websocket.Upgrader
}

// New creates the websocket handler.
func New(matchSvc *match.Service, cfg config.MatchConfig) *Handler {
	return &Handler{
		matchSvc: matchSvc,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

// wsConn adapts a gorilla connection to the match.Conn contract. Frame
// writes are serialized behind one mutex; writes after Close are silent
// no-ops, matching the send-to-closed-transport policy.
type wsConn struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	reason string
}

// closeReason records why the transport went away, for the teardown
// metrics. Defaults to a client-initiated close.
func (c *wsConn) closeReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reason == "" {
		return metrics.ReasonClose
	}
	return c.reason
}

func (c *wsConn) closeWithReason(reason string) {
	c.mu.Lock()
	if !c.closed && c.reason == "" {
		c.reason = reason
	}
	c.mu.Unlock()
	c.Close()
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	return c.conn.WriteJSON(v)
}

func (c *wsConn) WriteRaw(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	deviceID := strings.TrimSpace(r.URL.Query().Get("device"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}

	wrapped := &wsConn{conn: conn}
	sessionID := h.matchSvc.Register(wrapped, deviceID)
	defer func() {
		h.matchSvc.Disconnect(sessionID, wrapped.closeReason())
		wrapped.Close()
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Liveness is pong-based: the probe loop counts consecutive
	// unanswered pings and terminates the transport past the miss limit.
	// The read deadline is a backstop for transports that stop delivering
	// anything at all.
	var missed atomic.Int32
	deadline := h.cfg.PingInterval * time.Duration(h.cfg.PingMissLimit+2)
	conn.SetReadDeadline(time.Now().Add(deadline))
	conn.SetPongHandler(func(string) error {
		missed.Store(0)
		conn.SetReadDeadline(time.Now().Add(deadline))
		return nil
	})

	go h.pingLoop(ctx, conn, wrapped, &missed, sessionID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[websocket] read error session=%s: %v", sessionID, err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(deadline))
		h.dispatch(sessionID, raw)
	}
}

// dispatch decodes one inbound frame and routes it. Malformed payloads are
// answered with an error frame to the sender only; they are never fatal to
// the connection.
func (h *Handler) dispatch(sessionID string, raw []byte) {
	var msg protocol.Inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.matchSvc.SendError(sessionID, "Invalid message format")
		return
	}

	h.matchSvc.Touch(sessionID)

	if msg.IsGameEvent() {
		h.matchSvc.RelayGame(sessionID, raw)
		return
	}

	switch msg.Type {
	case protocol.TypeFindMatch:
		h.matchSvc.FindMatch(sessionID, msg.Interests)
	case protocol.TypeCancelSearch:
		h.matchSvc.CancelSearch(sessionID)
	case protocol.TypeMessage:
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			return
		}
		h.matchSvc.SendMessage(sessionID, text)
	case protocol.TypeTyping:
		h.matchSvc.SetTyping(sessionID, msg.IsTyping)
	case protocol.TypeReaction:
		if msg.MessageID == "" || msg.Emoji == "" {
			h.matchSvc.SendError(sessionID, "Invalid reaction payload")
			return
		}
		h.matchSvc.React(sessionID, msg.MessageID, msg.Emoji)
	case protocol.TypeStopChat:
		h.matchSvc.StopChat(sessionID)
	case protocol.TypeNewChat:
		h.matchSvc.NewChat(sessionID, msg.Interests)
	case protocol.TypeGetInterests:
		h.matchSvc.GetInterests(sessionID)
	default:
		h.matchSvc.SendError(sessionID, "unsupported message type: "+msg.Type)
	}
}

// pingLoop sends a probe every interval and terminates the connection
// after the configured number of consecutive unanswered probes. Closing
// the transport unwinds the read loop, which runs the standard teardown.
func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn, wrapped *wsConn, missed *atomic.Int32, sessionID string) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if int(missed.Load()) >= h.cfg.PingMissLimit {
				log.Printf("[websocket] liveness failed session=%s, terminating", sessionID)
				wrapped.closeWithReason(metrics.ReasonLiveness)
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
			missed.Add(1)
		}
	}
}
