package protocol

import "strings"

// Inbound tags consumed by the matchmaking core.
const (
	TypeFindMatch    = "find_match"
	TypeCancelSearch = "cancel_search"
	TypeMessage      = "message"
	TypeTyping       = "typing"
	TypeReaction     = "reaction"
	TypeStopChat     = "stop_chat"
	TypeNewChat      = "new_chat"
	TypeGetInterests = "get_interests"
)

// gamePrefix marks opaque mini-game frames relayed verbatim to the partner.
const gamePrefix = "game_"

// Inbound is the envelope for every client frame. Exactly one tag-specific
// field group is populated per message; the dispatch switch in the session
// supervisor is the single place that interprets the tag.
type Inbound struct {
	Type      string   `json:"type"`
	Interests []string `json:"interests,omitempty"`
	Text      string   `json:"text,omitempty"`
	IsTyping  bool     `json:"isTyping,omitempty"`
	MessageID string   `json:"messageId,omitempty"`
	Emoji     string   `json:"emoji,omitempty"`
}

// IsGameEvent reports whether the frame belongs to an embedded mini-game.
// The core never interprets these; the raw bytes are forwarded as-is.
func (m Inbound) IsGameEvent() bool {
	return strings.HasPrefix(m.Type, gamePrefix)
}
