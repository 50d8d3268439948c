package protocol

import "time"

// Connected greets a freshly registered session.
type Connected struct {
	Type        string   `json:"type"`
	SessionID   string   `json:"sessionId"`
	OnlineCount int      `json:"onlineCount"`
	Interests   []string `json:"interests"`
}

// NewConnected builds the connection greeting, carrying the interest
// allow-list so the client can render its picker.
func NewConnected(sessionID string, onlineCount int, interests []string) Connected {
	return Connected{Type: "connected", SessionID: sessionID, OnlineCount: onlineCount, Interests: interests}
}

// Notice is the shared shape for outbound tags that carry only a
// user-facing message.
type Notice struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewWaiting tells a session its search is still running.
func NewWaiting(message string) Notice { return Notice{Type: "waiting", Message: message} }

// NewPartnerDisconnected tells a session its partner left.
func NewPartnerDisconnected(message string) Notice {
	return Notice{Type: "partner_disconnected", Message: message}
}

// NewChatEnded confirms a session's own stop_chat.
func NewChatEnded(message string) Notice { return Notice{Type: "chat_ended", Message: message} }

// NewSearchTimeout reports a stale-queue eviction.
func NewSearchTimeout(message string) Notice {
	return Notice{Type: "search_timeout", Message: message}
}

// NewDuplicateTab notifies the older session of a device takeover.
func NewDuplicateTab(message string) Notice {
	return Notice{Type: "duplicate_tab", Message: message}
}

// NewError reports a protocol error back to the sender only.
func NewError(message string) Notice { return Notice{Type: "error", Message: message} }

// Matched announces a new pairing to one side.
type Matched struct {
	Type      string `json:"type"`
	PartnerID string `json:"partnerId"`
	Message   string `json:"message"`
}

// NewMatched builds the pairing announcement.
func NewMatched(partnerID, message string) Matched {
	return Matched{Type: "matched", PartnerID: partnerID, Message: message}
}

// Message delivers a chat line from the partner.
type Message struct {
	Type      string `json:"type"`
	From      string `json:"from"`
	Text      string `json:"text"`
	MessageID string `json:"messageId"`
	Timestamp int64  `json:"timestamp"`
}

// NewMessage builds a partner-originated chat line. The sender is always
// presented as "stranger"; session identifiers never leak into the chat.
func NewMessage(text, messageID string, ts time.Time) Message {
	return Message{Type: "message", From: "stranger", Text: text, MessageID: messageID, Timestamp: ts.UnixMilli()}
}

// MessageSent echoes a delivered chat line back to its sender.
type MessageSent struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	MessageID string `json:"messageId"`
	Timestamp int64  `json:"timestamp"`
}

// NewMessageSent builds the sender-side delivery confirmation.
func NewMessageSent(text, messageID string, ts time.Time) MessageSent {
	return MessageSent{Type: "message_sent", Text: text, MessageID: messageID, Timestamp: ts.UnixMilli()}
}

// SearchCancelled confirms a cancel_search.
type SearchCancelled struct {
	Type string `json:"type"`
}

// NewSearchCancelled builds the cancellation confirmation.
func NewSearchCancelled() SearchCancelled { return SearchCancelled{Type: "search_cancelled"} }

// Typing forwards a partner's typing indicator.
type Typing struct {
	Type     string `json:"type"`
	IsTyping bool   `json:"isTyping"`
}

// NewTyping builds a typing indicator frame.
func NewTyping(isTyping bool) Typing { return Typing{Type: "typing", IsTyping: isTyping} }

// OnlineCount broadcasts the live connection total.
type OnlineCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// NewOnlineCount builds the broadcast frame.
func NewOnlineCount(count int) OnlineCount { return OnlineCount{Type: "online_count", Count: count} }

// ReactionReceived forwards a partner's emoji reaction.
type ReactionReceived struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
	Emoji     string `json:"emoji"`
}

// NewReactionReceived builds the reaction relay frame.
func NewReactionReceived(messageID, emoji string) ReactionReceived {
	return ReactionReceived{Type: "reaction_received", MessageID: messageID, Emoji: emoji}
}

// InterestStat is one row of the popularity ledger, sorted by count
// descending.
type InterestStat struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Interests answers a get_interests request with the allow-list and the
// current popularity counts.
type Interests struct {
	Type      string         `json:"type"`
	Interests []string       `json:"interests"`
	Stats     []InterestStat `json:"stats"`
}

// NewInterests builds the interest catalogue response.
func NewInterests(interests []string, stats []InterestStat) Interests {
	return Interests{Type: "interests", Interests: interests, Stats: stats}
}
