package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Match kind labels.
const (
	KindHuman    = "human"
	KindFallback = "fallback"
)

// Disconnect reason labels.
const (
	ReasonClose     = "close"
	ReasonIdle      = "idle"
	ReasonLiveness  = "liveness"
	ReasonDuplicate = "duplicate"
)

var (
	// Connections tracks the number of live websocket sessions.
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shadowchat_connections",
		Help: "Number of live websocket sessions.",
	})

	// Matches counts established pairings by kind.
	Matches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shadowchat_matches_total",
		Help: "Pairings established, by partner kind.",
	}, []string{"kind"})

	// Disconnects counts session teardowns by reason.
	Disconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shadowchat_disconnects_total",
		Help: "Session teardowns, by reason.",
	}, []string{"reason"})

	// Messages counts chat lines routed between partners.
	Messages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shadowchat_messages_total",
		Help: "Chat messages routed between partners.",
	})

	// QueueDepth tracks the number of sessions waiting for a partner.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shadowchat_queue_depth",
		Help: "Sessions currently waiting in the matchmaking queue.",
	})
)
