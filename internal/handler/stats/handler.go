package stats

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jaikisan157/shadowchat/internal/model/interest"
	"github.com/jaikisan157/shadowchat/internal/service/match"
	"github.com/jaikisan157/shadowchat/pkg/utils"
)

// streamInterval paces the SSE stats feed.
const streamInterval = 5 * time.Second

// Handler serves the read-only views of the registry and the interest
// ledger.
type Handler struct {
	matchSvc *match.Service
}

// New creates the stats handler.
func New(matchSvc *match.Service) *Handler {
	return &Handler{matchSvc: matchSvc}
}

// RegisterRoutes mounts the stats routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/interests", h.handleInterests)
	r.Get("/stats/stream", h.handleStatsStream)
}

// handleInterests returns the allow-list and current popularity counts.
func (h *Handler) handleInterests(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"interests": interest.Known,
		"stats":     h.matchSvc.Stats(),
	})
}

// handleStatsStream pushes online count and interest popularity over SSE
// until the client goes away.
func (h *Handler) handleStatsStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)

	ctx := r.Context()
	log.Printf("[stats] opening stats stream")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	send := func() {
		utils.SendSSEEvent(w, flusher, "stats", map[string]any{
			"onlineCount": h.matchSvc.OnlineCount(),
			"interests":   h.matchSvc.Stats(),
		})
	}

	send()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[stats] closing stats stream")
			return
		case <-ticker.C:
			send()
		}
	}
}
