package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jaikisan157/shadowchat/internal/config"
	"github.com/jaikisan157/shadowchat/internal/handler/stats"
	"github.com/jaikisan157/shadowchat/internal/handler/ws"
	middlewarePkg "github.com/jaikisan157/shadowchat/internal/middleware"
	"github.com/jaikisan157/shadowchat/internal/service/match"
	"github.com/jaikisan157/shadowchat/pkg/utils"
)

// NewRouter wires HTTP routes to the matchmaking core.
func NewRouter(matchSvc *match.Service, matchCfg config.MatchConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	wsHandler := ws.New(matchSvc, matchCfg)
	wsHandler.RegisterRoutes(r)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"connections": matchSvc.OnlineCount(),
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	statsHandler := stats.New(matchSvc)
	r.Route("/api", func(api chi.Router) {
		statsHandler.RegisterRoutes(api)
	})

	return r
}
