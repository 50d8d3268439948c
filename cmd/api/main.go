package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jaikisan157/shadowchat/internal/config"
	"github.com/jaikisan157/shadowchat/internal/handler"
	"github.com/jaikisan157/shadowchat/internal/model/persona"
	"github.com/jaikisan157/shadowchat/internal/service/bot"
	"github.com/jaikisan157/shadowchat/internal/service/match"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())

	// The simulated-partner backend always exists; without Ark
	// credentials it answers from the canned reply set.
	botSvc, err := bot.NewService(ctx, personaStore, cfg.AI)
	if err != nil {
		log.Printf("warning: failed to initialize bot model: %v", err)
		log.Println("continuing with canned replies only")
		botSvc, _ = bot.NewService(ctx, personaStore, config.AIConfig{})
	}
	if botSvc.ModelEnabled() {
		log.Println("bot model initialized successfully")
	} else {
		log.Println("ark credentials not configured, simulated partners use canned replies")
	}

	matchSvc := match.NewService(cfg.Match, botSvc)
	matchSvc.Start(ctx)

	router := handler.NewRouter(matchSvc, cfg.Match)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("ShadowChat backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
