package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/memecanvas/backend-go/internal/asset"
	"github.com/inamate/memecanvas/backend-go/internal/auth"
	"github.com/inamate/memecanvas/backend-go/internal/config"
	"github.com/inamate/memecanvas/backend-go/internal/export"
	"github.com/inamate/memecanvas/backend-go/internal/imageload"
	mw "github.com/inamate/memecanvas/backend-go/internal/middleware"
	"github.com/inamate/memecanvas/backend-go/internal/raster"
	"github.com/inamate/memecanvas/backend-go/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	raster.BridgeLogger(logger.With("component", "gg"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assetHandler := asset.NewHandler(cfg.AssetDir)
	loader := imageload.New(ctx,
		imageload.WithAssetDir(assetHandler.Dir()),
		imageload.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	)
	fonts := raster.NewFonts(cfg.FontDir)

	hub := session.NewHub(ctx, loader, fonts, cfg.SessionIdleTimeout)
	if err := hub.StartSweeper(cfg.SessionSweepSchedule); err != nil {
		slog.Error("start session sweeper", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewService(cfg.TokenSecret, 0)
	sessionHandler := session.NewHandler(hub, tokens, cfg.OriginHosts(), cfg.CanvasWidth, cfg.CanvasHeight, cfg.CanvasMaxSize)
	exportHandler := export.NewHandler(sessionHandler.Exporter, fonts)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, hub.Len())
	}).Methods("GET")

	r.HandleFunc("/templates", sessionHandler.Templates).Methods("GET")

	// Background uploads (public)
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Sessions
	r.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")

	sessions := r.PathPrefix("/sessions/{sessionId}").Subrouter()
	sessions.Use(tokens.SessionMiddleware)
	sessions.HandleFunc("/document", sessionHandler.Document).Methods("GET", "OPTIONS")
	sessions.HandleFunc("/export", exportHandler.Export).Methods("GET", "OPTIONS")

	// WebSocket endpoint; browsers pass the token as ?token=
	r.Handle("/ws/sessions/{sessionId}", tokens.SessionMiddleware(http.HandlerFunc(sessionHandler.WebSocket)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)

		hub.Stop()
		cancel()
	}()

	slog.Info("server starting", "addr", addr, "canvas", fmt.Sprintf("%dx%d", cfg.CanvasWidth, cfg.CanvasHeight))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
