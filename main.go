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

	"github.com/Subcero232117/voice/internal/config"
	"github.com/Subcero232117/voice/internal/handlers"
	"github.com/Subcero232117/voice/internal/security"
	"github.com/Subcero232117/voice/internal/services"
)

func main() {
	cfg := config.Load()

	metrics := services.NewMetrics()
	hub := services.NewHub(cfg, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	origins := security.NewOriginValidator(cfg.AllowedOrigins)

	mux := http.NewServeMux()
	mux.Handle("GET /ws", handlers.NewWSHandler(hub, origins))
	mux.Handle("GET /metrics", handlers.NewMetricsHandler(metrics))
	mux.HandleFunc("GET /healthz", handlers.HealthHandler)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("voice relay listening on %s (room %s)", cfg.Addr, cfg.RoomID)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
