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

	"github.com/PratikDhanave/dev-event-hub/internal/config"
	"github.com/PratikDhanave/dev-event-hub/internal/httpserver"
	"github.com/PratikDhanave/dev-event-hub/internal/imagehost"
	"github.com/PratikDhanave/dev-event-hub/internal/metrics"
	"github.com/PratikDhanave/dev-event-hub/internal/store"
)

// main boots the service: config → store → image host → HTTP server.
func main() {
	// Load runtime config from .env, CONFIG_FILE and the environment.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Connect to the event store selected by the DB_URL scheme; indexes are
	// created on first connect so `docker compose up --build` is enough.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := store.Shared(ctx, cfg.DBURL, cfg.DBName)
	cancel()
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	images, err := imagehost.New(cfg.ImageHost, cfg.CloudinaryURL)
	if err != nil {
		log.Fatal(err)
	}

	router, err := httpserver.NewRouter(cfg, db, images, metrics.New())
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("server started on %s (image host %s)", cfg.Addr, cfg.ImageHost)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
