// hirewire-listing-service
//
// Job-listing search and lifecycle engine.
// Exposes a REST API used by the Gateway to implement:
//   - searchListings(filter, pinnedId?)    — predicate search over published listings
//   - advanceStatus(listingId)             — draft → published → delisted → published
//   - setFeatured(listingId, bool)         — plan-gated featured flag
//   - create/update/delete listing         — employer CRUD
//   - org stats                            — cached published/featured counts
//
// Publishes EVENT_LISTING_CHANGED to Redis for Gateway SSE forward.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"hirewire/listing-service/internal/config"
	"hirewire/listing-service/internal/db"
	"hirewire/listing-service/internal/listing"
	"hirewire/listing-service/internal/ratelimit"
	"hirewire/listing-service/internal/stats"
)

const version = "1.0.0"

func main() {
	// .env is optional — real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[listing-service] Config error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("[listing-service] Logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("postgres connect failed", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("postgres connected")

	// ── Redis ────────────────────────────────────────────────────────────────
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis connect failed", zap.Error(err))
	}
	defer rdb.Close()
	logger.Info("redis connected")

	// ── Wiring ───────────────────────────────────────────────────────────────
	store := listing.NewStore(pool)
	events := listing.NewRedisPublisher(rdb)
	svc := listing.NewService(store, events, logger)

	statsSvc := stats.New(pool, rdb, logger)
	sweeper := stats.NewSweeper(statsSvc, cfg.StatsRefreshInterval, logger)
	if err := sweeper.Start(ctx); err != nil {
		logger.Fatal("stats sweeper start failed", zap.Error(err))
	}
	defer sweeper.Stop()

	limiter := ratelimit.New(
		ratelimit.NewRedisStore(rdb, "ratelimit"),
		cfg.RateLimitPerWindow, cfg.RateLimitWindow, logger)

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	listing.NewHandler(svc, logger).RegisterRoutes(mux)
	stats.NewHandler(statsSvc, logger).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      limiter.Middleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("version", version), zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	logger.Info("stopped")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "listing-service",
		"version": version,
	})
}
