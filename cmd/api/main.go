package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"personal-ledger/config"
	httpHandler "personal-ledger/internal/adapter/http/handler"
	"personal-ledger/internal/adapter/http/middleware"
	"personal-ledger/internal/adapter/storage/gateway"
	"personal-ledger/internal/adapter/storage/sealed"
	"personal-ledger/internal/service"
	"personal-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default ./config.yaml)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("backend", cfg.Storage.Backend).
		Int("port", cfg.Server.Port).
		Msg("Starting Personal Ledger")

	ctx := context.Background()

	// Storage backend
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage backend")
	}
	defer be.close()

	blobs := be.blobs
	if cfg.Storage.EncryptionKey != "" {
		sealedBlobs, err := sealed.NewBlobStore(blobs, cfg.Storage.EncryptionKey)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize storage encryption")
		}
		blobs = sealedBlobs
		log.Info().Msg("Storage encryption enabled")
	}
	store := gateway.New(blobs, cfg.Storage.Prefix, cfg.Storage.Timeout)

	// Core services
	rate, _ := cfg.Ledger.SavingsRate() // checked by config.Load
	notifier := service.NewNotifier(cfg.Ledger.EventBuffer, be.publisher, logger.Component(log, "notifier"))

	ledger, err := service.OpenLedger(ctx, store,
		service.WithSavingsRate(rate),
		service.WithNotifier(notifier),
		service.WithLogger(logger.Component(log, "ledger")),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}

	lock, err := service.NewScreenLock(store, cfg.Lock.Passcode, logger.Component(log, "screen_lock"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize screen lock")
	}
	if err := lock.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to restore screen lock state")
	}

	scheduler := service.NewInterestScheduler(ledger, cfg.Ledger.InterestInterval, time.Now, logger.Component(log, "interest"))
	scheduler.Start(ctx)

	// HTTP
	gin.SetMode(cfg.Server.Mode)
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Ledger:         ledger,
		Lock:           lock,
		Notifier:       notifier,
		RateLimiter:    be.limiter,
		VerifyLimit:    middleware.RateLimitRule{Limit: cfg.Lock.MaxAttempts, Window: cfg.Lock.AttemptWindow},
		HealthCheckers: be.checkers,
		Logger:         logger.Component(log, "http"),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Order: scheduler, then server, then stores (deferred).
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
