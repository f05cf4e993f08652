package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/api"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/api/middleware"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/auth"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/chat"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/config"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/crypto"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/handlers"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Pick the persistent backend: Postgres > SQLite > in-memory.
	var data store.DataStore
	switch {
	case cfg.DatabaseURL != "":
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		logger.Info().Msg("connected to PostgreSQL")
		data = pg
	case cfg.SQLitePath != "" || cfg.IsDevelopment():
		sq, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("using SQLite")
		data = sq
	default:
		logger.Warn().Msg("no database configured, messages will not survive restarts")
		data = store.NewMemoryStore()
	}
	defer data.Close()

	// Optional Redis message plane + send rate limiting.
	var msgs store.MessageStore = data
	var redisStore *store.RedisStore
	if cfg.RedisURL != "" {
		rs, err := store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rs.Close()
		logger.Info().Msg("connected to Redis, message log moved there")
		redisStore = rs
		msgs = rs
	}

	cipher, err := crypto.NewCipher(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("cipher init failed")
	}

	svc := chat.NewService(msgs, data, cipher, logger)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret)

	var google *auth.GoogleVerifier
	if cfg.GoogleClientID != "" {
		google = auth.NewGoogleVerifier(cfg.GoogleClientID)
	}

	router := api.NewRouter(api.Deps{
		Logger:         logger,
		Handler:        handlers.NewHandler(svc, issuer, google, msgs, data),
		Auth:           middleware.NewAuthMiddleware(issuer),
		RateLimiter:    middleware.NewRateLimiter(redisStore, logger),
		GoogleClientID: cfg.GoogleClientID,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Int("queue_size", chat.MaxQueueSize).
			Msg("starting chat logger server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
