// Command api runs the kodbank account service.
//
// @title        Kodbank API
// @version      1.0
// @description  Session-credential account service: registration, login with
// @description  hybrid token verification, and server-side revocation.
// @BasePath     /
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/srushti128/kodbank/internal/api"
	mongodb "github.com/srushti128/kodbank/internal/infrastructure/db/mongo"
	redisdb "github.com/srushti128/kodbank/internal/infrastructure/db/redis"
	"github.com/srushti128/kodbank/internal/infrastructure/sweeper"
	"github.com/srushti128/kodbank/internal/pkg/config"
	"github.com/srushti128/kodbank/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepLockKey    = "kodbank:sweep:lock"
	sweepLockTTL    = time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not up yet; this is the one place stderr is used directly.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Persistent stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo index bootstrap failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- HTTP surface ---
	e, err := api.NewRouter(db, rdb, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("router construction failed")
	}

	// --- Expired-session sweep ---
	sessionRepo := mongodb.NewSessionRepository(db)
	lock := redisdb.NewSweepLock(rdb, sweepLockKey, sweepLockTTL)
	sweeper.New(sessionRepo, lock, cfg.SweepInterval, logger.Component("sweeper")).Start(ctx)

	// --- Serve ---
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("kodbank listening")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
