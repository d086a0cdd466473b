// Admin gateway for the tour-booking dashboard. Owns the browser session,
// enforces the authentication and role gates, and fronts the booking API for
// the dashboard's CRUD resources.
//
// @title        Tour Admin Gateway API
// @version      1.0
// @description  Session gateway for the tour-booking admin dashboard.
// @BasePath     /
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vietour/admin-gateway/internal/api"
	apisession "github.com/vietour/admin-gateway/internal/api/session"
	"github.com/vietour/admin-gateway/internal/core/service"
	"github.com/vietour/admin-gateway/internal/infrastructure/config"
	mongodb "github.com/vietour/admin-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/vietour/admin-gateway/internal/infrastructure/db/redis"
	"github.com/vietour/admin-gateway/internal/infrastructure/queue"
	"github.com/vietour/admin-gateway/internal/infrastructure/upstream"
	"github.com/vietour/admin-gateway/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fallback := logger.Init(logger.Options{})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Infrastructure ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	backend := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.RootURL, cfg.Upstream.Timeout, log)
	sessions := redisdb.NewSessionStore(rdb)
	audits := mongodb.NewAuditRepository(db)

	dispatcher := queue.NewDispatcher(0, audits, log)
	dispatcher.Start(ctx)

	// --- Services ---
	authService := service.NewAuthService(sessions, backend, dispatcher, service.Options{
		SessionTTL:   cfg.Session.TTL,
		CheckTimeout: cfg.Upstream.Timeout,
		Revalidate:   cfg.Session.Revalidate,
	}, log)
	navService := service.NewNavigationService()
	signer := apisession.NewTokenSigner(cfg.CSRFSecret, cfg.Session.TTL)

	e := api.NewRouter(api.Deps{
		Auth:     authService,
		Backend:  backend,
		Sessions: sessions,
		Audits:   audits,
		Nav:      navService,
		Signer:   signer,
		Cookies:  apisession.CookieOptions{Secure: cfg.Session.CookieSecure},
		Redis:    rdb,
		Mongo:    db,
		Log:      log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("upstream", cfg.Upstream.BaseURL).Msg("admin gateway started")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("admin gateway stopped")
}
