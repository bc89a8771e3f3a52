// Command server runs the ISP onboarding API.
//
// @title       ISP Onboarding API
// @version     1.0
// @description Customer application intake for broadband onboarding.
// @BasePath    /api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/isp-onboarding-backend/internal/config"
	httpapi "github.com/tbourn/isp-onboarding-backend/internal/http"
	"github.com/tbourn/isp-onboarding-backend/internal/observability"
	"github.com/tbourn/isp-onboarding-backend/internal/repo"
	"github.com/tbourn/isp-onboarding-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.ConfigureLogging(os.Stdout, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	build := observability.Build{
		Version:     sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version),
		Environment: cfg.AppEnv,
	}

	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, build)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	flushSentry, err := observability.SetupSentry(cfg.Sentry, build)
	if err != nil {
		log.Error().Err(err).Msg("sentry init failed; continuing without error reporting")
		flushSentry = func(time.Duration) {}
	}

	dsn := cfg.DB.DSN
	if cfg.DB.Driver == config.DriverSQLite {
		dsn = cfg.DB.Path
	}
	db, err := repo.Open(cfg.DB.Driver, dsn, cfg.DB.MaxOpenConns)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("database connection failed")
	}
	if err := observability.InstrumentDB(db); err != nil {
		log.Warn().Err(err).Msg("database tracing disabled")
	}
	if cfg.DB.AutoMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}
	if n, err := repo.CountApplications(ctx, db); err == nil {
		log.Info().Int64("applications", n).Msg("record store ready")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		log.Warn().Err(err).Msg("trusted proxies")
	}
	httpapi.RegisterRoutes(r, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("env", cfg.AppEnv).
			Str("db", cfg.DB.Driver).
			Str("version", build.Version).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	if err := shutdownOTel(shCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown error")
	}
	flushSentry(2 * time.Second)

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("database close error")
		}
	}
	log.Info().Msg("server stopped")
}
