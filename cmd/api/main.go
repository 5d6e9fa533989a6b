// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the authentication panel HTTP server.
//
// # Startup Sequence
//
//  1. Load configuration from environment variables (and an optional .env).
//  2. Initialize structured logger.
//  3. Open the user store (PostgreSQL or SQLite) and run migrations.
//  4. Connect to Redis when configured.
//  5. Build the mailer.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/authpanel/internal/api"
	"github.com/taibuivan/authpanel/internal/platform/config"
	"github.com/taibuivan/authpanel/internal/platform/constants"
	"github.com/taibuivan/authpanel/internal/platform/logging"
	"github.com/taibuivan/authpanel/internal/platform/mail"
	"github.com/taibuivan/authpanel/internal/platform/migration"
	pgstore "github.com/taibuivan/authpanel/internal/platform/postgres"
	redisstore "github.com/taibuivan/authpanel/internal/platform/redis"
	"github.com/taibuivan/authpanel/internal/platform/sec"
	litestore "github.com/taibuivan/authpanel/internal/platform/sqlite"
	"github.com/taibuivan/authpanel/internal/users/account"
	"github.com/taibuivan/authpanel/internal/users/auth"
	"github.com/taibuivan/authpanel/web"
)

func main() {
	// ── 1. Configuration ──────────────────────────────────────────────────
	// A bootstrap logger reports configuration errors before the real one exists.
	bootLog := logging.New(os.Stdout, logging.Options{Format: "json"})

	cfg, err := config.Load()
	must(bootLog, err, "load configuration")

	// ── 2. Logger ─────────────────────────────────────────────────────────
	log := logging.New(os.Stdout, logging.Options{
		Format:      cfg.LogFormat,
		Debug:       cfg.Debug,
		Environment: cfg.Environment,
	})

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("addr", cfg.Addr()),
		slog.String("database_driver", cfg.DatabaseDriver),
		slog.String("mail_provider", cfg.MailProvider),
	)

	// Root context for the process lifetime; cancelled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration fails fast rather than hanging.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. User Store ─────────────────────────────────────────────────────
	userRepository, storeCheck, closeStore := openUserStore(startupCtx, cfg, log)
	defer closeStore()

	checks := []api.HealthCheck{storeCheck}

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var cooldown auth.ResetCooldown
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		cooldown = auth.NewRedisResetCooldown(rdb)
		checks = append(checks, redisCheck(rdb))
	} else {
		log.Warn("redis_disabled", slog.String("effect", "reset emails are not throttled"))
	}

	// ── 5. Mail ───────────────────────────────────────────────────────────
	transport, err := newMailer(startupCtx, cfg, log)
	must(log, err, "initialize mailer")
	mailer := mail.NewAsync(transport, log, constants.MailDeliveryTimeout)

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer)
	must(log, err, "initialize token service")

	authService := auth.NewService(userRepository, cooldown, tokenService, mailer, cfg.PublicBaseURL, log)
	accountService := account.NewService(userRepository)

	liveness, readiness := api.NewHealthHandlers(checks, log)

	static := web.Static()
	if cfg.StaticDir != "" {
		static = os.DirFS(cfg.StaticDir)
		log.Info("serving_static_dir", slog.String("dir", cfg.StaticDir))
	}

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, tokenService, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Account:   account.NewHandler(accountService),
		Shell:     api.NewShellHandler(static),
	})

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	exitCode := 0
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
		exitCode = 1
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer shutdownCancel()

	log.Info("shutting down server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		exitCode = 1
	}

	// Let queued reset emails go out before the stores close.
	if err := mailer.Close(shutdownCtx); err != nil {
		log.Error("mail_drain_incomplete", slog.Any("error", err))
	}

	rootCancel()
	if exitCode != 0 {
		closeStore()
		os.Exit(exitCode)
	}

	log.Info("server stopped cleanly")
}

// openUserStore connects the configured driver, migrates it and returns the
// repository, its readiness probe and a close function.
func openUserStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (auth.UserRepository, api.HealthCheck, func()) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := litestore.Open(ctx, cfg.DatabaseURL, log)
		must(log, err, "open sqlite")
		must(log, migration.RunSQLite(db, log), "run migrations")

		check := api.HealthCheck{Name: "sqlite", Check: func(ctx context.Context) error {
			return litestore.Ping(ctx, db)
		}}
		closeFn := func() {
			log.Info("closing sqlite database")
			_ = db.Close()
		}
		return auth.NewSQLiteUserRepository(db), check, closeFn

	default:
		must(log, migration.RunPostgres(cfg.DatabaseURL, log), "run migrations")

		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")

		check := api.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		}}
		closeFn := func() {
			log.Info("closing postgres pool")
			pool.Close()
		}
		return auth.NewPostgresUserRepository(pool), check, closeFn
	}
}

// newMailer builds the configured transport.
func newMailer(ctx context.Context, cfg *config.Config, log *slog.Logger) (mail.Mailer, error) {
	switch cfg.MailProvider {
	case config.MailProviderSMTP:
		return mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	case config.MailProviderSES:
		return mail.NewSESMailer(ctx, mail.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
			From:            cfg.MailFrom,
		})
	default:
		if cfg.IsProduction() {
			log.Warn("mail_provider_log_in_production", slog.String("effect", "reset emails are only logged"))
		}
		return mail.NewLogMailer(log), nil
	}
}

func redisCheck(client *goredis.Client) api.HealthCheck {
	return api.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
		return redisstore.Ping(ctx, client)
	}}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
