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

	httpadapter "adboard/internal/adapter/http"
	"adboard/internal/adapter/ledgerrpc"
	"adboard/internal/adapter/postgres"
	"adboard/internal/adapter/service"
	"adboard/internal/config"
	"adboard/internal/db"
)

// main is the entry point of the adboard accounting service. It loads
// configuration, optionally runs database migrations, connects the mirror
// pool and the ledger node client, then starts the mirror syncer and the
// operational HTTP server. On receiving a termination signal it gracefully
// shuts everything down.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		// Initialise structured logger based on configuration.
		var handler slog.Handler
		opts := &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, opts)
		default:
			handler = slog.NewTextHandler(os.Stdout, opts)
		}
		logger = slog.New(handler).With(slog.String("env", cfg.Env))
	}

	program, err := cfg.Ledger.ProgramAddress()
	if err != nil {
		logger.Error("invalid program address", slog.Any("error", err))
		os.Exit(1)
	}

	// Optionally run migrations if configured.
	if cfg.Psql.RunMigrations {
		if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
			logger.Error("migration error", slog.Any("error", err))
		} else {
			logger.Info("migrations applied successfully")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		logger.Error("database connection error", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Psql.Seed {
		if err = db.Seed(ctx, pool, program); err != nil {
			logger.Error("seed error", slog.Any("error", err))
		} else {
			logger.Info("demo data seeded")
		}
	}

	runtime := ledgerrpc.New(cfg.Ledger.RPCAddr, cfg.Ledger.WSAddr, ledgerrpc.Options{
		AuthToken: cfg.Ledger.AuthToken,
		Logger:    logger,
	})
	mirror := postgres.NewMirrorStore(pool)
	if cfg.Ledger.SyncInterval > 0 {
		syncer := service.NewSyncer(runtime, mirror, cfg.Ledger.SyncInterval, logger)
		go func() {
			if err := syncer.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("mirror syncer stopped", slog.Any("error", err))
			}
		}()
	}

	handler := httpadapter.NewOpsHandler(pool, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	value := <-quit
	exitCode = 128 + int(value.(syscall.Signal))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}
