package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/config"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/infra"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/logging"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/metrics"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/notification"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/routes"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/server"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/soil"
)

const serviceName = "rythu-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.ForService(logging.New(cfg.LogLevel), serviceName, cfg.AppEnv)

	ctx := context.Background()

	var db *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		if err := infra.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			logger.Error("run migrations", "error", err)
			os.Exit(1)
		}
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	} else {
		logger.Warn("DATABASE_URL not set; using in-memory storage")
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	}

	sinks := notification.Fanout{notification.NewLoggerNotifier(logger)}
	if cfg.Kafka.Enabled() {
		kn := notification.NewKafkaNotifier(infra.NewKafkaWriter(cfg.Kafka))
		defer func() {
			if err := kn.Close(); err != nil {
				logger.Warn("close kafka writer", "error", err)
			}
		}()
		sinks = append(sinks, kn)
		logger.Info("kafka notifications enabled", slog.String("topic", cfg.Kafka.Topic))
	}

	var store soil.ObjectStore
	if cfg.S3.Enabled() {
		client, err := infra.NewS3Client(ctx, cfg.S3)
		if err != nil {
			logger.Error("configure s3", "error", err)
			os.Exit(1)
		}
		store = soil.NewS3Store(client, cfg.S3.Bucket)
	}

	srv, err := server.New(routes.Deps{
		Cfg:         cfg,
		DB:          db,
		Cache:       cache,
		Logger:      logger,
		Metrics:     metrics.New(serviceName, metrics.NewRegistry()),
		Notifier:    sinks,
		ObjectStore: store,
	})
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
