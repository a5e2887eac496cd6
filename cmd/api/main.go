package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Geraxi/tenant-mvp-sub001/internal/app/apiapp"
	"github.com/Geraxi/tenant-mvp-sub001/internal/config"
	"github.com/Geraxi/tenant-mvp-sub001/internal/infra/logger"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfgPath := flag.String("config", defaultConfigPath(), "path to the YAML config; env overrides still apply")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting swipe api",
		zap.String("config", *cfgPath),
		zap.String("env", cfg.Env),
		zap.String("addr", cfg.HTTP.Addr),
		zap.Int("free_swipe_limit", cfg.Limits.FreeSwipes),
		zap.Int("premium_rate_per_minute", cfg.Limits.PremiumRatePerMinute),
		zap.Bool("push_enabled", cfg.Push.Enabled),
		zap.Bool("postgres_configured", cfg.Postgres.DSN != ""),
		zap.Bool("redis_configured", cfg.Redis.Addr != ""),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := apiapp.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("create swipe api", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down swipe api")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown swipe api", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("swipe api failed", zap.Error(err))
		}
	}
}

func defaultConfigPath() string {
	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}
	return "configs/config.yaml"
}
