package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"metalquotes/internal/cache"
	"metalquotes/internal/chain"
	"metalquotes/internal/config"
	"metalquotes/internal/httpx"
	"metalquotes/internal/logutils"
	"metalquotes/internal/market"
	"metalquotes/internal/resolver"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logutils.New(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	httpClient := httpx.New(timeout)

	ch, err := chain.Build(cfg, httpClient, logger)
	if err != nil {
		logger.Fatal("provider chain", zap.Error(err))
	}
	if len(ch.Attempts) == 0 {
		logger.Warn("no spot providers configured; set METALPRICE_API_KEYS, GOLDAPI_KEY or enable metals.live")
	}

	spot := cache.New(
		resolver.New(ch.Attempts, resolver.WithLogger(logger)),
		cache.NewSpot(),
		cache.Config{
			TTL:        time.Duration(cfg.Cache.SpotTTLSec) * time.Second,
			ServeStale: cfg.Cache.ServeStale,
		},
		cache.WithLogger(logger),
	)
	svc := market.New(spot, ch.Ticks, market.Config{MaxCandles: cfg.Server.MaxCandles}, market.WithLogger(logger))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newHandler(svc, timeout, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
