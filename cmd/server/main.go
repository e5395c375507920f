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

	webAdapter "procurement-tracker/internal/adapters/web"
	"procurement-tracker/internal/app"
	"procurement-tracker/internal/config"
	"procurement-tracker/internal/logger"
	"procurement-tracker/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(nil)
	svc, cleanup, err := app.Build(ctx, cfg, metrics, zl)
	if err != nil {
		zl.Fatal("startup failed", zap.Error(err))
	}
	defer cleanup()

	handler := webAdapter.NewHandler(ctx, svc, webAdapter.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         zl,
		Metrics:        metrics,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zl.Error("shutdown", zap.Error(err))
		}
	}()

	zl.Info("server starting", zap.String("addr", srv.Addr), zap.String("backend", cfg.Store.Backend))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Fatal("server", zap.Error(err))
	}
	zl.Info("server stopped")
}
