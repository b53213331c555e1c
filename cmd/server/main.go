package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "gestorcloud/internal/adapters/web"
	"gestorcloud/internal/app"
	"gestorcloud/internal/config"
	"gestorcloud/internal/core"
	"gestorcloud/internal/db"
	"gestorcloud/internal/observability"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger("info").Fatal("config", zap.Error(err))
	}
	logger := observability.NewLogger(cfg.Log.Level)
	defer logger.Sync()

	opts, err := cfg.BackendOptions()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := db.Open(ctx, opts)
	if err != nil {
		logger.Fatal("database", zap.Error(err), zap.String("backend", string(opts.Kind)))
	}
	defer backend.Close()

	metrics := observability.NewMetrics()
	repo := core.NewRepository(backend, core.WithLogger(logger), core.WithMetrics(metrics))
	svc := app.NewAppService(repo, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           webAdapter.NewHandler(svc, cfg.Server.AllowedOrigins, logger, metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("backend", string(opts.Kind)))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server", zap.Error(err))
	}
	logger.Info("server stopped")
}
