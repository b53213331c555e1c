package main

import (
	"bufio"
	"context"
	"os"

	"gestorcloud/internal/adapters/cli"
	"gestorcloud/internal/adapters/repl"
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

	ctx := context.Background()
	backend, err := db.Open(ctx, opts)
	if err != nil {
		logger.Fatal("database", zap.Error(err), zap.String("backend", string(opts.Kind)))
	}
	defer backend.Close()

	// Repository chatter stays out of the console unless debugging.
	repoLogger := logger
	if cfg.Log.Level != "debug" {
		repoLogger = logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
	}
	svc := app.NewAppService(core.NewRepository(backend, core.WithLogger(repoLogger)), repoLogger)

	if len(os.Args) > 1 {
		if err := cli.Run(ctx, svc, os.Args[1:], os.Stdout); err != nil {
			cli.PrintError(os.Stderr, err)
			backend.Close()
			os.Exit(1)
		}
		return
	}

	if err := repl.Run(ctx, svc, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
		cli.PrintError(os.Stderr, err)
		backend.Close()
		os.Exit(1)
	}
}
