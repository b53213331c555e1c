package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"gestorcloud/internal/adapters/cli"
	"gestorcloud/internal/config"
	"gestorcloud/internal/core"
	"gestorcloud/internal/db"
	"gestorcloud/internal/observability"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	sqlitePath := fs.String("sqlite", cfg.Database.SQLitePath, "SQLite file to copy from")
	logPath := fs.String("log", "migration.log", "file the migration log is appended to (empty disables it)")
	debug := fs.Bool("debug", false, "log every record")
	skipVerify := fs.Bool("skip-verify", false, "exit 0 even when the verification thresholds are not met")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: migrate [options]

Copies every customer and sale of a SQLite store into the postgres store
configured through DATABASE_URL or the PG_* variables. Customers are matched
by email, so running it again updates instead of duplicating.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	level := cfg.Log.Level
	if *debug {
		level = "debug"
	}
	logger, err := observability.NewFileLogger(level, *logPath)
	if err != nil {
		cli.PrintError(os.Stderr, fmt.Errorf("open migration log: %w", err))
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, cfg, *sqlitePath, *skipVerify); err != nil {
		logger.Error("migration failed", zap.Error(err))
		cli.PrintError(os.Stderr, err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg *config.Config, sqlitePath string, skipVerify bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts, err := cfg.BackendOptions()
	if err != nil {
		return err
	}
	// The target is always the server store, whatever DB_TYPE says.
	opts.Kind = db.KindServer
	opts.URL = cfg.Database.PostgresURL()

	target, err := db.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer target.Close()

	metrics := observability.NewMetrics()
	repo := core.NewRepository(target, core.WithLogger(logger), core.WithMetrics(metrics))

	logger.Info("migration starting", zap.String("source", sqlitePath))
	report, err := repo.MigrateFrom(ctx, sqlitePath)
	if err != nil {
		return err
	}
	cli.PrintMigrationReport(os.Stdout, report)

	if !report.Verification.Passed && !skipVerify {
		return errors.New("verification thresholds not met (customers 95%, sales 90%)")
	}
	return nil
}
