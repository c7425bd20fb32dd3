package main

import (
	"context"
	"fmt"
	"os"

	"saldo/internal/cli"
	"saldo/internal/config"
	applog "saldo/internal/log"
	"saldo/internal/storage"
)

const usage = "usage: saldo-migrate [up|down|version]"

func main() {
	cfg := cli.LoadAndValidateConfig((*config.Config).Validate)
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentStorage)
	ctx := context.Background()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	dialect, dsn, err := target(cfg)
	if err != nil {
		logger.ErrorContext(ctx, "Nothing to migrate", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	switch command {
	case "up":
		err = storage.RunMigrations(dialect, dsn)
	case "down":
		err = storage.RollbackMigrations(dialect, dsn)
	case "version":
		version, dirty, verr := storage.MigrationVersion(dialect, dsn)
		if verr != nil {
			err = verr
			break
		}
		fmt.Printf("%d (dirty=%t)\n", version, dirty)
		return
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.ErrorContext(ctx, "Migration failed",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpMigrate,
			"command", command,
			"backend", cfg.DataBackend)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Migration completed",
		applog.FieldOperation, applog.OpMigrate,
		"command", command,
		"backend", cfg.DataBackend)
}

func target(cfg *config.Config) (storage.Dialect, string, error) {
	switch cfg.DataBackend {
	case config.BackendSQLite:
		return storage.SQLite, storage.SQLiteDSN(cfg.SQLiteDBPath), nil
	case config.BackendPostgres:
		return storage.Postgres, cfg.DatabaseURL, nil
	default:
		return "", "", fmt.Errorf("backend %q has no schema", cfg.DataBackend)
	}
}
