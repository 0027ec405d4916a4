// Package cli carries the startup sequence shared by the jornada binaries.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"jornada/internal/config"
	"jornada/internal/storage"
)

// Bootstrap runs the common startup steps: load .env when present, install
// the default text logger and read the environment configuration. Invalid
// configuration is fatal.
func Bootstrap() (*slog.Logger, *config.Config) {
	// .env is a local-development convenience; in production the
	// environment is already populated.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	return logger, cfg
}

// OpenStore opens the SQLite store at dbPath, running migrations. A store
// that cannot be opened is fatal; none of the binaries can run without one.
func OpenStore(logger *slog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to open SQLite store", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
