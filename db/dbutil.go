package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const memoryPath = ":memory:"

// DBConfig describes where the deployment history lives.
type DBConfig struct {
	// Path is the history file, or ":memory:" for tests.
	Path     string
	LogLevel logger.LogLevel
}

// InitDatabase opens the history store without migrating it. InitDB is the
// entry point for the CLI; tests use this directly with an in-memory path.
func InitDatabase(config DBConfig) (*gorm.DB, error) {
	inMemory := config.Path == memoryPath
	if !inMemory {
		dir := filepath.Dir(config.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("Failed to create history directory", "dir", dir, "error", err)
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	slog.Debug("Opening history database", "path", config.Path)

	db, err := gorm.Open(sqlite.Open(config.Path), &gorm.Config{
		Logger: logger.Default.LogMode(config.LogLevel),
	})
	if err != nil {
		slog.Error("Failed to open history database", "path", config.Path, "error", err)
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if inMemory {
		// Each pooled connection would otherwise get its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.Exec(historyPragmas(inMemory)).Error; err != nil {
		slog.Error("Failed to configure history database", "error", err)
		return nil, fmt.Errorf("failed to configure history database: %w", err)
	}

	return db, nil
}

// historyPragmas enables WAL on the history file so `history` can read while
// a deploy is appending outcomes.
func historyPragmas(inMemory bool) string {
	pragmas := "PRAGMA foreign_keys = ON;"
	if inMemory {
		return pragmas
	}
	return pragmas + `
	PRAGMA journal_mode = WAL;
	PRAGMA synchronous  = NORMAL;
	PRAGMA busy_timeout = 5000;`
}
