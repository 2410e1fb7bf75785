package db

import (
	"fmt"
	"log/slog"

	"github.com/hpi-schul-cloud/sc-app-deploy/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the history database at dbPath and migrates its schema.
// logLevel is the console log level; SQL statements are only printed at debug.
func InitDB(dbPath, logLevel string) (*gorm.DB, error) {
	slog.Debug("Initializing database", "path", dbPath)

	db, err := InitDatabase(DBConfig{
		Path:     dbPath,
		LogLevel: gormLogLevel(logLevel),
	})
	if err != nil {
		return nil, err
	}

	if err := AutoMigrateAll(db); err != nil {
		slog.Error("Database operation failed",
			"layer", "db",
			"operation", "migrate",
			"path", dbPath,
			"error", err)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Debug("Database initialized successfully", "path", dbPath)
	return db, nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gormLogLevel maps the console log level to the GORM log level. It does not
// consult slog.Default, whose debug-level log file sink would enable SQL output.
func gormLogLevel(logLevel string) logger.LogLevel {
	switch level := logging.ParseLogLevel(logLevel); {
	case level <= slog.LevelDebug:
		return logger.Info
	case level <= slog.LevelWarn:
		return logger.Warn
	case level <= slog.LevelError:
		return logger.Error
	default:
		return logger.Silent
	}
}
