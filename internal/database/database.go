// Package database manages the SQLite connection and schema migrations.
package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"docucloud/internal/config"
)

const (
	busyTimeoutMs   = 5000
	maxWriteRetries = 3
)

// Manager owns the GORM connection for the application.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
}

// NewManager creates a database manager for the given configuration.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger}
}

// Init opens the database connection and applies connection settings.
func (m *Manager) Init() error {
	if dir := filepath.Dir(m.cfg.DatabaseName); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(m.cfg.DatabaseName), &gorm.Config{
		Logger: gormLogLevel(m.cfg),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.Exec("PRAGMA journal_mode = WAL")
	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMs))

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(m.cfg.GetMaxOpenConns())
	sqlDB.SetMaxIdleConns(m.cfg.GetMaxIdleConns())

	m.db = db
	return nil
}

// GetConnection returns the active GORM connection.
func (m *Manager) GetConnection() *gorm.DB {
	return m.db
}

// Close closes the underlying connection pool.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate runs schema migrations for the given models. The model list is
// supplied by the caller so this package stays below the domain packages.
func (m *Manager) Migrate(models ...any) error {
	if m.db == nil {
		return gorm.ErrInvalidDB
	}

	err := m.db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(models...)
	})
	if err != nil {
		m.logger.Error("Failed to auto-migrate database", slog.Any("error", err))
		return err
	}

	if err := m.CheckpointWAL("FULL"); err != nil {
		m.logger.Warn("Failed to checkpoint WAL after migration", slog.Any("error", err))
	}

	m.logger.Info("Database migration completed successfully")
	return nil
}

// CheckpointWAL forces a WAL checkpoint with the given mode.
func (m *Manager) CheckpointWAL(mode string) error {
	if m.db == nil {
		return gorm.ErrInvalidDB
	}
	return m.db.Exec(fmt.Sprintf("PRAGMA wal_checkpoint(%s)", mode)).Error
}

// PerformWrite runs fn in a transaction, retrying briefly when SQLite
// reports the database as busy or locked.
func PerformWrite(logger *slog.Logger, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxWriteRetries; attempt++ {
		err = db.Transaction(fn)
		if err == nil || !isBusyError(err) {
			return err
		}
		logger.Debug("Retrying write after busy database",
			slog.Int("attempt", attempt),
			slog.Any("error", err))
		time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
	}
	return err
}

func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func gormLogLevel(cfg *config.Config) gormlogger.Interface {
	if cfg.IsDevelopment() {
		return gormlogger.Default.LogMode(gormlogger.Warn)
	}
	return gormlogger.Default.LogMode(gormlogger.Silent)
}
