// Package storage opens the database and provides gorm-backed repositories.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/concierge/concierge/internal/config"
	"github.com/concierge/concierge/internal/schema"
)

// Open connects to the configured database and migrates the schema.
// A postgres URL in the config selects postgres; otherwise a sqlite
// file under the data directory is used.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, desc, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database (%s): %w", desc, err)
	}

	if err := db.AutoMigrate(
		&schema.Appointment{},
		&schema.Chat{},
		&schema.ChatMessage{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	slog.Info("database ready", "backend", desc)
	return db, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, string, error) {
	if url := cfg.Database.URL; url != "" {
		if !strings.HasPrefix(url, "postgres://") && !strings.HasPrefix(url, "postgresql://") {
			return nil, "", fmt.Errorf("unsupported database url %q", url)
		}
		return postgres.Open(url), "postgres", nil
	}

	dir := config.DataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, "concierge.db")
	return sqlite.Open(path), "sqlite:" + path, nil
}

// OpenSQLite opens a sqlite database at an explicit path. Used by tests
// and the status command, which should not touch the default data dir.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database (sqlite:%s): %w", path, err)
	}
	if err := db.AutoMigrate(&schema.Appointment{}, &schema.Chat{}, &schema.ChatMessage{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}
