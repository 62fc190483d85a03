package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the process-wide connection, set by Init.
var DB *gorm.DB

// Models lists every table owned by the record store, in migration order.
func Models() []any {
	return []any{
		&Task{},
		&Sprint{},
		&KaizenLog{},
		&Distraction{},
		&DailyPlan{},
		&Streak{},
	}
}

// Init opens the SQLite database and auto-migrates the schema.
// An empty path falls back to kaizenflow.db. Slow queries are logged to
// stderr so stdout stays free for the stdio transport.
func Init(databasePath string) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "kaizenflow.db"
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	dbLogger := logger.New(
		log.New(os.Stderr, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gdb, err := Open(path, dbLogger)
	if err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open connects to path and migrates it without touching the global DB.
// Timestamps are stored in UTC. SQLite serializes writers, so the pool is
// held at a single connection; code running inside a transaction must only
// use the transaction handle.
func Open(path string, gormLogger logger.Interface) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:  gormLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return gdb, nil
}

// Ping checks that the store is reachable.
func Ping(ctx context.Context, gdb *gorm.DB) error {
	if gdb == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func ensureParentDir(path string) error {
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		return nil
	}

	clean := strings.TrimPrefix(path, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
