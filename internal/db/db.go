package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/consultorio-api/internal/config"
	"github.com/BruksfildServices01/consultorio-api/internal/logging"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

// NewDB opens the configured database, retrying while it is busy or not
// reachable yet, and migrates the schema.
func NewDB(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	err = WithRetry(ctx, cfg.DBConnectRetries, cfg.DBRetryBaseDelay, logger, func() error {
		var openErr error
		db, openErr = gorm.Open(dialector, &gorm.Config{
			PrepareStmt:    cfg.DBDriver == config.DriverPostgres,
			TranslateError: true,
			// Referential integrity between tables is kept by the
			// application, as DNI updates cascade by hand.
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
		})
		return openErr
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := PingWithRetry(ctx, sqlDB, cfg.DBConnectRetries, cfg.DBRetryBaseDelay, logger); err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("database ready", "driver", cfg.DBDriver)
	return db, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		return sqlite.Open(SQLiteDSN(cfg.DBPath, cfg.DBBusyTimeout)), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.DBUrl), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
	}
}

// SQLiteDSN enables WAL, a busy timeout and BEGIN IMMEDIATE transactions
// so concurrent writers queue instead of failing on upgrade.
func SQLiteDSN(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf(
		"%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate",
		path,
		busyTimeout.Milliseconds(),
	)
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// IsSQLite reports whether db runs on the single-file SQLite store.
func IsSQLite(db *gorm.DB) bool {
	return db.Dialector.Name() == "sqlite"
}
