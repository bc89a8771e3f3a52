// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver), MySQL and PostgreSQL, plus schema migrations.
package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tbourn/isp-onboarding-backend/internal/domain"
)

// Open connects to the configured record store. driver is one of "sqlite",
// "mysql" or "postgres"; dsn is the SQLite file path for sqlite and the
// connection string otherwise. maxOpen caps the connection pool.
func Open(driver, dsn string, maxOpen int) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		// OpenSQLite sizes its own pool.
		return OpenSQLite(dsn)
	case "mysql":
		// parseTime is required so DATE/DATETIME columns scan into time.Time.
		mcfg, perr := mysqldrv.ParseDSN(dsn)
		if perr != nil {
			return nil, perr
		}
		mcfg.ParseTime = true
		db, err = gorm.Open(mysql.New(mysql.Config{DSN: mcfg.FormatDSN()}), gormConfig())
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gormConfig())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	configurePool(db, maxOpen)
	return db, nil
}

// OpenSQLite opens (or creates) a SQLite database with WAL journaling,
// foreign keys and a busy timeout on every connection. The pool holds a
// single connection; maxOpen passed to Open does not apply to SQLite.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(withPragmas(path)), gormConfig())
	if err != nil {
		return nil, err
	}

	// SQLite admits one writer at a time. A single connection queues
	// transactions in the pool instead of failing them with SQLITE_BUSY.
	configurePool(db, 1)
	return db, nil
}

// sqlitePragmas are applied by the driver to every new connection.
var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
}

func withPragmas(path string) string {
	var b strings.Builder
	b.WriteString(path)
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	for _, p := range sqlitePragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: NewGormLogger(log.Logger)}
}

func configurePool(db *gorm.DB, maxOpen int) {
	if maxOpen < 1 {
		maxOpen = 1
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxOpen)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
}

// AutoMigrate creates or updates the six application tables and the
// idempotency table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}

// Ping checks that the underlying connection pool can reach the database.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
