// Package db opens the library database and applies its schema.
package db

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// DriverName maps a configured driver to the database/sql driver name.
// modernc/sqlite registers as "sqlite" (CGO-free).
func DriverName(driver string) (string, error) {
	switch driver {
	case "sqlite3":
		return "sqlite", nil
	case "mysql", "postgres":
		return driver, nil
	default:
		return "", fmt.Errorf("unsupported DB driver %q: must be sqlite3, mysql, or postgres", driver)
	}
}

// New opens and pings a database connection for the given driver and DSN.
// Supported drivers: sqlite3, mysql, postgres.
func New(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	name, err := DriverName(driver)
	if err != nil {
		return nil, err
	}
	// sqlx picks the placeholder style from the driver name; sqlite uses ?.
	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if driver == "sqlite3" {
		// WAL lets session reads proceed while the library is being written.
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set busy timeout: %w", err)
		}
	}
	return db, nil
}
