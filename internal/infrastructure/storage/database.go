package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"   // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"ResolutionScanner/internal/config"
)

const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 2
	defaultConnMaxLifetime = 5 * time.Minute
	defaultPingTimeout     = 5 * time.Second
)

// Open connects to the configured case store and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		// One writer at a time keeps SQLite from returning SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(defaultMaxOpenConns)
		db.SetMaxIdleConns(defaultMaxIdleConns)
		db.SetConnMaxLifetime(defaultConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Driver, err)
	}

	return db, nil
}

// EnsureSchema creates the case table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	timestampType := "TIMESTAMP"
	if db.DriverName() == "postgres" {
		timestampType = "TIMESTAMPTZ"
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		codigo_expediente TEXT PRIMARY KEY,
		tipo_resolucion   TEXT NOT NULL,
		url_pdf           TEXT NOT NULL,
		fecha_procesamiento %s NOT NULL
	)`, casesTable, timestampType)

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s table: %w", casesTable, err)
	}
	return nil
}
