package sqlstore

import (
	"context"
	"fmt"
	"time"

	apperrors "goeda/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("unsupported database driver %q", driver))
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, fmt.Errorf("failed to open %s database: %w", driver, err))
	}

	if driver == DriverSQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, fmt.Errorf("failed to ping %s database: %w", driver, err))
	}
	return db, nil
}
