package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"salonbook/backend/internal/store"
)

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateExclusionViolation  = "23P01"
	sqlStateForeignKeyViolation = "23503"

	overlapConstraint = "appointments_no_overlap"
)

var foreignKeyErrors = map[string]error{
	"appointments_client_id_fkey":  store.ErrUnknownClient,
	"appointments_staff_id_fkey":   store.ErrUnknownStaff,
	"appointments_service_id_fkey": store.ErrUnknownService,
}

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func Open(ctx context.Context, databaseURL string, pool PoolConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return bun.NewDB(sqlDB, pgdialect.New()), nil
}

func Close(db *bun.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// ReadyCheck reports whether the database answers a ping. Used by /readyz.
func ReadyCheck(db *bun.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}

// mapWriteError translates constraint violations raised by appointment writes into
// store errors. Anything else is returned unchanged.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case sqlStateExclusionViolation:
		if pgErr.ConstraintName == overlapConstraint {
			return store.ErrConflict
		}
	case sqlStateForeignKeyViolation:
		if mapped, ok := foreignKeyErrors[pgErr.ConstraintName]; ok {
			return mapped
		}
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
