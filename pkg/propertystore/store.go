// Package propertystore is the sqlite-backed record store for the rental
// portfolio: properties, tenants, leases, payments and users. Every query
// is scoped to a company.
package propertystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Error is a store error that carries an HTTP status.
type Error struct {
	msg  string
	code int
}

func (e *Error) Error() string   { return e.msg }
func (e *Error) StatusCode() int { return e.code }

var (
	// ErrNotFound is returned when a record does not exist in the caller's company.
	ErrNotFound = &Error{msg: "record not found", code: http.StatusNotFound}

	// ErrConflict is returned when a write would violate a uniqueness constraint.
	ErrConflict = &Error{msg: "record conflict", code: http.StatusConflict}

	// ErrInvalidReference is returned when a write points at a missing parent record.
	ErrInvalidReference = &Error{msg: "referenced record does not exist", code: http.StatusUnprocessableEntity}
)

const defaultLimit = 50

// Store implements record access on top of database/sql.
type Store struct {
	db     *sql.DB
	sb     sq.StatementBuilderType
	logger zerolog.Logger
	now    func() time.Time
}

// Config holds store configuration.
type Config struct {
	// Path is the sqlite database file. It is created when missing.
	Path   string
	Logger zerolog.Logger
}

// Open opens (or creates) the database at cfg.Path and applies the schema.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("database path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{
		db:     db,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Question),
		logger: cfg.Logger.With().Str("component", "propertystore").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.Debug().Str("path", cfg.Path).Msg("Property store opened")
	return s, nil
}

// Ping verifies that the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS properties (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			name TEXT NOT NULL,
			address TEXT NOT NULL,
			city TEXT NOT NULL,
			units INTEGER NOT NULL DEFAULT 1,
			monthly_rent REAL NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (company_id, name)
		);
		CREATE INDEX IF NOT EXISTS idx_properties_company ON properties(company_id, city);

		CREATE TABLE IF NOT EXISTS tenants (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			UNIQUE (company_id, email)
		);

		CREATE TABLE IF NOT EXISTS leases (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			property_id TEXT NOT NULL REFERENCES properties(id),
			tenant_id TEXT NOT NULL REFERENCES tenants(id),
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL DEFAULT '',
			monthly_rent REAL NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_leases_company ON leases(company_id, status);

		CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			lease_id TEXT NOT NULL REFERENCES leases(id),
			amount REAL NOT NULL,
			method TEXT NOT NULL DEFAULT 'transfer',
			paid_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_payments_lease ON payments(lease_id);

		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// newID returns a prefixed random id such as "prp_V1StGXR8Z5jdHi6B".
func newID(prefix string) (string, error) {
	id, err := gonanoid.New(16)
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return prefix + "_" + id, nil
}

func limitOf(n int) uint64 {
	if n <= 0 || n > 500 {
		return defaultLimit
	}
	return uint64(n)
}

// mapWriteError turns sqlite constraint failures into store errors.
func mapWriteError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ErrConflict
		case sqlite3.ErrConstraintForeignKey:
			return ErrInvalidReference
		}
	}
	return err
}

func (s *Store) exec(ctx context.Context, query sq.Sqlizer, what string) error {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("building %s query: %w", what, err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, query sq.Sqlizer, what string) (*sql.Rows, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building %s query: %w", what, err)
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return rows, nil
}

func (s *Store) queryRow(ctx context.Context, query sq.Sqlizer, what string, dest ...any) error {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("building %s query: %w", what, err)
	}
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
