// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/starwars-api/apperr"
	"github.com/danielhkuo/starwars-api/db"
)

// Store owns all persisted entity state. It is safe for concurrent use.
type Store struct {
	db      *sql.DB
	dialect db.Dialect
	log     *slog.Logger
}

func New(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{
		db:      conn,
		dialect: dialect,
		log:     slog.Default().With("component", "store"),
	}
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) exec(ctx context.Context, q querier, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, q querier, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, s.dialect.Rebind(query), args...)
}

// withTx runs fn inside a transaction, rolling back on error
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// placeholders returns "?, ?, ?" for n values
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func idArgs(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// constraintKind classifies constraint violations raised by either engine
func constraintKind(err error) (apperr.Kind, bool) {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return apperr.KindDuplicate, true
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return apperr.KindNotFound, true
		}
		if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			msg := se.Error()
			switch {
			case strings.Contains(msg, "UNIQUE"):
				return apperr.KindDuplicate, true
			case strings.Contains(msg, "FOREIGN KEY"):
				return apperr.KindNotFound, true
			}
		}
		return apperr.KindInternal, false
	}

	var pe *pq.Error
	if errors.As(err, &pe) {
		switch pe.Code {
		case "23505": // unique_violation
			return apperr.KindDuplicate, true
		case "23503": // foreign_key_violation
			return apperr.KindNotFound, true
		}
	}

	return apperr.KindInternal, false
}

// classify turns constraint violations on a named entity into typed errors
// and wraps everything else with context.
func classify(err error, entity, name string) error {
	kind, ok := constraintKind(err)
	if !ok {
		return fmt.Errorf("%s %q: %w", strings.ToLower(entity), name, err)
	}
	switch kind {
	case apperr.KindDuplicate:
		return apperr.Wrap(kind, err, fmt.Sprintf("%s '%s' already exists", entity, name))
	default:
		return apperr.Wrap(kind, err, fmt.Sprintf("%s '%s' references a record that does not exist", entity, name))
	}
}
