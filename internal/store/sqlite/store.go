// Package sqlite implements the catalog store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/untdf/catalog/internal/domain"
	domainerrors "github.com/untdf/catalog/internal/errors"
	"github.com/untdf/catalog/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

var _ store.Catalog = (*Store)(nil)

// Store provides SQLite-backed, tenant-scoped persistence for the catalog.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	mu     sync.RWMutex
	policy domain.DeletePolicy
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open creates a new SQLite store at the given path.
// Pragmas go through the DSN so every pooled connection gets them, in
// particular foreign_keys, which SQLite tracks per connection.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pragmas := url.Values{}
	for _, p := range []string{
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		"foreign_keys(1)",
		"busy_timeout(5000)",
	} {
		pragmas.Add("_pragma", p)
	}
	dsn := "file:" + path + "?" + pragmas.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger,
		policy: domain.PolicyOrphan,
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetDeletePolicy sets how category and tag deletes treat dependent products.
func (s *Store) SetDeletePolicy(p domain.DeletePolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = p
}

// DeletePolicy returns the active delete policy.
func (s *Store) DeletePolicy() domain.DeletePolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// withTx runs fn in a transaction and commits it. Any error rolls the whole
// operation back. Errors that are not already catalog errors become store failures.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domainerrors.StoreFailure(op+": begin tx", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		var catalogErr *domainerrors.Error
		if domainerrors.As(err, &catalogErr) {
			return err
		}
		return domainerrors.StoreFailure(op, err)
	}

	if err := tx.Commit(); err != nil {
		return domainerrors.StoreFailure(op+": commit", err)
	}
	return nil
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullableString returns a sql.NullString from a *string.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// listIDs returns the ids of one table for a token in insertion order.
func (s *Store) listIDs(ctx context.Context, table, token string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM `+table+` WHERE token = ? ORDER BY rowid`, token)
	if err != nil {
		return nil, domainerrors.StoreFailure("list "+table+" ids", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var entityID string
		if err := rows.Scan(&entityID); err != nil {
			return nil, domainerrors.StoreFailure("scan "+table+" id", err)
		}
		ids = append(ids, entityID)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.StoreFailure("iterate "+table+" ids", err)
	}
	return ids, nil
}
