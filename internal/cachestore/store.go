// Package cachestore persists cached substitutions in SQLite.
//
// The in-memory cache of a run is authoritative; this store only backs it
// when the configuration names a cache file, extending the consistency
// guarantee of cached rules across runs.
package cachestore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable storage for cached substitutions.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies the
// required pragmas and schema. It is idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}

	// SQLite supports one writer at a time; keep a single connection to
	// avoid SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the stored value for a (rule, expression) pair, and whether
// one exists.
func (s *Store) Get(ctx context.Context, ruleID, expr string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM substitutions WHERE rule_id = ? AND expr = ?
	`, ruleID, expr).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read substitution: %w", err)
	}
	return value, true, nil
}

// Put stores the value for a (rule, expression) pair. A pair already present
// keeps its first value: first-writer-wins preserves the consistency
// guarantee when a stale run writes late.
func (s *Store) Put(ctx context.Context, ruleID, expr, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO substitutions (rule_id, expr, value)
		VALUES (?, ?, ?)
		ON CONFLICT(rule_id, expr) DO NOTHING
	`, ruleID, expr, value)
	if err != nil {
		return fmt.Errorf("write substitution: %w", err)
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
