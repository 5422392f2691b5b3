// Package store persists members and serves the read-only club tables from SQLite.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // database/sql driver
)

// Store is the SQLite-backed record store.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
	locks  recordLocks
}

// Open creates the database file if needed, applies migrations and connects.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	dsn := path + "?_foreign_keys=on&_busy_timeout=5000"
	if err := RunMigrations(dsn, logger); err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// SQLite allows one writer.
	db.SetMaxOpenConns(1)

	logger.Debug("store opened", "path", path)
	return &Store{
		db:     db,
		logger: logger,
		locks:  recordLocks{locks: make(map[string]*sync.Mutex)},
	}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// recordLocks hands out one mutex per record key.
type recordLocks struct {
	locks map[string]*sync.Mutex
	mu    sync.Mutex
}

// lock blocks until key is free and returns its unlock function.
func (l *recordLocks) lock(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
