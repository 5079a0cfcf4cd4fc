// Package sqlite is Kaban's canonical storage backend (C1): it opens or
// creates the project's SQLite file, applies ordered migrations,
// installs the audit triggers, and implements every operation in
// storage.Store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/kabanhq/kaban/internal/kerrors"
	"github.com/kabanhq/kaban/internal/storage"
)

// Store is the SQLite-backed implementation of storage.Store.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ storage.Store = (*Store)(nil)

// New opens (creating if absent) the SQLite database at path, creating
// parent directories as needed, enables WAL mode, and applies any
// unapplied migrations before returning. logger may be nil, in which
// case a no-op logger is used.
func New(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, kerrors.Wrap(kerrors.IO, err, fmt.Sprintf("creating directory %s", dir))
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.IO, err, "STORE_OPEN_FAILED: opening database")
	}

	// Writers must be serialised at the Go level too: SQLite allows only
	// one writer at a time, and a pool of connections just multiplies
	// BUSY errors under our own concurrent load.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, kerrors.Wrap(kerrors.IO, err, "STORE_OPEN_FAILED: pinging database")
	}

	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, kerrors.Wrap(kerrors.General, err, "MIGRATION_FAILED")
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
