package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/kabanhq/kaban/internal/kerrors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// statementBreak is the explicit marker migration scripts are split on
// (§4.1). It must appear alone on its own line.
const statementBreak = "-- >>>"

// migration is one NNNN_<tag>.sql script, applied at most once.
type migration struct {
	name string
	sql  string
}

func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("reading embedded migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]migration, 0, len(names))
	for _, n := range names {
		data, err := migrationFS.ReadFile("migrations/" + n)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", n, err)
		}
		out = append(out, migration{name: strings.TrimSuffix(n, ".sql"), sql: string(data)})
	}
	return out, nil
}

// applyMigrations runs every unapplied migration in order, recording
// each in __migrations inside the same transaction that applies it
// (§4.1). Re-running is a no-op: CREATE ... IF NOT EXISTS statements and
// the __migrations ledger both make this idempotent.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS __migrations (
			name       TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return kerrors.Wrap(kerrors.General, err, "creating __migrations table")
	}

	migrations, err := loadMigrations()
	if err != nil {
		return kerrors.Wrap(kerrors.General, err, "loading migrations")
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(ctx, db, m.name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := applyOneMigration(ctx, db, m); err != nil {
			return kerrors.Wrap(kerrors.General, err, fmt.Sprintf("migration %s failed", m.name))
		}
	}
	return nil
}

func isMigrationApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM __migrations WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return false, kerrors.Wrap(kerrors.General, err, "checking migration state")
	}
	return count > 0, nil
}

func applyOneMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range splitStatements(m.sql) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing statement: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO __migrations (name, applied_at) VALUES (?, ?)`,
		m.name, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

func splitStatements(script string) []string {
	return strings.Split(script, statementBreak)
}
