package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/kabanhq/kaban/internal/idgen"
	"github.com/kabanhq/kaban/internal/kerrors"
	"github.com/kabanhq/kaban/internal/types"
)

// InitializeBoard creates the board and its columns from cfg. It is
// idempotent: if a board already exists, it is returned unchanged and
// cfg is ignored (§4.2).
func (s *Store) InitializeBoard(ctx context.Context, cfg types.BoardConfig) (*types.Board, error) {
	existing, err := s.GetBoard(ctx)
	if err == nil && existing != nil {
		return existing, nil
	}
	if err != nil && !kerrors.Is(err, kerrors.NotFound) {
		return nil, err
	}

	board := &types.Board{
		ID:        idgen.New(),
		Name:      cfg.Name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err = s.withBusyRetry(ctx, func() error {
		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return txErr
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()

		if _, txErr = tx.ExecContext(ctx, `
			INSERT INTO boards (id, name, max_board_task_id, created_at, updated_at)
			VALUES (?, ?, 0, ?, ?)
		`, board.ID, board.Name, formatTime(board.CreatedAt), formatTime(board.UpdatedAt)); txErr != nil {
			return txErr
		}

		for _, c := range cfg.Columns {
			if _, txErr = tx.ExecContext(ctx, `
				INSERT INTO columns (id, board_id, name, position, wip_limit, is_terminal)
				VALUES (?, ?, ?, ?, ?, ?)
			`, c.ID, board.ID, c.Name, c.Position, c.WIPLimit, boolToInt(c.IsTerminal)); txErr != nil {
				return txErr
			}
		}

		if txErr = tx.Commit(); txErr != nil {
			return txErr
		}
		committed = true
		return nil
	})
	if err != nil {
		return nil, wrapDBError("initialize board", err)
	}
	return board, nil
}

// GetBoard returns the single project board, or a NotFound error if
// InitializeBoard has never been called.
func (s *Store) GetBoard(ctx context.Context) (*types.Board, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, max_board_task_id, created_at, updated_at FROM boards LIMIT 1
	`)
	var b types.Board
	var createdAt, updatedAt string
	err := row.Scan(&b.ID, &b.Name, &b.MaxBoardTaskID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kerrors.New(kerrors.NotFound, "board not initialized")
	}
	if err != nil {
		return nil, wrapDBError("get board", err)
	}
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return &b, nil
}

// GetColumns returns boardID's columns ordered by position.
func (s *Store) GetColumns(ctx context.Context, boardID string) ([]types.Column, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, board_id, name, position, wip_limit, is_terminal
		FROM columns WHERE board_id = ? ORDER BY position
	`, boardID)
	if err != nil {
		return nil, wrapDBError("list columns", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.Column
	for rows.Next() {
		var c types.Column
		var isTerminal int
		if err := rows.Scan(&c.ID, &c.BoardID, &c.Name, &c.Position, &c.WIPLimit, &isTerminal); err != nil {
			return nil, wrapDBError("scan column", err)
		}
		c.IsTerminal = isTerminal != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetColumn resolves a column by id or by case-insensitive name.
func (s *Store) GetColumn(ctx context.Context, boardID, idOrName string) (*types.Column, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, board_id, name, position, wip_limit, is_terminal
		FROM columns
		WHERE board_id = ? AND (id = ? OR lower(name) = lower(?))
		LIMIT 1
	`, boardID, idOrName, idOrName)

	var c types.Column
	var isTerminal int
	err := row.Scan(&c.ID, &c.BoardID, &c.Name, &c.Position, &c.WIPLimit, &isTerminal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kerrors.Newf(kerrors.NotFound, "column %q not found", idOrName)
	}
	if err != nil {
		return nil, wrapDBError("get column", err)
	}
	c.IsTerminal = isTerminal != 0
	return &c, nil
}

// GetTerminalColumn returns the first terminal column on the board, if
// any (used by moveTask's backlog/terminal exception to the block check).
func (s *Store) GetTerminalColumn(ctx context.Context, boardID string) (*types.Column, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, board_id, name, position, wip_limit, is_terminal
		FROM columns WHERE board_id = ? AND is_terminal = 1 ORDER BY position LIMIT 1
	`, boardID)

	var c types.Column
	var isTerminal int
	err := row.Scan(&c.ID, &c.BoardID, &c.Name, &c.Position, &c.WIPLimit, &isTerminal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kerrors.New(kerrors.NotFound, "no terminal column configured")
	}
	if err != nil {
		return nil, wrapDBError("get terminal column", err)
	}
	c.IsTerminal = isTerminal != 0
	return &c, nil
}

// SetScorerForBoard stores the active scorer name (C6) as board config.
func (s *Store) SetScorerForBoard(ctx context.Context, name string) error {
	return s.SetConfig(ctx, "active_scorer", strings.TrimSpace(name))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
