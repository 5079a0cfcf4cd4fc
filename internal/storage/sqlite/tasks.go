package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kabanhq/kaban/internal/idgen"
	"github.com/kabanhq/kaban/internal/kerrors"
	"github.com/kabanhq/kaban/internal/types"
)

// CreateTask persists task, allocating its global id (if unset), its
// board-scoped short id, and its position in the destination column, all
// inside one transaction (§4.3). The short id is one past the larger of
// the board's max_board_task_id counter and the highest live short id,
// and the counter is advanced to it, so a deleted task's short id is
// never handed out again. The CREATE audit row is emitted by
// trg_tasks_insert_audit in the same transaction.
func (s *Store) CreateTask(ctx context.Context, task *types.Task, actor string) error {
	if task.ID == "" {
		task.ID = idgen.New()
	}
	now := time.Now()
	task.CreatedAt, task.UpdatedAt = now, now
	task.CreatedBy = actor
	task.UpdatedBy = actor
	if task.Version == 0 {
		task.Version = 1
	}

	return s.withBusyRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()

		var maxShortID sql.NullInt64
		if err := tx.QueryRowContext(ctx, `
			SELECT MAX(n) FROM (
				SELECT MAX(board_task_id) AS n FROM tasks WHERE board_id = ?
				UNION ALL
				SELECT max_board_task_id FROM boards WHERE id = ?
			)`, task.BoardID, task.BoardID,
		).Scan(&maxShortID); err != nil {
			return err
		}
		task.BoardTaskID = maxShortID.Int64 + 1
		if _, err := tx.ExecContext(ctx,
			`UPDATE boards SET max_board_task_id = ? WHERE id = ?`, task.BoardTaskID, task.BoardID,
		); err != nil {
			return err
		}

		var maxPos sql.NullInt64
		if err := tx.QueryRowContext(ctx,
			`SELECT MAX(position) FROM tasks WHERE column_id = ?`, task.ColumnID,
		).Scan(&maxPos); err != nil {
			return err
		}
		if maxPos.Valid {
			task.Position = int(maxPos.Int64) + 1
		} else {
			task.Position = 0
		}

		_, err = tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO tasks (%s)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, strings.TrimSpace(taskColumns)),
			task.ID, task.BoardID, task.BoardTaskID, task.ColumnID, task.Title, task.Description, task.Position,
			task.CreatedBy, nullIfEmpty(task.AssignedTo), nullIfEmpty(task.ParentID), encodeStringSlice(task.Labels), encodeStringSlice(task.Files), task.BlockedReason, task.Version,
			formatTimePtr(task.DueDate), formatTimePtr(task.StartedAt), formatTimePtr(task.CompletedAt), boolToInt(task.Archived), formatTimePtr(task.ArchivedAt), task.UpdatedBy,
			formatTime(task.CreatedAt), formatTime(task.UpdatedAt),
		)
		if err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return nil
	})
}

// GetTaskByGlobalID fetches a task by its full 26-char id.
func (s *Store) GetTaskByGlobalID(ctx context.Context, id string) (*types.Task, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM tasks WHERE id = ?`, taskColumns), id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kerrors.Newf(kerrors.NotFound, "task %s not found", id)
	}
	if err != nil {
		return nil, wrapDBError("get task", err)
	}
	if err := s.attachDependsOn(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTaskByBoardTaskID fetches a task by its per-board short id.
func (s *Store) GetTaskByBoardTaskID(ctx context.Context, boardID string, n int64) (*types.Task, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM tasks WHERE board_id = ? AND board_task_id = ?`, taskColumns),
		boardID, n,
	)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kerrors.Newf(kerrors.NotFound, "task #%d not found", n)
	}
	if err != nil {
		return nil, wrapDBError("get task by short id", err)
	}
	if err := s.attachDependsOn(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// FindTasksByPrefix returns every task whose global id starts with
// prefix. Used by the §4.3 id-resolution algorithm's prefix-search step.
func (s *Store) FindTasksByPrefix(ctx context.Context, boardID, prefix string) ([]*types.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM tasks WHERE board_id = ? AND id LIKE ? ORDER BY id`, taskColumns),
		boardID, prefix+"%",
	)
	if err != nil {
		return nil, wrapDBError("find tasks by prefix", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, wrapDBError("scan task", err)
		}
		if err := s.attachDependsOn(ctx, t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTasks returns tasks matching filter, ordered (columnId, position).
// Archived tasks are excluded unless filter.IncludeArchived is set.
func (s *Store) ListTasks(ctx context.Context, boardID string, filter types.TaskFilter) ([]*types.Task, error) {
	where := []string{"board_id = ?"}
	args := []any{boardID}

	if !filter.IncludeArchived {
		where = append(where, "archived = 0")
	}
	if filter.ColumnID != "" {
		where = append(where, "column_id = ?")
		args = append(args, filter.ColumnID)
	}
	if filter.Agent != "" {
		where = append(where, "assigned_to = ?")
		args = append(args, filter.Agent)
	}

	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY column_id, position`,
		taskColumns, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("list tasks", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, wrapDBError("scan task", err)
		}
		if err := s.attachDependsOn(ctx, t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("list tasks", err)
	}

	if filter.Blocked != nil {
		filtered := out[:0]
		for _, t := range out {
			blocked, err := s.IsBlocked(ctx, t.ID)
			if err != nil {
				return nil, err
			}
			if blocked == *filter.Blocked {
				filtered = append(filtered, t)
			}
		}
		out = filtered
	}

	return out, nil
}

// CountNonArchivedInColumn is the WIP-limit check's primitive: how many
// non-archived tasks currently sit in columnID.
func (s *Store) CountNonArchivedInColumn(ctx context.Context, columnID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE column_id = ? AND archived = 0`, columnID,
	).Scan(&n)
	if err != nil {
		return 0, wrapDBError("count column", err)
	}
	return n, nil
}

// DeleteTask removes a task row. trg_tasks_delete_audit emits the DELETE
// audit row and ON DELETE CASCADE removes any task_links touching it, in
// the same transaction.
func (s *Store) DeleteTask(ctx context.Context, id, actor string) error {
	return s.withBusyRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return kerrors.Newf(kerrors.NotFound, "task %s not found", id)
		}
		return nil
	})
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
