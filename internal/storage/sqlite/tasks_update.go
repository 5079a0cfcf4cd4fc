package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kabanhq/kaban/internal/kerrors"
	"github.com/kabanhq/kaban/internal/types"
)

// UpdateTask writes only the fields set in update, bumping version and
// stamping updatedBy/updatedAt. If expectedVersion is non-zero and does
// not match the row's current version, the update is rejected with
// CONFLICT and nothing is written (optimistic concurrency, §3 invariant
// 7). Per-field UPDATE audits are emitted by triggers in the same
// transaction.
func (s *Store) UpdateTask(ctx context.Context, id string, expectedVersion int64, update types.TaskUpdate, actor string) (*types.Task, error) {
	var result *types.Task

	err := s.withBusyRetry(ctx, func() error {
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

		var currentVersion int64
		err = tx.QueryRowContext(ctx, `SELECT version FROM tasks WHERE id = ?`, id).Scan(&currentVersion)
		if errors.Is(err, sql.ErrNoRows) {
			return kerrors.Newf(kerrors.NotFound, "task %s not found", id)
		}
		if err != nil {
			return err
		}
		if expectedVersion != 0 && expectedVersion != currentVersion {
			return kerrors.Newf(kerrors.Conflict, "task %s was modified concurrently (expected version %d, found %d)", id, expectedVersion, currentVersion)
		}

		sets := []string{"version = version + 1", "updated_at = ?", "updated_by = ?"}
		args := []any{formatTime(time.Now()), actor}

		if update.Title != nil {
			sets = append(sets, "title = ?")
			args = append(args, *update.Title)
		}
		if update.Description != nil {
			sets = append(sets, "description = ?")
			args = append(args, *update.Description)
		}
		if update.AssignedTo != nil {
			sets = append(sets, "assigned_to = ?")
			args = append(args, nullIfEmpty(*update.AssignedTo))
		}
		if update.Labels != nil {
			sets = append(sets, "labels = ?")
			args = append(args, encodeStringSlice(*update.Labels))
		}
		if update.Files != nil {
			sets = append(sets, "files = ?")
			args = append(args, encodeStringSlice(*update.Files))
		}
		if update.BlockedReason != nil {
			sets = append(sets, "blocked_reason = ?")
			args = append(args, *update.BlockedReason)
		}
		if update.DueDate != nil {
			sets = append(sets, "due_date = ?")
			args = append(args, formatTimePtr(*update.DueDate))
		}
		if update.ParentID != nil {
			sets = append(sets, "parent_id = ?")
			args = append(args, nullIfEmpty(*update.ParentID))
		}

		args = append(args, id)
		query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = ?`, strings.Join(sets, ", "))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM tasks WHERE id = ?`, taskColumns), id)
		t, err := scanTask(row)
		if err != nil {
			return err
		}
		result = t

		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return nil
	})
	if err != nil {
		var ke *kerrors.Error
		if errors.As(err, &ke) {
			return nil, err
		}
		return nil, wrapDBError("update task", err)
	}
	if err := s.attachDependsOn(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}
