package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kabanhq/kaban/internal/kerrors"
	"github.com/kabanhq/kaban/internal/types"
	"github.com/kabanhq/kaban/internal/validation"
)

// backlogColumnID and inProgressColumnID name the two columns moveTask
// treats specially: blockers never prevent a move into backlog, and
// entering in_progress for the first time stamps startedAt (§4.3).
const (
	backlogColumnID    = "backlog"
	inProgressColumnID = "in_progress"
)

// MoveTask moves a task into targetColumnID, enforcing the target's WIP
// limit (unless force) and refusing the move if the task has unresolved
// blockers and the target is neither backlog nor terminal (§4.4). On
// success it stamps startedAt on first entry to in_progress and
// completedAt on first entry to a terminal column, all inside one
// transaction.
func (s *Store) MoveTask(ctx context.Context, id, targetColumnID string, force bool, actor string) (*types.Task, error) {
	task, err := s.GetTaskByGlobalID(ctx, id)
	if err != nil {
		return nil, err
	}

	target, err := s.GetColumn(ctx, task.BoardID, targetColumnID)
	if err != nil {
		return nil, kerrors.Newf(kerrors.Validation, "unknown column %q", targetColumnID)
	}

	if target.ID != backlogColumnID && !target.IsTerminal {
		blocked, err := s.IsBlocked(ctx, id)
		if err != nil {
			return nil, err
		}
		if blocked {
			blockers, err := s.GetBlockers(ctx, id)
			if err != nil {
				return nil, err
			}
			ids := make([]string, len(blockers))
			for i, b := range blockers {
				ids[i] = b.ID
			}
			return nil, kerrors.New(kerrors.Blocked, "task has unresolved blockers").WithPayload(&kerrors.BlockedPayload{BlockerIDs: ids})
		}
	}

	if !force && target.HasWIPLimit() {
		count, err := s.CountNonArchivedInColumn(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		if count >= target.WIPLimit {
			return nil, kerrors.Newf(kerrors.Validation, "Column '%s' at WIP limit (%d/%d)", target.Name, count, target.WIPLimit).
				WithPayload(&kerrors.WIPPayload{ColumnID: target.ID, Limit: target.WIPLimit, Current: count})
		}
	}

	now := time.Now()
	var result *types.Task
	err = s.withBusyRetry(ctx, func() error {
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

		var maxPos sql.NullInt64
		if err := tx.QueryRowContext(ctx, `SELECT MAX(position) FROM tasks WHERE column_id = ?`, target.ID).Scan(&maxPos); err != nil {
			return err
		}
		newPosition := 0
		if maxPos.Valid {
			newPosition = int(maxPos.Int64) + 1
		}

		startedAt := task.StartedAt
		if target.ID == inProgressColumnID && startedAt == nil {
			startedAt = &now
		}

		completedAt := task.CompletedAt
		if target.IsTerminal && completedAt == nil {
			completedAt = &now
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE tasks
			SET column_id = ?, position = ?, started_at = ?, completed_at = ?,
			    version = version + 1, updated_by = ?, updated_at = ?
			WHERE id = ?
		`, target.ID, newPosition, formatTimePtr(startedAt), formatTimePtr(completedAt), actor, formatTime(now), id)
		if err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
		t, err := scanTask(row)
		if errors.Is(err, sql.ErrNoRows) {
			return kerrors.Newf(kerrors.NotFound, "task %s not found", id)
		}
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
		return nil, wrapDBError("move task", err)
	}
	if err := s.attachDependsOn(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ArchiveTask soft-deletes a task: archived=true, archivedAt stamped.
// Archived tasks drop out of default listTasks results (§4.3).
func (s *Store) ArchiveTask(ctx context.Context, id, actor string) (*types.Task, error) {
	return s.setArchived(ctx, id, true, actor)
}

// RestoreTask reverses ArchiveTask.
func (s *Store) RestoreTask(ctx context.Context, id, actor string) (*types.Task, error) {
	return s.setArchived(ctx, id, false, actor)
}

func (s *Store) setArchived(ctx context.Context, id string, archived bool, actor string) (*types.Task, error) {
	now := time.Now()
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

		var archivedAt any
		if archived {
			archivedAt = formatTime(now)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE tasks SET archived = ?, archived_at = ?, version = version + 1, updated_by = ?, updated_at = ?
			WHERE id = ?
		`, boolToInt(archived), archivedAt, actor, formatTime(now), id)
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

		row := tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
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
		return nil, wrapDBError("set archived", err)
	}
	if err := s.attachDependsOn(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssignTask validates and sets the task's assignee, recording the
// previous assignee via the UPDATE audit trigger.
func (s *Store) AssignTask(ctx context.Context, id, agent, actor string) (*types.Task, error) {
	if err := validation.AgentName(agent); err != nil {
		return nil, err
	}
	agentVal := agent
	update := types.TaskUpdate{AssignedTo: &agentVal}
	return s.UpdateTask(ctx, id, 0, update, actor)
}

// UnassignTask clears the task's assignee.
func (s *Store) UnassignTask(ctx context.Context, id, actor string) (*types.Task, error) {
	empty := ""
	update := types.TaskUpdate{AssignedTo: &empty}
	return s.UpdateTask(ctx, id, 0, update, actor)
}
