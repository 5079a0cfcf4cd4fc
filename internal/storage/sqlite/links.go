package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/kabanhq/kaban/internal/deps"
	"github.com/kabanhq/kaban/internal/kerrors"
	"github.com/kabanhq/kaban/internal/types"
)

// AddLink creates a directed edge between two tasks. blocks and
// blocked_by are maintained as a mirror pair (inserting one inserts the
// reverse of the other); related is inserted in both directions so
// either endpoint sees it symmetrically (§4.4).
//
// Whichever direction the caller names, the cycle check always runs
// against the candidate blocked_by(A,B) edge: it loads the board's
// current blocked_by graph inside the same transaction as the insert,
// so no concurrent writer can slip a second edge past the check.
func (s *Store) AddLink(ctx context.Context, fromTaskID, toTaskID string, linkType types.LinkType, actor string) error {
	if !linkType.Valid() {
		return kerrors.Newf(kerrors.Validation, "invalid link type %q", linkType)
	}
	if fromTaskID == toTaskID {
		return kerrors.New(kerrors.Cycle, "a task cannot depend on itself").
			WithPayload(&kerrors.CyclePayload{Path: []string{fromTaskID, toTaskID}})
	}

	// blockedA, blockedB is the pair the cycle check must evaluate
	// regardless of which direction the caller expressed the edge in.
	blockedA, blockedB := fromTaskID, toTaskID
	if linkType == types.LinkBlocks {
		blockedA, blockedB = toTaskID, fromTaskID
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

		if linkType == types.LinkBlocks || linkType == types.LinkBlockedBy {
			graph, err := loadBlockedByGraphTx(ctx, tx)
			if err != nil {
				return err
			}
			if cyclic, path := deps.WouldCreateCycle(graph, blockedA, blockedB); cyclic {
				return kerrors.Newf(kerrors.Cycle, "adding this link would create a cycle: %s", deps.FormatCycle(path)).
					WithPayload(&kerrors.CyclePayload{Path: path})
			}
		}

		now := formatTime(time.Now())
		insert := func(from, to string, lt types.LinkType) (int64, error) {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO task_links (from_task_id, to_task_id, link_type, created_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(from_task_id, to_task_id, link_type) DO NOTHING
			`, from, to, string(lt), now)
			if err != nil {
				return 0, err
			}
			return res.RowsAffected()
		}

		// The edge exactly as the caller named it is the primary edge; a
		// conflict on it is a real duplicate (§4.3 DUPLICATE). The mirror
		// insert's own conflict is expected and silently ignored (§4.4).
		var mirrorFrom, mirrorTo string
		var mirrorType types.LinkType
		switch linkType {
		case types.LinkBlocks:
			mirrorFrom, mirrorTo, mirrorType = toTaskID, fromTaskID, types.LinkBlockedBy
		case types.LinkBlockedBy:
			mirrorFrom, mirrorTo, mirrorType = toTaskID, fromTaskID, types.LinkBlocks
		case types.LinkRelated:
			mirrorFrom, mirrorTo, mirrorType = toTaskID, fromTaskID, types.LinkRelated
		}

		n, err := insert(fromTaskID, toTaskID, linkType)
		if err != nil {
			return err
		}
		if n == 0 {
			return kerrors.Newf(kerrors.Duplicate, "link %s(%s, %s) already exists", linkType, fromTaskID, toTaskID)
		}
		if _, err := insert(mirrorFrom, mirrorTo, mirrorType); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return nil
	})
}

// RemoveLink deletes the directed edge and its mirror, if present. A
// miss is not an error: removing a link that doesn't exist is a no-op
// (§4.4).
func (s *Store) RemoveLink(ctx context.Context, fromTaskID, toTaskID string, linkType types.LinkType, actor string) error {
	var mirrorType types.LinkType
	switch linkType {
	case types.LinkBlocks:
		mirrorType = types.LinkBlockedBy
	case types.LinkBlockedBy:
		mirrorType = types.LinkBlocks
	case types.LinkRelated:
		mirrorType = types.LinkRelated
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

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM task_links WHERE from_task_id = ? AND to_task_id = ? AND link_type = ?
		`, fromTaskID, toTaskID, string(linkType)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM task_links WHERE from_task_id = ? AND to_task_id = ? AND link_type = ?
		`, toTaskID, fromTaskID, string(mirrorType)); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return nil
	})
}

// GetLinks returns every edge touching taskID, grouped by direction and
// type (§4.4).
func (s *Store) GetLinks(ctx context.Context, taskID string) (types.LinkSet, error) {
	var set types.LinkSet

	rows, err := s.db.QueryContext(ctx, `
		SELECT to_task_id, link_type FROM task_links WHERE from_task_id = ?
	`, taskID)
	if err != nil {
		return set, wrapDBError("get links", err)
	}
	for rows.Next() {
		var to, lt string
		if err := rows.Scan(&to, &lt); err != nil {
			_ = rows.Close()
			return set, wrapDBError("scan link", err)
		}
		switch types.LinkType(lt) {
		case types.LinkBlocks:
			set.Blocks = append(set.Blocks, to)
		case types.LinkBlockedBy:
			set.BlockedBy = append(set.BlockedBy, to)
		case types.LinkRelated:
			set.Related = append(set.Related, to)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return set, wrapDBError("get links", err)
	}
	_ = rows.Close()

	// related is stored in both directions by AddLink (§4.4), so the
	// from_task_id query above already returns every related neighbour
	// exactly once; querying to_task_id too would double-count them.
	return set, nil
}

// GetBlockers returns the tasks that currently block taskID: every
// to_task_id of a blocked_by edge from taskID that is neither completed
// nor archived (§4.4).
func (s *Store) GetBlockers(ctx context.Context, taskID string) ([]*types.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE archived = 0 AND completed_at IS NULL
		  AND id IN (SELECT to_task_id FROM task_links WHERE from_task_id = ? AND link_type = ?)
	`, taskID, string(types.LinkBlockedBy))
	if err != nil {
		return nil, wrapDBError("get blockers", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, wrapDBError("scan blocker", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// IsBlocked reports whether taskID has at least one unresolved blocker.
func (s *Store) IsBlocked(ctx context.Context, taskID string) (bool, error) {
	blockers, err := s.GetBlockers(ctx, taskID)
	if err != nil {
		return false, err
	}
	return len(blockers) > 0, nil
}

// BlockingCount returns how many other tasks taskID itself blocks
// (used by the "blocking" scorer, §4.6).
func (s *Store) BlockingCount(ctx context.Context, taskID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM task_links WHERE to_task_id = ? AND link_type = ?
	`, taskID, string(types.LinkBlockedBy)).Scan(&n)
	if err != nil {
		return 0, wrapDBError("blocking count", err)
	}
	return n, nil
}

// LoadBlockedByGraph returns the whole board's blocked_by adjacency
// (taskID -> its direct blockers) for graph queries outside a write
// transaction. AddLink's cycle check uses loadBlockedByGraphTx instead.
func (s *Store) LoadBlockedByGraph(ctx context.Context, boardID string) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.from_task_id, l.to_task_id
		FROM task_links l
		JOIN tasks t ON t.id = l.from_task_id
		WHERE t.board_id = ? AND l.link_type = ?
	`, boardID, string(types.LinkBlockedBy))
	if err != nil {
		return nil, wrapDBError("load blocked-by graph", err)
	}
	defer func() { _ = rows.Close() }()

	graph := make(map[string][]string)
	for rows.Next() {
		var from, to string
		if err := rows.Scan(&from, &to); err != nil {
			return nil, wrapDBError("scan graph edge", err)
		}
		graph[from] = append(graph[from], to)
	}
	return graph, rows.Err()
}

// loadBlockedByGraphTx is LoadBlockedByGraph's transaction-scoped twin,
// used inside AddLink so the cycle check sees the same snapshot the
// insert will land in.
func loadBlockedByGraphTx(ctx context.Context, tx *sql.Tx) (map[string][]string, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT from_task_id, to_task_id FROM task_links WHERE link_type = ?
	`, string(types.LinkBlockedBy))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	graph := make(map[string][]string)
	for rows.Next() {
		var from, to string
		if err := rows.Scan(&from, &to); err != nil {
			return nil, err
		}
		graph[from] = append(graph[from], to)
	}
	return graph, rows.Err()
}
