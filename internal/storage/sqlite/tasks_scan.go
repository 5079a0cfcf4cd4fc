package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/kabanhq/kaban/internal/types"
)

const taskColumns = `
	id, board_id, board_task_id, column_id, title, description, position,
	created_by, assigned_to, parent_id, labels, files, blocked_reason, version,
	due_date, started_at, completed_at, archived, archived_at, updated_by,
	created_at, updated_at
`

// taskRow is satisfied by both *sql.Row and *sql.Rows.
type taskRow interface {
	Scan(dest ...any) error
}

func scanTask(row taskRow) (*types.Task, error) {
	var t types.Task
	var description, createdBy, assignedTo, parentID, blockedReason, updatedBy sql.NullString
	var labelsJSON, filesJSON string
	var dueDate, startedAt, completedAt, archivedAt sql.NullString
	var archived int
	var createdAt, updatedAt string

	err := row.Scan(
		&t.ID, &t.BoardID, &t.BoardTaskID, &t.ColumnID, &t.Title, &description, &t.Position,
		&createdBy, &assignedTo, &parentID, &labelsJSON, &filesJSON, &blockedReason, &t.Version,
		&dueDate, &startedAt, &completedAt, &archived, &archivedAt, &updatedBy,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Description = description.String
	t.CreatedBy = createdBy.String
	t.AssignedTo = assignedTo.String
	t.ParentID = parentID.String
	t.BlockedReason = blockedReason.String
	t.UpdatedBy = updatedBy.String
	t.Archived = archived != 0
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	t.DueDate = parseTimePtr(dueDate)
	t.StartedAt = parseTimePtr(startedAt)
	t.CompletedAt = parseTimePtr(completedAt)
	t.ArchivedAt = parseTimePtr(archivedAt)

	t.Labels = decodeStringSlice(labelsJSON)
	t.Files = decodeStringSlice(filesJSON)
	return &t, nil
}

// attachDependsOn fills t.DependsOn from the task_links table: it is a
// read-through view over the blocked_by edges, kept only for backwards
// compatibility with callers that still expect the legacy array (§3).
// The link table remains the only thing ever written to.
func (s *Store) attachDependsOn(ctx context.Context, t *types.Task) error {
	set, err := s.GetLinks(ctx, t.ID)
	if err != nil {
		return err
	}
	t.DependsOn = set.BlockedBy
	return nil
}

func decodeStringSlice(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func encodeStringSlice(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
