package types

import "time"

// Task is a unit of work with a sortable global id, a per-board short id
// never reused, a position within its column, and membership in the
// dependency link graph.
type Task struct {
	ID          string // 26-char sortable global id
	BoardID     string
	BoardTaskID int64 // unique within board, never reused

	ColumnID    string
	Title       string
	Description string
	Position    int

	CreatedBy  string
	AssignedTo string
	ParentID   string

	Labels []string
	Files  []string

	BlockedReason string

	Version int64

	DueDate     *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time

	Archived   bool
	ArchivedAt *time.Time

	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time

	// DependsOn is a read-through, backwards-compatible view of the
	// blocked_by edges in the link table. Never written directly — see
	// DESIGN.md's note on the dependsOn-vs-task_links open question.
	DependsOn []string
}

// IsDone reports whether CompletedAt has been stamped, which happens on
// the first move into a terminal column; moving out again does not
// clear it.
func (t Task) IsDone() bool {
	return t.CompletedAt != nil
}

// TaskFilter narrows listTasks. Zero value lists every non-archived task
// across all columns.
type TaskFilter struct {
	ColumnID        string
	Agent           string
	Blocked         *bool
	IncludeArchived bool
}

// TaskUpdate carries the subset of fields updateTask should change. A nil
// pointer field means "leave unchanged"; fields with pointer-to-pointer
// semantics (DueDate) use a double pointer so "set to null" is
// distinguishable from "leave unchanged".
type TaskUpdate struct {
	Title         *string
	Description   *string
	AssignedTo    *string
	Labels        *[]string
	Files         *[]string
	BlockedReason *string
	DueDate       **time.Time
	ParentID      *string
}
