// Package types holds Kaban's core data model: boards, columns, tasks,
// task links, and audit entries. These are plain structs with no
// storage-layer knowledge — the sqlite store maps rows to and from them.
package types

import "time"

// Board is the top-level container of columns and tasks for one project.
// Exactly one is expected per database in v1, but every relationship is
// board-scoped so a second board needs no migration.
type Board struct {
	ID             string
	Name           string
	MaxBoardTaskID int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BoardConfig drives InitializeBoard. Nothing about it is hard-coded in
// the board service — every default (column set, WIP limits, terminal
// column) comes from the caller.
type BoardConfig struct {
	Name    string
	Columns []ColumnConfig
}

// ColumnConfig describes one column to create at board initialisation.
type ColumnConfig struct {
	ID         string
	Name       string
	Position   int
	WIPLimit   int // 0 means unlimited
	IsTerminal bool
}

// DefaultConfig is the default column layout a caller typically passes to
// InitializeBoard: backlog, todo, in_progress (WIP 3), review (WIP 2),
// done (terminal). It is not applied automatically — callers choose it.
func DefaultConfig(boardName string) BoardConfig {
	return BoardConfig{
		Name: boardName,
		Columns: []ColumnConfig{
			{ID: "backlog", Name: "Backlog", Position: 0},
			{ID: "todo", Name: "To Do", Position: 1},
			{ID: "in_progress", Name: "In Progress", Position: 2, WIPLimit: 3},
			{ID: "review", Name: "Review", Position: 3, WIPLimit: 2},
			{ID: "done", Name: "Done", Position: 4, IsTerminal: true},
		},
	}
}
