// Package storage defines Store, the contract every Kaban backend must
// satisfy. The registry used to pick a backend by name (KABAN_DB_DRIVER,
// §6) lives in the factory subpackage, and the canonical implementation
// in the sqlite subpackage; the registry exists so a second backend can
// be wired in later without touching the service layer.
package storage

import (
	"context"

	"github.com/kabanhq/kaban/internal/types"
)

// Store is the typed query surface every front-end (CLI, TUI, MCP) and
// every service package (board, task) is built on. Every
// method runs in an implicit transaction; methods documented as
// multi-step are atomic end to end (§4.1).
type Store interface {
	Close() error

	// Config is a flat key/value table used for board-level settings
	// such as the active scorer name.
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error

	// Board / column surface (C2).
	InitializeBoard(ctx context.Context, cfg types.BoardConfig) (*types.Board, error)
	GetBoard(ctx context.Context) (*types.Board, error)
	GetColumns(ctx context.Context, boardID string) ([]types.Column, error)
	GetColumn(ctx context.Context, boardID, idOrName string) (*types.Column, error)
	GetTerminalColumn(ctx context.Context, boardID string) (*types.Column, error)
	SetScorerForBoard(ctx context.Context, name string) error

	// Task surface (C3).
	CreateTask(ctx context.Context, task *types.Task, actor string) error
	GetTaskByGlobalID(ctx context.Context, id string) (*types.Task, error)
	GetTaskByBoardTaskID(ctx context.Context, boardID string, n int64) (*types.Task, error)
	FindTasksByPrefix(ctx context.Context, boardID, prefix string) ([]*types.Task, error)
	ListTasks(ctx context.Context, boardID string, filter types.TaskFilter) ([]*types.Task, error)
	UpdateTask(ctx context.Context, id string, expectedVersion int64, update types.TaskUpdate, actor string) (*types.Task, error)
	MoveTask(ctx context.Context, id, targetColumnID string, force bool, actor string) (*types.Task, error)
	ArchiveTask(ctx context.Context, id, actor string) (*types.Task, error)
	RestoreTask(ctx context.Context, id, actor string) (*types.Task, error)
	DeleteTask(ctx context.Context, id, actor string) error
	AssignTask(ctx context.Context, id, agent, actor string) (*types.Task, error)
	UnassignTask(ctx context.Context, id, actor string) (*types.Task, error)
	CountNonArchivedInColumn(ctx context.Context, columnID string) (int, error)

	// Dependency graph surface (C4).
	AddLink(ctx context.Context, fromTaskID, toTaskID string, linkType types.LinkType, actor string) error
	RemoveLink(ctx context.Context, fromTaskID, toTaskID string, linkType types.LinkType, actor string) error
	GetLinks(ctx context.Context, taskID string) (types.LinkSet, error)
	GetBlockers(ctx context.Context, taskID string) ([]*types.Task, error)
	IsBlocked(ctx context.Context, taskID string) (bool, error)
	BlockingCount(ctx context.Context, taskID string) (int, error)
	LoadBlockedByGraph(ctx context.Context, boardID string) (map[string][]string, error)

	// Audit surface (C5).
	GetHistory(ctx context.Context, filter types.HistoryFilter) (types.HistoryPage, error)
	GetStats(ctx context.Context) (types.Stats, error)
}
