// Package kaban is the public API surface for embedding the kanban
// engine: open a database, operate on boards/tasks/links through the
// service layer, and re-export the core domain types so callers don't
// need to reach into internal/.
//
// Front-ends (CLI, TUI, MCP server) live outside this module; they are
// expected to call only these exported names.
package kaban

import (
	"context"

	"github.com/kabanhq/kaban/internal/board"
	"github.com/kabanhq/kaban/internal/kerrors"
	"github.com/kabanhq/kaban/internal/markdown"
	"github.com/kabanhq/kaban/internal/scoring"
	"github.com/kabanhq/kaban/internal/storage"
	"github.com/kabanhq/kaban/internal/storage/factory"
	_ "github.com/kabanhq/kaban/internal/storage/sqlite" // registers the "sqlite" backend
	"github.com/kabanhq/kaban/internal/task"
	"github.com/kabanhq/kaban/internal/types"
)

// Core domain types, re-exported so callers never import internal/types.
type (
	Board         = types.Board
	BoardConfig   = types.BoardConfig
	ColumnConfig  = types.ColumnConfig
	Column        = types.Column
	Task          = types.Task
	TaskFilter    = types.TaskFilter
	TaskUpdate    = types.TaskUpdate
	TaskLink      = types.TaskLink
	LinkType      = types.LinkType
	LinkSet       = types.LinkSet
	AuditEntry    = types.AuditEntry
	HistoryFilter = types.HistoryFilter
	HistoryPage   = types.HistoryPage
	Stats         = types.Stats
)

// Link type constants.
const (
	LinkBlocks    = types.LinkBlocks
	LinkBlockedBy = types.LinkBlockedBy
	LinkRelated   = types.LinkRelated
)

// Error taxonomy, re-exported for callers that branch on error kind.
type (
	ErrorKind = kerrors.Kind
	Error     = kerrors.Error
)

const (
	ErrGeneral     = kerrors.General
	ErrNotFound    = kerrors.NotFound
	ErrConflict    = kerrors.Conflict
	ErrValidation  = kerrors.Validation
	ErrBlocked     = kerrors.Blocked
	ErrCycle       = kerrors.Cycle
	ErrDuplicate   = kerrors.Duplicate
	ErrAmbiguousID = kerrors.AmbiguousID
	ErrIO          = kerrors.IO
)

// IsErrorKind reports whether err carries the given ErrorKind.
func IsErrorKind(err error, kind ErrorKind) bool { return kerrors.Is(err, kind) }

// Store is the full storage contract; most callers should use Board
// and Task instead of driving it directly.
type Store = storage.Store

// Open opens (creating if needed) a Kaban database at path using the
// backend named by KABAN_DB_DRIVER (default "sqlite").
func Open(ctx context.Context, path string) (Store, error) {
	return factory.New(ctx, path)
}

// DefaultBoardConfig returns the standard backlog/todo/in_progress
// (WIP 3)/review (WIP 2)/done(terminal) column layout.
func DefaultBoardConfig(name string) BoardConfig {
	return types.DefaultConfig(name)
}

// BoardService wraps a Store with the board/column service surface (C2).
type BoardService = board.Service

// NewBoardService returns a BoardService backed by store.
func NewBoardService(store Store) *BoardService { return board.New(store) }

// TaskService wraps a Store with id resolution and validation (C3).
type TaskService = task.Service

// NewTaskService returns a TaskService backed by store.
func NewTaskService(store Store) *TaskService { return task.New(store) }

// AddTaskParams mirrors task.AddTaskParams for callers that don't want
// to import internal/task directly.
type AddTaskParams = task.AddTaskParams

// UpdateTaskParams mirrors task.UpdateTaskParams.
type UpdateTaskParams = task.UpdateTaskParams

// Scorer and ScoringService re-exports (C6).
type (
	Scorer         = scoring.Scorer
	ScoredTask     = scoring.Scored
	ScoringService = scoring.Service
)

// NewScoringService returns an empty scoring service; add built-ins
// with AddScorer(scoring.FIFO{}) etc.
func NewScoringService() *ScoringService { return scoring.NewService() }

// Built-in scorers (C6).
type (
	FIFOScorer     = scoring.FIFO
	PriorityScorer = scoring.Priority
	DueDateScorer  = scoring.DueDate
	BlockingScorer = scoring.Blocking
	CombinedScorer = scoring.Combined
)

// Markdown codec re-exports (C7).
type (
	MarkdownBoardView    = markdown.BoardView
	MarkdownColumnView   = markdown.ColumnView
	MarkdownExportOpts   = markdown.ExportOptions
	MarkdownParseResult  = markdown.ParseResult
	MarkdownParsedColumn = markdown.ParsedColumn
	MarkdownParsedTask   = markdown.ParsedTask
)

// ExportMarkdown serialises a board view to Taskell-compatible Markdown.
func ExportMarkdown(board MarkdownBoardView, opts MarkdownExportOpts) string {
	return markdown.Export(board, opts)
}

// ParseMarkdown parses a Taskell-compatible Markdown document.
func ParseMarkdown(doc string) MarkdownParseResult {
	return markdown.Parse(doc)
}
