// Package board is the service layer for the board/column surface
// (§4.2): a thin pass-through over the Store, kept as its own package
// so the public facade and the CLI/TUI/MCP front-ends depend on a
// stable service boundary instead of internal/storage directly.
package board

import (
	"context"

	"github.com/kabanhq/kaban/internal/storage"
	"github.com/kabanhq/kaban/internal/types"
)

// Service wraps a Store with the board/column operations (C2).
type Service struct {
	store storage.Store
}

// New returns a Service backed by store.
func New(store storage.Store) *Service {
	return &Service{store: store}
}

// InitializeBoard creates the board and its columns from cfg. Idempotent:
// if a board already exists it is returned unchanged.
func (s *Service) InitializeBoard(ctx context.Context, cfg types.BoardConfig) (*types.Board, error) {
	return s.store.InitializeBoard(ctx, cfg)
}

// GetBoard returns the single project board.
func (s *Service) GetBoard(ctx context.Context) (*types.Board, error) {
	return s.store.GetBoard(ctx)
}

// GetColumns returns boardID's columns ordered by position.
func (s *Service) GetColumns(ctx context.Context, boardID string) ([]types.Column, error) {
	return s.store.GetColumns(ctx, boardID)
}

// GetColumn resolves a column by id or case-insensitive name.
func (s *Service) GetColumn(ctx context.Context, boardID, idOrName string) (*types.Column, error) {
	return s.store.GetColumn(ctx, boardID, idOrName)
}

// GetTerminalColumn returns the board's terminal column, if configured.
func (s *Service) GetTerminalColumn(ctx context.Context, boardID string) (*types.Column, error) {
	return s.store.GetTerminalColumn(ctx, boardID)
}

// SetScorerForBoard records name as the active C6 scorer for the board.
func (s *Service) SetScorerForBoard(ctx context.Context, name string) error {
	return s.store.SetScorerForBoard(ctx, name)
}
