// Package task is the service layer front-ends call to operate on
// tasks: it resolves the flexible id forms described in §4.3, applies
// validation before delegating to storage, and otherwise is a thin
// pass-through to the Store.
package task

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/kabanhq/kaban/internal/idgen"
	"github.com/kabanhq/kaban/internal/kerrors"
	"github.com/kabanhq/kaban/internal/storage"
	"github.com/kabanhq/kaban/internal/types"
	"github.com/kabanhq/kaban/internal/validation"
)

// Service wraps a Store with task-level validation and id resolution.
type Service struct {
	store storage.Store
}

// New returns a Service backed by store.
func New(store storage.Store) *Service {
	return &Service{store: store}
}

// minPrefixLen is the shortest base32 prefix the resolver will attempt
// as a prefix search (§4.3).
const minPrefixLen = 4

// Resolve implements the §4.3 id-resolution algorithm: strip a leading
// '#'; all-digits resolves by board-scoped short id; a 26-char base32
// string is a full global id; a >=4-char base32 string is a prefix
// search (ambiguous on >1 match); anything else is NOT_FOUND.
func (s *Service) Resolve(ctx context.Context, boardID, rawID string) (*types.Task, error) {
	id := strings.TrimPrefix(rawID, "#")

	if id == "" {
		return nil, kerrors.New(kerrors.NotFound, "empty task id")
	}

	if isAllDigits(id) {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, kerrors.Newf(kerrors.NotFound, "invalid short id %q", rawID)
		}
		return s.store.GetTaskByBoardTaskID(ctx, boardID, n)
	}

	if idgen.IsValid(id) {
		return s.store.GetTaskByGlobalID(ctx, id)
	}

	if len(id) >= minPrefixLen && idgen.IsBase32Prefix(id) {
		matches, err := s.store.FindTasksByPrefix(ctx, boardID, strings.ToUpper(id))
		if err != nil {
			return nil, err
		}
		switch len(matches) {
		case 0:
			return nil, kerrors.Newf(kerrors.NotFound, "no task matches prefix %q", rawID)
		case 1:
			return matches[0], nil
		default:
			ids := make([]string, len(matches))
			for i, m := range matches {
				ids[i] = m.ID
			}
			return nil, kerrors.Newf(kerrors.AmbiguousID, "prefix %q matches %d tasks", rawID, len(matches)).
				WithPayload(&kerrors.AmbiguousPayload{Prefix: rawID, Candidates: ids})
		}
	}

	return nil, kerrors.Newf(kerrors.NotFound, "task %q not found", rawID)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Get is an alias for Resolve matching the §4.3 getTask name.
func (s *Service) Get(ctx context.Context, boardID, rawID string) (*types.Task, error) {
	return s.Resolve(ctx, boardID, rawID)
}

// AddTaskParams carries addTask's optional inputs.
type AddTaskParams struct {
	Title       string
	Description string
	ColumnID    string // defaults to "todo" when empty
	AssignedTo  string
	Labels      []string
	Files       []string
	DueDate     string // ISO, compact duration (1d/1w/Nm), or natural language; see §4.8
	DependsOn   []string // task ids this new task is blocked_by
}

func (s *Service) AddTask(ctx context.Context, boardID, actor string, params AddTaskParams) (*types.Task, error) {
	if err := validation.Title(params.Title); err != nil {
		return nil, err
	}
	if err := validation.Description(params.Description); err != nil {
		return nil, err
	}
	if err := validation.Labels(params.Labels); err != nil {
		return nil, err
	}
	if params.AssignedTo != "" {
		if err := validation.AgentName(params.AssignedTo); err != nil {
			return nil, err
		}
	}

	columnID := params.ColumnID
	if columnID == "" {
		columnID = "todo"
	}
	if _, err := s.store.GetColumn(ctx, boardID, columnID); err != nil {
		return nil, err
	}

	var dueDate *time.Time
	if strings.TrimSpace(params.DueDate) != "" {
		parsed, err := validation.ParseDate(params.DueDate, time.Now())
		if err != nil {
			return nil, err
		}
		dueDate = &parsed
	}

	newTask := &types.Task{
		BoardID:     boardID,
		ColumnID:    columnID,
		Title:       params.Title,
		Description: params.Description,
		AssignedTo:  params.AssignedTo,
		Labels:      params.Labels,
		Files:       params.Files,
		DueDate:     dueDate,
	}

	if err := s.store.CreateTask(ctx, newTask, actor); err != nil {
		return nil, err
	}

	// The create and the dependency links aren't one SQL transaction, so a
	// cycle rejection here would otherwise leave an orphaned task behind;
	// compensate by deleting it to keep addTask atomic from the caller's
	// point of view.
	for _, blockerRawID := range params.DependsOn {
		blocker, err := s.Resolve(ctx, boardID, blockerRawID)
		if err != nil {
			_ = s.store.DeleteTask(ctx, newTask.ID, actor)
			return nil, err
		}
		if err := s.store.AddLink(ctx, newTask.ID, blocker.ID, types.LinkBlockedBy, actor); err != nil {
			_ = s.store.DeleteTask(ctx, newTask.ID, actor)
			return nil, err
		}
		newTask.DependsOn = append(newTask.DependsOn, blocker.ID)
	}

	return newTask, nil
}

// ListTasks delegates to the store unchanged (§4.3 listTasks has no
// validation of its own beyond the filter's own types).
func (s *Service) ListTasks(ctx context.Context, boardID string, filter types.TaskFilter) ([]*types.Task, error) {
	return s.store.ListTasks(ctx, boardID, filter)
}

// UpdateTaskParams mirrors types.TaskUpdate but carries DueDate as raw
// text so callers can pass the same ISO/compact/natural-language forms
// addTask accepts; an empty string leaves the due date unchanged, while
// ClearDueDate explicitly sets it to null.
type UpdateTaskParams struct {
	Title         *string
	Description   *string
	AssignedTo    *string
	Labels        *[]string
	Files         *[]string
	BlockedReason *string
	DueDate       string
	ClearDueDate  bool
	ParentID      *string
}

// UpdateTask validates the supplied fields, parses DueDate through the
// §4.8 mini-language, and applies expectedVersion-checked optimistic
// concurrency via the store.
func (s *Service) UpdateTask(ctx context.Context, id string, expectedVersion int64, params UpdateTaskParams, actor string) (*types.Task, error) {
	if params.Title != nil {
		if err := validation.Title(*params.Title); err != nil {
			return nil, err
		}
	}
	if params.Description != nil {
		if err := validation.Description(*params.Description); err != nil {
			return nil, err
		}
	}
	if params.Labels != nil {
		if err := validation.Labels(*params.Labels); err != nil {
			return nil, err
		}
	}
	if params.AssignedTo != nil && *params.AssignedTo != "" {
		if err := validation.AgentName(*params.AssignedTo); err != nil {
			return nil, err
		}
	}

	update := types.TaskUpdate{
		Title:         params.Title,
		Description:   params.Description,
		AssignedTo:    params.AssignedTo,
		Labels:        params.Labels,
		Files:         params.Files,
		BlockedReason: params.BlockedReason,
		ParentID:      params.ParentID,
	}

	switch {
	case params.ClearDueDate:
		var nilTime *time.Time
		update.DueDate = &nilTime
	case strings.TrimSpace(params.DueDate) != "":
		parsed, err := validation.ParseDate(params.DueDate, time.Now())
		if err != nil {
			return nil, err
		}
		pp := &parsed
		update.DueDate = &pp
	}

	return s.store.UpdateTask(ctx, id, expectedVersion, update, actor)
}
