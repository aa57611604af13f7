package services

import (
	"context"
	"fmt"

	"github.com/curiohq/curio/server/internal/bookmark"
	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/store"
	"github.com/curiohq/curio/server/internal/workflows"
)

// CreateWorkflowRequest describes a research run to start.
type CreateWorkflowRequest struct {
	Title        string   `json:"title"`
	Description  *string  `json:"description,omitempty"`
	Query        string   `json:"query"`
	Sources      []string `json:"sources"`
	Depth        string   `json:"depth"`
	OutputFormat string   `json:"outputFormat"`
}

type WorkflowService struct {
	store  store.Store
	runner *workflows.Runner
}

func NewWorkflowService(s store.Store, runner *workflows.Runner) *WorkflowService {
	return &WorkflowService{store: s, runner: runner}
}

var validDepths = map[string]bool{"quick": true, "standard": true, "deep": true}
var validFormats = map[string]bool{"markdown": true, "text": true}

// StartWorkflow validates the request, persists the workflow in pending
// state, and kicks off the background run.
func (s *WorkflowService) StartWorkflow(ctx context.Context, userID string, req *CreateWorkflowRequest) (*model.Workflow, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("%w: query is required", model.ErrValidation)
	}
	if len(req.Sources) == 0 {
		return nil, fmt.Errorf("%w: at least one source is required", model.ErrValidation)
	}
	for _, src := range req.Sources {
		switch src {
		case bookmark.SearchTypeWeb, bookmark.SearchTypePexels, bookmark.SearchTypeGitHub:
		default:
			return nil, fmt.Errorf("%w: unknown source %q", model.ErrValidation, src)
		}
	}
	depth := req.Depth
	if depth == "" {
		depth = "standard"
	}
	if !validDepths[depth] {
		return nil, fmt.Errorf("%w: unknown depth %q", model.ErrValidation, depth)
	}
	format := req.OutputFormat
	if format == "" {
		format = "markdown"
	}
	if !validFormats[format] {
		return nil, fmt.Errorf("%w: unknown output format %q", model.ErrValidation, format)
	}
	title := req.Title
	if title == "" {
		title = req.Query
	}

	wf, err := s.store.Workflows().Create(ctx, &model.Workflow{
		UserID:       userID,
		Title:        title,
		Description:  req.Description,
		Query:        req.Query,
		TotalSteps:   workflows.TotalSteps,
		Sources:      req.Sources,
		Depth:        depth,
		OutputFormat: format,
	})
	if err != nil {
		return nil, err
	}

	s.runner.Start(wf)
	return wf, nil
}

func (s *WorkflowService) GetWorkflow(ctx context.Context, userID, workflowID string) (*model.Workflow, error) {
	wf, err := s.store.Workflows().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if wf.UserID != userID {
		return nil, model.ErrForbidden
	}
	return wf, nil
}

func (s *WorkflowService) ListWorkflows(ctx context.Context, userID string) ([]*model.Workflow, error) {
	return s.store.Workflows().List(ctx, userID)
}

// CancelWorkflow stops a pending or running workflow. The status transition
// is recorded here; the runner only tears down the goroutine.
func (s *WorkflowService) CancelWorkflow(ctx context.Context, userID, workflowID string) error {
	wf, err := s.GetWorkflow(ctx, userID, workflowID)
	if err != nil {
		return err
	}
	if wf.Status != model.WorkflowRunning && wf.Status != model.WorkflowPending {
		return fmt.Errorf("%w: cannot cancel workflow with status %s", model.ErrValidation, wf.Status)
	}

	msg := "Cancelled by user"
	step := wf.CurrentStep
	if err := s.store.Workflows().SetStatus(ctx, workflowID, model.WorkflowFailed, &msg, &step); err != nil {
		return err
	}
	s.runner.Cancel(workflowID)
	return nil
}

func (s *WorkflowService) DeleteWorkflow(ctx context.Context, userID, workflowID string) error {
	if _, err := s.GetWorkflow(ctx, userID, workflowID); err != nil {
		return err
	}
	s.runner.Cancel(workflowID)
	return s.store.Workflows().Delete(ctx, workflowID)
}
