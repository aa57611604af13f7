package services

import (
	"context"
	"fmt"

	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/store"
)

type NoteService struct {
	store store.Store
}

func NewNoteService(s store.Store) *NoteService {
	return &NoteService{store: s}
}

func (s *NoteService) CreateNote(ctx context.Context, userID, title, content string) (*model.Note, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	return s.store.Notes().Create(ctx, &model.Note{UserID: userID, Title: title, Content: content})
}

func (s *NoteService) GetNote(ctx context.Context, userID, noteID string) (*model.Note, error) {
	n, err := s.store.Notes().GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, model.ErrForbidden
	}
	return n, nil
}

func (s *NoteService) ListNotes(ctx context.Context, userID string) ([]*model.Note, error) {
	return s.store.Notes().List(ctx, userID)
}

// UpdateNote patches title and/or content; nil leaves a field unchanged.
func (s *NoteService) UpdateNote(ctx context.Context, userID, noteID string, title, content *string) (*model.Note, error) {
	if title == nil && content == nil {
		return nil, fmt.Errorf("%w: nothing to update", model.ErrValidation)
	}
	if title != nil && *title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", model.ErrValidation)
	}
	if _, err := s.GetNote(ctx, userID, noteID); err != nil {
		return nil, err
	}
	return s.store.Notes().Update(ctx, noteID, title, content)
}

func (s *NoteService) DeleteNote(ctx context.Context, userID, noteID string) error {
	if _, err := s.GetNote(ctx, userID, noteID); err != nil {
		return err
	}
	return s.store.Notes().Delete(ctx, noteID)
}
