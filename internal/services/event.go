package services

import (
	"context"
	"fmt"

	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/store"
)

type EventService struct {
	store store.Store
}

func NewEventService(s store.Store) *EventService {
	return &EventService{store: s}
}

func (s *EventService) CreateEvent(ctx context.Context, e *model.CalendarEvent) (*model.CalendarEvent, error) {
	if e.Title == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	if e.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: startTime is required", model.ErrValidation)
	}
	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		return nil, fmt.Errorf("%w: endTime precedes startTime", model.ErrValidation)
	}
	return s.store.Events().Create(ctx, e)
}

func (s *EventService) GetEvent(ctx context.Context, userID, eventID string) (*model.CalendarEvent, error) {
	e, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID {
		return nil, model.ErrForbidden
	}
	return e, nil
}

func (s *EventService) ListEvents(ctx context.Context, userID string) ([]*model.CalendarEvent, error) {
	return s.store.Events().List(ctx, userID)
}

func (s *EventService) UpdateEvent(ctx context.Context, userID string, e *model.CalendarEvent) (*model.CalendarEvent, error) {
	existing, err := s.GetEvent(ctx, userID, e.EventID)
	if err != nil {
		return nil, err
	}
	if e.Title == "" {
		e.Title = existing.Title
	}
	if e.StartTime.IsZero() {
		e.StartTime = existing.StartTime
	}
	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		return nil, fmt.Errorf("%w: endTime precedes startTime", model.ErrValidation)
	}
	e.UserID = userID
	return s.store.Events().Update(ctx, e)
}

func (s *EventService) DeleteEvent(ctx context.Context, userID, eventID string) error {
	if _, err := s.GetEvent(ctx, userID, eventID); err != nil {
		return err
	}
	return s.store.Events().Delete(ctx, eventID)
}
