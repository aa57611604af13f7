package services

import (
	"context"
	"fmt"

	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/store"
)

type CollectionService struct {
	store store.Store
}

func NewCollectionService(s store.Store) *CollectionService {
	return &CollectionService{store: s}
}

func (s *CollectionService) CreateCollection(ctx context.Context, userID, name string) (*model.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	return s.store.Collections().Create(ctx, &model.Collection{UserID: userID, Name: name})
}

func (s *CollectionService) GetCollection(ctx context.Context, userID, collectionID string) (*model.Collection, error) {
	col, err := s.store.Collections().GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if col.UserID != userID {
		return nil, model.ErrForbidden
	}
	return col, nil
}

func (s *CollectionService) ListCollections(ctx context.Context, userID string) ([]*model.Collection, error) {
	return s.store.Collections().List(ctx, userID)
}

func (s *CollectionService) RenameCollection(ctx context.Context, userID, collectionID, name string) (*model.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if _, err := s.GetCollection(ctx, userID, collectionID); err != nil {
		return nil, err
	}
	return s.store.Collections().Rename(ctx, collectionID, name)
}

func (s *CollectionService) DeleteCollection(ctx context.Context, userID, collectionID string) error {
	if _, err := s.GetCollection(ctx, userID, collectionID); err != nil {
		return err
	}
	return s.store.Collections().Delete(ctx, collectionID)
}

// RemoveItem deletes one bookmarked item by its id.
func (s *CollectionService) RemoveItem(ctx context.Context, userID, collectionID, itemID string) (*model.Collection, error) {
	if _, err := s.GetCollection(ctx, userID, collectionID); err != nil {
		return nil, err
	}
	return s.store.Collections().RemoveItem(ctx, collectionID, itemID)
}
