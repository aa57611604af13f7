package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/store"
)

type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService {
	return &UserService{store: s}
}

func (s *UserService) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	if u.UserID == "" || u.Email == "" {
		return nil, fmt.Errorf("%w: userId and email are required", model.ErrValidation)
	}
	if u.TimeZone == "" {
		u.TimeZone = "UTC"
	}
	return s.store.Users().Create(ctx, u)
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().Get(ctx, userID)
}

// EnsureUser mirrors an authenticated identity into the users table on first
// contact so ownership checks always have a row to point at.
func (s *UserService) EnsureUser(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.store.Users().Get(ctx, userID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	return s.store.Users().Create(ctx, &model.User{
		UserID:   userID,
		Email:    userID + "@local.invalid",
		TimeZone: "UTC",
	})
}
