package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/search"
	"github.com/curiohq/curio/server/internal/store"
)

// SessionService runs searches and records their results as immutable
// sessions, which later anchor bookmark resolution.
type SessionService struct {
	store    store.Store
	registry *search.Registry
	limit    int
}

func NewSessionService(s store.Store, registry *search.Registry, searchLimit int) *SessionService {
	return &SessionService{store: s, registry: registry, limit: searchLimit}
}

// Search performs a live search and snapshots the ordered results under the
// exact (user, query, source) triple.
func (s *SessionService) Search(ctx context.Context, userID, query, source string) (*model.SearchSession, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", model.ErrValidation)
	}
	provider, err := s.registry.Provider(source)
	if err != nil {
		return nil, err
	}
	results, err := provider.Search(ctx, query, s.limit)
	if err != nil {
		return nil, err
	}
	return s.store.Sessions().Create(ctx, &model.SearchSession{
		UserID:  userID,
		Query:   query,
		Source:  source,
		Results: results,
	})
}

// Record stores externally produced search results as a session. Used when a
// client ran the search itself and reports what it showed the user.
func (s *SessionService) Record(ctx context.Context, userID, query, source string, results []model.RawResult) (*model.SearchSession, error) {
	if query == "" || source == "" {
		return nil, fmt.Errorf("%w: query and source are required", model.ErrValidation)
	}
	if results == nil {
		results = []model.RawResult{}
	}
	return s.store.Sessions().Create(ctx, &model.SearchSession{
		UserID:  userID,
		Query:   query,
		Source:  source,
		Results: results,
	})
}

// Latest returns the most recent session for the exact query text, scoped to
// source when given. A miss returns (nil, nil); callers render it as an
// empty result set rather than an error. Lookup failures degrade to a miss
// too, so a flaky store never breaks the caller's empty-state rendering.
func (s *SessionService) Latest(ctx context.Context, userID, query, source string) (*model.SearchSession, error) {
	if source != "" {
		session, err := s.store.Sessions().FindLatest(ctx, userID, query, source)
		if err != nil {
			if !errors.Is(err, model.ErrNotFound) {
				log.Warn().Err(err).Str("user_id", userID).Msg("session lookup failed, treating as miss")
			}
			return nil, nil
		}
		return session, nil
	}

	// without a source constraint, scan the recent sessions in order
	sessions, err := s.store.Sessions().List(ctx, userID, 100)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("session lookup failed, treating as miss")
		return nil, nil
	}
	for _, session := range sessions {
		if session.Query == query {
			return session, nil
		}
	}
	return nil, nil
}

func (s *SessionService) ListSessions(ctx context.Context, userID string, limit int) ([]*model.SearchSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.Sessions().List(ctx, userID, limit)
}
