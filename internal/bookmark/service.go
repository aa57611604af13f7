package bookmark

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/search"
	"github.com/curiohq/curio/server/internal/store"
)

// DirectItem is a caller-supplied item on the direct add path. Every field is
// optional; defaults fill the gaps.
type DirectItem struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

// AddRequest is one bookmark call. Exactly one path applies: Items (direct)
// or SearchQuery+SearchType+Indices (session-based).
type AddRequest struct {
	CollectionName string       `json:"collectionName"`
	Items          []DirectItem `json:"items,omitempty"`
	SearchQuery    string       `json:"searchQuery,omitempty"`
	SearchType     string       `json:"searchType,omitempty"`
	Indices        []int        `json:"indices,omitempty"`
}

// AddResult reports what a bookmark call did.
type AddResult struct {
	Success      bool   `json:"success"`
	CollectionID string `json:"collectionId"`
	ItemsAdded   int    `json:"itemsAdded"`
	Message      string `json:"message"`
}

// Service resolves bookmark requests against cached search sessions and
// appends the extracted items to a named collection.
type Service struct {
	store    store.Store
	registry *search.Registry
	limit    int
	newID    IDFunc
	log      zerolog.Logger
}

func NewService(s store.Store, registry *search.Registry, searchLimit int, log zerolog.Logger) *Service {
	return &Service{
		store:    s,
		registry: registry,
		limit:    searchLimit,
		newID:    uuid.NewString,
		log:      log.With().Str("component", "bookmark").Logger(),
	}
}

// Add executes one bookmark request for the given user. Validation failures
// return model.ErrValidation with a caller-facing message.
func (s *Service) Add(ctx context.Context, userID string, req *AddRequest) (*AddResult, error) {
	if req.CollectionName == "" {
		return nil, fmt.Errorf("%w: collectionName is required", model.ErrValidation)
	}

	var items []model.CollectionItem
	switch {
	case len(req.Items) > 0:
		items = s.normalizeDirect(req.Items)
	case req.SearchQuery != "" && req.SearchType != "" && req.Indices != nil:
		resolved, err := s.resolveFromSession(ctx, userID, req)
		if err != nil {
			return nil, err
		}
		items = resolved
	default:
		return nil, fmt.Errorf("%w: provide either 'items' array (direct) or 'searchQuery' + 'searchType' + 'indices' (search-based)", model.ErrValidation)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no valid items to add", model.ErrValidation)
	}

	col, err := s.store.Collections().FindOrCreate(ctx, userID, req.CollectionName)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Collections().AppendItems(ctx, col.CollectionID, items); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("userId", userID).
		Str("collectionId", col.CollectionID).
		Int("itemsAdded", len(items)).
		Msg("bookmarked items")

	return &AddResult{
		Success:      true,
		CollectionID: col.CollectionID,
		ItemsAdded:   len(items),
		Message:      fmt.Sprintf("Added %d items to %q", len(items), req.CollectionName),
	}, nil
}

func (s *Service) normalizeDirect(in []DirectItem) []model.CollectionItem {
	out := make([]model.CollectionItem, 0, len(in))
	for _, it := range in {
		typ := it.Type
		if typ == "" {
			typ = model.ItemTypeArticle
		}
		title := it.Title
		if title == "" {
			title = "Untitled"
		}
		out = append(out, model.CollectionItem{
			ID:        s.newID(),
			Type:      typ,
			URL:       it.URL,
			Title:     title,
			Thumbnail: it.Thumbnail,
		})
	}
	return out
}

// resolveFromSession finds the user's cached results for the exact
// (query, source) pair and extracts the requested indices. When no session
// exists, or lookup fails, it falls back to a fresh live search. The fresh
// results are a different ranking than the user saw, so the cached path is
// always preferred.
func (s *Service) resolveFromSession(ctx context.Context, userID string, req *AddRequest) ([]model.CollectionItem, error) {
	source := SourceForSearchType(req.SearchType)

	var results []model.RawResult
	session, err := s.store.Sessions().FindLatest(ctx, userID, req.SearchQuery, source)
	switch {
	case err == nil:
		results = session.Results
		s.log.Debug().
			Str("sessionId", session.SessionID).
			Int("results", len(results)).
			Msg("resolved bookmark against cached session")
	case errors.Is(err, model.ErrNotFound):
		// no session for this triple; fall through to live search
	default:
		// lookup failure degrades to live search rather than failing the add
		s.log.Warn().Err(err).Msg("session lookup failed, falling back to live search")
	}

	if len(results) == 0 {
		provider, perr := s.registry.Provider(source)
		if perr != nil {
			// unknown searchType resolves nothing; the caller gets the
			// standard "no valid items" validation error
			return nil, nil
		}
		results, err = provider.Search(ctx, req.SearchQuery, s.limit)
		if err != nil {
			return nil, fmt.Errorf("live search fallback: %w", err)
		}
		s.log.Info().
			Str("source", source).
			Int("results", len(results)).
			Msg("no cached session, used live search fallback")
	}

	return ExtractItems(results, req.Indices, req.SearchType, s.newID), nil
}
