package books

import (
	"context"
	"errors"

	"github.com/Rinkore1/BookServer/internal/breaker"
	"github.com/Rinkore1/BookServer/internal/logger"
)

// Service fronts the catalog repository. The two read paths that
// every request touches, GetByID and List, run behind circuit
// breakers: while a breaker is open, or when the underlying read
// fails, the caller gets the fallback result (nil book, empty list)
// instead of an error. Write paths are deliberately unprotected, so a
// failing store always surfaces to the caller.
type Service struct {
	repo Repository

	byID *breaker.Breaker
	list *breaker.Breaker
}

func NewService(repo Repository, opts breaker.Options) *Service {
	return &Service{
		repo: repo,
		byID: breaker.New(opts),
		list: breaker.New(opts),
	}
}

// GetByID returns the book, ErrNotFound when it does not exist, or
// (nil, nil) when the read path is degraded and the fallback applies.
func (s *Service) GetByID(ctx context.Context, id string) (*Book, error) {
	if err := s.byID.Allow(); err != nil {
		logger.Warn("book read short-circuited", map[string]any{
			"op": "get_by_id",
		})
		return nil, nil
	}

	b, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		// a clean miss is a healthy store
		s.byID.Record(true)
		return nil, ErrNotFound
	}
	if err != nil {
		s.byID.Record(false)
		logger.Error("book read failed, serving fallback", map[string]any{
			"op":    "get_by_id",
			"error": err.Error(),
		})
		return nil, nil
	}

	s.byID.Record(true)
	return b, nil
}

// List returns a page of the catalog, or an empty page while the read
// path is degraded.
func (s *Service) List(ctx context.Context, page, size int) ([]Book, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}

	if err := s.list.Allow(); err != nil {
		logger.Warn("book read short-circuited", map[string]any{
			"op": "list",
		})
		return []Book{}, nil
	}

	result, err := s.repo.List(ctx, page*size, size)
	if err != nil {
		s.list.Record(false)
		logger.Error("book read failed, serving fallback", map[string]any{
			"op":    "list",
			"error": err.Error(),
		})
		return []Book{}, nil
	}

	s.list.Record(true)
	return result, nil
}

// Search filters the catalog by a case-insensitive title keyword.
func (s *Service) Search(ctx context.Context, keyword string, page, size int) ([]Book, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	return s.repo.SearchByTitle(ctx, keyword, page*size, size)
}

// Top returns the most popular books.
func (s *Service) Top(ctx context.Context, size int) ([]Book, error) {
	if size <= 0 {
		size = 10
	}
	return s.repo.TopByPopularity(ctx, size)
}

// Recommend returns books matching the user's stored preferences,
// padded with random picks when the preference matches fall short.
func (s *Service) Recommend(ctx context.Context, preferences []string, size int) ([]Book, error) {
	if size <= 0 {
		size = 10
	}

	result := make([]Book, 0, size)
	seen := make(map[string]bool)

	for _, pref := range preferences {
		matches, err := s.repo.SearchByTitle(ctx, pref, 0, size)
		if err != nil {
			return nil, err
		}
		for _, b := range matches {
			if len(result) == size {
				return result, nil
			}
			if !seen[b.ID] {
				seen[b.ID] = true
				result = append(result, b)
			}
		}
	}

	if len(result) < size {
		random, err := s.repo.Random(ctx, size-len(result))
		if err != nil {
			return nil, err
		}
		for _, b := range random {
			if len(result) == size {
				break
			}
			if !seen[b.ID] {
				seen[b.ID] = true
				result = append(result, b)
			}
		}
	}

	return result, nil
}

// PreferencesForUser returns the title keywords recommendations are
// built from; the static table stands in until per-user reading
// history is recorded.
func (s *Service) PreferencesForUser(userID string) []string {
	preferences := map[string][]string{
		"user1": {"Java", "Spring"},
		"user2": {"Python", "Machine Learning"},
	}
	return preferences[userID]
}

// Add persists a new book and returns its id.
func (s *Service) Add(ctx context.Context, b *Book) (string, error) {
	return s.repo.Create(ctx, b)
}

// Update replaces the book with the given id.
func (s *Service) Update(ctx context.Context, b *Book) error {
	return s.repo.Update(ctx, b)
}

// Delete removes the book with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
