package store

import (
	"context"
	"errors"
	"sync"

	"taskdeck/internal/api"
	"taskdeck/internal/logger"
)

// CategoryAPI is the slice of the backend the category store needs.
// *api.Client satisfies it.
type CategoryAPI interface {
	ListCategories(ctx context.Context) (*api.CategoryListResponse, error)
	CreateCategory(ctx context.Context, name, color string) (*api.Category, error)
}

// CategoryStore is the read-mostly sibling of TaskStore: categories
// are fetched, appended to on creation, and never mutated or deleted
// client-side.
type CategoryStore struct {
	mu         sync.Mutex
	categories []api.Category
	lastErr    string

	api  CategoryAPI
	auth AuthChecker
	log  *logger.Logger
}

// NewCategoryStore creates an empty CategoryStore.
func NewCategoryStore(a CategoryAPI, auth AuthChecker, log *logger.Logger) *CategoryStore {
	if log == nil {
		log = logger.Discard()
	}
	return &CategoryStore{api: a, auth: auth, log: log}
}

// Categories returns a copy of the current list.
func (s *CategoryStore) Categories() []api.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Err returns the last recorded error message.
func (s *CategoryStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Fetch replaces the list from the server. Silent no-op while the
// session is absent; a missing items field means an empty list.
func (s *CategoryStore) Fetch(ctx context.Context) {
	if !s.auth.IsAuthenticated() {
		s.log.Debug("skipping category fetch: not authenticated")
		return
	}

	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()

	resp, err := s.api.ListCategories(ctx)
	if err != nil {
		s.record(err, "Failed to fetch categories")
		s.log.Error("category fetch failed", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = resp.Items
	if s.categories == nil {
		s.categories = []api.Category{}
	}
}

// Create posts a new category and appends it on success. Nothing was
// speculatively added, so there is no rollback on failure.
func (s *CategoryStore) Create(ctx context.Context, name, color string) (*api.Category, error) {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()

	cat, err := s.api.CreateCategory(ctx, name, color)
	if err != nil {
		s.record(err, "Failed to create category")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, *cat)
	return cat, nil
}

func (s *CategoryStore) record(err error, fallback string) {
	msg := fallback
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		msg = apiErr.Detail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = msg
}
