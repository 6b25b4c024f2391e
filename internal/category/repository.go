package category

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound       = errors.New("category not found")
	ErrDuplicateSlug  = errors.New("category slug already exists")
	ErrHasChildren    = errors.New("category has child categories")
	ErrCycle          = errors.New("category cannot be moved under itself or its descendants")
	ErrParentNotFound = errors.New("parent category not found")
)

type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, c Category) (Category, error)
	Delete(ctx context.Context, id string) error
	HasChildren(ctx context.Context, id string) (bool, error)
	// SetProductCounts stores counts keyed by category slug; categories
	// missing from counts are reset to zero.
	SetProductCounts(ctx context.Context, counts map[string]int) error
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	items []Category
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	return &InMemoryRepository{items: append([]Category{}, seed...)}
}

func (r *InMemoryRepository) List(_ context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Category{}, r.items...), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.items {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Slug == c.Slug {
			return Category{}, ErrDuplicateSlug
		}
	}
	r.items = append(r.items, c)
	return c, nil
}

func (r *InMemoryRepository) Update(_ context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, existing := range r.items {
		if existing.ID == c.ID {
			idx = i
		} else if existing.Slug == c.Slug {
			return Category{}, ErrDuplicateSlug
		}
	}
	if idx < 0 {
		return Category{}, ErrNotFound
	}
	c.ProductCount = r.items[idx].ProductCount
	c.CreatedAt = r.items[idx].CreatedAt
	r.items[idx] = c
	return c, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.items {
		if c.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) HasChildren(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.items {
		if c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) SetProductCounts(_ context.Context, counts map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		r.items[i].ProductCount = counts[r.items[i].Slug]
	}
	return nil
}
