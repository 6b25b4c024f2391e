package wishlist

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

var (
	ErrAlreadyListed = errors.New("product already in wishlist")
	ErrNotListed     = errors.New("product not in wishlist")
)

type Repository interface {
	List(ctx context.Context, owner string) ([]Item, error)
	Add(ctx context.Context, it Item) error
	Remove(ctx context.Context, owner, productID string) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]map[string]Item
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[string]map[string]Item)}
}

func (r *InMemoryRepository) List(_ context.Context, owner string) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Item, 0, len(r.items[strings.ToLower(owner)]))
	for _, it := range r.items[strings.ToLower(owner)] {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) Add(_ context.Context, it Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner := strings.ToLower(it.OwnerEmail)
	if r.items[owner] == nil {
		r.items[owner] = make(map[string]Item)
	}
	if _, ok := r.items[owner][it.ProductID]; ok {
		return ErrAlreadyListed
	}
	r.items[owner][it.ProductID] = it
	return nil
}

func (r *InMemoryRepository) Remove(_ context.Context, owner, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner = strings.ToLower(owner)
	if _, ok := r.items[owner][productID]; !ok {
		return ErrNotListed
	}
	delete(r.items[owner], productID)
	return nil
}
