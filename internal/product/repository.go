package product

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrDuplicateSlug = errors.New("a product with this slug already exists")
)

// ListFilter narrows a repository listing. An empty Status lists every product.
type ListFilter struct {
	Status Status
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	GetBySlug(ctx context.Context, slug string) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	// AdjustWishlist adds delta to wishlistCount, never going below zero.
	AdjustWishlist(ctx context.Context, id string, delta int) error
	// RecordSale adds qty to soldCount and takes it out of stock.
	RecordSale(ctx context.Context, id string, qty int) error
	CountByCategory(ctx context.Context) (map[string]int, error)
	// UpsertBySlug inserts p or replaces the product with the same slug,
	// keeping its id, counters and createdAt. It reports whether a row was created.
	UpsertBySlug(ctx context.Context, p Product) (Product, bool, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// seeding local data.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{storage: make([]Product, 0, len(seed))}
	r.storage = append(r.storage, seed...)
	return r
}

func (r *InMemoryRepository) List(_ context.Context, f ListFilter) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(func(p Product) bool { return p.ID == id }); i >= 0 {
		return r.storage[i], nil
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) GetBySlug(_ context.Context, slug string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(func(p Product) bool { return p.Slug == slug }); i >= 0 {
		return r.storage[i], nil
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(func(e Product) bool { return e.Slug == p.Slug }) >= 0 {
		return Product{}, ErrDuplicateSlug
	}
	r.storage = append(r.storage, p)
	return p, nil
}

func (r *InMemoryRepository) Update(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(func(e Product) bool { return e.Slug == p.Slug && e.ID != p.ID }) >= 0 {
		return Product{}, ErrDuplicateSlug
	}
	i := r.indexOf(func(e Product) bool { return e.ID == p.ID })
	if i < 0 {
		return Product{}, ErrNotFound
	}
	r.storage[i] = p
	return p, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(func(p Product) bool { return p.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	r.storage = append(r.storage[:i], r.storage[i+1:]...)
	return nil
}

func (r *InMemoryRepository) IncrementViews(_ context.Context, id string) error {
	return r.mutate(id, func(p *Product) { p.Views++ })
}

func (r *InMemoryRepository) AdjustWishlist(_ context.Context, id string, delta int) error {
	return r.mutate(id, func(p *Product) { p.WishlistCount = max(0, p.WishlistCount+delta) })
}

func (r *InMemoryRepository) RecordSale(_ context.Context, id string, qty int) error {
	return r.mutate(id, func(p *Product) {
		p.SoldCount += qty
		p.Stock = max(0, p.Stock-qty)
	})
}

func (r *InMemoryRepository) CountByCategory(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := map[string]int{}
	for _, p := range r.storage {
		if p.Category != "" {
			out[p.Category]++
		}
	}
	return out, nil
}

func (r *InMemoryRepository) UpsertBySlug(_ context.Context, p Product) (Product, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(func(e Product) bool { return e.Slug == p.Slug })
	if i < 0 {
		r.storage = append(r.storage, p)
		return p, true, nil
	}
	existing := r.storage[i]
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	p.SoldCount = existing.SoldCount
	p.Views = existing.Views
	p.WishlistCount = existing.WishlistCount
	r.storage[i] = p
	return p, false, nil
}

func (r *InMemoryRepository) mutate(id string, fn func(*Product)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(func(p Product) bool { return p.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	fn(&r.storage[i])
	return nil
}

func (r *InMemoryRepository) indexOf(match func(Product) bool) int {
	for i, p := range r.storage {
		if match(p) {
			return i
		}
	}
	return -1
}
