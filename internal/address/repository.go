package address

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("address not found")

type Repository interface {
	List(ctx context.Context, owner string) ([]Address, error)
	GetByID(ctx context.Context, id string) (Address, error)
	// Create and Update clear the owner's other defaults when a.IsDefault is set.
	Create(ctx context.Context, a Address) (Address, error)
	Update(ctx context.Context, a Address) (Address, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository for tests
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[string]Address
}

func NewInMemoryRepository(seed []Address) *InMemoryRepository {
	r := &InMemoryRepository{data: make(map[string]Address, len(seed))}
	for _, a := range seed {
		r.data[a.ID] = a
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context, owner string) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Address, 0)
	for _, a := range r.data {
		if strings.EqualFold(a.OwnerEmail, owner) {
			out = append(out, a)
		}
	}
	sortAddresses(out)
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.data[id]
	if !ok {
		return Address{}, ErrNotFound
	}
	return a, nil
}

func (r *InMemoryRepository) Create(_ context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.IsDefault {
		r.clearDefault(a.OwnerEmail, a.ID)
	}
	r.data[a.ID] = a
	return a, nil
}

func (r *InMemoryRepository) Update(_ context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.data[a.ID]
	if !ok {
		return Address{}, ErrNotFound
	}
	if a.IsDefault {
		r.clearDefault(a.OwnerEmail, a.ID)
	}
	a.CreatedAt = existing.CreatedAt
	r.data[a.ID] = a
	return a, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *InMemoryRepository) clearDefault(owner, keepID string) {
	for id, a := range r.data {
		if id != keepID && strings.EqualFold(a.OwnerEmail, owner) && a.IsDefault {
			a.IsDefault = false
			r.data[id] = a
		}
	}
}

// sortAddresses puts the default first, then newest first.
func sortAddresses(list []Address) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].IsDefault != list[j].IsDefault {
			return list[i].IsDefault
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
