package metaobject

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound  = errors.New("meta object not found")
	ErrDuplicate = errors.New("meta object with this type and code already exists")
)

// ListFilter narrows a List call. Empty Type lists every type.
type ListFilter struct {
	Type       Type
	ActiveOnly bool
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]MetaObject, error)
	GetByID(ctx context.Context, id string) (MetaObject, error)
	Create(ctx context.Context, m MetaObject) (MetaObject, error)
	Update(ctx context.Context, m MetaObject) (MetaObject, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is used by tests and local runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items []MetaObject
}

func NewInMemoryRepository(seed []MetaObject) *InMemoryRepository {
	r := &InMemoryRepository{items: make([]MetaObject, 0, len(seed))}
	r.items = append(r.items, seed...)
	return r
}

func (r *InMemoryRepository) List(_ context.Context, f ListFilter) ([]MetaObject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]MetaObject, 0, len(r.items))
	for _, m := range r.items {
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.ActiveOnly && !m.IsActive {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (MetaObject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.items {
		if m.ID == id {
			return m, nil
		}
	}
	return MetaObject{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, m MetaObject) (MetaObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts(m) {
		return MetaObject{}, ErrDuplicate
	}
	r.items = append(r.items, m)
	return m, nil
}

func (r *InMemoryRepository) Update(_ context.Context, m MetaObject) (MetaObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts(m) {
		return MetaObject{}, ErrDuplicate
	}
	for i := range r.items {
		if r.items[i].ID == m.ID {
			m.CreatedAt = r.items[i].CreatedAt
			r.items[i] = m
			return m, nil
		}
	}
	return MetaObject{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) conflicts(m MetaObject) bool {
	for _, existing := range r.items {
		if existing.ID != m.ID && existing.Type == m.Type && existing.Code == m.Code {
			return true
		}
	}
	return false
}
