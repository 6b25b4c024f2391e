package preferences

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("preferences not found")

type Repository interface {
	Get(ctx context.Context, owner string) (Preferences, error)
	Upsert(ctx context.Context, p Preferences) (Preferences, error)
}

// InMemoryRepository for tests
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[string]Preferences
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[string]Preferences)}
}

func (r *InMemoryRepository) Get(_ context.Context, owner string) (Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.data[strings.ToLower(owner)]
	if !ok {
		return Preferences{}, ErrNotFound
	}
	p.PreferredSizes = append([]string{}, p.PreferredSizes...)
	return p, nil
}

func (r *InMemoryRepository) Upsert(_ context.Context, p Preferences) (Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.PreferredSizes = append([]string{}, p.PreferredSizes...)
	r.data[strings.ToLower(p.OwnerEmail)] = p
	return p, nil
}
