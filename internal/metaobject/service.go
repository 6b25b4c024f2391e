package metaobject

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns active entries of one type, or every type when t is empty.
func (s *Service) List(ctx context.Context, t Type, includeInactive bool) ([]MetaObject, error) {
	return s.repo.List(ctx, ListFilter{Type: t, ActiveOnly: !includeInactive})
}

// Grouped returns active entries keyed by type.
func (s *Service) Grouped(ctx context.Context) (map[Type][]MetaObject, error) {
	items, err := s.repo.List(ctx, ListFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	out := map[Type][]MetaObject{}
	for _, m := range items {
		out[m.Type] = append(out[m.Type], m)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, m MetaObject) (MetaObject, error) {
	if errs := validate(&m); len(errs) > 0 {
		return MetaObject{}, &ValidationError{Fields: errs}
	}
	now := s.now().UTC()
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now
	return s.repo.Create(ctx, m)
}

func (s *Service) Update(ctx context.Context, id string, m MetaObject) (MetaObject, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return MetaObject{}, err
	}
	if errs := validate(&m); len(errs) > 0 {
		return MetaObject{}, &ValidationError{Fields: errs}
	}
	m.ID = id
	m.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, m)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// IsValidation reports whether err is a *ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
