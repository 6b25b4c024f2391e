package category

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// ProductCounter reports how many products reference each category slug.
type ProductCounter interface {
	CountByCategory(ctx context.Context) (map[string]int, error)
}

// Service provides business logic for categories.
type Service struct {
	repo    Repository
	counter ProductCounter
	now     func() time.Time
}

func NewService(r Repository, counter ProductCounter) *Service {
	return &Service{repo: r, counter: counter, now: time.Now}
}

// Tree returns the active category tree. Inactive categories hide their
// whole subtree.
func (s *Service) Tree(ctx context.Context) ([]*Node, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return pruneInactive(BuildTree(all)), nil
}

// AdminTree returns every category, active or not.
func (s *Service) AdminTree(ctx context.Context) ([]*Node, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(all), nil
}

// GetBySlug returns an active category with its active children.
func (s *Service) GetBySlug(ctx context.Context, categorySlug string) (*Node, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	n := find(tree, categorySlug)
	if n == nil {
		return nil, ErrNotFound
	}
	return n, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Category, error) {
	c, err := s.fromInput(in)
	if err != nil {
		return Category{}, err
	}
	if c.ParentID != nil {
		if _, err := s.repo.GetByID(ctx, *c.ParentID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return Category{}, ErrParentNotFound
			}
			return Category{}, err
		}
	}
	now := s.now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Category, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Category{}, err
	}
	c, err := s.fromInput(in)
	if err != nil {
		return Category{}, err
	}
	if c.ParentID != nil {
		if err := s.checkParent(ctx, id, *c.ParentID); err != nil {
			return Category{}, err
		}
	}
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, c)
}

// Delete refuses to remove a category that still has children.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	has, err := s.repo.HasChildren(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return ErrHasChildren
	}
	return s.repo.Delete(ctx, id)
}

// RecountProducts refreshes the denormalized productCount of every category.
func (s *Service) RecountProducts(ctx context.Context) (map[string]int, error) {
	counts, err := s.counter.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetProductCounts(ctx, counts); err != nil {
		return nil, err
	}
	zap.L().Info("category product counts refreshed", zap.Int("categories", len(counts)))
	return counts, nil
}

// checkParent walks up from parentID and fails if it reaches id.
func (s *Service) checkParent(ctx context.Context, id, parentID string) error {
	seen := map[string]bool{}
	for cur := parentID; cur != ""; {
		if cur == id {
			return ErrCycle
		}
		if seen[cur] {
			// existing data already loops; refuse to extend it
			return ErrCycle
		}
		seen[cur] = true
		p, err := s.repo.GetByID(ctx, cur)
		if errors.Is(err, ErrNotFound) {
			return ErrParentNotFound
		}
		if err != nil {
			return err
		}
		if p.ParentID == nil {
			return nil
		}
		cur = *p.ParentID
	}
	return nil
}

func (s *Service) fromInput(in Input) (Category, error) {
	fields := map[string]string{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		fields["name"] = "name is required"
	}
	status := Status(strings.ToLower(strings.TrimSpace(string(in.Status))))
	if status == "" {
		status = StatusActive
	}
	if status != StatusActive && status != StatusInactive {
		fields["status"] = "status must be active or inactive"
	}
	catSlug := slug.Make(in.Slug)
	if catSlug == "" {
		catSlug = slug.Make(name)
	}
	if catSlug == "" && name != "" {
		fields["slug"] = "slug could not be derived from name"
	}
	if len(fields) > 0 {
		return Category{}, &ValidationError{Fields: fields}
	}

	var parent *string
	if in.ParentID != nil && strings.TrimSpace(*in.ParentID) != "" {
		p := strings.TrimSpace(*in.ParentID)
		parent = &p
	}
	return Category{
		Name:        name,
		Slug:        catSlug,
		Description: strings.TrimSpace(in.Description),
		ParentID:    parent,
		Status:      status,
		SortOrder:   in.SortOrder,
	}, nil
}
