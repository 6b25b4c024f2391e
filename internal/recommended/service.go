package recommended

import (
	"context"

	"github.com/nowiht/storefront-backend/internal/product"
)

const DefaultLimit = 8

// Catalog is the slice of the product service the rails are built from.
type Catalog interface {
	Top(ctx context.Context, option product.SortOption, n int, f product.Filter) ([]product.Product, error)
}

type Service struct {
	catalog Catalog
}

func NewService(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

// Home returns the first limit products of every homepage rail.
func (s *Service) Home(ctx context.Context, limit int) (HomeCollections, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var (
		out HomeCollections
		err error
	)
	if out.BestSellers, err = s.Collection(ctx, BestSellers, limit, 0); err != nil {
		return HomeCollections{}, err
	}
	if out.Trending, err = s.Collection(ctx, Trending, limit, 0); err != nil {
		return HomeCollections{}, err
	}
	if out.NewArrivals, err = s.Collection(ctx, NewArrivals, limit, 0); err != nil {
		return HomeCollections{}, err
	}
	if out.OnSale, err = s.Collection(ctx, OnSale, limit, 0); err != nil {
		return HomeCollections{}, err
	}
	return out, nil
}

// Collection returns one rail, paged with limit and offset.
func (s *Service) Collection(ctx context.Context, c Collection, limit, offset int) ([]product.Product, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	option, filter := c.query()
	items, err := s.catalog.Top(ctx, option, offset+limit, filter)
	if err != nil {
		return nil, err
	}
	if offset >= len(items) {
		return []product.Product{}, nil
	}
	return items[offset:], nil
}
