package wishlist

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nowiht/storefront-backend/internal/product"
)

// Catalog is the part of the product service the wishlist needs.
type Catalog interface {
	GetByID(ctx context.Context, id string) (product.Product, error)
	AdjustWishlist(ctx context.Context, id string, delta int) error
}

type Service struct {
	repo    Repository
	catalog Catalog
	now     func() time.Time
}

func NewService(r Repository, catalog Catalog) *Service {
	return &Service{repo: r, catalog: catalog, now: time.Now}
}

// List returns the saved products, newest first. Products removed from the
// catalog since they were saved are skipped.
func (s *Service) List(ctx context.Context, owner string) ([]Entry, error) {
	items, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		p, err := s.catalog.GetByID(ctx, it.ProductID)
		if errors.Is(err, product.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Item: it, Product: p})
	}
	return out, nil
}

// Add saves a product and bumps its wishlist counter.
func (s *Service) Add(ctx context.Context, owner, productID string) (Item, error) {
	if _, err := s.catalog.GetByID(ctx, productID); err != nil {
		return Item{}, err
	}
	it := Item{OwnerEmail: strings.ToLower(owner), ProductID: productID, CreatedAt: s.now().UTC()}
	if err := s.repo.Add(ctx, it); err != nil {
		return Item{}, err
	}
	if err := s.catalog.AdjustWishlist(ctx, productID, 1); err != nil {
		zap.L().Warn("wishlist counter not updated", zap.String("product_id", productID), zap.Error(err))
	}
	return it, nil
}

func (s *Service) Remove(ctx context.Context, owner, productID string) error {
	if err := s.repo.Remove(ctx, owner, productID); err != nil {
		return err
	}
	if err := s.catalog.AdjustWishlist(ctx, productID, -1); err != nil && !errors.Is(err, product.ErrNotFound) {
		zap.L().Warn("wishlist counter not updated", zap.String("product_id", productID), zap.Error(err))
	}
	return nil
}
