package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nowiht/storefront-backend/internal/product"
)

var (
	ErrProductUnavailable = errors.New("product is not available")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrInvalidVariant     = errors.New("selected size is not offered for this product")
)

// Catalog looks up live product data for pricing.
type Catalog interface {
	GetByID(ctx context.Context, id string) (product.Product, error)
}

// Item is a cart line as sent by the client; prices are never trusted from it.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type Service struct {
	catalog Catalog
}

func NewService(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

// Price snapshots the current name, image and price of every item.
func (s *Service) Price(ctx context.Context, items []Item) ([]Line, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		p, err := s.catalog.GetByID(ctx, item.ProductID)
		if errors.Is(err, product.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, item.ProductID)
		}
		if err != nil {
			return nil, err
		}
		if p.Status != product.StatusPublished {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, p.Name)
		}
		if !p.InStock || (p.Stock > 0 && item.Quantity > p.Stock) {
			return nil, fmt.Errorf("%w: %s", ErrOutOfStock, p.Name)
		}
		if item.Size != "" && len(p.Sizes) > 0 && !offersSize(p, item.Size) {
			return nil, fmt.Errorf("%w: %s %s", ErrInvalidVariant, p.Name, item.Size)
		}

		var image string
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		lines = append(lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     image,
			Size:      item.Size,
			Color:     item.Color,
			UnitPrice: decimal.NewFromFloat(p.Price).Round(2),
			Quantity:  item.Quantity,
		})
	}
	return lines, nil
}

// Quote prices items against the live catalog and applies tax, shipping and promotion.
func (s *Service) Quote(ctx context.Context, items []Item, country, promoCode string) (Quote, error) {
	lines, err := s.Price(ctx, items)
	if err != nil {
		return Quote{}, err
	}
	return Calculate(lines, country, promoCode)
}

func offersSize(p product.Product, size string) bool {
	for _, s := range p.Sizes {
		if strings.EqualFold(s, size) {
			return true
		}
	}
	return false
}
