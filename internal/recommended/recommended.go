package recommended

import (
	"github.com/nowiht/storefront-backend/internal/product"
)

// Collection names a homepage product rail.
type Collection string

const (
	BestSellers Collection = "best-sellers"
	Trending    Collection = "trending"
	NewArrivals Collection = "new-arrivals"
	OnSale      Collection = "on-sale"
)

// Collections lists every rail in homepage order.
var Collections = []Collection{BestSellers, Trending, NewArrivals, OnSale}

// HomeCollections is the payload of the homepage endpoint.
type HomeCollections struct {
	BestSellers []product.Product `json:"bestSellers"`
	Trending    []product.Product `json:"trending"`
	NewArrivals []product.Product `json:"newArrivals"`
	OnSale      []product.Product `json:"onSale"`
}

// ParseCollection maps a URL segment to a Collection.
func ParseCollection(raw string) (Collection, bool) {
	for _, c := range Collections {
		if string(c) == raw {
			return c, true
		}
	}
	return "", false
}

// query returns the sort and filter that define a rail.
func (c Collection) query() (product.SortOption, product.Filter) {
	yes := true
	switch c {
	case BestSellers:
		return product.SortBestSelling, product.Filter{}
	case Trending:
		return product.SortTrending, product.Filter{}
	case NewArrivals:
		return product.SortNewest, product.Filter{}
	case OnSale:
		return product.SortDiscount, product.Filter{OnSale: &yes}
	default:
		return product.SortFeatured, product.Filter{}
	}
}
