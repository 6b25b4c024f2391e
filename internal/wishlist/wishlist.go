package wishlist

import (
	"time"

	"github.com/nowiht/storefront-backend/internal/product"
)

// Item is one saved product of an account.
type Item struct {
	OwnerEmail string    `json:"-"`
	ProductID  string    `json:"productId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Entry is an Item joined with its current catalog record.
type Entry struct {
	Item
	Product product.Product `json:"product"`
}
