package product

import (
	"strings"
	"time"
)

// Status controls catalog visibility. Only published products are listed publicly.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Color is a named swatch. Hex is filled from the color table when omitted.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex,omitempty"`
}

// Product is a catalog item and maps to the `products` table.
type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Price          float64   `json:"price"`
	CompareAtPrice *float64  `json:"compareAtPrice,omitempty"`
	Stock          int       `json:"stock"`
	Colors         []Color   `json:"colors"`
	Sizes          []string  `json:"sizes"`
	Material       string    `json:"material,omitempty"`
	Brand          string    `json:"brand,omitempty"`
	Collection     string    `json:"collection,omitempty"`
	Tags           []string  `json:"tags"`
	Images         []string  `json:"images"`
	Status         Status    `json:"status"`
	SoldCount      int       `json:"soldCount"`
	Views          int       `json:"views"`
	WishlistCount  int       `json:"wishlistCount"`
	Rating         *float64  `json:"rating,omitempty"`
	IsOnSale       bool      `json:"isOnSale"`
	IsBestSeller   bool      `json:"isBestSeller"`
	IsNew          bool      `json:"isNew"`
	InStock        bool      `json:"inStock"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Input is the writable part of a product as sent by the admin UI and the
// spreadsheet importer. A nil InStock is derived from Stock on create and
// left unchanged on update.
type Input struct {
	Name           string   `json:"name"`
	Slug           string   `json:"slug"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Price          float64  `json:"price"`
	CompareAtPrice *float64 `json:"compareAtPrice"`
	Stock          int      `json:"stock"`
	Colors         []Color  `json:"colors"`
	Sizes          []string `json:"sizes"`
	Material       string   `json:"material"`
	Brand          string   `json:"brand"`
	Collection     string   `json:"collection"`
	Tags           []string `json:"tags"`
	Images         []string `json:"images"`
	Status         Status   `json:"status"`
	Rating         *float64 `json:"rating"`
	IsOnSale       bool     `json:"isOnSale"`
	IsBestSeller   bool     `json:"isBestSeller"`
	IsNew          bool     `json:"isNew"`
	InStock        *bool    `json:"inStock"`
}

func (in Input) applyTo(p *Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Category = strings.ToLower(strings.TrimSpace(in.Category))
	p.Price = in.Price
	p.CompareAtPrice = in.CompareAtPrice
	p.Stock = in.Stock
	p.Colors = append([]Color{}, in.Colors...)
	p.Sizes = cleanList(in.Sizes)
	p.Material = strings.TrimSpace(in.Material)
	p.Brand = strings.TrimSpace(in.Brand)
	p.Collection = strings.TrimSpace(in.Collection)
	p.Tags = cleanList(in.Tags)
	p.Images = cleanList(in.Images)
	p.Status = Status(strings.ToLower(strings.TrimSpace(string(in.Status))))
	if p.Status == "" {
		p.Status = StatusDraft
	}
	p.Rating = in.Rating
	p.IsOnSale = in.IsOnSale
	p.IsBestSeller = in.IsBestSeller
	p.IsNew = in.IsNew
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
}

func validateProduct(p Product) map[string]string {
	errs := map[string]string{}
	if p.Name == "" {
		errs["name"] = "name is required"
	}
	if p.Price < 0 {
		errs["price"] = "price must be >= 0"
	}
	if p.CompareAtPrice != nil && *p.CompareAtPrice < 0 {
		errs["compareAtPrice"] = "compareAtPrice must be >= 0"
	}
	if p.Stock < 0 {
		errs["stock"] = "stock must be >= 0"
	}
	if p.Status != StatusDraft && p.Status != StatusPublished {
		errs["status"] = "status must be draft or published"
	}
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		errs["rating"] = "rating must be between 0 and 5"
	}
	return errs
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
