package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nowiht/storefront-backend/internal/category"
	"github.com/nowiht/storefront-backend/internal/product"
)

type seedCategory struct {
	name     string
	children []string
}

var seedCategories = []seedCategory{
	{name: "Women", children: []string{"Dresses", "Tops", "Trousers"}},
	{name: "Men", children: []string{"Shirts", "Knitwear", "Chinos"}},
}

func ptr[T any](v T) *T { return &v }

var seedProducts = []product.Input{
	{
		Name: "Linen Midi Dress", Category: "dresses", Price: 1899, CompareAtPrice: ptr(2399.0), Stock: 24,
		Colors: []product.Color{{Name: "Sand"}, {Name: "Black"}}, Sizes: []string{"XS", "S", "M", "L"},
		Material: "linen", Brand: "NOWIHT", Collection: "SS26", Tags: []string{"summer", "linen"},
		Images: []string{"/uploads/seed-linen-dress.jpg"}, Status: product.StatusPublished, IsOnSale: true, IsNew: true,
	},
	{
		Name: "Organic Cotton Tee", Category: "tops", Price: 549, Stock: 120,
		Colors: []product.Color{{Name: "White"}, {Name: "Navy"}}, Sizes: []string{"XS", "S", "M", "L", "XL"},
		Material: "cotton", Brand: "NOWIHT", Collection: "Essentials", Tags: []string{"basics"},
		Images: []string{"/uploads/seed-cotton-tee.jpg"}, Status: product.StatusPublished, IsBestSeller: true,
	},
	{
		Name: "Wide Leg Trousers", Category: "trousers", Price: 1299, Stock: 0,
		Colors: []product.Color{{Name: "Olive"}}, Sizes: []string{"S", "M", "L"},
		Material: "wool", Brand: "NOWIHT", Collection: "AW25", Tags: []string{"tailoring"},
		Images: []string{"/uploads/seed-wide-leg.jpg"}, Status: product.StatusPublished,
	},
	{
		Name: "Oxford Shirt", Category: "shirts", Price: 999, Stock: 40,
		Colors: []product.Color{{Name: "Blue"}, {Name: "White"}}, Sizes: []string{"S", "M", "L", "XL"},
		Material: "cotton", Brand: "NOWIHT", Collection: "Essentials", Tags: []string{"office"},
		Images: []string{"/uploads/seed-oxford.jpg"}, Status: product.StatusPublished, IsNew: true,
	},
	{
		Name: "Merino Crew Sweater", Category: "knitwear", Price: 1749, Stock: 15,
		Colors: []product.Color{{Name: "Grey"}}, Sizes: []string{"M", "L", "XL"},
		Material: "wool", Brand: "NOWIHT", Collection: "AW25", Tags: []string{"winter", "merino"},
		Images: []string{"/uploads/seed-merino.jpg"}, Status: product.StatusPublished, IsBestSeller: true,
	},
}

// seedCatalog fills an empty catalog with a small demo assortment.
func seedCatalog(ctx context.Context, products *product.Service, categories *category.Service) error {
	existing, err := products.List(ctx, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for i, root := range seedCategories {
		parent, err := categories.Create(ctx, category.Input{Name: root.name, Status: category.StatusActive, SortOrder: i})
		if err != nil {
			return fmt.Errorf("seed category %q: %w", root.name, err)
		}
		for j, child := range root.children {
			in := category.Input{Name: child, ParentID: &parent.ID, Status: category.StatusActive, SortOrder: j}
			if _, err := categories.Create(ctx, in); err != nil {
				return fmt.Errorf("seed category %q: %w", child, err)
			}
		}
	}

	for _, in := range seedProducts {
		if _, err := products.Create(ctx, in); err != nil {
			return fmt.Errorf("seed product %q: %w", in.Name, err)
		}
	}
	if _, err := categories.RecountProducts(ctx); err != nil {
		return err
	}
	zap.L().Info("catalog seeded", zap.Int("products", len(seedProducts)))
	return nil
}
