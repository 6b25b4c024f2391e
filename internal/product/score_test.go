package product

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptrFloat(v float64) *float64 { return &v }

func TestPopularityScore(t *testing.T) {
	tests := []struct {
		name string
		p    Product
		want float64
	}{
		{"neutral defaults", Product{}, 12},
		{"half way on every signal", Product{SoldCount: 50, Views: 500, WishlistCount: 25}, 54.5},
		{"caps every component", Product{SoldCount: 1000, Views: 5000, WishlistCount: 100, Rating: ptrFloat(5)}, 100},
		{"negative counters count as zero", Product{SoldCount: -10, Views: -1, Rating: ptrFloat(0)}, 0},
		{"rating clamped to five", Product{Rating: ptrFloat(9)}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PopularityScore(tt.p), 1e-9)
		})
	}
}

func TestTrendingScore(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	daysAgo := func(d int) time.Time { return now.AddDate(0, 0, -d) }

	assert.InDelta(t, 70, TrendingScore(Product{CreatedAt: daysAgo(15), SoldCount: 30}, now), 1e-9)
	assert.InDelta(t, 90, TrendingScore(Product{CreatedAt: daysAgo(15), SoldCount: 30, IsOnSale: true}, now), 1e-9)
	assert.InDelta(t, 100, TrendingScore(Product{CreatedAt: daysAgo(15), SoldCount: 30, IsOnSale: true, IsBestSeller: true}, now), 1e-9)
	assert.InDelta(t, 0, TrendingScore(Product{CreatedAt: daysAgo(60)}, now), 1e-9)
	assert.InDelta(t, 100, TrendingScore(Product{}, now), 1e-9, "zero createdAt counts as brand new")
	assert.InDelta(t, 100, TrendingScore(Product{CreatedAt: now.Add(48 * time.Hour)}, now), 1e-9, "future createdAt counts as brand new")
}

func TestRelevanceScore(t *testing.T) {
	full := Product{
		Stock:          20,
		Price:          150,
		CompareAtPrice: ptrFloat(200),
		Images:         []string{"a.jpg", "b.jpg", "c.jpg"},
		Description:    "Boxy tee",
		Colors:         []Color{{Name: "Black"}},
		Sizes:          []string{"M"},
	}
	assert.InDelta(t, 85, RelevanceScore(full), 1e-9)
	assert.InDelta(t, 0, RelevanceScore(Product{}), 1e-9)
	assert.InDelta(t, 30, RelevanceScore(Product{Stock: 5}), 1e-9)
	assert.InDelta(t, 30, RelevanceScore(Product{InStock: true}), 1e-9)
	assert.InDelta(t, 30, RelevanceScore(Product{Price: 20, CompareAtPrice: ptrFloat(100)}), 1e-9, "discount points cap at 30")
}

func TestDiscountPercent(t *testing.T) {
	assert.InDelta(t, 25, DiscountPercent(Product{Price: 75, CompareAtPrice: ptrFloat(100)}), 1e-9)
	assert.Zero(t, DiscountPercent(Product{Price: 100}))
	assert.Zero(t, DiscountPercent(Product{Price: 120, CompareAtPrice: ptrFloat(100)}))
	assert.Zero(t, DiscountPercent(Product{Price: 10, CompareAtPrice: ptrFloat(0)}))
}

func TestScoresStayInRange(t *testing.T) {
	now := time.Now()
	products := []Product{
		{},
		{SoldCount: 1 << 30, Views: 1 << 30, WishlistCount: 1 << 30, IsOnSale: true, IsBestSeller: true, Stock: 1 << 20},
		{Price: -5, CompareAtPrice: ptrFloat(-1), Rating: ptrFloat(-3), Stock: -4},
	}
	for _, p := range products {
		for _, score := range []float64{PopularityScore(p), TrendingScore(p, now), RelevanceScore(p), FeaturedScore(p, now)} {
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
		}
	}
}
