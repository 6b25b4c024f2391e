package product

import (
	"math"
	"time"
)

const defaultRating = 4.0

// PopularityScore weighs sales, views, wishlist saves and rating into 0..100.
func PopularityScore(p Product) float64 {
	sales := math.Min(100, nonNegative(p.SoldCount)/100*100)
	views := math.Min(100, nonNegative(p.Views)/1000*100)
	wishlist := math.Min(100, nonNegative(p.WishlistCount)/50*100)

	rating := defaultRating
	if p.Rating != nil && !math.IsNaN(*p.Rating) {
		rating = clamp(*p.Rating, 0, 5)
	}

	return clamp(0.4*sales+0.25*views+0.2*wishlist+0.15*(rating/5*100), 0, 100)
}

// TrendingScore favours recent products with a high sales velocity.
func TrendingScore(p Product, now time.Time) float64 {
	days := ageInDays(p.CreatedAt, now)

	recency := math.Max(0, 100-float64(days)/30*100)
	velocity := nonNegative(p.SoldCount) / float64(max(days, 1)) * 10

	score := recency + velocity
	if p.IsOnSale {
		score += 20
	}
	if p.IsBestSeller {
		score += 30
	}
	return clamp(score, 0, 100)
}

// RelevanceScore rewards availability, discount depth and listing completeness.
func RelevanceScore(p Product) float64 {
	var score float64

	switch {
	case p.Stock > 10:
		score += 40
	case p.Stock > 0 || p.InStock:
		score += 30
	}

	score += math.Min(30, DiscountPercent(p)*0.6)

	if len(p.Images) >= 1 {
		score += 10
	}
	if len(p.Images) >= 3 {
		score += 5
	}
	if p.Description != "" {
		score += 5
	}
	if len(p.Colors) > 0 {
		score += 5
	}
	if len(p.Sizes) > 0 {
		score += 5
	}
	return clamp(score, 0, 100)
}

// FeaturedScore is the blend used by the default sort.
func FeaturedScore(p Product, now time.Time) float64 {
	return 0.4*PopularityScore(p) + 0.3*TrendingScore(p, now) + 0.3*RelevanceScore(p)
}

// DiscountPercent returns how far price sits below compareAtPrice, in percent.
func DiscountPercent(p Product) float64 {
	if p.CompareAtPrice == nil {
		return 0
	}
	compare := *p.CompareAtPrice
	if compare <= 0 || compare <= p.Price || p.Price < 0 {
		return 0
	}
	return (compare - p.Price) / compare * 100
}

func ageInDays(createdAt, now time.Time) int {
	if createdAt.IsZero() || !now.After(createdAt) {
		return 0
	}
	return int(now.Sub(createdAt).Hours() / 24)
}

func nonNegative(n int) float64 {
	if n < 0 {
		return 0
	}
	return float64(n)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
