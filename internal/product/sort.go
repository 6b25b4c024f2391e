package product

import (
	"sort"
	"strings"
	"time"
)

// SortOption names a catalog ordering.
type SortOption string

const (
	SortFeatured    SortOption = "featured"
	SortPopular     SortOption = "popular"
	SortTrending    SortOption = "trending"
	SortRelevance   SortOption = "relevance"
	SortNewest      SortOption = "newest"
	SortOldest      SortOption = "oldest"
	SortPriceAsc    SortOption = "price-asc"
	SortPriceDesc   SortOption = "price-desc"
	SortNameAsc     SortOption = "name-asc"
	SortNameDesc    SortOption = "name-desc"
	SortRating      SortOption = "rating"
	SortBestSelling SortOption = "best-selling"
	SortDiscount    SortOption = "discount"
)

// SortOptions lists every supported option, default first.
var SortOptions = []SortOption{
	SortFeatured, SortPopular, SortTrending, SortRelevance, SortNewest, SortOldest,
	SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc, SortRating, SortBestSelling, SortDiscount,
}

// ParseSortOption maps raw to a known option, falling back to featured.
func ParseSortOption(raw string) SortOption {
	opt := SortOption(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range SortOptions {
		if opt == known {
			return opt
		}
	}
	return SortFeatured
}

type sortable struct {
	p     Product
	score float64
	name  string
}

// AdvancedSort returns a re-ordered copy of list. Equal keys keep their input order.
func AdvancedSort(list []Product, option SortOption, now time.Time) []Product {
	items := make([]sortable, len(list))
	for i, p := range list {
		items[i] = sortable{p: p}
	}

	var less func(a, b sortable) bool
	switch ParseSortOption(string(option)) {
	case SortPopular:
		scoreAll(items, PopularityScore)
		less = byScoreDesc
	case SortTrending:
		scoreAll(items, func(p Product) float64 { return TrendingScore(p, now) })
		less = byScoreDesc
	case SortRelevance:
		scoreAll(items, RelevanceScore)
		less = byScoreDesc
	case SortNewest:
		less = func(a, b sortable) bool { return a.p.CreatedAt.After(b.p.CreatedAt) }
	case SortOldest:
		less = func(a, b sortable) bool { return a.p.CreatedAt.Before(b.p.CreatedAt) }
	case SortPriceAsc:
		less = func(a, b sortable) bool { return a.p.Price < b.p.Price }
	case SortPriceDesc:
		less = func(a, b sortable) bool { return a.p.Price > b.p.Price }
	case SortNameAsc:
		lowerNames(items)
		less = func(a, b sortable) bool { return a.name < b.name }
	case SortNameDesc:
		lowerNames(items)
		less = func(a, b sortable) bool { return a.name > b.name }
	case SortRating:
		scoreAll(items, func(p Product) float64 {
			if p.Rating == nil {
				return 0
			}
			return *p.Rating
		})
		less = byScoreDesc
	case SortBestSelling:
		scoreAll(items, func(p Product) float64 { return float64(p.SoldCount) })
		less = byScoreDesc
	case SortDiscount:
		scoreAll(items, DiscountPercent)
		less = byScoreDesc
	default:
		scoreAll(items, func(p Product) float64 { return FeaturedScore(p, now) })
		less = byScoreDesc
	}

	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })

	out := make([]Product, len(items))
	for i, it := range items {
		out[i] = it.p
	}
	return out
}

func scoreAll(items []sortable, fn func(Product) float64) {
	for i := range items {
		items[i].score = fn(items[i].p)
	}
}

func lowerNames(items []sortable) {
	for i := range items {
		items[i].name = strings.ToLower(items[i].p.Name)
	}
}

func byScoreDesc(a, b sortable) bool { return a.score > b.score }
