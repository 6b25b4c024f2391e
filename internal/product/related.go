package product

import (
	"sort"
	"strings"
)

const DefaultRelatedLimit = 8

// Similarity scores how alike candidate is to base. The material check only
// asks whether candidate's material contains base's, so the score is not
// symmetric.
func Similarity(base, candidate Product) float64 {
	var score float64

	if base.Category != "" && strings.EqualFold(base.Category, candidate.Category) {
		score += 40
	}
	if candidate.Price >= base.Price*0.8 && candidate.Price <= base.Price*1.2 {
		score += 25
	}

	baseColors := make(map[string]struct{}, len(base.Colors))
	for _, c := range base.Colors {
		baseColors[strings.ToLower(strings.TrimSpace(c.Name))] = struct{}{}
	}
	var colorPoints float64
	for _, c := range candidate.Colors {
		if _, ok := baseColors[strings.ToLower(strings.TrimSpace(c.Name))]; ok {
			colorPoints += 5
		}
	}
	score += min(colorPoints, 15)

	baseSizes := make(map[string]struct{}, len(base.Sizes))
	for _, s := range base.Sizes {
		baseSizes[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	var sizePoints float64
	for _, s := range candidate.Sizes {
		if _, ok := baseSizes[strings.ToLower(strings.TrimSpace(s))]; ok {
			sizePoints += 2
		}
	}
	score += min(sizePoints, 10)

	if base.Material != "" && strings.Contains(strings.ToLower(candidate.Material), strings.ToLower(base.Material)) {
		score += 5
	}
	if base.Brand != "" && strings.EqualFold(base.Brand, candidate.Brand) {
		score += 3
	}
	if base.IsOnSale == candidate.IsOnSale {
		score += 2
	}
	return score
}

type scored struct {
	p          Product
	similarity float64
	popularity float64
}

// RelatedProducts ranks catalog by similarity to base, excluding base itself.
func RelatedProducts(base Product, catalog []Product, limit int) []Product {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	items := make([]scored, 0, len(catalog))
	for _, p := range catalog {
		if p.ID == base.ID {
			continue
		}
		items = append(items, scored{p: p, similarity: Similarity(base, p)})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].similarity > items[j].similarity })
	return topN(items, limit)
}

// YouMayAlsoLike ranks catalog by its best similarity to any of bases,
// breaking ties by popularity. Products in bases are never suggested.
func YouMayAlsoLike(bases []Product, catalog []Product, limit int) []Product {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	exclude := make(map[string]struct{}, len(bases))
	for _, b := range bases {
		exclude[b.ID] = struct{}{}
	}

	items := make([]scored, 0, len(catalog))
	for _, p := range catalog {
		if _, skip := exclude[p.ID]; skip {
			continue
		}
		best := 0.0
		for _, b := range bases {
			best = max(best, Similarity(b, p))
		}
		items = append(items, scored{p: p, similarity: best, popularity: PopularityScore(p)})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].similarity != items[j].similarity {
			return items[i].similarity > items[j].similarity
		}
		return items[i].popularity > items[j].popularity
	})
	return topN(items, limit)
}

func topN(items []scored, n int) []Product {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]Product, len(items))
	for i, it := range items {
		out[i] = it.p
	}
	return out
}
