package product

import (
	"strings"
)

// Filter narrows the catalog. Zero values do not filter.
type Filter struct {
	Category   string
	MinPrice   *float64
	MaxPrice   *float64
	Colors     []string
	Sizes      []string
	Material   string
	Brand      string
	Collection string
	Tag        string
	InStock    *bool
	OnSale     *bool
	IsNew      *bool
	Query      string
}

// ApplyFilter returns the products of list that match every set criterion.
func ApplyFilter(list []Product, f Filter) []Product {
	out := make([]Product, 0, len(list))
	for _, p := range list {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f Filter) matches(p Product) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if len(f.Colors) > 0 {
		names := make([]string, len(p.Colors))
		for i, c := range p.Colors {
			names[i] = c.Name
		}
		if !containsAnyFold(names, f.Colors) {
			return false
		}
	}
	if len(f.Sizes) > 0 && !containsAnyFold(p.Sizes, f.Sizes) {
		return false
	}
	if f.Material != "" && !strings.Contains(strings.ToLower(p.Material), strings.ToLower(f.Material)) {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if f.Collection != "" && !strings.EqualFold(p.Collection, f.Collection) {
		return false
	}
	if f.Tag != "" && !containsAnyFold(p.Tags, []string{f.Tag}) {
		return false
	}
	if f.InStock != nil && p.InStock != *f.InStock {
		return false
	}
	if f.OnSale != nil && p.IsOnSale != *f.OnSale {
		return false
	}
	if f.IsNew != nil && p.IsNew != *f.IsNew {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" && !matchesQuery(p, q) {
		return false
	}
	return true
}

func matchesQuery(p Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Brand), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func containsAnyFold(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}

const (
	DefaultPageSize = 24
	MaxPageSize     = 100
)

// Page is one slice of a result set.
type Page struct {
	Items      []Product `json:"items"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
}

// Paginate cuts list into pages of limit items; page is 1-based.
func Paginate(list []Product, page, limit int) Page {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	total := len(list)
	totalPages := (total + limit - 1) / limit

	start := total
	if page <= totalPages {
		start = (page - 1) * limit
	}
	end := min(start+limit, total)

	items := make([]Product, end-start)
	copy(items, list[start:end])
	return Page{Items: items, Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
