package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/nowiht/storefront-backend/internal/cache"
	"github.com/nowiht/storefront-backend/internal/metaobject"
	"github.com/nowiht/storefront-backend/internal/metrics"
)

const (
	catalogKey     = "catalog:published"
	catalogPattern = "catalog:*"
)

// ValidationError carries per-field messages for a rejected product.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

type Service struct {
	repo    Repository
	cache   cache.Store
	metrics *metrics.Metrics
	group   singleflight.Group
	now     func() time.Time
}

// NewService wires the product service. A nil store disables catalog caching;
// a nil m disables metrics.
func NewService(repo Repository, store cache.Store, m *metrics.Metrics) *Service {
	if store == nil {
		store = cache.Noop{}
	}
	return &Service{repo: repo, cache: store, metrics: m, now: time.Now}
}

// Catalog returns every published product, served from the cache when possible.
// Concurrent misses share a single repository load.
func (s *Service) Catalog(ctx context.Context) ([]Product, error) {
	var cached []Product
	hit, err := s.cache.Get(ctx, catalogKey, &cached)
	if err != nil {
		zap.L().Warn("catalog cache read failed", zap.Error(err))
	}
	if hit {
		s.metrics.CatalogCache(true)
		return cached, nil
	}
	s.metrics.CatalogCache(false)

	v, err, _ := s.group.Do(catalogKey, func() (any, error) {
		list, err := s.repo.List(ctx, ListFilter{Status: StatusPublished})
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, catalogKey, list); err != nil {
			zap.L().Warn("catalog cache write failed", zap.Error(err))
		}
		return list, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return v.([]Product), nil
}

// SearchQuery describes one catalog listing request.
type SearchQuery struct {
	Filter Filter
	Sort   SortOption
	Page   int
	Limit  int
}

func (s *Service) Search(ctx context.Context, q SearchQuery) (Page, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return Page{}, err
	}
	list := AdvancedSort(ApplyFilter(catalog, q.Filter), q.Sort, s.now())
	return Paginate(list, q.Page, q.Limit), nil
}

// Top returns the first n published products under option.
func (s *Service) Top(ctx context.Context, option SortOption, n int, f Filter) ([]Product, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	list := AdvancedSort(ApplyFilter(catalog, f), option, s.now())
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	return list, nil
}

// View returns a published product by slug and counts the view. A failed
// view increment does not fail the read.
func (s *Service) View(ctx context.Context, productSlug string) (Product, error) {
	p, err := s.repo.GetBySlug(ctx, productSlug)
	if err != nil {
		return Product{}, err
	}
	if p.Status != StatusPublished {
		return Product{}, ErrNotFound
	}
	if err := s.repo.IncrementViews(ctx, p.ID); err != nil {
		zap.L().Warn("increment product views failed", zap.String("product_id", p.ID), zap.Error(err))
	} else {
		p.Views++
	}
	return p, nil
}

// Related returns products similar to the one identified by id or slug.
func (s *Service) Related(ctx context.Context, idOrSlug string, limit int) ([]Product, error) {
	base, err := s.resolve(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return RelatedProducts(base, catalog, limit), nil
}

// YouMayAlsoLike suggests products for a set of viewed or carted product ids.
// Unknown ids are ignored.
func (s *Service) YouMayAlsoLike(ctx context.Context, ids []string, limit int) ([]Product, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	bases := make([]Product, 0, len(ids))
	for _, p := range catalog {
		if _, ok := wanted[p.ID]; ok {
			bases = append(bases, p)
		}
	}
	return YouMayAlsoLike(bases, catalog, limit), nil
}

func (s *Service) resolve(ctx context.Context, idOrSlug string) (Product, error) {
	if _, err := uuid.Parse(idOrSlug); err == nil {
		p, err := s.repo.GetByID(ctx, idOrSlug)
		if err == nil || !errors.Is(err, ErrNotFound) {
			return p, err
		}
	}
	return s.repo.GetBySlug(ctx, idOrSlug)
}

// List returns products of every status for the back office.
func (s *Service) List(ctx context.Context, status Status) ([]Product, error) {
	return s.repo.List(ctx, ListFilter{Status: status})
}

func (s *Service) GetByID(ctx context.Context, id string) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Product, error) {
	p, err := s.build(in)
	if err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Product, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	p := existing
	in.applyTo(&p)
	if in.Slug != "" {
		p.Slug = slug.Make(in.Slug)
	}
	fillColorHex(p.Colors)
	if errs := validateProduct(p); len(errs) > 0 {
		return Product{}, &ValidationError{Fields: errs}
	}
	p.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// AdjustWishlist moves a product's wishlist counter by delta.
func (s *Service) AdjustWishlist(ctx context.Context, id string, delta int) error {
	return s.repo.AdjustWishlist(ctx, id, delta)
}

// RecordSale adds qty to the product's sold count.
func (s *Service) RecordSale(ctx context.Context, id string, qty int) error {
	return s.repo.RecordSale(ctx, id, qty)
}

// CountByCategory returns the number of products per category slug.
func (s *Service) CountByCategory(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByCategory(ctx)
}

// Upsert creates or replaces a product keyed by its slug.
func (s *Service) Upsert(ctx context.Context, in Input) (Product, bool, error) {
	p, err := s.build(in)
	if err != nil {
		return Product{}, false, err
	}
	return s.repo.UpsertBySlug(ctx, p)
}

// ImportResult summarizes a spreadsheet import.
type ImportResult struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Errors  []RowError `json:"errors"`
}

// RowError reports a spreadsheet row that could not be imported. Row is 1-based
// and counts the header.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Import upserts every valid row of an .xlsx workbook. Invalid rows are
// reported and skipped.
func (s *Service) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	rows, parseErrs, err := ReadXLSX(r)
	if err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{Errors: parseErrs}
	for _, row := range rows {
		_, created, err := s.Upsert(ctx, row.Input)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: row.Row, Message: errorMessage(err)})
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}
	if res.Created+res.Updated > 0 {
		s.invalidate(ctx)
	}
	if res.Errors == nil {
		res.Errors = []RowError{}
	}
	return res, nil
}

// Export renders every product as an .xlsx workbook.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	list, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	return WriteXLSX(list)
}

func (s *Service) build(in Input) (Product, error) {
	var p Product
	in.applyTo(&p)
	if in.InStock == nil {
		p.InStock = p.Stock > 0
	}
	p.Slug = slug.Make(in.Slug)
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
	fillColorHex(p.Colors)
	if errs := validateProduct(p); len(errs) > 0 {
		return Product{}, &ValidationError{Fields: errs}
	}
	now := s.now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, catalogPattern); err != nil {
		zap.L().Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

func fillColorHex(colors []Color) {
	for i := range colors {
		colors[i].Name = strings.TrimSpace(colors[i].Name)
		if colors[i].Hex != "" {
			continue
		}
		if hex, ok := metaobject.ColorHex(colors[i].Name); ok {
			colors[i].Hex = hex
		}
	}
}

func errorMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		parts := make([]string, 0, len(ve.Fields))
		for _, msg := range ve.Fields {
			parts = append(parts, msg)
		}
		sort.Strings(parts)
		return strings.Join(parts, "; ")
	}
	return err.Error()
}
