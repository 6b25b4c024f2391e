package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Table layout expected (see cmd/app schema):
//   id text primary key, name, slug unique, description, category,
//   price numeric, compare_at_price numeric null, stock int, colors jsonb,
//   sizes text[], material, brand, collection, tags text[], images text[],
//   status, sold_count, views, wishlist_count, rating numeric null,
//   is_on_sale, is_best_seller, is_new, in_stock, created_at, updated_at

type PostgresRepository struct {
	db *sql.DB
}

const (
	productColumns = `id, name, slug, description, category, price, compare_at_price, stock, colors,
		sizes, material, brand, collection, tags, images, status, sold_count, views, wishlist_count,
		rating, is_on_sale, is_best_seller, is_new, in_stock, created_at, updated_at`

	insertProductQuery = `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
		RETURNING ` + productColumns

	updateProductQuery = `
		UPDATE products
		SET name=$2, slug=$3, description=$4, category=$5, price=$6, compare_at_price=$7, stock=$8,
			colors=$9, sizes=$10, material=$11, brand=$12, collection=$13, tags=$14, images=$15,
			status=$16, rating=$17, is_on_sale=$18, is_best_seller=$19, is_new=$20, in_stock=$21,
			updated_at=$22
		WHERE id=$1
		RETURNING ` + productColumns

	upsertProductQuery = `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
		ON CONFLICT (slug) DO UPDATE
		SET name=EXCLUDED.name, description=EXCLUDED.description, category=EXCLUDED.category,
			price=EXCLUDED.price, compare_at_price=EXCLUDED.compare_at_price, stock=EXCLUDED.stock,
			colors=EXCLUDED.colors, sizes=EXCLUDED.sizes, material=EXCLUDED.material,
			brand=EXCLUDED.brand, collection=EXCLUDED.collection, tags=EXCLUDED.tags,
			images=EXCLUDED.images, status=EXCLUDED.status, rating=EXCLUDED.rating,
			is_on_sale=EXCLUDED.is_on_sale, is_best_seller=EXCLUDED.is_best_seller,
			is_new=EXCLUDED.is_new, in_stock=EXCLUDED.in_stock, updated_at=EXCLUDED.updated_at
		RETURNING ` + productColumns + `, (xmax = 0) AS inserted`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC`, string(f.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	args, err := insertArgs(p)
	if err != nil {
		return Product{}, err
	}
	out, err := scanProduct(r.db.QueryRowContext(ctx, insertProductQuery, args...))
	if err != nil {
		return Product{}, mapPgError(err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p Product) (Product, error) {
	colors, err := json.Marshal(colorsOrEmpty(p.Colors))
	if err != nil {
		return Product{}, fmt.Errorf("encode colors: %w", err)
	}
	out, err := scanProduct(r.db.QueryRowContext(ctx, updateProductQuery,
		p.ID, p.Name, p.Slug, p.Description, p.Category, p.Price, nullFloat(p.CompareAtPrice), p.Stock,
		colors, pq.Array(p.Sizes), p.Material, p.Brand, p.Collection, pq.Array(p.Tags), pq.Array(p.Images),
		string(p.Status), nullFloat(p.Rating), p.IsOnSale, p.IsBestSeller, p.IsNew, p.InStock, p.UpdatedAt))
	if err != nil {
		return Product{}, mapPgError(err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM products WHERE id = $1`, id)
}

func (r *PostgresRepository) IncrementViews(ctx context.Context, id string) error {
	return r.execOne(ctx, `UPDATE products SET views = views + 1 WHERE id = $1`, id)
}

func (r *PostgresRepository) AdjustWishlist(ctx context.Context, id string, delta int) error {
	return r.execOne(ctx, `UPDATE products SET wishlist_count = GREATEST(wishlist_count + $2, 0) WHERE id = $1`, id, delta)
}

func (r *PostgresRepository) RecordSale(ctx context.Context, id string, qty int) error {
	return r.execOne(ctx, `UPDATE products SET sold_count = sold_count + $2, stock = GREATEST(stock - $2, 0) WHERE id = $1`, id, qty)
}

func (r *PostgresRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM products WHERE category <> '' GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		out[category] = count
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpsertBySlug(ctx context.Context, p Product) (Product, bool, error) {
	args, err := insertArgs(p)
	if err != nil {
		return Product{}, false, err
	}
	var inserted bool
	out, err := scanProductWith(r.db.QueryRowContext(ctx, upsertProductQuery, args...), &inserted)
	if err != nil {
		return Product{}, false, mapPgError(err)
	}
	return out, inserted, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return ErrNotFound
	}
	return nil
}

func insertArgs(p Product) ([]any, error) {
	colors, err := json.Marshal(colorsOrEmpty(p.Colors))
	if err != nil {
		return nil, fmt.Errorf("encode colors: %w", err)
	}
	return []any{
		p.ID, p.Name, p.Slug, p.Description, p.Category, p.Price, nullFloat(p.CompareAtPrice), p.Stock, colors,
		pq.Array(p.Sizes), p.Material, p.Brand, p.Collection, pq.Array(p.Tags), pq.Array(p.Images),
		string(p.Status), p.SoldCount, p.Views, p.WishlistCount, nullFloat(p.Rating),
		p.IsOnSale, p.IsBestSeller, p.IsNew, p.InStock, p.CreatedAt, p.UpdatedAt,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	return scanProductWith(row)
}

func scanProductWith(row rowScanner, extra ...any) (Product, error) {
	var (
		p          Product
		compareAt  sql.NullFloat64
		rating     sql.NullFloat64
		colors     []byte
		status     string
		sizes      pq.StringArray
		tags       pq.StringArray
		images     pq.StringArray
		desc       sql.NullString
		material   sql.NullString
		brand      sql.NullString
		collection sql.NullString
	)
	dest := []any{
		&p.ID, &p.Name, &p.Slug, &desc, &p.Category, &p.Price, &compareAt, &p.Stock, &colors,
		&sizes, &material, &brand, &collection, &tags, &images, &status, &p.SoldCount, &p.Views,
		&p.WishlistCount, &rating, &p.IsOnSale, &p.IsBestSeller, &p.IsNew, &p.InStock, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Product{}, err
	}
	if len(colors) > 0 {
		if err := json.Unmarshal(colors, &p.Colors); err != nil {
			return Product{}, fmt.Errorf("decode colors for product %s: %w", p.ID, err)
		}
	}
	if compareAt.Valid {
		p.CompareAtPrice = &compareAt.Float64
	}
	if rating.Valid {
		p.Rating = &rating.Float64
	}
	p.Description = desc.String
	p.Material = material.String
	p.Brand = brand.String
	p.Collection = collection.String
	p.Status = Status(status)
	p.Colors = colorsOrEmpty(p.Colors)
	p.Sizes = stringsOrEmpty(sizes)
	p.Tags = stringsOrEmpty(tags)
	p.Images = stringsOrEmpty(images)
	return p, nil
}

func colorsOrEmpty(c []Color) []Color {
	if c == nil {
		return []Color{}
	}
	return c
}

func stringsOrEmpty(a pq.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func mapPgError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateSlug
	}
	return err
}
