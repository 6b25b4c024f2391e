package category

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Table layout expected:
//   id text primary key,
//   name text not null,
//   slug text not null unique,
//   description text,
//   parent_id text references categories(id),
//   status text not null default 'active',
//   sort_order int not null default 0,
//   product_count int not null default 0,
//   created_at timestamptz, updated_at timestamptz

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

const selectCategoryColumns = `id, name, slug, COALESCE(description, ''), parent_id, status, sort_order, product_count, created_at, updated_at`

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectCategoryColumns+` FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, `SELECT `+selectCategoryColumns+` FROM categories WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepository) Create(ctx context.Context, c Category) (Category, error) {
	out, err := scanCategory(r.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, slug, description, parent_id, status, sort_order, product_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9)
		RETURNING `+selectCategoryColumns,
		c.ID, c.Name, c.Slug, c.Description, c.ParentID, string(c.Status), c.SortOrder, c.CreatedAt, c.UpdatedAt))
	if err != nil {
		return Category{}, mapPgError(err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c Category) (Category, error) {
	out, err := scanCategory(r.db.QueryRowContext(ctx, `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, parent_id = $5, status = $6, sort_order = $7, updated_at = $8
		WHERE id = $1
		RETURNING `+selectCategoryColumns,
		c.ID, c.Name, c.Slug, c.Description, c.ParentID, string(c.Status), c.SortOrder, c.UpdatedAt))
	if err != nil {
		return Category{}, mapPgError(err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) HasChildren(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE parent_id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) SetProductCounts(ctx context.Context, counts map[string]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE categories SET product_count = 0`); err != nil {
		return err
	}
	for slug, n := range counts {
		if _, err := tx.ExecContext(ctx, `UPDATE categories SET product_count = $2 WHERE slug = $1`, slug, n); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (Category, error) {
	var (
		c      Category
		parent sql.NullString
		status string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &parent, &status, &c.SortOrder, &c.ProductCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Category{}, err
	}
	if parent.Valid {
		c.ParentID = &parent.String
	}
	c.Status = Status(status)
	return c, nil
}

func mapPgError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicateSlug
		case "23503":
			return ErrParentNotFound
		}
	}
	return err
}
