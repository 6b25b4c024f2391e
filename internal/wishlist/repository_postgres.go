package wishlist

import (
	"context"
	"database/sql"
)

// Table layout expected:
//   owner_email text not null,
//   product_id text not null references products(id) on delete cascade,
//   created_at timestamptz not null,
//   primary key (owner_email, product_id)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, owner string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT owner_email, product_id, created_at FROM wishlist_items
		WHERE owner_email = lower($1)
		ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.OwnerEmail, &it.ProductID, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Add(ctx context.Context, it Item) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO wishlist_items (owner_email, product_id, created_at)
		VALUES (lower($1), $2, $3)
		ON CONFLICT (owner_email, product_id) DO NOTHING`, it.OwnerEmail, it.ProductID, it.CreatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyListed
	}
	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, owner, productID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wishlist_items WHERE owner_email = lower($1) AND product_id = $2`, owner, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotListed
	}
	return nil
}
