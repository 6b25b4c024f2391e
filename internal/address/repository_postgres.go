package address

import (
	"context"
	"database/sql"
	"errors"
)

// Table layout expected:
//   id text primary key,
//   owner_email text not null,
//   title text, full_name text not null, phone text,
//   line1 text not null, line2 text, city text not null, district text,
//   postal_code text, country char(2) not null,
//   is_default boolean not null default false,
//   created_at timestamptz, updated_at timestamptz
// plus: create unique index on addresses (owner_email) where is_default

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	selectAddressColumns = `id, owner_email, COALESCE(title, ''), full_name, COALESCE(phone, ''), line1, COALESCE(line2, ''),
		city, COALESCE(district, ''), COALESCE(postal_code, ''), country, is_default, created_at, updated_at`

	clearDefaultQuery = `UPDATE addresses SET is_default = false WHERE lower(owner_email) = lower($1) AND id <> $2 AND is_default`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, owner string) ([]Address, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectAddressColumns+` FROM addresses
		WHERE lower(owner_email) = lower($1)
		ORDER BY is_default DESC, created_at DESC`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx, `SELECT `+selectAddressColumns+` FROM addresses WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepository) Create(ctx context.Context, a Address) (Address, error) {
	return r.write(ctx, a, `
		INSERT INTO addresses (id, owner_email, title, full_name, phone, line1, line2, city, district, postal_code, country, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+selectAddressColumns,
		a.ID, a.OwnerEmail, a.Title, a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.District, a.PostalCode, a.Country, a.IsDefault, a.CreatedAt, a.UpdatedAt)
}

func (r *PostgresRepository) Update(ctx context.Context, a Address) (Address, error) {
	return r.write(ctx, a, `
		UPDATE addresses
		SET title = $2, full_name = $3, phone = $4, line1 = $5, line2 = $6, city = $7, district = $8,
			postal_code = $9, country = $10, is_default = $11, updated_at = $12
		WHERE id = $1
		RETURNING `+selectAddressColumns,
		a.ID, a.Title, a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.District, a.PostalCode, a.Country, a.IsDefault, a.UpdatedAt)
}

// write runs query in a transaction that first clears the owner's other
// default address when a becomes the default.
func (r *PostgresRepository) write(ctx context.Context, a Address, query string, args ...any) (Address, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Address{}, err
	}
	defer tx.Rollback()

	if a.IsDefault {
		if _, err := tx.ExecContext(ctx, clearDefaultQuery, a.OwnerEmail, a.ID); err != nil {
			return Address{}, err
		}
	}
	out, err := scanAddress(tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, err
	}
	return out, tx.Commit()
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAddress(row rowScanner) (Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.OwnerEmail, &a.Title, &a.FullName, &a.Phone, &a.Line1, &a.Line2,
		&a.City, &a.District, &a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
