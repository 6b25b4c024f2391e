package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Table layout expected:
//   id text primary key,
//   email text not null unique,
//   password text not null,
//   first_name text, last_name text, phone text,
//   role text not null default 'customer',
//   created_at timestamptz, updated_at timestamptz

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	selectUserColumns = `id, email, password, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(phone, ''), role, created_at, updated_at`

	insertUserQuery = `
		INSERT INTO users (id, email, password, first_name, last_name, phone, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + selectUserColumns
	updateUserQuery = `
		UPDATE users
		SET first_name = $2,
			last_name = $3,
			phone = $4,
			role = $5,
			password = CASE WHEN $6 = '' THEN password ELSE $6 END,
			updated_at = $7
		WHERE id = $1
		RETURNING ` + selectUserColumns
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectUserColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+selectUserColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+selectUserColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	out, err := scanUser(r.db.QueryRowContext(ctx, insertUserQuery,
		u.ID, u.Email, u.Password, u.FirstName, u.LastName, u.Phone, string(u.Role), u.CreatedAt, u.UpdatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u User) (User, error) {
	out, err := scanUser(r.db.QueryRowContext(ctx, updateUserQuery,
		u.ID, u.FirstName, u.LastName, u.Phone, string(u.Role), u.Password, u.UpdatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return out, err
}

func scanUser(scanner rowScanner) (User, error) {
	var (
		u    User
		role string
	)
	if err := scanner.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Phone, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	u.Role = Role(role)
	return u, nil
}
