package metaobject

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Table layout expected:
//   id text primary key,
//   type text not null,
//   code text not null,
//   name text not null,
//   value text,
//   is_active boolean not null default true,
//   sort_order int not null default 0,
//   created_at timestamptz, updated_at timestamptz,
//   unique (type, code)

type PostgresRepository struct {
	db *sql.DB
}

const (
	selectMetaObjectColumns = `id, type, code, name, COALESCE(value, ''), is_active, sort_order, created_at, updated_at`

	insertMetaObjectQuery = `
		INSERT INTO meta_objects (id, type, code, name, value, is_active, sort_order, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING ` + selectMetaObjectColumns

	updateMetaObjectQuery = `
		UPDATE meta_objects
		SET type=$2, code=$3, name=$4, value=$5, is_active=$6, sort_order=$7, updated_at=$8
		WHERE id=$1
		RETURNING ` + selectMetaObjectColumns
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]MetaObject, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectMetaObjectColumns+` FROM meta_objects
		WHERE ($1 = '' OR type = $1) AND (NOT $2 OR is_active)
		ORDER BY type, sort_order, name`, string(f.Type), f.ActiveOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MetaObject, 0)
	for rows.Next() {
		m, err := scanMetaObject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (MetaObject, error) {
	m, err := scanMetaObject(r.db.QueryRowContext(ctx, `SELECT `+selectMetaObjectColumns+` FROM meta_objects WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return MetaObject{}, ErrNotFound
	}
	return m, err
}

func (r *PostgresRepository) Create(ctx context.Context, m MetaObject) (MetaObject, error) {
	out, err := scanMetaObject(r.db.QueryRowContext(ctx, insertMetaObjectQuery,
		m.ID, string(m.Type), m.Code, m.Name, m.Value, m.IsActive, m.SortOrder, m.CreatedAt, m.UpdatedAt))
	if err != nil {
		return MetaObject{}, mapPgError(err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, m MetaObject) (MetaObject, error) {
	out, err := scanMetaObject(r.db.QueryRowContext(ctx, updateMetaObjectQuery,
		m.ID, string(m.Type), m.Code, m.Name, m.Value, m.IsActive, m.SortOrder, m.UpdatedAt))
	if err != nil {
		return MetaObject{}, mapPgError(err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meta_objects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMetaObject(row rowScanner) (MetaObject, error) {
	var (
		m       MetaObject
		objType string
	)
	if err := row.Scan(&m.ID, &objType, &m.Code, &m.Name, &m.Value, &m.IsActive, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return MetaObject{}, err
	}
	m.Type = Type(objType)
	return m, nil
}

func mapPgError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
