package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Table layout expected:
//   orders (
//     id text primary key, order_number text not null unique, user_id text,
//     customer_email text not null, customer_name text, customer_phone text,
//     shipping_address jsonb not null,
//     subtotal numeric(12,2), discount numeric(12,2), promo_code text,
//     shipping_cost numeric(12,2), tax numeric(12,2), total numeric(12,2), currency text,
//     status text not null, payment_status text not null, payment_reference text,
//     carrier text, tracking_number text,
//     created_at timestamptz, updated_at timestamptz, shipped_at timestamptz,
//     delivered_at timestamptz, cancelled_at timestamptz, deleted_at timestamptz)
//   order_items (
//     id text primary key, order_id text references orders(id) on delete cascade,
//     product_id text, name text, image text, size text, color text,
//     unit_price numeric(12,2), quantity int, total numeric(12,2))
//   order_returns (
//     id text primary key, order_id text references orders(id), reason text,
//     status text not null, created_at timestamptz, updated_at timestamptz)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	selectOrderColumns = `id, order_number, COALESCE(user_id, ''), customer_email, COALESCE(customer_name, ''),
		COALESCE(customer_phone, ''), shipping_address, subtotal, discount, COALESCE(promo_code, ''),
		shipping_cost, tax, total, currency, status, payment_status, COALESCE(payment_reference, ''),
		COALESCE(carrier, ''), COALESCE(tracking_number, ''), created_at, updated_at,
		shipped_at, delivered_at, cancelled_at`

	insertOrderQuery = `
		INSERT INTO orders (id, order_number, user_id, customer_email, customer_name, customer_phone,
			shipping_address, subtotal, discount, promo_code, shipping_cost, tax, total, currency,
			status, payment_status, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	insertItemQuery = `
		INSERT INTO order_items (id, order_id, product_id, name, image, size, color, unit_price, quantity, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateOrderQuery = `
		UPDATE orders
		SET status = $2,
			payment_status = $3,
			payment_reference = $4,
			carrier = $5,
			tracking_number = $6,
			updated_at = $7,
			shipped_at = $8,
			delivered_at = $9,
			cancelled_at = $10
		WHERE id = $1 AND status = $11 AND deleted_at IS NULL`

	selectItemsQuery = `
		SELECT id, order_id, product_id, name, COALESCE(image, ''), COALESCE(size, ''), COALESCE(color, ''),
			unit_price, quantity, total
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o Order) error {
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertOrderQuery,
		o.ID, o.OrderNumber, o.UserID, o.CustomerEmail, o.CustomerName, o.CustomerPhone,
		addr, o.Subtotal, o.Discount, o.PromoCode, o.ShippingCost, o.Tax, o.Total, o.Currency,
		string(o.Status), string(o.PaymentStatus), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateNumber
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) InsertItems(ctx context.Context, orderID string, items []Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, it := range items {
		if _, err := tx.ExecContext(ctx, insertItemQuery,
			it.ID, orderID, it.ProductID, it.Name, it.Image, it.Size, it.Color, it.UnitPrice, it.Quantity, it.Total); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Order, error) {
	return r.getOne(ctx, `SELECT `+selectOrderColumns+` FROM orders WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (r *PostgresRepository) GetByNumber(ctx context.Context, number string) (Order, error) {
	return r.getOne(ctx, `SELECT `+selectOrderColumns+` FROM orders WHERE order_number = $1 AND deleted_at IS NULL`, number)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	orders := []Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectOrderColumns+` FROM orders
		WHERE deleted_at IS NULL
			AND ($1 = '' OR lower(customer_email) = lower($1))
			AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`, f.Email, string(f.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) Update(ctx context.Context, o Order, expected Status) (Order, error) {
	res, err := r.db.ExecContext(ctx, updateOrderQuery,
		o.ID, string(o.Status), string(o.PaymentStatus), o.PaymentReference, o.Carrier, o.TrackingNumber,
		o.UpdatedAt, o.ShippedAt, o.DeliveredAt, o.CancelledAt, string(expected))
	if err != nil {
		return Order{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, o.ID); err != nil {
			return Order{}, err
		}
		return Order{}, ErrConcurrentUpdate
	}
	return r.GetByID(ctx, o.ID)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateReturn(ctx context.Context, rr ReturnRequest) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO order_returns (id, order_id, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rr.ID, rr.OrderID, rr.Reason, string(rr.Status), rr.CreatedAt, rr.UpdatedAt)
	return err
}

func (r *PostgresRepository) ResolveReturn(ctx context.Context, orderID string, status ReturnStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE order_returns SET status = $2, updated_at = $3
		WHERE order_id = $1 AND status = 'requested'`, orderID, string(status), at)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListReturns(ctx context.Context, orderID string) ([]ReturnRequest, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, order_id, reason, status, created_at, updated_at
		FROM order_returns WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ReturnRequest, 0)
	for rows.Next() {
		var (
			rr     ReturnRequest
			status string
		)
		if err := rows.Scan(&rr.ID, &rr.OrderID, &rr.Reason, &status, &rr.CreatedAt, &rr.UpdatedAt); err != nil {
			return nil, err
		}
		rr.Status = ReturnStatus(status)
		out = append(out, rr)
	}
	return out, rows.Err()
}

// attachItems loads the items of every order in one query.
func (r *PostgresRepository) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []Item{}
	}

	rows, err := r.db.QueryContext(ctx, selectItemsQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Image, &it.Size, &it.Color,
			&it.UnitPrice, &it.Quantity, &it.Total); err != nil {
			return err
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o                            Order
		addr                         []byte
		status, payment              string
		shipped, delivered, canceled sql.NullTime
	)
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.CustomerEmail, &o.CustomerName, &o.CustomerPhone,
		&addr, &o.Subtotal, &o.Discount, &o.PromoCode, &o.ShippingCost, &o.Tax, &o.Total, &o.Currency,
		&status, &payment, &o.PaymentReference, &o.Carrier, &o.TrackingNumber, &o.CreatedAt, &o.UpdatedAt,
		&shipped, &delivered, &canceled); err != nil {
		return Order{}, err
	}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
			return Order{}, err
		}
	}
	o.Status = Status(status)
	o.PaymentStatus = PaymentStatus(payment)
	o.ShippedAt = timePtr(shipped)
	o.DeliveredAt = timePtr(delivered)
	o.CancelledAt = timePtr(canceled)
	return o, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
