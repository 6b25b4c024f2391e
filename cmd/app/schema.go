package main

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied on every boot; each statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id text PRIMARY KEY,
		email text NOT NULL,
		password text NOT NULL,
		first_name text,
		last_name text,
		phone text,
		role text NOT NULL DEFAULT 'customer',
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email))`,

	`CREATE TABLE IF NOT EXISTS categories (
		id text PRIMARY KEY,
		name text NOT NULL,
		slug text NOT NULL UNIQUE,
		description text,
		parent_id text REFERENCES categories(id),
		status text NOT NULL DEFAULT 'active',
		sort_order int NOT NULL DEFAULT 0,
		product_count int NOT NULL DEFAULT 0,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id text PRIMARY KEY,
		name text NOT NULL,
		slug text NOT NULL UNIQUE,
		description text,
		category text,
		price numeric(12,2) NOT NULL CHECK (price >= 0),
		compare_at_price numeric(12,2),
		stock int NOT NULL DEFAULT 0 CHECK (stock >= 0),
		colors jsonb NOT NULL DEFAULT '[]',
		sizes text[] NOT NULL DEFAULT '{}',
		material text,
		brand text,
		collection text,
		tags text[] NOT NULL DEFAULT '{}',
		images text[] NOT NULL DEFAULT '{}',
		status text NOT NULL DEFAULT 'draft',
		sold_count int NOT NULL DEFAULT 0,
		views int NOT NULL DEFAULT 0,
		wishlist_count int NOT NULL DEFAULT 0,
		rating numeric(3,2),
		is_on_sale boolean NOT NULL DEFAULT false,
		is_best_seller boolean NOT NULL DEFAULT false,
		is_new boolean NOT NULL DEFAULT false,
		in_stock boolean NOT NULL DEFAULT true,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS products_category_idx ON products (category)`,

	`CREATE TABLE IF NOT EXISTS meta_objects (
		id text PRIMARY KEY,
		type text NOT NULL,
		code text NOT NULL,
		name text NOT NULL,
		value text,
		is_active boolean NOT NULL DEFAULT true,
		sort_order int NOT NULL DEFAULT 0,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now(),
		UNIQUE (type, code)
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id text PRIMARY KEY,
		order_number text NOT NULL UNIQUE,
		user_id text,
		customer_email text NOT NULL,
		customer_name text,
		customer_phone text,
		shipping_address jsonb NOT NULL,
		subtotal numeric(12,2) NOT NULL,
		discount numeric(12,2) NOT NULL DEFAULT 0,
		promo_code text,
		shipping_cost numeric(12,2) NOT NULL DEFAULT 0,
		tax numeric(12,2) NOT NULL DEFAULT 0,
		total numeric(12,2) NOT NULL,
		currency text NOT NULL,
		status text NOT NULL,
		payment_status text NOT NULL,
		payment_reference text,
		carrier text,
		tracking_number text,
		created_at timestamptz NOT NULL,
		updated_at timestamptz NOT NULL,
		shipped_at timestamptz,
		delivered_at timestamptz,
		cancelled_at timestamptz,
		deleted_at timestamptz
	)`,
	`CREATE INDEX IF NOT EXISTS orders_customer_email_idx ON orders (lower(customer_email))`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id text PRIMARY KEY,
		order_id text NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id text NOT NULL,
		name text NOT NULL,
		image text,
		size text,
		color text,
		unit_price numeric(12,2) NOT NULL,
		quantity int NOT NULL CHECK (quantity > 0),
		total numeric(12,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_returns (
		id text PRIMARY KEY,
		order_id text NOT NULL REFERENCES orders(id),
		reason text,
		status text NOT NULL,
		created_at timestamptz NOT NULL,
		updated_at timestamptz NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS addresses (
		id text PRIMARY KEY,
		owner_email text NOT NULL,
		title text,
		full_name text NOT NULL,
		phone text,
		line1 text NOT NULL,
		line2 text,
		city text NOT NULL,
		district text,
		postal_code text,
		country char(2) NOT NULL,
		is_default boolean NOT NULL DEFAULT false,
		created_at timestamptz NOT NULL,
		updated_at timestamptz NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS addresses_one_default ON addresses (lower(owner_email)) WHERE is_default`,

	`CREATE TABLE IF NOT EXISTS user_preferences (
		owner_email text PRIMARY KEY,
		language text NOT NULL,
		currency text NOT NULL,
		newsletter boolean NOT NULL DEFAULT false,
		sms_notifications boolean NOT NULL DEFAULT false,
		preferred_sizes text[] NOT NULL DEFAULT '{}',
		fit_preference text NOT NULL,
		updated_at timestamptz NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS wishlist_items (
		owner_email text NOT NULL,
		product_id text NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		created_at timestamptz NOT NULL,
		PRIMARY KEY (owner_email, product_id)
	)`,

	`CREATE TABLE IF NOT EXISTS uploads (
		key text PRIMARY KEY,
		content_type text NOT NULL,
		data bytea NOT NULL,
		size int NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
