package preferences

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/nowiht/storefront-backend/internal/sizing"
)

// Table layout expected:
//   owner_email text primary key,
//   language text not null, currency text not null,
//   newsletter boolean not null, sms_notifications boolean not null,
//   preferred_sizes text[] not null default '{}',
//   fit_preference text not null,
//   updated_at timestamptz

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, owner string) (Preferences, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT owner_email, language, currency, newsletter, sms_notifications, preferred_sizes, fit_preference, updated_at
		FROM user_preferences WHERE owner_email = lower($1)`, owner)
	p, err := scanPreferences(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Preferences{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) Upsert(ctx context.Context, p Preferences) (Preferences, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO user_preferences (owner_email, language, currency, newsletter, sms_notifications, preferred_sizes, fit_preference, updated_at)
		VALUES (lower($1), $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner_email) DO UPDATE SET
			language = EXCLUDED.language,
			currency = EXCLUDED.currency,
			newsletter = EXCLUDED.newsletter,
			sms_notifications = EXCLUDED.sms_notifications,
			preferred_sizes = EXCLUDED.preferred_sizes,
			fit_preference = EXCLUDED.fit_preference,
			updated_at = EXCLUDED.updated_at
		RETURNING owner_email, language, currency, newsletter, sms_notifications, preferred_sizes, fit_preference, updated_at`,
		p.OwnerEmail, string(p.Language), p.Currency, p.Newsletter, p.SMSNotifications, pq.Array(p.PreferredSizes), string(p.FitPreference), p.UpdatedAt)
	return scanPreferences(row)
}

func scanPreferences(row *sql.Row) (Preferences, error) {
	var (
		p     Preferences
		lang  string
		fit   string
		sizes pq.StringArray
	)
	if err := row.Scan(&p.OwnerEmail, &lang, &p.Currency, &p.Newsletter, &p.SMSNotifications, &sizes, &fit, &p.UpdatedAt); err != nil {
		return Preferences{}, err
	}
	p.Language = Language(lang)
	p.FitPreference = sizing.Fit(fit)
	p.PreferredSizes = []string(sizes)
	if p.PreferredSizes == nil {
		p.PreferredSizes = []string{}
	}
	return p, nil
}
