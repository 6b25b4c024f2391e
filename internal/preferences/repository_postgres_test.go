package preferences

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var prefColumns = []string{"owner_email", "language", "currency", "newsletter", "sms_notifications", "preferred_sizes", "fit_preference", "updated_at"}

func TestPostgresGet_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM user_preferences").WithArgs("ayse@example.com").WillReturnRows(sqlmock.NewRows(prefColumns))
	if _, err := NewPostgresRepository(db).Get(context.Background(), "ayse@example.com"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresUpsert_ScansArray(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO user_preferences").
		WillReturnRows(sqlmock.NewRows(prefColumns).AddRow("ayse@example.com", "tr", "TRY", true, false, "{S,M}", "tight", now))

	p, err := NewPostgresRepository(db).Upsert(context.Background(), Preferences{OwnerEmail: "ayse@example.com", Language: LanguageTR})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.PreferredSizes) != 2 || p.PreferredSizes[1] != "M" || p.FitPreference != "tight" {
		t.Fatalf("unexpected preferences %+v", p)
	}
}
