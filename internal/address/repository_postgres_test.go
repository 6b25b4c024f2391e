package address

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var addressColumns = []string{"id", "owner_email", "title", "full_name", "phone", "line1", "line2",
	"city", "district", "postal_code", "country", "is_default", "created_at", "updated_at"}

func TestPostgresCreate_ClearsOtherDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE addresses SET is_default = false").WithArgs("ayse@example.com", "a-2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO addresses").WillReturnRows(sqlmock.NewRows(addressColumns).
		AddRow("a-2", "ayse@example.com", "Work", "Ayse", "", "Line", "", "Ankara", "", "", "TR", true, now, now))
	mock.ExpectCommit()

	a, err := repo.Create(context.Background(), Address{ID: "a-2", OwnerEmail: "ayse@example.com", FullName: "Ayse", Line1: "Line", City: "Ankara", Country: "TR", IsDefault: true, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.IsDefault || a.City != "Ankara" {
		t.Fatalf("unexpected address %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresUpdate_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE addresses").WillReturnRows(sqlmock.NewRows(addressColumns))
	mock.ExpectRollback()

	if _, err := repo.Update(context.Background(), Address{ID: "missing"}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresDelete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("DELETE FROM addresses").WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
