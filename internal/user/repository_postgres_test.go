package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgresCreate_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pgconn.PgError{Code: "23505"})

	now := time.Now()
	_, err = repo.Create(context.Background(), User{ID: "u1", Email: "a@b.co", Password: "x", Role: RoleCustomer, CreatedAt: now, UpdatedAt: now})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password", "first_name", "last_name", "phone", "role", "created_at", "updated_at"}).
		AddRow("u1", "a@b.co", "$2a$hash", "A", "B", "", "admin", now, now)
	mock.ExpectQuery("FROM users WHERE lower\\(email\\)").WithArgs("A@B.co").WillReturnRows(rows)

	u, err := repo.GetByEmail(context.Background(), "A@B.co")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != RoleAdmin || u.ID != "u1" {
		t.Fatalf("unexpected user %+v", u)
	}

	mock.ExpectQuery("FROM users WHERE id").WithArgs("missing").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
