package upload

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	store := NewPostgresStore(db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO uploads").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.Put(ctx, Object{Key: "k.png", ContentType: "image/png", Data: pngHeader}); err != nil {
		t.Fatalf("put: %v", err)
	}

	mock.ExpectQuery("SELECT content_type, data FROM uploads").WithArgs("k.png").
		WillReturnRows(sqlmock.NewRows([]string{"content_type", "data"}).AddRow("image/png", pngHeader))
	obj, err := store.Get(ctx, "k.png")
	if err != nil || obj.ContentType != "image/png" || len(obj.Data) != len(pngHeader) {
		t.Fatalf("unexpected object %+v, err %v", obj, err)
	}

	mock.ExpectQuery("SELECT content_type, data FROM uploads").WithArgs("gone.png").
		WillReturnRows(sqlmock.NewRows([]string{"content_type", "data"}))
	if _, err := store.Get(ctx, "gone.png"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
