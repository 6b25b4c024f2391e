package upload

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

var ErrNotFound = errors.New("file not found")

// Object is a stored file.
type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// Store persists uploaded files by key.
type Store interface {
	Put(ctx context.Context, obj Object) error
	Get(ctx context.Context, key string) (Object, error)
}

// FileStore keeps uploads in a local directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Put(_ context.Context, obj Object) error {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(obj.Data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, obj.Key))
}

func (s *FileStore) Get(_ context.Context, key string) (Object, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if errors.Is(err, os.ErrNotExist) {
		return Object{}, ErrNotFound
	}
	if err != nil {
		return Object{}, err
	}
	return Object{Key: key, ContentType: http.DetectContentType(data), Data: data}, nil
}

// Table layout expected:
//   key text primary key,
//   content_type text not null,
//   data bytea not null,
//   size integer not null,
//   created_at timestamptz not null default now()

// PostgresStore keeps uploads in the uploads table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, obj Object) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO uploads (key, content_type, data, size, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET content_type = EXCLUDED.content_type, data = EXCLUDED.data, size = EXCLUDED.size`,
		obj.Key, obj.ContentType, obj.Data, len(obj.Data), time.Now().UTC())
	return err
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Object, error) {
	obj := Object{Key: key}
	err := s.db.QueryRowContext(ctx, `SELECT content_type, data FROM uploads WHERE key = $1`, key).Scan(&obj.ContentType, &obj.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return Object{}, ErrNotFound
	}
	return obj, err
}
