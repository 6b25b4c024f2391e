package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nowiht/storefront-backend/internal/metrics"
)

const (
	// MaxSize is the largest accepted upload in bytes.
	MaxSize = 10 << 20

	maxAttempts = 3
)

var (
	ErrEmpty           = errors.New("file is empty")
	ErrTooLarge        = errors.New("file exceeds the 10 MB limit")
	ErrUnsupportedType = errors.New("only image uploads are accepted")
	ErrInvalidKey      = errors.New("invalid file key")
)

var extensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/bmp":     ".bmp",
	"image/x-icon":  ".ico",
	"image/svg+xml": ".svg",
}

// Result describes a stored upload.
type Result struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

type Service struct {
	store   Store
	baseURL string
	backoff time.Duration
	metrics *metrics.Metrics
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewService stores files in store and builds public URLs under baseURL.
func NewService(store Store, baseURL string, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		backoff: 500 * time.Millisecond,
		metrics: m,
		sleep:   sleepCtx,
	}
}

// Upload sniffs data, then writes it with up to three attempts, waiting
// attempt*backoff between them.
func (s *Service) Upload(ctx context.Context, data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, ErrEmpty
	}
	if len(data) > MaxSize {
		return Result{}, ErrTooLarge
	}
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return Result{}, ErrUnsupportedType
	}

	obj := Object{Key: uuid.NewString() + extensions[ct], ContentType: ct, Data: data}
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = s.store.Put(ctx, obj)
		s.metrics.UploadAttempt(err == nil)
		if err == nil {
			break
		}
		zap.L().Warn("upload attempt failed", zap.Int("attempt", attempt), zap.String("key", obj.Key), zap.Error(err))
		if attempt == maxAttempts {
			return Result{}, fmt.Errorf("store upload after %d attempts: %w", maxAttempts, err)
		}
		if serr := s.sleep(ctx, time.Duration(attempt)*s.backoff); serr != nil {
			return Result{}, serr
		}
	}

	return Result{Key: obj.Key, URL: s.baseURL + "/uploads/" + obj.Key, ContentType: ct, Size: len(data)}, nil
}

func (s *Service) Open(ctx context.Context, key string) (Object, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return Object{}, ErrInvalidKey
	}
	return s.store.Get(ctx, key)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
