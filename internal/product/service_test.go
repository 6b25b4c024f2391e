package product

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore { return &memoryStore{data: map[string][]byte{}} }

func (m *memoryStore) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (m *memoryStore) Set(_ context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = b
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryStore) DeletePattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

type countingRepo struct {
	*InMemoryRepository
	lists   atomic.Int32
	release chan struct{}
}

func (r *countingRepo) List(ctx context.Context, f ListFilter) ([]Product, error) {
	r.lists.Add(1)
	if r.release != nil {
		<-r.release
	}
	return r.InMemoryRepository.List(ctx, f)
}

func seedCatalog() []Product {
	now := time.Now().UTC()
	return []Product{
		{ID: "11111111-1111-1111-1111-111111111111", Name: "Oversized Hoodie", Slug: "oversized-hoodie", Category: "hoodies", Price: 1200, Stock: 5, Status: StatusPublished, CreatedAt: now.AddDate(0, 0, -2)},
		{ID: "22222222-2222-2222-2222-222222222222", Name: "Zip Hoodie", Slug: "zip-hoodie", Category: "hoodies", Price: 1300, Stock: 0, Status: StatusPublished, CreatedAt: now.AddDate(0, 0, -10)},
		{ID: "33333333-3333-3333-3333-333333333333", Name: "Draft Tee", Slug: "draft-tee", Category: "t-shirts", Price: 300, Status: StatusDraft, CreatedAt: now},
	}
}

func TestCatalog_UsesCacheAndInvalidatesOnWrite(t *testing.T) {
	repo := &countingRepo{InMemoryRepository: NewInMemoryRepository(seedCatalog())}
	svc := NewService(repo, newMemoryStore(), nil)
	ctx := context.Background()

	first, err := svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 2, "drafts are not part of the catalog")

	_, err = svc.Catalog(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, repo.lists.Load(), "second read is served from cache")

	_, err = svc.Create(ctx, Input{Name: "Linen Shirt", Price: 900, Status: StatusPublished})
	require.NoError(t, err)

	after, err := svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, after, 3)
	assert.EqualValues(t, 2, repo.lists.Load())
}

func TestCatalog_CollapsesConcurrentMisses(t *testing.T) {
	repo := &countingRepo{InMemoryRepository: NewInMemoryRepository(seedCatalog()), release: make(chan struct{})}
	svc := NewService(repo, nil, nil)

	var started, done sync.WaitGroup
	for i := 0; i < 10; i++ {
		started.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			started.Done()
			_, _ = svc.Catalog(context.Background())
		}()
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(repo.release)
	done.Wait()

	assert.EqualValues(t, 1, repo.lists.Load())
}

func TestCreate_DerivesDefaults(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil), nil, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, Input{
		Name:   "  Boxy Tee  ",
		Price:  450,
		Stock:  3,
		Colors: []Color{{Name: "Siyah"}, {Name: "Custom", Hex: "#123456"}, {Name: "Unknown"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Boxy Tee", p.Name)
	assert.Equal(t, "boxy-tee", p.Slug)
	assert.Equal(t, StatusDraft, p.Status)
	assert.True(t, p.InStock, "inStock derived from stock")
	assert.Equal(t, "#000000", p.Colors[0].Hex)
	assert.Equal(t, "#123456", p.Colors[1].Hex)
	assert.Empty(t, p.Colors[2].Hex)
	assert.NotEmpty(t, p.ID)

	no := false
	p2, err := svc.Create(ctx, Input{Name: "Sold Out Tee", Stock: 10, InStock: &no})
	require.NoError(t, err)
	assert.False(t, p2.InStock, "explicit inStock is stored as sent")

	_, err = svc.Create(ctx, Input{Name: "Boxy Tee", Price: 10})
	assert.ErrorIs(t, err, ErrDuplicateSlug)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil), nil, nil)

	_, err := svc.Create(context.Background(), Input{Price: -1, Stock: -2, Status: "archived", Rating: ptrFloat(7)})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "name")
	assert.Contains(t, ve.Fields, "price")
	assert.Contains(t, ve.Fields, "stock")
	assert.Contains(t, ve.Fields, "status")
	assert.Contains(t, ve.Fields, "rating")
}

func TestUpdate_KeepsCounters(t *testing.T) {
	seed := seedCatalog()
	seed[0].SoldCount = 42
	seed[0].Views = 7
	seed[0].InStock = true
	svc := NewService(NewInMemoryRepository(seed), nil, nil)

	updated, err := svc.Update(context.Background(), seed[0].ID, Input{Name: "Oversized Hoodie v2", Price: 1250, Status: StatusPublished})
	require.NoError(t, err)
	assert.Equal(t, 42, updated.SoldCount)
	assert.Equal(t, 7, updated.Views)
	assert.Equal(t, "oversized-hoodie", updated.Slug, "slug only changes when sent")
	assert.True(t, updated.InStock, "omitted inStock is left unchanged")

	_, err = svc.Update(context.Background(), "missing", Input{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestView_CountsAndHidesDrafts(t *testing.T) {
	repo := NewInMemoryRepository(seedCatalog())
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	p, err := svc.View(ctx, "oversized-hoodie")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Views)

	stored, _ := repo.GetBySlug(ctx, "oversized-hoodie")
	assert.Equal(t, 1, stored.Views)

	_, err = svc.View(ctx, "draft-tee")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRelated_ResolvesIDOrSlug(t *testing.T) {
	svc := NewService(NewInMemoryRepository(seedCatalog()), nil, nil)
	ctx := context.Background()

	byID, err := svc.Related(ctx, "11111111-1111-1111-1111-111111111111", 4)
	require.NoError(t, err)
	bySlug, err := svc.Related(ctx, "oversized-hoodie", 4)
	require.NoError(t, err)

	assert.Equal(t, ids(byID), ids(bySlug))
	assert.Equal(t, []string{"22222222-2222-2222-2222-222222222222"}, ids(byID))

	_, err = svc.Related(ctx, "nope", 4)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWishlistAndSalesCounters(t *testing.T) {
	repo := NewInMemoryRepository(seedCatalog())
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	id := "11111111-1111-1111-1111-111111111111"

	require.NoError(t, svc.AdjustWishlist(ctx, id, 1))
	require.NoError(t, svc.AdjustWishlist(ctx, id, -5))
	require.NoError(t, svc.RecordSale(ctx, id, 2))

	p, _ := repo.GetByID(ctx, id)
	assert.Equal(t, 0, p.WishlistCount, "wishlist count never goes negative")
	assert.Equal(t, 2, p.SoldCount)
	assert.Equal(t, 3, p.Stock)

	counts, err := svc.CountByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"hoodies": 2, "t-shirts": 1}, counts)
}
