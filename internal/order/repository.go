package order

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrDuplicateNumber = errors.New("order number already exists")
	// ErrConcurrentUpdate means the order changed status between read and write.
	ErrConcurrentUpdate = errors.New("order was modified concurrently")
)

type ListFilter struct {
	Email  string
	Status Status
}

type Repository interface {
	Create(ctx context.Context, o Order) error
	InsertItems(ctx context.Context, orderID string, items []Item) error
	// Delete removes an order row outright. Only used to undo a failed checkout.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Order, error)
	GetByNumber(ctx context.Context, number string) (Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, error)
	// Update persists o only when the stored status still equals expected.
	Update(ctx context.Context, o Order, expected Status) (Order, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	CreateReturn(ctx context.Context, r ReturnRequest) error
	// ResolveReturn sets the status of the order's open return request.
	ResolveReturn(ctx context.Context, orderID string, status ReturnStatus, at time.Time) error
	ListReturns(ctx context.Context, orderID string) ([]ReturnRequest, error)
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	orders  map[string]Order
	items   map[string][]Item
	returns []ReturnRequest
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		orders: map[string]Order{},
		items:  map[string][]Item{},
	}
}

func (r *InMemoryRepository) Create(_ context.Context, o Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.orders {
		if existing.OrderNumber == o.OrderNumber {
			return ErrDuplicateNumber
		}
	}
	o.Items = nil
	r.orders[o.ID] = o
	return nil
}

func (r *InMemoryRepository) InsertItems(_ context.Context, orderID string, items []Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[orderID]; !ok {
		return ErrNotFound
	}
	r.items[orderID] = append(r.items[orderID], items...)
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return ErrNotFound
	}
	delete(r.orders, id)
	delete(r.items, id)
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok || o.DeletedAt != nil {
		return Order{}, ErrNotFound
	}
	return r.withItems(o), nil
}

func (r *InMemoryRepository) GetByNumber(_ context.Context, number string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.OrderNumber == number && o.DeletedAt == nil {
			return r.withItems(o), nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) List(_ context.Context, f ListFilter) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.DeletedAt != nil {
			continue
		}
		if f.Email != "" && !strings.EqualFold(o.CustomerEmail, f.Email) {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, r.withItems(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) Update(_ context.Context, o Order, expected Status) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.orders[o.ID]
	if !ok || existing.DeletedAt != nil {
		return Order{}, ErrNotFound
	}
	if existing.Status != expected {
		return Order{}, ErrConcurrentUpdate
	}
	existing.Status = o.Status
	existing.PaymentStatus = o.PaymentStatus
	existing.PaymentReference = o.PaymentReference
	existing.Carrier = o.Carrier
	existing.TrackingNumber = o.TrackingNumber
	existing.UpdatedAt = o.UpdatedAt
	existing.ShippedAt = o.ShippedAt
	existing.DeliveredAt = o.DeliveredAt
	existing.CancelledAt = o.CancelledAt
	r.orders[o.ID] = existing
	return r.withItems(existing), nil
}

func (r *InMemoryRepository) SoftDelete(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok || o.DeletedAt != nil {
		return ErrNotFound
	}
	o.DeletedAt = &at
	r.orders[id] = o
	return nil
}

func (r *InMemoryRepository) CreateReturn(_ context.Context, rr ReturnRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.returns = append(r.returns, rr)
	return nil
}

func (r *InMemoryRepository) ResolveReturn(_ context.Context, orderID string, status ReturnStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.returns) - 1; i >= 0; i-- {
		if r.returns[i].OrderID == orderID && r.returns[i].Status == ReturnRequested {
			r.returns[i].Status = status
			r.returns[i].UpdatedAt = at
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) ListReturns(_ context.Context, orderID string) ([]ReturnRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ReturnRequest, 0)
	for _, rr := range r.returns {
		if rr.OrderID == orderID {
			out = append(out, rr)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) withItems(o Order) Order {
	o.Items = append([]Item{}, r.items[o.ID]...)
	return o
}
