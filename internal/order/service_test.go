package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowiht/storefront-backend/internal/checkout"
	"github.com/nowiht/storefront-backend/internal/metrics"
	"github.com/nowiht/storefront-backend/internal/product"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []Status
	err   error
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, o Order, _ Status) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, o.Status)
	return n.err
}

type failingItemsRepo struct {
	*InMemoryRepository
}

func (r failingItemsRepo) InsertItems(context.Context, string, []Item) error {
	return errors.New("connection reset")
}

type fixture struct {
	svc      *Service
	repo     *InMemoryRepository
	products *product.InMemoryRepository
	notifier *recordingNotifier
	metrics  *metrics.Metrics
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	products := product.NewInMemoryRepository([]product.Product{
		{ID: "tee", Name: "Boxy Tee", Price: 450, Stock: 10, InStock: true, Status: product.StatusPublished},
	})
	gen, err := NewNumberGenerator()
	require.NoError(t, err)

	f := &fixture{
		repo:     NewInMemoryRepository(),
		products: products,
		notifier: &recordingNotifier{},
		metrics:  metrics.New(),
		now:      time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, checkout.NewService(products), products, f.notifier, gen, f.metrics)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func checkoutInput() CheckoutInput {
	return CheckoutInput{
		Email: "Ayse@Example.com",
		Name:  "Ayse Yilmaz",
		ShippingAddress: Address{
			FullName: "Ayse Yilmaz", Line1: "Moda Cd. 1", City: "Istanbul", Country: "tr",
		},
		Items: []checkout.Item{{ProductID: "tee", Quantity: 2, Size: "M"}},
	}
}

func TestCheckout_CreatesPendingOrder(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)

	assert.Regexp(t, `^NOW-2026-04-01-[A-Z0-9]{6}$`, o.OrderNumber)
	assert.Equal(t, "ayse@example.com", o.CustomerEmail)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.Equal(t, "TR", o.ShippingAddress.Country)
	assert.Equal(t, "900.00", o.Subtotal.StringFixed(2))
	assert.Equal(t, "49.90", o.ShippingCost.StringFixed(2))
	assert.Equal(t, "180.00", o.Tax.StringFixed(2))
	assert.Equal(t, "1129.90", o.Total.StringFixed(2))
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Boxy Tee", o.Items[0].Name)

	stored, err := f.repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
	assert.Equal(t, []Status{StatusPending}, f.notifier.calls)
}

func TestCheckout_Validation(t *testing.T) {
	f := newFixture(t)
	in := checkoutInput()
	in.Email = "nope"
	in.ShippingAddress.City = ""

	_, err := f.svc.Checkout(context.Background(), in)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "shippingAddress.city")

	named := checkoutInput()
	named.Email = "Mallory <ayse@example.com>"
	_, err = f.svc.Checkout(context.Background(), named)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")

	orders, err := f.repo.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_RemovesOrderWhenItemsFail(t *testing.T) {
	f := newFixture(t)
	f.svc.repo = failingItemsRepo{f.repo}

	_, err := f.svc.Checkout(context.Background(), checkoutInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save order items")

	orders, err := f.repo.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders, "order row must be removed")
	assert.Empty(t, f.notifier.calls)
}

func TestCancel_Shipped_NoMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, err := f.svc.Checkout(ctx, checkoutInput())
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Ship(ctx, o.ID, "Yurtici", "YK123")
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, o.ID, "ayse@example.com")
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 400, te.Status)

	stored, _ := f.repo.GetByID(ctx, o.ID)
	assert.Equal(t, StatusShipped, stored.Status)
	assert.Nil(t, stored.CancelledAt)
}

func TestCancel_OtherCustomerSeesNotFound(t *testing.T) {
	f := newFixture(t)
	o, err := f.svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), o.ID, "mallory@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	cancelled, err := f.svc.Cancel(context.Background(), o.ID, "AYSE@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
}

func deliveredOrder(t *testing.T, f *fixture) Order {
	t.Helper()
	ctx := context.Background()
	o, err := f.svc.Checkout(ctx, checkoutInput())
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Ship(ctx, o.ID, "Aras", "AR-1")
	require.NoError(t, err)
	o, err = f.svc.Deliver(ctx, o.ID)
	require.NoError(t, err)
	return o
}

func TestRequestReturn_AfterWindow_NoRecord(t *testing.T) {
	f := newFixture(t)
	o := deliveredOrder(t, f)

	f.now = f.now.Add(31 * 24 * time.Hour)
	_, err := f.svc.RequestReturn(context.Background(), o.ID, "ayse@example.com", "too small")
	var te *TransitionError
	require.ErrorAs(t, err, &te)

	stored, _ := f.repo.GetByID(context.Background(), o.ID)
	assert.Equal(t, StatusDelivered, stored.Status)
	returns, _ := f.repo.ListReturns(context.Background(), o.ID)
	assert.Empty(t, returns)
}

func TestReturnFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := deliveredOrder(t, f)

	f.now = f.now.Add(10 * 24 * time.Hour)
	o, err := f.svc.RequestReturn(ctx, o.ID, "ayse@example.com", "too small")
	require.NoError(t, err)
	assert.Equal(t, StatusReturnRequested, o.Status)

	o, err = f.svc.RejectReturn(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, o.Status)

	_, err = f.svc.RequestReturn(ctx, o.ID, "ayse@example.com", "changed my mind")
	require.NoError(t, err)
	o, err = f.svc.CompleteReturn(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, o.Status)

	returns, err := f.svc.Returns(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, returns, 2)
	assert.Equal(t, ReturnRejected, returns[0].Status)
	assert.Equal(t, ReturnApproved, returns[1].Status)

	series, err := testutil.GatherAndCount(f.metrics.Registry(), "nowiht_order_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 6, series, "one series per distinct from/to pair")
}

func TestShip_RequiresTracking(t *testing.T) {
	f := newFixture(t)
	o, err := f.svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)
	_, err = f.svc.Process(context.Background(), o.ID)
	require.NoError(t, err)

	_, err = f.svc.Ship(context.Background(), o.ID, "", "")
	assert.ErrorIs(t, err, ErrTrackingRequired)
}

func TestMarkPaid_ProcessesAndRecordsSales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, err := f.svc.Checkout(ctx, checkoutInput())
	require.NoError(t, err)

	paid, err := f.svc.MarkPaid(ctx, o.OrderNumber, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, StatusProcessing, paid.Status)
	assert.Equal(t, "pi_123", paid.PaymentReference)

	p, _ := f.products.GetByID(ctx, "tee")
	assert.Equal(t, 2, p.SoldCount)
	assert.Equal(t, 8, p.Stock)

	// a duplicate confirmation changes nothing
	_, err = f.svc.MarkPaid(ctx, o.OrderNumber, "pi_123")
	require.NoError(t, err)
	p, _ = f.products.GetByID(ctx, "tee")
	assert.Equal(t, 2, p.SoldCount)
}

func TestMarkPaymentFailed_KeepsOrderPending(t *testing.T) {
	f := newFixture(t)
	o, err := f.svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)

	failed, err := f.svc.MarkPaymentFailed(context.Background(), o.OrderNumber, "pi_9")
	require.NoError(t, err)
	assert.Equal(t, PaymentFailed, failed.PaymentStatus)
	assert.Equal(t, StatusPending, failed.Status)

	_, err = f.svc.MarkPaid(context.Background(), "NOW-0000", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotifierFailureDoesNotRollBack(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")

	o, err := f.svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)
	o, err = f.svc.Cancel(context.Background(), o.ID, "ayse@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Len(t, f.notifier.calls, 2)
}

func TestSoftDelete_HidesOrder(t *testing.T) {
	f := newFixture(t)
	o, err := f.svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)

	require.NoError(t, f.svc.SoftDelete(context.Background(), o.ID))
	_, err = f.svc.Get(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.SoftDelete(context.Background(), o.ID), ErrNotFound)
}
