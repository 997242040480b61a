package checkout

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/cart"
	"github.com/your-org/storefront-bff/internal/domain/shipping"
	"github.com/your-org/storefront-bff/internal/infrastructure/api"
)

type fakeOrders struct {
	orderID    string
	submitErr  error
	paymentErr error

	orders   []api.OrderRequest
	payments []api.PaymentRequest
}

func (f *fakeOrders) SubmitOrder(_ context.Context, req api.OrderRequest) (string, error) {
	f.orders = append(f.orders, req)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.orderID, nil
}

func (f *fakeOrders) CreatePayment(_ context.Context, req api.PaymentRequest) error {
	f.payments = append(f.payments, req)
	return f.paymentErr
}

type fakeQuoter struct {
	fee       int64
	addresses []string
}

func (f *fakeQuoter) Quote(_ context.Context, address string) shipping.Quote {
	f.addresses = append(f.addresses, address)
	return shipping.Quote{Address: address, DistanceKm: 12.5, FeeVND: f.fee, Tier: "10-20km"}
}

type fakeCart struct {
	items   []cart.LineItem
	cleared bool
}

func (f *fakeCart) Items() []cart.LineItem {
	return append([]cart.LineItem(nil), f.items...)
}

func (f *fakeCart) Clear() {
	f.items = nil
	f.cleared = true
}

type memoryConfirmations struct {
	mu      sync.Mutex
	saved   map[string]*Confirmation
	saveErr error
}

func (m *memoryConfirmations) Save(_ context.Context, c *Confirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[c.OrderID] = c
	return nil
}

func (m *memoryConfirmations) Get(_ context.Context, orderID string) (*Confirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.saved[orderID]
	if !ok {
		return nil, ErrConfirmationNotFound
	}
	return c, nil
}

type fixture struct {
	svc           *Service
	orders        *fakeOrders
	quoter        *fakeQuoter
	cart          *fakeCart
	confirmations *memoryConfirmations
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		orders: &fakeOrders{orderID: "1024"},
		quoter: &fakeQuoter{fee: 40000},
		cart: &fakeCart{items: []cart.LineItem{
			{ProductID: 1, Quantity: 2, Product: cart.Product{ID: 1, Name: "Áo thun", Price: 150000}},
			{ProductID: 2, Quantity: 1, Product: cart.Product{ID: 2, Name: "Quần jean", Price: 420000}},
		}},
		confirmations: &memoryConfirmations{saved: map[string]*Confirmation{}},
	}
	f.svc = NewService(f.orders, f.quoter, f.confirmations, time.Minute, logger)
	f.svc.now = func() time.Time { return time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC) }
	t.Cleanup(f.svc.Stop)
	return f
}

var checkoutRequest = Request{
	Address:       "Số 5 Lý Thái Tổ, Phường Suối Hoa, Tỉnh Bắc Ninh",
	Note:          "Giao giờ hành chính",
	PaymentMethod: "COD",
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	items := f.cart.Items()

	confirmation, err := f.svc.PlaceOrder(context.Background(), "session-1", f.cart, checkoutRequest)
	assert.NoError(t, err)

	assert.Equal(t, &Confirmation{
		OrderID:       "1024",
		Address:       checkoutRequest.Address,
		Note:          checkoutRequest.Note,
		Items:         items,
		Subtotal:      720000,
		ShippingFee:   40000,
		DistanceKm:    12.5,
		Amount:        760000,
		PaymentMethod: "COD",
		PlacedAt:      time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC),
		Session:       "session-1",
	}, confirmation)
	assert.Equal(t, 3, confirmation.ItemCount())

	assert.Equal(t, []api.OrderRequest{{DeliveryAddress: checkoutRequest.Address, Note: checkoutRequest.Note}}, f.orders.orders)
	assert.Equal(t, []api.PaymentRequest{{OrderID: "1024", PaymentMethod: "COD", Amount: 760000}}, f.orders.payments)

	assert.True(t, f.cart.cleared)
	_, ok := f.svc.LastQuote("session-1")
	assert.False(t, ok)

	stored, err := f.svc.Receipt(context.Background(), "session-1", "1024")
	assert.NoError(t, err)
	assert.Equal(t, confirmation, stored)
}

func TestPlaceOrderPaymentFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	f.orders.paymentErr = &api.Error{StatusCode: 400, Message: "Phương thức thanh toán không hợp lệ"}
	before := f.cart.Items()

	_, err := f.svc.PlaceOrder(context.Background(), "session-1", f.cart, checkoutRequest)

	var apiErr *api.Error
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Phương thức thanh toán không hợp lệ", apiErr.Message)
	assert.False(t, f.cart.cleared)
	assert.Equal(t, before, f.cart.Items())
	assert.Equal(t, 1, len(f.orders.orders))

	_, err = f.svc.Receipt(context.Background(), "session-1", "1024")
	assert.IsError(t, err, ErrConfirmationNotFound)
}

func TestPlaceOrderSubmitFailureSkipsPayment(t *testing.T) {
	f := newFixture(t)
	f.orders.submitErr = errors.New("upstream unavailable")

	_, err := f.svc.PlaceOrder(context.Background(), "session-1", f.cart, checkoutRequest)
	assert.Error(t, err)
	assert.Equal(t, 0, len(f.orders.payments))
	assert.False(t, f.cart.cleared)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t)
	f.cart.items = nil

	_, err := f.svc.PlaceOrder(context.Background(), "session-1", f.cart, checkoutRequest)
	assert.IsError(t, err, ErrCartEmpty)
	assert.Equal(t, 0, len(f.orders.orders))
}

func TestPlaceOrderUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.orders.submitErr = api.ErrUnauthorized

	_, err := f.svc.PlaceOrder(context.Background(), "session-1", f.cart, checkoutRequest)
	assert.IsError(t, err, ErrSessionExpired)

	f = newFixture(t)
	f.orders.paymentErr = api.ErrUnauthorized
	_, err = f.svc.PlaceOrder(context.Background(), "session-1", f.cart, checkoutRequest)
	assert.IsError(t, err, ErrSessionExpired)
	assert.False(t, f.cart.cleared)
}

func TestPlaceOrderReusesMatchingQuote(t *testing.T) {
	f := newFixture(t)

	quote := f.svc.Quote(context.Background(), "session-1", checkoutRequest.Address)
	assert.Equal(t, int64(40000), quote.FeeVND)

	f.quoter.fee = 99000
	confirmation, err := f.svc.PlaceOrder(context.Background(), "session-1", f.cart, checkoutRequest)
	assert.NoError(t, err)
	assert.Equal(t, int64(40000), confirmation.ShippingFee)
	assert.Equal(t, 1, len(f.quoter.addresses))
}

func TestPlaceOrderRequotesChangedAddress(t *testing.T) {
	f := newFixture(t)

	f.svc.Quote(context.Background(), "session-1", "12 Lê Lợi, Đà Nẵng")
	confirmation, err := f.svc.PlaceOrder(context.Background(), "session-1", f.cart, checkoutRequest)
	assert.NoError(t, err)
	assert.Equal(t, []string{"12 Lê Lợi, Đà Nẵng", checkoutRequest.Address}, f.quoter.addresses)
	assert.Equal(t, checkoutRequest.Address, confirmation.Address)
}

func TestPlaceOrderSurvivesConfirmationStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.confirmations.saveErr = errors.New("redis down")

	confirmation, err := f.svc.PlaceOrder(context.Background(), "session-1", f.cart, checkoutRequest)
	assert.NoError(t, err)
	assert.Equal(t, "1024", confirmation.OrderID)
	assert.True(t, f.cart.cleared)
}

func TestReceiptBelongsToSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), "session-1", f.cart, checkoutRequest)
	assert.NoError(t, err)

	_, err = f.svc.Receipt(context.Background(), "session-2", "1024")
	assert.IsError(t, err, ErrConfirmationNotFound)
}

func TestQuotesArePerSession(t *testing.T) {
	f := newFixture(t)

	f.svc.Quote(context.Background(), "session-1", "Hà Nội")
	_, ok := f.svc.LastQuote("session-2")
	assert.False(t, ok)

	quote, ok := f.svc.LastQuote("session-1")
	assert.True(t, ok)
	assert.Equal(t, "Hà Nội", quote.Address)
}

type fakeNotifier struct {
	placed chan *Confirmation
	err    error
}

func (f *fakeNotifier) OrderPlaced(ctx context.Context, c *Confirmation) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	f.placed <- c
	return f.err
}

func TestPlaceOrderNotifies(t *testing.T) {
	f := newFixture(t)
	notifier := &fakeNotifier{placed: make(chan *Confirmation, 1), err: errors.New("smtp down")}
	f.svc.SetNotifier(notifier)

	req := checkoutRequest
	req.Email = "khach@example.com"

	// the request context ends with the handler; notification must outlive it
	ctx, cancel := context.WithCancel(context.Background())
	confirmation, err := f.svc.PlaceOrder(ctx, "session-1", f.cart, req)
	cancel()
	assert.NoError(t, err)
	assert.Equal(t, "khach@example.com", confirmation.Email)

	select {
	case got := <-notifier.placed:
		assert.Equal(t, confirmation, got)
	case <-time.After(time.Second):
		t.Fatal("notifier was not called")
	}
}

func TestPlaceOrderWithoutEmailSkipsNotifier(t *testing.T) {
	f := newFixture(t)
	notifier := &fakeNotifier{placed: make(chan *Confirmation, 1)}
	f.svc.SetNotifier(notifier)

	_, err := f.svc.PlaceOrder(context.Background(), "session-1", f.cart, checkoutRequest)
	assert.NoError(t, err)

	select {
	case <-notifier.placed:
		t.Fatal("notifier called without a recipient")
	case <-time.After(50 * time.Millisecond):
	}
}
