// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/cart"
	"github.com/your-org/storefront-bff/internal/domain/shipping"
	"github.com/your-org/storefront-bff/internal/infrastructure/api"
	"github.com/your-org/storefront-bff/internal/pkg/metrics"
)

var (
	// ErrCartEmpty blocks submission of an order without lines
	ErrCartEmpty = errors.New("cart is empty")
	// ErrSessionExpired means the commerce API rejected the caller's token
	ErrSessionExpired = errors.New("session expired")
	// ErrConfirmationNotFound means no confirmation is stored for an order
	ErrConfirmationNotFound = errors.New("order confirmation not found")
)

// OrderAPI is the commerce API's order and payment surface
type OrderAPI interface {
	SubmitOrder(ctx context.Context, req api.OrderRequest) (string, error)
	CreatePayment(ctx context.Context, req api.PaymentRequest) error
}

// Quoter prices shipping for an address
type Quoter interface {
	Quote(ctx context.Context, address string) shipping.Quote
}

// Cart is the part of a cart store the checkout reads and resets
type Cart interface {
	Items() []cart.LineItem
	Clear()
}

// ConfirmationStore keeps confirmations for the receipt endpoint
type ConfirmationStore interface {
	Save(ctx context.Context, confirmation *Confirmation) error
	Get(ctx context.Context, orderID string) (*Confirmation, error)
}

// Notifier is told about every placed order
type Notifier interface {
	OrderPlaced(ctx context.Context, confirmation *Confirmation) error
}

const notifyTimeout = 30 * time.Second

// Service places orders: it checks the cart, submits the order, prices
// shipping, records the payment and only then clears the cart.
type Service struct {
	orders        OrderAPI
	quoter        Quoter
	confirmations ConfirmationStore
	notifier      Notifier
	quotes        *ttlcache.Cache[string, shipping.Quote]
	logger        logrus.FieldLogger
	now           func() time.Time
}

// NewService creates a new checkout service. Last quotes are remembered per
// session for quoteTTL.
func NewService(orders OrderAPI, quoter Quoter, confirmations ConfirmationStore, quoteTTL time.Duration, logger logrus.FieldLogger) *Service {
	quotes := ttlcache.New[string, shipping.Quote](
		ttlcache.WithTTL[string, shipping.Quote](quoteTTL),
		ttlcache.WithDisableTouchOnHit[string, shipping.Quote](),
	)
	go quotes.Start()

	return &Service{
		orders:        orders,
		quoter:        quoter,
		confirmations: confirmations,
		quotes:        quotes,
		logger:        logger,
		now:           time.Now,
	}
}

// SetNotifier registers n to hear about placed orders
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Stop halts the quote expiry loop
func (s *Service) Stop() {
	s.quotes.Stop()
}

// Quote prices shipping to address and remembers it as the session's last
// quote, which PlaceOrder charges.
func (s *Service) Quote(ctx context.Context, session, address string) shipping.Quote {
	quote := s.quoter.Quote(ctx, address)
	s.quotes.Set(session, quote, ttlcache.DefaultTTL)
	return quote
}

// LastQuote returns the session's last quote, if it is still remembered
func (s *Service) LastQuote(session string) (shipping.Quote, bool) {
	item := s.quotes.Get(session)
	if item == nil {
		return shipping.Quote{}, false
	}
	return item.Value(), true
}

// SubmitOrder submits the session's cart as an order to address
func (s *Service) SubmitOrder(ctx context.Context, c Cart, address, note string) (string, error) {
	if len(c.Items()) == 0 {
		return "", ErrCartEmpty
	}

	orderID, err := s.orders.SubmitOrder(ctx, api.OrderRequest{
		DeliveryAddress: address,
		Note:            note,
	})
	if err != nil {
		return "", classify("failed to submit order", err)
	}
	return orderID, nil
}

// CreatePayment records the payment of an order
func (s *Service) CreatePayment(ctx context.Context, req api.PaymentRequest) error {
	if err := s.orders.CreatePayment(ctx, req); err != nil {
		return classify("failed to create payment", err)
	}
	return nil
}

// PlaceOrder runs the whole checkout. The cart is cleared only after both
// the order and its payment were accepted; any failure leaves it untouched
// so the shopper can retry.
func (s *Service) PlaceOrder(ctx context.Context, session string, c Cart, req Request) (*Confirmation, error) {
	items := c.Items()
	if len(items) == 0 {
		metrics.RecordCheckout("cart_empty")
		return nil, ErrCartEmpty
	}

	logger := s.logger.WithField("session", session)

	orderID, err := s.SubmitOrder(ctx, c, req.Address, req.Note)
	if err != nil {
		metrics.RecordCheckout(resultOf(err, "order_failed"))
		return nil, err
	}

	quote := s.quoteFor(ctx, session, req.Address)
	subtotal := subtotalOf(items)
	amount := subtotal + float64(quote.FeeVND)

	err = s.CreatePayment(ctx, api.PaymentRequest{
		OrderID:        orderID,
		PaymentMethod:  req.PaymentMethod,
		Amount:         amount,
		PaymentGateway: req.PaymentGateway,
	})
	if err != nil {
		metrics.RecordCheckout(resultOf(err, "payment_failed"))
		logger.WithError(err).WithField("order_id", orderID).Warn("Payment failed after order submission")
		return nil, err
	}

	confirmation := &Confirmation{
		OrderID:        orderID,
		Address:        req.Address,
		Note:           req.Note,
		Items:          items,
		Subtotal:       subtotal,
		ShippingFee:    quote.FeeVND,
		DistanceKm:     quote.DistanceKm,
		FreeShipping:   quote.FreeShipping,
		Amount:         amount,
		PaymentMethod:  req.PaymentMethod,
		PaymentGateway: req.PaymentGateway,
		Email:          req.Email,
		PlacedAt:       s.now().UTC(),
		Session:        session,
	}

	c.Clear()
	s.quotes.Delete(session)

	if s.confirmations != nil {
		if err := s.confirmations.Save(ctx, confirmation); err != nil {
			logger.WithError(err).WithField("order_id", orderID).Error("Failed to store order confirmation")
		}
	}

	metrics.RecordCheckout("success")
	logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"amount":   amount,
		"shipping": quote.FeeVND,
	}).Info("Order placed")

	s.notify(ctx, confirmation)

	return confirmation, nil
}

// Receipt returns the confirmation of an order placed by session
func (s *Service) Receipt(ctx context.Context, session, orderID string) (*Confirmation, error) {
	if s.confirmations == nil {
		return nil, ErrConfirmationNotFound
	}

	confirmation, err := s.confirmations.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if confirmation.Session != session {
		return nil, ErrConfirmationNotFound
	}
	return confirmation, nil
}

// notify runs the notifier in the background; the order stands whatever it
// returns.
func (s *Service) notify(ctx context.Context, confirmation *Confirmation) {
	if s.notifier == nil || confirmation.Email == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	go func() {
		defer cancel()
		if err := s.notifier.OrderPlaced(ctx, confirmation); err != nil {
			s.logger.WithError(err).WithField("order_id", confirmation.OrderID).Warn("Order notification failed")
		}
	}()
}

// quoteFor returns the session's last quote when it was made for address,
// otherwise prices address afresh.
func (s *Service) quoteFor(ctx context.Context, session, address string) shipping.Quote {
	if quote, ok := s.LastQuote(session); ok && quote.Address == address {
		return quote
	}
	return s.Quote(ctx, session, address)
}

func subtotalOf(items []cart.LineItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Subtotal()
	}
	return sum
}

// classify maps a commerce API failure onto the checkout's error kinds
func classify(op string, err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		return fmt.Errorf("%s: %w", op, ErrSessionExpired)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func resultOf(err error, otherwise string) string {
	if errors.Is(err, ErrSessionExpired) {
		return "session_expired"
	}
	return otherwise
}
