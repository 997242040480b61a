// internal/infrastructure/database/redis/confirmation_store.go
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-bff/internal/domain/checkout"
)

// ConfirmationStore keeps order confirmations for the receipt endpoint
type ConfirmationStore struct {
	client *Client
	ttl    time.Duration
}

// storedConfirmation carries the owning session alongside the confirmation,
// which hides it from API responses.
type storedConfirmation struct {
	Session      string                 `json:"session"`
	Confirmation *checkout.Confirmation `json:"confirmation"`
}

// NewConfirmationStore creates a store whose entries live for ttl
func NewConfirmationStore(client *Client, ttl time.Duration) *ConfirmationStore {
	return &ConfirmationStore{
		client: client,
		ttl:    ttl,
	}
}

// Save stores a confirmation under its order ID
func (s *ConfirmationStore) Save(ctx context.Context, confirmation *checkout.Confirmation) error {
	return s.client.SetJSON(ctx, confirmationKey(confirmation.OrderID), storedConfirmation{
		Session:      confirmation.Session,
		Confirmation: confirmation,
	}, s.ttl)
}

// Get loads the confirmation of an order
func (s *ConfirmationStore) Get(ctx context.Context, orderID string) (*checkout.Confirmation, error) {
	var stored storedConfirmation
	err := s.client.GetJSON(ctx, confirmationKey(orderID), &stored)
	if errors.Is(err, redis.Nil) || (err == nil && stored.Confirmation == nil) {
		return nil, checkout.ErrConfirmationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmation: %w", err)
	}

	stored.Confirmation.Session = stored.Session
	return stored.Confirmation, nil
}

func confirmationKey(orderID string) string {
	return fmt.Sprintf("checkout_confirmation:%s", orderID)
}
