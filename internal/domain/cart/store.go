// internal/domain/cart/store.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrInvalidQuantity is returned when an add asks for fewer than one unit
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrInsufficientStock is returned when a known line would exceed its stock
	ErrInsufficientStock = errors.New("insufficient stock")
)

// API is the commerce API's cart surface
type API interface {
	GetCart(ctx context.Context) ([]LineItem, error)
	AddItem(ctx context.Context, req AddItemRequest) error
	UpdateQuantity(ctx context.Context, req UpdateQuantityRequest) error
	RemoveItem(ctx context.Context, productID uint, variantID *uint) error
}

// Store holds one session's cart lines. The commerce API is the source of
// truth; the store mirrors it and applies confirmed mutations locally so
// the storefront does not have to refetch after every click.
//
// Mutations of the same line are serialized end to end (server call and
// local update), so the local quantity always matches the last request the
// server saw. Mutations of different lines run concurrently. A load only
// lands if no newer load or local mutation has landed since it started.
type Store struct {
	api    API
	logger logrus.FieldLogger

	mu       sync.RWMutex
	items    []LineItem
	loaded   bool
	loadedAt time.Time
	lastErr  error

	// fetchSeq numbers GETs as they start; appliedSeq is the newest state
	// applied, from a GET or a confirmed mutation.
	fetchSeq   uint64
	appliedSeq uint64

	lineLocks *xsync.MapOf[LineKey, *lineLock]
	loads     singleflight.Group

	listenersMu  sync.Mutex
	listeners    map[int]func(Snapshot)
	nextListener int
}

type lineLock struct {
	mu      sync.Mutex
	waiters int
}

// NewStore creates an empty, not yet loaded store
func NewStore(api API, logger logrus.FieldLogger) *Store {
	return &Store{
		api:       api,
		logger:    logger,
		lineLocks: xsync.NewMapOf[LineKey, *lineLock](),
		listeners: make(map[int]func(Snapshot)),
	}
}

// Load replaces the local lines with the server's cart. Concurrent calls
// share one request. A failure is kept as the store's error state and the
// previous lines stay in place so the caller can retry.
func (s *Store) Load(ctx context.Context) error {
	_, err, _ := s.loads.Do("load", func() (interface{}, error) {
		return nil, s.fetch(ctx)
	})

	metrics.RecordCartOperation("load", err)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load cart")
		return fmt.Errorf("failed to load cart: %w", err)
	}

	s.notify()
	return nil
}

// resync loads the cart with a GET that starts now, never one already in
// flight, so the result includes every mutation the server has confirmed.
func (s *Store) resync(ctx context.Context) error {
	s.loads.Forget("load")
	return s.Load(ctx)
}

func (s *Store) fetch(ctx context.Context) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	items, err := s.api.GetCart(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.appliedSeq {
		// newer state already landed
		return err
	}
	if err != nil {
		s.lastErr = err
		return err
	}
	s.items = append([]LineItem(nil), items...)
	s.loaded = true
	s.loadedAt = time.Now().UTC()
	s.lastErr = nil
	s.appliedSeq = seq
	return nil
}

// supersedeLoads discards GETs in flight; their answers predate a change
// that was just applied. Callers hold s.mu.
func (s *Store) supersedeLoads() {
	s.appliedSeq = s.fetchSeq
}

// EnsureLoaded loads the cart once; later calls are no-ops
func (s *Store) EnsureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()

	if loaded {
		return nil
	}
	return s.Load(ctx)
}

// AddItem asks the server to add quantity units of a product. A line that is
// already known is checked against its stock and merged locally; an unknown
// line triggers a full reload to pick up its product details. Rejections are
// returned unchanged and leave the local lines untouched.
func (s *Store) AddItem(ctx context.Context, productID uint, quantity int, variantID *uint) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	key := KeyOf(productID, variantID)
	action, err := s.withLine(key, func() (reconcileAction, error) {
		if item, ok := s.Find(productID, variantID); ok {
			if err := checkStock(item, item.Quantity+quantity); err != nil {
				return actionMerge, err
			}
		}

		err := s.api.AddItem(ctx, AddItemRequest{
			ProductID:        productID,
			Quantity:         quantity,
			ProductVariantID: variantID,
		})
		metrics.RecordCartOperation("add", err)
		if err != nil {
			return actionMerge, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		action, idx := reconcileAdd(s.items, key)
		if action == actionMerge {
			s.items[idx].Quantity += quantity
			s.supersedeLoads()
		}
		return action, nil
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"line":     key.String(),
		"quantity": quantity,
		"action":   action.String(),
	}).Debug("Cart item added")

	if action == actionMerge {
		s.notify()
		return nil
	}

	// The add itself succeeded; a failed reload only leaves the store in its
	// retryable error state.
	_ = s.resync(ctx)
	return nil
}

// UpdateQuantity sets the quantity of exactly the (productID, variantID)
// line. Quantities below one are ignored. Raising a known line above its
// stock is rejected without calling the server.
func (s *Store) UpdateQuantity(ctx context.Context, productID uint, quantity int, variantID *uint) error {
	if quantity < 1 {
		return nil
	}

	key := KeyOf(productID, variantID)
	_, err := s.withLine(key, func() (reconcileAction, error) {
		if item, ok := s.Find(productID, variantID); ok && quantity > item.Quantity {
			if err := checkStock(item, quantity); err != nil {
				return actionMerge, err
			}
		}

		err := s.api.UpdateQuantity(ctx, UpdateQuantityRequest{
			ProductID:        productID,
			Quantity:         quantity,
			ProductVariantID: variantID,
		})
		metrics.RecordCartOperation("update", err)
		if err != nil {
			return actionMerge, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if i := indexOf(s.items, key); i >= 0 {
			s.items[i].Quantity = quantity
			s.supersedeLoads()
		}
		return actionMerge, nil
	})
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// RemoveItem deletes exactly the (productID, variantID) line
func (s *Store) RemoveItem(ctx context.Context, productID uint, variantID *uint) error {
	key := KeyOf(productID, variantID)
	_, err := s.withLine(key, func() (reconcileAction, error) {
		err := s.api.RemoveItem(ctx, productID, variantID)
		metrics.RecordCartOperation("remove", err)
		if err != nil {
			return actionMerge, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if i := indexOf(s.items, key); i >= 0 {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
		}
		s.supersedeLoads()
		return actionMerge, nil
	})
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// Clear empties the local cart without calling the server. Used after a
// successful checkout, where the order submission already emptied it.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.lastErr = nil
	s.supersedeLoads()
	s.mu.Unlock()

	metrics.RecordCartOperation("clear", nil)
	s.notify()
}

// Items returns a copy of the current lines
func (s *Store) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]LineItem(nil), s.items...)
}

// Find returns the line for a product and optional variant
func (s *Store) Find(productID uint, variantID *uint) (LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOf(s.items, KeyOf(productID, variantID)); i >= 0 {
		return s.items[i], true
	}
	return LineItem{}, false
}

// Total returns the sum of price times quantity over all lines
func (s *Store) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return total(s.items)
}

// ItemCount returns the sum of quantities over all lines
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return itemCount(s.items)
}

// IsEmpty reports whether the cart has no lines
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) == 0
}

// Err returns the error of the last failed load, if it has not been retried
// successfully since.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Snapshot returns the lines and their derived totals in one consistent view
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Items:     append([]LineItem{}, s.items...),
		Total:     total(s.items),
		ItemCount: itemCount(s.items),
		LoadedAt:  s.loadedAt,
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned function unregisters it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.listenersMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Store) notify() {
	s.listenersMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	if len(fns) == 0 {
		return
	}

	snap := s.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

// withLine runs fn holding the line's lock. The lock is released before
// subscribers are notified, and its entry is dropped once nobody waits on it.
func (s *Store) withLine(key LineKey, fn func() (reconcileAction, error)) (reconcileAction, error) {
	lock, _ := s.lineLocks.Compute(key, func(l *lineLock, loaded bool) (*lineLock, bool) {
		if !loaded {
			l = &lineLock{}
		}
		l.waiters++
		return l, false
	})

	lock.mu.Lock()
	defer func() {
		lock.mu.Unlock()
		s.lineLocks.Compute(key, func(l *lineLock, loaded bool) (*lineLock, bool) {
			l.waiters--
			return l, l.waiters == 0
		})
	}()

	return fn()
}

// checkStock rejects quantity when it exceeds what the line's stock allows
func checkStock(item LineItem, quantity int) error {
	if available := item.AvailableStock(); quantity > available {
		return fmt.Errorf("%w: %d available", ErrInsufficientStock, available)
	}
	return nil
}

func total(items []LineItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Subtotal()
	}
	return sum
}

func itemCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
