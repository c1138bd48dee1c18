package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrNegativeDonation is returned when a donation below zero is set.
var ErrNegativeDonation = errors.New("donation amount must not be negative")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Store is the single source of truth for one session's cart. Remote
// operations replace the local items with the server's response; coupon and
// donation live only here.
//
// Concurrent mutations are not coordinated with the server: the last
// response to arrive wins.
type Store struct {
	svc Service

	mu     sync.RWMutex
	cart   Cart
	loaded bool
}

// NewStore returns an empty, not yet loaded store.
func NewStore(svc Service) *Store {
	return &Store{svc: svc}
}

// Restore rebuilds a store from a persisted snapshot.
func Restore(svc Service, c Cart, loaded bool) *Store {
	return &Store{svc: svc, cart: c.Clone(), loaded: loaded}
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// Loaded reports whether the cart has been fetched at least once in this
// session.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Fetch loads the remote cart and replaces the local items.
func (s *Store) Fetch(ctx context.Context, userID string) error {
	c, err := s.svc.Get(ctx, userID)
	if err != nil {
		return &FetchError{UserID: userID, Err: err}
	}
	s.replace(c)
	return nil
}

// EnsureLoaded fetches the cart only if this session has not loaded it yet.
func (s *Store) EnsureLoaded(ctx context.Context, userID string) error {
	if s.Loaded() {
		return nil
	}
	return s.Fetch(ctx, userID)
}

// AddItem adds quantity units of a product. Merging with an existing line is
// left to the server.
func (s *Store) AddItem(ctx context.Context, userID string, req AddItemRequest) error {
	if req.Quantity < 1 {
		return &InvalidQuantityError{ProductID: req.ProductID, Quantity: req.Quantity}
	}
	if err := validate.Struct(req); err != nil {
		return errors.Wrap(err, "validate add item")
	}

	c, err := s.svc.AddItem(ctx, userID, req)
	if err != nil {
		return errors.Wrapf(err, "add item %s", req.ProductID)
	}
	s.replace(c)
	return nil
}

// UpdateQuantity sets the quantity of a line. Quantities below one are
// rejected without contacting the server and leave the cart unchanged.
func (s *Store) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity < 1 {
		return &InvalidQuantityError{ProductID: productID, Quantity: quantity}
	}
	if productID == "" {
		return errors.New("product id required")
	}

	c, err := s.svc.UpdateQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return errors.Wrapf(err, "update quantity of %s", productID)
	}
	s.replace(c)
	return nil
}

// RemoveItem deletes a line from the remote cart.
func (s *Store) RemoveItem(ctx context.Context, userID, productID string) error {
	if productID == "" {
		return errors.New("product id required")
	}

	c, err := s.svc.RemoveItem(ctx, userID, productID)
	if err != nil {
		return errors.Wrapf(err, "remove item %s", productID)
	}
	s.replace(c)
	return nil
}

// Clear empties the local cart. The remote cart is not touched: after an
// order has been created the server has already consumed it.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = Cart{}
}

// ApplyCoupon records a coupon code. Codes that match no rule are kept but
// grant no discount.
func (s *Store) ApplyCoupon(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.CouponCode = code
}

// RemoveCoupon drops the coupon code.
func (s *Store) RemoveCoupon() {
	s.ApplyCoupon("")
}

// SetDonation records the donation added to the order.
func (s *Store) SetDonation(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeDonation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.DonationAmount = amount
	return nil
}

// replace swaps in the server's items, keeping local-only fields.
func (s *Store) replace(c *Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []Item
	if c != nil {
		items = make([]Item, len(c.Items))
		copy(items, c.Items)
	}
	s.cart.Items = items
	s.loaded = true
}
