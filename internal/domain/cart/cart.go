package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by a Service when the user has no cart or the
// cart has no such product.
var ErrNotFound = errors.New("cart item not found")

// Item is a single line of the cart. Items are owned by the Store and only
// change through its operations.
type Item struct {
	ProductID       string          `json:"product_id"`
	Name            string          `json:"name,omitempty"`
	Size            string          `json:"size,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
}

// Cart is the user's current selection plus the coupon and donation chosen
// during checkout. Item order is display order.
type Cart struct {
	Items          []Item          `json:"items"`
	CouponCode     string          `json:"coupon_code,omitempty"`
	DonationAmount decimal.Decimal `json:"donation_amount"`
}

// Clone returns a deep copy of the cart.
func (c Cart) Clone() Cart {
	out := c
	if c.Items != nil {
		out.Items = make([]Item, len(c.Items))
		copy(out.Items, c.Items)
	}
	return out
}

// Find returns the item for productID.
func (c Cart) Find(productID string) (Item, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return Item{}, false
}

// IsEmpty reports whether the cart has no items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// AddItemRequest is the input of an add-to-bag action.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

// Service is the remote cart service. Every call returns the server's view
// of the cart after the operation. The server merges quantities when an
// already present product is added again.
type Service interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	AddItem(ctx context.Context, userID string, req AddItemRequest) (*Cart, error)
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*Cart, error)
}

// FetchError indicates the remote cart could not be loaded.
type FetchError struct {
	UserID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch cart for user %s: %v", e.UserID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// InvalidQuantityError indicates a quantity below one was requested.
type InvalidQuantityError struct {
	ProductID string
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %s, got %d", e.ProductID, e.Quantity)
}
