package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-checkout/internal/domain/profile"
)

// Sentinel errors for order submission and lookup.
var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrNotFound  = errors.New("order not found")
)

// Status is the fulfilment state of an order. Transitions after creation
// are driven by the backend.
type Status string

const (
	StatusNew        Status = "New"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// Order represents a placed order. It is immutable on the client.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []Item          `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress profile.Address `json:"shipping_address"`
	PaymentInfo     PaymentInfo     `json:"payment_info"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Item represents a single line item in an order. Prices are not sent: the
// order service recomputes them.
type Item struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

// PaymentInfo references the payment confirmation of an order.
type PaymentInfo struct {
	Method string `json:"method"`
	Token  string `json:"token"`
	Last4  string `json:"last4,omitempty"`
}

// CreateRequest is the payload sent to the order service.
type CreateRequest struct {
	UserID          string
	Items           []Item
	TotalAmount     decimal.Decimal
	ShippingAddress profile.Address
	PaymentInfo     PaymentInfo
}

// Service is the remote order service.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	Get(ctx context.Context, id string) (*Order, error)
}

// CreationError indicates the order service did not create the order. No
// partial order exists on the client; the submission may be retried.
type CreationError struct {
	UserID string
	Err    error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create order for user %s: %v", e.UserID, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}
