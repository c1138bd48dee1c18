package order

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/payment"
	"github.com/xenking/storefront-checkout/internal/domain/pricing"
	"github.com/xenking/storefront-checkout/internal/domain/profile"
)

// Cart is the session cart the submitter reads and, on success, clears.
type Cart interface {
	Snapshot() cart.Cart
	Clear()
}

// Submission holds everything needed to place an order.
type Submission struct {
	UserID  string
	Cart    Cart
	Address profile.Address
	Payment payment.Confirmation
}

// SubmitterConfig tunes the submitter.
type SubmitterConfig struct {
	// ClearRemoteCart additionally removes every ordered line from the
	// remote cart after the order is created. Failures are only logged.
	ClearRemoteCart bool
	// TracerProvider defaults to a no-op provider.
	TracerProvider trace.TracerProvider
}

// Submitter assembles orders from the session state and sends them to the
// order service.
type Submitter struct {
	orders      Service
	carts       cart.Service
	clearRemote bool
	tracer      trace.Tracer
}

// NewSubmitter creates a Submitter. carts is only used when
// cfg.ClearRemoteCart is set and may be nil otherwise.
func NewSubmitter(orders Service, carts cart.Service, cfg SubmitterConfig) *Submitter {
	tp := cfg.TracerProvider
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	return &Submitter{
		orders:      orders,
		carts:       carts,
		clearRemote: cfg.ClearRemoteCart && carts != nil,
		tracer:      tp.Tracer("storefront/order"),
	}
}

// Submit creates the order and clears the session cart. When the order
// service fails the cart is left untouched and a *CreationError is
// returned. Cleanup after a created order never fails the submission.
func (s *Submitter) Submit(ctx context.Context, sub Submission) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.Submit",
		trace.WithAttributes(attribute.String("user.id", sub.UserID)),
	)
	defer span.End()

	snapshot := sub.Cart.Snapshot()
	if snapshot.IsEmpty() {
		span.SetStatus(codes.Error, ErrEmptyCart.Error())
		return nil, ErrEmptyCart
	}

	items := make([]Item, len(snapshot.Items))
	for i, it := range snapshot.Items {
		items[i] = Item{
			ProductID: it.ProductID,
			Size:      it.Size,
			Quantity:  it.Quantity,
		}
	}

	total := pricing.Compute(snapshot).TotalPayable.Round(2)

	o, err := s.orders.Create(ctx, CreateRequest{
		UserID:          sub.UserID,
		Items:           items,
		TotalAmount:     total,
		ShippingAddress: sub.Address,
		PaymentInfo: PaymentInfo{
			Method: "card",
			Token:  sub.Payment.Token,
			Last4:  sub.Payment.Last4,
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create order")
		return nil, &CreationError{UserID: sub.UserID, Err: err}
	}
	span.SetAttributes(attribute.String("order.id", o.ID))

	sub.Cart.Clear()
	if s.clearRemote {
		s.clearRemoteCart(ctx, sub.UserID, items)
	}

	return o, nil
}

// clearRemoteCart removes ordered lines from the remote cart one by one.
// The order already exists, so failures are logged and otherwise ignored.
func (s *Submitter) clearRemoteCart(ctx context.Context, userID string, items []Item) {
	lg := zctx.From(ctx)
	for _, it := range items {
		if _, err := s.carts.RemoveItem(ctx, userID, it.ProductID); err != nil {
			lg.Warn("Failed to clear remote cart line",
				zap.String("user_id", userID),
				zap.String("product_id", it.ProductID),
				zap.Error(err),
			)
		}
	}
}
