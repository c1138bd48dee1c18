package checkout

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/order"
	"github.com/xenking/storefront-checkout/internal/domain/payment"
	"github.com/xenking/storefront-checkout/internal/domain/pricing"
)

type fakeOrders struct {
	fail    bool
	created []order.CreateRequest
}

func (o *fakeOrders) Create(_ context.Context, req order.CreateRequest) (*order.Order, error) {
	if o.fail {
		return nil, errors.New("order service unavailable")
	}
	o.created = append(o.created, req)
	return &order.Order{
		ID:          fmt.Sprintf("o%d", len(o.created)),
		UserID:      req.UserID,
		TotalAmount: req.TotalAmount,
		Status:      order.StatusNew,
		CreatedAt:   time.Now(),
	}, nil
}

func (o *fakeOrders) ListByUser(context.Context, string) ([]order.Order, error) { return nil, nil }

func (o *fakeOrders) Get(context.Context, string) (*order.Order, error) {
	return nil, order.ErrNotFound
}

type checkoutWorld struct {
	store   *cart.Store
	orders  *fakeOrders
	flow    *Flow
	lastErr error
}

func (w *checkoutWorld) cartWithItem(price, qty, discount, shipping int) error {
	w.store = cart.Restore(nopCartService{}, cart.Cart{
		Items: []cart.Item{{
			ProductID:       "kurta",
			Size:            "M",
			Quantity:        qty,
			UnitPrice:       decimal.NewFromInt(int64(price)),
			DiscountPercent: decimal.NewFromInt(int64(discount)),
			ShippingCost:    decimal.NewFromInt(int64(shipping)),
		}},
	}, true)
	w.orders = &fakeOrders{}
	w.flow = New("u1", w.store, payment.NewCardConfirmer(true),
		order.NewSubmitter(w.orders, nil, order.SubmitterConfig{}))
	return nil
}

func (w *checkoutWorld) payableIs(want string) error {
	got := pricing.Compute(w.store.Snapshot()).Rounded().TotalPayable.StringFixed(2)
	if got != want {
		return errors.Errorf("payable = %s, want %s", got, want)
	}
	return nil
}

func (w *checkoutWorld) applyCoupon(code string) error {
	w.store.ApplyCoupon(code)
	return nil
}

func (w *checkoutWorld) placeOrder() error {
	return w.flow.PlaceOrder(nil)
}

func (w *checkoutWorld) continueToPayment() error {
	w.lastErr = w.flow.ContinueToPayment()
	return nil
}

func (w *checkoutWorld) selectAddress() error {
	return w.flow.SelectAddress(validAddress("a1"))
}

func (w *checkoutWorld) goBack() error {
	w.flow.Back()
	return nil
}

func (w *checkoutWorld) reachPayment() error {
	if err := w.flow.PlaceOrder(nil); err != nil {
		return err
	}
	if err := w.flow.SelectAddress(validAddress("a1")); err != nil {
		return err
	}
	return w.flow.ContinueToPayment()
}

func (w *checkoutWorld) orderServiceFailing() error {
	w.orders.fail = true
	return nil
}

func (w *checkoutWorld) confirmPayment() error {
	_, w.lastErr = w.flow.ConfirmPayment(context.Background(), testCard())
	return nil
}

func (w *checkoutWorld) addressRequiredError() error {
	if !errors.Is(w.lastErr, ErrAddressRequired) {
		return errors.Errorf("expected address required error, got %v", w.lastErr)
	}
	return nil
}

func (w *checkoutWorld) orderCreationError() error {
	var cerr *order.CreationError
	if !errors.As(w.lastErr, &cerr) {
		return errors.Errorf("expected order creation error, got %v", w.lastErr)
	}
	return nil
}

func (w *checkoutWorld) stepIs(want string) error {
	if got := w.flow.Step().String(); got != want {
		return errors.Errorf("step = %s, want %s", got, want)
	}
	return nil
}

func (w *checkoutWorld) addressStillSet() error {
	if w.flow.State().SelectedAddress == nil {
		return errors.New("selected address was lost")
	}
	return nil
}

func (w *checkoutWorld) cartHasItems(n int) error {
	if got := len(w.store.Snapshot().Items); got != n {
		return errors.Errorf("cart has %d items, want %d", got, n)
	}
	return nil
}

func (w *checkoutWorld) cartIsEmpty() error {
	return w.cartHasItems(0)
}

func (w *checkoutWorld) orderCreatedWithTotal(want string) error {
	if w.lastErr != nil {
		return w.lastErr
	}
	if len(w.orders.created) != 1 {
		return errors.Errorf("created %d orders, want 1", len(w.orders.created))
	}
	if got := w.orders.created[0].TotalAmount.StringFixed(2); got != want {
		return errors.Errorf("order total = %s, want %s", got, want)
	}
	return nil
}

func initializeCheckoutScenario(sc *godog.ScenarioContext) {
	w := &checkoutWorld{}
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*w = checkoutWorld{}
		return ctx, nil
	})

	sc.Step(`^a cart with an item priced (\d+) with quantity (\d+), discount (\d+)% and shipping (\d+)$`, w.cartWithItem)
	sc.Step(`^the payable amount is "([^"]*)"$`, w.payableIs)
	sc.Step(`^I apply the coupon "([^"]*)"$`, w.applyCoupon)
	sc.Step(`^I place the order$`, w.placeOrder)
	sc.Step(`^I continue to payment$`, w.continueToPayment)
	sc.Step(`^I select a valid address$`, w.selectAddress)
	sc.Step(`^I go back$`, w.goBack)
	sc.Step(`^I reach the payment step$`, w.reachPayment)
	sc.Step(`^the order service is failing$`, w.orderServiceFailing)
	sc.Step(`^I confirm payment with a valid card$`, w.confirmPayment)
	sc.Step(`^I see an address required error$`, w.addressRequiredError)
	sc.Step(`^I see an order creation error$`, w.orderCreationError)
	sc.Step(`^the checkout step is "([^"]*)"$`, w.stepIs)
	sc.Step(`^the selected address is still set$`, w.addressStillSet)
	sc.Step(`^the cart has (\d+) items?$`, w.cartHasItems)
	sc.Step(`^the cart is empty$`, w.cartIsEmpty)
	sc.Step(`^an order is created with total "([^"]*)"$`, w.orderCreatedWithTotal)
}

func TestCheckoutFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "checkout",
		ScenarioInitializer: initializeCheckoutScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../../features/checkout.feature"},
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("checkout feature scenarios failed")
	}
}
