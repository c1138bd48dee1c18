package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/payment"
	"github.com/xenking/storefront-checkout/internal/domain/profile"
)

// --- Mock implementations ---

type mockOrderService struct {
	last *CreateRequest
	err  error
}

func (m *mockOrderService) Create(_ context.Context, req CreateRequest) (*Order, error) {
	m.last = &req
	if m.err != nil {
		return nil, m.err
	}
	return &Order{
		ID:              "o1",
		UserID:          req.UserID,
		Items:           req.Items,
		TotalAmount:     req.TotalAmount,
		ShippingAddress: req.ShippingAddress,
		PaymentInfo:     req.PaymentInfo,
		Status:          StatusNew,
		CreatedAt:       time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}, nil
}

func (m *mockOrderService) ListByUser(_ context.Context, _ string) ([]Order, error) {
	return nil, nil
}

func (m *mockOrderService) Get(_ context.Context, _ string) (*Order, error) {
	return nil, ErrNotFound
}

type mockCartService struct {
	removed   []string
	removeErr error
}

func (m *mockCartService) Get(_ context.Context, _ string) (*cart.Cart, error) {
	return &cart.Cart{}, nil
}

func (m *mockCartService) AddItem(_ context.Context, _ string, _ cart.AddItemRequest) (*cart.Cart, error) {
	return &cart.Cart{}, nil
}

func (m *mockCartService) UpdateQuantity(_ context.Context, _, _ string, _ int) (*cart.Cart, error) {
	return &cart.Cart{}, nil
}

func (m *mockCartService) RemoveItem(_ context.Context, _, productID string) (*cart.Cart, error) {
	m.removed = append(m.removed, productID)
	return &cart.Cart{}, m.removeErr
}

// --- Helpers ---

func newTestCart(items ...cart.Item) *cart.Store {
	return cart.Restore(&mockCartService{}, cart.Cart{Items: items, CouponCode: "NEWUSER"}, true)
}

func kurta() cart.Item {
	return cart.Item{
		ProductID:    "kurta",
		Size:         "L",
		Quantity:     1,
		UnitPrice:    decimal.NewFromInt(500),
		ShippingCost: decimal.NewFromInt(40),
	}
}

func testAddress() profile.Address {
	return profile.Address{ID: "a1", Name: "Asha", City: "Pune", IsDefault: true}
}

func testConfirmation() payment.Confirmation {
	return payment.Confirmation{Token: "tok_1", Last4: "4242", Amount: decimal.NewFromInt(490)}
}

// --- Tests ---

func TestSubmit_Success(t *testing.T) {
	orders := &mockOrderService{}
	c := newTestCart(kurta())
	s := NewSubmitter(orders, nil, SubmitterConfig{})

	o, err := s.Submit(context.Background(), Submission{
		UserID:  "u1",
		Cart:    c,
		Address: testAddress(),
		Payment: testConfirmation(),
	})

	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, StatusNew, o.Status)

	require.NotNil(t, orders.last)
	assert.Equal(t, []Item{{ProductID: "kurta", Size: "L", Quantity: 1}}, orders.last.Items)
	assert.True(t, decimal.RequireFromString("490.00").Equal(orders.last.TotalAmount))
	assert.Equal(t, "tok_1", orders.last.PaymentInfo.Token)
	assert.Equal(t, "a1", orders.last.ShippingAddress.ID)

	assert.True(t, c.Snapshot().IsEmpty(), "cart must be cleared after success")
}

func TestSubmit_CreateErrorKeepsCart(t *testing.T) {
	orders := &mockOrderService{err: errors.New("503 service unavailable")}
	c := newTestCart(kurta())
	s := NewSubmitter(orders, nil, SubmitterConfig{})

	o, err := s.Submit(context.Background(), Submission{UserID: "u1", Cart: c, Payment: testConfirmation()})

	require.Nil(t, o)
	var ce *CreationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "u1", ce.UserID)
	assert.Contains(t, err.Error(), "503")

	snap := c.Snapshot()
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, "NEWUSER", snap.CouponCode)
}

func TestSubmit_EmptyCart(t *testing.T) {
	orders := &mockOrderService{}
	s := NewSubmitter(orders, nil, SubmitterConfig{})

	_, err := s.Submit(context.Background(), Submission{UserID: "u1", Cart: newTestCart()})

	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, orders.last, "order service must not be called")
}

func TestSubmit_ClearRemoteCart(t *testing.T) {
	carts := &mockCartService{}
	second := kurta()
	second.ProductID = "dupatta"
	c := newTestCart(kurta(), second)
	s := NewSubmitter(&mockOrderService{}, carts, SubmitterConfig{ClearRemoteCart: true})

	_, err := s.Submit(context.Background(), Submission{UserID: "u1", Cart: c, Payment: testConfirmation()})

	require.NoError(t, err)
	assert.Equal(t, []string{"kurta", "dupatta"}, carts.removed)
}

func TestSubmit_RemoteClearFailureIsNotFatal(t *testing.T) {
	carts := &mockCartService{removeErr: errors.New("timeout")}
	c := newTestCart(kurta())
	s := NewSubmitter(&mockOrderService{}, carts, SubmitterConfig{ClearRemoteCart: true})

	o, err := s.Submit(context.Background(), Submission{UserID: "u1", Cart: c, Payment: testConfirmation()})

	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)
	assert.True(t, c.Snapshot().IsEmpty())
}

func TestSubmit_RemoteClearDisabledByDefault(t *testing.T) {
	carts := &mockCartService{}
	s := NewSubmitter(&mockOrderService{}, carts, SubmitterConfig{})

	_, err := s.Submit(context.Background(), Submission{UserID: "u1", Cart: newTestCart(kurta())})

	require.NoError(t, err)
	assert.Empty(t, carts.removed)
}
