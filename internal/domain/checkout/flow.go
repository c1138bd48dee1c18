package checkout

import (
	"context"

	"github.com/xenking/storefront-checkout/internal/domain/order"
	"github.com/xenking/storefront-checkout/internal/domain/payment"
	"github.com/xenking/storefront-checkout/internal/domain/pricing"
	"github.com/xenking/storefront-checkout/internal/domain/profile"
)

// OrderSubmitter places an order for a confirmed payment.
type OrderSubmitter interface {
	Submit(ctx context.Context, sub order.Submission) (*order.Order, error)
}

// State is the persisted part of a checkout flow.
type State struct {
	Step             Step                  `json:"step"`
	SelectedAddress  *profile.Address      `json:"selected_address,omitempty"`
	PaymentConfirmed bool                  `json:"payment_confirmed"`
	Payment          *payment.Confirmation `json:"payment,omitempty"`
}

// Flow drives one session through Bag, Address and Payment.
//
// Flow is not safe for concurrent use; callers serialize access per
// session.
type Flow struct {
	userID   string
	cart     order.Cart
	payments payment.Confirmer
	orders   OrderSubmitter
	state    State
}

// New creates a flow at the bag step.
func New(userID string, c order.Cart, payments payment.Confirmer, orders OrderSubmitter) *Flow {
	return &Flow{
		userID:   userID,
		cart:     c,
		payments: payments,
		orders:   orders,
	}
}

// Resume recreates a flow from persisted state.
func Resume(st State, userID string, c order.Cart, payments payment.Confirmer, orders OrderSubmitter) *Flow {
	f := New(userID, c, payments, orders)
	f.state = st
	if st.SelectedAddress != nil {
		a := *st.SelectedAddress
		f.state.SelectedAddress = &a
	}
	if st.Payment != nil {
		p := *st.Payment
		f.state.Payment = &p
	}
	return f
}

// State returns a copy of the current state.
func (f *Flow) State() State {
	st := f.state
	if st.SelectedAddress != nil {
		a := *st.SelectedAddress
		st.SelectedAddress = &a
	}
	if st.Payment != nil {
		p := *st.Payment
		st.Payment = &p
	}
	return st
}

// Step returns the current step.
func (f *Flow) Step() Step {
	return f.state.Step
}

// PlaceOrder moves from the bag to the address step. When nothing is
// selected yet, defaultAddr (if any) becomes the selection.
func (f *Flow) PlaceOrder(defaultAddr *profile.Address) error {
	if f.state.Step != StepBag {
		return &TransitionError{From: f.state.Step, Action: "place order"}
	}
	if f.state.SelectedAddress == nil && defaultAddr != nil {
		a := *defaultAddr
		f.state.SelectedAddress = &a
	}
	f.state.Step = StepAddress
	return nil
}

// SelectAddress sets the delivery address. It is allowed at any step and
// survives moving back and forth.
func (f *Flow) SelectAddress(addr profile.Address) error {
	if err := addr.Validate(); err != nil {
		return &ValidationError{Field: "address", Err: err}
	}
	f.state.SelectedAddress = &addr
	return nil
}

// ClearAddress drops the current selection.
func (f *Flow) ClearAddress() {
	f.state.SelectedAddress = nil
}

// ContinueToPayment moves from the address to the payment step.
func (f *Flow) ContinueToPayment() error {
	if f.state.Step != StepAddress {
		return &TransitionError{From: f.state.Step, Action: "continue to payment"}
	}
	if f.state.SelectedAddress == nil {
		return ErrAddressRequired
	}
	f.state.Step = StepPayment
	return nil
}

// Back moves one step towards the bag. At the bag it does nothing.
func (f *Flow) Back() {
	if f.state.Step > StepBag {
		f.state.Step--
	}
}

// ConfirmPayment charges the card for the current payable amount and
// places the order. A failed order keeps the confirmation so the next
// attempt re-submits without charging again, unless the amount changed
// in between. On success the flow is reset.
func (f *Flow) ConfirmPayment(ctx context.Context, card payment.Card) (*order.Order, error) {
	if f.state.Step != StepPayment {
		return nil, &TransitionError{From: f.state.Step, Action: "confirm payment"}
	}
	if f.state.SelectedAddress == nil {
		return nil, ErrAddressRequired
	}

	snapshot := f.cart.Snapshot()
	if snapshot.IsEmpty() {
		return nil, order.ErrEmptyCart
	}
	amount := pricing.Compute(snapshot).TotalPayable.Round(2)

	if f.state.Payment == nil || !f.state.Payment.Amount.Equal(amount) {
		f.state.PaymentConfirmed = false
		f.state.Payment = nil

		conf, err := f.payments.Confirm(ctx, payment.Request{
			UserID: f.userID,
			Amount: amount,
			Card:   card,
		})
		if err != nil {
			return nil, &PaymentError{Err: err}
		}
		f.state.Payment = conf
		f.state.PaymentConfirmed = true
	}

	o, err := f.orders.Submit(ctx, order.Submission{
		UserID:  f.userID,
		Cart:    f.cart,
		Address: *f.state.SelectedAddress,
		Payment: *f.state.Payment,
	})
	if err != nil {
		return nil, err
	}

	f.Reset()
	return o, nil
}

// Reset returns the flow to the bag step with no selection and no
// payment.
func (f *Flow) Reset() {
	f.state = State{Step: StepBag}
}
