package checkout

import (
	"fmt"
)

// ErrAddressRequired is returned when leaving the address step without a
// selected address.
var ErrAddressRequired = &ValidationError{Field: "address", Reason: "a delivery address must be selected"}

// ValidationError blocks a transition because of missing or malformed
// input. The flow stays on its current step and keeps its data.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PaymentError indicates the payment was not confirmed. The flow stays on
// the payment step.
type PaymentError struct {
	Err error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment failed: %v", e.Err)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// TransitionError is returned when an action is not available at the
// current step. Steps cannot be skipped.
type TransitionError struct {
	From   Step
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s at %s step", e.Action, e.From)
}
