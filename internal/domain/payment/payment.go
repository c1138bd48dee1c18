package payment

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when the amount to charge is not positive.
	ErrInvalidAmount = errors.New("payment amount must be positive")
	// ErrCardRejected is returned when card details fail verification.
	ErrCardRejected = errors.New("card rejected")
)

// Card holds the card details entered on the payment step. They are used
// for a single confirmation and never stored.
type Card struct {
	Holder      string `json:"holder" validate:"required"`
	Number      string `json:"number" validate:"required,numeric,min=12,max=19"`
	ExpiryMonth string `json:"expiry_month" validate:"required,numeric,len=2"`
	ExpiryYear  string `json:"expiry_year" validate:"required,numeric,min=2,max=4"`
	CVV         string `json:"cvv" validate:"required,numeric,min=3,max=4"`
}

// Request asks the payment collaborator to confirm a charge.
type Request struct {
	UserID string
	Amount decimal.Decimal
	Card   Card
}

// Confirmation is the proof of a successful payment that travels with the
// order.
type Confirmation struct {
	Token       string          `json:"token"`
	Network     string          `json:"network,omitempty"`
	Last4       string          `json:"last4,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
}

// Confirmer is the external payment collaborator.
type Confirmer interface {
	Confirm(ctx context.Context, req Request) (*Confirmation, error)
}
